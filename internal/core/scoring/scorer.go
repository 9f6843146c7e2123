package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agenthands/absa/internal/core/model"
)

// Alignment selects how predictions are paired with gold sentences.
type Alignment string

const (
	// AlignIndex pairs the i-th prediction with the i-th gold sentence and
	// scores up to the shorter of the two lists.
	AlignIndex Alignment = "index"
	// AlignID pairs predictions with gold sentences by sentence id.
	AlignID Alignment = "id"
)

func ParseAlignment(s string) (Alignment, error) {
	switch Alignment(strings.ToLower(strings.TrimSpace(s))) {
	case "", AlignIndex:
		return AlignIndex, nil
	case AlignID:
		return AlignID, nil
	default:
		return "", fmt.Errorf("unknown alignment %q (want %q or %q)", s, AlignIndex, AlignID)
	}
}

// NewPair normalizes a term for comparison. Polarity is kept as given.
func NewPair(term, polarity string) model.AspectPair {
	return model.AspectPair{
		Term:     strings.ToLower(strings.TrimSpace(term)),
		Polarity: polarity,
	}
}

// PairSet collapses terms into a sorted set of normalized pairs.
// Repeated mentions with the same term and polarity count once.
func PairSet(terms []model.AspectTerm) []model.AspectPair {
	seen := make(map[model.AspectPair]struct{}, len(terms))
	out := make([]model.AspectPair, 0, len(terms))
	for _, t := range terms {
		p := NewPair(t.Term, t.Polarity)
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sortPairs(out)
	return out
}

// Score compares the gold and predicted sets of one sentence.
func Score(gold, pred []model.AspectTerm) model.Outcome {
	g := PairSet(gold)
	p := PairSet(pred)

	o := model.Outcome{
		Gold:    g,
		Pred:    p,
		Missing: difference(g, p),
		Extra:   difference(p, g),
	}
	o.FalseNegative = len(o.Missing)
	o.FalsePositive = len(o.Extra)
	o.TruePositive = len(g) - o.FalseNegative
	return o
}

type Scorer struct {
	Align Alignment
}

func NewScorer(align Alignment) *Scorer {
	return &Scorer{Align: align}
}

// Evaluate folds per-sentence outcomes over a corpus in gold order.
func (s *Scorer) Evaluate(gold []model.GoldSentence, preds []model.PredictionRecord) model.EvalResult {
	res := model.EvalResult{
		Mismatches:    []model.Mismatch{},
		GoldSentences: len(gold),
		PredSentences: len(preds),
	}

	if s.Align == AlignID {
		s.evaluateByID(&res, gold, preds)
		return res
	}

	n := min(len(gold), len(preds))
	for i := 0; i < n; i++ {
		record(&res, i, gold[i], preds[i])
	}
	return res
}

func (s *Scorer) evaluateByID(res *model.EvalResult, gold []model.GoldSentence, preds []model.PredictionRecord) {
	byID := make(map[string]int, len(preds))
	for i, p := range preds {
		if p.ID == "" {
			continue
		}
		if _, dup := byID[p.ID]; !dup {
			byID[p.ID] = i
		}
	}

	// Each prediction is scored once; a repeated gold id after the first is unmatched.
	used := make(map[int]bool, len(byID))
	for i, g := range gold {
		j, ok := byID[g.ID]
		if g.ID == "" || !ok || used[j] {
			res.UnmatchedGold++
			continue
		}
		used[j] = true
		record(res, i, g, preds[j])
	}
	res.UnmatchedPred = len(preds) - len(used)
}

// record scores gold sentence i against pred. Mismatch indexes are 1-based.
func record(res *model.EvalResult, i int, gold model.GoldSentence, pred model.PredictionRecord) {
	o := Score(gold.Terms, pred.Terms)
	res.Scored++
	res.Counts.Add(o)
	if o.Match() {
		return
	}
	res.Mismatches = append(res.Mismatches, model.Mismatch{
		Index:    i + 1,
		ID:       gold.ID,
		Sentence: gold.Text,
		Gold:     o.Gold,
		Pred:     o.Pred,
		Missing:  o.Missing,
		Extra:    o.Extra,
	})
}

func difference(a, b []model.AspectPair) []model.AspectPair {
	in := make(map[model.AspectPair]struct{}, len(b))
	for _, p := range b {
		in[p] = struct{}{}
	}
	out := make([]model.AspectPair, 0)
	for _, p := range a {
		if _, ok := in[p]; !ok {
			out = append(out, p)
		}
	}
	return out
}

func sortPairs(pairs []model.AspectPair) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Term != pairs[j].Term {
			return pairs[i].Term < pairs[j].Term
		}
		return pairs[i].Polarity < pairs[j].Polarity
	})
}
