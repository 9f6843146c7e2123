package summary

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/agenthands/absa/internal/core/model"
)

// Epsilon keeps precision, recall and F1 defined when a denominator is zero.
const Epsilon = 1e-9

const DefaultShowMax = 50

func ComputeMetrics(c model.MatchCounts) model.Metrics {
	tp := float64(c.TruePositive)
	p := tp / (tp + float64(c.FalsePositive) + Epsilon)
	r := tp / (tp + float64(c.FalseNegative) + Epsilon)
	return model.Metrics{
		Precision: p,
		Recall:    r,
		F1:        2 * p * r / (p + r + Epsilon),
	}
}

type Summarizer struct {
	ShowMax int
	Now     func() time.Time
}

func NewSummarizer(showMax int) *Summarizer {
	return &Summarizer{
		ShowMax: showMax,
		Now:     time.Now,
	}
}

// Summarize turns an evaluation result into a report. Mismatches keep their
// corpus order and are cut to ShowMax; the rest is only counted.
func (s *Summarizer) Summarize(res model.EvalResult) model.Report {
	m := ComputeMetrics(res.Counts)

	shown := min(max(s.ShowMax, 0), len(res.Mismatches))
	mismatches := make([]model.Mismatch, shown)
	copy(mismatches, res.Mismatches[:shown])

	return model.Report{
		CreatedAt:        s.Now().UTC(),
		Precision:        m.Precision,
		Recall:           m.Recall,
		F1:               m.F1,
		TruePositive:     res.Counts.TruePositive,
		FalsePositive:    res.Counts.FalsePositive,
		FalseNegative:    res.Counts.FalseNegative,
		Scored:           res.Scored,
		GoldSentences:    res.GoldSentences,
		PredSentences:    res.PredSentences,
		UnmatchedGold:    res.UnmatchedGold,
		UnmatchedPred:    res.UnmatchedPred,
		Truncated:        res.Truncated(),
		Mismatches:       mismatches,
		TotalMismatches:  len(res.Mismatches),
		HiddenMismatches: len(res.Mismatches) - shown,
	}
}

const rule = "---------------------------------------------------------"

// Render writes the report as plain text.
func Render(w io.Writer, r model.Report) error {
	var b strings.Builder

	b.WriteString("\n===== ABSA Evaluation (Term + Polarity) =====\n")
	fmt.Fprintf(&b, "True Positives:  %d\n", r.TruePositive)
	fmt.Fprintf(&b, "False Positives: %d\n", r.FalsePositive)
	fmt.Fprintf(&b, "False Negatives: %d\n", r.FalseNegative)
	b.WriteString("------------------------------------------\n")
	fmt.Fprintf(&b, "Precision: %.4f\n", r.Precision)
	fmt.Fprintf(&b, "Recall:    %.4f\n", r.Recall)
	fmt.Fprintf(&b, "F1 Score:  %.4f\n", r.F1)
	fmt.Fprintf(&b, "Scored:    %d sentences (gold %d, predicted %d)\n", r.Scored, r.GoldSentences, r.PredSentences)
	if r.Truncated {
		fmt.Fprintf(&b, "WARNING: %d gold and %d predicted sentences were not scored\n",
			r.GoldSentences-r.Scored, r.PredSentences-r.Scored)
	}
	b.WriteString("============================================\n\n")

	fmt.Fprintf(&b, "=== Showing %d of %d mismatches ===\n\n", len(r.Mismatches), r.TotalMismatches)
	for _, m := range r.Mismatches {
		fmt.Fprintf(&b, "Sentence #%d: %s\n", m.Index, m.Sentence)
		fmt.Fprintf(&b, "  GOLD: %s\n", formatPairs(m.Gold))
		fmt.Fprintf(&b, "  PRED: %s\n", formatPairs(m.Pred))
		fmt.Fprintf(&b, "  Missing aspects: %s\n", formatPairs(m.Missing))
		fmt.Fprintf(&b, "  Extra aspects:   %s\n", formatPairs(m.Extra))
		b.WriteString(rule + "\n")
	}
	if r.HiddenMismatches > 0 {
		fmt.Fprintf(&b, "\n... %d more mismatches not printed.\n", r.HiddenMismatches)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func formatPairs(pairs []model.AspectPair) string {
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = fmt.Sprintf("(%q, %q)", p.Term, p.Polarity)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
