package model

import "time"

type MatchCounts struct {
	TruePositive  int `json:"tp"`
	FalsePositive int `json:"fp"`
	FalseNegative int `json:"fn"`
}

func (c *MatchCounts) Add(o Outcome) {
	c.TruePositive += o.TruePositive
	c.FalsePositive += o.FalsePositive
	c.FalseNegative += o.FalseNegative
}

// Mismatch records a sentence whose gold and predicted sets differ.
// Index is the 1-based position of the sentence in the gold corpus.
type Mismatch struct {
	Index    int          `json:"index"`
	ID       string       `json:"id,omitempty"`
	Sentence string       `json:"sentence"`
	Gold     []AspectPair `json:"gold"`
	Pred     []AspectPair `json:"pred"`
	Missing  []AspectPair `json:"missing"`
	Extra    []AspectPair `json:"extra"`
}

// EvalResult is the fold of per-sentence outcomes over a corpus.
type EvalResult struct {
	Counts        MatchCounts `json:"counts"`
	Mismatches    []Mismatch  `json:"mismatches"`
	Scored        int         `json:"scored"`
	GoldSentences int         `json:"gold_sentences"`
	PredSentences int         `json:"pred_sentences"`
	UnmatchedGold int         `json:"unmatched_gold,omitempty"`
	UnmatchedPred int         `json:"unmatched_pred,omitempty"`
}

// Truncated reports whether some gold or predicted sentences were not scored.
func (r EvalResult) Truncated() bool {
	return r.Scored < r.GoldSentences || r.Scored < r.PredSentences
}

type Metrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

type Report struct {
	RunID     string    `json:"run_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	Precision     float64 `json:"precision"`
	Recall        float64 `json:"recall"`
	F1            float64 `json:"f1"`
	TruePositive  int     `json:"tp"`
	FalsePositive int     `json:"fp"`
	FalseNegative int     `json:"fn"`

	Scored        int  `json:"scored"`
	GoldSentences int  `json:"gold_sentences"`
	PredSentences int  `json:"pred_sentences"`
	UnmatchedGold int  `json:"unmatched_gold,omitempty"`
	UnmatchedPred int  `json:"unmatched_pred,omitempty"`
	Truncated     bool `json:"truncated"`

	Mismatches       []Mismatch `json:"mismatches"`
	TotalMismatches  int        `json:"total_mismatches"`
	HiddenMismatches int        `json:"hidden_mismatches"`
}
