package summary

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/absa/internal/core/model"
)

func TestComputeMetrics(t *testing.T) {
	m := ComputeMetrics(model.MatchCounts{TruePositive: 2, FalsePositive: 1, FalseNegative: 1})
	assert.InDelta(t, 2.0/3.0, m.Precision, 1e-6)
	assert.InDelta(t, 2.0/3.0, m.Recall, 1e-6)
	assert.InDelta(t, 2.0/3.0, m.F1, 1e-6)
}

func TestComputeMetrics_ZeroCounts(t *testing.T) {
	m := ComputeMetrics(model.MatchCounts{})
	assert.Equal(t, model.Metrics{}, m)

	// No predictions at all.
	m = ComputeMetrics(model.MatchCounts{FalseNegative: 4})
	assert.Zero(t, m.Precision)
	assert.Zero(t, m.Recall)
	assert.Zero(t, m.F1)
}

func TestComputeMetrics_Bounded(t *testing.T) {
	for tp := 0; tp < 6; tp++ {
		for fp := 0; fp < 6; fp++ {
			for fn := 0; fn < 6; fn++ {
				m := ComputeMetrics(model.MatchCounts{TruePositive: tp, FalsePositive: fp, FalseNegative: fn})
				for _, v := range []float64{m.Precision, m.Recall, m.F1} {
					assert.GreaterOrEqual(t, v, 0.0)
					assert.LessOrEqual(t, v, 1.0)
				}
			}
		}
	}
}

func mismatches(n int) []model.Mismatch {
	out := make([]model.Mismatch, n)
	for i := range out {
		out[i] = model.Mismatch{
			Index:    i + 1,
			Sentence: fmt.Sprintf("sentence %d", i+1),
			Gold:     []model.AspectPair{{Term: "cord", Polarity: "neutral"}},
			Pred:     []model.AspectPair{},
			Missing:  []model.AspectPair{{Term: "cord", Polarity: "neutral"}},
			Extra:    []model.AspectPair{},
		}
	}
	return out
}

func TestSummarize_TruncatesMismatches(t *testing.T) {
	s := NewSummarizer(2)
	s.Now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	res := model.EvalResult{
		Counts:        model.MatchCounts{TruePositive: 3, FalseNegative: 5},
		Mismatches:    mismatches(5),
		Scored:        8,
		GoldSentences: 8,
		PredSentences: 8,
	}
	r := s.Summarize(res)

	require.Len(t, r.Mismatches, 2)
	assert.Equal(t, 1, r.Mismatches[0].Index)
	assert.Equal(t, 2, r.Mismatches[1].Index)
	assert.Equal(t, 5, r.TotalMismatches)
	assert.Equal(t, 3, r.HiddenMismatches)
	assert.Equal(t, 3, r.TruePositive)
	assert.Equal(t, 5, r.FalseNegative)
	assert.False(t, r.Truncated)
	assert.Equal(t, 2026, r.CreatedAt.Year())
}

func TestSummarize_ShowMaxBounds(t *testing.T) {
	res := model.EvalResult{Mismatches: mismatches(3)}

	r := NewSummarizer(0).Summarize(res)
	assert.Empty(t, r.Mismatches)
	assert.Equal(t, 3, r.HiddenMismatches)

	r = NewSummarizer(-4).Summarize(res)
	assert.Empty(t, r.Mismatches)

	r = NewSummarizer(100).Summarize(res)
	assert.Len(t, r.Mismatches, 3)
	assert.Zero(t, r.HiddenMismatches)
}

func TestRender(t *testing.T) {
	res := model.EvalResult{
		Counts:        model.MatchCounts{TruePositive: 1, FalseNegative: 1},
		Mismatches:    mismatches(3),
		Scored:        2,
		GoldSentences: 3,
		PredSentences: 2,
	}
	r := NewSummarizer(1).Summarize(res)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, r))
	out := buf.String()

	assert.Contains(t, out, "True Positives:  1\n")
	assert.Contains(t, out, "Precision: 1.0000\n")
	assert.Contains(t, out, "Recall:    0.5000\n")
	assert.Contains(t, out, "WARNING: 1 gold and 0 predicted sentences were not scored")
	assert.Contains(t, out, "Sentence #1: sentence 1\n")
	assert.Contains(t, out, `  Missing aspects: [("cord", "neutral")]`)
	assert.Contains(t, out, "  Extra aspects:   []\n")
	assert.NotContains(t, out, "Sentence #2")
	assert.Contains(t, out, "... 2 more mismatches not printed.")
}
