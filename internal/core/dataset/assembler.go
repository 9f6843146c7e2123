package dataset

import (
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/agenthands/absa/internal/core/common"
	"github.com/agenthands/absa/internal/core/extraction"
	"github.com/agenthands/absa/internal/core/model"
)

// Separator joins the aspect and the sentence in DatasetRow.InputFull.
const Separator = " [SEP] "

type Assembler struct {
	Extractor      *extraction.Extractor
	DropPolarities []model.Polarity
	Logger         *zap.Logger
}

func NewAssembler(extractor *extraction.Extractor, drop ...model.Polarity) *Assembler {
	return &Assembler{
		Extractor:      extractor,
		DropPolarities: drop,
		Logger:         zap.NewNop(),
	}
}

// Build emits one row per aspect of every record. Windows are cut from the
// raw sentence text because the offsets only hold against it; the display
// fields are cleaned afterwards, each on its own.
//
// Aspects with a dropped polarity or a malformed span produce no row and
// are only counted. Records are not modified.
func (a *Assembler) Build(records []model.SentenceRecord) ([]model.DatasetRow, model.AssembleStats) {
	var stats model.AssembleStats
	rows := make([]model.DatasetRow, 0, len(records))

	for _, rec := range records {
		stats.Sentences++
		sentence := common.CleanText(rec.Text)

		for _, asp := range rec.Aspects {
			stats.Aspects++
			if slices.Contains(a.DropPolarities, asp.Polarity) {
				stats.Dropped++
				continue
			}

			w, err := a.Extractor.ExtractWindow(rec.Text, asp.From, asp.To)
			if err != nil {
				stats.Malformed++
				a.Logger.Warn("skipping aspect",
					zap.String("sentence_id", rec.ID),
					zap.String("term", asp.Term),
					zap.Error(err))
				continue
			}
			if !w.Aligned() {
				stats.Fallback++
				a.Logger.Warn("aspect offsets did not align, using full sentence",
					zap.String("sentence_id", rec.ID),
					zap.String("term", asp.Term),
					zap.Int("from", asp.From),
					zap.Int("to", asp.To))
			}

			aspect := common.CleanText(asp.Term)
			rows = append(rows, model.DatasetRow{
				ID:          rec.ID,
				Sentence:    sentence,
				SentenceRaw: rec.Text,
				Aspect:      aspect,
				Polarity:    asp.Polarity,
				Window:      cleanWindow(w),
				InputFull:   aspect + Separator + sentence,
				Aligned:     w.Aligned(),
			})
		}
	}

	stats.Rows = len(rows)
	return rows, stats
}

// cleanWindow cleans the context and aspect tokens of w one run at a time and
// rejoins them around the markers, which are never passed through cleaning.
// A tag match can therefore not swallow a marker.
func cleanWindow(w model.Window) string {
	if !w.Aligned() {
		return common.CleanText(w.Text)
	}

	openAt := w.AspectStart - w.Left
	closeAt := w.AspectEnd - w.Left + 2
	parts := make([]string, 0, 5)
	for _, p := range []string{
		common.CleanText(strings.Join(w.Tokens[:openAt], " ")),
		w.Tokens[openAt],
		common.CleanText(strings.Join(w.Tokens[openAt+1:closeAt], " ")),
		w.Tokens[closeAt],
		common.CleanText(strings.Join(w.Tokens[closeAt+1:], " ")),
	} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
