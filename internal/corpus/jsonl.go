package corpus

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/agenthands/absa/internal/core/common"
	"github.com/agenthands/absa/internal/core/model"
)

const maxLineSize = 16 << 20

type jsonlAspect struct {
	Term     string `json:"term"`
	Polarity string `json:"polarity"`
	From     *int   `json:"from"`
	To       *int   `json:"to"`
}

type jsonlRecord struct {
	ID       json.RawMessage `json:"id"`
	Sentence string          `json:"sentence"`
	Terms    []jsonlAspect   `json:"aspect_terms"`
}

func newScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return sc
}

// idString renders a JSON id that may be a string or a number.
func idString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// ReadRecords reads span-annotated sentences, one JSON object per line.
// Blank lines are skipped; any other undecodable line is an error.
func ReadRecords(r io.Reader) ([]model.SentenceRecord, error) {
	var out []model.SentenceRecord
	sc := newScanner(r)
	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var rec jsonlRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, rec.toModel())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (rec jsonlRecord) toModel() model.SentenceRecord {
	out := model.SentenceRecord{
		ID:      idString(rec.ID),
		Text:    rec.Sentence,
		Aspects: make([]model.AspectSpan, 0, len(rec.Terms)),
	}
	for _, a := range rec.Terms {
		span := model.AspectSpan{
			Term:     a.Term,
			Polarity: model.Polarity(a.Polarity),
			From:     -1,
			To:       -1,
		}
		if a.From != nil {
			span.From = *a.From
		}
		if a.To != nil {
			span.To = *a.To
		}
		out.Aspects = append(out.Aspects, span)
	}
	return out
}

type predictionLine struct {
	ID    json.RawMessage    `json:"id"`
	Terms []model.AspectTerm `json:"aspect_terms"`
}

// ReadPredictions reads one prediction per line. Lines may carry text around
// the JSON object, as model output often does. Blank lines are skipped.
func ReadPredictions(r io.Reader) ([]model.PredictionRecord, error) {
	var out []model.PredictionRecord
	sc := newScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		p, err := common.ParseJSON[predictionLine](text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, model.PredictionRecord{ID: idString(p.ID), Terms: p.Terms})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
