package corpus

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/agenthands/absa/internal/core/model"
)

// Sentence is one <sentence> element of a SemEval ABSA corpus.
type Sentence struct {
	ID    string       `xml:"id,attr"`
	Text  *string      `xml:"text"`
	Terms []AspectTerm `xml:"aspectTerms>aspectTerm"`
}

type AspectTerm struct {
	Term     string `xml:"term,attr"`
	Polarity string `xml:"polarity,attr"`
	From     int    `xml:"from,attr"`
	To       int    `xml:"to,attr"`
}

type semevalCorpus struct {
	Sentences []Sentence `xml:"sentence"`
}

// ParseSemEval reads every sentence of a SemEval XML corpus in document order.
func ParseSemEval(r io.Reader) ([]Sentence, error) {
	var c semevalCorpus
	if err := xml.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to decode semeval xml: %w", err)
	}
	return c.Sentences, nil
}

func (s Sentence) text() string {
	if s.Text == nil {
		return ""
	}
	return strings.TrimSpace(*s.Text)
}

// Records converts sentences into span-annotated records. Sentences without
// a <text> element are skipped.
func Records(sentences []Sentence) []model.SentenceRecord {
	out := make([]model.SentenceRecord, 0, len(sentences))
	for _, s := range sentences {
		if s.Text == nil {
			continue
		}
		rec := model.SentenceRecord{
			ID:      s.ID,
			Text:    s.text(),
			Aspects: make([]model.AspectSpan, 0, len(s.Terms)),
		}
		for _, t := range s.Terms {
			rec.Aspects = append(rec.Aspects, model.AspectSpan{
				Term:     t.Term,
				Polarity: model.Polarity(t.Polarity),
				From:     t.From,
				To:       t.To,
			})
		}
		out = append(out, rec)
	}
	return out
}

// Gold converts sentences into the gold side of an evaluation. Every sentence
// is kept so that positions line up with an index-aligned prediction file.
func Gold(sentences []Sentence) []model.GoldSentence {
	out := make([]model.GoldSentence, len(sentences))
	for i, s := range sentences {
		g := model.GoldSentence{
			ID:    s.ID,
			Text:  s.text(),
			Terms: make([]model.AspectTerm, len(s.Terms)),
		}
		for j, t := range s.Terms {
			g.Terms[j] = model.AspectTerm{
				Term:     strings.TrimSpace(t.Term),
				Polarity: strings.TrimSpace(t.Polarity),
			}
		}
		out[i] = g
	}
	return out
}

// GoldFromRecords reduces span-annotated records to gold sentences.
func GoldFromRecords(records []model.SentenceRecord) []model.GoldSentence {
	out := make([]model.GoldSentence, len(records))
	for i, rec := range records {
		g := model.GoldSentence{
			ID:    rec.ID,
			Text:  rec.Text,
			Terms: make([]model.AspectTerm, len(rec.Aspects)),
		}
		for j, a := range rec.Aspects {
			g.Terms[j] = model.AspectTerm{
				Term:     strings.TrimSpace(a.Term),
				Polarity: strings.TrimSpace(string(a.Polarity)),
			}
		}
		out[i] = g
	}
	return out
}

// ExtractSentences returns up to limit non-empty sentence texts. A limit of
// zero or less returns all of them.
func ExtractSentences(sentences []Sentence, limit int) []string {
	var out []string
	for _, s := range sentences {
		if limit > 0 && len(out) >= limit {
			break
		}
		if text := s.text(); text != "" {
			out = append(out, text)
		}
	}
	return out
}
