package model

type Polarity string

const (
	Positive Polarity = "positive"
	Neutral  Polarity = "neutral"
	Negative Polarity = "negative"
	Conflict Polarity = "conflict"
)

// AspectSpan is a gold aspect annotation. From and To are character
// offsets into the owning sentence, half-open.
type AspectSpan struct {
	Term     string   `json:"term"`
	Polarity Polarity `json:"polarity"`
	From     int      `json:"from"`
	To       int      `json:"to"`
}

// SentenceRecord is one annotated sentence as supplied by the corpus loaders.
type SentenceRecord struct {
	ID      string       `json:"id"`
	Text    string       `json:"text"`
	Aspects []AspectSpan `json:"aspects"`
}

// DatasetRow is one training instance per (sentence, aspect) pair.
type DatasetRow struct {
	ID          string   `json:"id"`
	Sentence    string   `json:"sentence"`
	SentenceRaw string   `json:"sentence_raw"`
	Aspect      string   `json:"aspect"`
	Polarity    Polarity `json:"polarity"`
	Window      string   `json:"window"`
	InputFull   string   `json:"input_full"`
	// Aligned is false when Window is the fallback full sentence.
	Aligned bool `json:"aligned"`
}

type AssembleStats struct {
	Sentences int `json:"sentences"`
	Aspects   int `json:"aspects"`
	Rows      int `json:"rows"`
	Fallback  int `json:"fallback"`
	Malformed int `json:"malformed"`
	Dropped   int `json:"dropped"`
}
