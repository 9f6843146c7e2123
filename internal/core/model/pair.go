package model

// AspectTerm is an unanchored (term, polarity) annotation as it appears in
// gold corpora and prediction files.
type AspectTerm struct {
	Term     string `json:"term"`
	Polarity string `json:"polarity"`
}

// AspectPair is the normalized unit of comparison: lowercased, trimmed term
// and the polarity as given.
type AspectPair struct {
	Term     string `json:"term"`
	Polarity string `json:"polarity"`
}

// GoldSentence is a gold sentence reduced to what evaluation needs.
type GoldSentence struct {
	ID    string       `json:"id,omitempty"`
	Text  string       `json:"text"`
	Terms []AspectTerm `json:"aspect_terms"`
}

// PredictionRecord is one line of a prediction file.
type PredictionRecord struct {
	ID    string       `json:"id,omitempty"`
	Terms []AspectTerm `json:"aspect_terms"`
}

// Outcome is the comparison of a single sentence.
type Outcome struct {
	TruePositive  int          `json:"tp"`
	FalsePositive int          `json:"fp"`
	FalseNegative int          `json:"fn"`
	Gold          []AspectPair `json:"gold"`
	Pred          []AspectPair `json:"pred"`
	Missing       []AspectPair `json:"missing"`
	Extra         []AspectPair `json:"extra"`
}

// Match reports whether the gold and predicted sets are equal.
func (o Outcome) Match() bool {
	return len(o.Missing) == 0 && len(o.Extra) == 0
}
