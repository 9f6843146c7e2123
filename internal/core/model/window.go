package model

// Token is a maximal run of non-whitespace characters.
// Start and End are character offsets into the source text, End exclusive.
type Token struct {
	Text  string `json:"text"`
	Start int    `json:"start_char"`
	End   int    `json:"end_char"`
}

type WindowKind int

const (
	// WindowMarked is a clipped token window with aspect markers.
	WindowMarked WindowKind = iota
	// WindowFallback carries the untouched source text because the aspect
	// offsets did not map onto any token.
	WindowFallback
)

func (k WindowKind) String() string {
	switch k {
	case WindowMarked:
		return "marked"
	case WindowFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Window is the aspect-centered context of a sentence.
type Window struct {
	Kind WindowKind `json:"kind"`
	// Tokens holds the window tokens with the two markers embedded. Empty for fallbacks.
	Tokens []string `json:"tokens,omitempty"`
	Text   string   `json:"text"`

	// Token slice bounds in the sentence, [Left, Right).
	Left  int `json:"left"`
	Right int `json:"right"`
	// Sentence token indices of the first and last aspect token.
	AspectStart int `json:"aspect_start"`
	AspectEnd   int `json:"aspect_end"`
}

// Aligned reports whether the aspect offsets were mapped onto tokens.
func (w Window) Aligned() bool {
	return w.Kind == WindowMarked
}
