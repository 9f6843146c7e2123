package extraction

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agenthands/absa/internal/core/model"
)

const (
	DefaultOpenMarker  = "<ASP>"
	DefaultCloseMarker = "</ASP>"
	DefaultWindowSize  = 5
)

var (
	ErrMalformedSpan  = errors.New("malformed aspect span")
	ErrNegativeWindow = errors.New("negative window size")
)

type Extractor struct {
	WindowSize  int
	OpenMarker  string
	CloseMarker string
}

func NewExtractor(windowSize int) *Extractor {
	return &Extractor{
		WindowSize:  windowSize,
		OpenMarker:  DefaultOpenMarker,
		CloseMarker: DefaultCloseMarker,
	}
}

// Tokenize splits text into maximal runs of non-whitespace characters.
// Offsets count characters (runes), not bytes.
func Tokenize(text string) []model.Token {
	var tokens []model.Token
	runes := []rune(text)
	start := -1
	for i, r := range runes {
		if unicode.IsSpace(r) {
			if start >= 0 {
				tokens = append(tokens, model.Token{Text: string(runes[start:i]), Start: start, End: i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		tokens = append(tokens, model.Token{Text: string(runes[start:]), Start: start, End: len(runes)})
	}
	return tokens
}

// BuildWindow extracts a window with the default markers.
func BuildWindow(text string, start, end, windowSize int) (model.Window, error) {
	return NewExtractor(windowSize).ExtractWindow(text, start, end)
}

// ExtractWindow maps the character span [start, end) onto the whitespace
// tokens of text and returns up to WindowSize tokens of context on each side,
// with the aspect tokens bracketed by the open and close markers.
//
// A span whose start offset falls on no token yields a WindowFallback window
// holding text unchanged. Spans outside the text or with start >= end are
// rejected with ErrMalformedSpan.
func (e *Extractor) ExtractWindow(text string, start, end int) (model.Window, error) {
	if e.WindowSize < 0 {
		return model.Window{}, fmt.Errorf("%w: %d", ErrNegativeWindow, e.WindowSize)
	}
	n := utf8.RuneCountInString(text)
	if start < 0 || end > n || start >= end {
		return model.Window{}, fmt.Errorf("%w: [%d,%d) over %d characters", ErrMalformedSpan, start, end, n)
	}

	tokens := Tokenize(text)
	first, last := locate(tokens, start, end)
	if first < 0 {
		return model.Window{Kind: model.WindowFallback, Text: text}, nil
	}

	left := max(0, first-e.WindowSize)
	right := min(len(tokens), last+1+e.WindowSize)

	out := make([]string, 0, right-left+2)
	for i := left; i < right; i++ {
		if i == first {
			out = append(out, e.OpenMarker)
		}
		out = append(out, tokens[i].Text)
		if i == last {
			out = append(out, e.CloseMarker)
		}
	}

	return model.Window{
		Kind:        model.WindowMarked,
		Tokens:      out,
		Text:        strings.Join(out, " "),
		Left:        left,
		Right:       right,
		AspectStart: first,
		AspectEnd:   last,
	}, nil
}

// locate returns the first token containing start and the first token whose
// span ends at or after end. last defaults to first when no token qualifies.
// first is -1 when start falls on whitespace.
func locate(tokens []model.Token, start, end int) (first, last int) {
	first, last = -1, -1
	for i, tok := range tokens {
		if first < 0 && tok.Start <= start && start < tok.End {
			first = i
		}
		if tok.Start < end && end <= tok.End {
			last = i
			break
		}
	}
	if first < 0 {
		return -1, -1
	}
	if last < first {
		last = first
	}
	return first, last
}

// WithWindowSize returns a copy of e with a different window size.
func (e *Extractor) WithWindowSize(n int) *Extractor {
	c := *e
	c.WindowSize = n
	return &c
}
