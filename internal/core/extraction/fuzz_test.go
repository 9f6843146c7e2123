package extraction

import (
	"slices"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/agenthands/absa/internal/core/model"
)

// spanWithin picks a span starting inside tokens[i] and ending inside or at
// the end of tokens[j]. off values of any sign are folded into the token.
func spanWithin(tokens []model.Token, i, j, startOff, endOff int) (start, end int) {
	fold := func(off, n int) int {
		return ((off % n) + n) % n
	}
	first, last := tokens[i], tokens[j]
	start = first.Start + fold(startOff, first.End-first.Start)
	lo := last.Start + 1
	if i == j {
		lo = start + 1
	}
	end = lo + fold(endOff, last.End-lo+1)
	return start, end
}

// verifyWindowInvariants checks that the span [start, end) maps onto tokens
// i..j, that the markers bracket exactly those tokens and that the window
// minus its markers is a contiguous run of the sentence tokens.
func verifyWindowInvariants(t *testing.T, text string, i, j, start, end, size int) {
	t.Helper()
	tokens := Tokenize(text)

	w, err := BuildWindow(text, start, end, size)
	if err != nil {
		t.Fatalf("BuildWindow(%q, %d, %d, %d): %v", text, start, end, size, err)
	}
	if !w.Aligned() {
		t.Fatalf("span [%d:%d] inside tokens %d..%d did not align", start, end, i, j)
	}
	if w.AspectStart != i || w.AspectEnd != j {
		t.Fatalf("span [%d:%d] mapped to tokens %d..%d, want %d..%d", start, end, w.AspectStart, w.AspectEnd, i, j)
	}
	if w.Left != max(0, i-size) || w.Right != min(len(tokens), j+1+size) {
		t.Fatalf("bounds [%d:%d] for tokens %d..%d with size %d", w.Left, w.Right, i, j, size)
	}

	opens, closes := 0, 0
	openAt, closeAt := -1, -1
	var plain []string
	for k, s := range w.Tokens {
		switch s {
		case DefaultOpenMarker:
			opens++
			openAt = k
		case DefaultCloseMarker:
			closes++
			closeAt = k
		default:
			plain = append(plain, s)
		}
	}
	if opens != 1 || closes != 1 {
		t.Fatalf("bad markers in %q: opens=%d closes=%d", w.Text, opens, closes)
	}
	if openAt != i-w.Left || closeAt != j-w.Left+2 {
		t.Fatalf("markers at %d and %d in %q, want %d and %d", openAt, closeAt, w.Text, i-w.Left, j-w.Left+2)
	}

	var want []string
	for _, tk := range tokens[w.Left:w.Right] {
		want = append(want, tk.Text)
	}
	if !slices.Equal(want, plain) {
		t.Fatalf("window %q is not tokens[%d:%d]", w.Text, w.Left, w.Right)
	}
}

func FuzzExtractWindow(f *testing.F) {
	f.Add(laptopSentence, 1, 1, 0, 3, 2)
	f.Add(laptopSentence, 1, 2, 0, 3, 2) // "battery life"
	f.Add(laptopSentence, 1, 2, 3, 1, 0) // starts and ends mid-token
	f.Add(laptopSentence, 0, 9, 0, 3, 1) // whole sentence
	f.Add("a", 0, 0, 0, 0, 0)
	f.Add("  leading and trailing  ", 0, 2, 1, -1, 1)
	f.Add("Le café est très bon", 1, 3, 2, 1, 3)

	f.Fuzz(func(t *testing.T, text string, i, j, startOff, endOff, size int) {
		if !utf8.ValidString(text) || size < 0 || size > 64 {
			return
		}
		if strings.Contains(text, DefaultOpenMarker) || strings.Contains(text, DefaultCloseMarker) {
			return
		}
		tokens := Tokenize(text)
		if i > j {
			i, j = j, i
		}
		if i < 0 || j >= len(tokens) {
			return
		}
		start, end := spanWithin(tokens, i, j, startOff, endOff)
		verifyWindowInvariants(t, text, i, j, start, end, size)
	})
}
