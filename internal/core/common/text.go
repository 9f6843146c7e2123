package common

import (
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// CleanText lowercases text, replaces HTML-like tags with a space and
// collapses whitespace runs.
func CleanText(text string) string {
	text = tagPattern.ReplaceAllString(strings.TrimSpace(text), " ")
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
