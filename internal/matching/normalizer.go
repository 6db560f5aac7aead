// Package matching implements FAQ matching: text normalization, keyword
// extraction, fuzzy similarity scoring, and the response policy built on
// top of the match scores.
package matching

import (
	"strings"
	"unicode"
)

// Normalize lowercases text, strips punctuation, and collapses whitespace.
// The result contains only letters, digits, and single spaces.
func Normalize(text string) string {
	lowered := strings.ToLower(strings.TrimSpace(text))

	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			return r
		}
		return ' '
	}, lowered)

	return strings.Join(strings.Fields(cleaned), " ")
}
