package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercases", "How Do I RESET", "how do i reset"},
		{"strips punctuation", "what's your refund policy?!", "what s your refund policy"},
		{"collapses whitespace", "  hello    world  ", "hello world"},
		{"keeps digits", "open 24/7 always", "open 24 7 always"},
		{"empty input", "", ""},
		{"only punctuation", "?!...", ""},
		{"tabs and newlines", "a\tb\nc", "a b c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"How do I reset my password?",
		"  WHAT'S   UP!!  ",
		"already normalized text",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once))
	}
}
