package matching

import "strings"

// DefaultStopWords are common English words excluded from keyword extraction.
var DefaultStopWords = []string{
	"i", "me", "my", "myself", "we", "our", "ours", "ourselves",
	"you", "your", "yours", "yourself", "yourselves",
	"he", "him", "his", "himself", "she", "her", "hers", "herself",
	"it", "its", "itself", "they", "them", "their", "theirs", "themselves",
	"what", "which", "who", "whom", "this", "that", "these", "those",
	"am", "is", "are", "was", "were", "be", "been", "being",
	"have", "has", "had", "having", "do", "does", "did", "doing",
	"a", "an", "the", "and", "but", "if", "or", "because", "as",
	"until", "while", "of", "at", "by", "for", "with", "about",
	"against", "between", "into", "through", "during", "before",
	"after", "above", "below", "to", "from", "up", "down", "in",
	"out", "on", "off", "over", "under", "again", "further", "then",
	"once", "here", "there", "when", "where", "why", "how", "all",
	"any", "both", "each", "few", "more", "most", "other", "some",
	"such", "no", "nor", "not", "only", "own", "same", "so", "than",
	"too", "very", "can", "will", "just", "should", "now",
}

const defaultMinKeywordLength = 3

// Extractor pulls significant keywords out of free text.
type Extractor struct {
	stopWords map[string]struct{}
	minLength int
}

// NewExtractor creates an Extractor. Empty stopWords or a non-positive
// minLength fall back to the defaults.
func NewExtractor(stopWords []string, minLength int) *Extractor {
	if len(stopWords) == 0 {
		stopWords = DefaultStopWords
	}
	if minLength <= 0 {
		minLength = defaultMinKeywordLength
	}

	set := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		set[w] = struct{}{}
	}

	return &Extractor{stopWords: set, minLength: minLength}
}

// DefaultExtractor returns an Extractor with the default stop words and
// minimum keyword length.
func DefaultExtractor() *Extractor {
	return NewExtractor(nil, 0)
}

// Extract normalizes text and returns its keywords in order of appearance.
// Stop words and tokens shorter than the minimum length are dropped.
// Duplicates are preserved.
func (e *Extractor) Extract(text string) []string {
	tokens := strings.Fields(Normalize(text))

	keywords := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if len(tok) < e.minLength {
			continue
		}
		if _, stop := e.stopWords[tok]; stop {
			continue
		}
		keywords = append(keywords, tok)
	}

	return keywords
}
