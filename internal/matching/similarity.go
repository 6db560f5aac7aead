package matching

import (
	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// Default blend weights for the three fuzzy ratios.
const (
	DefaultTokenSortWeight = 0.4
	DefaultPartialWeight   = 0.3
	DefaultTokenSetWeight  = 0.3
)

// Scorer computes a blended text similarity from three fuzzy string ratios:
// token-sort handles word reordering, partial handles substring containment,
// and token-set handles asymmetric token overlap.
type Scorer struct {
	tokenSortWeight float64
	partialWeight   float64
	tokenSetWeight  float64
}

// NewScorer creates a Scorer with custom weights. Weights are normalized to
// sum to 1; if all are zero the defaults are used.
func NewScorer(tokenSort, partial, tokenSet float64) *Scorer {
	total := tokenSort + partial + tokenSet
	if total <= 0 {
		return DefaultScorer()
	}

	return &Scorer{
		tokenSortWeight: tokenSort / total,
		partialWeight:   partial / total,
		tokenSetWeight:  tokenSet / total,
	}
}

// DefaultScorer returns a Scorer with the default weights.
func DefaultScorer() *Scorer {
	return &Scorer{
		tokenSortWeight: DefaultTokenSortWeight,
		partialWeight:   DefaultPartialWeight,
		tokenSetWeight:  DefaultTokenSetWeight,
	}
}

// Similarity returns the blended similarity of two raw strings in [0, 1].
// Both inputs are normalized before comparison. Returns 0 if either side
// normalizes to empty.
func (s *Scorer) Similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return 0
	}

	tokenSort := float64(fuzzy.TokenSortRatio(na, nb)) / 100
	partial := float64(fuzzy.PartialRatio(na, nb)) / 100
	tokenSet := float64(fuzzy.TokenSetRatio(na, nb)) / 100

	return tokenSort*s.tokenSortWeight +
		partial*s.partialWeight +
		tokenSet*s.tokenSetWeight
}
