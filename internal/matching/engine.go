package matching

import "strings"

// DefaultIntentMarkers are question words that signal an information-seeking
// query. A query containing one of them gets a small score boost.
var DefaultIntentMarkers = []string{
	"how", "what", "when", "where", "why", "can", "do", "is", "are",
}

// Default engine thresholds and weights.
const (
	DefaultAcceptThreshold  = 0.7
	DefaultClarifyThreshold = 0.6
	DefaultKeywordWeight    = 0.3
	DefaultIntentBoost      = 1.1
)

// Config holds the tunable parameters of the match engine.
type Config struct {
	AcceptThreshold    float64
	ClarifyThreshold   float64
	ClarifyBandEnabled bool
	KeywordWeight      float64
	IntentBoost        float64
	TokenSortWeight    float64
	PartialWeight      float64
	TokenSetWeight     float64
	MinKeywordLength   int
	IntentMarkers      []string
	StopWords          []string
}

// DefaultConfig returns the standard engine configuration.
func DefaultConfig() Config {
	return Config{
		AcceptThreshold:  DefaultAcceptThreshold,
		ClarifyThreshold: DefaultClarifyThreshold,
		KeywordWeight:    DefaultKeywordWeight,
		IntentBoost:      DefaultIntentBoost,
		TokenSortWeight:  DefaultTokenSortWeight,
		PartialWeight:    DefaultPartialWeight,
		TokenSetWeight:   DefaultTokenSetWeight,
	}
}

// FaqEntry is a question/answer pair with precomputed keywords.
type FaqEntry struct {
	Question string
	Answer   string
	Keywords []string
	Category string
}

// MatchResult holds the best-scoring entry for a query. CombinedScore is the
// boosted score used for threshold comparisons and may exceed 1.
type MatchResult struct {
	Entry          FaqEntry
	CombinedScore  float64
	TextSimilarity float64
	KeywordScore   float64
}

// Engine scores user queries against an FAQ corpus.
type Engine struct {
	cfg       Config
	scorer    *Scorer
	extractor *Extractor
	markers   []string
}

// NewEngine creates an Engine. Zero-valued config fields fall back to the
// defaults.
func NewEngine(cfg Config) *Engine {
	def := DefaultConfig()

	if cfg.AcceptThreshold == 0 {
		cfg.AcceptThreshold = def.AcceptThreshold
	}
	if cfg.ClarifyThreshold == 0 {
		cfg.ClarifyThreshold = def.ClarifyThreshold
	}
	if cfg.KeywordWeight == 0 {
		cfg.KeywordWeight = def.KeywordWeight
	}
	if cfg.IntentBoost == 0 {
		cfg.IntentBoost = def.IntentBoost
	}
	if cfg.TokenSortWeight == 0 && cfg.PartialWeight == 0 && cfg.TokenSetWeight == 0 {
		cfg.TokenSortWeight = def.TokenSortWeight
		cfg.PartialWeight = def.PartialWeight
		cfg.TokenSetWeight = def.TokenSetWeight
	}

	markers := cfg.IntentMarkers
	if len(markers) == 0 {
		markers = DefaultIntentMarkers
	}

	return &Engine{
		cfg:       cfg,
		scorer:    NewScorer(cfg.TokenSortWeight, cfg.PartialWeight, cfg.TokenSetWeight),
		extractor: NewExtractor(cfg.StopWords, cfg.MinKeywordLength),
		markers:   markers,
	}
}

// Config returns the engine's effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// ExtractKeywords returns the keywords of text under the engine's extractor
// settings. Used when ingesting FAQ entries so corpus keywords match query
// keywords.
func (e *Engine) ExtractKeywords(text string) []string {
	return e.extractor.Extract(text)
}

// FindBestMatch scores the query against every entry and returns the highest
// scorer, or nil if no entry clears the match floor. Ties keep the earliest
// entry. The floor is the clarify threshold when the clarify band is enabled,
// otherwise the accept threshold.
func (e *Engine) FindBestMatch(query string, corpus []FaqEntry) *MatchResult {
	normalized := Normalize(query)
	if normalized == "" {
		return nil
	}

	queryKeywords := e.extractor.Extract(query)
	boost := e.intentBoost(normalized)

	floor := e.cfg.AcceptThreshold
	if e.cfg.ClarifyBandEnabled {
		floor = e.cfg.ClarifyThreshold
	}

	var best *MatchResult
	for _, entry := range corpus {
		textSim := e.scorer.Similarity(query, entry.Question)
		kwScore := keywordOverlap(queryKeywords, entry.Keywords)

		combined := textSim*(1-e.cfg.KeywordWeight) + kwScore*e.cfg.KeywordWeight
		combined *= boost

		if combined < floor {
			continue
		}
		if best == nil || combined > best.CombinedScore {
			best = &MatchResult{
				Entry:          entry,
				CombinedScore:  combined,
				TextSimilarity: textSim,
				KeywordScore:   kwScore,
			}
		}
	}

	return best
}

// intentBoost returns the boost factor for a normalized query. The marker
// check is substring containment on the whole query, not token membership.
func (e *Engine) intentBoost(normalized string) float64 {
	for _, marker := range e.markers {
		if strings.Contains(normalized, marker) {
			return e.cfg.IntentBoost
		}
	}
	return 1.0
}

// keywordOverlap returns the fraction of query keywords that match some entry
// keyword. A keyword matches if either string contains the other.
func keywordOverlap(queryKeywords, entryKeywords []string) float64 {
	if len(queryKeywords) == 0 {
		return 0
	}

	matched := 0
	for _, qk := range queryKeywords {
		for _, ek := range entryKeywords {
			if strings.Contains(qk, ek) || strings.Contains(ek, qk) {
				matched++
				break
			}
		}
	}

	return float64(matched) / float64(len(queryKeywords))
}
