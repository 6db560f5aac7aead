package matching

import "math"

// ResponseKind classifies what the bot should do with a match result.
type ResponseKind string

const (
	// KindFaq means a confident match was found and its answer is returned.
	KindFaq ResponseKind = "faq"

	// KindClarification means the match was borderline and the bot asks the
	// user to confirm the question.
	KindClarification ResponseKind = "clarification"

	// KindHandoff means no acceptable match was found and the bot offers a
	// human agent.
	KindHandoff ResponseKind = "human_handoff_request"
)

// FallbackMessage is the reply when nothing in the corpus matches.
const FallbackMessage = "I couldn't find a specific answer for your question. " +
	"Would you like to speak with a human agent for personalized assistance?"

// Response is the policy's decision for one query.
type Response struct {
	Kind       ResponseKind
	Text       string
	Question   string
	Category   string
	Confidence float64
	Matched    bool
}

// Policy maps match results to responses according to confidence tiers.
type Policy struct {
	acceptThreshold    float64
	clarifyThreshold   float64
	clarifyBandEnabled bool
}

// NewPolicy creates a Policy from the engine configuration.
func NewPolicy(cfg Config) *Policy {
	accept := cfg.AcceptThreshold
	if accept == 0 {
		accept = DefaultAcceptThreshold
	}
	clarify := cfg.ClarifyThreshold
	if clarify == 0 {
		clarify = DefaultClarifyThreshold
	}

	return &Policy{
		acceptThreshold:    accept,
		clarifyThreshold:   clarify,
		clarifyBandEnabled: cfg.ClarifyBandEnabled,
	}
}

// Classify turns a match result into a response. A nil result, or one below
// the accept threshold with the clarify band disabled, produces the fallback
// handoff offer. With the band enabled, scores between the clarify and accept
// thresholds produce a clarification prompt.
func (p *Policy) Classify(result *MatchResult) Response {
	if result == nil {
		return Response{
			Kind:       KindHandoff,
			Text:       FallbackMessage,
			Confidence: 0,
		}
	}

	confidence := Confidence(result.CombinedScore)

	if result.CombinedScore >= p.acceptThreshold {
		return Response{
			Kind:       KindFaq,
			Text:       result.Entry.Answer,
			Question:   result.Entry.Question,
			Category:   result.Entry.Category,
			Confidence: confidence,
			Matched:    true,
		}
	}

	if p.clarifyBandEnabled && result.CombinedScore >= p.clarifyThreshold {
		return Response{
			Kind:       KindClarification,
			Text:       "I think you're asking about: " + result.Entry.Question + "\n\n" + result.Entry.Answer,
			Question:   result.Entry.Question,
			Confidence: confidence,
			Matched:    true,
		}
	}

	return Response{
		Kind:       KindHandoff,
		Text:       FallbackMessage,
		Confidence: confidence,
	}
}

// Confidence converts an internal score to a reported confidence: clamped to
// 1 and rounded to two decimal places.
func Confidence(score float64) float64 {
	return math.Round(math.Min(score, 1)*100) / 100
}
