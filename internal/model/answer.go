package model

// Tier identifies one of the three escalating answer strategies.
type Tier int

// Tiers in strictly increasing cost order.
const (
	TierNone          Tier = 0 // rejected before any attempt
	TierDeterministic Tier = 1 // direct aggregation, no LLM
	TierSummary       Tier = 2 // fast LLM over aggregate summary
	TierFullData      Tier = 3 // deep LLM over the full record subset
)

// TierAttempt is the outcome of one tier. Attempts are pure functions of
// (entities, dataset snapshot); a failed attempt carries enough to decide
// escalation and nothing else.
type TierAttempt struct {
	Err              error
	AnswerText       string
	Tier             Tier
	HedgeCount       int // uncertainty phrases detected in LLM output
	DataCompleteness float64
	Succeeded        bool
}

// ReasonCode explains a pre-computation rejection.
type ReasonCode string

// Rejection and terminal failure codes.
const (
	ReasonNone       ReasonCode = ""
	ReasonOffTopic   ReasonCode = "off_topic"
	ReasonTooComplex ReasonCode = "too_complex"
	ReasonNoAnswer   ReasonCode = "no_answer"
)

// Band buckets a confidence score for display.
type Band string

// Display bands.
const (
	BandHigh    Band = "high"     // >= 0.80
	BandMedium  Band = "medium"   // 0.60 - 0.79
	BandLow     Band = "low"      // 0.40 - 0.59
	BandVeryLow Band = "very_low" // < 0.40
)

// BandFor maps an overall score into its display band.
func BandFor(overall float64) Band {
	switch {
	case overall >= 0.8:
		return BandHigh
	case overall >= 0.6:
		return BandMedium
	case overall >= 0.4:
		return BandLow
	default:
		return BandVeryLow
	}
}

// ConfidenceBreakdown is the five-component explanation behind a single
// confidence score. Callers get the full breakdown, not just the scalar.
type ConfidenceBreakdown struct {
	DataAvailability float64
	QuestionClarity  float64
	LLMCertainty     float64
	GuardrailPassed  float64
	ResponseVerified float64
	Overall          float64
	Band             Band
}

// Answer is the final payload returned to callers.
type Answer struct {
	Text       string
	Language   Language
	Rejection  ReasonCode // non-empty iff the question never reached a tier
	TierUsed   Tier
	Confidence ConfidenceBreakdown
}

// Rejected reports whether the question was stopped before computation.
func (a *Answer) Rejected() bool {
	return a.Rejection == ReasonOffTopic || a.Rejection == ReasonTooComplex
}
