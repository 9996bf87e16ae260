// Package confidence combines five independent signals into one calibrated
// score with a retrievable per-component breakdown.
package confidence

import (
	"github.com/budgetsage/budgetsage/internal/model"
)

// Weights are the fixed linear-combination weights. They sum to 1.0 so the
// overall score is a convex combination of its components.
type Weights struct {
	DataAvailability float64
	QuestionClarity  float64
	LLMCertainty     float64
	GuardrailPassed  float64
	ResponseVerified float64
}

// DefaultWeights mirror the tuned production values: data availability
// dominates because an answer without data behind it is worthless.
func DefaultWeights() Weights {
	return Weights{
		DataAvailability: 0.40,
		QuestionClarity:  0.20,
		LLMCertainty:     0.20,
		GuardrailPassed:  0.10,
		ResponseVerified: 0.10,
	}
}

// DataScope records whether the question asked for data the store does not
// have. Either gap discounts availability by half.
type DataScope struct {
	PeriodMissing   bool
	CategoryMissing bool
}

// Tracker scores tier attempts. Stateless and safe for concurrent use.
type Tracker struct {
	weights Weights
}

// New creates a tracker with the given weights.
func New(weights Weights) *Tracker {
	return &Tracker{weights: weights}
}

// Score derives the five components and their weighted combination for one
// winning tier attempt. guardrail is 1.0 for a clean pass, 0.6 for a pass
// with a soft warning; rejected questions never reach scoring.
func (t *Tracker) Score(cls model.ClassificationResult, attempt model.TierAttempt, guardrail float64, scope DataScope) model.ConfidenceBreakdown {
	b := model.ConfidenceBreakdown{
		DataAvailability: availability(attempt, scope),
		QuestionClarity:  clarityBand(cls.Clarity),
		LLMCertainty:     llmCertainty(attempt),
		GuardrailPassed:  guardrail,
		ResponseVerified: responseVerified(attempt),
	}

	overall := t.weights.DataAvailability*b.DataAvailability +
		t.weights.QuestionClarity*b.QuestionClarity +
		t.weights.LLMCertainty*b.LLMCertainty +
		t.weights.GuardrailPassed*b.GuardrailPassed +
		t.weights.ResponseVerified*b.ResponseVerified

	b.Overall = clamp01(overall)
	b.Band = model.BandFor(b.Overall)
	return b
}

// Rejected is the by-convention breakdown for a question stopped at the
// gate: everything zero, very low band.
func Rejected() model.ConfidenceBreakdown {
	return model.ConfidenceBreakdown{Band: model.BandVeryLow}
}

func availability(attempt model.TierAttempt, scope DataScope) float64 {
	score := attempt.DataCompleteness
	if scope.PeriodMissing || scope.CategoryMissing {
		score *= 0.5
	}
	return clamp01(score)
}

// clarityBand discretizes the raw clarity heuristic so small differences do
// not create false precision in the final score.
func clarityBand(clarity float64) float64 {
	switch {
	case clarity >= 0.8:
		return 0.95
	case clarity >= 0.6:
		return 0.75
	case clarity >= 0.4:
		return 0.55
	default:
		return 0.35
	}
}

// llmCertainty is 1.0 for the deterministic tier; for LLM tiers it steps
// down with each hedging phrase detected in the output.
func llmCertainty(attempt model.TierAttempt) float64 {
	if attempt.Tier == model.TierDeterministic {
		return 1.0
	}
	switch attempt.HedgeCount {
	case 0:
		return 0.95
	case 1:
		return 0.75
	case 2:
		return 0.55
	default:
		return 0.35
	}
}

// responseVerified is 1.0 only when the numeric output was cross-checked by
// direct recomputation, which is only possible for Tier 1.
func responseVerified(attempt model.TierAttempt) float64 {
	if attempt.Tier == model.TierDeterministic {
		return 1.0
	}
	return 0.7
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
