// Package guardrails gates questions before any expensive work happens.
// It is whitelist-only: anything not recognizably about the budget data is
// rejected, and structurally complex questions are rejected outright rather
// than answered badly. The bias is deliberate — some legitimate compound
// questions are refused so that ambiguous input never produces a fabricated
// answer.
package guardrails

import (
	"strings"

	"github.com/budgetsage/budgetsage/internal/common"
	"github.com/budgetsage/budgetsage/internal/model"
)

// DefaultTokenCeiling is the word-count limit for the complexity check.
const DefaultTokenCeiling = 15

// Result is the gate's verdict on one question.
type Result struct {
	Reason  model.ReasonCode // set iff Allowed is false
	Topic   string           // first matched whitelist topic when allowed
	Allowed bool
	Warning bool // allowed, but one complexity signal fired
}

// Config holds the gate's vocabularies and thresholds. Zero-value fields
// fall back to the package defaults.
type Config struct {
	AllowedTopics     map[string][]string
	ComplexityClasses map[string][]string
	TokenCeiling      int
}

// Guardrails enforces the topic and complexity gates. Stateless and safe
// for concurrent use.
type Guardrails struct {
	cfg Config
}

// New creates a gate from cfg, applying defaults for unset fields.
func New(cfg Config) *Guardrails {
	if cfg.AllowedTopics == nil {
		cfg.AllowedTopics = DefaultAllowedTopics()
	}
	if cfg.ComplexityClasses == nil {
		cfg.ComplexityClasses = DefaultComplexityClasses()
	}
	if cfg.TokenCeiling <= 0 {
		cfg.TokenCeiling = DefaultTokenCeiling
	}
	return &Guardrails{cfg: cfg}
}

// Check gates a question. There are no retries: a rejected question must be
// rephrased by the caller.
func (g *Guardrails) Check(text string) Result {
	lower := strings.ToLower(text)
	words := common.WordSet(text)

	topic, onTopic := g.matchTopic(lower, words)
	if !onTopic {
		return Result{Allowed: false, Reason: model.ReasonOffTopic}
	}

	// Two independent complexity signals: either alone is tolerated with a
	// soft warning, both together mean the question is unlikely to be
	// answerable honestly.
	overLong := len(common.Tokenize(text)) > g.cfg.TokenCeiling
	markers := g.complexityClasses(lower, words) >= 2
	if overLong && markers {
		return Result{Allowed: false, Reason: model.ReasonTooComplex}
	}

	return Result{Allowed: true, Topic: topic, Warning: overLong || markers}
}

func (g *Guardrails) matchTopic(lower string, words map[string]bool) (string, bool) {
	for topic, keywords := range g.cfg.AllowedTopics {
		for _, kw := range keywords {
			if common.MatchesKeyword(lower, words, kw) {
				return topic, true
			}
		}
	}
	return "", false
}

func (g *Guardrails) complexityClasses(lower string, words map[string]bool) int {
	distinct := 0
	for _, markers := range g.cfg.ComplexityClasses {
		for _, m := range markers {
			if common.MatchesKeyword(lower, words, m) {
				distinct++
				break
			}
		}
	}
	return distinct
}
