package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Language is the detected input language.
type Language string

// Supported languages. Unknown falls back to the configured default.
const (
	LangChinese Language = "zh"
	LangEnglish Language = "en"
	LangUnknown Language = "unknown"
)

// Question is one raw user input plus its detection metadata.
type Question struct {
	Asked    time.Time
	Text     string
	Language Language
}

// QuestionType routes a question to the cheapest strategy able to answer it.
type QuestionType string

// Question types in escalating order of reasoning required.
const (
	TypeInstant    QuestionType = "instant"    // single period/category aggregate
	TypeDetail     QuestionType = "detail"     // record-level filtering (thresholds)
	TypeComparison QuestionType = "comparison" // two periods side by side
	TypeTrend      QuestionType = "trend"      // direction over time
	TypeForecast   QuestionType = "forecast"   // projection beyond the data
	TypeGeneral    QuestionType = "general"    // anything else in scope
)

// ThresholdOp is the direction of an amount comparison.
type ThresholdOp string

// Threshold directions.
const (
	ThresholdOver  ThresholdOp = "over"
	ThresholdUnder ThresholdOp = "under"
)

// AmountThreshold is a numeric filter extracted from the question,
// e.g. "over 1000".
type AmountThreshold struct {
	Op    ThresholdOp
	Value decimal.Decimal
}

// Entities are the structured fields extracted from one question. They are
// recomputed per question and never persisted.
type Entities struct {
	Threshold  *AmountThreshold
	Comparison *[2]Period // set when exactly two periods are being compared
	Periods    []Period   // reading order, deduplicated
	Categories []string   // canonical category names
}

// Primary returns the period a single-period question refers to. Conflicting
// mentions resolve to the last occurrence in reading order.
func (e Entities) Primary() (Period, bool) {
	if len(e.Periods) == 0 {
		return "", false
	}
	return e.Periods[len(e.Periods)-1], true
}

// ClassificationResult is the classifier's verdict on one question.
// Clarity is a heuristic proxy for extraction ambiguity, not a probability.
type ClassificationResult struct {
	Type     QuestionType
	Entities Entities
	Clarity  float64

	// FocusResolved is true when the entities were borrowed from the
	// conversation focus rather than extracted from the text.
	FocusResolved bool
}
