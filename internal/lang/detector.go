// Package lang classifies input text language so responses match the user
// and downstream keyword matching can be tuned per language.
package lang

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/budgetsage/budgetsage/internal/model"
)

// Indicator words that strongly suggest a language. Kept as data so the
// detector's policy can be swapped without touching the scoring code.
var defaultIndicators = map[model.Language][]string{
	model.LangChinese: {
		"的", "是", "嗎", "什麼", "為什麼", "怎麼", "多少", "哪",
		"請", "幫我", "給我", "看", "顯示", "月", "費", "總共",
		"伙食", "交通", "支出", "預算", "分析", "趨勢", "比較",
	},
	model.LangEnglish: {
		"the", "is", "are", "what", "why", "how", "show", "please",
		"tell", "give", "can", "would", "month", "expense", "total",
		"food", "transport", "spending", "budget", "analyze", "trend", "compare",
	},
}

var englishWord = regexp.MustCompile(`\b[a-zA-Z]{3,}\b`)

// Detection is the detector's verdict on one input.
type Detection struct {
	Language   model.Language
	Confidence float64 // normalized signal ratio, not a probability
}

// Detector scores text against per-language signal sets. It is stateless
// and safe for concurrent use.
type Detector struct {
	indicators map[model.Language][]string
	floor      float64
}

// Option configures a Detector.
type Option func(*Detector)

// WithFloor sets the confidence floor below which detection yields unknown.
func WithFloor(floor float64) Option {
	return func(d *Detector) { d.floor = floor }
}

// WithIndicators replaces the default indicator word tables.
func WithIndicators(indicators map[model.Language][]string) Option {
	return func(d *Detector) { d.indicators = indicators }
}

// NewDetector creates a detector with the default bilingual signal sets and
// a confidence floor of 0.3.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{
		indicators: defaultIndicators,
		floor:      0.3,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect classifies the language of text. Empty or whitespace-only input
// returns unknown with confidence 0. Detect never fails.
func (d *Detector) Detect(text string) Detection {
	if strings.TrimSpace(text) == "" {
		return Detection{Language: model.LangUnknown, Confidence: 0}
	}

	scores := map[model.Language]int{}
	lower := strings.ToLower(text)

	// Signal 1: indicator words.
	for language, words := range d.indicators {
		for _, w := range words {
			if strings.Contains(lower, w) {
				scores[language]++
			}
		}
	}

	// Signal 2: CJK characters are a very strong Chinese signal.
	hasCJK := containsCJK(text)
	if hasCJK {
		scores[model.LangChinese] += 5
	}

	// Signal 3: count of Latin-alphabet words.
	englishWords := len(englishWord.FindAllString(text, -1))
	switch {
	case englishWords > 2:
		scores[model.LangEnglish] += 3
	case englishWords > 0:
		scores[model.LangEnglish]++
	}

	// Signal 4: question punctuation.
	if strings.Contains(text, "？") {
		scores[model.LangChinese]++
	}
	if strings.Contains(text, "?") && !hasCJK {
		scores[model.LangEnglish]++
	}

	total := scores[model.LangChinese] + scores[model.LangEnglish]
	if total == 0 {
		return Detection{Language: model.LangUnknown, Confidence: 0}
	}

	detected := model.LangChinese
	best := scores[model.LangChinese]
	if scores[model.LangEnglish] > best {
		detected = model.LangEnglish
		best = scores[model.LangEnglish]
	} else if scores[model.LangEnglish] == best {
		// Tie with no dominant signal.
		return Detection{Language: model.LangUnknown, Confidence: 0.5}
	}

	confidence := float64(best) / float64(total)
	if confidence > 0.95 {
		confidence = 0.95
	}
	if confidence < d.floor {
		return Detection{Language: model.LangUnknown, Confidence: confidence}
	}

	return Detection{Language: detected, Confidence: confidence}
}

func containsCJK(text string) bool {
	for _, r := range text {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}
