// Package classify maps free-text questions to a question type plus
// structured entities, with a clarity score describing how unambiguous the
// extraction was.
package classify

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/budgetsage/budgetsage/internal/common"
	"github.com/budgetsage/budgetsage/internal/model"
)

var (
	numericMonthZH = regexp.MustCompile(`(\d{1,2})月`)

	// "may" is both a month and a modal verb, so it only counts as a month
	// when a preposition or determiner marks it as one.
	monthMayEN = regexp.MustCompile(`\b(?:in|for|during|of|since|until|last|this|next)\s+may\b`)

	overAmount  = regexp.MustCompile(`(?:over|above|more than|exceeding|超過|大於|高於)\s*(?:nt\$|ntd|\$)?\s*([0-9][0-9,]*)`)
	underAmount = regexp.MustCompile(`(?:under|below|less than|低於|小於|少於)\s*(?:nt\$|ntd|\$)?\s*([0-9][0-9,]*)`)
)

// Classifier extracts entities and assigns question types according to its
// lexicon. Stateless; the conversation focus is passed in per question.
type Classifier struct {
	monthEN *regexp.Regexp
	lex     Lexicon
}

// New creates a classifier over the given lexicon.
func New(lex Lexicon) *Classifier {
	names := make([]string, 0, 24)
	for _, n := range monthsEN {
		if n != "may" {
			names = append(names, n)
		}
	}
	for _, n := range monthsENShort {
		if n != "may" {
			names = append(names, n)
		}
	}
	return &Classifier{
		lex:     lex,
		monthEN: regexp.MustCompile(`\b(` + strings.Join(names, "|") + `)\b`),
	}
}

// Classify runs the fixed extractor sequence over text and derives the
// question type and clarity score. focus is the conversation's current
// subject, used only to resolve pronouns; it never overrides an explicit
// mention.
func (c *Classifier) Classify(text string, _ model.Language, focus model.Focus) model.ClassificationResult {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)
	words := common.WordSet(trimmed)

	entities := model.Entities{
		Periods:    c.extractPeriods(trimmed, lower),
		Categories: c.extractCategories(trimmed, lower, words),
		Threshold:  extractThreshold(lower),
	}

	pronoun := c.hasPronoun(lower, words)
	resolved := false
	if pronoun && len(entities.Periods) == 0 && entities.Categories == nil && !focus.Empty() {
		if focus.Period != "" {
			entities.Periods = []model.Period{focus.Period}
		}
		if focus.Category != "" {
			entities.Categories = []string{focus.Category}
		}
		resolved = true
	}

	qType := c.questionType(lower, words, entities)
	if qType == model.TypeComparison && len(entities.Periods) >= 2 {
		pair := [2]model.Period{entities.Periods[0], entities.Periods[1]}
		entities.Comparison = &pair
	}

	return model.ClassificationResult{
		Type:          qType,
		Entities:      entities,
		Clarity:       c.clarity(trimmed, qType, entities, pronoun, resolved),
		FocusResolved: resolved,
	}
}

// extractPeriods finds every month mention and canonicalizes it. Mentions are
// returned deduplicated in reading order; the caller treats the last one as
// primary when they conflict.
func (c *Classifier) extractPeriods(text, lower string) []model.Period {
	type mention struct {
		pos    int
		length int
		period model.Period
	}
	var mentions []mention

	// Ideographic month names. Longer names are collected first so 十一月
	// claims its span before 一月 can match inside it.
	order := []int{10, 11, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	claimed := make([]bool, len(text))
	for _, i := range order {
		name := monthsZH[i]
		for from := 0; ; {
			rel := strings.Index(text[from:], name)
			if rel < 0 {
				break
			}
			pos := from + rel
			if !claimed[pos] {
				for j := pos; j < pos+len(name); j++ {
					claimed[j] = true
				}
				mentions = append(mentions, mention{pos: pos, length: len(name), period: model.PeriodOf(time.Month(i + 1))})
			}
			from = pos + len(name)
		}
	}

	// Numeric form: 7月, 11月.
	for _, m := range numericMonthZH.FindAllStringSubmatchIndex(text, -1) {
		pos := m[0]
		if claimed[pos] {
			continue
		}
		var n int
		if _, err := fmt.Sscanf(text[m[2]:m[3]], "%d", &n); err != nil || n < 1 || n > 12 {
			continue
		}
		mentions = append(mentions, mention{pos: pos, length: m[1] - m[0], period: model.PeriodOf(time.Month(n))})
	}

	// English names and abbreviations.
	for _, m := range c.monthEN.FindAllStringSubmatchIndex(lower, -1) {
		name := lower[m[2]:m[3]]
		for i := 0; i < 12; i++ {
			if name == monthsEN[i] || name == monthsENShort[i] {
				mentions = append(mentions, mention{pos: m[0], length: m[1] - m[0], period: model.PeriodOf(time.Month(i + 1))})
				break
			}
		}
	}
	for _, m := range monthMayEN.FindAllStringIndex(lower, -1) {
		mentions = append(mentions, mention{pos: m[0], length: m[1] - m[0], period: model.PeriodOf(time.May)})
	}

	sort.Slice(mentions, func(i, j int) bool { return mentions[i].pos < mentions[j].pos })

	var periods []model.Period
	seen := make(map[model.Period]bool)
	for _, m := range mentions {
		if seen[m.period] {
			// A repeated mention moves the period to the end so the
			// last-occurrence rule still sees it as most recent.
			for k, p := range periods {
				if p == m.period {
					periods = append(periods[:k], periods[k+1:]...)
					break
				}
			}
		}
		seen[m.period] = true
		periods = append(periods, m.period)
	}
	return periods
}

func (c *Classifier) extractCategories(text, lower string, words map[string]bool) []string {
	var found []string
	seen := make(map[string]bool)
	for canonical, aliases := range c.lex.Categories {
		if strings.Contains(text, canonical) {
			if !seen[canonical] {
				seen[canonical] = true
				found = append(found, canonical)
			}
			continue
		}
		for _, alias := range aliases {
			if common.MatchesKeyword(lower, words, alias) {
				if !seen[canonical] {
					seen[canonical] = true
					found = append(found, canonical)
				}
				break
			}
		}
	}
	sort.Strings(found)
	return found
}

func extractThreshold(lower string) *model.AmountThreshold {
	if m := overAmount.FindStringSubmatch(lower); m != nil {
		if v, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", "")); err == nil {
			return &model.AmountThreshold{Op: model.ThresholdOver, Value: v}
		}
	}
	if m := underAmount.FindStringSubmatch(lower); m != nil {
		if v, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", "")); err == nil {
			return &model.AmountThreshold{Op: model.ThresholdUnder, Value: v}
		}
	}
	return nil
}

// questionType applies the priority rule: comparison, then detail, then
// forecast/trend keywords, then instant, falling back to general. Trend and
// forecast keywords outrank the instant rule because their presence signals
// reasoning the deterministic path cannot produce.
func (c *Classifier) questionType(lower string, words map[string]bool, e model.Entities) model.QuestionType {
	if len(e.Periods) >= 2 && len(e.Categories) == 0 && e.Threshold == nil {
		return model.TypeComparison
	}
	if e.Threshold != nil {
		return model.TypeDetail
	}
	if c.anyKeyword(lower, words, c.lex.ForecastKeywords) {
		return model.TypeForecast
	}
	if c.anyKeyword(lower, words, c.lex.TrendKeywords) {
		return model.TypeTrend
	}
	if len(e.Periods) == 1 || len(e.Categories) > 0 || c.anyKeyword(lower, words, c.lex.TotalKeywords) {
		return model.TypeInstant
	}
	return model.TypeGeneral
}

func (c *Classifier) anyKeyword(lower string, words map[string]bool, keywords []string) bool {
	for _, kw := range keywords {
		if common.MatchesKeyword(lower, words, kw) {
			return true
		}
	}
	return false
}

func (c *Classifier) hasPronoun(lower string, words map[string]bool) bool {
	return c.anyKeyword(lower, words, c.lex.Pronouns)
}

// clarity combines entity extraction success, pronoun ambiguity, and length
// into a [0,1] heuristic. Weighted 0.5 / 0.3 / 0.2.
func (c *Classifier) clarity(text string, qType model.QuestionType, e model.Entities, pronoun, resolved bool) float64 {
	var entityScore float64
	switch qType {
	case model.TypeInstant:
		if len(e.Periods) > 0 || len(e.Categories) > 0 {
			entityScore = 1.0
		} else {
			entityScore = 0.6 // bare "total" style question
		}
	case model.TypeComparison:
		entityScore = float64(len(e.Periods)) / 2
		if entityScore > 1 {
			entityScore = 1
		}
	case model.TypeDetail:
		entityScore = 1.0
	case model.TypeTrend, model.TypeForecast:
		if len(e.Periods) > 0 || len(e.Categories) > 0 {
			entityScore = 1.0
		} else {
			entityScore = 0.5
		}
	default:
		entityScore = 0.3
	}

	pronounScore := 1.0
	switch {
	case pronoun && resolved:
		pronounScore = 0.6
	case pronoun:
		pronounScore = 0
	}

	tokens := len(common.Tokenize(text))
	lengthScore := 0.4
	switch {
	case tokens <= 8:
		lengthScore = 1.0
	case tokens <= 12:
		lengthScore = 0.7
	}

	score := 0.5*entityScore + 0.3*pronounScore + 0.2*lengthScore
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
