// Package locale holds the bilingual response templates. Messages are data
// keyed by template name and language so wording can change without touching
// engine code.
package locale

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/budgetsage/budgetsage/internal/model"
)

// Templates resolves message keys to localized strings with a process-wide
// fallback language for unknown-language questions.
type Templates struct {
	messages map[string]map[model.Language]string
	fallback model.Language
}

// New creates the default template set with the given fallback language.
func New(fallback model.Language) *Templates {
	if fallback != model.LangChinese && fallback != model.LangEnglish {
		fallback = model.LangChinese
	}
	return &Templates{fallback: fallback, messages: defaultMessages}
}

// Render formats the message for key in lang, falling back to the configured
// default language when lang is unknown. Unknown keys render as the key
// itself so a missing template is visible rather than silent.
func (t *Templates) Render(key string, lang model.Language, args ...any) string {
	byLang, ok := t.messages[key]
	if !ok {
		return key
	}
	msg, ok := byLang[t.Resolve(lang)]
	if !ok {
		msg = byLang[t.fallback]
	}
	return fmt.Sprintf(msg, args...)
}

// Resolve maps unknown to the fallback language.
func (t *Templates) Resolve(lang model.Language) model.Language {
	if lang != model.LangChinese && lang != model.LangEnglish {
		return t.fallback
	}
	return lang
}

var monthNamesZH = [12]string{
	"一月", "二月", "三月", "四月", "五月", "六月",
	"七月", "八月", "九月", "十月", "十一月", "十二月",
}

// PeriodName renders a canonical period key for display.
func (t *Templates) PeriodName(p model.Period, lang model.Language) string {
	m := p.Month()
	if m == 0 {
		return string(p)
	}
	if t.Resolve(lang) == model.LangChinese {
		return monthNamesZH[int(m)-1]
	}
	name := string(p)
	return strings.ToUpper(name[:1]) + name[1:]
}

// PeriodList renders a comma-separated list of periods for display.
func (t *Templates) PeriodList(periods []model.Period, lang model.Language) string {
	names := make([]string, len(periods))
	for i, p := range periods {
		names[i] = t.PeriodName(p, lang)
	}
	return strings.Join(names, ", ")
}

// Amount renders a decimal with thousands separators and no fraction,
// matching how the ledger displays NT$ values.
func Amount(d decimal.Decimal) string {
	s := d.Round(0).String()
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

var defaultMessages = map[string]map[model.Language]string{
	"instant.total": {
		model.LangChinese: "%s總支出 NT$%s",
		model.LangEnglish: "%s total: NT$%s",
	},
	"instant.category_total": {
		model.LangChinese: "%[1]s的%[2]s總共 NT$%[3]s",
		model.LangEnglish: "%[2]s in %[1]s: NT$%[3]s",
	},
	"instant.category_all": {
		model.LangChinese: "%s總共 NT$%s (跨 %d 個月)",
		model.LangEnglish: "Total %s: NT$%s (across %d months)",
	},
	"instant.overall": {
		model.LangChinese: "總支出 NT$%s (共 %d 個月)",
		model.LangEnglish: "Total spending: NT$%s (%d months)",
	},
	"instant.count": {
		model.LangChinese: "%[1]s共有 %[2]d 筆交易",
		model.LangEnglish: "%[2]d transactions in %[1]s",
	},
	"instant.count_category": {
		model.LangChinese: "%[1]s的%[2]s共有 %[3]d 筆交易",
		model.LangEnglish: "%[3]d %[2]s transactions in %[1]s",
	},
	"instant.average": {
		model.LangChinese: "每月平均支出 NT$%s",
		model.LangEnglish: "Monthly average: NT$%s",
	},
	"reject.off_topic": {
		model.LangChinese: "這個問題超出預算分析範圍。試試問：「七月花了多少？」或「比較七月和八月」",
		model.LangEnglish: "That question is outside budget analysis. Try: \"How much in July?\" or \"Compare July and August\"",
	},
	"reject.too_complex": {
		model.LangChinese: "問題太複雜了，請拆成一個一個的小問題。試試問：「七月的伙食費是多少？」",
		model.LangEnglish: "That question is too complex; please break it into smaller ones. Try: \"How much food in July?\"",
	},
	"errors.no_data": {
		model.LangChinese: "找不到%s的資料。可用月份: %s",
		model.LangEnglish: "No data for %s. Available months: %s",
	},
	"errors.no_answer": {
		model.LangChinese: "抱歉，我無法回答這個問題。",
		model.LangEnglish: "Sorry, I don't have that answer.",
	},
	"uncertainty.low": {
		model.LangChinese: "⚠️ 我對這個答案的信心度較低，請謹慎參考。",
		model.LangEnglish: "⚠️ I have low confidence in this answer. Please use with caution.",
	},
}
