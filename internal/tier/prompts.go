package tier

import (
	"fmt"
	"sort"
	"strings"

	"github.com/budgetsage/budgetsage/internal/locale"
	"github.com/budgetsage/budgetsage/internal/model"
)

// buildSummaryPrompt renders the question plus per-month and per-category
// aggregates. Months are sorted chronologically and categories
// alphabetically so identical stats always produce an identical prompt,
// which keeps the answer cache effective.
func (o *Orchestrator) buildSummaryPrompt(question string, stats *model.SummaryStats, lang model.Language) string {
	var b strings.Builder

	if o.templates.Resolve(lang) == model.LangChinese {
		b.WriteString("你是家庭預算助理。根據以下支出摘要，用繁體中文簡短回答問題。\n")
		b.WriteString("只使用摘要中的數字，不要編造資料。\n\n")
		b.WriteString("支出摘要:\n")
	} else {
		b.WriteString("You are a family budget assistant. Answer the question briefly in English using the spending summary below.\n")
		b.WriteString("Use only numbers from the summary; do not invent data.\n\n")
		b.WriteString("Spending summary:\n")
	}

	for _, p := range sortedPeriods(stats.ByPeriod) {
		fmt.Fprintf(&b, "- %s: NT$%s\n", o.templates.PeriodName(p, lang), locale.Amount(stats.ByPeriod[p]))
		byCat := stats.ByPeriodCategory[p]
		for _, c := range sortedCategories(byCat) {
			fmt.Fprintf(&b, "    %s: NT$%s\n", c, locale.Amount(byCat[c]))
		}
	}
	fmt.Fprintf(&b, "\nTotal: NT$%s (%d records)\n", locale.Amount(stats.Total), stats.RecordCount)

	if o.templates.Resolve(lang) == model.LangChinese {
		fmt.Fprintf(&b, "\n問題: %s\n回答:", question)
	} else {
		fmt.Fprintf(&b, "\nQuestion: %s\nAnswer:", question)
	}
	return b.String()
}

// buildFullDataPrompt renders the question plus the individual matching
// records, one per line in date order.
func (o *Orchestrator) buildFullDataPrompt(question string, records []model.Record, lang model.Language) string {
	var b strings.Builder

	if o.templates.Resolve(lang) == model.LangChinese {
		b.WriteString("你是家庭預算助理。根據以下逐筆支出記錄，用繁體中文回答問題。\n")
		b.WriteString("仔細計算，只使用記錄中的數字。\n\n")
		b.WriteString("支出記錄:\n")
	} else {
		b.WriteString("You are a family budget assistant. Answer the question in English using the itemized records below.\n")
		b.WriteString("Calculate carefully and use only numbers from the records.\n\n")
		b.WriteString("Records:\n")
	}

	sorted := make([]model.Record, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	for _, r := range sorted {
		fmt.Fprintf(&b, "%s %s NT$%s", r.Date.Format("2006-01-02"), r.Category, locale.Amount(r.Amount))
		if r.Person != "" {
			fmt.Fprintf(&b, " (%s)", r.Person)
		}
		b.WriteByte('\n')
	}

	if o.templates.Resolve(lang) == model.LangChinese {
		fmt.Fprintf(&b, "\n問題: %s\n回答:", question)
	} else {
		fmt.Fprintf(&b, "\nQuestion: %s\nAnswer:", question)
	}
	return b.String()
}

func sortedPeriods[V any](m map[model.Period]V) []model.Period {
	out := make([]model.Period, 0, len(m))
	for p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month() < out[j].Month() })
	return out
}

func sortedCategories[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for c := range m {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
