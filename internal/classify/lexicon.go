package classify

// Lexicon is the classifier's linguistic policy: every keyword table the
// extraction and typing rules consult. It is plain data so classification
// behavior can be tested and swapped without touching the matching code.
type Lexicon struct {
	// Categories maps canonical category names to their aliases in any
	// language or script. The canonical names must match the dataset.
	Categories map[string][]string

	TrendKeywords    []string
	ForecastKeywords []string
	TotalKeywords    []string
	Pronouns         []string
}

// DefaultLexicon covers Traditional Chinese ledger data queried in Chinese
// (traditional or simplified) or English.
func DefaultLexicon() Lexicon {
	return Lexicon{
		Categories: map[string][]string{
			"交通費":   {"交通费", "transport", "transportation", "travel", "commute"},
			"伙食費":   {"伙食费", "food", "meal", "meals", "dining", "eating"},
			"休閒/娛樂": {"休闲/娱乐", "娛樂", "娱乐", "entertainment", "leisure", "recreation", "fun"},
			"家務":    {"家务", "household", "housework", "chores"},
			"其它":    {"other", "others", "misc", "miscellaneous"},
		},
		TrendKeywords: []string{
			"trend", "pattern", "趨勢", "模式",
			"change", "changing", "changed", "變化", "改變",
			"increase", "increasing", "increased", "decrease", "decreasing", "decreased",
			"增加", "減少", "上升", "下降", "成長", "衰退",
			"growth", "growing", "decline", "declining", "rising", "falling",
			"over time", "recently", "lately", "最近",
		},
		ForecastKeywords: []string{
			"forecast", "predict", "預測", "預計", "estimate", "估計",
			"next month", "下個月", "下月",
		},
		TotalKeywords: []string{"total", "總", "合計", "加總", "全部"},
		Pronouns:      []string{"that", "it", "那個", "它", "這個", "那"},
	}
}

var monthsZH = [12]string{
	"一月", "二月", "三月", "四月", "五月", "六月",
	"七月", "八月", "九月", "十月", "十一月", "十二月",
}

var monthsEN = [12]string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

var monthsENShort = [12]string{
	"jan", "feb", "mar", "apr", "may", "jun",
	"jul", "aug", "sep", "oct", "nov", "dec",
}
