package guardrails

// Default vocabularies. The topic whitelist and complexity marker classes are
// data, not code: callers may replace them wholesale through Config so the
// gate's policy can be tested and tuned independently of the matching logic.

// DefaultAllowedTopics is the whitelist vocabulary grouped by topic. A
// question must contain at least one keyword from any group to pass.
func DefaultAllowedTopics() map[string][]string {
	return map[string][]string{
		"spending": {"花費", "支出", "spending", "expense", "spent", "開銷", "費用", "花", "用"},
		"budget":   {"預算", "budget", "規劃", "planning", "計劃"},
		"category": {"伙食", "交通", "娛樂", "家務", "其它", "food", "transport", "entertainment", "household", "類別", "category"},
		"analysis": {"分析", "趨勢", "比較", "analyze", "trend", "compare", "統計", "stats"},
		"forecast": {"預測", "預計", "forecast", "predict", "估計", "未來"},
		"savings":  {"節省", "省錢", "save", "reduce", "優化", "減少", "降低"},
		"records":  {"交易", "帳單", "transaction", "transactions", "bill", "收據", "記錄", "明細"},
		"period":   {"一月", "二月", "三月", "四月", "五月", "六月", "七月", "八月", "九月", "十月", "十一月", "十二月", "month", "月", "january", "february", "march", "april", "may", "june", "july", "august", "september", "october", "november", "december"},
		"total":    {"總", "全部", "total", "all", "合計", "加總"},
		"details":  {"詳細", "明細", "detail", "breakdown", "列出", "show", "顯示", "看"},
		"question": {"多少", "什麼", "為什麼", "怎麼", "如何", "how much", "how many"},
	}
}

// DefaultComplexityClasses are the four marker classes used by the structural
// complexity check. A question tripping two or more distinct classes while
// also exceeding the token ceiling is rejected.
func DefaultComplexityClasses() map[string][]string {
	return map[string][]string{
		"connector":   {"and", "also", "和", "還有", "以及"},
		"conditional": {"if", "when", "如果", "假如", "當"},
		"superlative": {"best", "worst", "optimal", "最好", "最差"},
		"speculative": {"think", "believe", "will", "would", "認為", "覺得", "會", "將會"},
	}
}
