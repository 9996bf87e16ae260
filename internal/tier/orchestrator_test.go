package tier

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/budgetsage/budgetsage/internal/locale"
	"github.com/budgetsage/budgetsage/internal/model"
	"github.com/budgetsage/budgetsage/internal/testutil"
)

func defaultRecords() []model.Record {
	return []model.Record{
		testutil.Rec(time.July, 3, "伙食費", "媽媽", 1200),
		testutil.Rec(time.July, 10, "交通費", "爸爸", 800),
		testutil.Rec(time.July, 21, "伙食費", "媽媽", 300),
		testutil.Rec(time.August, 2, "伙食費", "媽媽", 900),
		testutil.Rec(time.August, 15, "休閒/娛樂", "小孩", 500),
	}
}

func newOrchestrator(store *testutil.FakeStore, fast, deep *testutil.ScriptedClient, cfg Config) *Orchestrator {
	return New(store, fast, deep, locale.New(model.LangChinese), cfg, nil)
}

func instantCls(periods []model.Period, categories []string) model.ClassificationResult {
	return model.ClassificationResult{
		Type:     model.TypeInstant,
		Entities: model.Entities{Periods: periods, Categories: categories},
		Clarity:  0.9,
	}
}

func TestTier1PeriodTotal(t *testing.T) {
	store := testutil.NewFakeStore(defaultRecords()...)
	fast := testutil.NewScriptedClient()
	deep := testutil.NewScriptedClient()
	o := newOrchestrator(store, fast, deep, Config{})

	out := o.Resolve(context.Background(), "七月花了多少", instantCls([]model.Period{"july"}, nil), model.LangChinese)

	require.True(t, out.Final.Succeeded)
	assert.Equal(t, model.TierDeterministic, out.Final.Tier)
	assert.Contains(t, out.Final.AnswerText, "2,300")
	assert.Len(t, out.Trail, 1)

	// No LLM was consulted.
	assert.Zero(t, fast.CallCount())
	assert.Zero(t, deep.CallCount())
}

func TestTier1CategoryInPeriod(t *testing.T) {
	store := testutil.NewFakeStore(defaultRecords()...)
	o := newOrchestrator(store, testutil.NewScriptedClient(), testutil.NewScriptedClient(), Config{})

	out := o.Resolve(context.Background(), "七月的伙食費多少",
		instantCls([]model.Period{"july"}, []string{"伙食費"}), model.LangChinese)

	require.True(t, out.Final.Succeeded)
	assert.Equal(t, model.TierDeterministic, out.Final.Tier)
	assert.Contains(t, out.Final.AnswerText, "1,500")
	assert.Contains(t, out.Final.AnswerText, "伙食費")
}

func TestTier1Count(t *testing.T) {
	store := testutil.NewFakeStore(defaultRecords()...)
	o := newOrchestrator(store, testutil.NewScriptedClient(), testutil.NewScriptedClient(), Config{})

	out := o.Resolve(context.Background(), "七月有幾筆交易", instantCls([]model.Period{"july"}, nil), model.LangChinese)

	require.True(t, out.Final.Succeeded)
	assert.Contains(t, out.Final.AnswerText, "3")
}

func TestTier1CountHonorsCategoryFilter(t *testing.T) {
	store := testutil.NewFakeStore(defaultRecords()...)
	o := newOrchestrator(store, testutil.NewScriptedClient(), testutil.NewScriptedClient(), Config{})

	out := o.Resolve(context.Background(), "七月伙食費幾筆",
		instantCls([]model.Period{"july"}, []string{"伙食費"}), model.LangChinese)

	require.True(t, out.Final.Succeeded)
	assert.Equal(t, model.TierDeterministic, out.Final.Tier)
	// July holds 3 records but only 2 are 伙食費.
	assert.Contains(t, out.Final.AnswerText, "2")
	assert.NotContains(t, out.Final.AnswerText, "3")
	assert.Contains(t, out.Final.AnswerText, "伙食費")
}

func TestTier1CountWithoutPeriodEscalates(t *testing.T) {
	store := testutil.NewFakeStore(defaultRecords()...)
	fast := testutil.NewScriptedClient(testutil.ScriptStep{Text: "帳本總共有 5 筆交易記錄。"})
	o := newOrchestrator(store, fast, testutil.NewScriptedClient(), Config{})

	out := o.Resolve(context.Background(), "總共有幾筆交易", instantCls(nil, nil), model.LangChinese)

	require.True(t, out.Final.Succeeded)
	assert.Equal(t, model.TierSummary, out.Final.Tier)
	assert.Equal(t, 1, fast.CallCount())
}

func TestTier1OverallTotal(t *testing.T) {
	store := testutil.NewFakeStore(defaultRecords()...)
	o := newOrchestrator(store, testutil.NewScriptedClient(), testutil.NewScriptedClient(), Config{})

	out := o.Resolve(context.Background(), "總共花了多少", instantCls(nil, nil), model.LangChinese)

	require.True(t, out.Final.Succeeded)
	assert.Equal(t, model.TierDeterministic, out.Final.Tier)
	assert.Contains(t, out.Final.AnswerText, "3,700")
}

func TestTier1EmptyFilterEscalates(t *testing.T) {
	store := testutil.NewFakeStore(defaultRecords()...)
	fast := testutil.NewScriptedClient(testutil.ScriptStep{Text: "九月沒有任何支出記錄，資料從七月開始。"})
	o := newOrchestrator(store, fast, testutil.NewScriptedClient(), Config{})

	out := o.Resolve(context.Background(), "九月花了多少", instantCls([]model.Period{"september"}, nil), model.LangChinese)

	require.True(t, out.Final.Succeeded)
	assert.Equal(t, model.TierSummary, out.Final.Tier)
	assert.Equal(t, 1, fast.CallCount())
}

func TestNonInstantSkipsTier1(t *testing.T) {
	store := testutil.NewFakeStore(defaultRecords()...)
	fast := testutil.NewScriptedClient(testutil.ScriptStep{Text: "七月到八月的支出呈現下降，主要因為伙食費減少。"})
	o := newOrchestrator(store, fast, testutil.NewScriptedClient(), Config{})

	cls := model.ClassificationResult{Type: model.TypeTrend, Clarity: 0.9}
	out := o.Resolve(context.Background(), "支出趨勢如何", cls, model.LangChinese)

	require.True(t, out.Final.Succeeded)
	assert.Equal(t, model.TierSummary, out.Final.Tier)
	require.Len(t, out.Trail, 2)
	assert.Equal(t, model.TierDeterministic, out.Trail[0].Tier)
	assert.False(t, out.Trail[0].Succeeded)

	// The summary prompt carries aggregates, never record lines.
	prompt := fast.Prompts[0]
	assert.Contains(t, prompt, "NT$")
	assert.NotContains(t, prompt, "2025-07-03")
}

func TestTier2ShortAnswerEscalates(t *testing.T) {
	store := testutil.NewFakeStore(defaultRecords()...)
	fast := testutil.NewScriptedClient(testutil.ScriptStep{Text: "ok"})
	deep := testutil.NewScriptedClient(testutil.ScriptStep{Text: "八月總支出為 NT$1,400，比七月低了 NT$900。"})
	o := newOrchestrator(store, fast, deep, Config{})

	cls := model.ClassificationResult{Type: model.TypeComparison, Clarity: 0.9}
	out := o.Resolve(context.Background(), "比較七月和八月", cls, model.LangChinese)

	require.True(t, out.Final.Succeeded)
	assert.Equal(t, model.TierFullData, out.Final.Tier)
	assert.Len(t, out.Trail, 3)
}

func TestTier2ErrorEscalatesToTier3(t *testing.T) {
	store := testutil.NewFakeStore(defaultRecords()...)
	fast := testutil.NewScriptedClient(testutil.ScriptStep{Err: errors.New("connection refused")})
	deep := testutil.NewScriptedClient(testutil.ScriptStep{Text: "七月最大的一筆支出是 7/3 的伙食費 NT$1,200。"})
	o := newOrchestrator(store, fast, deep, Config{})

	cls := model.ClassificationResult{
		Type:     model.TypeDetail,
		Entities: model.Entities{Periods: []model.Period{"july"}},
		Clarity:  0.9,
	}
	out := o.Resolve(context.Background(), "七月最大的支出是哪筆", cls, model.LangChinese)

	require.True(t, out.Final.Succeeded)
	assert.Equal(t, model.TierFullData, out.Final.Tier)

	// Tier 3 sees itemized records for the requested period only.
	prompt := deep.Prompts[0]
	assert.Contains(t, prompt, "2025-07-03")
	assert.NotContains(t, prompt, "2025-08-02")
}

func TestAllTiersFail(t *testing.T) {
	store := testutil.NewFakeStore(defaultRecords()...)
	fast := testutil.NewScriptedClient(testutil.ScriptStep{Err: errors.New("down")})
	deep := testutil.NewScriptedClient(testutil.ScriptStep{Err: errors.New("down")})
	o := newOrchestrator(store, fast, deep, Config{})

	cls := model.ClassificationResult{Type: model.TypeGeneral, Clarity: 0.5}
	out := o.Resolve(context.Background(), "支出合理嗎", cls, model.LangChinese)

	assert.False(t, out.Final.Succeeded)
	assert.Equal(t, model.TierFullData, out.Final.Tier)
	assert.Error(t, out.Final.Err)
	require.Len(t, out.Trail, 3)
}

func TestTrailIsMonotonic(t *testing.T) {
	store := testutil.NewFakeStore(defaultRecords()...)
	fast := testutil.NewScriptedClient(testutil.ScriptStep{Text: "short"})
	deep := testutil.NewScriptedClient(testutil.ScriptStep{Text: strings.Repeat("詳細分析", 10)})
	o := newOrchestrator(store, fast, deep, Config{})

	cls := model.ClassificationResult{Type: model.TypeGeneral, Clarity: 0.5}
	out := o.Resolve(context.Background(), "支出狀況如何", cls, model.LangChinese)

	for i := 1; i < len(out.Trail); i++ {
		assert.Greater(t, out.Trail[i].Tier, out.Trail[i-1].Tier)
	}
}

func TestHedgeCounting(t *testing.T) {
	store := testutil.NewFakeStore(defaultRecords()...)
	fast := testutil.NewScriptedClient(testutil.ScriptStep{
		Text: "八月支出可能會下降，大概少 NT$500 左右，但我不確定。",
	})
	o := newOrchestrator(store, fast, testutil.NewScriptedClient(), Config{})

	cls := model.ClassificationResult{Type: model.TypeForecast, Clarity: 0.9}
	out := o.Resolve(context.Background(), "預測八月支出", cls, model.LangChinese)

	require.True(t, out.Final.Succeeded)
	assert.Equal(t, 3, out.Final.HedgeCount)
}

func TestTier3RecordCap(t *testing.T) {
	var records []model.Record
	for day := 1; day <= 28; day++ {
		records = append(records, testutil.Rec(time.July, day, "伙食費", "媽媽", 100))
	}
	store := testutil.NewFakeStore(records...)
	fast := testutil.NewScriptedClient(testutil.ScriptStep{Err: errors.New("down")})
	deep := testutil.NewScriptedClient(testutil.ScriptStep{Text: "七月伙食費合計 NT$1,000，前十天最高。"})
	o := newOrchestrator(store, fast, deep, Config{MaxFullRecords: 10})

	cls := model.ClassificationResult{
		Type:     model.TypeGeneral,
		Entities: model.Entities{Periods: []model.Period{"july"}},
		Clarity:  0.5,
	}
	out := o.Resolve(context.Background(), "七月的伙食費狀況", cls, model.LangChinese)

	require.True(t, out.Final.Succeeded)
	prompt := deep.Prompts[0]
	assert.Equal(t, 10, strings.Count(prompt, "2025-07-"))
}

func TestResolveDeterministicAnswers(t *testing.T) {
	store := testutil.NewFakeStore(defaultRecords()...)
	o := newOrchestrator(store, testutil.NewScriptedClient(), testutil.NewScriptedClient(), Config{})
	cls := instantCls([]model.Period{"july"}, nil)

	first := o.Resolve(context.Background(), "七月花了多少", cls, model.LangChinese)
	second := o.Resolve(context.Background(), "七月花了多少", cls, model.LangChinese)
	assert.Equal(t, first.Final.AnswerText, second.Final.AnswerText)
}
