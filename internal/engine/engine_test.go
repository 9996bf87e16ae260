package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/budgetsage/budgetsage/internal/classify"
	"github.com/budgetsage/budgetsage/internal/guardrails"
	"github.com/budgetsage/budgetsage/internal/lang"
	"github.com/budgetsage/budgetsage/internal/model"
	"github.com/budgetsage/budgetsage/internal/testutil"
)

func ledger() []model.Record {
	return []model.Record{
		testutil.Rec(time.July, 3, "伙食費", "媽媽", 1200),
		testutil.Rec(time.July, 10, "交通費", "爸爸", 800),
		testutil.Rec(time.July, 21, "伙食費", "媽媽", 300),
		testutil.Rec(time.August, 2, "伙食費", "媽媽", 900),
		testutil.Rec(time.August, 15, "休閒/娛樂", "小孩", 500),
	}
}

func newTestEngine(t *testing.T, store *testutil.FakeStore, fast, deep *testutil.ScriptedClient, cfg Config) *Engine {
	t.Helper()
	eng, err := New(Deps{Store: store, Fast: fast, Deep: deep}, cfg)
	require.NoError(t, err)
	return eng
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(Deps{}, Config{})
	assert.Error(t, err)

	_, err = New(Deps{Store: testutil.NewFakeStore()}, Config{})
	assert.Error(t, err)
}

func TestAnswerRejectsOffTopicWithoutWork(t *testing.T) {
	store := testutil.NewFakeStore(ledger()...)
	fast := testutil.NewScriptedClient()
	deep := testutil.NewScriptedClient()
	eng := newTestEngine(t, store, fast, deep, Config{})

	answer, err := eng.Answer(context.Background(), "tell me a joke about cats")
	require.NoError(t, err)

	assert.True(t, answer.Rejected())
	assert.Equal(t, model.ReasonOffTopic, answer.Rejection)
	assert.Equal(t, model.TierNone, answer.TierUsed)
	assert.Equal(t, model.BandVeryLow, answer.Confidence.Band)
	assert.NotEmpty(t, answer.Text)

	// Rejection happens before any data or LLM access.
	assert.Zero(t, store.Calls("RecordsFor"))
	assert.Zero(t, store.Calls("SummaryStats"))
	assert.Zero(t, fast.CallCount())
	assert.Zero(t, deep.CallCount())

	// Rejected questions stay out of the conversation window.
	assert.Zero(t, eng.History().Len())
}

func TestAnswerRejectsComplexQuestion(t *testing.T) {
	eng := newTestEngine(t, testutil.NewFakeStore(ledger()...),
		testutil.NewScriptedClient(), testutil.NewScriptedClient(), Config{})

	answer, err := eng.Answer(context.Background(),
		"if we reduce the food budget and also cut transport costs next month what happens to totals")
	require.NoError(t, err)

	assert.Equal(t, model.ReasonTooComplex, answer.Rejection)
	assert.True(t, answer.Rejected())
}

func TestAnswerInstantChineseQuestion(t *testing.T) {
	store := testutil.NewFakeStore(ledger()...)
	fast := testutil.NewScriptedClient()
	deep := testutil.NewScriptedClient()
	eng := newTestEngine(t, store, fast, deep, Config{})

	answer, err := eng.Answer(context.Background(), "七月花了多少？")
	require.NoError(t, err)

	assert.Equal(t, model.TierDeterministic, answer.TierUsed)
	assert.Equal(t, model.LangChinese, answer.Language)
	assert.Contains(t, answer.Text, "2,300")
	assert.Equal(t, model.BandHigh, answer.Confidence.Band)
	assert.False(t, answer.Rejected())
	assert.Zero(t, fast.CallCount())
	assert.Zero(t, deep.CallCount())
}

func TestAnswerEnglishQuestionAnsweredInEnglish(t *testing.T) {
	eng := newTestEngine(t, testutil.NewFakeStore(ledger()...),
		testutil.NewScriptedClient(), testutil.NewScriptedClient(), Config{})

	answer, err := eng.Answer(context.Background(), "how much did we spend on food in july?")
	require.NoError(t, err)

	assert.Equal(t, model.LangEnglish, answer.Language)
	assert.Equal(t, model.TierDeterministic, answer.TierUsed)
	assert.Contains(t, answer.Text, "1,500")
}

func TestAnswerEscalatesAndDiscountsMissingPeriod(t *testing.T) {
	store := testutil.NewFakeStore(ledger()...)
	fast := testutil.NewScriptedClient(testutil.ScriptStep{Text: "九月沒有資料，帳本的記錄從七月到八月。"})
	eng := newTestEngine(t, store, fast, testutil.NewScriptedClient(), Config{})

	answer, err := eng.Answer(context.Background(), "九月花了多少？")
	require.NoError(t, err)

	assert.Equal(t, model.TierSummary, answer.TierUsed)
	assert.Equal(t, 1, fast.CallCount())

	// September is absent, so availability is halved.
	assert.InDelta(t, 0.4, answer.Confidence.DataAvailability, 1e-9)
	assert.Less(t, answer.Confidence.Overall, 0.8)
}

func TestAnswerSoftWarningLowersGuardrailComponent(t *testing.T) {
	eng := newTestEngine(t, testutil.NewFakeStore(ledger()...),
		testutil.NewScriptedClient(), testutil.NewScriptedClient(), Config{})

	// One complexity marker class (conditional) is tolerated with a warning.
	answer, err := eng.Answer(context.Background(), "如果看七月的伙食費是多少")
	require.NoError(t, err)

	assert.False(t, answer.Rejected())
	assert.InDelta(t, 0.6, answer.Confidence.GuardrailPassed, 1e-9)
}

func TestAnswerIdempotentForSameQuestion(t *testing.T) {
	eng := newTestEngine(t, testutil.NewFakeStore(ledger()...),
		testutil.NewScriptedClient(), testutil.NewScriptedClient(), Config{})

	first, err := eng.Answer(context.Background(), "七月花了多少？")
	require.NoError(t, err)
	second, err := eng.Answer(context.Background(), "七月花了多少？")
	require.NoError(t, err)

	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, first.Confidence, second.Confidence)
}

func TestAnswerResolvesFollowUpFromFocus(t *testing.T) {
	eng := newTestEngine(t, testutil.NewFakeStore(ledger()...),
		testutil.NewScriptedClient(), testutil.NewScriptedClient(), Config{})

	_, err := eng.Answer(context.Background(), "七月的伙食費多少？")
	require.NoError(t, err)

	answer, err := eng.Answer(context.Background(), "那個總共多少？")
	require.NoError(t, err)

	assert.Equal(t, model.TierDeterministic, answer.TierUsed)
	assert.Contains(t, answer.Text, "1,500")
}

func TestAnswerNoAnswerAfterAllTiersFail(t *testing.T) {
	store := testutil.NewFakeStore(ledger()...)
	fast := testutil.NewScriptedClient(testutil.ScriptStep{Err: errors.New("down")})
	deep := testutil.NewScriptedClient(testutil.ScriptStep{Err: errors.New("down")})
	eng := newTestEngine(t, store, fast, deep, Config{})

	answer, err := eng.Answer(context.Background(), "支出的趨勢如何")
	require.NoError(t, err)

	assert.Equal(t, model.ReasonNoAnswer, answer.Rejection)
	assert.False(t, answer.Rejected()) // terminal failure, not a gate rejection
	assert.Equal(t, model.BandVeryLow, answer.Confidence.Band)
	assert.NotEmpty(t, answer.Text)
}

func TestAnswerNoDataListsAvailableMonths(t *testing.T) {
	store := testutil.NewFakeStore(ledger()...)
	fast := testutil.NewScriptedClient(testutil.ScriptStep{Err: errors.New("down")})
	deep := testutil.NewScriptedClient(testutil.ScriptStep{Err: errors.New("down")})
	eng := newTestEngine(t, store, fast, deep, Config{})

	answer, err := eng.Answer(context.Background(), "十二月的支出趨勢如何")
	require.NoError(t, err)

	assert.Equal(t, model.ReasonNoAnswer, answer.Rejection)
	assert.Contains(t, answer.Text, "七月")
	assert.Contains(t, answer.Text, "八月")
}

func TestAnswerPrefixesUncertaintyWarning(t *testing.T) {
	store := testutil.NewFakeStore(ledger()...)
	fast := testutil.NewScriptedClient(testutil.ScriptStep{Text: "支出大致穩定，可能八月會稍微下降一點。"})
	// A threshold no tier can reach forces the warning path.
	eng := newTestEngine(t, store, fast, testutil.NewScriptedClient(), Config{WarnBelow: 0.99})

	answer, err := eng.Answer(context.Background(), "支出趨勢如何")
	require.NoError(t, err)

	assert.Equal(t, model.TierSummary, answer.TierUsed)
	assert.Contains(t, answer.Text, "⚠️")
}

func TestAnswerUsesInjectedGuardrailVocabulary(t *testing.T) {
	store := testutil.NewFakeStore(ledger()...)
	fast := testutil.NewScriptedClient(testutil.ScriptStep{Text: "這份帳本沒有笑話，只有支出記錄。"})
	cfg := Config{
		Guardrails: guardrails.Config{AllowedTopics: map[string][]string{"humor": {"joke"}}},
	}
	eng := newTestEngine(t, store, fast, testutil.NewScriptedClient(), cfg)

	// The default whitelist rejects this question outright.
	answer, err := eng.Answer(context.Background(), "tell me a joke about cats")
	require.NoError(t, err)

	assert.False(t, answer.Rejected())
	assert.Equal(t, model.TierSummary, answer.TierUsed)
}

func TestAnswerUsesInjectedLexicon(t *testing.T) {
	lex := classify.DefaultLexicon()
	lex.Categories["伙食費"] = append(lex.Categories["伙食費"], "grub")

	eng := newTestEngine(t, testutil.NewFakeStore(ledger()...),
		testutil.NewScriptedClient(), testutil.NewScriptedClient(), Config{Lexicon: &lex})

	answer, err := eng.Answer(context.Background(), "how much did we spend on grub in july")
	require.NoError(t, err)

	// The added alias resolves to the food category instead of the whole month.
	assert.Equal(t, model.TierDeterministic, answer.TierUsed)
	assert.Contains(t, answer.Text, "1,500")

	defaultEng := newTestEngine(t, testutil.NewFakeStore(ledger()...),
		testutil.NewScriptedClient(), testutil.NewScriptedClient(), Config{})
	answer, err = defaultEng.Answer(context.Background(), "how much did we spend on grub in july")
	require.NoError(t, err)
	assert.Contains(t, answer.Text, "2,300")
}

func TestAnswerUsesInjectedDetectorOptions(t *testing.T) {
	// An unreachable floor forces every detection to unknown, so answers
	// come back in the fallback language.
	eng := newTestEngine(t, testutil.NewFakeStore(ledger()...),
		testutil.NewScriptedClient(), testutil.NewScriptedClient(),
		Config{Detector: []lang.Option{lang.WithFloor(0.99)}})

	answer, err := eng.Answer(context.Background(), "how much did we spend in july?")
	require.NoError(t, err)

	assert.Equal(t, model.LangChinese, answer.Language)
	assert.Contains(t, answer.Text, "2,300")
}

func TestAnswerRecordsHistory(t *testing.T) {
	eng := newTestEngine(t, testutil.NewFakeStore(ledger()...),
		testutil.NewScriptedClient(), testutil.NewScriptedClient(), Config{})

	_, err := eng.Answer(context.Background(), "七月花了多少？")
	require.NoError(t, err)

	require.Equal(t, 1, eng.History().Len())
	recent := eng.History().Recent(1)
	assert.Equal(t, "七月花了多少？", recent[0].Question.Text)
	assert.Equal(t, model.LangChinese, recent[0].Question.Language)
	assert.False(t, recent[0].Question.Asked.IsZero())
	assert.Equal(t, model.TierDeterministic, recent[0].TierUsed)
	assert.NotEmpty(t, recent[0].ID)
}
