// Package tier implements the escalation state machine at the heart of the
// engine: Tier 1 answers deterministically from the dataset, Tier 2 hands a
// compact summary to a fast LLM, Tier 3 hands the full matching record set
// to a deeper LLM. Tiers run strictly in order, stop at the first acceptable
// result, and never run in parallel — LLM calls dominate cost and racing
// them would burn work that is usually discarded.
package tier

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/budgetsage/budgetsage/internal/common"
	"github.com/budgetsage/budgetsage/internal/llm"
	"github.com/budgetsage/budgetsage/internal/locale"
	"github.com/budgetsage/budgetsage/internal/model"
	"github.com/budgetsage/budgetsage/internal/service"
)

// Config holds the orchestrator's tunables. The tier minimums and fixed
// completeness constants were chosen empirically; treat them as
// configuration, not contract.
type Config struct {
	Tier1Minimum      float64       // acceptance threshold for Tier 1 (default 1.0: any uncertainty escalates)
	Tier2Minimum      float64       // acceptance threshold for Tier 2 (default 0.6)
	Tier2Completeness float64       // "aggregate visibility only" (default 0.8)
	Tier3Completeness float64       // "full visibility, interpretation risk remains" (default 0.9)
	Tier2Timeout      time.Duration // default 60s
	Tier3Timeout      time.Duration // default 180s
	MaxFullRecords    int           // record cap handed to Tier 3 (default 100)
	HedgePhrases      []string      // uncertainty markers scanned in LLM output
}

func (c *Config) applyDefaults() {
	if c.Tier1Minimum == 0 {
		c.Tier1Minimum = 1.0
	}
	if c.Tier2Minimum == 0 {
		c.Tier2Minimum = 0.6
	}
	if c.Tier2Completeness == 0 {
		c.Tier2Completeness = 0.8
	}
	if c.Tier3Completeness == 0 {
		c.Tier3Completeness = 0.9
	}
	if c.Tier2Timeout == 0 {
		c.Tier2Timeout = time.Minute
	}
	if c.Tier3Timeout == 0 {
		c.Tier3Timeout = 3 * time.Minute
	}
	if c.MaxFullRecords == 0 {
		c.MaxFullRecords = 100
	}
	if c.HedgePhrases == nil {
		c.HedgePhrases = DefaultHedgePhrases()
	}
}

// DefaultHedgePhrases is the bilingual list of uncertainty markers.
func DefaultHedgePhrases() []string {
	return []string{
		"可能", "大概", "也許", "不確定", "我猜", "估計", "似乎", "好像",
		"maybe", "perhaps", "possibly", "unsure", "guess",
		"might", "could be", "probably", "not certain",
	}
}

// Outcome is the result of one resolution run: the attempt the engine will
// answer from, plus the full trail for provenance.
type Outcome struct {
	Final model.TierAttempt
	Trail []model.TierAttempt
}

// Orchestrator runs the three-tier state machine. One instance serves one
// question at a time; hosts processing questions concurrently run
// independent instances.
type Orchestrator struct {
	store     service.DataStore
	fast      llm.Client
	deep      llm.Client
	templates *locale.Templates
	logger    *slog.Logger
	cfg       Config
}

// New creates an orchestrator. fast serves Tier 2, deep serves Tier 3.
func New(store service.DataStore, fast, deep llm.Client, templates *locale.Templates, cfg Config, logger *slog.Logger) *Orchestrator {
	cfg.applyDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		store:     store,
		fast:      fast,
		deep:      deep,
		templates: templates,
		cfg:       cfg,
		logger:    logger,
	}
}

// Resolve attempts tiers in strict order and stops at the first attempt that
// both succeeded and met its tier's completeness minimum. Tier 3 is
// terminal: its attempt is returned confident or not.
func (o *Orchestrator) Resolve(ctx context.Context, question string, cls model.ClassificationResult, lang model.Language) Outcome {
	trail := make([]model.TierAttempt, 0, 3)

	attempt := o.tier1(ctx, question, cls, lang)
	trail = append(trail, attempt)
	if o.accepted(attempt, o.cfg.Tier1Minimum) {
		return Outcome{Final: attempt, Trail: trail}
	}
	o.logger.Debug("escalating past tier 1", "succeeded", attempt.Succeeded)

	// Callers may abandon a question at a tier boundary.
	if ctx.Err() != nil {
		return Outcome{Final: attempt, Trail: trail}
	}

	attempt = o.tier2(ctx, question, lang)
	trail = append(trail, attempt)
	if o.accepted(attempt, o.cfg.Tier2Minimum) {
		return Outcome{Final: attempt, Trail: trail}
	}
	o.logger.Debug("escalating past tier 2", "succeeded", attempt.Succeeded, "error", attempt.Err)

	if ctx.Err() != nil {
		return Outcome{Final: attempt, Trail: trail}
	}

	attempt = o.tier3(ctx, question, cls.Entities, lang)
	trail = append(trail, attempt)
	return Outcome{Final: attempt, Trail: trail}
}

func (o *Orchestrator) accepted(attempt model.TierAttempt, minimum float64) bool {
	return attempt.Succeeded && attempt.DataCompleteness >= minimum
}

// tier1 performs direct filter + aggregate over the record set. It succeeds
// only when the entities resolve fully and unambiguously to a filter with
// data behind it; anything else escalates.
func (o *Orchestrator) tier1(ctx context.Context, question string, cls model.ClassificationResult, lang model.Language) model.TierAttempt {
	fail := func(err error) model.TierAttempt {
		return model.TierAttempt{Tier: model.TierDeterministic, Succeeded: false, Err: err}
	}

	if cls.Type != model.TypeInstant {
		return fail(nil)
	}

	e := cls.Entities
	period, hasPeriod := e.Primary()
	lower := strings.ToLower(question)

	switch {
	case hasPeriod && wantsCount(lower) && len(e.Categories) <= 1:
		// The count honors the same category filter as the totals; counting
		// the whole period for a category question would be a wrong answer
		// delivered with full confidence.
		records, err := o.store.RecordsFor(ctx, []model.Period{period}, e.Categories)
		if err != nil || len(records) == 0 {
			return fail(err)
		}
		if len(e.Categories) == 1 {
			text := o.templates.Render("instant.count_category", lang,
				o.templates.PeriodName(period, lang), e.Categories[0], len(records))
			return deterministicSuccess(text)
		}
		text := o.templates.Render("instant.count", lang, o.templates.PeriodName(period, lang), len(records))
		return deterministicSuccess(text)

	case wantsCount(lower):
		// Counts without a single resolvable filter escalate; the summary
		// tier sees the record count.
		return fail(nil)

	case hasPeriod && len(e.Categories) == 1:
		records, err := o.store.RecordsFor(ctx, []model.Period{period}, e.Categories)
		if err != nil || len(records) == 0 {
			return fail(err)
		}
		text := o.templates.Render("instant.category_total", lang,
			o.templates.PeriodName(period, lang), e.Categories[0], locale.Amount(sum(records)))
		return deterministicSuccess(text)

	case hasPeriod && len(e.Categories) == 0:
		records, err := o.store.RecordsFor(ctx, []model.Period{period}, nil)
		if err != nil || len(records) == 0 {
			return fail(err)
		}
		text := o.templates.Render("instant.total", lang,
			o.templates.PeriodName(period, lang), locale.Amount(sum(records)))
		return deterministicSuccess(text)

	case !hasPeriod && len(e.Categories) == 1:
		records, err := o.store.RecordsFor(ctx, nil, e.Categories)
		if err != nil || len(records) == 0 {
			return fail(err)
		}
		months := make(map[model.Period]bool)
		for _, r := range records {
			months[r.Period()] = true
		}
		text := o.templates.Render("instant.category_all", lang,
			e.Categories[0], locale.Amount(sum(records)), len(months))
		return deterministicSuccess(text)

	case !hasPeriod && wantsAverage(lower):
		stats, err := o.store.SummaryStats(ctx)
		if err != nil || stats.PeriodCount() == 0 {
			return fail(err)
		}
		avg := stats.Total.Div(decimal.NewFromInt(int64(stats.PeriodCount())))
		text := o.templates.Render("instant.average", lang, locale.Amount(avg))
		return deterministicSuccess(text)

	case !hasPeriod && len(e.Categories) == 0:
		stats, err := o.store.SummaryStats(ctx)
		if err != nil || stats.RecordCount == 0 {
			return fail(err)
		}
		text := o.templates.Render("instant.overall", lang, locale.Amount(stats.Total), stats.PeriodCount())
		return deterministicSuccess(text)
	}

	// Multiple categories or some other shape Tier 1 cannot resolve
	// unambiguously.
	return fail(nil)
}

func deterministicSuccess(text string) model.TierAttempt {
	return model.TierAttempt{
		Tier:             model.TierDeterministic,
		Succeeded:        true,
		AnswerText:       text,
		DataCompleteness: 1.0,
	}
}

// tier2 delegates the question plus a period x category summary to the fast
// LLM. The model sees aggregates only, never individual records.
func (o *Orchestrator) tier2(ctx context.Context, question string, lang model.Language) model.TierAttempt {
	attempt := model.TierAttempt{Tier: model.TierSummary, DataCompleteness: o.cfg.Tier2Completeness}

	stats, err := o.store.SummaryStats(ctx)
	if err != nil {
		attempt.Err = err
		return attempt
	}

	prompt := o.buildSummaryPrompt(question, stats, lang)

	callCtx, cancel := context.WithTimeout(ctx, o.cfg.Tier2Timeout)
	defer cancel()

	text, err := o.fast.Complete(callCtx, prompt)
	if err != nil {
		attempt.Err = classifyLLMError(callCtx, err)
		return attempt
	}

	// A near-empty reply means the summary was not enough; escalate rather
	// than hand back filler.
	if utf8.RuneCountInString(strings.TrimSpace(text)) <= 10 {
		return attempt
	}

	attempt.Succeeded = true
	attempt.AnswerText = text
	attempt.HedgeCount = o.countHedges(text)
	return attempt
}

// tier3 loads the complete matching record subset and delegates to the deep
// LLM. Terminal: its attempt is returned regardless of outcome.
func (o *Orchestrator) tier3(ctx context.Context, question string, e model.Entities, lang model.Language) model.TierAttempt {
	attempt := model.TierAttempt{Tier: model.TierFullData, DataCompleteness: o.cfg.Tier3Completeness}

	records, err := o.store.RecordsFor(ctx, e.Periods, e.Categories)
	if err != nil {
		attempt.Err = err
		return attempt
	}
	if len(records) > o.cfg.MaxFullRecords {
		records = records[:o.cfg.MaxFullRecords]
	}

	prompt := o.buildFullDataPrompt(question, records, lang)

	callCtx, cancel := context.WithTimeout(ctx, o.cfg.Tier3Timeout)
	defer cancel()

	text, err := o.deep.Complete(callCtx, prompt)
	if err != nil {
		attempt.Err = classifyLLMError(callCtx, err)
		return attempt
	}
	if strings.TrimSpace(text) == "" {
		attempt.Err = common.ErrNoAnswer
		return attempt
	}

	attempt.Succeeded = true
	attempt.AnswerText = text
	attempt.HedgeCount = o.countHedges(text)
	return attempt
}

func (o *Orchestrator) countHedges(text string) int {
	lower := strings.ToLower(text)
	count := 0
	for _, phrase := range o.cfg.HedgePhrases {
		count += strings.Count(lower, phrase)
	}
	return count
}

func classifyLLMError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return common.ErrLLMTimeout
	}
	return err
}

func wantsCount(lower string) bool {
	return strings.Contains(lower, "幾筆") || strings.Contains(lower, "几笔") ||
		strings.Contains(lower, "how many") || strings.Contains(lower, "count")
}

func wantsAverage(lower string) bool {
	return strings.Contains(lower, "平均") || strings.Contains(lower, "average") ||
		strings.Contains(lower, "avg")
}

func sum(records []model.Record) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Amount)
	}
	return total
}
