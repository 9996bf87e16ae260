// Package engine wires the resolution pipeline: language detection,
// guardrails, classification, tiered resolution, confidence scoring, and
// response assembly. The engine is the only entry point callers use.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/budgetsage/budgetsage/internal/classify"
	"github.com/budgetsage/budgetsage/internal/confidence"
	"github.com/budgetsage/budgetsage/internal/guardrails"
	"github.com/budgetsage/budgetsage/internal/lang"
	"github.com/budgetsage/budgetsage/internal/llm"
	"github.com/budgetsage/budgetsage/internal/locale"
	"github.com/budgetsage/budgetsage/internal/model"
	"github.com/budgetsage/budgetsage/internal/service"
	"github.com/budgetsage/budgetsage/internal/tier"
)

// Config is read once at construction; a running engine never mutates it.
// The vocabulary fields let hosts swap the lookup tables (topic whitelist,
// classifier lexicon, detector signals) without forking the pipeline.
type Config struct {
	FallbackLanguage model.Language // answers for unknown-language input (default zh)
	WarnBelow        float64        // prefix an uncertainty warning under this overall score (default 0.5)
	HistoryLimit     int
	Guardrails       guardrails.Config // zero value uses the default vocabularies
	Lexicon          *classify.Lexicon // nil uses classify.DefaultLexicon
	Detector         []lang.Option
	Tier             tier.Config
	Weights          confidence.Weights
}

func (c *Config) applyDefaults() {
	if c.FallbackLanguage == "" {
		c.FallbackLanguage = model.LangChinese
	}
	if c.WarnBelow == 0 {
		c.WarnBelow = 0.5
	}
	if c.HistoryLimit == 0 {
		c.HistoryLimit = DefaultHistoryLimit
	}
	if c.Weights == (confidence.Weights{}) {
		c.Weights = confidence.DefaultWeights()
	}
}

// Deps are the injected collaborators with external effects. Everything else
// the engine builds itself.
type Deps struct {
	Store  service.DataStore
	Fast   llm.Client // Tier 2
	Deep   llm.Client // Tier 3
	Logger *slog.Logger
}

// Engine answers questions over the transaction dataset. One engine serves
// one conversation; its history window is not shared.
type Engine struct {
	detector     *lang.Detector
	guard        *guardrails.Guardrails
	classifier   *classify.Classifier
	orchestrator *tier.Orchestrator
	tracker      *confidence.Tracker
	templates    *locale.Templates
	store        service.DataStore
	history      *History
	logger       *slog.Logger
	cfg          Config
}

// New constructs a fully wired engine.
func New(deps Deps, cfg Config) (*Engine, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("engine requires a data store")
	}
	if deps.Fast == nil || deps.Deep == nil {
		return nil, fmt.Errorf("engine requires both LLM clients")
	}
	cfg.applyDefaults()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	lexicon := classify.DefaultLexicon()
	if cfg.Lexicon != nil {
		lexicon = *cfg.Lexicon
	}

	templates := locale.New(cfg.FallbackLanguage)
	return &Engine{
		detector:     lang.NewDetector(cfg.Detector...),
		guard:        guardrails.New(cfg.Guardrails),
		classifier:   classify.New(lexicon),
		orchestrator: tier.New(deps.Store, deps.Fast, deps.Deep, templates, cfg.Tier, logger),
		tracker:      confidence.New(cfg.Weights),
		templates:    templates,
		store:        deps.Store,
		history:      NewHistory(cfg.HistoryLimit),
		logger:       logger,
		cfg:          cfg,
	}, nil
}

// History exposes the conversation window, mainly for interactive hosts.
func (e *Engine) History() *History {
	return e.history
}

// Answer resolves one question end to end. It never returns an error for a
// question the pipeline handled, even by rejecting it; the error path is for
// infrastructure failures only.
func (e *Engine) Answer(ctx context.Context, text string) (*model.Answer, error) {
	started := time.Now()

	detection := e.detector.Detect(text)
	language := e.templates.Resolve(detection.Language)
	question := model.Question{Asked: started, Text: text, Language: language}

	gate := e.guard.Check(text)
	if !gate.Allowed {
		// Zero tier work happens past this point for a rejected question.
		e.logger.Info("question rejected",
			"reason", gate.Reason,
			"language", language)
		return e.rejection(gate.Reason, language), nil
	}

	cls := e.classifier.Classify(text, language, e.history.Focus())
	scope := e.dataScope(ctx, cls.Entities)

	e.logger.Debug("question classified",
		"type", cls.Type,
		"clarity", cls.Clarity,
		"periods", len(cls.Entities.Periods),
		"categories", len(cls.Entities.Categories))

	outcome := e.orchestrator.Resolve(ctx, text, cls, language)
	final := outcome.Final

	if !final.Succeeded {
		if final.Err != nil {
			e.logger.Warn("all tiers exhausted", "error", final.Err)
		}
		return e.noAnswer(ctx, cls.Entities, scope, language), nil
	}

	guardScore := 1.0
	if gate.Warning {
		guardScore = 0.6
	}
	breakdown := e.tracker.Score(cls, final, guardScore, scope)

	answerText := final.AnswerText
	if breakdown.Overall < e.cfg.WarnBelow {
		answerText = e.templates.Render("uncertainty.low", language) + "\n\n" + answerText
	}

	answer := &model.Answer{
		Text:       answerText,
		Language:   language,
		TierUsed:   final.Tier,
		Confidence: breakdown,
	}

	e.history.Record(Interaction{
		Question:   question,
		AnswerText: answer.Text,
		Type:       cls.Type,
		TierUsed:   final.Tier,
		Confidence: breakdown.Overall,
	}, cls.Entities, !cls.FocusResolved)

	e.logger.Info("question answered",
		"tier", final.Tier,
		"confidence", breakdown.Overall,
		"band", breakdown.Band,
		"duration", time.Since(started))

	return answer, nil
}

// rejection builds the localized refusal without touching the data store or
// any LLM. Rejected answers carry the zero confidence breakdown.
func (e *Engine) rejection(reason model.ReasonCode, language model.Language) *model.Answer {
	key := "reject.off_topic"
	if reason == model.ReasonTooComplex {
		key = "reject.too_complex"
	}
	return &model.Answer{
		Text:       e.templates.Render(key, language),
		Language:   language,
		Rejection:  reason,
		TierUsed:   model.TierNone,
		Confidence: confidence.Rejected(),
	}
}

// noAnswer is the terminal-failure response after Tier 3 gave nothing
// usable. When the question named a period the dataset lacks, the message
// lists what is available instead of a generic apology.
func (e *Engine) noAnswer(ctx context.Context, entities model.Entities, scope confidence.DataScope, language model.Language) *model.Answer {
	text := e.templates.Render("errors.no_answer", language)
	if scope.PeriodMissing {
		if available, err := e.store.AvailablePeriods(ctx); err == nil && len(available) > 0 {
			text = e.templates.Render("errors.no_data", language,
				e.templates.PeriodList(entities.Periods, language),
				e.templates.PeriodList(available, language))
		}
	}
	return &model.Answer{
		Text:       text,
		Language:   language,
		Rejection:  model.ReasonNoAnswer,
		TierUsed:   model.TierFullData,
		Confidence: confidence.Rejected(),
	}
}

// dataScope checks the requested periods and categories against what the
// store actually holds. Store errors are logged and treated as in-scope so
// a flaky lookup cannot turn into a confidence penalty.
func (e *Engine) dataScope(ctx context.Context, entities model.Entities) confidence.DataScope {
	var scope confidence.DataScope

	if len(entities.Periods) > 0 {
		available, err := e.store.AvailablePeriods(ctx)
		if err != nil {
			e.logger.Warn("period availability check failed", "error", err)
		} else {
			have := make(map[model.Period]bool, len(available))
			for _, p := range available {
				have[p] = true
			}
			for _, p := range entities.Periods {
				if !have[p] {
					scope.PeriodMissing = true
					break
				}
			}
		}
	}

	if len(entities.Categories) > 0 {
		available, err := e.store.AvailableCategories(ctx)
		if err != nil {
			e.logger.Warn("category availability check failed", "error", err)
		} else {
			have := make(map[string]bool, len(available))
			for _, c := range available {
				have[c] = true
			}
			for _, c := range entities.Categories {
				if !have[c] {
					scope.CategoryMissing = true
					break
				}
			}
		}
	}

	return scope
}
