// Package testutil provides the shared test doubles: an in-memory data
// store and a scripted LLM client. Both count calls so tests can assert how
// far the pipeline escalated.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/budgetsage/budgetsage/internal/model"
)

// FakeStore is an in-memory DataStore over a fixed record slice.
type FakeStore struct {
	Records []model.Record

	mu    sync.Mutex
	calls map[string]int
	Err   error // returned by every method when set
}

// NewFakeStore creates a store over the given records.
func NewFakeStore(records ...model.Record) *FakeStore {
	return &FakeStore{Records: records, calls: make(map[string]int)}
}

func (s *FakeStore) count(method string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[method]++
}

// Calls returns how many times the named method ran.
func (s *FakeStore) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

// RecordsFor filters by period and category; empty slices mean no filter.
func (s *FakeStore) RecordsFor(_ context.Context, periods []model.Period, categories []string) ([]model.Record, error) {
	s.count("RecordsFor")
	if s.Err != nil {
		return nil, s.Err
	}

	wantPeriod := make(map[model.Period]bool, len(periods))
	for _, p := range periods {
		wantPeriod[p] = true
	}
	wantCategory := make(map[string]bool, len(categories))
	for _, c := range categories {
		wantCategory[c] = true
	}

	var out []model.Record
	for _, r := range s.Records {
		if len(wantPeriod) > 0 && !wantPeriod[r.Period()] {
			continue
		}
		if len(wantCategory) > 0 && !wantCategory[r.Category] {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// SummaryStats aggregates the full record set.
func (s *FakeStore) SummaryStats(_ context.Context) (*model.SummaryStats, error) {
	s.count("SummaryStats")
	if s.Err != nil {
		return nil, s.Err
	}

	stats := &model.SummaryStats{
		ByPeriod:         make(map[model.Period]decimal.Decimal),
		ByCategory:       make(map[string]decimal.Decimal),
		ByPeriodCategory: make(map[model.Period]map[string]decimal.Decimal),
	}
	for _, r := range s.Records {
		p := r.Period()
		stats.ByPeriod[p] = stats.ByPeriod[p].Add(r.Amount)
		stats.ByCategory[r.Category] = stats.ByCategory[r.Category].Add(r.Amount)
		if stats.ByPeriodCategory[p] == nil {
			stats.ByPeriodCategory[p] = make(map[string]decimal.Decimal)
		}
		stats.ByPeriodCategory[p][r.Category] = stats.ByPeriodCategory[p][r.Category].Add(r.Amount)
		stats.Total = stats.Total.Add(r.Amount)
		stats.RecordCount++
	}
	return stats, nil
}

// AvailablePeriods lists periods with data, in calendar order.
func (s *FakeStore) AvailablePeriods(_ context.Context) ([]model.Period, error) {
	s.count("AvailablePeriods")
	if s.Err != nil {
		return nil, s.Err
	}

	seen := make(map[model.Period]bool)
	var out []model.Period
	for m := time.January; m <= time.December; m++ {
		seen[model.PeriodOf(m)] = false
	}
	for _, r := range s.Records {
		seen[r.Period()] = true
	}
	for m := time.January; m <= time.December; m++ {
		if seen[model.PeriodOf(m)] {
			out = append(out, model.PeriodOf(m))
		}
	}
	return out, nil
}

// AvailableCategories lists the distinct categories present.
func (s *FakeStore) AvailableCategories(_ context.Context) ([]string, error) {
	s.count("AvailableCategories")
	if s.Err != nil {
		return nil, s.Err
	}

	seen := make(map[string]bool)
	var out []string
	for _, r := range s.Records {
		if !seen[r.Category] {
			seen[r.Category] = true
			out = append(out, r.Category)
		}
	}
	return out, nil
}

// Rec builds a record for test fixtures. day is the day of month in 2025.
func Rec(month time.Month, day int, category, person string, amount int64) model.Record {
	return model.Record{
		Date:     time.Date(2025, month, day, 0, 0, 0, 0, time.UTC),
		Category: category,
		Person:   person,
		Amount:   decimal.NewFromInt(amount),
	}
}

// ScriptedClient replays canned completions in order. When the script runs
// out it repeats the last entry. A nil error with empty text is allowed.
type ScriptedClient struct {
	Script []ScriptStep

	mu      sync.Mutex
	Prompts []string // every prompt received, in order
}

// ScriptStep is one canned completion.
type ScriptStep struct {
	Text string
	Err  error
}

// NewScriptedClient creates a client that replays steps in order.
func NewScriptedClient(steps ...ScriptStep) *ScriptedClient {
	return &ScriptedClient{Script: steps}
}

// Complete records the prompt and returns the next scripted step.
func (c *ScriptedClient) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.Prompts = append(c.Prompts, prompt)
	if len(c.Script) == 0 {
		return "", nil
	}
	i := len(c.Prompts) - 1
	if i >= len(c.Script) {
		i = len(c.Script) - 1
	}
	step := c.Script[i]
	return step.Text, step.Err
}

// CallCount returns how many completions were requested.
func (c *ScriptedClient) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Prompts)
}
