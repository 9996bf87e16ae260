// Package service defines the collaborator contracts consumed by the engine.
package service

import (
	"context"
	"time"

	"github.com/budgetsage/budgetsage/internal/model"
)

// DataStore is the read-only view of the transaction dataset. Implementations
// must be read-consistent within one question's lifetime; the engine never
// mutates the dataset.
type DataStore interface {
	// RecordsFor returns records matching the given periods and categories.
	// Empty slices mean "no restriction" on that dimension.
	RecordsFor(ctx context.Context, periods []model.Period, categories []string) ([]model.Record, error)

	// SummaryStats returns aggregate totals per period and period x category.
	SummaryStats(ctx context.Context) (*model.SummaryStats, error)

	// AvailablePeriods lists periods that have at least one record.
	AvailablePeriods(ctx context.Context) ([]model.Period, error)

	// AvailableCategories lists the distinct categories present in the data.
	AvailableCategories(ctx context.Context) ([]string, error)
}

// RetryOptions configures retry behavior for transient failures.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
