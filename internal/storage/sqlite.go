// Package storage implements the persistent transaction store on SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/budgetsage/budgetsage/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	date     TEXT NOT NULL,
	month    INTEGER NOT NULL,
	category TEXT NOT NULL,
	person   TEXT NOT NULL DEFAULT '',
	amount   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transactions_month ON transactions(month);
CREATE INDEX IF NOT EXISTS idx_transactions_category ON transactions(category);
`

// SQLiteStore implements service.DataStore over a local SQLite database.
// Amounts are stored as decimal strings; they are money, not floats.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path.
// Use ":memory:" for an ephemeral store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite handles one writer; a single connection avoids lock churn.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// InsertRecords writes records in one transaction. Used by the importer.
func (s *SQLiteStore) InsertRecords(ctx context.Context, records []model.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO transactions (date, month, category, person, amount) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range records {
		_, err := stmt.ExecContext(ctx,
			r.Date.Format("2006-01-02"), int(r.Date.Month()), r.Category, r.Person, r.Amount.String())
		if err != nil {
			return fmt.Errorf("failed to insert record: %w", err)
		}
	}

	return tx.Commit()
}

// RecordsFor returns records matching the given periods and categories,
// oldest first. Empty slices mean no restriction.
func (s *SQLiteStore) RecordsFor(ctx context.Context, periods []model.Period, categories []string) ([]model.Record, error) {
	query := `SELECT date, category, person, amount FROM transactions`
	var clauses []string
	var args []any

	if len(periods) > 0 {
		placeholders := make([]string, 0, len(periods))
		for _, p := range periods {
			m := p.Month()
			if m == 0 {
				continue
			}
			placeholders = append(placeholders, "?")
			args = append(args, int(m))
		}
		if len(placeholders) > 0 {
			clauses = append(clauses, "month IN ("+strings.Join(placeholders, ",")+")")
		}
	}
	if len(categories) > 0 {
		placeholders := make([]string, len(categories))
		for i, c := range categories {
			placeholders[i] = "?"
			args = append(args, c)
		}
		clauses = append(clauses, "category IN ("+strings.Join(placeholders, ",")+")")
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY date, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.Record
	for rows.Next() {
		var dateStr, category, person, amountStr string
		if err := rows.Scan(&dateStr, &category, &person, &amountStr); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", dateStr, err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q: %w", amountStr, err)
		}
		records = append(records, model.Record{
			Date:     date,
			Category: category,
			Person:   person,
			Amount:   amount,
		})
	}
	return records, rows.Err()
}

// SummaryStats aggregates totals per period, per category, and per
// period x category in one pass.
func (s *SQLiteStore) SummaryStats(ctx context.Context) (*model.SummaryStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT month, category, amount FROM transactions`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	stats := &model.SummaryStats{
		ByPeriod:         make(map[model.Period]decimal.Decimal),
		ByCategory:       make(map[string]decimal.Decimal),
		ByPeriodCategory: make(map[model.Period]map[string]decimal.Decimal),
	}
	for rows.Next() {
		var month int
		var category, amountStr string
		if err := rows.Scan(&month, &category, &amountStr); err != nil {
			return nil, fmt.Errorf("failed to scan stats row: %w", err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q: %w", amountStr, err)
		}

		p := model.PeriodOf(time.Month(month))
		stats.ByPeriod[p] = stats.ByPeriod[p].Add(amount)
		stats.ByCategory[category] = stats.ByCategory[category].Add(amount)
		if stats.ByPeriodCategory[p] == nil {
			stats.ByPeriodCategory[p] = make(map[string]decimal.Decimal)
		}
		stats.ByPeriodCategory[p][category] = stats.ByPeriodCategory[p][category].Add(amount)
		stats.Total = stats.Total.Add(amount)
		stats.RecordCount++
	}
	return stats, rows.Err()
}

// AvailablePeriods lists periods with at least one record, in calendar order.
func (s *SQLiteStore) AvailablePeriods(ctx context.Context) ([]model.Period, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT month FROM transactions ORDER BY month`)
	if err != nil {
		return nil, fmt.Errorf("failed to query periods: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var periods []model.Period
	for rows.Next() {
		var month int
		if err := rows.Scan(&month); err != nil {
			return nil, fmt.Errorf("failed to scan month: %w", err)
		}
		if month >= 1 && month <= 12 {
			periods = append(periods, model.PeriodOf(time.Month(month)))
		}
	}
	return periods, rows.Err()
}

// AvailableCategories lists distinct categories alphabetically.
func (s *SQLiteStore) AvailableCategories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT category FROM transactions ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
