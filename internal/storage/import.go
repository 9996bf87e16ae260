package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"

	"github.com/budgetsage/budgetsage/internal/common"
	"github.com/budgetsage/budgetsage/internal/model"
)

// ImportResult summarizes one CSV import run.
type ImportResult struct {
	Imported int
	Skipped  int
}

var dateLayouts = []string{"2006-01-02", "2006/01/02", "01/02/2006"}

// ImportCSV reads ledger rows from a CSV file and inserts them in batches.
// Expected columns: date, category, person, amount (header row required,
// order fixed). Rows that fail to parse are skipped and counted, not fatal;
// a half-readable export should still import the good rows.
func (s *SQLiteStore) ImportCSV(ctx context.Context, path string, showProgress bool) (*ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv: %w", err)
	}
	defer func() { _ = f.Close() }()

	var bar *progressbar.ProgressBar
	if showProgress {
		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat csv: %w", err)
		}
		bar = progressbar.DefaultBytes(info.Size(), "importing")
	}

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 4
	reader.TrimLeadingSpace = true

	// Header row.
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	result := &ImportResult{}
	batch := make([]model.Record, 0, 500)
	line := 1 // header

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.InsertRecords(ctx, batch); err != nil {
			return err
		}
		result.Imported += len(batch)
		batch = batch[:0]
		return nil
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Skipped++
			common.LogDebug("skipping malformed csv row", common.Fields{"line": line, "error": err.Error()})
			continue
		}
		if bar != nil {
			_ = bar.Set64(reader.InputOffset())
		}

		record, ok := parseRow(row)
		if !ok {
			result.Skipped++
			common.LogDebug("skipping unparseable csv row", common.Fields{"line": line})
			continue
		}
		batch = append(batch, record)
		if len(batch) == cap(batch) {
			if err := flush(); err != nil {
				return result, err
			}
		}
	}

	if err := flush(); err != nil {
		return result, err
	}
	if bar != nil {
		_ = bar.Finish()
	}
	return result, nil
}

func parseRow(row []string) (model.Record, bool) {
	var date time.Time
	var err error
	for _, layout := range dateLayouts {
		date, err = time.Parse(layout, strings.TrimSpace(row[0]))
		if err == nil {
			break
		}
	}
	if err != nil {
		return model.Record{}, false
	}

	category := strings.TrimSpace(row[1])
	if category == "" {
		return model.Record{}, false
	}

	raw := strings.TrimSpace(row[3])
	raw = strings.TrimPrefix(raw, "NT$")
	raw = strings.TrimPrefix(raw, "$")
	raw = strings.ReplaceAll(raw, ",", "")
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return model.Record{}, false
	}

	return model.Record{
		Date:     date,
		Category: category,
		Person:   strings.TrimSpace(row[2]),
		Amount:   amount,
	}, true
}
