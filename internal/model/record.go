// Package model defines the core domain models used throughout the application.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record represents a single transaction from the household ledger.
// Records are owned by the data store and immutable once ingested.
type Record struct {
	Date     time.Time
	Category string
	Person   string
	Amount   decimal.Decimal
}

// Period returns the aggregation key this record falls into.
func (r Record) Period() Period {
	return PeriodOf(r.Date.Month())
}

// Period is a named month span used as an aggregation key. The canonical
// form is the lowercase English month name ("july"); ideographic and numeric
// month mentions are normalized to this key during extraction.
type Period string

var monthPeriods = [12]Period{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

// PeriodOf returns the canonical period key for a calendar month.
func PeriodOf(m time.Month) Period {
	return monthPeriods[int(m)-1]
}

// Month returns the calendar month for a canonical period key, or 0 if the
// key is not a valid period.
func (p Period) Month() time.Month {
	for i, mp := range monthPeriods {
		if mp == p {
			return time.Month(i + 1)
		}
	}
	return 0
}

// SummaryStats is the aggregate view of the dataset handed to Tier 2:
// totals per period and per period x category, never individual records.
type SummaryStats struct {
	ByPeriod         map[Period]decimal.Decimal
	ByCategory       map[string]decimal.Decimal
	ByPeriodCategory map[Period]map[string]decimal.Decimal
	Total            decimal.Decimal
	RecordCount      int
}

// PeriodCount returns the number of periods that have data.
func (s *SummaryStats) PeriodCount() int {
	return len(s.ByPeriod)
}
