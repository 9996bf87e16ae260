package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPeriodRoundTrip(t *testing.T) {
	for m := time.January; m <= time.December; m++ {
		assert.Equal(t, m, PeriodOf(m).Month())
	}
	assert.Equal(t, time.Month(0), Period("q3").Month())
}

func TestRecordPeriod(t *testing.T) {
	r := Record{Date: time.Date(2025, time.July, 15, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, Period("july"), r.Period())
}

func TestEntitiesPrimary(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, ok := Entities{}.Primary()
		assert.False(t, ok)
	})

	t.Run("last mention wins", func(t *testing.T) {
		p, ok := Entities{Periods: []Period{"july", "august"}}.Primary()
		assert.True(t, ok)
		assert.Equal(t, Period("august"), p)
	})
}

func TestAnswerRejected(t *testing.T) {
	assert.True(t, (&Answer{Rejection: ReasonOffTopic}).Rejected())
	assert.True(t, (&Answer{Rejection: ReasonTooComplex}).Rejected())
	assert.False(t, (&Answer{Rejection: ReasonNoAnswer}).Rejected())
	assert.False(t, (&Answer{}).Rejected())
}
