package view

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, _ := time.Parse(time.DateOnly, s)
	return t
}

func TestPeriodRange(t *testing.T) {
	now := time.Date(2026, 3, 15, 17, 30, 0, 0, time.UTC)

	tests := []struct {
		period   Period
		from, to string
	}{
		{PeriodThisMonth, "2026-03-01", "2026-03-15"},
		{PeriodLastMonth, "2026-02-01", "2026-02-28"},
		{PeriodLast90Days, "2025-12-16", "2026-03-15"},
		{PeriodThisYear, "2026-01-01", "2026-03-15"},
	}

	for _, tt := range tests {
		t.Run(tt.period.String(), func(t *testing.T) {
			r := periodRange(tt.period, now)

			assert.Equal(t, day(tt.from), r.From)
			assert.Equal(t, day(tt.to), r.To)
		})
	}

	t.Run("All Time is open", func(t *testing.T) {
		r := periodRange(PeriodAll, now)

		assert.True(t, r.From.IsZero())
		assert.True(t, r.To.IsZero())
	})
}

func TestParseRange(t *testing.T) {
	t.Run("Both bounds", func(t *testing.T) {
		r, err := parseRange("2026-01-01", " 2026-01-31 ")
		require.NoError(t, err)

		assert.Equal(t, day("2026-01-01"), r.From)
		assert.Equal(t, day("2026-01-31"), r.To)
	})

	t.Run("Open start", func(t *testing.T) {
		r, err := parseRange("", "2026-01-31")
		require.NoError(t, err)

		assert.True(t, r.From.IsZero())
	})

	t.Run("Bad date", func(t *testing.T) {
		_, err := parseRange("01/01/2026", "")
		assert.ErrorContains(t, err, "from")
	})

	t.Run("Reversed", func(t *testing.T) {
		_, err := parseRange("2026-02-01", "2026-01-01")
		assert.ErrorContains(t, err, "before")
	})
}

func TestFormatMoney(t *testing.T) {
	tests := map[string]string{
		"0":          "0.00",
		"999.5":      "999.50",
		"1000":       "1,000.00",
		"-1234567.8": "-1,234,567.80",
	}

	for in, want := range tests {
		assert.Equal(t, want, FormatMoney(decimal.RequireFromString(in)), in)
	}

	assert.Equal(t, "12,500.25", FormatQty(decimal.RequireFromString("12500.250")))
}

func TestFormValidators(t *testing.T) {
	assert.NoError(t, positiveDecimal(" 12.5 "))
	assert.Error(t, positiveDecimal("0"))
	assert.Error(t, positiveDecimal("abc"))

	assert.NoError(t, optionalDate(""))
	assert.NoError(t, optionalDate("2026-03-01"))
	assert.Error(t, optionalDate("1/3/2026"))
}
