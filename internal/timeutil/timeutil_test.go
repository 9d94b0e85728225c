package timeutil_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolga/rota/internal/timeutil"
)

func TestPlanPeriod_ZeroPadding(t *testing.T) {
	assert.Equal(t, "2025-03", timeutil.PlanPeriod(2025, time.March))
	assert.Equal(t, "2025-11", timeutil.PlanPeriod(2025, time.November))
	assert.Equal(t, "0999-01", timeutil.PlanPeriod(999, time.January))
}

func TestParsePlanPeriod_RoundTrip(t *testing.T) {
	year, month, err := timeutil.ParsePlanPeriod("2025-03")
	require.NoError(t, err)
	assert.Equal(t, 2025, year)
	assert.Equal(t, time.March, month)
	assert.Equal(t, "2025-03", timeutil.PlanPeriod(year, month))
}

func TestParsePlanPeriod_Invalid(t *testing.T) {
	cases := []string{"", "2025", "2025-13", "2025-00", "2025-3x", "x-03"}
	for _, c := range cases {
		_, _, err := timeutil.ParsePlanPeriod(c)
		assert.ErrorIs(t, err, timeutil.ErrInvalidPeriod, "input %q", c)
	}
}

func TestPreviousMonth(t *testing.T) {
	year, month := timeutil.PreviousMonth(2025, time.March)
	assert.Equal(t, 2025, year)
	assert.Equal(t, time.February, month)

	year, month = timeutil.PreviousMonth(2025, time.January)
	assert.Equal(t, 2024, year)
	assert.Equal(t, time.December, month)
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 31, timeutil.DaysInMonth(2025, time.March))
	assert.Equal(t, 28, timeutil.DaysInMonth(2025, time.February))
	assert.Equal(t, 29, timeutil.DaysInMonth(2024, time.February))
	assert.Equal(t, 30, timeutil.DaysInMonth(2025, time.April))
}

func TestMonthDays_OrderedFromFirst(t *testing.T) {
	days := timeutil.MonthDays(2025, time.February)
	require.Len(t, days, 28)
	assert.Equal(t, time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC), days[0])
	assert.Equal(t, time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC), days[27])
}

func TestIsWeekend(t *testing.T) {
	saturday := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	sunday := time.Date(2025, time.March, 2, 0, 0, 0, 0, time.UTC)
	monday := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)

	assert.True(t, timeutil.IsWeekend(saturday))
	assert.True(t, timeutil.IsWeekend(sunday))
	assert.False(t, timeutil.IsWeekend(monday))

	assert.Equal(t, "weekend", timeutil.DayType(saturday))
	assert.Equal(t, "weekday", timeutil.DayType(monday))
}

func TestEndOfDay_InclusiveBound(t *testing.T) {
	day := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	end := timeutil.EndOfDay(day)
	assert.True(t, end.After(time.Date(2025, time.March, 10, 23, 59, 59, 0, time.UTC)))
	assert.True(t, end.Before(time.Date(2025, time.March, 11, 0, 0, 0, 0, time.UTC)))
}
