// Package timeutil provides calendar helpers for the Rota scheduling system.
// Plan periods are "YYYY-MM" strings; dates are day-granular time.Time values
// in UTC unless stated otherwise.
package timeutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidPeriod indicates a plan period string is not in YYYY-MM format.
var ErrInvalidPeriod = errors.New("invalid plan period: expected YYYY-MM")

// PlanPeriod formats a year and month as a zero-padded "YYYY-MM" string.
func PlanPeriod(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

// ParsePlanPeriod parses a "YYYY-MM" string back into year and month.
func ParsePlanPeriod(s string) (int, time.Month, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return 0, 0, ErrInvalidPeriod
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, ErrInvalidPeriod
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, ErrInvalidPeriod
	}
	return year, time.Month(month), nil
}

// PreviousMonth returns the year and month immediately before the given one.
func PreviousMonth(year int, month time.Month) (int, time.Month) {
	if month <= time.January {
		return year - 1, time.December
	}
	return year, month - 1
}

// DaysInMonth returns the number of days in a calendar month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthDays returns every date of the month in order, at midnight UTC.
func MonthDays(year int, month time.Month) []time.Time {
	n := DaysInMonth(year, month)
	days := make([]time.Time, n)
	for i := 0; i < n; i++ {
		days[i] = time.Date(year, month, i+1, 0, 0, 0, 0, time.UTC)
	}
	return days
}

// IsWeekend reports whether a date falls on Saturday or Sunday.
func IsWeekend(day time.Time) bool {
	wd := day.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// DayType classifies a date as "weekday" or "weekend" for history rows.
func DayType(day time.Time) string {
	if IsWeekend(day) {
		return "weekend"
	}
	return "weekday"
}

// DateOnly truncates a time to midnight in its own location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfDay returns 00:00:00 of the given date.
func StartOfDay(day time.Time) time.Time {
	return DateOnly(day)
}

// EndOfDay returns the last nanosecond of the given date. Leave windows are
// inclusive of their end date, so overlap checks compare against this instant.
func EndOfDay(day time.Time) time.Time {
	return DateOnly(day).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// SameDate reports whether two times fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
