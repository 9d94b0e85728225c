// Package holiday generates the Turkish national holiday calendar used to
// exclude working-day slots from monthly plans.
package holiday

import (
	"fmt"
	"sort"
	"time"
)

// Definition represents a generated holiday.
type Definition struct {
	Date time.Time
	Name string
}

// Religious holidays follow the lunar calendar and cannot be computed from
// the year alone; dates are tabulated from the official Diyanet calendar.
// Years outside the table degrade to the fixed national holidays only.
var religiousHolidays = map[int][]Definition{
	2023: concat(
		span(2023, time.April, 21, 3, "Ramazan Bayrami"),
		span(2023, time.June, 28, 4, "Kurban Bayrami"),
	),
	2024: concat(
		span(2024, time.April, 10, 3, "Ramazan Bayrami"),
		span(2024, time.June, 16, 4, "Kurban Bayrami"),
	),
	2025: concat(
		span(2025, time.March, 30, 3, "Ramazan Bayrami"),
		span(2025, time.June, 6, 4, "Kurban Bayrami"),
	),
	2026: concat(
		span(2026, time.March, 20, 3, "Ramazan Bayrami"),
		span(2026, time.May, 27, 4, "Kurban Bayrami"),
	),
	2027: concat(
		span(2027, time.March, 9, 3, "Ramazan Bayrami"),
		span(2027, time.May, 16, 4, "Kurban Bayrami"),
	),
}

// Generate returns the Turkish national holidays for a given year, sorted by
// date.
func Generate(year int) ([]Definition, error) {
	if year < 1900 || year > 2200 {
		return nil, fmt.Errorf("invalid year: %d", year)
	}

	fixed := func(month time.Month, day int, name string) Definition {
		return Definition{Date: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), Name: name}
	}

	holidayList := []Definition{
		fixed(time.January, 1, "Yilbasi"),
		fixed(time.April, 23, "Ulusal Egemenlik ve Cocuk Bayrami"),
		fixed(time.May, 1, "Emek ve Dayanisma Gunu"),
		fixed(time.May, 19, "Ataturk'u Anma, Genclik ve Spor Bayrami"),
		fixed(time.July, 15, "Demokrasi ve Milli Birlik Gunu"),
		fixed(time.August, 30, "Zafer Bayrami"),
		fixed(time.October, 29, "Cumhuriyet Bayrami"),
	}

	holidayList = append(holidayList, religiousHolidays[year]...)

	sort.Slice(holidayList, func(i, j int) bool {
		return holidayList[i].Date.Before(holidayList[j].Date)
	})

	return holidayList, nil
}

// Calendar is a date-membership view over one year's holidays.
type Calendar struct {
	dates map[string]string
}

// NewCalendar builds a membership calendar for the given year. When the year
// cannot be generated the calendar is empty: callers treat "no holidays" as
// an allowed degradation.
func NewCalendar(year int) *Calendar {
	dates := make(map[string]string)
	defs, err := Generate(year)
	if err != nil {
		return &Calendar{dates: dates}
	}
	for _, def := range defs {
		dates[def.Date.Format("2006-01-02")] = def.Name
	}
	return &Calendar{dates: dates}
}

// Contains reports whether the given date is a national holiday.
func (c *Calendar) Contains(day time.Time) bool {
	_, ok := c.dates[day.Format("2006-01-02")]
	return ok
}

// Name returns the holiday name for a date, or the empty string.
func (c *Calendar) Name(day time.Time) string {
	return c.dates[day.Format("2006-01-02")]
}

func span(year int, month time.Month, day, length int, name string) []Definition {
	defs := make([]Definition, 0, length)
	first := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	for i := 0; i < length; i++ {
		date := first.AddDate(0, 0, i)
		defs = append(defs, Definition{Date: date, Name: fmt.Sprintf("%s %d. Gun", name, i+1)})
	}
	return defs
}

func concat(groups ...[]Definition) []Definition {
	var merged []Definition
	for _, group := range groups {
		merged = append(merged, group...)
	}
	return merged
}
