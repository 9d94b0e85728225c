package service

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tolga/rota/internal/schedule"
	"github.com/tolga/rota/internal/timeutil"
)

// CapSummaryRow is one specialist's share of the on-call rotation.
type CapSummaryRow struct {
	PersonName   string `json:"person_name"`
	Title        string `json:"title,omitempty"`
	AssignedDays int    `json:"assigned_days"`
	WeekdayDays  int    `json:"weekday_days"`
	WeekendDays  int    `json:"weekend_days"`
	TotalHours   int    `json:"total_hours"`
}

// NightSummaryRow is one resident's share of the night-duty plan.
type NightSummaryRow struct {
	PersonName    string `json:"person_name"`
	Title         string `json:"title,omitempty"`
	AssignedSlots int    `json:"assigned_slots"`
	WeekdaySlots  int    `json:"weekday_slots"`
	WeekendSlots  int    `json:"weekend_slots"`
	TotalHours    int    `json:"total_hours"`
	MinLimit      *int   `json:"min_limit,omitempty"`
	MaxLimit      *int   `json:"max_limit,omitempty"`
}

// PlanStats aggregates a plan for the header line of the result view.
type PlanStats struct {
	People             int             `json:"people"`
	Slots              int             `json:"slots"`
	TotalHours         int             `json:"total_hours"`
	MeanSlotsPerPerson decimal.Decimal `json:"mean_slots_per_person"`
	MeanHoursPerPerson decimal.Decimal `json:"mean_hours_per_person"`
}

func buildPlanStats(people int, assignments []schedule.Assignment) PlanStats {
	stats := PlanStats{
		People: people,
		Slots:  len(assignments),
	}
	for _, a := range assignments {
		stats.TotalHours += a.DurationHours
	}
	if people > 0 {
		divisor := decimal.NewFromInt(int64(people))
		stats.MeanSlotsPerPerson = decimal.NewFromInt(int64(stats.Slots)).Div(divisor).Round(2)
		stats.MeanHoursPerPerson = decimal.NewFromInt(int64(stats.TotalHours)).Div(divisor).Round(2)
	}
	return stats
}

func buildCapSummary(loads []schedule.OnCallLoad) []CapSummaryRow {
	var rows []CapSummaryRow
	for _, load := range loads {
		if load.AssignedDays == 0 {
			continue
		}
		rows = append(rows, CapSummaryRow{
			PersonName:   load.PersonName,
			Title:        load.Title,
			AssignedDays: load.AssignedDays,
			WeekdayDays:  load.WeekdayDays,
			WeekendDays:  load.WeekendDays,
			TotalHours:   load.TotalHours,
		})
	}
	return rows
}

// NightLoad enriches a solver load with weekday/weekend splits derived from
// the assignment list.
type NightLoad struct {
	PersonID      string             `json:"person_id"`
	PersonName    string             `json:"person_name"`
	Title         string             `json:"title,omitempty"`
	Seniority     schedule.Seniority `json:"seniority"`
	AssignedSlots int                `json:"assigned_slots"`
	WeekdaySlots  int                `json:"weekday_slots"`
	WeekendSlots  int                `json:"weekend_slots"`
	TotalHours    int                `json:"total_hours"`
	TargetSlots   int                `json:"target_slots"`
	Deviation     int                `json:"deviation"`
	HistoryWknd   int                `json:"history_weekend_slots"`
	MinLimit      *int               `json:"min_limit,omitempty"`
	MaxLimit      *int               `json:"max_limit,omitempty"`
}

func buildNightLoads(people []schedule.Person, assignments []schedule.Assignment, solverLoads []schedule.PersonLoad) []NightLoad {
	type split struct {
		assigned, weekday, weekend, hours int
	}
	splits := make(map[string]*split)
	for _, a := range assignments {
		if a.PersonID == "" {
			continue
		}
		entry := splits[a.PersonID]
		if entry == nil {
			entry = &split{}
			splits[a.PersonID] = entry
		}
		entry.assigned++
		if timeutil.IsWeekend(a.Start) {
			entry.weekend++
		} else {
			entry.weekday++
		}
		entry.hours += a.DurationHours
	}

	loadByID := make(map[string]schedule.PersonLoad, len(solverLoads))
	for _, load := range solverLoads {
		loadByID[load.PersonID] = load
	}

	loads := make([]NightLoad, 0, len(people))
	for i := range people {
		person := &people[i]
		entry := splits[person.Identifier]
		if entry == nil {
			entry = &split{}
		}
		solverLoad := loadByID[person.Identifier]
		loads = append(loads, NightLoad{
			PersonID:      person.Identifier,
			PersonName:    person.DisplayName,
			Title:         person.Title,
			Seniority:     person.Seniority,
			AssignedSlots: entry.assigned,
			WeekdaySlots:  entry.weekday,
			WeekendSlots:  entry.weekend,
			TotalHours:    entry.hours,
			TargetSlots:   solverLoad.TargetSlots,
			Deviation:     solverLoad.Deviation,
			HistoryWknd:   solverLoad.WeekendHistory,
			MinLimit:      person.MinNightDuties,
			MaxLimit:      person.MaxNightDuties,
		})
	}
	sort.SliceStable(loads, func(i, j int) bool {
		return strings.ToLower(loads[i].PersonName) < strings.ToLower(loads[j].PersonName)
	})
	return loads
}

func buildNightSummary(loads []NightLoad) []NightSummaryRow {
	var rows []NightSummaryRow
	for _, load := range loads {
		if load.AssignedSlots == 0 {
			continue
		}
		rows = append(rows, NightSummaryRow{
			PersonName:    load.PersonName,
			Title:         load.Title,
			AssignedSlots: load.AssignedSlots,
			WeekdaySlots:  load.WeekdaySlots,
			WeekendSlots:  load.WeekendSlots,
			TotalHours:    load.TotalHours,
			MinLimit:      load.MinLimit,
			MaxLimit:      load.MaxLimit,
		})
	}
	return rows
}
