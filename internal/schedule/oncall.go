package schedule

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tolga/rota/internal/timeutil"
)

// Default on-call shift lengths. Weekday cap duty hands over to the next
// working day; weekend cap duty covers the whole day.
const (
	DefaultOnCallWeekdayHours = 16
	DefaultOnCallWeekendHours = 24
)

// OnCallDuty identifies the cap duty being rotated.
type OnCallDuty struct {
	ID   int
	Name string
}

// OnCallConfig overrides the rotation's shift lengths. Zero values mean the
// 16/24-hour defaults.
type OnCallConfig struct {
	WeekdayHours int
	WeekendHours int
}

// OnCallLoad summarises one specialist's share of the rotation.
type OnCallLoad struct {
	PersonID     string    `json:"person_id"`
	PersonName   string    `json:"person_name"`
	Title        string    `json:"title,omitempty"`
	Seniority    Seniority `json:"seniority"`
	AssignedDays int       `json:"assigned_days"`
	WeekdayDays  int       `json:"weekday_days"`
	WeekendDays  int       `json:"weekend_days"`
	TotalHours   int       `json:"total_hours"`
}

// OnCallResult is the deterministic cap-duty rotation for one month.
type OnCallResult struct {
	Assignments []Assignment `json:"assignments"`
	Loads       []OnCallLoad `json:"loads"`
}

// BuildOnCallPlan rotates the cap duty across the month's specialists. The
// rotation is purely deterministic: specialists sorted by name, a pointer
// advancing day by day, skipping anyone on leave. It fails with
// AllSpecialistsOnLeaveError when a date has no available specialist.
func BuildOnCallPlan(people []Person, duty OnCallDuty, year int, month time.Month, leave map[string][]LeaveWindow, cfg OnCallConfig) (*OnCallResult, error) {
	var specialists []Person
	for _, person := range people {
		if person.IsSpecialist() {
			specialists = append(specialists, person)
		}
	}
	if len(specialists) == 0 {
		return nil, ErrNoSpecialists
	}
	sort.SliceStable(specialists, func(i, j int) bool {
		return strings.ToLower(specialists[i].DisplayName) < strings.ToLower(specialists[j].DisplayName)
	})

	weekdayHours := cfg.WeekdayHours
	if weekdayHours <= 0 {
		weekdayHours = DefaultOnCallWeekdayHours
	}
	weekendHours := cfg.WeekendHours
	if weekendHours <= 0 {
		weekendHours = DefaultOnCallWeekendHours
	}

	dutyName := strings.TrimSpace(duty.Name)
	if dutyName == "" {
		dutyName = "cap"
	}

	onLeave := func(person *Person, day time.Time) bool {
		for _, window := range leave[person.Identifier] {
			if window.ContainsDay(day) {
				return true
			}
		}
		return false
	}

	loads := make(map[string]*OnCallLoad, len(specialists))
	for i := range specialists {
		s := &specialists[i]
		loads[s.Identifier] = &OnCallLoad{
			PersonID:   s.Identifier,
			PersonName: s.DisplayName,
			Title:      s.Title,
			Seniority:  s.Seniority,
		}
	}

	result := &OnCallResult{}
	pointer := 0
	for _, day := range timeutil.MonthDays(year, month) {
		var assigned *Person
		for offset := 0; offset < len(specialists); offset++ {
			candidate := &specialists[(pointer+offset)%len(specialists)]
			if onLeave(candidate, day) {
				continue
			}
			assigned = candidate
			pointer = (pointer + offset + 1) % len(specialists)
			break
		}
		if assigned == nil {
			return nil, &AllSpecialistsOnLeaveError{Date: day}
		}

		hours := weekdayHours
		isWeekend := timeutil.IsWeekend(day)
		if isWeekend {
			hours = weekendHours
		}

		result.Assignments = append(result.Assignments, Assignment{
			SlotID:          DutySlotID(duty.ID, day, 1, 1),
			DutyType:        dutyName,
			Label:           fmt.Sprintf("%s - %s", dutyName, day.Format("2006-01-02")),
			Start:           timeutil.StartOfDay(day),
			DurationHours:   hours,
			PersonID:        assigned.Identifier,
			PersonName:      assigned.DisplayName,
			PersonTitle:     assigned.Title,
			PersonSeniority: assigned.Seniority,
		})

		entry := loads[assigned.Identifier]
		entry.AssignedDays++
		if isWeekend {
			entry.WeekendDays++
		} else {
			entry.WeekdayDays++
		}
		entry.TotalHours += hours
	}

	for i := range specialists {
		result.Loads = append(result.Loads, *loads[specialists[i].Identifier])
	}
	return result, nil
}
