package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolga/rota/internal/schedule"
)

func specialist(id int, name string) schedule.Person {
	return schedule.Person{
		Identifier:       schedule.StaffIdentifier(id),
		DisplayName:      name,
		Title:            "Uzm. Dr.",
		Seniority:        schedule.SeniorityUzman,
		AllowedDutyTypes: []string{schedule.AllDutyTypes},
	}
}

func TestBuildOnCallPlan_RoundRobinCoversEveryDay(t *testing.T) {
	people := []schedule.Person{
		specialist(1, "Dr. Aksoy"),
		specialist(2, "Dr. Bal"),
		specialist(3, "Dr. Can"),
	}

	res, err := schedule.BuildOnCallPlan(people, schedule.OnCallDuty{ID: 4, Name: "cap"}, 2025, time.March, nil, schedule.OnCallConfig{})
	require.NoError(t, err)
	require.Len(t, res.Assignments, 31)

	// Strict rotation without leave: Aksoy, Bal, Can repeating.
	wantOrder := []string{"staff_1", "staff_2", "staff_3"}
	for i, a := range res.Assignments {
		assert.Equal(t, wantOrder[i%3], a.PersonID, "day %d", i+1)
	}
}

func TestBuildOnCallPlan_HoursSplitWeekdayWeekend(t *testing.T) {
	people := []schedule.Person{specialist(1, "Dr. Aksoy")}

	res, err := schedule.BuildOnCallPlan(people, schedule.OnCallDuty{ID: 4, Name: "cap"}, 2025, time.March, nil, schedule.OnCallConfig{})
	require.NoError(t, err)

	for _, a := range res.Assignments {
		wd := a.Start.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			assert.Equal(t, 24, a.DurationHours)
		} else {
			assert.Equal(t, 16, a.DurationHours)
		}
	}

	require.Len(t, res.Loads, 1)
	load := res.Loads[0]
	assert.Equal(t, 31, load.AssignedDays)
	// March 2025: 10 weekend days, 21 weekdays.
	assert.Equal(t, 10, load.WeekendDays)
	assert.Equal(t, 21, load.WeekdayDays)
	assert.Equal(t, 21*16+10*24, load.TotalHours)
}

func TestBuildOnCallPlan_LeaveSkipsSpecialist(t *testing.T) {
	// Boundary scenario: Dr. Bal is on leave 2025-03-10 .. 2025-03-14;
	// the rotation skips them and never double-books a day.
	people := []schedule.Person{
		specialist(1, "Dr. Aksoy"),
		specialist(2, "Dr. Bal"),
		specialist(3, "Dr. Can"),
	}
	leave := map[string][]schedule.LeaveWindow{
		"staff_2": {schedule.NormalizeLeaveWindow(
			time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		)},
	}

	res, err := schedule.BuildOnCallPlan(people, schedule.OnCallDuty{ID: 4, Name: "cap"}, 2025, time.March, leave, schedule.OnCallConfig{})
	require.NoError(t, err)
	require.Len(t, res.Assignments, 31)

	seenDays := make(map[string]int)
	for _, a := range res.Assignments {
		day := a.Start.Format("2006-01-02")
		seenDays[day]++
		if day >= "2025-03-10" && day <= "2025-03-14" {
			assert.NotEqual(t, "staff_2", a.PersonID, "on-leave specialist assigned on %s", day)
		}
	}
	for day, count := range seenDays {
		assert.Equal(t, 1, count, "day %s assigned %d times", day, count)
	}

	// Bal still serves outside the leave window.
	var balDays int
	for _, a := range res.Assignments {
		if a.PersonID == "staff_2" {
			balDays++
		}
	}
	assert.NotZero(t, balDays)
}

func TestBuildOnCallPlan_InputOrderIrrelevant(t *testing.T) {
	ordered := []schedule.Person{
		specialist(1, "Dr. Aksoy"),
		specialist(2, "Dr. Bal"),
		specialist(3, "Dr. Can"),
	}
	shuffled := []schedule.Person{ordered[2], ordered[0], ordered[1]}

	duty := schedule.OnCallDuty{ID: 4, Name: "cap"}
	first, err := schedule.BuildOnCallPlan(ordered, duty, 2025, time.March, nil, schedule.OnCallConfig{})
	require.NoError(t, err)
	second, err := schedule.BuildOnCallPlan(shuffled, duty, 2025, time.March, nil, schedule.OnCallConfig{})
	require.NoError(t, err)

	require.Len(t, second.Assignments, len(first.Assignments))
	for i := range first.Assignments {
		assert.Equal(t, first.Assignments[i].PersonID, second.Assignments[i].PersonID)
	}
}

func TestBuildOnCallPlan_AllSpecialistsOnLeaveFails(t *testing.T) {
	people := []schedule.Person{specialist(1, "Dr. Aksoy")}
	leave := map[string][]schedule.LeaveWindow{
		"staff_1": {schedule.NormalizeLeaveWindow(
			time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
		)},
	}

	_, err := schedule.BuildOnCallPlan(people, schedule.OnCallDuty{ID: 4, Name: "cap"}, 2025, time.March, leave, schedule.OnCallConfig{})

	var leaveErr *schedule.AllSpecialistsOnLeaveError
	require.ErrorAs(t, err, &leaveErr)
	assert.Equal(t, "2025-03-05", leaveErr.Date.Format("2006-01-02"))
}

func TestBuildOnCallPlan_RequiresSpecialist(t *testing.T) {
	people := []schedule.Person{resident(1, "R1", schedule.SeniorityAra)}

	_, err := schedule.BuildOnCallPlan(people, schedule.OnCallDuty{ID: 4, Name: "cap"}, 2025, time.March, nil, schedule.OnCallConfig{})
	assert.ErrorIs(t, err, schedule.ErrNoSpecialists)
}

func TestBuildOnCallPlan_ConfiguredHoursOverride(t *testing.T) {
	people := []schedule.Person{specialist(1, "Dr. Aksoy")}

	res, err := schedule.BuildOnCallPlan(people, schedule.OnCallDuty{ID: 4, Name: "cap"}, 2025, time.March, nil, schedule.OnCallConfig{WeekdayHours: 12, WeekendHours: 20})
	require.NoError(t, err)

	for _, a := range res.Assignments {
		if a.Start.Weekday() == time.Saturday || a.Start.Weekday() == time.Sunday {
			assert.Equal(t, 20, a.DurationHours)
		} else {
			assert.Equal(t, 12, a.DurationHours)
		}
	}
}
