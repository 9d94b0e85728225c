package schedule

import (
	"fmt"
	"time"

	"github.com/tolga/rota/internal/timeutil"
)

// ClinicInput describes one clinic for slot synthesis.
type ClinicInput struct {
	ID                 int
	Name               string
	ResponsibleName    string
	RequiredAssistants int
}

// DutyInput describes one duty type for slot synthesis.
type DutyInput struct {
	ID            int
	Name          string
	DurationHours int
	Category      string
	RequiredStaff int
}

// HolidayCalendar answers date-membership queries for national holidays. A
// nil calendar means no holidays, which is an allowed degradation.
type HolidayCalendar interface {
	Contains(day time.Time) bool
}

const (
	workdayStartHour  = 8
	clinicShiftHours  = 8
	dutyCategoryMesa  = "mesa"
	dutyCategoryNobet = "nobet"
)

// BuildSlots expands clinic and duty definitions into the month's concrete
// duty slots. Clinic and mesa slots cover working days only; nobet slots
// cover every day of the month. Slot order follows the input order of
// clinics and duties, each expanded day by day; callers must not assume any
// other ordering than what the identifiers imply.
func BuildSlots(clinics []ClinicInput, duties []DutyInput, year int, month time.Month, planType string, holidays HolidayCalendar) []DutySlot {
	normalizedPlan := NormalizePlanType(planType)
	days := timeutil.MonthDays(year, month)

	isWorkday := func(day time.Time) bool {
		if timeutil.IsWeekend(day) {
			return false
		}
		return holidays == nil || !holidays.Contains(day)
	}

	var slots []DutySlot

	if normalizedPlan == PlanTypeClinic {
		for _, clinic := range clinics {
			displayName := clinic.Name
			if displayName == "" {
				displayName = "Klinik"
			}
			if clinic.ResponsibleName != "" {
				displayName = fmt.Sprintf("%s (Sorumlu: %s)", displayName, clinic.ResponsibleName)
			}
			required := clinic.RequiredAssistants
			if required < 1 {
				required = 1
			}
			for _, day := range days {
				if !isWorkday(day) {
					continue
				}
				start := time.Date(day.Year(), day.Month(), day.Day(), workdayStartHour, 0, 0, 0, day.Location())
				for idx := 1; idx <= required; idx++ {
					label := fmt.Sprintf("%s - %s", displayName, day.Format("2006-01-02"))
					if required > 1 {
						label = fmt.Sprintf("%s #%d", label, idx)
					}
					slots = append(slots, DutySlot{
						Identifier:    ClinicSlotID(clinic.ID, day, idx, required),
						DutyType:      SlotTypeClinic,
						Start:         start,
						DurationHours: clinicShiftHours,
						Label:         label,
					})
				}
			}
		}
	}

	for _, duty := range duties {
		category := duty.Category
		if category == "" {
			category = dutyCategoryNobet
		}
		if normalizedPlan == PlanTypeClinic && category != dutyCategoryMesa {
			continue
		}
		if normalizedPlan == PlanTypeNobet && category != dutyCategoryNobet {
			continue
		}

		duration := duty.DurationHours
		if duration < 1 {
			duration = 1
		}
		// Long duties start late so their end lands near the 08:00 handover
		// the next morning.
		startHour := workdayStartHour
		if duration >= extendedRestThresholdHours {
			startHour = ((workdayStartHour-duration)%24 + 24) % 24
		}
		required := duty.RequiredStaff
		if required < 1 {
			required = 1
		}
		name := duty.Name
		if name == "" {
			name = "Nobet"
		}

		for _, day := range days {
			if category == dutyCategoryMesa && !isWorkday(day) {
				continue
			}
			start := time.Date(day.Year(), day.Month(), day.Day(), startHour, 0, 0, 0, day.Location())
			for idx := 1; idx <= required; idx++ {
				label := fmt.Sprintf("%s - %s", name, day.Format("2006-01-02"))
				if required > 1 {
					label = fmt.Sprintf("%s #%d", label, idx)
				}
				slots = append(slots, DutySlot{
					Identifier:    DutySlotID(duty.ID, day, idx, required),
					DutyType:      SlotTypeDuty,
					Start:         start,
					DurationHours: duration,
					Label:         label,
				})
			}
		}
	}

	return slots
}
