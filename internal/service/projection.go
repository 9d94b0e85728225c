package service

import (
	"strings"

	"github.com/tolga/rota/internal/model"
	"github.com/tolga/rota/internal/schedule"
	"github.com/tolga/rota/internal/timeutil"
)

// Projections from repository rows to engine inputs. These are pure: the
// model builder never talks to the repository directly.

func staffNameMap(rows []model.Staff) map[uint]string {
	names := make(map[uint]string, len(rows))
	for _, row := range rows {
		names[row.ID] = row.Name
	}
	return names
}

func clinicInputs(clinics []model.Clinic, staffNames map[uint]string) []schedule.ClinicInput {
	inputs := make([]schedule.ClinicInput, 0, len(clinics))
	for _, clinic := range clinics {
		input := schedule.ClinicInput{
			ID:                 int(clinic.ID),
			Name:               clinic.Name,
			RequiredAssistants: clinic.RequiredAssistants,
		}
		if clinic.ResponsibleStaffID != nil {
			input.ResponsibleName = staffNames[*clinic.ResponsibleStaffID]
		}
		inputs = append(inputs, input)
	}
	return inputs
}

func rotationDaysByClinic(clinics []model.Clinic) map[int]int {
	rotation := make(map[int]int, len(clinics))
	for _, clinic := range clinics {
		rotation[int(clinic.ID)] = schedule.RotationPeriodDays(clinic.RotationPeriod)
	}
	return rotation
}

func seniorityRulesByClinic(rules []model.ClinicSeniorityRule) map[int]map[schedule.Seniority]int {
	byClinic := make(map[int]map[schedule.Seniority]int)
	for _, rule := range rules {
		seniority := schedule.Seniority(strings.ToLower(strings.TrimSpace(rule.RequiredSeniority)))
		if !seniority.Valid() || rule.RequiredCount < 0 {
			continue
		}
		clinicID := int(rule.ClinicID)
		if byClinic[clinicID] == nil {
			byClinic[clinicID] = make(map[schedule.Seniority]int)
		}
		byClinic[clinicID][seniority] = rule.RequiredCount
	}
	return byClinic
}

func forbiddenPeopleByClinic(clinics []model.Clinic) map[int]map[string]bool {
	forbidden := make(map[int]map[string]bool)
	for _, clinic := range clinics {
		for _, entry := range clinic.ForbiddenStaff {
			clinicID := int(clinic.ID)
			if forbidden[clinicID] == nil {
				forbidden[clinicID] = make(map[string]bool)
			}
			forbidden[clinicID][schedule.StaffIdentifier(int(entry.StaffID))] = true
		}
	}
	return forbidden
}

func dutyInputs(duties []model.DutyType) []schedule.DutyInput {
	inputs := make([]schedule.DutyInput, 0, len(duties))
	for _, duty := range duties {
		inputs = append(inputs, schedule.DutyInput{
			ID:            int(duty.ID),
			Name:          duty.Name,
			DurationHours: duty.DurationHours,
			Category:      strings.ToLower(strings.TrimSpace(duty.DutyCategory)),
			RequiredStaff: duty.RequiredStaffCount,
		})
	}
	return inputs
}

// leaveWindowsByPerson canonicalises every leave row; every window is
// retained, including duplicates.
func leaveWindowsByPerson(leaves []model.LeaveRequest) map[string][]schedule.LeaveWindow {
	windows := make(map[string][]schedule.LeaveWindow)
	for _, leave := range leaves {
		identifier := schedule.StaffIdentifier(int(leave.StaffID))
		windows[identifier] = append(windows[identifier], schedule.NormalizeLeaveWindow(leave.StartDate, leave.EndDate))
	}
	return windows
}

// repeatHistoryByClinic groups the previous period's clinic occupants by
// clinic; presence means "worked this clinic last month".
func repeatHistoryByClinic(rows []model.AssignmentHistory) map[int]map[string]bool {
	repeat := make(map[int]map[string]bool)
	for _, row := range rows {
		if row.ClinicID == nil {
			continue
		}
		clinicID := int(*row.ClinicID)
		if repeat[clinicID] == nil {
			repeat[clinicID] = make(map[string]bool)
		}
		repeat[clinicID][schedule.StaffIdentifier(int(row.StaffID))] = true
	}
	return repeat
}

// weekendHistoryCounts tallies weekend rows per person across the given
// history row sets.
func weekendHistoryCounts(rowSets ...[]model.AssignmentHistory) map[string]int {
	counts := make(map[string]int)
	for _, rows := range rowSets {
		for _, row := range rows {
			if strings.ToLower(strings.TrimSpace(row.DayType)) != model.DayTypeWeekend {
				continue
			}
			counts[schedule.StaffIdentifier(int(row.StaffID))]++
		}
	}
	return counts
}

// historyRowsFromAssignments converts a fresh plan's assignments to history
// rows for its plan type: clinic plans keep clinic slots with the parsed
// clinic id, night plans keep duty slots with a NULL clinic.
func historyRowsFromAssignments(assignments []schedule.Assignment, planType, period string) []model.AssignmentHistory {
	storeClinic := planType == schedule.PlanTypeClinic
	var rows []model.AssignmentHistory
	for _, assignment := range assignments {
		var clinicID *uint
		if storeClinic {
			id, _, ok := schedule.ParseClinicSlotID(assignment.SlotID)
			if !ok {
				continue
			}
			value := uint(id)
			clinicID = &value
		} else {
			if _, ok := schedule.ParseDutySlotID(assignment.SlotID); !ok {
				continue
			}
		}
		staffID, ok := schedule.ParseStaffIdentifier(assignment.PersonID)
		if !ok {
			continue
		}
		day := timeutil.DateOnly(assignment.Start)
		rows = append(rows, model.AssignmentHistory{
			StaffID:        uint(staffID),
			ClinicID:       clinicID,
			AssignmentDate: day,
			PlanPeriod:     period,
			DayType:        timeutil.DayType(day),
		})
	}
	return rows
}

// preservedHistoryRows returns the existing rows orthogonal to the plan
// type being replaced: a clinic approval preserves night rows (NULL clinic)
// and vice versa.
func preservedHistoryRows(existing []model.AssignmentHistory, planType string) []model.AssignmentHistory {
	var preserved []model.AssignmentHistory
	for _, row := range existing {
		switch planType {
		case schedule.PlanTypeClinic:
			if row.ClinicID == nil {
				preserved = append(preserved, row)
			}
		case schedule.PlanTypeNobet:
			if row.ClinicID != nil {
				preserved = append(preserved, row)
			}
		default:
			preserved = append(preserved, row)
		}
	}
	return preserved
}
