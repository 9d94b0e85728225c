package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolga/rota/internal/model"
	"github.com/tolga/rota/internal/service"
)

type fakeStaffRepo struct {
	rows []model.Staff
}

func (f *fakeStaffRepo) ListByTenant(_ context.Context, _ uuid.UUID) ([]model.Staff, error) {
	return f.rows, nil
}

type fakeClinicRepo struct {
	clinics []model.Clinic
	rules   []model.ClinicSeniorityRule
}

func (f *fakeClinicRepo) ListByTenant(_ context.Context, _ uuid.UUID) ([]model.Clinic, error) {
	return f.clinics, nil
}

func (f *fakeClinicRepo) ListSeniorityRules(_ context.Context, _ uuid.UUID) ([]model.ClinicSeniorityRule, error) {
	return f.rules, nil
}

type fakeDutyRepo struct {
	duties []model.DutyType
}

func (f *fakeDutyRepo) ListByTenant(_ context.Context, _ uuid.UUID) ([]model.DutyType, error) {
	return f.duties, nil
}

type fakeLeaveRepo struct {
	leaves []model.LeaveRequest
}

func (f *fakeLeaveRepo) ListByTenant(_ context.Context, _ uuid.UUID) ([]model.LeaveRequest, error) {
	return f.leaves, nil
}

type fakeHistoryRepo struct {
	byPeriod map[string][]model.AssignmentHistory
	replaced map[string][]model.AssignmentHistory
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{
		byPeriod: make(map[string][]model.AssignmentHistory),
		replaced: make(map[string][]model.AssignmentHistory),
	}
}

func (f *fakeHistoryRepo) ListByPeriod(_ context.Context, _ uuid.UUID, period string) ([]model.AssignmentHistory, error) {
	return f.byPeriod[period], nil
}

func (f *fakeHistoryRepo) ReplacePeriod(_ context.Context, _ uuid.UUID, period string, rows []model.AssignmentHistory) error {
	f.replaced[period] = rows
	f.byPeriod[period] = rows
	return nil
}

type fakeRecordRepo struct {
	records []*model.PlanRecord
}

func (f *fakeRecordRepo) Upsert(_ context.Context, record *model.PlanRecord) error {
	f.records = append(f.records, record)
	return nil
}

type planFixture struct {
	staff   *fakeStaffRepo
	clinics *fakeClinicRepo
	duties  *fakeDutyRepo
	leaves  *fakeLeaveRepo
	history *fakeHistoryRepo
	records *fakeRecordRepo
	svc     *service.PlanService
}

func newPlanFixture() *planFixture {
	f := &planFixture{
		staff:   &fakeStaffRepo{},
		clinics: &fakeClinicRepo{},
		duties:  &fakeDutyRepo{},
		leaves:  &fakeLeaveRepo{},
		history: newFakeHistoryRepo(),
		records: &fakeRecordRepo{},
	}
	f.svc = service.NewPlanService(f.staff, f.clinics, f.duties, f.leaves, f.history, f.records, service.PlanConfig{
		SolverWallClock: 8 * time.Second,
		SolverWorkers:   4,
	})
	return f
}

func assistant(id uint, name, seniority string) model.Staff {
	return model.Staff{ID: id, Name: name, Title: "Asst. Dr.", Seniority: seniority, IsActive: true}
}

func specialistRow(id uint, name string) model.Staff {
	return model.Staff{ID: id, Name: name, Title: "Uzm. Dr.", Seniority: "uzman", IsActive: true}
}

func TestComputePlan_NoStaff(t *testing.T) {
	f := newPlanFixture()

	_, err := f.svc.ComputePlan(context.Background(), uuid.New(), 2025, time.March, "clinic")

	var planErr *service.PlanError
	require.ErrorAs(t, err, &planErr)
	assert.Equal(t, service.PlanErrorNoStaff, planErr.Kind)
	assert.Equal(t, 400, planErr.HTTPStatus())
}

func TestComputePlan_NoWorkToPlan(t *testing.T) {
	f := newPlanFixture()
	f.staff.rows = []model.Staff{assistant(1, "R1", "ara")}

	_, err := f.svc.ComputePlan(context.Background(), uuid.New(), 2025, time.March, "clinic")

	var planErr *service.PlanError
	require.ErrorAs(t, err, &planErr)
	assert.Equal(t, service.PlanErrorNoWorkToPlan, planErr.Kind)
}

func TestComputePlan_ClinicPlanHappyPath(t *testing.T) {
	f := newPlanFixture()
	f.staff.rows = []model.Staff{
		assistant(1, "R1", "ara"),
		assistant(2, "R2", "comez"),
	}
	f.clinics.clinics = []model.Clinic{
		{ID: 1, Name: "Derm", RequiredAssistants: 1, RotationPeriod: model.RotationWeekly},
	}

	result, err := f.svc.ComputePlan(context.Background(), uuid.New(), 2025, time.March, "clinic")
	require.NoError(t, err)

	// March 2025 has 21 weekdays, one of which is a national holiday
	// (the second day of Ramazan Bayrami falls on Monday the 31st).
	assert.Len(t, result.Assignments, 20)
	assert.Equal(t, "clinic", result.PlanType)
	assert.Equal(t, "2025-03", result.PlanPeriod)
	assert.Equal(t, 2025, result.SelectedYear)
	assert.Equal(t, 3, result.SelectedMonth)
	assert.Empty(t, result.Notes)
	assert.Len(t, result.Loads, 2)
	assert.Equal(t, 2, result.Stats.People)
	assert.Equal(t, 20, result.Stats.Slots)
	assert.Equal(t, "10", result.Stats.MeanSlotsPerPerson.String())

	for _, a := range result.Assignments {
		assert.NotEmpty(t, a.PersonID, "slot %s unassigned", a.SlotID)
	}
}

func TestComputePlan_RelaxationCascadeDropsSeniorityRules(t *testing.T) {
	f := newPlanFixture()
	f.staff.rows = []model.Staff{
		assistant(1, "R1", "ara"),
		assistant(2, "R2", "ara"),
	}
	f.clinics.clinics = []model.Clinic{
		{ID: 1, Name: "Derm", RequiredAssistants: 1, RotationPeriod: model.RotationDaily},
	}
	// An unsatisfiable composition rule: five kidemli per day with none on
	// staff. The cascade must end up dropping the rules.
	f.clinics.rules = []model.ClinicSeniorityRule{
		{ID: 1, ClinicID: 1, RequiredSeniority: "kidemli", RequiredCount: 5},
	}

	result, err := f.svc.ComputePlan(context.Background(), uuid.New(), 2025, time.March, "clinic")
	require.NoError(t, err)

	assert.Equal(t, []string{service.NoteRepeatPenaltyDisabled, service.NoteSeniorityRelaxed}, result.Notes)
	for _, a := range result.Assignments {
		assert.NotEmpty(t, a.PersonID)
	}
}

func TestComputePlan_MissingCapDuty(t *testing.T) {
	f := newPlanFixture()
	f.staff.rows = []model.Staff{specialistRow(1, "Dr. Aksoy")}
	f.duties.duties = []model.DutyType{
		{ID: 2, Name: "Gece", DurationHours: 16, DutyCategory: "nobet", RequiredStaffCount: 1},
	}

	_, err := f.svc.ComputePlan(context.Background(), uuid.New(), 2025, time.March, "nobet")

	var planErr *service.PlanError
	require.ErrorAs(t, err, &planErr)
	assert.Equal(t, service.PlanErrorMissingCapDuty, planErr.Kind)
}

func TestComputePlan_InvalidLimitsPreCheck(t *testing.T) {
	f := newPlanFixture()
	broken := assistant(2, "R1", "ara")
	minLimit, maxLimit := 5, 2
	broken.MinNightDuties = &minLimit
	broken.MaxNightDuties = &maxLimit
	f.staff.rows = []model.Staff{specialistRow(1, "Dr. Aksoy"), broken}
	f.duties.duties = []model.DutyType{
		{ID: 1, Name: "cap", DurationHours: 16, DutyCategory: "nobet", RequiredStaffCount: 1},
	}

	_, err := f.svc.ComputePlan(context.Background(), uuid.New(), 2025, time.March, "nobet")

	var planErr *service.PlanError
	require.ErrorAs(t, err, &planErr)
	assert.Equal(t, service.PlanErrorInvalidLimits, planErr.Kind)
	assert.Contains(t, planErr.Detail, "R1")
}

func TestComputePlan_NightPlanCombinesCapAndNightDuties(t *testing.T) {
	f := newPlanFixture()
	f.staff.rows = []model.Staff{
		specialistRow(1, "Dr. Aksoy"),
		assistant(2, "R1", "ara"),
		assistant(3, "R2", "ara"),
		assistant(4, "R3", "comez"),
	}
	f.duties.duties = []model.DutyType{
		{ID: 1, Name: "cap", DurationHours: 16, DutyCategory: "nobet", RequiredStaffCount: 1},
		{ID: 2, Name: "Gece", DurationHours: 16, DutyCategory: "nobet", RequiredStaffCount: 1},
	}

	result, err := f.svc.ComputePlan(context.Background(), uuid.New(), 2025, time.March, "nobet")
	require.NoError(t, err)

	// 31 cap days plus 31 night slots, merged and sorted by start.
	assert.Len(t, result.Assignments, 62)
	for i := 1; i < len(result.Assignments); i++ {
		assert.False(t, result.Assignments[i].Start.Before(result.Assignments[i-1].Start))
	}

	// The specialist carries every cap day; residents carry the nights.
	require.Len(t, result.CapLoads, 1)
	assert.Equal(t, 31, result.CapLoads[0].AssignedDays)
	require.Len(t, result.CapSummary, 1)

	require.Len(t, result.NightLoads, 3)
	total := 0
	for _, load := range result.NightLoads {
		assert.Equal(t, "Asst. Dr.", load.Title)
		total += load.AssignedSlots
	}
	assert.Equal(t, 31, total)
	assert.NotEmpty(t, result.NightSummary)
	assert.Equal(t, "nobet", result.PlanType)
}

func TestComputePlan_NightPlanWithoutNightDutiesStillBuildsCap(t *testing.T) {
	f := newPlanFixture()
	f.staff.rows = []model.Staff{specialistRow(1, "Dr. Aksoy")}
	f.duties.duties = []model.DutyType{
		{ID: 1, Name: "cap", DurationHours: 16, DutyCategory: "nobet", RequiredStaffCount: 1},
	}

	result, err := f.svc.ComputePlan(context.Background(), uuid.New(), 2025, time.March, "nobet")
	require.NoError(t, err)

	assert.Len(t, result.Assignments, 31)
	assert.Empty(t, result.NightLoads)
	assert.Equal(t, "OK", result.Status)
}

func TestApprovePlan_WritesHistoryAndPreservesOrthogonalRows(t *testing.T) {
	f := newPlanFixture()
	f.staff.rows = []model.Staff{
		assistant(1, "R1", "ara"),
		assistant(2, "R2", "comez"),
	}
	f.clinics.clinics = []model.Clinic{
		{ID: 1, Name: "Derm", RequiredAssistants: 1, RotationPeriod: model.RotationWeekly},
	}

	// Existing night rows (NULL clinic) for the same period must survive a
	// clinic approval.
	nightRow := model.AssignmentHistory{
		StaffID:        9,
		ClinicID:       nil,
		AssignmentDate: time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC),
		PlanPeriod:     "2025-03",
		DayType:        model.DayTypeWeekend,
	}
	staleClinicID := uint(1)
	staleClinicRow := model.AssignmentHistory{
		StaffID:        9,
		ClinicID:       &staleClinicID,
		AssignmentDate: time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC),
		PlanPeriod:     "2025-03",
		DayType:        model.DayTypeWeekday,
	}
	f.history.byPeriod["2025-03"] = []model.AssignmentHistory{nightRow, staleClinicRow}

	result, err := f.svc.ApprovePlan(context.Background(), uuid.New(), 2025, time.March, "clinic")
	require.NoError(t, err)

	written := f.history.replaced["2025-03"]
	require.NotEmpty(t, written)

	var preservedNight, staleClinic, clinicRows int
	for _, row := range written {
		switch {
		case row.ClinicID == nil:
			preservedNight++
		case row.StaffID == 9:
			staleClinic++
		default:
			clinicRows++
		}
	}
	assert.Equal(t, 1, preservedNight, "night row must be preserved")
	assert.Zero(t, staleClinic, "old clinic rows must be replaced")
	assert.Equal(t, len(result.Assignments), clinicRows)

	for _, row := range written {
		if row.ClinicID != nil {
			assert.Equal(t, "2025-03", row.PlanPeriod)
			assert.Contains(t, []string{model.DayTypeWeekday, model.DayTypeWeekend}, row.DayType)
		}
	}

	// The approved payload is stored as a snapshot.
	require.Len(t, f.records.records, 1)
	record := f.records.records[0]
	assert.Equal(t, "2025-03", record.PlanPeriod)
	assert.Equal(t, "clinic", record.PlanType)
	assert.NotEmpty(t, record.Payload)
}

func TestApprovePlan_RepeatHistoryReducesConsecutiveAssignments(t *testing.T) {
	tenantID := uuid.New()
	f := newPlanFixture()
	f.staff.rows = []model.Staff{
		assistant(1, "R1", "ara"),
		assistant(2, "R2", "ara"),
	}
	f.clinics.clinics = []model.Clinic{
		{ID: 1, Name: "Derm", RequiredAssistants: 1, RotationPeriod: model.RotationMonthly},
	}

	march, err := f.svc.ApprovePlan(context.Background(), tenantID, 2025, time.March, "clinic")
	require.NoError(t, err)
	marchOccupant := march.Assignments[0].PersonID

	// With March history in place, April's plan avoids the same occupant.
	april, err := f.svc.ComputePlan(context.Background(), tenantID, 2025, time.April, "clinic")
	require.NoError(t, err)
	assert.NotEqual(t, marchOccupant, april.Assignments[0].PersonID)
}
