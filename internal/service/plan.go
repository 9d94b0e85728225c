package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tolga/rota/internal/holiday"
	"github.com/tolga/rota/internal/model"
	"github.com/tolga/rota/internal/schedule"
	"github.com/tolga/rota/internal/timeutil"
)

// WeekendHistoryMonths is how far back weekend fairness looks.
const WeekendHistoryMonths = 3

// Relaxation notes attached to plans that needed a fallback attempt.
const (
	NoteRepeatPenaltyDisabled = "repeat penalty disabled; consecutive assignments possible"
	NoteSeniorityRelaxed      = "seniority requirements relaxed; review staffing manually"
	NoteWeekendHistoryRelaxed = "weekend history relaxed"
)

type planStaffRepository interface {
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.Staff, error)
}

type planClinicRepository interface {
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.Clinic, error)
	ListSeniorityRules(ctx context.Context, tenantID uuid.UUID) ([]model.ClinicSeniorityRule, error)
}

type planDutyTypeRepository interface {
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.DutyType, error)
}

type planLeaveRepository interface {
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.LeaveRequest, error)
}

type planHistoryRepository interface {
	ListByPeriod(ctx context.Context, tenantID uuid.UUID, period string) ([]model.AssignmentHistory, error)
	ReplacePeriod(ctx context.Context, tenantID uuid.UUID, period string, rows []model.AssignmentHistory) error
}

type planRecordRepository interface {
	Upsert(ctx context.Context, record *model.PlanRecord) error
}

// PlanConfig carries the solver and on-call knobs.
type PlanConfig struct {
	SolverWallClock    time.Duration
	SolverWorkers      int
	RestBufferHours    int
	OnCallWeekdayHours int
	OnCallWeekendHours int
}

// PlanResult is one computed monthly plan.
type PlanResult struct {
	Status      string                `json:"status"`
	Objective   int64                 `json:"objective_value"`
	Assignments []schedule.Assignment `json:"assignments"`

	// Loads is set for clinic plans; CapLoads and NightLoads for night
	// plans.
	Loads      []schedule.PersonLoad `json:"loads,omitempty"`
	CapLoads   []schedule.OnCallLoad `json:"cap_loads,omitempty"`
	NightLoads []NightLoad           `json:"night_loads,omitempty"`

	CapSummary   []CapSummaryRow   `json:"cap_summary,omitempty"`
	NightSummary []NightSummaryRow `json:"night_summary,omitempty"`
	Stats        PlanStats         `json:"stats"`

	Notes         []string `json:"notes,omitempty"`
	SelectedYear  int      `json:"selected_year"`
	SelectedMonth int      `json:"selected_month"`
	PlanType      string   `json:"plan_type"`
	PlanPeriod    string   `json:"plan_period"`
}

// PlanService orchestrates plan computation and approval.
type PlanService struct {
	staff   planStaffRepository
	clinics planClinicRepository
	duties  planDutyTypeRepository
	leaves  planLeaveRepository
	history planHistoryRepository
	records planRecordRepository
	cfg     PlanConfig
}

// NewPlanService creates a new PlanService.
func NewPlanService(
	staff planStaffRepository,
	clinics planClinicRepository,
	duties planDutyTypeRepository,
	leaves planLeaveRepository,
	history planHistoryRepository,
	records planRecordRepository,
	cfg PlanConfig,
) *PlanService {
	return &PlanService{
		staff:   staff,
		clinics: clinics,
		duties:  duties,
		leaves:  leaves,
		history: history,
		records: records,
		cfg:     cfg,
	}
}

// planInputs is everything one computation loads from the repositories.
type planInputs struct {
	staffRows []model.Staff
	people    []schedule.Person
	clinics   []model.Clinic
	duties    []model.DutyType
	leave     map[string][]schedule.LeaveWindow

	clinicInputs  []schedule.ClinicInput
	rotationDays  map[int]int
	clinicRules   map[int]map[schedule.Seniority]int
	forbidden     map[int]map[string]bool
	repeatHistory map[int]map[string]bool
	weekendCounts map[string]int
}

// ComputePlan builds the monthly plan for a tenant. Zero year or month
// default to the current date.
func (s *PlanService) ComputePlan(ctx context.Context, tenantID uuid.UUID, year int, month time.Month, planType string) (*PlanResult, error) {
	now := time.Now()
	if year <= 0 {
		year = now.Year()
	}
	if month < time.January || month > time.December {
		month = now.Month()
	}
	planType = schedule.NormalizePlanType(planType)

	inputs, err := s.loadInputs(ctx, tenantID, year, month, planType)
	if err != nil {
		return nil, err
	}

	var result *PlanResult
	if planType == schedule.PlanTypeNobet {
		result, err = s.computeNightPlan(ctx, inputs, year, month)
	} else {
		result, err = s.computeClinicPlan(ctx, inputs, year, month)
	}
	if err != nil {
		return nil, err
	}

	result.SelectedYear = year
	result.SelectedMonth = int(month)
	result.PlanType = planType
	result.PlanPeriod = timeutil.PlanPeriod(year, month)
	return result, nil
}

func (s *PlanService) loadInputs(ctx context.Context, tenantID uuid.UUID, year int, month time.Month, planType string) (*planInputs, error) {
	staffRows, err := s.staff.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, planErrorf(PlanErrorInternal, "loading staff: %v", err)
	}
	if len(staffRows) == 0 {
		return nil, planErrorf(PlanErrorNoStaff, "no staff registered for this unit")
	}

	clinics, err := s.clinics.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, planErrorf(PlanErrorInternal, "loading clinics: %v", err)
	}
	ruleRows, err := s.clinics.ListSeniorityRules(ctx, tenantID)
	if err != nil {
		return nil, planErrorf(PlanErrorInternal, "loading clinic rules: %v", err)
	}
	duties, err := s.duties.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, planErrorf(PlanErrorInternal, "loading duty types: %v", err)
	}
	leaveRows, err := s.leaves.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, planErrorf(PlanErrorInternal, "loading leave requests: %v", err)
	}

	names := staffNameMap(staffRows)
	inputs := &planInputs{
		staffRows:    staffRows,
		people:       schedule.PeopleFromStaff(staffRows),
		clinics:      clinics,
		duties:       duties,
		leave:        leaveWindowsByPerson(leaveRows),
		clinicInputs: clinicInputs(clinics, names),
		rotationDays: rotationDaysByClinic(clinics),
		clinicRules:  seniorityRulesByClinic(ruleRows),
		forbidden:    forbiddenPeopleByClinic(clinics),
	}

	switch planType {
	case schedule.PlanTypeClinic:
		previousYear, previousMonth := timeutil.PreviousMonth(year, month)
		previousRows, err := s.history.ListByPeriod(ctx, tenantID, timeutil.PlanPeriod(previousYear, previousMonth))
		if err != nil {
			return nil, planErrorf(PlanErrorInternal, "loading repeat history: %v", err)
		}
		inputs.repeatHistory = repeatHistoryByClinic(previousRows)
	case schedule.PlanTypeNobet:
		historyYear, historyMonth := year, month
		var rowSets [][]model.AssignmentHistory
		for i := 0; i < WeekendHistoryMonths; i++ {
			historyYear, historyMonth = timeutil.PreviousMonth(historyYear, historyMonth)
			if historyYear < 1 {
				break
			}
			rows, err := s.history.ListByPeriod(ctx, tenantID, timeutil.PlanPeriod(historyYear, historyMonth))
			if err != nil {
				return nil, planErrorf(PlanErrorInternal, "loading weekend history: %v", err)
			}
			rowSets = append(rowSets, rows)
		}
		inputs.weekendCounts = weekendHistoryCounts(rowSets...)
	}

	return inputs, nil
}

// computeClinicPlan solves the working-day plan with the fixed relaxation
// cascade: full constraints, then repeat penalty off, then seniority rules
// dropped.
func (s *PlanService) computeClinicPlan(_ context.Context, inputs *planInputs, year int, month time.Month) (*PlanResult, error) {
	var mesaDuties []model.DutyType
	for _, duty := range inputs.duties {
		if strings.ToLower(strings.TrimSpace(duty.DutyCategory)) == model.DutyCategoryMesa {
			mesaDuties = append(mesaDuties, duty)
		}
	}
	if len(inputs.clinics) == 0 && len(mesaDuties) == 0 {
		return nil, planErrorf(PlanErrorNoWorkToPlan, "add at least one clinic or mesa duty before planning")
	}

	calendar := holiday.NewCalendar(year)
	slots := schedule.BuildSlots(inputs.clinicInputs, dutyInputs(mesaDuties), year, month, schedule.PlanTypeClinic, calendar)
	if len(slots) == 0 {
		return nil, planErrorf(PlanErrorNoSlotsGenerated, "no slots produced for %s", timeutil.PlanPeriod(year, month))
	}

	attempts := []struct {
		disableRepeat    bool
		disableSeniority bool
		note             string
	}{
		{},
		{disableRepeat: true, note: NoteRepeatPenaltyDisabled},
		{disableRepeat: true, disableSeniority: true, note: NoteSeniorityRelaxed},
	}

	var notes []string
	var lastSolverErr *schedule.SolverFailedError
	for _, attempt := range attempts {
		if attempt.note != "" {
			notes = append(notes, attempt.note)
			log.Warn().
				Str("note", attempt.note).
				Int("year", year).
				Int("month", int(month)).
				Msg("clinic plan relaxation applied")
		}

		req := schedule.SolveRequest{
			People:                inputs.people,
			Slots:                 slots,
			RestBufferHours:       s.cfg.RestBufferHours,
			ClinicRotationDays:    inputs.rotationDays,
			ClinicSeniorityRules:  inputs.clinicRules,
			ClinicForbiddenPeople: inputs.forbidden,
			ClinicRepeatHistory:   inputs.repeatHistory,
			LeaveWindows:          inputs.leave,
			ObjectiveMode:         schedule.ObjectiveSeniority,
			WallClock:             s.cfg.SolverWallClock,
			Workers:               s.cfg.SolverWorkers,
		}
		if attempt.disableRepeat {
			req.ClinicRepeatHistory = nil
		}
		if attempt.disableSeniority {
			req.ClinicSeniorityRules = nil
		}

		res, err := schedule.Solve(req)
		if err != nil {
			var solverErr *schedule.SolverFailedError
			if errors.As(err, &solverErr) {
				lastSolverErr = solverErr
				continue
			}
			return nil, mapEngineError(err, notes)
		}

		log.Info().
			Str("status", res.Status).
			Int64("objective", res.Objective).
			Int("slots", len(slots)).
			Msg("clinic plan solved")
		return &PlanResult{
			Status:      res.Status,
			Objective:   res.Objective,
			Assignments: res.Assignments,
			Loads:       res.Loads,
			Stats:       buildPlanStats(len(inputs.people), res.Assignments),
			Notes:       notes,
		}, nil
	}

	detail := "no feasible clinic plan"
	if lastSolverErr != nil {
		detail = lastSolverErr.Error()
	}
	return nil, &PlanError{Kind: PlanErrorSolverFailed, Detail: detail, Notes: notes}
}

// computeNightPlan combines the deterministic cap rotation with the solver
// night plan for residents.
func (s *PlanService) computeNightPlan(_ context.Context, inputs *planInputs, year int, month time.Month) (*PlanResult, error) {
	var nobetDuties []model.DutyType
	var capDuty *model.DutyType
	for i := range inputs.duties {
		duty := &inputs.duties[i]
		if strings.ToLower(strings.TrimSpace(duty.DutyCategory)) != model.DutyCategoryNobet {
			continue
		}
		if capDuty == nil && strings.ToLower(strings.TrimSpace(duty.Name)) == model.CapDutyName {
			capDuty = duty
			continue
		}
		nobetDuties = append(nobetDuties, *duty)
	}
	if capDuty == nil {
		return nil, planErrorf(PlanErrorMissingCapDuty, "no duty named %q in category nobet", model.CapDutyName)
	}

	// Limits are validated on the raw rows: the projection silently drops
	// inverted pairs, which would hide a data error from the planner.
	for _, row := range inputs.staffRows {
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(row.Title)), "asst") {
			continue
		}
		if row.MinNightDuties != nil && row.MaxNightDuties != nil && *row.MinNightDuties > *row.MaxNightDuties {
			return nil, planErrorf(PlanErrorInvalidLimits, "night duty limits for %s: minimum %d exceeds maximum %d",
				row.Name, *row.MinNightDuties, *row.MaxNightDuties)
		}
	}

	capResult, err := schedule.BuildOnCallPlan(
		inputs.people,
		schedule.OnCallDuty{ID: int(capDuty.ID), Name: capDuty.Name},
		year, month,
		inputs.leave,
		schedule.OnCallConfig{WeekdayHours: s.cfg.OnCallWeekdayHours, WeekendHours: s.cfg.OnCallWeekendHours},
	)
	if err != nil {
		return nil, mapEngineError(err, nil)
	}

	result := &PlanResult{
		Status:     "OK",
		CapLoads:   capResult.Loads,
		CapSummary: buildCapSummary(capResult.Loads),
	}

	night, notes, err := s.solveNightDuties(inputs, nobetDuties, year, month)
	if err != nil {
		return nil, err
	}
	result.Notes = notes

	combined := append([]schedule.Assignment{}, capResult.Assignments...)
	if night != nil {
		combined = append(combined, night.result.Assignments...)
		result.Status = night.result.Status
		result.Objective = night.result.Objective
		result.NightLoads = buildNightLoads(night.residents, night.result.Assignments, night.result.Loads)
		result.NightSummary = buildNightSummary(result.NightLoads)
	}
	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].Start.Before(combined[j].Start)
	})
	result.Assignments = combined
	result.Stats = buildPlanStats(len(inputs.people), combined)
	return result, nil
}

type nightSolve struct {
	result    *schedule.SolveResult
	residents []schedule.Person
}

// solveNightDuties solves the residents' balanced night plan, retrying once
// with weekend history disabled when infeasible. A nil result with nil
// error means there are no night duties to plan.
func (s *PlanService) solveNightDuties(inputs *planInputs, nobetDuties []model.DutyType, year int, month time.Month) (*nightSolve, []string, error) {
	if len(nobetDuties) == 0 {
		return nil, nil, nil
	}

	var residents []schedule.Person
	for _, person := range inputs.people {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(person.Title)), "asst") {
			residents = append(residents, person)
		}
	}
	if len(residents) == 0 {
		return nil, nil, planErrorf(PlanErrorNoResidents, "night duties require at least one assistant doctor")
	}

	slots := schedule.BuildSlots(nil, dutyInputs(nobetDuties), year, month, schedule.PlanTypeNobet, nil)
	if len(slots) == 0 {
		return nil, nil, nil
	}

	req := schedule.SolveRequest{
		People:               residents,
		Slots:                slots,
		RestBufferHours:      s.cfg.RestBufferHours,
		EnforcePersonLimits:  true,
		WeekendHistoryCounts: inputs.weekendCounts,
		LeaveWindows:         inputs.leave,
		ObjectiveMode:        schedule.ObjectiveBalanced,
		WallClock:            s.cfg.SolverWallClock,
		Workers:              s.cfg.SolverWorkers,
	}

	res, err := schedule.Solve(req)
	if err == nil {
		return &nightSolve{result: res, residents: residents}, nil, nil
	}
	var solverErr *schedule.SolverFailedError
	if !errors.As(err, &solverErr) {
		return nil, nil, mapEngineError(err, nil)
	}

	notes := []string{NoteWeekendHistoryRelaxed}
	log.Warn().
		Str("note", NoteWeekendHistoryRelaxed).
		Int("year", year).
		Int("month", int(month)).
		Msg("night plan relaxation applied")

	req.WeekendHistoryCounts = nil
	res, err = schedule.Solve(req)
	if err != nil {
		if errors.As(err, &solverErr) {
			return nil, nil, &PlanError{Kind: PlanErrorSolverFailed, Detail: solverErr.Error(), Notes: notes}
		}
		return nil, nil, mapEngineError(err, notes)
	}
	return &nightSolve{result: res, residents: residents}, notes, nil
}

// mapEngineError converts engine errors to the caller-facing PlanError.
func mapEngineError(err error, notes []string) error {
	var planErr *PlanError
	if errors.As(err, &planErr) {
		return planErr
	}

	var notEligible *schedule.NoEligibleStaffError
	if errors.As(err, &notEligible) {
		return &PlanError{Kind: PlanErrorNoEligibleStaff, Detail: notEligible.Error(), Notes: notes}
	}
	var onLeave *schedule.AllSpecialistsOnLeaveError
	if errors.As(err, &onLeave) {
		return &PlanError{Kind: PlanErrorAllSpecialistsOnLeave, Detail: onLeave.Error(), Notes: notes}
	}
	var solverErr *schedule.SolverFailedError
	if errors.As(err, &solverErr) {
		return &PlanError{Kind: PlanErrorSolverFailed, Detail: solverErr.Error(), Notes: notes}
	}
	switch {
	case errors.Is(err, schedule.ErrNoSpecialists):
		return &PlanError{Kind: PlanErrorNoSpecialists, Detail: err.Error(), Notes: notes}
	case errors.Is(err, schedule.ErrNoPeople):
		return &PlanError{Kind: PlanErrorNoStaff, Detail: err.Error(), Notes: notes}
	case errors.Is(err, schedule.ErrNoSlots):
		return &PlanError{Kind: PlanErrorNoSlotsGenerated, Detail: err.Error(), Notes: notes}
	}
	return &PlanError{Kind: PlanErrorInternal, Detail: err.Error(), Notes: notes}
}
