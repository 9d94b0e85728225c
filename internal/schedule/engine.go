package schedule

import (
	"time"

	"github.com/tolga/rota/internal/cpsat"
)

// Solver defaults and penalty weights.
const (
	DefaultRestBufferHours = 48
	DefaultWallClock       = 10 * time.Second
	DefaultWorkers         = 8

	WeekendPenaltyWeight     = 3
	RepeatPenaltyWeight      = 5
	MinFallbackPenaltyWeight = 10
)

// SolveRequest carries one complete scheduling problem. Maps are keyed by
// clinic/duty id or person identifier; all inputs are immutable projections
// prepared by the caller.
type SolveRequest struct {
	People []Person
	Slots  []DutySlot

	// RestBufferHours separates consecutive extended-rest duties. Zero
	// means the 48-hour default.
	RestBufferHours int
	// EnforcePersonLimits bounds per-person slot counts by the configured
	// min/max night duties.
	EnforcePersonLimits bool

	ClinicRotationDays    map[int]int
	ClinicSeniorityRules  map[int]map[Seniority]int
	ClinicForbiddenPeople map[int]map[string]bool
	DutySeniorityRules    map[int]map[Seniority]int
	ClinicRepeatHistory   map[int]map[string]bool
	WeekendHistoryCounts  map[string]int
	LeaveWindows          map[string][]LeaveWindow

	ObjectiveMode ObjectiveMode

	// WallClock and Workers bound the CP search. Zero values mean the
	// 10-second / 8-worker defaults.
	WallClock time.Duration
	Workers   int
}

// Assignment binds one slot to its occupant.
type Assignment struct {
	SlotID               string    `json:"slot_id"`
	DutyType             string    `json:"duty_type"`
	Label                string    `json:"label"`
	Start                time.Time `json:"start"`
	DurationHours        int       `json:"duration_hours"`
	RequiresExtendedRest bool      `json:"requires_extended_rest"`
	PersonID             string    `json:"person_id"`
	PersonName           string    `json:"person_name"`
	PersonTitle          string    `json:"person_title,omitempty"`
	PersonSeniority      Seniority `json:"person_seniority"`
}

// PersonLoad summarises one person's share of a solved plan.
type PersonLoad struct {
	PersonID        string    `json:"person_id"`
	PersonName      string    `json:"person_name"`
	Title           string    `json:"title,omitempty"`
	Seniority       Seniority `json:"seniority"`
	AssignedSlots   int       `json:"assigned_slots"`
	TargetSlots     int       `json:"target_slots"`
	Deviation       int       `json:"deviation"`
	AssignedHours   int       `json:"assigned_hours"`
	WeekendAssigned int       `json:"weekend_assigned"`
	WeekendHistory  int       `json:"weekend_history"`
	MinLimit        *int      `json:"min_limit,omitempty"`
	MaxLimit        *int      `json:"max_limit,omitempty"`
}

// SolveResult is a successful solve.
type SolveResult struct {
	Status      string       `json:"status"`
	Objective   int64        `json:"objective_value"`
	Assignments []Assignment `json:"assignments"`
	Loads       []PersonLoad `json:"loads"`
}

// Solve builds the constraint model for the request and runs the CP search.
// It returns SolverFailedError when the search ends without an accepted
// solution and NoEligibleStaffError when a slot has no candidates at all.
func Solve(req SolveRequest) (*SolveResult, error) {
	if len(req.People) == 0 {
		return nil, ErrNoPeople
	}
	if len(req.Slots) == 0 {
		return nil, ErrNoSlots
	}
	if unknown := unknownSeniorities(req.People); len(unknown) > 0 {
		return nil, &UnknownSeniorityError{Levels: unknown}
	}

	b := newModelBuilder(req)
	if err := b.build(); err != nil {
		return nil, err
	}

	wall := req.WallClock
	if wall <= 0 {
		wall = DefaultWallClock
	}
	workers := req.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	res := cpsat.NewSolver(cpsat.Params{MaxTime: wall, Workers: workers}).Solve(b.model)
	if res.Status != cpsat.StatusOptimal && res.Status != cpsat.StatusFeasible {
		return nil, &SolverFailedError{Status: res.Status}
	}

	return b.extract(res), nil
}

func unknownSeniorities(people []Person) []string {
	seen := make(map[string]bool)
	var unknown []string
	for _, p := range people {
		if !p.Seniority.Valid() && !seen[string(p.Seniority)] {
			seen[string(p.Seniority)] = true
			unknown = append(unknown, string(p.Seniority))
		}
	}
	return unknown
}

// extract reads the solution back into assignments and per-person loads.
func (b *modelBuilder) extract(res *cpsat.Result) *SolveResult {
	result := &SolveResult{
		Status:    res.Status.String(),
		Objective: res.Objective,
	}

	for sIdx := range b.req.Slots {
		slot := &b.req.Slots[sIdx]
		assignment := Assignment{
			SlotID:               slot.Identifier,
			DutyType:             slot.DutyType,
			Label:                slot.Label,
			Start:                slot.Start,
			DurationHours:        slot.DurationHours,
			RequiresExtendedRest: slot.RequiresExtendedRest(),
		}
		if assignment.Label == "" {
			assignment.Label = slot.Identifier
		}
		for pIdx := range b.req.People {
			v, ok := b.vars[varKey{p: pIdx, s: sIdx}]
			if !ok || !res.BoolValue(v) {
				continue
			}
			person := &b.req.People[pIdx]
			assignment.PersonID = person.Identifier
			assignment.PersonName = person.DisplayName
			assignment.PersonTitle = person.Title
			assignment.PersonSeniority = person.Seniority
			break
		}
		result.Assignments = append(result.Assignments, assignment)
	}

	for pIdx := range b.req.People {
		person := &b.req.People[pIdx]
		load := PersonLoad{
			PersonID:       person.Identifier,
			PersonName:     person.DisplayName,
			Title:          person.Title,
			Seniority:      person.Seniority,
			TargetSlots:    int(person.PreferredLoad()),
			WeekendHistory: b.req.WeekendHistoryCounts[person.Identifier],
			MinLimit:       person.MinNightDuties,
			MaxLimit:       person.MaxNightDuties,
		}
		for sIdx := range b.req.Slots {
			v, ok := b.vars[varKey{p: pIdx, s: sIdx}]
			if !ok || !res.BoolValue(v) {
				continue
			}
			load.AssignedSlots++
			load.AssignedHours += b.req.Slots[sIdx].DurationHours
			if b.weekendSlots[sIdx] {
				load.WeekendAssigned++
			}
		}
		load.Deviation = load.AssignedSlots - load.TargetSlots
		result.Loads = append(result.Loads, load)
	}

	return result
}
