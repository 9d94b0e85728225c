package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/tolga/rota/internal/cpsat"
)

var (
	// ErrNoPeople means a solve was requested without any staff.
	ErrNoPeople = errors.New("at least one person is required")
	// ErrNoSlots means a solve was requested without any duty slots.
	ErrNoSlots = errors.New("at least one duty slot is required")
	// ErrNoSpecialists means the on-call rotation has nobody to rotate.
	ErrNoSpecialists = errors.New("on-call rotation requires at least one specialist")
)

// UnknownSeniorityError reports seniority values outside the known levels.
type UnknownSeniorityError struct {
	Levels []string
}

func (e *UnknownSeniorityError) Error() string {
	return fmt.Sprintf("unknown seniority levels: %v", e.Levels)
}

// NoEligibleStaffError means a slot has no candidate after eligibility
// gating; the model cannot cover it.
type NoEligibleStaffError struct {
	SlotID string
}

func (e *NoEligibleStaffError) Error() string {
	return fmt.Sprintf("no eligible staff for slot %q", e.SlotID)
}

// AllSpecialistsOnLeaveError means the on-call rotation found every
// specialist on leave for a date.
type AllSpecialistsOnLeaveError struct {
	Date time.Time
}

func (e *AllSpecialistsOnLeaveError) Error() string {
	return fmt.Sprintf("all specialists on leave on %s", e.Date.Format("2006-01-02"))
}

// SolverFailedError means the CP search ended without an accepted solution.
type SolverFailedError struct {
	Status cpsat.Status
}

func (e *SolverFailedError) Error() string {
	return fmt.Sprintf("solver failed with status %s", e.Status)
}
