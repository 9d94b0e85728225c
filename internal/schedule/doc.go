// Package schedule provides the pure scheduling engine for monthly clinic
// and night-duty plans. It has no database or HTTP dependencies - it operates
// on input structs and produces assignment and load structs.
//
// # Data Flow
//
// Input:
//   - []Person: normalised staff projections with seniority and duty limits
//   - []DutySlot: the month's schedulable slots from BuildSlots
//   - SolveRequest wiring: rotation periods, seniority rules, leave windows,
//     repeat and weekend history
//
// Output:
//   - SolveResult: per-slot assignments and per-person loads
//   - OnCallResult: the deterministic specialist rotation for the cap duty
//
// # Slot Identifiers
//
// Slot identifiers are load-bearing: clinic slots encode the clinic id,
// date, and optional position index ("clinic_3_2025-03-10_2"), duty slots
// the duty id and date. The constraint builder and the history writer both
// parse them, so the grammar in identifier.go is the single source of truth.
//
// # Usage
//
//	slots := schedule.BuildSlots(clinics, duties, 2025, time.March, schedule.PlanTypeClinic, cal)
//	people := schedule.PeopleFromStaff(staffRows)
//	result, err := schedule.Solve(schedule.SolveRequest{People: people, Slots: slots, ...})
package schedule
