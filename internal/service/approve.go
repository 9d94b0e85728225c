package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tolga/rota/internal/model"
	"github.com/tolga/rota/internal/schedule"
)

// ApprovePlan recomputes the plan for the requested scope and persists it:
// the plan-type's history rows for the period are replaced atomically while
// rows of the orthogonal plan type are preserved, and the approved payload
// is stored as a snapshot.
func (s *PlanService) ApprovePlan(ctx context.Context, tenantID uuid.UUID, year int, month time.Month, planType string) (*PlanResult, error) {
	planType = schedule.NormalizePlanType(planType)

	// Never trust cached state: the approved rows must come from a fresh
	// computation over current staff, leave, and history.
	result, err := s.ComputePlan(ctx, tenantID, year, month, planType)
	if err != nil {
		return nil, err
	}
	period := result.PlanPeriod

	newRows := historyRowsFromAssignments(result.Assignments, planType, period)

	existing, err := s.history.ListByPeriod(ctx, tenantID, period)
	if err != nil {
		return nil, planErrorf(PlanErrorInternal, "loading existing history: %v", err)
	}
	combined := append(preservedHistoryRows(existing, planType), newRows...)
	for i := range combined {
		combined[i].TenantID = tenantID
	}

	if err := s.history.ReplacePeriod(ctx, tenantID, period, combined); err != nil {
		return nil, planErrorf(PlanErrorInternal, "replacing history: %v", err)
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return nil, planErrorf(PlanErrorInternal, "encoding plan snapshot: %v", err)
	}
	record := &model.PlanRecord{
		TenantID:   tenantID,
		PlanPeriod: period,
		PlanType:   planType,
		Payload:    payload,
		ApprovedAt: time.Now().UTC(),
	}
	if err := s.records.Upsert(ctx, record); err != nil {
		return nil, planErrorf(PlanErrorInternal, "storing plan snapshot: %v", err)
	}

	log.Info().
		Str("tenant", tenantID.String()).
		Str("period", period).
		Str("plan_type", planType).
		Int("rows", len(newRows)).
		Int("preserved", len(combined)-len(newRows)).
		Msg("plan approved")
	return result, nil
}
