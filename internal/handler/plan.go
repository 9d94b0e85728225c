package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/tolga/rota/internal/service"
)

// PlanHandler exposes plan computation and approval.
type PlanHandler struct {
	planService *service.PlanService
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(planService *service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// Compute handles GET /plans: compute the plan for a tenant, year, month,
// and plan type without persisting anything.
func (h *PlanHandler) Compute(w http.ResponseWriter, r *http.Request) {
	tenantID, year, month, planType, ok := planScope(w, r)
	if !ok {
		return
	}

	result, err := h.planService.ComputePlan(r.Context(), tenantID, year, month, planType)
	if err != nil {
		respondPlanError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Approve handles POST /plans/approve: recompute and persist the plan's
// history rows and snapshot.
func (h *PlanHandler) Approve(w http.ResponseWriter, r *http.Request) {
	tenantID, year, month, planType, ok := planScope(w, r)
	if !ok {
		return
	}

	result, err := h.planService.ApprovePlan(r.Context(), tenantID, year, month, planType)
	if err != nil {
		respondPlanError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message":     "plan approved",
		"plan_period": result.PlanPeriod,
		"plan":        result,
	})
}

func planScope(w http.ResponseWriter, r *http.Request) (uuid.UUID, int, time.Month, string, bool) {
	tenantRaw := r.Header.Get("X-Tenant-ID")
	if tenantRaw == "" {
		tenantRaw = r.URL.Query().Get("tenant_id")
	}
	tenantID, err := uuid.Parse(tenantRaw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Valid tenant id required")
		return uuid.Nil, 0, 0, "", false
	}

	year := 0
	if raw := r.URL.Query().Get("year"); raw != "" {
		year, err = strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid year parameter")
			return uuid.Nil, 0, 0, "", false
		}
	}
	month := 0
	if raw := r.URL.Query().Get("month"); raw != "" {
		month, err = strconv.Atoi(raw)
		if err != nil || month < 1 || month > 12 {
			respondError(w, http.StatusBadRequest, "Invalid month parameter")
			return uuid.Nil, 0, 0, "", false
		}
	}

	return tenantID, year, time.Month(month), r.URL.Query().Get("plan_type"), true
}

func respondPlanError(w http.ResponseWriter, err error) {
	var planErr *service.PlanError
	if errors.As(err, &planErr) {
		respondJSON(w, planErr.HTTPStatus(), map[string]any{
			"error":   string(planErr.Kind),
			"message": planErr.Detail,
			"notes":   planErr.Notes,
		})
		return
	}
	respondError(w, http.StatusInternalServerError, "Plan computation failed")
}
