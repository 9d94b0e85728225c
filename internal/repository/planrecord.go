package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tolga/rota/internal/model"
)

var ErrPlanRecordNotFound = errors.New("plan record not found")

// PlanRecordRepository stores approved plan snapshots.
type PlanRecordRepository struct {
	db *DB
}

// NewPlanRecordRepository creates a new plan record repository.
func NewPlanRecordRepository(db *DB) *PlanRecordRepository {
	return &PlanRecordRepository{db: db}
}

// Upsert stores the snapshot for a (tenant, period, plan type) scope,
// replacing any previous approval.
func (r *PlanRecordRepository) Upsert(ctx context.Context, record *model.PlanRecord) error {
	err := r.db.GORM.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "tenant_id"}, {Name: "plan_period"}, {Name: "plan_type"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "approved_at", "updated_at"}),
		}).
		Create(record).Error
	if err != nil {
		return fmt.Errorf("failed to upsert plan record: %w", err)
	}
	return nil
}

// Get retrieves the snapshot for a (tenant, period, plan type) scope.
func (r *PlanRecordRepository) Get(ctx context.Context, tenantID uuid.UUID, period, planType string) (*model.PlanRecord, error) {
	var record model.PlanRecord
	err := r.db.GORM.WithContext(ctx).
		First(&record, "tenant_id = ? AND plan_period = ? AND plan_type = ?", tenantID, period, planType).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPlanRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan record: %w", err)
	}
	return &record, nil
}
