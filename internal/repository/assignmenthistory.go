package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tolga/rota/internal/model"
)

// AssignmentHistoryRepository handles persisted plan assignments. History
// rows feed the fairness inputs of later plan computations, so the period
// replace must be atomic: concurrent approvals of the same (tenant, period)
// serialise on the transaction.
type AssignmentHistoryRepository struct {
	db *DB
}

// NewAssignmentHistoryRepository creates a new assignment history repository.
func NewAssignmentHistoryRepository(db *DB) *AssignmentHistoryRepository {
	return &AssignmentHistoryRepository{db: db}
}

// ListByTenant retrieves every history row of a tenant across periods.
func (r *AssignmentHistoryRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.AssignmentHistory, error) {
	var rows []model.AssignmentHistory
	err := r.db.GORM.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("plan_period ASC, assignment_date ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list assignment history: %w", err)
	}
	return rows, nil
}

// ListByPeriod retrieves a tenant's history rows for one plan period.
func (r *AssignmentHistoryRepository) ListByPeriod(ctx context.Context, tenantID uuid.UUID, period string) ([]model.AssignmentHistory, error) {
	var rows []model.AssignmentHistory
	err := r.db.GORM.WithContext(ctx).
		Where("tenant_id = ? AND plan_period = ?", tenantID, period).
		Order("assignment_date ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list assignment history: %w", err)
	}
	return rows, nil
}

// ReplacePeriod atomically replaces a tenant's history rows for one period
// with the given set. The delete and inserts run in a single pgx
// transaction so readers never observe a partially replaced period.
func (r *AssignmentHistoryRepository) ReplacePeriod(ctx context.Context, tenantID uuid.UUID, period string, rows []model.AssignmentHistory) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin history transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`DELETE FROM assignment_history WHERE tenant_id = $1 AND plan_period = $2`,
		tenantID, period,
	); err != nil {
		return fmt.Errorf("failed to clear history period: %w", err)
	}

	for _, row := range rows {
		var clinicID *int64
		if row.ClinicID != nil {
			value := int64(*row.ClinicID)
			clinicID = &value
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO assignment_history (tenant_id, staff_id, clinic_id, assignment_date, plan_period, day_type)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			tenantID, int64(row.StaffID), clinicID, row.AssignmentDate, period, row.DayType,
		); err != nil {
			return fmt.Errorf("failed to insert history row: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit history replace: %w", err)
	}
	return nil
}
