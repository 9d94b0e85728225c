package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tolga/rota/internal/model"
)

var ErrLeaveRequestNotFound = errors.New("leave request not found")

// LeaveRequestRepository handles leave window data access.
type LeaveRequestRepository struct {
	db *DB
}

// NewLeaveRequestRepository creates a new leave request repository.
func NewLeaveRequestRepository(db *DB) *LeaveRequestRepository {
	return &LeaveRequestRepository{db: db}
}

// Create creates a new leave request.
func (r *LeaveRequestRepository) Create(ctx context.Context, leave *model.LeaveRequest) error {
	return r.db.GORM.WithContext(ctx).Create(leave).Error
}

// ListByTenant retrieves every leave request of a tenant ordered by start.
func (r *LeaveRequestRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.LeaveRequest, error) {
	var leaves []model.LeaveRequest
	err := r.db.GORM.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("start_date ASC, id ASC").
		Find(&leaves).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}
	return leaves, nil
}

// Delete removes a leave request by id.
func (r *LeaveRequestRepository) Delete(ctx context.Context, tenantID uuid.UUID, id uint) error {
	result := r.db.GORM.WithContext(ctx).
		Delete(&model.LeaveRequest{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete leave request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrLeaveRequestNotFound
	}
	return nil
}
