package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tolga/rota/internal/model"
)

var ErrStaffNotFound = errors.New("staff not found")

// StaffRepository handles staff data access.
type StaffRepository struct {
	db *DB
}

// NewStaffRepository creates a new staff repository.
func NewStaffRepository(db *DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// Create creates a new staff member.
func (r *StaffRepository) Create(ctx context.Context, staff *model.Staff) error {
	return r.db.GORM.WithContext(ctx).Create(staff).Error
}

// GetByID retrieves a staff member by id within a tenant.
func (r *StaffRepository) GetByID(ctx context.Context, tenantID uuid.UUID, id uint) (*model.Staff, error) {
	var staff model.Staff
	err := r.db.GORM.WithContext(ctx).
		First(&staff, "tenant_id = ? AND id = ?", tenantID, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStaffNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get staff: %w", err)
	}
	return &staff, nil
}

// ListByTenant retrieves the active staff of a tenant ordered by name.
func (r *StaffRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.Staff, error) {
	var staff []model.Staff
	err := r.db.GORM.WithContext(ctx).
		Where("tenant_id = ? AND is_active = true", tenantID).
		Order("name ASC, id ASC").
		Find(&staff).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	return staff, nil
}

// Update saves a staff member.
func (r *StaffRepository) Update(ctx context.Context, staff *model.Staff) error {
	return r.db.GORM.WithContext(ctx).Save(staff).Error
}

// Delete removes a staff member by id.
func (r *StaffRepository) Delete(ctx context.Context, tenantID uuid.UUID, id uint) error {
	result := r.db.GORM.WithContext(ctx).
		Delete(&model.Staff{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete staff: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStaffNotFound
	}
	return nil
}
