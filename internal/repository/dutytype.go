package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tolga/rota/internal/model"
)

var ErrDutyTypeNotFound = errors.New("duty type not found")

// DutyTypeRepository handles duty type data access.
type DutyTypeRepository struct {
	db *DB
}

// NewDutyTypeRepository creates a new duty type repository.
func NewDutyTypeRepository(db *DB) *DutyTypeRepository {
	return &DutyTypeRepository{db: db}
}

// Create creates a new duty type.
func (r *DutyTypeRepository) Create(ctx context.Context, duty *model.DutyType) error {
	return r.db.GORM.WithContext(ctx).Create(duty).Error
}

// GetByID retrieves a duty type within a tenant.
func (r *DutyTypeRepository) GetByID(ctx context.Context, tenantID uuid.UUID, id uint) (*model.DutyType, error) {
	var duty model.DutyType
	err := r.db.GORM.WithContext(ctx).
		First(&duty, "tenant_id = ? AND id = ?", tenantID, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDutyTypeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get duty type: %w", err)
	}
	return &duty, nil
}

// ListByTenant retrieves a tenant's duty types ordered by name.
func (r *DutyTypeRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.DutyType, error) {
	var duties []model.DutyType
	err := r.db.GORM.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name ASC, id ASC").
		Find(&duties).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list duty types: %w", err)
	}
	return duties, nil
}

// Update saves a duty type.
func (r *DutyTypeRepository) Update(ctx context.Context, duty *model.DutyType) error {
	return r.db.GORM.WithContext(ctx).Save(duty).Error
}

// Delete removes a duty type by id.
func (r *DutyTypeRepository) Delete(ctx context.Context, tenantID uuid.UUID, id uint) error {
	result := r.db.GORM.WithContext(ctx).
		Delete(&model.DutyType{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete duty type: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrDutyTypeNotFound
	}
	return nil
}
