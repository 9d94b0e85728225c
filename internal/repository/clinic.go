package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tolga/rota/internal/model"
)

var ErrClinicNotFound = errors.New("clinic not found")

// ClinicRepository handles clinic data access.
type ClinicRepository struct {
	db *DB
}

// NewClinicRepository creates a new clinic repository.
func NewClinicRepository(db *DB) *ClinicRepository {
	return &ClinicRepository{db: db}
}

// Create creates a new clinic.
func (r *ClinicRepository) Create(ctx context.Context, clinic *model.Clinic) error {
	return r.db.GORM.WithContext(ctx).Create(clinic).Error
}

// GetByID retrieves a clinic with its rules within a tenant.
func (r *ClinicRepository) GetByID(ctx context.Context, tenantID uuid.UUID, id uint) (*model.Clinic, error) {
	var clinic model.Clinic
	err := r.db.GORM.WithContext(ctx).
		Preload("SeniorityRules").
		Preload("ForbiddenStaff").
		First(&clinic, "tenant_id = ? AND id = ?", tenantID, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrClinicNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get clinic: %w", err)
	}
	return &clinic, nil
}

// ListByTenant retrieves a tenant's clinics ordered by display order then id,
// with seniority rules and forbidden staff preloaded.
func (r *ClinicRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.Clinic, error) {
	var clinics []model.Clinic
	err := r.db.GORM.WithContext(ctx).
		Preload("SeniorityRules").
		Preload("ForbiddenStaff").
		Where("tenant_id = ?", tenantID).
		Order("display_order ASC, id ASC").
		Find(&clinics).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list clinics: %w", err)
	}
	return clinics, nil
}

// ListSeniorityRules retrieves every clinic seniority rule of a tenant.
func (r *ClinicRepository) ListSeniorityRules(ctx context.Context, tenantID uuid.UUID) ([]model.ClinicSeniorityRule, error) {
	var rules []model.ClinicSeniorityRule
	err := r.db.GORM.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("clinic_id ASC, id ASC").
		Find(&rules).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list clinic seniority rules: %w", err)
	}
	return rules, nil
}

// Update saves a clinic.
func (r *ClinicRepository) Update(ctx context.Context, clinic *model.Clinic) error {
	return r.db.GORM.WithContext(ctx).Save(clinic).Error
}

// Delete removes a clinic and its dependent rows.
func (r *ClinicRepository) Delete(ctx context.Context, tenantID uuid.UUID, id uint) error {
	return r.db.GORM.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.ClinicSeniorityRule{}, "tenant_id = ? AND clinic_id = ?", tenantID, id).Error; err != nil {
			return fmt.Errorf("failed to delete clinic rules: %w", err)
		}
		if err := tx.Delete(&model.ClinicForbiddenStaff{}, "tenant_id = ? AND clinic_id = ?", tenantID, id).Error; err != nil {
			return fmt.Errorf("failed to delete clinic forbidden staff: %w", err)
		}
		result := tx.Delete(&model.Clinic{}, "tenant_id = ? AND id = ?", tenantID, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete clinic: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrClinicNotFound
		}
		return nil
	})
}
