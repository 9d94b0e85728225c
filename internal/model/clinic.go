package model

import (
	"time"

	"github.com/google/uuid"
)

// Rotation period values accepted on Clinic.RotationPeriod.
const (
	RotationDaily    = "daily"
	RotationWeekly   = "weekly"
	RotationBiweekly = "biweekly"
	RotationMonthly  = "monthly"
)

// Clinic is a medical sub-unit staffed with residents on working days.
type Clinic struct {
	ID                 uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID           uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Name               string    `gorm:"type:varchar(255);not null" json:"name"`
	RequiredAssistants int       `gorm:"not null;default:1" json:"required_assistants"`
	RotationPeriod     string    `gorm:"type:varchar(20);not null;default:'daily'" json:"rotation_period"`
	ResponsibleStaffID *uint     `json:"responsible_staff_id,omitempty"`
	DisplayOrder       int       `gorm:"default:0" json:"display_order"`
	CreatedAt          time.Time `gorm:"default:now()" json:"created_at"`
	UpdatedAt          time.Time `gorm:"default:now()" json:"updated_at"`

	// Relations
	ResponsibleStaff *Staff                 `gorm:"foreignKey:ResponsibleStaffID" json:"responsible_staff,omitempty"`
	SeniorityRules   []ClinicSeniorityRule  `gorm:"foreignKey:ClinicID" json:"seniority_rules,omitempty"`
	ForbiddenStaff   []ClinicForbiddenStaff `gorm:"foreignKey:ClinicID" json:"forbidden_staff,omitempty"`
}

func (Clinic) TableName() string {
	return "clinics"
}

// ClinicSeniorityRule requires a number of occupants of one seniority per
// rotation block of a clinic.
type ClinicSeniorityRule struct {
	ID                uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID          uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ClinicID          uint      `gorm:"not null;index" json:"clinic_id"`
	RequiredSeniority string    `gorm:"type:varchar(20);not null" json:"required_seniority"`
	RequiredCount     int       `gorm:"not null;default:0" json:"required_count"`
	CreatedAt         time.Time `gorm:"default:now()" json:"created_at"`
	UpdatedAt         time.Time `gorm:"default:now()" json:"updated_at"`
}

func (ClinicSeniorityRule) TableName() string {
	return "clinic_seniority_rules"
}

// ClinicForbiddenStaff excludes a person from a clinic's slots entirely.
type ClinicForbiddenStaff struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ClinicID  uint      `gorm:"not null;index" json:"clinic_id"`
	StaffID   uint      `gorm:"not null;index" json:"staff_id"`
	CreatedAt time.Time `gorm:"default:now()" json:"created_at"`
}

func (ClinicForbiddenStaff) TableName() string {
	return "clinic_forbidden_staff"
}
