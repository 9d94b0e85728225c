package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Staff is a schedulable person. IDs are integer sequences because slot
// identifiers embed them ("staff_<N>").
type Staff struct {
	ID               uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Name             string         `gorm:"type:varchar(255);not null" json:"name"`
	Title            string         `gorm:"type:varchar(100)" json:"title"`
	Seniority        string         `gorm:"type:varchar(20);not null;default:'ara'" json:"seniority"`
	AllowedDutyTypes datatypes.JSON `gorm:"type:jsonb" json:"allowed_duty_types,omitempty"`
	MinNightDuties   *int           `json:"min_night_duties,omitempty"`
	MaxNightDuties   *int           `json:"max_night_duties,omitempty"`
	EducationYear    *int           `json:"education_year,omitempty"`
	NightDutyExempt  bool           `gorm:"default:false" json:"night_duty_exempt"`
	IsActive         bool           `gorm:"default:true" json:"is_active"`
	CreatedAt        time.Time      `gorm:"default:now()" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"default:now()" json:"updated_at"`
}

func (Staff) TableName() string {
	return "staff"
}
