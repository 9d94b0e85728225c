package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Duty categories. Mesa duties run on working days within the clinic plan;
// nobet duties run every day within the night-duty plan.
const (
	DutyCategoryMesa  = "mesa"
	DutyCategoryNobet = "nobet"
)

// CapDutyName marks the single-specialist on-call rotation within the nobet
// category. It is scheduled round-robin, never by the solver.
const CapDutyName = "cap"

// DutyType is a standalone time-boxed assignment not tied to a clinic.
type DutyType struct {
	ID                 uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID           uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Name               string    `gorm:"type:varchar(255);not null" json:"name"`
	DurationHours      int       `gorm:"not null;default:8" json:"duration_hours"`
	DutyCategory       string    `gorm:"type:varchar(20);not null;default:'nobet'" json:"duty_category"`
	RequiredStaffCount int       `gorm:"not null;default:1" json:"required_staff_count"`
	CreatedAt          time.Time `gorm:"default:now()" json:"created_at"`
	UpdatedAt          time.Time `gorm:"default:now()" json:"updated_at"`
}

func (DutyType) TableName() string {
	return "duty_types"
}

// IsCap reports whether this duty is the on-call specialist rotation.
func (d *DutyType) IsCap() bool {
	return strings.ToLower(strings.TrimSpace(d.DutyCategory)) == DutyCategoryNobet &&
		strings.ToLower(strings.TrimSpace(d.Name)) == CapDutyName
}
