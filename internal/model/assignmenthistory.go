package model

import (
	"time"

	"github.com/google/uuid"
)

// Day types stored on history rows.
const (
	DayTypeWeekday = "weekday"
	DayTypeWeekend = "weekend"
)

// AssignmentHistory is one persisted assignment of an approved plan.
// ClinicID is set for clinic-plan rows and NULL for night-plan rows; the two
// populations are orthogonal and replaced independently per period.
type AssignmentHistory struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID       uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	StaffID        uint      `gorm:"not null;index" json:"staff_id"`
	ClinicID       *uint     `gorm:"index" json:"clinic_id,omitempty"`
	AssignmentDate time.Time `gorm:"type:date;not null" json:"assignment_date"`
	PlanPeriod     string    `gorm:"type:varchar(7);not null;index" json:"plan_period"`
	DayType        string    `gorm:"type:varchar(10);not null;default:'weekday'" json:"day_type"`
	CreatedAt      time.Time `gorm:"default:now()" json:"created_at"`
}

func (AssignmentHistory) TableName() string {
	return "assignment_history"
}
