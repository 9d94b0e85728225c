package model

import (
	"time"

	"github.com/google/uuid"
)

// LeaveRequest is an inclusive leave window for a staff member.
type LeaveRequest struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	StaffID   uint      `gorm:"not null;index" json:"staff_id"`
	StartDate time.Time `gorm:"type:date;not null" json:"start_date"`
	EndDate   time.Time `gorm:"type:date;not null" json:"end_date"`
	Reason    string    `gorm:"type:text" json:"reason,omitempty"`
	CreatedAt time.Time `gorm:"default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:now()" json:"updated_at"`

	// Relations
	Staff *Staff `gorm:"foreignKey:StaffID" json:"staff,omitempty"`
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}
