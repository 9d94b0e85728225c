package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Plan types.
const (
	PlanTypeClinic = "clinic"
	PlanTypeNobet  = "nobet"
)

// PlanRecord is the JSON snapshot of an approved plan, one per
// (tenant, period, plan type). History rows carry the fairness inputs for
// later months; the snapshot preserves what the user actually approved.
type PlanRecord struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TenantID   uuid.UUID      `gorm:"type:uuid;not null;index:idx_plan_records_scope,unique" json:"tenant_id"`
	PlanPeriod string         `gorm:"type:varchar(7);not null;index:idx_plan_records_scope,unique" json:"plan_period"`
	PlanType   string         `gorm:"type:varchar(10);not null;index:idx_plan_records_scope,unique" json:"plan_type"`
	Payload    datatypes.JSON `gorm:"type:jsonb;not null" json:"payload"`
	ApprovedAt time.Time      `gorm:"not null;default:now()" json:"approved_at"`
	CreatedAt  time.Time      `gorm:"default:now()" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"default:now()" json:"updated_at"`
}

func (PlanRecord) TableName() string {
	return "plan_records"
}
