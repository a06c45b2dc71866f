package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog records one write against an audited table. Entries are
// appended best-effort: a failed audit write never fails the operation
// that produced it.
type AuditLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Action    string    `gorm:"size:50;not null;index" json:"action"` // create, update, submit, approve, reject
	ActorID   string    `gorm:"size:255;not null;index" json:"actor_id"`
	ActorName string    `gorm:"size:255" json:"actor_name,omitempty"`
	Table     string    `gorm:"column:table_name;size:100;not null;index" json:"table_name"`
	RecordID  string    `gorm:"size:255;not null;index" json:"record_id"`

	// After-image of the record at the time of the action
	NewData datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"new_data,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}

// BeforeCreate hook for AuditLog
func (a *AuditLog) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}
