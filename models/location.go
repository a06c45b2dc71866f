package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LocationDetail is one entry of the physical location catalog. Selecting
// an RFP number in the wizard auto-fills the location block of the report
// from this record. Catalog coordinates are authoritative and distinct
// from the device-captured fix.
type LocationDetail struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RfpNo    string    `gorm:"size:100;uniqueIndex;not null" json:"rfp_no"`
	Location string    `gorm:"size:255;not null" json:"location"`
	Zone     string    `gorm:"size:100" json:"zone,omitempty"`
	WardNo   string    `gorm:"size:50" json:"ward_no,omitempty"`
	PsLimits string    `gorm:"size:100" json:"ps_limits,omitempty"`
	PoleID   string    `gorm:"size:100" json:"pole_id,omitempty"`
	JbSlNo   string    `gorm:"size:100" json:"jb_sl_no,omitempty"`

	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for LocationDetail
func (LocationDetail) TableName() string {
	return "location_details"
}

// BeforeCreate hook for LocationDetail
func (l *LocationDetail) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return
}
