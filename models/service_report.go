package models

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Report lifecycle status. Terminal outcomes live in ApprovalStatus.
const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
)

// Approval decision values set by the team leader.
const (
	ApprovalPending = "pending"
	ApprovalApprove = "approve"
	ApprovalReject  = "reject"
)

// Complaint number prefixes. A draft keeps its DRAFT- identifier across
// repeated saves; submission always mints a fresh COMP- identifier.
const (
	ComplaintPrefix = "COMP-"
	DraftPrefix     = "DRAFT-"
)

// MaxRawPowerSupplyImages caps the multi-image field.
const MaxRawPowerSupplyImages = 10

// ServiceReport is one field-service complaint report. It accumulates
// across the wizard steps and is later decided by a team leader.
type ServiceReport struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ComplaintNo string    `gorm:"size:100;uniqueIndex;not null" json:"complaint_no"`

	// Classification
	ComplaintType string `gorm:"size:100" json:"complaint_type,omitempty"`
	SystemType    string `gorm:"size:100" json:"system_type,omitempty"`
	ProjectPhase  string `gorm:"size:100" json:"project_phase,omitempty"`
	Zone          string `gorm:"size:100" json:"zone,omitempty"`
	Date          string `gorm:"size:20" json:"date,omitempty"`

	// Location. LocationLatitude/Longitude come from the RFP catalog and
	// are read-only once filled; Latitude/Longitude are the device fix.
	RfpNo             string   `gorm:"size:100;index" json:"rfp_no,omitempty"`
	Location          string   `gorm:"size:255" json:"location,omitempty"`
	WardNo            string   `gorm:"size:50" json:"ward_no,omitempty"`
	PsLimits          string   `gorm:"size:100" json:"ps_limits,omitempty"`
	PoleID            string   `gorm:"size:100" json:"pole_id,omitempty"`
	JbSlNo            string   `gorm:"size:100" json:"jb_sl_no,omitempty"`
	LocationLatitude  *float64 `json:"location_latitude,omitempty"`
	LocationLongitude *float64 `json:"location_longitude,omitempty"`
	Latitude          *float64 `json:"latitude,omitempty"`
	Longitude         *float64 `json:"longitude,omitempty"`

	// Media
	BeforeImageURL       string      `gorm:"size:1024" json:"before_image_url,omitempty"`
	AfterImageURL        string      `gorm:"size:1024" json:"after_image_url,omitempty"`
	UpsInputImageURL     string      `gorm:"size:1024" json:"ups_input_image_url,omitempty"`
	UpsOutputImageURL    string      `gorm:"size:1024" json:"ups_output_image_url,omitempty"`
	ThermistorImageURL   string      `gorm:"size:1024" json:"thermistor_image_url,omitempty"`
	RawPowerSupplyImages StringList  `gorm:"type:jsonb;default:'[]'" json:"raw_power_supply_images"`

	// Equipment checklist
	ChecklistData    ChecklistData `gorm:"type:jsonb;default:'{}'" json:"checklist_data"`
	EquipmentRemarks RemarkMap     `gorm:"type:jsonb;default:'{}'" json:"equipment_remarks"`
	JbTemperature    *float64      `json:"jb_temperature,omitempty"`

	// Content
	NatureOfComplaint string `gorm:"type:text" json:"nature_of_complaint,omitempty"`
	FieldTeamRemarks  string `gorm:"type:text" json:"field_team_remarks,omitempty"`
	CustomerFeedback  string `gorm:"type:text" json:"customer_feedback,omitempty"`

	// Technician signature block
	TechEngineer  string `gorm:"size:255" json:"tech_engineer,omitempty"`
	TechMobile    string `gorm:"size:20" json:"tech_mobile,omitempty"`
	TechSignature string `gorm:"type:text" json:"tech_signature,omitempty"`

	// Approval block, owned by the approval workflow
	TlName           string `gorm:"size:255" json:"tl_name,omitempty"`
	TlMobile         string `gorm:"size:20" json:"tl_mobile,omitempty"`
	TlSignature      string `gorm:"type:text" json:"tl_signature,omitempty"`
	ApprovalStatus   string `gorm:"size:20;default:'pending';index" json:"approval_status"`
	RejectionRemarks string `gorm:"type:text" json:"rejection_remarks,omitempty"`
	ApprovalNotes    string `gorm:"type:text" json:"approval_notes,omitempty"`

	// Lifecycle
	Status       string     `gorm:"size:20;not null;default:'draft';index" json:"status"`
	TechnicianID *uuid.UUID `gorm:"type:uuid;index" json:"technician_id,omitempty"`
	TeamLeaderID *uuid.UUID `gorm:"type:uuid;index" json:"team_leader_id,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for ServiceReport
func (ServiceReport) TableName() string {
	return "service_reports"
}

// BeforeCreate hook for ServiceReport
func (r *ServiceReport) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}

// IsDraftIdentifier reports whether a complaint number is draft-shaped.
func IsDraftIdentifier(complaintNo string) bool {
	return strings.HasPrefix(complaintNo, DraftPrefix)
}

// StringList is a JSONB-backed ordered list of URL strings.
type StringList []string

// Scan implements the sql.Scanner interface for StringList
func (s *StringList) Scan(value interface{}) error {
	if value == nil {
		*s = []string{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		*s = []string{}
		return nil
	}

	return json.Unmarshal(bytes, s)
}

// Value implements the driver.Valuer interface for StringList
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal(s)
}

// GormDataType defines the data type for GORM
func (StringList) GormDataType() string {
	return "jsonb"
}

// RemarkMap stores free-text remarks keyed by "<section>-<item>" (issue
// explanations) or "<section>-<item>-value" (measured values).
type RemarkMap map[string]string

// Scan implements the sql.Scanner interface for RemarkMap
func (m *RemarkMap) Scan(value interface{}) error {
	if value == nil {
		*m = make(RemarkMap)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		*m = make(RemarkMap)
		return nil
	}

	return json.Unmarshal(bytes, m)
}

// Value implements the driver.Valuer interface for RemarkMap
func (m RemarkMap) Value() (driver.Value, error) {
	if m == nil {
		return json.Marshal(make(map[string]string))
	}
	return json.Marshal(m)
}

// GormDataType defines the data type for GORM
func (RemarkMap) GormDataType() string {
	return "jsonb"
}

// ServiceReportDTO is the list/detail response shape for report screens.
type ServiceReportDTO struct {
	ID             uuid.UUID `json:"id"`
	ComplaintNo    string    `json:"complaint_no"`
	ComplaintType  string    `json:"complaint_type,omitempty"`
	SystemType     string    `json:"system_type,omitempty"`
	Zone           string    `json:"zone,omitempty"`
	Location       string    `json:"location,omitempty"`
	Status         string    `json:"status"`
	ApprovalStatus string    `json:"approval_status"`
	TechEngineer   string    `json:"tech_engineer,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ToDTO converts a ServiceReport to its list representation
func (r *ServiceReport) ToDTO() ServiceReportDTO {
	return ServiceReportDTO{
		ID:             r.ID,
		ComplaintNo:    r.ComplaintNo,
		ComplaintType:  r.ComplaintType,
		SystemType:     r.SystemType,
		Zone:           r.Zone,
		Location:       r.Location,
		Status:         r.Status,
		ApprovalStatus: r.ApprovalStatus,
		TechEngineer:   r.TechEngineer,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}
