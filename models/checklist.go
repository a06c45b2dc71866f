package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Checklist item statuses.
const (
	ChecklistOK    = "ok"
	ChecklistIssue = "issue"
	ChecklistNA    = "na"
)

// ChecklistSection is one equipment category with its ordered inspection
// points. Sections with RequiresValue render a measured-value input for
// every item regardless of the selected status.
type ChecklistSection struct {
	Name          string   `json:"name"`
	Items         []string `json:"items"`
	RequiresValue bool     `json:"requires_value,omitempty"`
}

// ChecklistSchema is the versioned section/item taxonomy. The default
// schema ships compiled in; deployments may override it with a JSON
// document of the same shape.
type ChecklistSchema struct {
	Version  string             `json:"version"`
	Sections []ChecklistSection `json:"sections"`
}

// defaultChecklistSchema is the fixed 6-section, 33-item taxonomy used by
// maintenance teams in the field.
var defaultChecklistSchema = ChecklistSchema{
	Version: "1.0",
	Sections: []ChecklistSection{
		{
			Name: "Raw Power Supply",
			Items: []string{
				"Voltage Level (R-N)",
				"Voltage Level (Y-N)",
				"Voltage Level (B-N)",
				"Earthing Status",
				"MCB Condition",
				"Cable Dressing",
			},
		},
		{
			Name:          "UPS System",
			RequiresValue: true,
			Items: []string{
				"Input Voltage",
				"Output Voltage",
				"Battery Charging Status",
				"Indicator Status",
				"Fan Condition",
				"Load Capacity",
			},
		},
		{
			Name:          "Battery",
			RequiresValue: true,
			Items: []string{
				"Terminal Condition",
				"Electrolyte Level",
				"Battery Voltage",
				"Physical Condition",
				"Holder Condition",
			},
		},
		{
			Name: "Junction Box",
			Items: []string{
				"JB Door Lock",
				"JB Earthing",
				"Cable Glands",
				"Water Ingress",
				"Corrosion",
				"Internal Wiring",
			},
		},
		{
			Name: "Camera System",
			Items: []string{
				"Camera Alignment",
				"Lens Condition",
				"IR Status",
				"Bracket Mounting",
				"Video Output",
				"Camera Housing",
			},
		},
		{
			Name: "Network Equipment",
			Items: []string{
				"Switch Status",
				"Port Condition",
				"Fiber Connectivity",
				"Patch Cord Condition",
			},
		},
	},
}

// DefaultChecklistSchema returns the compiled-in taxonomy.
func DefaultChecklistSchema() ChecklistSchema {
	return defaultChecklistSchema
}

// LoadChecklistSchema parses an externally supplied schema document.
func LoadChecklistSchema(raw []byte) (ChecklistSchema, error) {
	var schema ChecklistSchema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return ChecklistSchema{}, fmt.Errorf("invalid checklist schema: %w", err)
	}
	if len(schema.Sections) == 0 {
		return ChecklistSchema{}, fmt.Errorf("checklist schema has no sections")
	}
	for _, s := range schema.Sections {
		if s.Name == "" || len(s.Items) == 0 {
			return ChecklistSchema{}, fmt.Errorf("checklist schema section %q is incomplete", s.Name)
		}
	}
	return schema, nil
}

// ItemCount returns the total number of inspection points in the schema.
func (s ChecklistSchema) ItemCount() int {
	n := 0
	for _, sec := range s.Sections {
		n += len(sec.Items)
	}
	return n
}

// Section looks up a section by name.
func (s ChecklistSchema) Section(name string) (ChecklistSection, bool) {
	for _, sec := range s.Sections {
		if sec.Name == name {
			return sec, true
		}
	}
	return ChecklistSection{}, false
}

// ChecklistData maps section name -> item name -> status.
type ChecklistData map[string]map[string]string

// Scan implements the sql.Scanner interface for ChecklistData
func (c *ChecklistData) Scan(value interface{}) error {
	if value == nil {
		*c = make(ChecklistData)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		*c = make(ChecklistData)
		return nil
	}

	return json.Unmarshal(bytes, c)
}

// Value implements the driver.Valuer interface for ChecklistData
func (c ChecklistData) Value() (driver.Value, error) {
	if c == nil {
		return json.Marshal(make(map[string]map[string]string))
	}
	return json.Marshal(c)
}

// GormDataType defines the data type for GORM
func (ChecklistData) GormDataType() string {
	return "jsonb"
}

// NewChecklistData builds a complete checklist with every item defaulted
// to ok. Existing statuses from prior are carried over when the item still
// exists in the schema.
func NewChecklistData(schema ChecklistSchema, prior ChecklistData) ChecklistData {
	data := make(ChecklistData, len(schema.Sections))
	for _, sec := range schema.Sections {
		items := make(map[string]string, len(sec.Items))
		for _, item := range sec.Items {
			status := ChecklistOK
			if prior != nil {
				if existing, ok := prior[sec.Name][item]; ok && existing != "" {
					status = existing
				}
			}
			items[item] = status
		}
		data[sec.Name] = items
	}
	return data
}

// RemarkKey is the EquipmentRemarks key for an item's issue explanation.
func RemarkKey(section, item string) string {
	return section + "-" + item
}

// ValueKey is the EquipmentRemarks key for an item's measured value.
func ValueKey(section, item string) string {
	return section + "-" + item + "-value"
}

// SetChecklistStatus updates one item's status and prunes the issue remark
// when the item leaves the issue state. Measured values are kept; they are
// independent of status.
func SetChecklistStatus(data ChecklistData, remarks RemarkMap, section, item, status string) error {
	switch status {
	case ChecklistOK, ChecklistIssue, ChecklistNA:
	default:
		return fmt.Errorf("invalid checklist status %q", status)
	}

	items, ok := data[section]
	if !ok {
		return fmt.Errorf("unknown checklist section %q", section)
	}
	if _, ok := items[item]; !ok {
		return fmt.Errorf("unknown checklist item %q in section %q", item, section)
	}

	items[item] = status
	if status != ChecklistIssue && remarks != nil {
		delete(remarks, RemarkKey(section, item))
	}
	return nil
}

// ValidateChecklist checks invariants before submission: issue items need
// a remark, and value-required sections need a measured value per item.
func ValidateChecklist(schema ChecklistSchema, data ChecklistData, remarks RemarkMap) []string {
	var problems []string
	for _, sec := range schema.Sections {
		for _, item := range sec.Items {
			status := data[sec.Name][item]
			if status == ChecklistIssue && remarks[RemarkKey(sec.Name, item)] == "" {
				problems = append(problems, fmt.Sprintf("%s / %s: issue requires a remark", sec.Name, item))
			}
			if sec.RequiresValue && remarks[ValueKey(sec.Name, item)] == "" {
				problems = append(problems, fmt.Sprintf("%s / %s: measured value is required", sec.Name, item))
			}
		}
	}
	return problems
}
