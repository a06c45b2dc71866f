// Package workflow implements the multi-step service-report wizard:
// step sequencing, the shared field accumulator, per-step validation and
// the draft/submit lifecycle. Persistence and object storage are consumed
// through narrow collaborator interfaces so the engine stays testable.
package workflow

// Canonical field names of the accumulating service-report record. The
// wizard, validation rules and the storage boundary all share these; any
// other key reaching the storage boundary is a hard error.
const (
	FieldComplaintNo   = "complaint_no"
	FieldComplaintType = "complaint_type"
	FieldSystemType    = "system_type"
	FieldProjectPhase  = "project_phase"
	FieldZone          = "zone"
	FieldDate          = "date"

	FieldRfpNo             = "rfp_no"
	FieldLocation          = "location"
	FieldWardNo            = "ward_no"
	FieldPsLimits          = "ps_limits"
	FieldPoleID            = "pole_id"
	FieldJbSlNo            = "jb_sl_no"
	FieldLocationLatitude  = "location_latitude"
	FieldLocationLongitude = "location_longitude"
	FieldLatitude          = "latitude"
	FieldLongitude         = "longitude"

	FieldBeforeImageURL       = "before_image_url"
	FieldAfterImageURL        = "after_image_url"
	FieldUpsInputImageURL     = "ups_input_image_url"
	FieldUpsOutputImageURL    = "ups_output_image_url"
	FieldThermistorImageURL   = "thermistor_image_url"
	FieldRawPowerSupplyImages = "raw_power_supply_images"

	FieldChecklistData    = "checklist_data"
	FieldEquipmentRemarks = "equipment_remarks"
	FieldJbTemperature    = "jb_temperature"

	FieldNatureOfComplaint = "nature_of_complaint"
	FieldFieldTeamRemarks  = "field_team_remarks"
	FieldCustomerFeedback  = "customer_feedback"

	FieldTechEngineer  = "tech_engineer"
	FieldTechMobile    = "tech_mobile"
	FieldTechSignature = "tech_signature"
)

// Step is one wizard page with its required-field contract.
type Step struct {
	ID             int      `json:"id"`
	Name           string   `json:"name"`
	RequiredFields []string `json:"required_fields"`
}

// DefaultSteps is the six-step service-report wizard.
func DefaultSteps() []Step {
	return []Step{
		{
			ID:   1,
			Name: "Complaint Details",
			RequiredFields: []string{
				FieldComplaintNo,
				FieldDate,
				FieldComplaintType,
				FieldSystemType,
				FieldProjectPhase,
			},
		},
		{
			// The device GPS fix is deliberately not required here:
			// a missing fix downgrades to warnings (unwatermarked
			// uploads, mismatch note on submit), never a block.
			ID:   2,
			Name: "Location",
			RequiredFields: []string{
				FieldRfpNo,
				FieldLocation,
				FieldZone,
			},
		},
		{
			ID:   3,
			Name: "Nature of Complaint",
			RequiredFields: []string{
				FieldNatureOfComplaint,
				FieldBeforeImageURL,
			},
		},
		{
			ID:   4,
			Name: "Equipment Checklist",
			RequiredFields: []string{
				FieldChecklistData,
				FieldJbTemperature,
			},
		},
		{
			ID:   5,
			Name: "Resolution",
			RequiredFields: []string{
				FieldAfterImageURL,
				FieldFieldTeamRemarks,
			},
		},
		{
			ID:   6,
			Name: "Signature",
			RequiredFields: []string{
				FieldTechEngineer,
				FieldTechMobile,
				FieldTechSignature,
			},
		},
	}
}

// RequiredFieldSuperset is the union of every step's required fields in
// step order, used when submitting.
func RequiredFieldSuperset(steps []Step) []string {
	seen := make(map[string]bool)
	var all []string
	for _, step := range steps {
		for _, f := range step.RequiredFields {
			if !seen[f] {
				seen[f] = true
				all = append(all, f)
			}
		}
	}
	return all
}
