package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"p9e.in/fieldops/config"
	"p9e.in/fieldops/middleware"
	"p9e.in/fieldops/models"
	"p9e.in/fieldops/pkg/workflow"
	"p9e.in/fieldops/utils"
)

const serviceReportFormCode = "service_report"

type startWizardRequest struct {
	Mode     string `json:"mode"` // new, resume, clone
	ReportID string `json:"report_id,omitempty"`
}

// StartWizard opens a wizard session. The technician's department must
// have the service-report form enabled; otherwise the wizard is refused
// up front rather than failing per-field later.
func StartWizard(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if !user.CanAuthorReports() {
		http.Error(w, "role cannot author reports", http.StatusForbidden)
		return
	}

	if err := departmentFormEnabled(&user); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	var req startWizardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	technicianID, err := uuid.Parse(middleware.GetUserID(r))
	if err != nil {
		http.Error(w, "invalid user id in token", http.StatusUnauthorized)
		return
	}

	var sess *workflow.Session
	switch req.Mode {
	case "", "new":
		sess = Wizard().StartNew(technicianID)
	case "resume":
		report, err := fetchReportByID(r, req.ReportID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		// existence is masked for reports the user cannot touch,
		// matching the report detail endpoint
		if !ownsReport(&user, technicianID.String(), report) {
			http.Error(w, "record not found", http.StatusNotFound)
			return
		}
		sess, err = Wizard().Resume(technicianID, report)
		if err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
	case "clone":
		report, err := fetchReportByID(r, req.ReportID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		if !ownsReport(&user, technicianID.String(), report) {
			http.Error(w, "record not found", http.StatusNotFound)
			return
		}
		sess = Wizard().Clone(technicianID, report)
	default:
		http.Error(w, "mode must be new, resume or clone", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sess.State())
}

// GetWizardState returns the current wizard snapshot.
func GetWizardState(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sess.State())
}

type updateFieldsRequest struct {
	Fields map[string]interface{} `json:"fields"`
}

// UpdateWizardFields merges a partial field update into the session.
func UpdateWizardFields(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	var req updateFieldsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	sess.UpdateFields(req.Fields)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sess.State())
}

// WizardNext validates the active step and advances on success.
func WizardNext(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	errs := sess.Next()
	w.Header().Set("Content-Type", "application/json")
	if len(errs) > 0 {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]interface{}{"errors": errs})
		return
	}
	json.NewEncoder(w).Encode(sess.State())
}

// WizardPrevious steps back without re-validating.
func WizardPrevious(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}
	sess.Previous()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sess.State())
}

type deviceLocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// SetWizardLocation records the device GPS fix for the session.
func SetWizardLocation(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	var req deviceLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := utils.ValidateCoordinate(req.Latitude, req.Longitude); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sess.SetDeviceLocation(req.Latitude, req.Longitude)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sess.State())
}

type selectRfpRequest struct {
	RfpNo string `json:"rfp_no"`
}

// SelectWizardRfp auto-fills the location block from the catalog entry
// for the chosen RFP number.
func SelectWizardRfp(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	var req selectRfpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	var detail models.LocationDetail
	if err := config.DB.Where("rfp_no = ? AND is_active = ?", req.RfpNo, true).First(&detail).Error; err != nil {
		http.Error(w, "rfp number not found", http.StatusNotFound)
		return
	}

	sess.ApplyLocationDetail(&detail)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sess.State())
}

type checklistItemRequest struct {
	Section string `json:"section"`
	Item    string `json:"item"`
	Status  string `json:"status"`
	Remark  string `json:"remark,omitempty"`
	Value   string `json:"value,omitempty"`
}

// SetWizardChecklistItem updates one checklist item. The complete nested
// structures are written back, matching the accumulator's shallow-merge
// contract.
func SetWizardChecklistItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	var req checklistItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	schema := models.DefaultChecklistSchema()
	data, remarks := currentChecklist(sess, schema)

	if err := models.SetChecklistStatus(data, remarks, req.Section, req.Item, req.Status); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Status == models.ChecklistIssue && req.Remark != "" {
		remarks[models.RemarkKey(req.Section, req.Item)] = req.Remark
	}
	if req.Value != "" {
		remarks[models.ValueKey(req.Section, req.Item)] = req.Value
	}

	sess.UpdateFields(map[string]interface{}{
		workflow.FieldChecklistData:    data,
		workflow.FieldEquipmentRemarks: remarks,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sess.State())
}

// SaveWizardDraft persists current progress with draft status.
func SaveWizardDraft(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	report, err := sess.SaveDraft(r.Context())
	if err != nil {
		http.Error(w, "failed to save draft: "+err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

// SubmitWizard validates every step and persists the submitted report.
// The response carries a location-mismatch warning when the device fix
// sits far from the catalog coordinates.
func SubmitWizard(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	report, err := sess.Submit(r.Context())
	if err != nil {
		var verr *workflow.ValidationError
		if errors.As(err, &verr) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(verr)
			return
		}
		http.Error(w, "failed to submit report: "+err.Error(), http.StatusBadGateway)
		return
	}

	resp := map[string]interface{}{"report": report}
	if report.Latitude != nil && report.Longitude != nil &&
		report.LocationLatitude != nil && report.LocationLongitude != nil {
		if dist, far := utils.LocationMismatch(*report.Latitude, *report.Longitude,
			*report.LocationLatitude, *report.LocationLongitude); far {
			resp["warning"] = "device location is far from the recorded site"
			resp["distance_meters"] = dist
		}
	}

	Wizard().Close(sess.ID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// CloseWizard abandons the session; in-flight uploads are discarded.
func CloseWizard(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}
	Wizard().Close(sess.ID)
	w.WriteHeader(http.StatusNoContent)
}

func sessionFromRequest(w http.ResponseWriter, r *http.Request) (*workflow.Session, bool) {
	id, err := uuid.Parse(mux.Vars(r)["sessionId"])
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return nil, false
	}
	sess, ok := Wizard().Get(id)
	if !ok {
		http.Error(w, "wizard session not found or expired", http.StatusNotFound)
		return nil, false
	}
	return sess, true
}

func fetchReportByID(r *http.Request, rawID string) (*models.ServiceReport, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, errors.New("invalid report id")
	}
	return Reports().Get(r.Context(), id)
}

// departmentFormEnabled is the wizard access gate: the user's department
// needs an enabled entry for the service-report form.
func departmentFormEnabled(user *models.User) error {
	if user.DepartmentID == nil {
		return errors.New("user has no department assigned")
	}

	var form models.Form
	if err := config.DB.Where("code = ? AND is_active = ?", serviceReportFormCode, true).First(&form).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("service report form is not configured")
		}
		return err
	}

	var link models.DepartmentForm
	err := config.DB.Where("department_id = ? AND form_id = ? AND is_enabled = ?",
		*user.DepartmentID, form.ID, true).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("service report form is not enabled for this department")
		}
		return err
	}
	return nil
}

func currentChecklist(sess *workflow.Session, schema models.ChecklistSchema) (models.ChecklistData, models.RemarkMap) {
	fields := sess.Accumulator().Snapshot()

	data := models.NewChecklistData(schema, nil)
	if raw, ok := fields[workflow.FieldChecklistData]; ok {
		if report, err := workflow.ReportFromFields(map[string]interface{}{workflow.FieldChecklistData: raw}); err == nil {
			data = models.NewChecklistData(schema, report.ChecklistData)
		}
	}

	remarks := models.RemarkMap{}
	if raw, ok := fields[workflow.FieldEquipmentRemarks]; ok {
		if report, err := workflow.ReportFromFields(map[string]interface{}{workflow.FieldEquipmentRemarks: raw}); err == nil && report.EquipmentRemarks != nil {
			remarks = report.EquipmentRemarks
		}
	}

	return data, remarks
}
