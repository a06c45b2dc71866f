package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"p9e.in/fieldops/config"
	"p9e.in/fieldops/middleware"
	"p9e.in/fieldops/models"
)

// ListServiceReports returns a filtered, paginated report listing.
// Technicians only see their own reports; approvers and managers see
// everything submitted.
func ListServiceReports(w http.ResponseWriter, r *http.Request) {
	params, err := models.ParseReportParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := params.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user := middleware.GetUser(r)
	if user.Role == models.RoleTechnician || user.Role == models.RoleTechnicalExecutive {
		params.Filters["technician_id"] = middleware.GetUserID(r)
	}

	var total int64
	if err := params.ApplyFilters(config.DB.Model(&models.ServiceReport{})).Count(&total).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var reports []models.ServiceReport
	if err := params.Apply(config.DB.Model(&models.ServiceReport{})).Find(&reports).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := models.ReportListResponse{
		Data:     make([]models.ServiceReportDTO, 0, len(reports)),
		Page:     params.Page,
		PageSize: params.PageSize,
		Total:    total,
	}
	for i := range reports {
		resp.Data = append(resp.Data, reports[i].ToDTO())
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// GetServiceReport returns one full report record.
func GetServiceReport(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid report id", http.StatusBadRequest)
		return
	}

	report, err := Reports().Get(r.Context(), id)
	if err != nil {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}

	user := middleware.GetUser(r)
	if !ownsReport(&user, middleware.GetUserID(r), report) {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

// ownsReport reports whether a user may operate on a record. Technician
// roles are scoped to their own reports; approver and manager roles see
// everything.
func ownsReport(user *models.User, userID string, report *models.ServiceReport) bool {
	if user.Role == models.RoleTechnician || user.Role == models.RoleTechnicalExecutive {
		return report.TechnicianID != nil && report.TechnicianID.String() == userID
	}
	return true
}

// GetReportStats returns report counts grouped by status and approval
// outcome for dashboard tiles.
func GetReportStats(w http.ResponseWriter, r *http.Request) {
	type statusCount struct {
		Status string
		Count  int64
	}

	var byStatus []statusCount
	if err := config.DB.Model(&models.ServiceReport{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&byStatus).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var byApproval []statusCount
	if err := config.DB.Model(&models.ServiceReport{}).
		Select("approval_status as status, count(*) as count").
		Where("status = ?", models.StatusSubmitted).
		Group("approval_status").
		Find(&byApproval).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	stats := map[string]map[string]int64{
		"status":   {},
		"approval": {},
	}
	for _, s := range byStatus {
		stats["status"][s.Status] = s.Count
	}
	for _, s := range byApproval {
		stats["approval"][s.Status] = s.Count
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
