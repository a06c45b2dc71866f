package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/datatypes"

	"p9e.in/fieldops/config"
	"p9e.in/fieldops/middleware"
	"p9e.in/fieldops/models"
	"p9e.in/fieldops/pkg/workflow"
)

type approvalRequest struct {
	ApprovalStatus   string `json:"approval_status"` // approve or reject
	RejectionRemarks string `json:"rejection_remarks,omitempty"`
	ApprovalNotes    string `json:"approval_notes,omitempty"`
	TlName           string `json:"tl_name"`
	TlMobile         string `json:"tl_mobile"`
	TlSignature      string `json:"tl_signature,omitempty"`
}

// validate checks the decision payload; a rejection without remarks is
// refused so the technician always learns why.
func (req *approvalRequest) validate() (int, string) {
	if req.ApprovalStatus != models.ApprovalApprove && req.ApprovalStatus != models.ApprovalReject {
		return http.StatusBadRequest, "approval_status must be approve or reject"
	}
	if req.ApprovalStatus == models.ApprovalReject && strings.TrimSpace(req.RejectionRemarks) == "" {
		return http.StatusUnprocessableEntity, "rejection_remarks is required when rejecting"
	}
	if req.TlMobile != "" && !workflow.IsTenDigitPhone(req.TlMobile) {
		return http.StatusUnprocessableEntity, "tl_mobile must contain exactly 10 digits"
	}
	return 0, ""
}

// DecideServiceReport is the approval gate. A team leader approves or
// rejects a submitted report, writing only the approval block; the
// technician-authored fields are never touched here.
func DecideServiceReport(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if !user.CanApprove() {
		http.Error(w, "only team leaders may decide reports", http.StatusForbidden)
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid report id", http.StatusBadRequest)
		return
	}

	var req approvalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	if status, msg := req.validate(); msg != "" {
		http.Error(w, msg, status)
		return
	}

	teamLeaderID, err := uuid.Parse(middleware.GetUserID(r))
	if err != nil {
		http.Error(w, "invalid user id in token", http.StatusUnauthorized)
		return
	}

	report, err := Reports().Get(r.Context(), id)
	if err != nil {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}
	if report.Status != models.StatusSubmitted {
		http.Error(w, "only submitted reports can be decided", http.StatusConflict)
		return
	}

	updates := map[string]interface{}{
		"approval_status":   req.ApprovalStatus,
		"rejection_remarks": req.RejectionRemarks,
		"approval_notes":    req.ApprovalNotes,
		"tl_name":           req.TlName,
		"tl_mobile":         req.TlMobile,
		"tl_signature":      req.TlSignature,
		"team_leader_id":    teamLeaderID,
	}
	if req.ApprovalStatus == models.ApprovalApprove {
		updates["rejection_remarks"] = ""
	}

	if err := config.DB.Model(&models.ServiceReport{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		http.Error(w, "failed to save decision: "+err.Error(), http.StatusBadGateway)
		return
	}

	decided, err := Reports().Get(r.Context(), id)
	if err != nil {
		http.Error(w, "record not found after update", http.StatusInternalServerError)
		return
	}

	appendApprovalAudit(req.ApprovalStatus, middleware.GetUserID(r), user.Name, decided)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(decided)
}

// appendApprovalAudit records the decision best-effort; a failed audit
// write never fails the decision itself.
func appendApprovalAudit(action, actorID, actorName string, report *models.ServiceReport) {
	after, err := json.Marshal(report)
	if err != nil {
		after = []byte("{}")
	}

	entry := &models.AuditLog{
		Action:    action,
		ActorID:   actorID,
		ActorName: actorName,
		Table:     models.ServiceReport{}.TableName(),
		RecordID:  report.ID.String(),
		NewData:   datatypes.JSON(after),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := Reports().Append(ctx, entry); err != nil {
			config.Logger().WithError(err).WithField("record_id", entry.RecordID).Warn("approval audit append failed")
		}
	}()
}
