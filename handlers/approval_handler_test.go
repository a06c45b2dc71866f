package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"p9e.in/fieldops/middleware"
	"p9e.in/fieldops/models"
)

func TestApprovalRequestValidate(t *testing.T) {
	tests := []struct {
		name       string
		req        approvalRequest
		wantStatus int // 0 means valid
	}{
		{
			name:       "approve",
			req:        approvalRequest{ApprovalStatus: models.ApprovalApprove, TlName: "R. Deshmukh"},
			wantStatus: 0,
		},
		{
			name: "reject with remarks",
			req: approvalRequest{
				ApprovalStatus:   models.ApprovalReject,
				RejectionRemarks: "after photo does not show the repaired junction box",
			},
			wantStatus: 0,
		},
		{
			name:       "reject without remarks",
			req:        approvalRequest{ApprovalStatus: models.ApprovalReject},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "reject with whitespace remarks",
			req:        approvalRequest{ApprovalStatus: models.ApprovalReject, RejectionRemarks: "   "},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "unknown decision",
			req:        approvalRequest{ApprovalStatus: "maybe"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "pending is not a decision",
			req:        approvalRequest{ApprovalStatus: models.ApprovalPending},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bad team leader mobile",
			req:        approvalRequest{ApprovalStatus: models.ApprovalApprove, TlMobile: "12345"},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "valid team leader mobile",
			req:        approvalRequest{ApprovalStatus: models.ApprovalApprove, TlMobile: "9876543210"},
			wantStatus: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := tt.req.validate()
			if status != tt.wantStatus {
				t.Errorf("validate() = (%d, %q), expected status %d", status, msg, tt.wantStatus)
			}
			if tt.wantStatus == 0 && msg != "" {
				t.Errorf("valid request produced message %q", msg)
			}
		})
	}
}

func TestDecideServiceReport_RejectsMalformedUserClaim(t *testing.T) {
	body, _ := json.Marshal(approvalRequest{
		ApprovalStatus: models.ApprovalApprove,
		TlName:         "R. Deshmukh",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/service-reports/x/decision", bytes.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"id": uuid.New().String()})
	req = req.WithContext(middleware.WithClaims(req.Context(), &middleware.Claims{
		UserID: "not-a-uuid",
		Name:   "R. Deshmukh",
		Role:   models.RoleTeamLeader,
	}))

	rec := httptest.NewRecorder()
	DecideServiceReport(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected %d for malformed user claim, got %d: %s",
			http.StatusUnauthorized, rec.Code, rec.Body.String())
	}
}
