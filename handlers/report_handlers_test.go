package handlers

import (
	"testing"

	"github.com/google/uuid"

	"p9e.in/fieldops/models"
)

func TestOwnsReport(t *testing.T) {
	ownerID := uuid.New()
	otherID := uuid.New()

	tests := []struct {
		name     string
		role     string
		userID   string
		techID   *uuid.UUID
		expected bool
	}{
		{"technician owns own report", models.RoleTechnician, ownerID.String(), &ownerID, true},
		{"technician blocked from another's report", models.RoleTechnician, otherID.String(), &ownerID, false},
		{"technician blocked from unowned report", models.RoleTechnician, ownerID.String(), nil, false},
		{"technical executive owns own report", models.RoleTechnicalExecutive, ownerID.String(), &ownerID, true},
		{"technical executive blocked from another's report", models.RoleTechnicalExecutive, otherID.String(), &ownerID, false},
		{"team leader sees any report", models.RoleTeamLeader, otherID.String(), &ownerID, true},
		{"manager sees any report", models.RoleManager, otherID.String(), &ownerID, true},
		{"admin sees any report", models.RoleAdmin, otherID.String(), &ownerID, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &models.User{Role: tt.role}
			report := &models.ServiceReport{TechnicianID: tt.techID}
			if got := ownsReport(user, tt.userID, report); got != tt.expected {
				t.Errorf("ownsReport(%s) = %v, expected %v", tt.role, got, tt.expected)
			}
		})
	}
}
