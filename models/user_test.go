package models

import "testing"

func TestRolePermissions(t *testing.T) {
	tests := []struct {
		role       string
		canApprove bool
		canAuthor  bool
	}{
		{RoleAdmin, true, true},
		{RoleManager, false, false},
		{RoleTeamLeader, true, true},
		{RoleTechnician, false, true},
		{RoleTechnicalExecutive, false, true},
		{"unknown", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			u := &User{Role: tt.role}
			if got := u.CanApprove(); got != tt.canApprove {
				t.Errorf("CanApprove = %v, expected %v", got, tt.canApprove)
			}
			if got := u.CanAuthorReports(); got != tt.canAuthor {
				t.Errorf("CanAuthorReports = %v, expected %v", got, tt.canAuthor)
			}
		})
	}
}

func TestIsDraftIdentifier(t *testing.T) {
	tests := []struct {
		in       string
		expected bool
	}{
		{"DRAFT-u1-1700000000000", true},
		{"COMP-1700000000000", false},
		{"", false},
		{"draft-u1-1", false}, // prefixes are case-sensitive
	}
	for _, tt := range tests {
		if got := IsDraftIdentifier(tt.in); got != tt.expected {
			t.Errorf("IsDraftIdentifier(%q) = %v, expected %v", tt.in, got, tt.expected)
		}
	}
}
