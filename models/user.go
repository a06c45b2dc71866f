// models/user.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Application roles. Technicians and technical executives author reports,
// team leaders approve them, managers and admins read everything.
const (
	RoleAdmin              = "admin"
	RoleManager            = "manager"
	RoleTeamLeader         = "team_leader"
	RoleTechnician         = "technician"
	RoleTechnicalExecutive = "technical_executive"
)

type User struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string      `gorm:"size:100;not null" json:"name"`
	Email        string      `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Phone        string      `gorm:"size:15;uniqueIndex;not null" json:"phone"`
	PasswordHash string      `gorm:"size:255;not null" json:"-"`
	Role         string      `gorm:"size:50;not null;default:'technician';index" json:"role"`
	DepartmentID *uuid.UUID  `gorm:"type:uuid;index" json:"department_id,omitempty"`
	Department   *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	IsActive     bool        `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return
}

// CanApprove reports whether the user may decide submitted reports.
func (u *User) CanApprove() bool {
	return u.Role == RoleTeamLeader || u.Role == RoleAdmin
}

// CanAuthorReports reports whether the user may create service reports.
func (u *User) CanAuthorReports() bool {
	switch u.Role {
	case RoleTechnician, RoleTechnicalExecutive, RoleTeamLeader, RoleAdmin:
		return true
	}
	return false
}
