package config

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
	"p9e.in/fieldops/models"
)

func Migrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "20250110_create_core_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.User{}, &models.Department{}, &models.Project{},
					&models.Form{}, &models.DepartmentForm{}, &models.LocationDetail{})
			},
		},
		{
			ID: "20250112_create_service_reports",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.ServiceReport{})
			},
		},
		{
			ID: "20250112_create_audit_logs",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.AuditLog{})
			},
		},
		{
			ID: "20250220_index_reports_by_technician_status",
			Migrate: func(tx *gorm.DB) error {
				return tx.Exec("CREATE INDEX IF NOT EXISTS idx_service_reports_tech_status ON service_reports (technician_id, status)").Error
			},
		},
	})

	return m.Migrate()
}
