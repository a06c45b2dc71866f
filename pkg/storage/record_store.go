// Package storage provides the record-storage and object-storage
// collaborators consumed by the workflow engine.
package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"p9e.in/fieldops/models"
)

// GormStore persists service reports and audit entries through GORM.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps a database handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Create inserts a new report and returns its assigned ID.
func (s *GormStore) Create(ctx context.Context, report *models.ServiceReport) (uuid.UUID, error) {
	if err := s.db.WithContext(ctx).Create(report).Error; err != nil {
		return uuid.Nil, fmt.Errorf("create service report: %w", err)
	}
	return report.ID, nil
}

// Update saves the full record in place. The creation timestamp is
// never written on update; a record rebuilt by the wizard carries a
// zero CreatedAt and must not clobber the stored one.
func (s *GormStore) Update(ctx context.Context, id uuid.UUID, report *models.ServiceReport) error {
	report.ID = id
	if err := s.db.WithContext(ctx).Omit("created_at").Save(report).Error; err != nil {
		return fmt.Errorf("update service report %s: %w", id, err)
	}
	return nil
}

// Get fetches a report by ID.
func (s *GormStore) Get(ctx context.Context, id uuid.UUID) (*models.ServiceReport, error) {
	var report models.ServiceReport
	if err := s.db.WithContext(ctx).First(&report, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("report not found: %w", err)
	}
	return &report, nil
}

// Query lists reports matching equality filters.
func (s *GormStore) Query(ctx context.Context, filters map[string]interface{}) ([]models.ServiceReport, error) {
	query := s.db.WithContext(ctx).Model(&models.ServiceReport{})
	for col, val := range filters {
		query = query.Where(col+" = ?", val)
	}

	var reports []models.ServiceReport
	if err := query.Order("created_at DESC").Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("query service reports: %w", err)
	}
	return reports, nil
}

// Append writes one audit-trail entry.
func (s *GormStore) Append(ctx context.Context, entry *models.AuditLog) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("append audit log: %w", err)
	}
	return nil
}
