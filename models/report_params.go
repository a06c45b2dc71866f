package models

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

// ReportParams captures list-query options shared by report endpoints.
type ReportParams struct {
	Page     int
	PageSize int
	SortBy   string
	SortDir  string
	Filters  map[string]string
	DateFrom *time.Time
	DateTo   *time.Time
}

var sortableColumns = map[string]bool{
	"created_at":      true,
	"updated_at":      true,
	"complaint_no":    true,
	"status":          true,
	"approval_status": true,
	"zone":            true,
}

var filterableColumns = map[string]bool{
	"status":          true,
	"approval_status": true,
	"complaint_type":  true,
	"system_type":     true,
	"zone":            true,
	"rfp_no":          true,
	"technician_id":   true,
	"team_leader_id":  true,
}

// ParseReportParams reads pagination, sorting and filter query parameters.
func ParseReportParams(r *http.Request) (*ReportParams, error) {
	q := r.URL.Query()

	params := &ReportParams{
		Page:     1,
		PageSize: 25,
		SortBy:   "created_at",
		SortDir:  "desc",
		Filters:  map[string]string{},
	}

	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return nil, fmt.Errorf("invalid page %q", v)
		}
		params.Page = page
	}
	if v := q.Get("page_size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size < 1 || size > 200 {
			return nil, fmt.Errorf("invalid page_size %q", v)
		}
		params.PageSize = size
	}
	if v := q.Get("sort_by"); v != "" {
		params.SortBy = v
	}
	if v := strings.ToLower(q.Get("sort_dir")); v == "asc" || v == "desc" {
		params.SortDir = v
	}
	for col := range filterableColumns {
		if v := q.Get(col); v != "" {
			params.Filters[col] = v
		}
	}
	if v := q.Get("date_from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, fmt.Errorf("invalid date_from %q", v)
		}
		params.DateFrom = &t
	}
	if v := q.Get("date_to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, fmt.Errorf("invalid date_to %q", v)
		}
		params.DateTo = &t
	}

	return params, nil
}

// Validate rejects unsortable columns before they reach the query.
func (p *ReportParams) Validate() error {
	if !sortableColumns[p.SortBy] {
		return fmt.Errorf("cannot sort by %q", p.SortBy)
	}
	for col := range p.Filters {
		if !filterableColumns[col] {
			return fmt.Errorf("cannot filter by %q", col)
		}
	}
	return nil
}

// ApplyFilters attaches the equality and date-range conditions. Count
// and row queries both go through here so totals always agree with the
// listed rows.
func (p *ReportParams) ApplyFilters(db *gorm.DB) *gorm.DB {
	for col, val := range p.Filters {
		db = db.Where(col+" = ?", val)
	}
	if p.DateFrom != nil {
		db = db.Where("created_at >= ?", *p.DateFrom)
	}
	if p.DateTo != nil {
		db = db.Where("created_at < ?", p.DateTo.AddDate(0, 0, 1))
	}
	return db
}

// Apply attaches the full params: filters, sorting and pagination.
func (p *ReportParams) Apply(db *gorm.DB) *gorm.DB {
	return p.ApplyFilters(db).
		Order(p.SortBy + " " + p.SortDir).
		Offset((p.Page - 1) * p.PageSize).
		Limit(p.PageSize)
}

// ReportListResponse is the paginated list envelope.
type ReportListResponse struct {
	Data     []ServiceReportDTO `json:"data"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
	Total    int64              `json:"total"`
}
