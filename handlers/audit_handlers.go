package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"p9e.in/fieldops/config"
	"p9e.in/fieldops/models"
)

// ListAuditLogs returns the audit trail, newest first, filterable by
// table, record and actor.
func ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	query := config.DB.Model(&models.AuditLog{})

	if table := r.URL.Query().Get("table"); table != "" {
		query = query.Where("table_name = ?", table)
	}
	if recordID := r.URL.Query().Get("record_id"); recordID != "" {
		query = query.Where("record_id = ?", recordID)
	}
	if actorID := r.URL.Query().Get("actor_id"); actorID != "" {
		query = query.Where("actor_id = ?", actorID)
	}
	if action := r.URL.Query().Get("action"); action != "" {
		query = query.Where("action = ?", action)
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	var entries []models.AuditLog
	if err := query.Order("created_at DESC").Limit(limit).Find(&entries).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}
