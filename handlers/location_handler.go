package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"p9e.in/fieldops/config"
	"p9e.in/fieldops/models"
)

// ListLocations returns active location-catalog entries, optionally
// filtered by a search term over RFP number and location name.
func ListLocations(w http.ResponseWriter, r *http.Request) {
	query := config.DB.Where("is_active = ?", true)

	if q := r.URL.Query().Get("q"); q != "" {
		like := "%" + q + "%"
		query = query.Where("rfp_no ILIKE ? OR location ILIKE ?", like, like)
	}
	if zone := r.URL.Query().Get("zone"); zone != "" {
		query = query.Where("zone = ?", zone)
	}

	var locations []models.LocationDetail
	if err := query.Order("rfp_no ASC").Limit(100).Find(&locations).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(locations)
}

// GetLocationByRfp returns the catalog entry for one RFP number.
func GetLocationByRfp(w http.ResponseWriter, r *http.Request) {
	rfpNo := mux.Vars(r)["rfpNo"]

	var detail models.LocationDetail
	if err := config.DB.Where("rfp_no = ? AND is_active = ?", rfpNo, true).First(&detail).Error; err != nil {
		http.Error(w, "rfp number not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(detail)
}
