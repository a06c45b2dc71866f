package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"p9e.in/fieldops/handlers"
	"p9e.in/fieldops/middleware"
	"p9e.in/fieldops/models"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	// =====================================================
	// Public Routes (no authentication)
	// =====================================================
	r.HandleFunc("/register", handlers.Register).Methods("POST")
	r.HandleFunc("/login", handlers.Login).Methods("POST")
	r.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir("./uploads"))),
	)

	// =====================================================
	// Protected API Routes (require JWT authentication)
	// =====================================================
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.JWTMiddleware)

	api.HandleFunc("/profile", handlers.Profile).Methods("GET")

	registerWizardRoutes(api)
	registerReportRoutes(api)
	registerLocationRoutes(api)

	// =====================================================
	// Admin Routes
	// =====================================================
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Handle("/audit-logs",
		middleware.RequireRole([]string{models.RoleAdmin},
			http.HandlerFunc(handlers.ListAuditLogs))).Methods("GET")

	return r
}

// registerWizardRoutes wires the service report wizard sessions.
func registerWizardRoutes(api *mux.Router) {
	api.HandleFunc("/wizard/sessions", handlers.StartWizard).Methods("POST")

	s := api.PathPrefix("/wizard/sessions/{sessionId}").Subrouter()
	s.HandleFunc("", handlers.GetWizardState).Methods("GET")
	s.HandleFunc("", handlers.CloseWizard).Methods("DELETE")
	s.HandleFunc("/fields", handlers.UpdateWizardFields).Methods("PATCH")
	s.HandleFunc("/next", handlers.WizardNext).Methods("POST")
	s.HandleFunc("/previous", handlers.WizardPrevious).Methods("POST")
	s.HandleFunc("/location", handlers.SetWizardLocation).Methods("PUT")
	s.HandleFunc("/rfp", handlers.SelectWizardRfp).Methods("PUT")
	s.HandleFunc("/checklist", handlers.SetWizardChecklistItem).Methods("PUT")
	s.HandleFunc("/draft", handlers.SaveWizardDraft).Methods("POST")
	s.HandleFunc("/submit", handlers.SubmitWizard).Methods("POST")

	s.HandleFunc("/images/{field}", handlers.UploadWizardImage).Methods("POST")
	s.HandleFunc("/raw-power-images", handlers.UploadRawPowerImage).Methods("POST")
	s.HandleFunc("/raw-power-images/{index}", handlers.RemoveRawPowerImage).Methods("DELETE")
}

func registerReportRoutes(api *mux.Router) {
	api.HandleFunc("/reports", handlers.ListServiceReports).Methods("GET")
	api.HandleFunc("/reports/stats", handlers.GetReportStats).Methods("GET")
	api.HandleFunc("/reports/export", handlers.ExportServiceReports).Methods("GET")
	api.HandleFunc("/reports/{id}", handlers.GetServiceReport).Methods("GET")

	api.Handle("/reports/{id}/approval",
		middleware.RequireRole([]string{models.RoleTeamLeader, models.RoleAdmin},
			http.HandlerFunc(handlers.DecideServiceReport))).Methods("POST")
}

func registerLocationRoutes(api *mux.Router) {
	api.HandleFunc("/locations", handlers.ListLocations).Methods("GET")
	api.HandleFunc("/locations/{rfpNo}", handlers.GetLocationByRfp).Methods("GET")
}
