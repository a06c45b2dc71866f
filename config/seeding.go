package config

import (
	"p9e.in/fieldops/models"
)

// SeedLookups inserts the lookup rows the application needs to function:
// departments, the service-report form with its department enablement,
// and a starter location catalog. Each seed skips when data exists.
func SeedLookups() {
	seedDepartmentsAndForms()
	seedLocationCatalog()
}

func seedDepartmentsAndForms() {
	var count int64
	DB.Model(&models.Department{}).Count(&count)
	if count > 0 {
		return
	}

	departments := []models.Department{
		{Code: "CCTV", Name: "CCTV Maintenance"},
		{Code: "UPS", Name: "UPS & Power"},
		{Code: "NET", Name: "Network Equipment"},
	}
	for i := range departments {
		departments[i].IsActive = true
		if err := DB.Create(&departments[i]).Error; err != nil {
			Logger().WithError(err).Warnf("seed department %s failed", departments[i].Code)
		}
	}

	form := models.Form{Code: "service_report", Title: "Field Service Report", IsActive: true}
	if err := DB.Create(&form).Error; err != nil {
		Logger().WithError(err).Warn("seed service report form failed")
		return
	}

	for _, dept := range departments {
		link := models.DepartmentForm{DepartmentID: dept.ID, FormID: form.ID, IsEnabled: true}
		if err := DB.Create(&link).Error; err != nil {
			Logger().WithError(err).Warnf("seed department form link for %s failed", dept.Code)
		}
	}

	Logger().Info("Seeded departments and forms")
}

func seedLocationCatalog() {
	var count int64
	DB.Model(&models.LocationDetail{}).Count(&count)
	if count > 0 {
		return
	}

	lat1, lon1 := 18.5209, 73.8567
	lat2, lon2 := 18.5167, 73.8563
	locations := []models.LocationDetail{
		{
			RfpNo: "RFP-001", Location: "MG Road", Zone: "Central",
			WardNo: "12", PsLimits: "MG Road PS", PoleID: "P-118", JbSlNo: "JB-42",
			Latitude: &lat1, Longitude: &lon1, IsActive: true,
		},
		{
			RfpNo: "RFP-002", Location: "Shivajinagar Junction", Zone: "West",
			WardNo: "8", PsLimits: "Shivajinagar PS", PoleID: "P-212", JbSlNo: "JB-17",
			Latitude: &lat2, Longitude: &lon2, IsActive: true,
		},
	}
	for i := range locations {
		if err := DB.Create(&locations[i]).Error; err != nil {
			Logger().WithError(err).Warnf("seed location %s failed", locations[i].RfpNo)
		}
	}

	Logger().Info("Seeded location catalog")
}
