package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"

	"p9e.in/fieldops/config"
	"p9e.in/fieldops/models"
)

var exportHeaders = []string{
	"Complaint No", "Date", "Complaint Type", "System Type", "Zone",
	"Location", "RFP No", "Status", "Approval", "Technician", "Created At",
}

// ExportServiceReports streams the filtered report listing as an Excel
// workbook for managers.
func ExportServiceReports(w http.ResponseWriter, r *http.Request) {
	params, err := models.ParseReportParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := params.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	params.PageSize = 200 // export caps at one page of 200 rows

	var reports []models.ServiceReport
	if err := params.Apply(config.DB.Model(&models.ServiceReport{})).Find(&reports).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	f, err := createReportWorkbook(reports)
	if err != nil {
		http.Error(w, "Failed to generate Excel file: "+err.Error(), http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("service_reports_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	if err := f.Write(w); err != nil {
		config.Logger().WithError(err).Warn("excel export write failed")
	}
}

func createReportWorkbook(reports []models.ServiceReport) (*excelize.File, error) {
	f := excelize.NewFile()
	sheetName := "Service Reports"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
			Size: 16,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "left",
			Vertical:   "center",
		},
	})
	f.SetCellValue(sheetName, "A1", "Field Service Reports")
	f.SetCellStyle(sheetName, "A1", "A1", titleStyle)
	f.SetRowHeight(sheetName, 1, 30)
	f.SetCellValue(sheetName, "A2", fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04:05")))

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#4472C4"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for colIdx, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 4)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}
	f.SetColWidth(sheetName, "A", "K", 20)

	for rowIdx, report := range reports {
		values := []interface{}{
			report.ComplaintNo,
			report.Date,
			report.ComplaintType,
			report.SystemType,
			report.Zone,
			report.Location,
			report.RfpNo,
			report.Status,
			report.ApprovalStatus,
			report.TechEngineer,
			report.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for colIdx, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+5)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	return f, nil
}
