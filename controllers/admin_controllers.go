package controllers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-pdf/fpdf"
	"github.com/wcharczuk/go-chart/v2"
	"gorm.io/gorm"

	"github.com/yeremiapane/reservation-app/models"
	"github.com/yeremiapane/reservation-app/services"
	"github.com/yeremiapane/reservation-app/utils"
)

type AdminController struct {
	DB      *gorm.DB
	Reports *services.ReportService
	Service *services.ReservationService
}

func NewAdminController(db *gorm.DB, reports *services.ReportService, svc *services.ReservationService) *AdminController {
	return &AdminController{DB: db, Reports: reports, Service: svc}
}

// reportScope validates the restaurant_id/start/end query parameters shared
// by every report endpoint. restaurant_id=0 (or absent) means all
// restaurants and is reserved for system admins.
func (ac *AdminController) reportScope(c *gin.Context) (uint, string, string, bool) {
	userID, role := currentUser(c)

	var restaurantID uint
	if raw := c.Query("restaurant_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("invalid restaurant id"))
			return 0, "", "", false
		}
		restaurantID = uint(parsed)
	}

	if restaurantID == 0 {
		if role != models.RoleSystemAdmin {
			utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
			return 0, "", "", false
		}
	} else if !isAdminFor(ac.DB, userID, role, restaurantID) {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return 0, "", "", false
	}

	now := ac.Service.Clock.Now()
	start := c.DefaultQuery("start_date", now.AddDate(0, 0, -30).Format(services.DateLayout))
	end := c.DefaultQuery("end_date", now.Format(services.DateLayout))
	return restaurantID, start, end, true
}

// GetDashboardStats returns today's headline numbers for one restaurant.
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	userID, role := currentUser(c)

	restaurantID, err := strconv.ParseUint(c.Query("restaurant_id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("restaurant_id query parameter is required"))
		return
	}
	if !worksAt(ac.DB, userID, role, uint(restaurantID)) {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	today := ac.Service.Clock.Now().Format(services.DateLayout)

	var totalTables, availableTables, maintenanceTables int64
	ac.DB.Model(&models.Table{}).
		Where("restaurant_id = ? AND active = ?", restaurantID, true).
		Count(&totalTables)
	ac.DB.Model(&models.Table{}).
		Where("restaurant_id = ? AND active = ? AND status = ?", restaurantID, true, models.TableAvailable).
		Count(&availableTables)
	ac.DB.Model(&models.Table{}).
		Where("restaurant_id = ? AND active = ? AND status = ?", restaurantID, true, models.TableMaintenance).
		Count(&maintenanceTables)

	var pending, confirmed, concluded int64
	base := ac.DB.Model(&models.Reservation{}).
		Where("restaurant_id = ? AND reservation_date = ?", restaurantID, today)
	base.Session(&gorm.Session{}).Where("status = ?", models.ReservationPending).Count(&pending)
	base.Session(&gorm.Session{}).Where("status = ?", models.ReservationConfirmed).Count(&confirmed)
	base.Session(&gorm.Session{}).Where("status = ?", models.ReservationConcluded).Count(&concluded)

	var guestsToday int64
	ac.DB.Model(&models.Reservation{}).
		Where("restaurant_id = ? AND reservation_date = ? AND status IN ?",
			restaurantID, today,
			[]string{models.ReservationPending, models.ReservationConfirmed}).
		Select("COALESCE(SUM(party_size), 0)").Scan(&guestsToday)

	utils.RespondJSON(c, http.StatusOK, "Dashboard stats", gin.H{
		"date":               today,
		"total_tables":       totalTables,
		"available_tables":   availableTables,
		"maintenance_tables": maintenanceTables,
		"pending":            pending,
		"confirmed":          confirmed,
		"concluded":          concluded,
		"expected_guests":    guestsToday,
	})
}

func (ac *AdminController) GetOccupancyReport(c *gin.Context) {
	restaurantID, start, end, ok := ac.reportScope(c)
	if !ok {
		return
	}
	rows, err := ac.Reports.Occupancy(restaurantID, start, end)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Occupancy report", rows)
}

func (ac *AdminController) GetBusiestTimes(c *gin.Context) {
	restaurantID, start, end, ok := ac.reportScope(c)
	if !ok {
		return
	}
	top, _ := strconv.Atoi(c.DefaultQuery("top", "10"))
	rows, err := ac.Reports.BusiestTimes(restaurantID, start, end, top)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Busiest time slots", rows)
}

func (ac *AdminController) GetPeriodStats(c *gin.Context) {
	restaurantID, start, end, ok := ac.reportScope(c)
	if !ok {
		return
	}
	period := c.DefaultQuery("period", "day")
	rows, err := ac.Reports.PeriodStats(restaurantID, start, end, period)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Period stats", rows)
}

// ExportReservationsCSV streams the period stats as a CSV attachment.
func (ac *AdminController) ExportReservationsCSV(c *gin.Context) {
	restaurantID, start, end, ok := ac.reportScope(c)
	if !ok {
		return
	}
	period := c.DefaultQuery("period", "day")
	rows, err := ac.Reports.PeriodStats(restaurantID, start, end, period)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	_ = writer.Write([]string{
		"period", "total_reservations", "confirmed", "cancelled",
		"pending", "total_people", "cancellation_rate",
	})
	for _, row := range rows {
		_ = writer.Write([]string{
			row.Period,
			strconv.FormatInt(row.TotalReservations, 10),
			strconv.FormatInt(row.Confirmed, 10),
			strconv.FormatInt(row.Cancelled, 10),
			strconv.FormatInt(row.Pending, 10),
			strconv.FormatInt(row.TotalPeople, 10),
			fmt.Sprintf("%.2f", row.CancellationRate),
		})
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	filename := fmt.Sprintf("reservations_%s_%s.csv", start, end)
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// ExportReservationsPDF renders the period stats as a PDF report with a
// reservations-per-period chart.
func (ac *AdminController) ExportReservationsPDF(c *gin.Context) {
	restaurantID, start, end, ok := ac.reportScope(c)
	if !ok {
		return
	}
	period := c.DefaultQuery("period", "day")
	rows, err := ac.Reports.PeriodStats(restaurantID, start, end, period)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Reservation Report", false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Reservation Report")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Range: %s to %s (per %s)", start, end, period))
	pdf.Ln(10)

	if chartPNG, err := renderReservationChart(rows); err == nil {
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("period_chart", opts, bytes.NewReader(chartPNG))
		pdf.ImageOptions("period_chart", 10, pdf.GetY(), 190, 0, true, opts, 0, "")
		pdf.Ln(6)
	} else {
		utils.ErrorLogger.Printf("Chart rendering failed: %v", err)
	}

	pdf.SetFont("Arial", "B", 9)
	headers := []string{"Period", "Total", "Confirmed", "Cancelled", "Pending", "People", "Cancel %"}
	widths := []float64{40, 22, 25, 25, 22, 22, 24}
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range rows {
		cells := []string{
			row.Period,
			strconv.FormatInt(row.TotalReservations, 10),
			strconv.FormatInt(row.Confirmed, 10),
			strconv.FormatInt(row.Cancelled, 10),
			strconv.FormatInt(row.Pending, 10),
			strconv.FormatInt(row.TotalPeople, 10),
			fmt.Sprintf("%.2f", row.CancellationRate),
		}
		for i, cell := range cells {
			pdf.CellFormat(widths[i], 6, cell, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	filename := fmt.Sprintf("reservations_%s_%s.pdf", start, end)
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", out.Bytes())
}

// renderReservationChart draws total reservations per period as a bar chart.
func renderReservationChart(rows []services.PeriodStatsRow) ([]byte, error) {
	if len(rows) == 0 {
		return nil, errors.New("no data to chart")
	}

	bars := make([]chart.Value, 0, len(rows))
	for _, row := range rows {
		bars = append(bars, chart.Value{
			Label: row.Period,
			Value: float64(row.TotalReservations),
		})
	}

	graph := chart.BarChart{
		Title:    "Reservations per period",
		Height:   300,
		Width:    900,
		BarWidth: 30,
		Bars:     bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
