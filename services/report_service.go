package services

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/reservation-app/models"
)

// ReportService builds the occupancy and movement aggregations consumed by
// the admin screens and the export endpoints.
type ReportService struct {
	DB *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{DB: db}
}

type OccupancyRow struct {
	RestaurantID   uint    `json:"restaurant_id"`
	RestaurantName string  `json:"restaurant_name"`
	Date           string  `json:"date"`
	TotalTables    int64   `json:"total_tables"`
	OccupiedTables int64   `json:"occupied_tables"`
	OccupancyPct   float64 `json:"occupancy_pct"`
	Confirmed      int64   `json:"confirmed_reservations"`
	Pending        int64   `json:"pending_reservations"`
}

type BusiestTimeRow struct {
	RestaurantID     uint    `json:"restaurant_id"`
	RestaurantName   string  `json:"restaurant_name"`
	Time             string  `json:"time"`
	TotalReservations int    `json:"total_reservations"`
	TotalPeople      int     `json:"total_people"`
	ConfirmationRate float64 `json:"confirmation_rate"`
}

type PeriodStatsRow struct {
	Period           string  `json:"period"`
	TotalReservations int64  `json:"total_reservations"`
	Confirmed        int64   `json:"confirmed"`
	Cancelled        int64   `json:"cancelled"`
	Pending          int64   `json:"pending"`
	TotalPeople      int64   `json:"total_people"`
	CancellationRate float64 `json:"cancellation_rate"`
}

// Occupancy reports table occupancy per restaurant per date in the range.
// A zero restaurantID means all restaurants.
func (s *ReportService) Occupancy(restaurantID uint, startDate, endDate string) ([]OccupancyRow, error) {
	start, err := time.Parse(DateLayout, startDate)
	if err != nil {
		return nil, &ValidationError{Reason: "invalid start date, use YYYY-MM-DD"}
	}
	end, err := time.Parse(DateLayout, endDate)
	if err != nil {
		return nil, &ValidationError{Reason: "invalid end date, use YYYY-MM-DD"}
	}
	if end.Before(start) {
		return nil, &ValidationError{Reason: "end date must not be before start date"}
	}

	restaurants := s.DB.Model(&models.Restaurant{})
	if restaurantID != 0 {
		restaurants = restaurants.Where("id = ?", restaurantID)
	}
	var list []models.Restaurant
	if err := restaurants.Find(&list).Error; err != nil {
		return nil, err
	}

	rows := make([]OccupancyRow, 0)
	for _, restaurant := range list {
		var totalTables int64
		s.DB.Model(&models.Table{}).
			Where("restaurant_id = ? AND active = ?", restaurant.ID, true).
			Count(&totalTables)
		if totalTables == 0 {
			continue
		}

		for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
			date := day.Format(DateLayout)

			var confirmed, pending, occupied int64
			s.DB.Model(&models.Reservation{}).
				Where("restaurant_id = ? AND reservation_date = ? AND status = ?",
					restaurant.ID, date, models.ReservationConfirmed).
				Count(&confirmed)
			s.DB.Model(&models.Reservation{}).
				Where("restaurant_id = ? AND reservation_date = ? AND status = ?",
					restaurant.ID, date, models.ReservationPending).
				Count(&pending)
			s.DB.Model(&models.ReservationTable{}).
				Distinct("table_id").
				Joins("JOIN reservations ON reservations.id = reservation_tables.reservation_id").
				Where("reservations.restaurant_id = ? AND reservations.reservation_date = ? AND reservations.status IN ?",
					restaurant.ID, date,
					[]string{models.ReservationPending, models.ReservationConfirmed}).
				Count(&occupied)

			rows = append(rows, OccupancyRow{
				RestaurantID:   restaurant.ID,
				RestaurantName: restaurant.Name,
				Date:           date,
				TotalTables:    totalTables,
				OccupiedTables: occupied,
				OccupancyPct:   round2(float64(occupied) / float64(totalTables) * 100),
				Confirmed:      confirmed,
				Pending:        pending,
			})
		}
	}
	return rows, nil
}

// BusiestTimes returns the top time slots by reservation count in the range.
func (s *ReportService) BusiestTimes(restaurantID uint, startDate, endDate string, top int) ([]BusiestTimeRow, error) {
	query := s.DB.Preload("Restaurant").
		Where("reservation_date >= ? AND reservation_date <= ?", startDate, endDate).
		Where("status IN ?", []string{models.ReservationPending, models.ReservationConfirmed})
	if restaurantID != 0 {
		query = query.Where("restaurant_id = ?", restaurantID)
	}

	var reservations []models.Reservation
	if err := query.Find(&reservations).Error; err != nil {
		return nil, err
	}

	type key struct {
		restaurantID uint
		time         string
	}
	type bucket struct {
		name      string
		total     int
		people    int
		confirmed int
	}
	buckets := make(map[key]*bucket)
	for _, r := range reservations {
		k := key{restaurantID: r.RestaurantID, time: r.ReservationTime}
		b, ok := buckets[k]
		if !ok {
			b = &bucket{}
			if r.Restaurant != nil {
				b.name = r.Restaurant.Name
			}
			buckets[k] = b
		}
		b.total++
		b.people += r.PartySize
		if r.Status == models.ReservationConfirmed {
			b.confirmed++
		}
	}

	rows := make([]BusiestTimeRow, 0, len(buckets))
	for k, b := range buckets {
		rows = append(rows, BusiestTimeRow{
			RestaurantID:      k.restaurantID,
			RestaurantName:    b.name,
			Time:              k.time,
			TotalReservations: b.total,
			TotalPeople:       b.people,
			ConfirmationRate:  round2(float64(b.confirmed) / float64(b.total) * 100),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalReservations != rows[j].TotalReservations {
			return rows[i].TotalReservations > rows[j].TotalReservations
		}
		return rows[i].Time < rows[j].Time
	})
	if top > 0 && len(rows) > top {
		rows = rows[:top]
	}
	return rows, nil
}

// PeriodStats aggregates reservations per day, week or month over the range.
func (s *ReportService) PeriodStats(restaurantID uint, startDate, endDate, period string) ([]PeriodStatsRow, error) {
	if period != "day" && period != "week" && period != "month" {
		return nil, &ValidationError{Reason: "period must be day, week or month"}
	}

	query := s.DB.Model(&models.Reservation{}).
		Where("reservation_date >= ? AND reservation_date <= ?", startDate, endDate)
	if restaurantID != 0 {
		query = query.Where("restaurant_id = ?", restaurantID)
	}
	var reservations []models.Reservation
	if err := query.Find(&reservations).Error; err != nil {
		return nil, err
	}

	buckets := make(map[string]*PeriodStatsRow)
	for _, r := range reservations {
		day, err := time.Parse(DateLayout, r.ReservationDate)
		if err != nil {
			continue
		}
		var label string
		switch period {
		case "day":
			label = r.ReservationDate
		case "week":
			year, week := day.ISOWeek()
			label = fmt.Sprintf("%d-W%02d", year, week)
		case "month":
			label = day.Format("2006-01")
		}

		row, ok := buckets[label]
		if !ok {
			row = &PeriodStatsRow{Period: label}
			buckets[label] = row
		}
		row.TotalReservations++
		row.TotalPeople += int64(r.PartySize)
		switch r.Status {
		case models.ReservationConfirmed:
			row.Confirmed++
		case models.ReservationCancelled:
			row.Cancelled++
		case models.ReservationPending:
			row.Pending++
		}
	}

	rows := make([]PeriodStatsRow, 0, len(buckets))
	for _, row := range buckets {
		if row.TotalReservations > 0 {
			row.CancellationRate = round2(float64(row.Cancelled) / float64(row.TotalReservations) * 100)
		}
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Period < rows[j].Period })
	return rows, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
