package services_test

import (
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yeremiapane/reservation-app/models"
	"github.com/yeremiapane/reservation-app/services"
)

func seedReportData(t *testing.T, db *gorm.DB) models.Restaurant {
	svc := &services.ReservationService{DB: db, Clock: clockwork.NewFakeClockAt(testNow)}
	restaurant := seedRestaurant(t, db, 4)

	book := func(date, timeStr string, partySize int) *models.Reservation {
		r, err := svc.Create(createInput(restaurant.ID, date, timeStr, partySize))
		require.NoError(t, err)
		return r
	}

	// Two parties at 19:00 on the 20th, one of them confirmed.
	r1 := book("2026-03-20", "19:00", 5)
	_, err := svc.Confirm(r1.ID)
	require.NoError(t, err)
	book("2026-03-20", "19:00", 2)

	// One party at 21:00 on the 20th, later cancelled.
	r3 := book("2026-03-20", "21:00", 4)
	_, err = svc.Cancel(r3.ID)
	require.NoError(t, err)

	// One party on the 21st.
	book("2026-03-21", "19:00", 4)

	return restaurant
}

func TestOccupancy(t *testing.T) {
	db := setupServiceTestDB(t)
	restaurant := seedReportData(t, db)

	reports := services.NewReportService(db)
	rows, err := reports.Occupancy(restaurant.ID, "2026-03-20", "2026-03-21")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	day1 := rows[0]
	assert.Equal(t, "2026-03-20", day1.Date)
	assert.Equal(t, int64(4), day1.TotalTables)
	// Party of 5 holds two tables, party of 2 holds one; the cancelled
	// reservation holds none.
	assert.Equal(t, int64(3), day1.OccupiedTables)
	assert.Equal(t, 75.0, day1.OccupancyPct)
	assert.Equal(t, int64(1), day1.Confirmed)
	assert.Equal(t, int64(1), day1.Pending)

	day2 := rows[1]
	assert.Equal(t, "2026-03-21", day2.Date)
	assert.Equal(t, int64(1), day2.OccupiedTables)
	assert.Equal(t, 25.0, day2.OccupancyPct)
}

func TestOccupancyValidatesRange(t *testing.T) {
	db := setupServiceTestDB(t)
	reports := services.NewReportService(db)

	var verr *services.ValidationError
	_, err := reports.Occupancy(0, "not-a-date", "2026-03-21")
	assert.ErrorAs(t, err, &verr)
	_, err = reports.Occupancy(0, "2026-03-22", "2026-03-21")
	assert.ErrorAs(t, err, &verr)
}

func TestBusiestTimes(t *testing.T) {
	db := setupServiceTestDB(t)
	restaurant := seedReportData(t, db)

	reports := services.NewReportService(db)
	rows, err := reports.BusiestTimes(restaurant.ID, "2026-03-20", "2026-03-21", 5)
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	// 19:00 carries three reservations across the two days; the cancelled
	// 21:00 one does not count at all.
	top := rows[0]
	assert.Equal(t, "19:00", top.Time)
	assert.Equal(t, 3, top.TotalReservations)
	assert.Equal(t, 11, top.TotalPeople)
	for _, row := range rows {
		assert.NotEqual(t, "21:00", row.Time)
	}
}

func TestPeriodStats(t *testing.T) {
	db := setupServiceTestDB(t)
	restaurant := seedReportData(t, db)

	reports := services.NewReportService(db)

	rows, err := reports.PeriodStats(restaurant.ID, "2026-03-20", "2026-03-21", "day")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2026-03-20", rows[0].Period)
	assert.Equal(t, int64(3), rows[0].TotalReservations)
	assert.Equal(t, int64(1), rows[0].Cancelled)
	assert.InDelta(t, 33.33, rows[0].CancellationRate, 0.01)

	monthly, err := reports.PeriodStats(restaurant.ID, "2026-03-20", "2026-03-21", "month")
	require.NoError(t, err)
	require.Len(t, monthly, 1)
	assert.Equal(t, "2026-03", monthly[0].Period)
	assert.Equal(t, int64(4), monthly[0].TotalReservations)

	var verr *services.ValidationError
	_, err = reports.PeriodStats(restaurant.ID, "2026-03-20", "2026-03-21", "hour")
	assert.ErrorAs(t, err, &verr)
}
