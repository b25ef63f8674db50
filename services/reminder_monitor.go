package services

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"

	"github.com/yeremiapane/reservation-app/models"
	"github.com/yeremiapane/reservation-app/utils"
)

// ReminderMonitor periodically writes reminder notification records for
// confirmed reservations happening within the next 24 hours. It only
// produces records; delivery is someone else's problem.
type ReminderMonitor struct {
	DB       *gorm.DB
	Clock    clockwork.Clock
	Interval time.Duration
	StopChan chan struct{}
}

func NewReminderMonitor(db *gorm.DB) *ReminderMonitor {
	return &ReminderMonitor{
		DB:       db,
		Clock:    clockwork.NewRealClock(),
		Interval: 5 * time.Minute,
		StopChan: make(chan struct{}),
	}
}

func (rm *ReminderMonitor) Start() {
	go func() {
		ticker := time.NewTicker(rm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rm.CheckUpcoming()
			case <-rm.StopChan:
				return
			}
		}
	}()
}

func (rm *ReminderMonitor) Stop() {
	close(rm.StopChan)
}

// CheckUpcoming creates at most one reminder per reservation.
func (rm *ReminderMonitor) CheckUpcoming() {
	now := rm.Clock.Now()
	horizon := now.Add(24 * time.Hour)

	// Slots within 24h can only fall on today's or tomorrow's date.
	dates := []string{
		now.Format(DateLayout),
		now.AddDate(0, 0, 1).Format(DateLayout),
	}

	var reservations []models.Reservation
	err := rm.DB.
		Where("status = ? AND user_id IS NOT NULL", models.ReservationConfirmed).
		Where("reservation_date IN ?", dates).
		Find(&reservations).Error
	if err != nil {
		utils.ErrorLogger.Printf("reminder monitor: fetching reservations: %v", err)
		return
	}

	for _, reservation := range reservations {
		slot, err := ParseSlot(reservation.ReservationDate, reservation.ReservationTime)
		if err != nil || slot.Before(now) || slot.After(horizon) {
			continue
		}

		var existing int64
		rm.DB.Model(&models.Notification{}).
			Where("reservation_id = ? AND type = ?", reservation.ID, models.NotificationReminder).
			Count(&existing)
		if existing > 0 {
			continue
		}

		notification := models.Notification{
			UserID:        *reservation.UserID,
			ReservationID: reservation.ID,
			Type:          models.NotificationReminder,
			Title:         "Upcoming reservation",
			Message: fmt.Sprintf("Reminder: your reservation for %d people is on %s at %s.",
				reservation.PartySize, reservation.ReservationDate, reservation.ReservationTime),
		}
		if err := rm.DB.Create(&notification).Error; err != nil {
			utils.ErrorLogger.Printf("reminder monitor: creating notification: %v", err)
			continue
		}
		utils.InfoLogger.Printf("Reminder queued for reservation %d", reservation.ID)
	}
}
