package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeremiapane/reservation-app/models"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	// MinLeadTime is the minimum gap between "now" and the reserved slot
	// for creating, editing or cancelling a reservation.
	MinLeadTime = 2 * time.Hour

	// ConflictWindow is the band around a reservation's time inside which
	// two reservations compete for the same tables.
	ConflictWindow = time.Hour
)

// ReservationService owns table allocation, conflict detection and the
// reservation lifecycle. It is the only component that mutates
// reservation_tables rows.
type ReservationService struct {
	DB    *gorm.DB
	Clock clockwork.Clock
}

func NewReservationService(db *gorm.DB) *ReservationService {
	return &ReservationService{
		DB:    db,
		Clock: clockwork.NewRealClock(),
	}
}

// TablesNeeded computes how many fixed-capacity tables a party requires.
func TablesNeeded(partySize int) (int, error) {
	if partySize < 1 {
		return 0, &ValidationError{Reason: "party size must be at least 1"}
	}
	return (partySize + models.TableCapacity - 1) / models.TableCapacity, nil
}

// ParseSlot combines a YYYY-MM-DD date and HH:MM time into a local time.
func ParseSlot(date, timeStr string) (time.Time, error) {
	slot, err := time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+timeStr, time.Local)
	if err != nil {
		return time.Time{}, &ValidationError{Reason: "invalid date or time format, use YYYY-MM-DD and HH:MM"}
	}
	return slot, nil
}

type CreateReservationInput struct {
	RestaurantID  uint
	UserID        *uint
	Date          string
	Time          string
	PartySize     int
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	Notes         string
}

type UpdateReservationInput struct {
	RestaurantID  *uint
	Date          *string
	Time          *string
	PartySize     *int
	CustomerName  *string
	CustomerPhone *string
	CustomerEmail *string
	Notes         *string
}

// Create validates the request, allocates tables and persists the pending
// reservation plus its table links in one transaction. Either everything is
// committed or nothing is.
func (s *ReservationService) Create(in CreateReservationInput) (*models.Reservation, error) {
	needed, err := TablesNeeded(in.PartySize)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.CustomerName) == "" {
		return nil, &ValidationError{Reason: "customer name is required"}
	}
	if strings.TrimSpace(in.CustomerPhone) == "" {
		return nil, &ValidationError{Reason: "customer phone is required"}
	}

	slot, err := ParseSlot(in.Date, in.Time)
	if err != nil {
		return nil, err
	}
	if slot.Before(s.Clock.Now().Add(MinLeadTime)) {
		return nil, &ValidationError{Reason: "reservations must be made at least 2 hours in advance"}
	}

	var restaurant models.Restaurant
	if err := s.DB.First(&restaurant, in.RestaurantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "restaurant"}
		}
		return nil, err
	}
	if !restaurant.Active {
		return nil, &ValidationError{Reason: "this restaurant is not accepting reservations"}
	}

	var created models.Reservation
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		tables, err := s.availableTables(tx, in.RestaurantID, in.Date, in.Time, 0, true)
		if err != nil {
			return err
		}
		if len(tables) < needed {
			return &InsufficientCapacityError{Needed: needed, Available: len(tables)}
		}

		created = models.Reservation{
			Code:            uuid.NewString(),
			RestaurantID:    in.RestaurantID,
			UserID:          in.UserID,
			ReservationDate: in.Date,
			ReservationTime: in.Time,
			PartySize:       in.PartySize,
			CustomerName:    in.CustomerName,
			CustomerPhone:   in.CustomerPhone,
			CustomerEmail:   in.CustomerEmail,
			Notes:           in.Notes,
			Status:          models.ReservationPending,
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}
		return s.linkTables(tx, created.ID, tables[:needed])
	})
	if err != nil {
		return nil, err
	}

	return s.Get(created.ID)
}

// Update edits reservation parameters. Allowed only while pending or
// confirmed and more than 2 hours before the reserved slot. A change to
// restaurant, date, time or party size triggers re-allocation: the new set
// must be secured before the old links are dropped, in the same transaction.
func (s *ReservationService) Update(id uint, in UpdateReservationInput) (*models.Reservation, error) {
	reservation, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if reservation.IsTerminal() {
		return nil, &InvalidTransitionError{
			Status: reservation.Status,
			Reason: "cancelled or concluded reservations can no longer be edited",
		}
	}

	currentSlot, err := ParseSlot(reservation.ReservationDate, reservation.ReservationTime)
	if err != nil {
		return nil, err
	}
	// Same strict boundary as CanCancel: at exactly 2h remaining the edit
	// window is already closed.
	if !s.Clock.Now().Before(currentSlot.Add(-MinLeadTime)) {
		return nil, &ValidationError{Reason: "reservations cannot be edited less than 2 hours in advance"}
	}

	restaurantID := reservation.RestaurantID
	if in.RestaurantID != nil {
		restaurantID = *in.RestaurantID
	}
	date := reservation.ReservationDate
	if in.Date != nil {
		date = *in.Date
	}
	timeStr := reservation.ReservationTime
	if in.Time != nil {
		timeStr = *in.Time
	}
	partySize := reservation.PartySize
	if in.PartySize != nil {
		partySize = *in.PartySize
	}

	changed := restaurantID != reservation.RestaurantID ||
		date != reservation.ReservationDate ||
		timeStr != reservation.ReservationTime ||
		partySize != reservation.PartySize

	needed, err := TablesNeeded(partySize)
	if err != nil {
		return nil, err
	}

	if changed {
		newSlot, err := ParseSlot(date, timeStr)
		if err != nil {
			return nil, err
		}
		if newSlot.Before(s.Clock.Now().Add(MinLeadTime)) {
			return nil, &ValidationError{Reason: "reservations must be made at least 2 hours in advance"}
		}
		if restaurantID != reservation.RestaurantID {
			var restaurant models.Restaurant
			if err := s.DB.First(&restaurant, restaurantID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, &NotFoundError{Resource: "restaurant"}
				}
				return nil, err
			}
			if !restaurant.Active {
				return nil, &ValidationError{Reason: "this restaurant is not accepting reservations"}
			}
		}
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if changed {
			tables, err := s.availableTables(tx, restaurantID, date, timeStr, reservation.ID, true)
			if err != nil {
				return err
			}
			if len(tables) < needed {
				// Existing allocation stays intact.
				return &InsufficientCapacityError{Needed: needed, Available: len(tables)}
			}
			if err := s.release(tx, reservation.ID); err != nil {
				return err
			}
			if err := s.linkTables(tx, reservation.ID, tables[:needed]); err != nil {
				return err
			}
		}

		reservation.RestaurantID = restaurantID
		reservation.ReservationDate = date
		reservation.ReservationTime = timeStr
		reservation.PartySize = partySize
		if in.CustomerName != nil {
			reservation.CustomerName = *in.CustomerName
		}
		if in.CustomerPhone != nil {
			reservation.CustomerPhone = *in.CustomerPhone
		}
		if in.CustomerEmail != nil {
			reservation.CustomerEmail = *in.CustomerEmail
		}
		if in.Notes != nil {
			reservation.Notes = *in.Notes
		}
		reservation.Tables = nil
		return tx.Save(reservation).Error
	})
	if err != nil {
		return nil, err
	}

	return s.Get(id)
}

// Confirm moves a pending reservation to confirmed and writes a confirmation
// notification when the reservation belongs to a registered user.
func (s *ReservationService) Confirm(id uint) (*models.Reservation, error) {
	reservation, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	switch reservation.Status {
	case models.ReservationPending:
		// ok
	case models.ReservationConfirmed:
		return nil, &InvalidTransitionError{Status: reservation.Status, Reason: "this reservation is already confirmed"}
	case models.ReservationCancelled:
		return nil, &InvalidTransitionError{Status: reservation.Status, Reason: "a cancelled reservation cannot be confirmed"}
	case models.ReservationConcluded:
		return nil, &InvalidTransitionError{Status: reservation.Status, Reason: "this reservation has already been concluded"}
	default:
		return nil, &InvalidTransitionError{Status: reservation.Status, Reason: "unknown reservation status"}
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// Read the allocated numbers before dropping the preloaded links;
		// Save must not touch the association rows.
		numbers := tableNumbers(reservation)
		reservation.Status = models.ReservationConfirmed
		reservation.Tables = nil
		if err := tx.Save(reservation).Error; err != nil {
			return err
		}
		if reservation.UserID == nil {
			return nil
		}
		notification := models.Notification{
			UserID:        *reservation.UserID,
			ReservationID: reservation.ID,
			Type:          models.NotificationConfirmation,
			Title:         "Reservation confirmed",
			Message: fmt.Sprintf(
				"Your reservation for %d people on %s at %s is confirmed. Tables: %s.",
				reservation.PartySize, reservation.ReservationDate,
				reservation.ReservationTime, numbers,
			),
		}
		return tx.Create(&notification).Error
	})
	if err != nil {
		return nil, err
	}

	return s.Get(id)
}

// Cancel releases all tables and moves the reservation to cancelled. The 2h
// lead-time gate is enforced unconditionally by the state machine.
func (s *ReservationService) Cancel(id uint) (*models.Reservation, error) {
	reservation, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	switch reservation.Status {
	case models.ReservationCancelled:
		return nil, &InvalidTransitionError{Status: reservation.Status, Reason: "this reservation is already cancelled"}
	case models.ReservationConcluded:
		return nil, &InvalidTransitionError{Status: reservation.Status, Reason: "a concluded reservation cannot be cancelled"}
	}
	if !s.CanCancel(reservation) {
		return nil, &ValidationError{Reason: "reservations cannot be cancelled less than 2 hours in advance"}
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.release(tx, reservation.ID); err != nil {
			return err
		}
		reservation.Status = models.ReservationCancelled
		reservation.Tables = nil
		return tx.Save(reservation).Error
	})
	if err != nil {
		return nil, err
	}

	return s.Get(id)
}

// Conclude marks a confirmed reservation as concluded. Tables are not
// released here; the restaurant frees them through its own status toggles.
func (s *ReservationService) Conclude(id uint) (*models.Reservation, error) {
	reservation, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if reservation.Status != models.ReservationConfirmed {
		return nil, &InvalidTransitionError{
			Status: reservation.Status,
			Reason: "only confirmed reservations can be concluded",
		}
	}

	reservation.Status = models.ReservationConcluded
	reservation.Tables = nil
	if err := s.DB.Save(reservation).Error; err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Release drops every table link of the reservation. Releasing an already
// unallocated reservation is a no-op.
func (s *ReservationService) Release(reservationID uint) error {
	return s.release(s.DB, reservationID)
}

// CanCancel reports whether the lead-time gate still allows cancellation.
func (s *ReservationService) CanCancel(r *models.Reservation) bool {
	if r.IsTerminal() {
		return false
	}
	slot, err := ParseSlot(r.ReservationDate, r.ReservationTime)
	if err != nil {
		return false
	}
	return s.Clock.Now().Before(slot.Add(-MinLeadTime))
}

// Get loads a reservation with its restaurant and table links.
func (s *ReservationService) Get(id uint) (*models.Reservation, error) {
	var reservation models.Reservation
	err := s.DB.Preload("Restaurant").Preload("Tables.Table").First(&reservation, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "reservation"}
		}
		return nil, err
	}
	return &reservation, nil
}

// GetByCode loads a reservation by its public code (guest lookup).
func (s *ReservationService) GetByCode(code string) (*models.Reservation, error) {
	var reservation models.Reservation
	err := s.DB.Preload("Restaurant").Preload("Tables.Table").
		Where("code = ?", code).First(&reservation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "reservation"}
		}
		return nil, err
	}
	return &reservation, nil
}

// Availability is the read-only query surface: free tables for a slot. The
// slot must not be in the past.
func (s *ReservationService) Availability(restaurantID uint, date, timeStr string) ([]models.Table, error) {
	slot, err := ParseSlot(date, timeStr)
	if err != nil {
		return nil, err
	}
	if slot.Before(s.Clock.Now()) {
		return nil, &ValidationError{Reason: "availability cannot be queried for past dates or times"}
	}
	var restaurant models.Restaurant
	if err := s.DB.First(&restaurant, restaurantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "restaurant"}
		}
		return nil, err
	}
	return s.availableTables(s.DB, restaurantID, date, timeStr, 0, false)
}

// availableTables returns the tables at the restaurant that are active,
// available and not linked to a pending/confirmed reservation whose time
// falls within the ±1h conflict window on the same date, ordered by table
// number. With lock set, the candidate rows are selected FOR UPDATE so that
// concurrent overlapping allocations serialize on them.
//
// The window is wall-clock only: shifting 23:30 by +1h yields 00:30 and the
// resulting range matches nothing past midnight, mirroring the behaviour the
// scheduling rules were specified against.
func (s *ReservationService) availableTables(tx *gorm.DB, restaurantID uint, date, timeStr string, excludeReservationID uint, lock bool) ([]models.Table, error) {
	slot, err := ParseSlot(date, timeStr)
	if err != nil {
		return nil, err
	}
	windowStart := slot.Add(-ConflictWindow).Format(TimeLayout)
	windowEnd := slot.Add(ConflictWindow).Format(TimeLayout)

	conflicting := tx.Model(&models.Reservation{}).Select("id").
		Where("restaurant_id = ? AND reservation_date = ?", restaurantID, date).
		Where("reservation_time >= ? AND reservation_time <= ?", windowStart, windowEnd).
		Where("status IN ?", []string{models.ReservationPending, models.ReservationConfirmed})
	if excludeReservationID != 0 {
		conflicting = conflicting.Where("id <> ?", excludeReservationID)
	}

	occupied := tx.Model(&models.ReservationTable{}).Select("table_id").
		Where("reservation_id IN (?)", conflicting)

	query := tx.Model(&models.Table{}).
		Where("restaurant_id = ? AND active = ? AND status = ?", restaurantID, true, models.TableAvailable).
		Where("id NOT IN (?)", occupied).
		Order("number asc")
	if lock && tx.Dialector.Name() == "mysql" {
		// sqlite (used in tests) has no FOR UPDATE; it serializes writers
		// on its own.
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var tables []models.Table
	if err := query.Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

func (s *ReservationService) linkTables(tx *gorm.DB, reservationID uint, tables []models.Table) error {
	now := s.Clock.Now()
	links := make([]models.ReservationTable, 0, len(tables))
	for _, table := range tables {
		links = append(links, models.ReservationTable{
			ReservationID: reservationID,
			TableID:       table.ID,
			LinkedAt:      now,
		})
	}
	return tx.Create(&links).Error
}

func (s *ReservationService) release(tx *gorm.DB, reservationID uint) error {
	return tx.Where("reservation_id = ?", reservationID).
		Delete(&models.ReservationTable{}).Error
}

func tableNumbers(r *models.Reservation) string {
	numbers := make([]string, 0, len(r.Tables))
	for _, link := range r.Tables {
		if link.Table != nil {
			numbers = append(numbers, fmt.Sprintf("%d", link.Table.Number))
		}
	}
	return strings.Join(numbers, ", ")
}
