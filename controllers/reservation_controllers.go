package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/reservation-app/events"
	"github.com/yeremiapane/reservation-app/models"
	"github.com/yeremiapane/reservation-app/services"
	"github.com/yeremiapane/reservation-app/utils"
)

type ReservationController struct {
	DB      *gorm.DB
	Service *services.ReservationService
}

func NewReservationController(db *gorm.DB, svc *services.ReservationService) *ReservationController {
	return &ReservationController{DB: db, Service: svc}
}

// canManage reports whether the caller may act on the reservation: its
// owner, or staff/admin of the restaurant it belongs to.
func (rc *ReservationController) canManage(userID uint, role string, reservation *models.Reservation) bool {
	if reservation.UserID != nil && *reservation.UserID == userID {
		return true
	}
	return worksAt(rc.DB, userID, role, reservation.RestaurantID)
}

// CreateReservation books tables for a party. Authenticated customers are
// attached to the reservation; staff may book on behalf of walk-ins by
// leaving the account detached.
func (rc *ReservationController) CreateReservation(c *gin.Context) {
	userID, role := currentUser(c)

	var req struct {
		RestaurantID  uint   `json:"restaurant_id" binding:"required"`
		Date          string `json:"date" binding:"required"`
		Time          string `json:"time" binding:"required"`
		PartySize     int    `json:"party_size" binding:"required"`
		CustomerName  string `json:"customer_name" binding:"required"`
		CustomerPhone string `json:"customer_phone" binding:"required"`
		CustomerEmail string `json:"customer_email"`
		Notes         string `json:"notes"`
		WalkIn        bool   `json:"walk_in"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	input := services.CreateReservationInput{
		RestaurantID:  req.RestaurantID,
		Date:          req.Date,
		Time:          req.Time,
		PartySize:     req.PartySize,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		Notes:         req.Notes,
	}
	if req.WalkIn {
		if !worksAt(rc.DB, userID, role, req.RestaurantID) {
			utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
			return
		}
	} else {
		input.UserID = &userID
	}

	reservation, err := rc.Service.Create(input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	events.BroadcastReservationCreate(reservation)
	utils.InfoLogger.Printf("Reservation %s created: restaurant=%d party=%d %s %s",
		reservation.Code, reservation.RestaurantID, reservation.PartySize,
		reservation.ReservationDate, reservation.ReservationTime)
	utils.RespondJSON(c, http.StatusCreated, "Reservation created successfully", reservation)
}

// GetMyReservations lists the caller's own reservations, newest slot first.
func (rc *ReservationController) GetMyReservations(c *gin.Context) {
	userID, _ := currentUser(c)

	query := rc.DB.Preload("Restaurant").Preload("Tables.Table").
		Where("user_id = ?", userID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var reservations []models.Reservation
	if err := query.Order("reservation_date desc, reservation_time desc").
		Find(&reservations).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Your reservations", reservations)
}

// GetReservations lists a restaurant's reservations for its staff, with
// optional date and status filters.
func (rc *ReservationController) GetReservations(c *gin.Context) {
	userID, role := currentUser(c)

	restaurantID, err := strconv.ParseUint(c.Query("restaurant_id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("restaurant_id query parameter is required"))
		return
	}
	if !worksAt(rc.DB, userID, role, uint(restaurantID)) {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	query := rc.DB.Preload("Tables.Table").
		Where("restaurant_id = ?", restaurantID)
	if date := c.Query("date"); date != "" {
		query = query.Where("reservation_date = ?", date)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var reservations []models.Reservation
	if err := query.Order("reservation_date asc, reservation_time asc").
		Find(&reservations).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of reservations", reservations)
}

func (rc *ReservationController) GetReservationByID(c *gin.Context) {
	userID, role := currentUser(c)

	id, err := strconv.ParseUint(c.Param("reservation_id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid reservation id"))
		return
	}

	reservation, err := rc.Service.Get(uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !rc.canManage(userID, role, reservation) {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Reservation detail", gin.H{
		"reservation": reservation,
		"can_cancel":  rc.Service.CanCancel(reservation),
	})
}

// GetReservationByCode is the guest lookup: the code is unguessable, so
// holding it is the authorization.
func (rc *ReservationController) GetReservationByCode(c *gin.Context) {
	reservation, err := rc.Service.GetByCode(c.Param("code"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation detail", gin.H{
		"reservation": reservation,
		"can_cancel":  rc.Service.CanCancel(reservation),
	})
}

// UpdateReservation edits reservation parameters; a changed slot, party
// size or restaurant re-runs allocation.
func (rc *ReservationController) UpdateReservation(c *gin.Context) {
	userID, role := currentUser(c)

	id, err := strconv.ParseUint(c.Param("reservation_id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid reservation id"))
		return
	}

	reservation, err := rc.Service.Get(uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !rc.canManage(userID, role, reservation) {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	var req struct {
		RestaurantID  *uint   `json:"restaurant_id"`
		Date          *string `json:"date"`
		Time          *string `json:"time"`
		PartySize     *int    `json:"party_size"`
		CustomerName  *string `json:"customer_name"`
		CustomerPhone *string `json:"customer_phone"`
		CustomerEmail *string `json:"customer_email"`
		Notes         *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	updated, err := rc.Service.Update(uint(id), services.UpdateReservationInput{
		RestaurantID:  req.RestaurantID,
		Date:          req.Date,
		Time:          req.Time,
		PartySize:     req.PartySize,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		Notes:         req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	events.BroadcastReservationUpdate(updated)
	utils.RespondJSON(c, http.StatusOK, "Reservation updated", updated)
}

// ConfirmReservation is a staff action: pending -> confirmed.
func (rc *ReservationController) ConfirmReservation(c *gin.Context) {
	userID, role := currentUser(c)

	id, err := strconv.ParseUint(c.Param("reservation_id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid reservation id"))
		return
	}

	reservation, err := rc.Service.Get(uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !worksAt(rc.DB, userID, role, reservation.RestaurantID) {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	confirmed, err := rc.Service.Confirm(uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	events.BroadcastReservationUpdate(confirmed)
	utils.InfoLogger.Printf("Reservation %s confirmed by user %d", confirmed.Code, userID)
	utils.RespondJSON(c, http.StatusOK, "Reservation confirmed", confirmed)
}

// CancelReservation frees the tables; allowed to the owner or staff, but
// never inside the 2-hour window before the slot.
func (rc *ReservationController) CancelReservation(c *gin.Context) {
	userID, role := currentUser(c)

	id, err := strconv.ParseUint(c.Param("reservation_id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid reservation id"))
		return
	}

	reservation, err := rc.Service.Get(uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !rc.canManage(userID, role, reservation) {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	cancelled, err := rc.Service.Cancel(uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	err = rc.DB.Transaction(func(tx *gorm.DB) error {
		if cancelled.UserID == nil {
			return nil
		}
		notification := models.Notification{
			UserID:        *cancelled.UserID,
			ReservationID: cancelled.ID,
			Type:          models.NotificationCancellation,
			Title:         "Reservation cancelled",
			Message: "Your reservation on " + cancelled.ReservationDate +
				" at " + cancelled.ReservationTime + " has been cancelled.",
		}
		return tx.Create(&notification).Error
	})
	if err != nil {
		utils.ErrorLogger.Printf("Failed to write cancellation notification: %v", err)
	}

	events.BroadcastReservationUpdate(cancelled)
	utils.InfoLogger.Printf("Reservation %s cancelled by user %d", cancelled.Code, userID)
	utils.RespondJSON(c, http.StatusOK, "Reservation cancelled", cancelled)
}

// ConcludeReservation is a staff action: confirmed -> concluded after the
// visit happened.
func (rc *ReservationController) ConcludeReservation(c *gin.Context) {
	userID, role := currentUser(c)

	id, err := strconv.ParseUint(c.Param("reservation_id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid reservation id"))
		return
	}

	reservation, err := rc.Service.Get(uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !worksAt(rc.DB, userID, role, reservation.RestaurantID) {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	concluded, err := rc.Service.Conclude(uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	events.BroadcastReservationUpdate(concluded)
	utils.RespondJSON(c, http.StatusOK, "Reservation concluded", concluded)
}

// GetReservationStats returns per-status counts for one restaurant and
// day, used by the staff dashboard.
func (rc *ReservationController) GetReservationStats(c *gin.Context) {
	userID, role := currentUser(c)

	restaurantID, err := strconv.ParseUint(c.Query("restaurant_id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("restaurant_id query parameter is required"))
		return
	}
	if !worksAt(rc.DB, userID, role, uint(restaurantID)) {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	date := c.Query("date")
	if date == "" {
		date = rc.Service.Clock.Now().Format(services.DateLayout)
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var rows []statusCount
	if err := rc.DB.Model(&models.Reservation{}).
		Select("status, COUNT(*) as count").
		Where("restaurant_id = ? AND reservation_date = ?", restaurantID, date).
		Group("status").Scan(&rows).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	stats := gin.H{
		"date":      date,
		"pending":   int64(0),
		"confirmed": int64(0),
		"cancelled": int64(0),
		"concluded": int64(0),
	}
	for _, row := range rows {
		stats[row.Status] = row.Count
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation stats", stats)
}
