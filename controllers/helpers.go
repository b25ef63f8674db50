package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/reservation-app/models"
	"github.com/yeremiapane/reservation-app/services"
	"github.com/yeremiapane/reservation-app/utils"
)

// ErrNoPermission is the generic authorization failure.
var ErrNoPermission = &CustomError{"You do not have permission"}

type CustomError struct {
	Message string
}

func (e *CustomError) Error() string {
	return e.Message
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	var (
		validation *services.ValidationError
		notFound   *services.NotFoundError
		capacity   *services.InsufficientCapacityError
		transition *services.InvalidTransitionError
	)

	switch {
	case errors.As(err, &capacity):
		c.JSON(http.StatusConflict, utils.JSONResponse{
			Status:  false,
			Message: capacity.Error(),
			Data: gin.H{
				"tables_needed":    capacity.Needed,
				"tables_available": capacity.Available,
			},
		})
	case errors.As(err, &validation):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.As(err, &transition):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.As(err, &notFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, services.ErrForbidden):
		utils.RespondError(c, http.StatusForbidden, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}

func currentUser(c *gin.Context) (uint, string) {
	return c.GetUint("user_id"), c.GetString("role")
}

// isAdminFor resolves whether the caller administrates the restaurant:
// system_admin everywhere, secondary_admin only at restaurants they own or
// are assigned to.
func isAdminFor(db *gorm.DB, userID uint, role string, restaurantID uint) bool {
	if role == models.RoleSystemAdmin {
		return true
	}
	if role != models.RoleSecondaryAdmin {
		return false
	}

	var count int64
	db.Model(&models.Restaurant{}).
		Where("id = ? AND owner_id = ?", restaurantID, userID).
		Count(&count)
	if count > 0 {
		return true
	}
	db.Model(&models.RestaurantStaff{}).
		Where("restaurant_id = ? AND user_id = ? AND role = ?",
			restaurantID, userID, models.RoleSecondaryAdmin).
		Count(&count)
	return count > 0
}

// worksAt reports whether the caller is staff (or above) at the restaurant.
func worksAt(db *gorm.DB, userID uint, role string, restaurantID uint) bool {
	if isAdminFor(db, userID, role, restaurantID) {
		return true
	}
	if role != models.RoleStaff {
		return false
	}
	var count int64
	db.Model(&models.RestaurantStaff{}).
		Where("restaurant_id = ? AND user_id = ?", restaurantID, userID).
		Count(&count)
	return count > 0
}
