package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/reservation-app/models"
	"github.com/yeremiapane/reservation-app/utils"
)

type RestaurantController struct {
	DB *gorm.DB
}

func NewRestaurantController(db *gorm.DB) *RestaurantController {
	return &RestaurantController{DB: db}
}

// CreateRestaurant registers a restaurant. System admins may create for any
// owner; other callers become the owner themselves and are promoted to
// secondary admin.
func (rc *RestaurantController) CreateRestaurant(c *gin.Context) {
	userID, role := currentUser(c)

	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		Address     string `json:"address" binding:"required"`
		City        string `json:"city" binding:"required"`
		State       string `json:"state" binding:"required,len=2"`
		PostalCode  string `json:"postal_code"`
		Phone       string `json:"phone"`
		Email       string `json:"email" binding:"required,email"`
		OwnerID     *uint  `json:"owner_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	ownerID := userID
	if req.OwnerID != nil {
		if role != models.RoleSystemAdmin {
			utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
			return
		}
		ownerID = *req.OwnerID
	}

	restaurant := models.Restaurant{
		Name:        req.Name,
		Description: req.Description,
		Address:     req.Address,
		City:        req.City,
		State:       req.State,
		PostalCode:  req.PostalCode,
		Phone:       req.Phone,
		Email:       req.Email,
		OwnerID:     ownerID,
		Active:      true,
	}

	err := rc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&restaurant).Error; err != nil {
			return err
		}
		// An owner who was a plain customer now administrates a restaurant.
		if role == models.RoleCustomer && ownerID == userID {
			return tx.Model(&models.User{}).
				Where("id = ?", userID).
				Update("role", models.RoleSecondaryAdmin).Error
		}
		return nil
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Restaurant created: %s (owner=%d)", restaurant.Name, restaurant.OwnerID)
	utils.RespondJSON(c, http.StatusCreated, "Restaurant created successfully", restaurant)
}

// GetAllRestaurants lists active restaurants; admins may also see inactive
// ones with ?include_inactive=true.
func (rc *RestaurantController) GetAllRestaurants(c *gin.Context) {
	_, role := currentUser(c)

	query := rc.DB.Model(&models.Restaurant{})
	if c.Query("include_inactive") != "true" || role != models.RoleSystemAdmin {
		query = query.Where("active = ?", true)
	}
	if city := c.Query("city"); city != "" {
		query = query.Where("city = ?", city)
	}

	var restaurants []models.Restaurant
	if err := query.Order("name asc").Find(&restaurants).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of restaurants", restaurants)
}

func (rc *RestaurantController) GetRestaurantByID(c *gin.Context) {
	var restaurant models.Restaurant
	if err := rc.DB.Preload("Owner").First(&restaurant, c.Param("restaurant_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant detail", restaurant)
}

func (rc *RestaurantController) UpdateRestaurant(c *gin.Context) {
	userID, role := currentUser(c)

	var restaurant models.Restaurant
	if err := rc.DB.First(&restaurant, c.Param("restaurant_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if !isAdminFor(rc.DB, userID, role, restaurant.ID) {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Address     *string `json:"address"`
		City        *string `json:"city"`
		State       *string `json:"state"`
		PostalCode  *string `json:"postal_code"`
		Phone       *string `json:"phone"`
		Email       *string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		restaurant.Name = *req.Name
	}
	if req.Description != nil {
		restaurant.Description = *req.Description
	}
	if req.Address != nil {
		restaurant.Address = *req.Address
	}
	if req.City != nil {
		restaurant.City = *req.City
	}
	if req.State != nil {
		restaurant.State = *req.State
	}
	if req.PostalCode != nil {
		restaurant.PostalCode = *req.PostalCode
	}
	if req.Phone != nil {
		restaurant.Phone = *req.Phone
	}
	if req.Email != nil {
		restaurant.Email = *req.Email
	}

	if err := rc.DB.Save(&restaurant).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant updated", restaurant)
}

// ToggleActive activates/deactivates a restaurant. Inactive restaurants
// reject new reservations.
func (rc *RestaurantController) ToggleActive(c *gin.Context) {
	userID, role := currentUser(c)

	var restaurant models.Restaurant
	if err := rc.DB.First(&restaurant, c.Param("restaurant_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if !isAdminFor(rc.DB, userID, role, restaurant.ID) {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	var body struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("the 'active' field must be a boolean"))
		return
	}

	restaurant.Active = *body.Active
	if err := rc.DB.Save(&restaurant).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Restaurant %d active=%v", restaurant.ID, restaurant.Active)
	utils.RespondJSON(c, http.StatusOK, "Restaurant status updated", restaurant)
}

// DeleteRestaurant removes the restaurant; tables and reservations cascade.
func (rc *RestaurantController) DeleteRestaurant(c *gin.Context) {
	_, role := currentUser(c)
	if role != models.RoleSystemAdmin {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	var restaurant models.Restaurant
	if err := rc.DB.First(&restaurant, c.Param("restaurant_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if err := rc.DB.Select("Tables", "Reservations").Delete(&restaurant).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Restaurant %d deleted", restaurant.ID)
	utils.RespondJSON(c, http.StatusOK, "Restaurant deleted", gin.H{"id": restaurant.ID})
}

// AddStaff links a user to the restaurant as staff or secondary_admin.
func (rc *RestaurantController) AddStaff(c *gin.Context) {
	userID, role := currentUser(c)

	var restaurant models.Restaurant
	if err := rc.DB.First(&restaurant, c.Param("restaurant_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if !isAdminFor(rc.DB, userID, role, restaurant.ID) {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	var req struct {
		UserID uint   `json:"user_id" binding:"required"`
		Role   string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Role == "" {
		req.Role = models.RoleStaff
	}
	if req.Role != models.RoleStaff && req.Role != models.RoleSecondaryAdmin {
		utils.RespondError(c, http.StatusBadRequest, errors.New("staff role must be staff or secondary_admin"))
		return
	}

	var member models.User
	if err := rc.DB.First(&member, req.UserID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	assignment := models.RestaurantStaff{
		RestaurantID: restaurant.ID,
		UserID:       member.ID,
		Role:         req.Role,
	}
	err := rc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&assignment).Error; err != nil {
			return err
		}
		if member.Role == models.RoleCustomer {
			return tx.Model(&models.User{}).
				Where("id = ?", member.ID).
				Update("role", req.Role).Error
		}
		return nil
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("User %d linked to restaurant %d as %s", member.ID, restaurant.ID, req.Role)
	utils.RespondJSON(c, http.StatusCreated, "Staff member added", assignment)
}

func (rc *RestaurantController) ListStaff(c *gin.Context) {
	userID, role := currentUser(c)

	var restaurant models.Restaurant
	if err := rc.DB.First(&restaurant, c.Param("restaurant_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if !worksAt(rc.DB, userID, role, restaurant.ID) {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	var staff []models.RestaurantStaff
	if err := rc.DB.Preload("User").
		Where("restaurant_id = ?", restaurant.ID).
		Find(&staff).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant staff", staff)
}
