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

type TableController struct {
	DB      *gorm.DB
	Service *services.ReservationService
}

func NewTableController(db *gorm.DB, svc *services.ReservationService) *TableController {
	return &TableController{DB: db, Service: svc}
}

// CreateTable adds a table to a restaurant. Numbers are unique per
// restaurant; every table seats four.
func (tc *TableController) CreateTable(c *gin.Context) {
	userID, role := currentUser(c)

	var restaurant models.Restaurant
	if err := tc.DB.First(&restaurant, c.Param("restaurant_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if !isAdminFor(tc.DB, userID, role, restaurant.ID) {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	var req struct {
		Number int `json:"number" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table := models.Table{
		RestaurantID: restaurant.ID,
		Number:       req.Number,
		Status:       models.TableAvailable,
		Active:       true,
	}
	if err := tc.DB.Create(&table).Error; err != nil {
		utils.RespondError(c, http.StatusConflict, errors.New("a table with this number already exists at this restaurant"))
		return
	}

	events.BroadcastTableCreate(table)
	utils.InfoLogger.Printf("Table %d created at restaurant %d", table.Number, restaurant.ID)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// GetTables lists a restaurant's tables ordered by number. Deactivated
// tables only show up for staff asking with ?include_inactive=true.
func (tc *TableController) GetTables(c *gin.Context) {
	userID, role := currentUser(c)

	var restaurant models.Restaurant
	if err := tc.DB.First(&restaurant, c.Param("restaurant_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	query := tc.DB.Where("restaurant_id = ?", restaurant.ID)
	if c.Query("include_inactive") != "true" || !worksAt(tc.DB, userID, role, restaurant.ID) {
		query = query.Where("active = ?", true)
	}
	if status := c.Query("status"); status != "" {
		if !models.ValidTableStatus(status) {
			utils.RespondError(c, http.StatusBadRequest, errors.New("unknown table status"))
			return
		}
		query = query.Where("status = ?", status)
	}

	var tables []models.Table
	if err := query.Order("number asc").Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

func (tc *TableController) GetTableByID(c *gin.Context) {
	var table models.Table
	if err := tc.DB.First(&table, c.Param("table_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// UpdateTableStatus flips a table between available / occupied /
// maintenance and records the change in the maintenance log.
func (tc *TableController) UpdateTableStatus(c *gin.Context) {
	userID, role := currentUser(c)

	var table models.Table
	if err := tc.DB.First(&table, c.Param("table_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if !worksAt(tc.DB, userID, role, table.RestaurantID) {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
		Notes  string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if !models.ValidTableStatus(req.Status) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("status must be available, occupied or maintenance"))
		return
	}

	fromStatus := table.Status
	err := tc.DB.Transaction(func(tx *gorm.DB) error {
		table.Status = req.Status
		if err := tx.Save(&table).Error; err != nil {
			return err
		}
		logEntry := models.MaintenanceLog{
			TableID:    table.ID,
			UserID:     userID,
			FromStatus: fromStatus,
			ToStatus:   req.Status,
			Notes:      req.Notes,
		}
		return tx.Create(&logEntry).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	events.BroadcastTableUpdate(table)
	utils.InfoLogger.Printf("Table %d status %s -> %s by user %d", table.ID, fromStatus, table.Status, userID)
	utils.RespondJSON(c, http.StatusOK, "Table status updated", table)
}

// ToggleActive removes a table from (or returns it to) the reservable
// pool without deleting its history.
func (tc *TableController) ToggleActive(c *gin.Context) {
	userID, role := currentUser(c)

	var table models.Table
	if err := tc.DB.First(&table, c.Param("table_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if !isAdminFor(tc.DB, userID, role, table.RestaurantID) {
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

	table.Active = *body.Active
	if err := tc.DB.Save(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	events.BroadcastTableUpdate(table)
	utils.RespondJSON(c, http.StatusOK, "Table status updated", table)
}

func (tc *TableController) DeleteTable(c *gin.Context) {
	userID, role := currentUser(c)

	var table models.Table
	if err := tc.DB.First(&table, c.Param("table_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if !isAdminFor(tc.DB, userID, role, table.RestaurantID) {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	var links int64
	tc.DB.Model(&models.ReservationTable{}).Where("table_id = ?", table.ID).Count(&links)
	if links > 0 {
		utils.RespondError(c, http.StatusConflict, errors.New("table has reservation history; deactivate it instead"))
		return
	}

	if err := tc.DB.Delete(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	events.BroadcastTableDelete(table.ID)
	utils.RespondJSON(c, http.StatusOK, "Table deleted", gin.H{"id": table.ID})
}

// GetAvailability reports the free tables for a future slot. With
// party_size the response also says how many tables that party needs and
// whether the slot can host it.
func (tc *TableController) GetAvailability(c *gin.Context) {
	restaurantID, err := strconv.ParseUint(c.Param("restaurant_id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid restaurant id"))
		return
	}

	date := c.Query("date")
	timeStr := c.Query("time")
	if date == "" || timeStr == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("date and time query parameters are required"))
		return
	}

	tables, err := tc.Service.Availability(uint(restaurantID), date, timeStr)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	data := gin.H{
		"tables": tables,
		"count":  len(tables),
	}
	if partyParam := c.Query("party_size"); partyParam != "" {
		partySize, err := strconv.Atoi(partyParam)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("party_size must be a number"))
			return
		}
		needed, err := services.TablesNeeded(partySize)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		data["tables_needed"] = needed
		data["sufficient"] = len(tables) >= needed
	}

	utils.RespondJSON(c, http.StatusOK, "Availability for requested slot", data)
}

// GetMaintenanceLog lists status changes for a table, newest first.
func (tc *TableController) GetMaintenanceLog(c *gin.Context) {
	userID, role := currentUser(c)

	var table models.Table
	if err := tc.DB.First(&table, c.Param("table_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if !worksAt(tc.DB, userID, role, table.RestaurantID) {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	var logs []models.MaintenanceLog
	if err := tc.DB.Where("table_id = ?", table.ID).
		Order("created_at desc").Find(&logs).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Maintenance history", logs)
}
