package Controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yeremiapane/reservation-app/controllers"
	"github.com/yeremiapane/reservation-app/middlewares"
	"github.com/yeremiapane/reservation-app/models"
	"github.com/yeremiapane/reservation-app/services"
)

func setupTableRouter(db *gorm.DB, svc *services.ReservationService) *gin.Engine {
	router := gin.Default()
	tableCtrl := controllers.NewTableController(db, svc)

	router.GET("/restaurants/:restaurant_id/tables", tableCtrl.GetTables)
	router.GET("/restaurants/:restaurant_id/availability", tableCtrl.GetAvailability)

	auth := router.Group("/")
	auth.Use(middlewares.AuthMiddleware())
	auth.POST("/restaurants/:restaurant_id/tables", tableCtrl.CreateTable)
	auth.PATCH("/tables/:table_id/status", tableCtrl.UpdateTableStatus)
	return router
}

func TestGetTablesPublic(t *testing.T) {
	db := setupTestDB(t)
	owner, _ := createTestUser(t, db, "tbl-owner@example.com", models.RoleSecondaryAdmin)
	restaurant := createTestRestaurant(t, db, owner.ID, 3)
	router := setupTableRouter(db, newFakeClockService(db))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", fmt.Sprintf("/restaurants/%d/tables", restaurant.ID), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "List of tables", response["message"])
	assert.Len(t, response["data"].([]interface{}), 3)
}

func TestCreateTableRequiresAdmin(t *testing.T) {
	db := setupTestDB(t)
	owner, ownerToken := createTestUser(t, db, "tbl-admin@example.com", models.RoleSecondaryAdmin)
	_, customerToken := createTestUser(t, db, "tbl-cust@example.com", models.RoleCustomer)
	restaurant := createTestRestaurant(t, db, owner.ID, 0)
	router := setupTableRouter(db, newFakeClockService(db))

	body, _ := json.Marshal(map[string]int{"number": 7})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", fmt.Sprintf("/restaurants/%d/tables", restaurant.ID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+customerToken)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", fmt.Sprintf("/restaurants/%d/tables", restaurant.ID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+ownerToken)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	// Duplicate number at the same restaurant is rejected.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", fmt.Sprintf("/restaurants/%d/tables", restaurant.ID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+ownerToken)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUpdateTableStatusWritesMaintenanceLog(t *testing.T) {
	db := setupTestDB(t)
	owner, ownerToken := createTestUser(t, db, "tbl-maint@example.com", models.RoleSecondaryAdmin)
	restaurant := createTestRestaurant(t, db, owner.ID, 1)
	router := setupTableRouter(db, newFakeClockService(db))

	var table models.Table
	require.NoError(t, db.Where("restaurant_id = ?", restaurant.ID).First(&table).Error)

	body, _ := json.Marshal(map[string]string{
		"status": models.TableMaintenance,
		"notes":  "broken leg",
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PATCH", fmt.Sprintf("/tables/%d/status", table.ID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+ownerToken)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var logEntry models.MaintenanceLog
	require.NoError(t, db.Where("table_id = ?", table.ID).First(&logEntry).Error)
	assert.Equal(t, models.TableAvailable, logEntry.FromStatus)
	assert.Equal(t, models.TableMaintenance, logEntry.ToStatus)
	assert.Equal(t, owner.ID, logEntry.UserID)
}

func TestAvailabilityEndpoint(t *testing.T) {
	db := setupTestDB(t)
	owner, _ := createTestUser(t, db, "avail-owner@example.com", models.RoleSecondaryAdmin)
	restaurant := createTestRestaurant(t, db, owner.ID, 3)
	svc := newFakeClockService(db)
	router := setupTableRouter(db, svc)

	// A party of 10 holds all three tables at 19:00.
	_, err := svc.Create(services.CreateReservationInput{
		RestaurantID:  restaurant.ID,
		Date:          "2026-03-20",
		Time:          "19:00",
		PartySize:     10,
		CustomerName:  "Ana Souza",
		CustomerPhone: "555-0101",
	})
	require.NoError(t, err)

	url := fmt.Sprintf("/restaurants/%d/availability?date=2026-03-20&time=19:30&party_size=4", restaurant.ID)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", url, nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(0), data["count"])
	assert.Equal(t, float64(1), data["tables_needed"])
	assert.Equal(t, false, data["sufficient"])

	// Outside the conflict window everything is free again.
	url = fmt.Sprintf("/restaurants/%d/availability?date=2026-03-20&time=22:00&party_size=4", restaurant.ID)
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", url, nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data = response["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["count"])
	assert.Equal(t, true, data["sufficient"])

	// Past slots are rejected.
	url = fmt.Sprintf("/restaurants/%d/availability?date=2026-03-10&time=19:00", restaurant.ID)
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", url, nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
