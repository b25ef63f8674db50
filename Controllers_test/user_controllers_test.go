package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/yeremiapane/reservation-app/controllers"
	"github.com/yeremiapane/reservation-app/middlewares"
	"github.com/yeremiapane/reservation-app/models"
)

func setupUserRouter(db *gorm.DB) *gin.Engine {
	router := gin.Default()
	userCtrl := controllers.NewUserController(db)
	router.POST("/register", userCtrl.Register)
	router.POST("/login", userCtrl.Login)

	auth := router.Group("/")
	auth.Use(middlewares.AuthMiddleware())
	auth.GET("/profile", userCtrl.GetProfile)
	auth.GET("/users", userCtrl.GetAllUsers)
	return router
}

func TestRegisterAndLogin(t *testing.T) {
	db := setupTestDB(t)
	router := setupUserRouter(db)

	payload := map[string]string{
		"name":     "Maria Silva",
		"email":    "maria@example.com",
		"password": "supersecret1",
	}
	body, _ := json.Marshal(payload)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	// Public registration never yields an elevated role.
	var user models.User
	assert.NoError(t, db.Where("email = ?", "maria@example.com").First(&user).Error)
	assert.Equal(t, models.RoleCustomer, user.Role)

	login := map[string]string{"email": "maria@example.com", "password": "supersecret1"}
	body, _ = json.Marshal(login)
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	assert.NotEmpty(t, data["token"])
	assert.Equal(t, models.RoleCustomer, data["user_role"])
}

func TestLoginWrongPassword(t *testing.T) {
	db := setupTestDB(t)
	router := setupUserRouter(db)
	createTestUser(t, db, "wrongpass@example.com", models.RoleCustomer)

	login := map[string]string{"email": "wrongpass@example.com", "password": "not-the-password"}
	body, _ := json.Marshal(login)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	db := setupTestDB(t)
	router := setupUserRouter(db)

	payload := map[string]string{
		"name":     "Maria Silva",
		"email":    "short@example.com",
		"password": "short",
	}
	body, _ := json.Marshal(payload)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetProfileRequiresToken(t *testing.T) {
	db := setupTestDB(t)
	router := setupUserRouter(db)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/profile", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	_, token := createTestUser(t, db, "profile@example.com", models.RoleCustomer)
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetAllUsersRestrictedToSystemAdmin(t *testing.T) {
	db := setupTestDB(t)
	router := setupUserRouter(db)

	_, customerToken := createTestUser(t, db, "plain@example.com", models.RoleCustomer)
	_, adminToken := createTestUser(t, db, "root@example.com", models.RoleSystemAdmin)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/users", nil)
	req.Header.Set("Authorization", "Bearer "+customerToken)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/users", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
