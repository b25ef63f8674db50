package Controllers_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/reservation-app/models"
	"github.com/yeremiapane/reservation-app/services"
	"github.com/yeremiapane/reservation-app/utils"
)

// testClockNow keeps HTTP-level scenarios on a frozen clock.
var testClockNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.Local)

// setupTestDB menggunakan SQLite in-memory untuk testing
func setupTestDB(t *testing.T) *gorm.DB {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:ctrl_%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Restaurant{},
		&models.RestaurantStaff{},
		&models.Table{},
		&models.Reservation{},
		&models.ReservationTable{},
		&models.Notification{},
		&models.MaintenanceLog{},
	))
	return db
}

func newFakeClockService(db *gorm.DB) *services.ReservationService {
	return &services.ReservationService{
		DB:    db,
		Clock: clockwork.NewFakeClockAt(testClockNow),
	}
}

func createTestUser(t *testing.T, db *gorm.DB, email, role string) (models.User, string) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		Name:     "Test User",
		Email:    email,
		Password: string(hashed),
		Role:     role,
	}
	require.NoError(t, db.Create(&user).Error)

	token, err := utils.GenerateToken(user.ID, user.Role)
	require.NoError(t, err)
	return user, token
}

func createTestRestaurant(t *testing.T, db *gorm.DB, ownerID uint, tableCount int) models.Restaurant {
	restaurant := models.Restaurant{
		Name:    "Cantina do Porto",
		Address: "42 Harbor Rd",
		City:    "Porto Alegre",
		State:   "RS",
		Email:   fmt.Sprintf("cantina-%s@example.com", strings.ReplaceAll(t.Name(), "/", "_")),
		OwnerID: ownerID,
		Active:  true,
	}
	require.NoError(t, db.Create(&restaurant).Error)

	for i := 1; i <= tableCount; i++ {
		table := models.Table{
			RestaurantID: restaurant.ID,
			Number:       i,
			Status:       models.TableAvailable,
			Active:       true,
		}
		require.NoError(t, db.Create(&table).Error)
	}
	return restaurant
}
