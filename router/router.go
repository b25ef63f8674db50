package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/reservation-app/controllers"
	"github.com/yeremiapane/reservation-app/middlewares"
	"github.com/yeremiapane/reservation-app/models"
	"github.com/yeremiapane/reservation-app/services"
)

func SetupRouter(db *gorm.DB, reservationSvc *services.ReservationService) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	reportSvc := services.NewReportService(db)

	userCtrl := controllers.NewUserController(db)
	restaurantCtrl := controllers.NewRestaurantController(db)
	tableCtrl := controllers.NewTableController(db, reservationSvc)
	reservationCtrl := controllers.NewReservationController(db, reservationSvc)
	notificationCtrl := controllers.NewNotificationController(db)
	adminCtrl := controllers.NewAdminController(db, reportSvc, reservationSvc)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Rate limiter untuk login/register
	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// Browsing and guest lookup need no account.
	r.GET("/restaurants", restaurantCtrl.GetAllRestaurants)
	r.GET("/restaurants/:restaurant_id", restaurantCtrl.GetRestaurantByID)
	r.GET("/restaurants/:restaurant_id/tables", tableCtrl.GetTables)
	r.GET("/restaurants/:restaurant_id/availability", tableCtrl.GetAvailability)
	r.GET("/reservations/code/:code", reservationCtrl.GetReservationByCode)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/")
	auth.Use(middlewares.AuthMiddleware())

	auth.POST("/logout", userCtrl.Logout)
	auth.GET("/profile", userCtrl.GetProfile)
	auth.GET("/users", userCtrl.GetAllUsers)
	auth.PATCH("/users/:user_id/role", userCtrl.SetRole)

	// RESTAURANTS
	auth.POST("/restaurants", restaurantCtrl.CreateRestaurant)
	auth.PATCH("/restaurants/:restaurant_id", restaurantCtrl.UpdateRestaurant)
	auth.PATCH("/restaurants/:restaurant_id/active", restaurantCtrl.ToggleActive)
	auth.DELETE("/restaurants/:restaurant_id", restaurantCtrl.DeleteRestaurant)
	auth.GET("/restaurants/:restaurant_id/staff", restaurantCtrl.ListStaff)
	auth.POST("/restaurants/:restaurant_id/staff", restaurantCtrl.AddStaff)

	// TABLES
	auth.POST("/restaurants/:restaurant_id/tables", tableCtrl.CreateTable)
	auth.GET("/tables/:table_id", tableCtrl.GetTableByID)
	auth.PATCH("/tables/:table_id/status", tableCtrl.UpdateTableStatus)
	auth.PATCH("/tables/:table_id/active", tableCtrl.ToggleActive)
	auth.DELETE("/tables/:table_id", tableCtrl.DeleteTable)
	auth.GET("/tables/:table_id/maintenance-logs", tableCtrl.GetMaintenanceLog)

	// RESERVATIONS
	auth.POST("/reservations", reservationCtrl.CreateReservation)
	auth.GET("/reservations/mine", reservationCtrl.GetMyReservations)
	auth.GET("/reservations", reservationCtrl.GetReservations)
	auth.GET("/reservations/:reservation_id", reservationCtrl.GetReservationByID)
	auth.PATCH("/reservations/:reservation_id", reservationCtrl.UpdateReservation)
	auth.GET("/reservations/stats", reservationCtrl.GetReservationStats)

	// Lifecycle actions carry the audit trail.
	lifecycle := auth.Group("/reservations")
	{
		lifecycle.POST("/:reservation_id/confirm",
			middlewares.AuditLoggerMiddleware("confirm"), reservationCtrl.ConfirmReservation)
		lifecycle.POST("/:reservation_id/cancel",
			middlewares.AuditLoggerMiddleware("cancel"), reservationCtrl.CancelReservation)
		lifecycle.POST("/:reservation_id/conclude",
			middlewares.AuditLoggerMiddleware("conclude"), reservationCtrl.ConcludeReservation)
	}

	// NOTIFICATIONS
	auth.GET("/notifications", notificationCtrl.GetMyNotifications)
	auth.GET("/notifications/:notification_id", notificationCtrl.GetNotificationByID)
	auth.PATCH("/notifications/:notification_id/read", notificationCtrl.MarkRead)
	auth.PATCH("/notifications/read-all", notificationCtrl.MarkAllRead)
	auth.DELETE("/notifications/:notification_id", notificationCtrl.DeleteNotification)

	// ADMIN / REPORTS
	admin := auth.Group("/admin")
	admin.Use(middlewares.RequireRoles(models.RoleSecondaryAdmin, models.RoleStaff))
	{
		admin.GET("/dashboard/stats", adminCtrl.GetDashboardStats)
	}

	reports := auth.Group("/admin/reports")
	reports.Use(middlewares.RequireRoles(models.RoleSecondaryAdmin))
	{
		reports.GET("/occupancy", adminCtrl.GetOccupancyReport)
		reports.GET("/busiest-times", adminCtrl.GetBusiestTimes)
		reports.GET("/period-stats", adminCtrl.GetPeriodStats)
		reports.GET("/export", adminCtrl.ExportReservationsCSV)
		reports.GET("/export-pdf", adminCtrl.ExportReservationsPDF)
	}

	// WebSocket endpoint dengan middleware khusus
	wsGroup := r.Group("/ws")
	wsGroup.Use(middlewares.WebSocketAuthMiddleware())
	{
		wsGroup.GET("/dashboard", controllers.HandleEventsSocket)
	}

	return r
}
