package middlewares

import (
	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/reservation-app/utils"
)

// AuditLoggerMiddleware traces reservation lifecycle actions together with
// the acting user and the outcome.
func AuditLoggerMiddleware(action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")
		reservationID := c.Param("reservation_id")
		utils.InfoLogger.Printf("User %d attempting to %s reservation %s", userID, action, reservationID)

		c.Next()

		if c.Writer.Status() >= 200 && c.Writer.Status() < 300 {
			utils.InfoLogger.Printf("User %d: %s succeeded for reservation %s", userID, action, reservationID)
		} else {
			utils.ErrorLogger.Printf("User %d: %s failed for reservation %s (status %d)",
				userID, action, reservationID, c.Writer.Status())
		}
	}
}
