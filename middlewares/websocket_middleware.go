package middlewares

import (
	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/reservation-app/utils"
)

// WebSocketAuthMiddleware authenticates dashboard socket upgrades via a
// token query parameter (browsers cannot set headers on ws connects).
func WebSocketAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.AbortWithStatus(401)
			return
		}

		claims, err := utils.ValidateToken(token)
		if err != nil {
			c.AbortWithStatus(401)
			return
		}

		c.Set("role", claims.Role)
		c.Set("user_id", claims.UserID)

		c.Next()
	}
}
