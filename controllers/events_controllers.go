package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yeremiapane/reservation-app/events"
	"github.com/yeremiapane/reservation-app/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS is enforced at the middleware layer.
		return true
	},
}

// HandleEventsSocket upgrades the connection and keeps it registered in the
// hub until the client disconnects. Events are pushed by the controllers;
// inbound frames are only read to detect the close.
func HandleEventsSocket(c *gin.Context) {
	_, role := currentUser(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	events.RegisterClient(conn, role)
	utils.InfoLogger.Printf("Dashboard client connected (role=%s)", role)

	defer func() {
		events.UnregisterClient(conn)
		utils.InfoLogger.Printf("Dashboard client disconnected (role=%s)", role)
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
