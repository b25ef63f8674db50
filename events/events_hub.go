package events

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/yeremiapane/reservation-app/models"
)

// Event types pushed to connected dashboards.
const (
	EventReservationCreate = "reservation_create"
	EventReservationUpdate = "reservation_update"
	EventTableCreate       = "table_create"
	EventTableUpdate       = "table_update"
	EventTableDelete       = "table_delete"
	EventDashboardUpdate   = "dashboard_update"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub holds every connected dashboard client (staff/admin) keyed by role.
type Hub struct {
	clients map[*websocket.Conn]string
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]string),
}

func RegisterClient(conn *websocket.Conn, role string) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = role
}

func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// BroadcastReservationCreate announces a freshly allocated reservation.
func BroadcastReservationCreate(reservation *models.Reservation) {
	broadcast(Message{
		Event: EventReservationCreate,
		Data:  reservation,
	})
}

// BroadcastReservationUpdate announces a lifecycle or parameter change.
func BroadcastReservationUpdate(reservation *models.Reservation) {
	broadcast(Message{
		Event: EventReservationUpdate,
		Data:  reservation,
	})
}

func BroadcastTableCreate(table models.Table) {
	broadcast(Message{
		Event: EventTableCreate,
		Data:  table,
	})
}

func BroadcastTableUpdate(table models.Table) {
	broadcast(Message{
		Event: EventTableUpdate,
		Data:  table,
	})
}

func BroadcastTableDelete(tableID uint) {
	broadcast(Message{
		Event: EventTableDelete,
		Data:  map[string]interface{}{"table_id": tableID},
	})
}

func BroadcastDashboardUpdate(data interface{}) {
	broadcast(Message{
		Event: EventDashboardUpdate,
		Data:  data,
	})
}

func BroadcastMessage(msg Message) {
	broadcast(msg)
}

func broadcast(msg Message) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	for conn := range hub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("Error sending message to client: %v", err)
			continue
		}
	}
}
