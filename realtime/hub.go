package realtime

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Event types
const (
	EventTableUpdate       = "table_update"
	EventSessionStart      = "session_start"
	EventSessionStop       = "session_stop"
	EventQueueUpdate       = "queue_update"
	EventReservationUpdate = "reservation_update"
	EventStaffNotif        = "staff_notification"
	EventDashboardUpdate   = "dashboard_update"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub menampung semua client dashboard staff dan menyiarkan perubahan status
// meja/session/antrean secara real-time.
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]string),
}

// RegisterClient menambahkan connection ke set dengan role-nya.
func RegisterClient(conn *websocket.Conn, role string) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = role
}

// UnregisterClient melepaskan connection.
func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

func BroadcastTableUpdate(table interface{}) {
	broadcast(Message{Event: EventTableUpdate, Data: table})
}

func BroadcastSessionStart(data interface{}) {
	broadcast(Message{Event: EventSessionStart, Data: data})
}

func BroadcastSessionStop(data interface{}) {
	broadcast(Message{Event: EventSessionStop, Data: data})
}

func BroadcastQueueUpdate(data interface{}) {
	broadcast(Message{Event: EventQueueUpdate, Data: data})
}

func BroadcastReservationUpdate(data interface{}) {
	broadcast(Message{Event: EventReservationUpdate, Data: data})
}

func BroadcastStaffNotification(message string) {
	broadcast(Message{Event: EventStaffNotif, Data: message})
}

func BroadcastDashboardUpdate(data interface{}) {
	broadcast(Message{Event: EventDashboardUpdate, Data: data})
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
