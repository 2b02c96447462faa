package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/auto-service/models"
	"github.com/yeremiapane/auto-service/utils"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type client struct {
	accountID uint
	role      models.Role
}

// writeWait bounds a single write so a stalled client cannot hold the hub.
const writeWait = 5 * time.Second

// Hub keeps the open websocket connections of logged in accounts.
type Hub struct {
	clients   map[*websocket.Conn]client
	mutex     sync.Mutex
	writeWait time.Duration
}

func New() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]client), writeWait: writeWait}
}

// RegisterClient -> menambahkan connection ke set dengan account
func (h *Hub) RegisterClient(conn *websocket.Conn, accountID uint, role models.Role) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = client{accountID: accountID, role: role}
}

// UnregisterClient -> melepaskan connection
func (h *Hub) UnregisterClient(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

// Connected reports how many connections an account has open.
func (h *Hub) Connected(accountID uint) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	n := 0
	for _, c := range h.clients {
		if c.accountID == accountID {
			n++
		}
	}
	return n
}

// PushToAccount sends an event to every connection of one account.
func (h *Hub) PushToAccount(accountID uint, event string, data interface{}) {
	h.send(Message{Event: event, Data: data}, func(c client) bool {
		return c.accountID == accountID
	})
}

// BroadcastToRoles sends an event to every connection whose account has one of roles.
func (h *Hub) BroadcastToRoles(event string, data interface{}, roles ...models.Role) {
	h.send(Message{Event: event, Data: data}, func(c client) bool {
		for _, r := range roles {
			if c.role == r {
				return true
			}
		}
		return false
	})
}

func (h *Hub) send(msg Message, match func(client) bool) {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling message: %v", err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn, c := range h.clients {
		if !match(c) {
			continue
		}
		conn.SetWriteDeadline(time.Now().Add(h.writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Printf("Error sending %s to account %d: %v", msg.Event, c.accountID, err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}
