package websocket

import (
	"encoding/json"
	"sync"

	"github.com/jpark/addressbook-backend/internal/app/model"
	"github.com/jpark/addressbook-backend/pkg/logger"
)

// Address change event types
const (
	EventAddressCreated = "address.created"
	EventAddressUpdated = "address.updated"
	EventAddressDeleted = "address.deleted"
)

// Event is the message broadcast to subscribers whenever the address book
// changes.
type Event struct {
	Type    string         `json:"type"`
	Address *model.Address `json:"address,omitempty"`
	ID      uint           `json:"id,omitempty"` // set for deletions
}

// Hub manages WebSocket subscribers to the address change feed
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	mu         sync.RWMutex
}

// NewHub creates a Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan []byte, 1024),
	}
}

// Run processes register/unregister/broadcast events. Call in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			logger.Debug("WebSocket client registered", map[string]interface{}{
				"clients": h.ClientCount(),
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			logger.Debug("WebSocket client unregistered", map[string]interface{}{
				"clients": h.ClientCount(),
			})

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					// Slow consumer, drop the message rather than block the hub
					logger.Warn("Dropping event for slow WebSocket client", nil)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Publish broadcasts an address change event to all subscribers
func (h *Hub) Publish(event Event) {
	message, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal address event", err, map[string]interface{}{
			"type": event.Type,
		})
		return
	}

	select {
	case h.broadcast <- message:
	default:
		logger.Warn("Event broadcast queue full, dropping event", map[string]interface{}{
			"type": event.Type,
		})
	}
}

// ClientCount returns the number of connected subscribers
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
