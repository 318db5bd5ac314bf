package websocket

import (
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

// Event is a message pushed to a connected client
type Event struct {
	Type    string      `json:"type"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Client represents a connected WebSocket client
type Client struct {
	Handle string
	Conn   *websocket.Conn
}

// Hub maintains the set of active clients keyed by user handle. A handle
// may have several connections (one per device).
type Hub struct {
	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.Handle] == nil {
				h.clients[client.Handle] = make(map[*Client]bool)
			}
			h.clients[client.Handle][client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.clients[client.Handle]; ok {
				if _, ok := conns[client]; ok {
					delete(conns, client)
					if len(conns) == 0 {
						delete(h.clients, client.Handle)
					}
				}
			}
			client.Conn.Close()
			h.mu.Unlock()
		}
	}
}

// Register queues a client for registration
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister queues a client for removal and closes its connection
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// SendToHandle delivers an event to every connection of a handle
func (h *Hub) SendToHandle(handle string, event Event) error {
	h.mu.RLock()
	conns := make([]*Client, 0, len(h.clients[handle]))
	for client := range h.clients[handle] {
		conns = append(conns, client)
	}
	h.mu.RUnlock()

	if len(conns) == 0 {
		return fmt.Errorf("user not connected")
	}

	for _, client := range conns {
		if err := client.Conn.WriteJSON(event); err != nil {
			h.Unregister(client)
		}
	}
	return nil
}

// Connected reports whether a handle has at least one open connection
func (h *Hub) Connected(handle string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[handle]) > 0
}
