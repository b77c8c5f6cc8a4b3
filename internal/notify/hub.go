// Package notify pushes workflow events to connected browser clients so
// seller worklists and dashboards refresh without polling.
package notify

import (
	"encoding/json"
	"log"
	"sync"
)

// Event is one workflow notification.
type Event struct {
	// Type is "protocol.finalized", "protocol.completed" or "protocol.deleted".
	Type string `json:"type"`
	Kind string `json:"kind"`
	ID   string `json:"id"`
	// Kod carries the access code on finalize events.
	Kod string `json:"kod,omitempty"`
}

// Hub maintains the set of active clients and broadcasts events to them.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		clients:    make(map[*Client]bool),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Printf("🔔 Notify client connected: %s", client.User)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Printf("🔕 Notify client disconnected: %s", client.User)
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Buffer full or client dead; drop the event for them
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Publish broadcasts an event to every connected client.
func (h *Hub) Publish(ev Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		log.Printf("Error marshaling event: %v", err)
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		log.Printf("⚠️ Notify broadcast buffer full, dropping %s", ev.Type)
	}
}
