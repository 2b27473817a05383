// Package realtime pushes write notifications to connected clients over
// WebSocket or Server-Sent Events. It is a read-only fan-out: clients never
// mutate documents through this channel.
package realtime

import (
	"context"
	"sync"

	"doodledocs/internal/document"
)

// Hub maintains the set of active clients and fans notifications out to
// their subscriptions.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Inbound notifications to fan out.
	broadcast chan document.Notification

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan document.Notification),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
		case n := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				client.mu.Lock()
				for subID, sub := range client.subscriptions {
					if sub.DocumentID != "" && sub.DocumentID != n.DocumentID {
						continue
					}
					msg := BaseMessage{
						Type:    TypeEvent,
						Payload: mustMarshal(EventPayload{SubID: subID, Notification: n}),
					}
					select {
					case client.send <- msg:
					default:
						// Slow client; drop rather than stall the hub.
					}
				}
				client.mu.Unlock()
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) Broadcast(n document.Notification) {
	h.broadcast <- n
}
