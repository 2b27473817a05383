package realtime

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now
	},
}

// Client is a middleman between one connection and the hub.
type Client struct {
	hub *Hub

	// The websocket connection. Nil for SSE clients.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan BaseMessage

	subscriptions map[string]SubscribePayload
	mu            sync.Mutex
}

// readPump pumps messages from the websocket connection to the hub.
//
// The application runs readPump in a per-connection goroutine. The
// application ensures that there is at most one reader on a connection by
// executing all reads from this goroutine.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	slog.Info("WebSocket connection established")

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("WebSocket connection closed", "error", err)
			} else {
				slog.Info("WebSocket connection closed")
			}
			break
		}

		var msg BaseMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			slog.Warn("Failed to unmarshal websocket message", "error", err)
			continue
		}

		c.handleMessage(msg)
	}
}

func (c *Client) handleMessage(msg BaseMessage) {
	switch msg.Type {
	case TypeSubscribe:
		var payload SubscribePayload
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				c.send <- BaseMessage{
					ID:      msg.ID,
					Type:    TypeError,
					Payload: mustMarshal(ErrorPayload{Code: "bad_payload", Message: err.Error()}),
				}
				return
			}
		}
		c.mu.Lock()
		c.subscriptions[msg.ID] = payload
		c.mu.Unlock()
		slog.Info("Client subscribed", "sub_id", msg.ID, "document_id", payload.DocumentID)

		c.send <- BaseMessage{ID: msg.ID, Type: TypeSubscribeAck}
	case TypeUnsubscribe:
		var payload UnsubscribePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			slog.Warn("Failed to unmarshal unsubscribe payload", "error", err)
			return
		}
		c.mu.Lock()
		delete(c.subscriptions, payload.ID)
		c.mu.Unlock()
		c.send <- BaseMessage{ID: msg.ID, Type: TypeUnsubscribeAck}
	default:
		c.send <- BaseMessage{
			ID:      msg.ID,
			Type:    TypeError,
			Payload: mustMarshal(ErrorPayload{Code: "unknown_type", Message: msg.Type}),
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
//
// A goroutine running writePump is started for each connection. The
// application ensures that there is at most one writer to a connection by
// executing all writes from this goroutine.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs handles websocket requests from the peer.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("WebSocket upgrade failed", "error", err)
		return
	}
	client := &Client{
		hub:           hub,
		conn:          conn,
		send:          make(chan BaseMessage, 256),
		subscriptions: make(map[string]SubscribePayload),
	}
	client.hub.register <- client

	// Allow collection of memory referenced by the caller by doing all work
	// in new goroutines.
	go client.writePump()
	go client.readPump()
}

// ServeSSE handles Server-Sent Events requests. An optional document_id
// query parameter narrows the stream to one document.
func ServeSSE(hub *Hub, w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	client := &Client{
		hub:           hub,
		send:          make(chan BaseMessage, 256),
		subscriptions: make(map[string]SubscribePayload),
	}
	client.subscriptions["default"] = SubscribePayload{
		DocumentID: r.URL.Query().Get("document_id"),
	}

	client.hub.register <- client
	defer func() {
		client.hub.unregister <- client
		slog.Info("SSE connection closed")
	}()

	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprintf(w, ": heartbeat\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case message, ok := <-client.send:
			if !ok {
				return
			}
			data, err := json.Marshal(message)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
