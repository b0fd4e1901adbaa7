package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/floodwatch-ke/floodwatch/internal/database"
	"github.com/gorilla/websocket"
)

const (
	// writeWait is the deadline for one outbound frame.
	writeWait = 10 * time.Second

	// clientBuffer is the per-client send queue; a client that falls
	// this far behind is dropped rather than blocking the broadcast.
	clientBuffer = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The dashboard is served from another origin in development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans alert events out to connected dashboard clients.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// alertEvent is one frame of the live feed.
type alertEvent struct {
	Event string          `json:"event"`
	Alert *database.Alert `json:"alert"`
}

// NewHub creates a new alert stream hub
func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

// SetupRoutes sets up the stream route
func (h *Hub) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/alerts/stream", h.handleStream)
}

// handleStream upgrades the connection and registers the client
func (h *Hub) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Hub: websocket upgrade failed: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, clientBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()
	log.Printf("Hub: client connected (%d total)", count)

	go h.writePump(c)
	go h.readPump(c)
}

// BroadcastAlert queues an alert event for every connected client.
// Clients with full buffers are dropped.
func (h *Hub) BroadcastAlert(alert *database.Alert) {
	data, err := json.Marshal(alertEvent{Event: "alert", Alert: alert})
	if err != nil {
		log.Printf("Hub: failed to marshal alert event: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.remove(c)
			return
		}
	}
	// send channel closed by the broadcaster
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "too slow"),
		time.Now().Add(writeWait))
}

// readPump discards inbound frames; its job is to notice disconnects.
func (h *Hub) readPump(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.remove(c)
			return
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	c.conn.Close()
}
