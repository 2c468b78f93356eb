// Package realtime keeps the live websocket connections of each user.
package realtime

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/drivelane/drivelane/internal/logger"
)

const (
	WriteWait      = 10 * time.Second
	PongWait       = 60 * time.Second
	PingPeriod     = (PongWait * 9) / 10
	MaxMessageSize = 512
)

// Conn is the subset of *websocket.Conn the hub writes to.
type Conn interface {
	SetWriteDeadline(t time.Time) error
	WriteJSON(v interface{}) error
	Close() error
}

var _ Conn = (*websocket.Conn)(nil)

// client pairs a connection with its write lock; websocket connections allow a
// single concurrent writer.
type client struct {
	conn    Conn
	writeMu sync.Mutex
}

type Hub struct {
	clients map[uint]map[Conn]*client
	mu      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[uint]map[Conn]*client)}
}

func (h *Hub) Register(userID uint, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[userID] == nil {
		h.clients[userID] = make(map[Conn]*client)
	}
	if _, exists := h.clients[userID][conn]; !exists {
		h.clients[userID][conn] = &client{conn: conn}
	}
}

func (h *Hub) Unregister(userID uint, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, exists := h.clients[userID]; exists {
		delete(clients, conn)
		if len(clients) == 0 {
			delete(h.clients, userID)
		}
	}
}

func (h *Hub) Connections(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Push writes message to every connection of userID. Connections that fail are dropped.
func (h *Hub) Push(userID uint, message interface{}) {
	h.mu.RLock()
	clients, exists := h.clients[userID]
	if !exists || len(clients) == 0 {
		h.mu.RUnlock()
		return
	}

	// copy so the lock is not held while writing
	targets := make([]*client, 0, len(clients))
	for _, c := range clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.write(message); err != nil {
			logger.Warn("ws_push", "failed to push to client, dropping connection", err, "user_id", userID)
			h.Unregister(userID, c.conn)
			c.conn.Close()
		}
	}
}

func (c *client) write(message interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(WriteWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(message)
}
