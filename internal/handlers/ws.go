package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/drivelane/drivelane/internal/logger"
	"github.com/drivelane/drivelane/internal/realtime"
	"github.com/drivelane/drivelane/internal/types"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return types.OriginAllowed(r.Header.Get("Origin"))
	},
}

type WebSocketHandler struct {
	hub *realtime.Hub
}

func NewWebSocketHandler(hub *realtime.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// Serve upgrades the request and keeps the connection registered under the
// signed-in user until the client goes away.
func (h *WebSocketHandler) Serve(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("ws_upgrade", "websocket upgrade failed", err, "user_id", actor.ID)
		return
	}

	conn.SetReadLimit(realtime.MaxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(realtime.PongWait)); err != nil {
		logger.Warn("ws_connect", "failed to set initial read deadline", err, "user_id", actor.ID)
		conn.Close()
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(realtime.PongWait))
	})

	if err := conn.SetWriteDeadline(time.Now().Add(realtime.WriteWait)); err != nil {
		conn.Close()
		return
	}

	err = conn.WriteJSON(map[string]interface{}{
		"type":    "connected",
		"message": "WebSocket connection established",
		"user_id": actor.ID,
	})

	if err != nil {
		logger.Warn("ws_connect", "failed to send welcome message", err, "user_id", actor.ID)
		conn.Close()
		return
	}

	h.hub.Register(actor.ID, conn)

	defer func() {
		h.hub.Unregister(actor.ID, conn)
		conn.Close()
		logger.Debug("ws_disconnect", "websocket connection closed", "user_id", actor.ID)
	}()

	done := make(chan struct{})
	defer close(done)

	// WriteControl may run alongside the hub's writer.
	go func() {
		ticker := time.NewTicker(realtime.PingPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(realtime.WriteWait)); err != nil {
					return
				}
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("ws_read", "websocket error", err, "user_id", actor.ID)
			}
			break
		}
	}
}
