package notify

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"
	"maintenance-service/internal/logging"
)

// Hub broadcasts events to every connected dashboard WebSocket client.
type Hub struct {
	connections map[*websocket.Conn]bool
	mutex       sync.Mutex
	logger      *logging.Logger
}

func NewHub(logger *logging.Logger) *Hub {
	return &Hub{
		connections: make(map[*websocket.Conn]bool),
		logger:      logger,
	}
}

func (h *Hub) Name() string { return "websocket" }

// AddConnection registers a dashboard client.
func (h *Hub) AddConnection(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.connections[conn] = true
	h.logger.Infof("Added WebSocket connection (total: %d)", len(h.connections))
}

// RemoveConnection unregisters a dashboard client.
func (h *Hub) RemoveConnection(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	delete(h.connections, conn)
	h.logger.Infof("Removed WebSocket connection (remaining: %d)", len(h.connections))
}

// Deliver writes the payload to all connections, dropping any that error.
func (h *Hub) Deliver(_ context.Context, _ string, payload []byte) error {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for conn := range h.connections {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.logger.Errorf("Failed to send WebSocket message: %v", err)
			conn.Close()
			delete(h.connections, conn)
		}
	}
	return nil
}
