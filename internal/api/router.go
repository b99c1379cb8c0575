package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"maintenance-service/internal/logging"
	"maintenance-service/internal/notify"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Dashboard clients connect from a separate origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// NewRouter exposes the service's two endpoints: a health probe and the
// dashboard WebSocket feed. Everything else happens in background workers.
func NewRouter(hub *notify.Hub, logger *logging.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLoggingMiddleware(logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ws", func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Errorf("WebSocket upgrade failed: %v", err)
			return
		}
		hub.AddConnection(conn)
		go func() {
			defer func() {
				hub.RemoveConnection(conn)
				conn.Close()
			}()
			// Drain client frames; the feed is broadcast-only.
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	})

	return r
}
