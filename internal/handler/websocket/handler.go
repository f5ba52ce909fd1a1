package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"collaborative-whiteboard/internal/hub"
)

// WebSocketHandler upgrades HTTP connections and hands them to the hub.
// The connection starts unbound; room and identity arrive in the first
// join frame.
type WebSocketHandler struct {
	upgrader websocket.Upgrader
	hub      *hub.Hub
}

func NewWebSocketHandler(hubInstance *hub.Hub) *WebSocketHandler {
	if hubInstance == nil {
		panic("Hub cannot be nil for WebSocketHandler")
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// TODO: restrict origins once the deployment origin is fixed
			return true
		},
	}

	return &WebSocketHandler{upgrader: upgrader, hub: hubInstance}
}

// HandleConnection upgrades the request and starts the client pumps.
// GET /ws
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response
		logrus.WithError(err).Warn("WS Handler: failed to upgrade connection")
		return
	}

	connID := uuid.NewString()
	client := hub.NewClient(h.hub, conn, connID)
	client.Run()

	logrus.WithFields(logrus.Fields{
		"conn_id":   connID,
		"client_ip": c.ClientIP(),
	}).Info("WS Handler: connection established")
}
