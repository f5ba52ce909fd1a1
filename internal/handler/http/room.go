package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"collaborative-whiteboard/internal/registry"
)

// RoomHandler exposes read-only room state over HTTP for operators and
// debugging. Rooms are created by joining over WebSocket, never here.
type RoomHandler struct {
	registry *registry.Registry
}

func NewRoomHandler(reg *registry.Registry) *RoomHandler {
	if reg == nil {
		panic("Registry cannot be nil for RoomHandler")
	}
	return &RoomHandler{registry: reg}
}

// ListMembers returns the live membership of a room in join order.
// GET /api/rooms/:roomId/members
func (h *RoomHandler) ListMembers(c *gin.Context) {
	roomID := strings.ToUpper(strings.TrimSpace(c.Param("roomId")))
	if roomID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Room identifier required"})
		return
	}

	members := h.registry.MembersOf(roomID)
	if members == nil {
		members = []registry.Member{}
	}
	c.JSON(http.StatusOK, gin.H{
		"room":    roomID,
		"members": members,
	})
}

// Health reports service liveness.
// GET /api/health
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK", "message": "Server is running"})
}
