package hub

import (
	"time"

	"github.com/sirupsen/logrus"

	"collaborative-whiteboard/internal/registry"
	"collaborative-whiteboard/internal/service"
	"collaborative-whiteboard/internal/session"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Save-board frames carry the
	// whole serialized canvas, so this is generous.
	maxMessageSize = 1 << 20

	// Upper bound on any persistence call made from the hub loop.
	opTimeout = 5 * time.Second
)

// Message is the unit of work on the hub's internal channel.
type Message struct {
	Type    string // "frame" or "disconnect"
	ConnID  string
	Sink    registry.Sink
	RawData []byte // raw WebSocket frame, only for "frame"
}

// Hub owns the per-connection session state machines. One goroutine drains
// messageChan, so joins, leaves and event routing for all rooms are
// processed in arrival order and every membership broadcast reflects a
// consistent registry snapshot.
type Hub struct {
	messageChan chan Message

	registry  *registry.Registry
	binder    *session.Binder
	chat      *service.ChatService
	snapshots *service.SnapshotService
}

func NewHub(reg *registry.Registry, binder *session.Binder, chat *service.ChatService, snapshots *service.SnapshotService) *Hub {
	if reg == nil || binder == nil {
		panic("registry and binder cannot be nil for Hub")
	}
	if chat == nil || snapshots == nil {
		panic("ChatService and SnapshotService cannot be nil for Hub")
	}
	return &Hub{
		messageChan: make(chan Message, 512),
		registry:    reg,
		binder:      binder,
		chat:        chat,
		snapshots:   snapshots,
	}
}

// Run drains the hub's message channel. It should run in its own goroutine
// and exits when Stop closes the channel.
func (h *Hub) Run() {
	log := logrus.WithField("component", "hub")
	log.Info("Hub is running")

	for msg := range h.messageChan {
		h.handleMessage(msg)
	}
	log.Info("Hub is shutting down")
}

// Stop closes the hub's channel, ending Run.
func (h *Hub) Stop() {
	close(h.messageChan)
}

func (h *Hub) handleMessage(msg Message) {
	switch msg.Type {
	case "frame":
		h.handleFrame(msg)
	case "disconnect":
		h.handleDisconnect(msg)
	default:
		logrus.WithFields(logrus.Fields{
			"message_type": msg.Type,
			"conn_id":      msg.ConnID,
		}).Warn("Hub: unknown internal message type")
	}
}

// QueueMessage puts a message on the hub's channel without blocking.
// Returns false when the queue is full and the message was dropped.
func (h *Hub) QueueMessage(msg Message) bool {
	select {
	case h.messageChan <- msg:
		return true
	default:
		logrus.WithFields(logrus.Fields{
			"message_type": msg.Type,
			"conn_id":      msg.ConnID,
		}).Warn("Hub message channel full, dropping message")
		return false
	}
}

// ActiveRoomIDs returns the rooms that currently have members.
func (h *Hub) ActiveRoomIDs() []string {
	return h.registry.ActiveRooms()
}
