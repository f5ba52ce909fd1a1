package hub

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"collaborative-whiteboard/internal/domain"
	"collaborative-whiteboard/internal/registry"
	"collaborative-whiteboard/internal/session"
)

// handleFrame decodes one raw WebSocket frame and dispatches it. Anything
// malformed is dropped without a reply; a misbehaving connection must
// never affect another connection's session.
func (h *Hub) handleFrame(msg Message) {
	var env domain.Envelope
	if err := json.Unmarshal(msg.RawData, &env); err != nil {
		logrus.WithField("conn_id", msg.ConnID).WithError(err).Debug("Dropping malformed frame")
		return
	}

	if env.Type == domain.EventJoin {
		h.handleJoin(msg, env.Data)
		return
	}
	h.route(msg, env)
}

// handleJoin drives the Unbound -> Bound transition: bind the session,
// register in the room, broadcast the new membership, then replay snapshot
// and history to the joiner asynchronously.
func (h *Hub) handleJoin(msg Message, data json.RawMessage) {
	logCtx := logrus.WithField("conn_id", msg.ConnID)

	var payload domain.JoinPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		logCtx.WithError(err).Debug("Dropping join with malformed payload")
		return
	}
	roomID := normalizeRoomID(payload.Room)
	if roomID == "" {
		logCtx.Debug("Dropping join with empty room identifier")
		return
	}

	sess, err := h.binder.Bind(msg.ConnID, roomID, payload.Username)
	if err != nil {
		// already bound: second join is a silent no-op
		logCtx.WithError(err).Debug("Dropping duplicate join")
		return
	}
	logCtx = logCtx.WithFields(logrus.Fields{"room_id": roomID, "username": sess.Username})

	h.registry.Register(roomID, registry.Member{
		ConnID:   sess.ConnID,
		Username: sess.Username,
		Color:    sess.Color,
		JoinedAt: time.Now(),
		Sink:     msg.Sink,
	})
	h.broadcastMembers(roomID)
	logCtx.Info("Member joined room")

	go h.replay(roomID, sess, msg.Sink)
}

// replay delivers the room's persisted state to a joining connection only:
// the snapshot when one exists, then the recent history (always sent, even
// when empty). Storage failures degrade to "no data".
func (h *Hub) replay(roomID string, sess *session.Session, sink registry.Sink) {
	logCtx := logrus.WithFields(logrus.Fields{
		"room_id": roomID,
		"conn_id": sess.ConnID,
	})

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if data, ok, err := h.snapshots.Load(ctx, roomID); err != nil {
		logCtx.WithError(err).Error("Failed to load board snapshot for replay")
	} else if ok {
		h.send(sink, domain.EventBoardLoaded, domain.SavePayload{Data: data})
	}

	messages, err := h.chat.Recent(ctx, roomID, 0)
	if err != nil {
		logCtx.WithError(err).Error("Failed to load message history for replay")
		messages = nil
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	h.send(sink, domain.EventMessagesLoaded, map[string]interface{}{"messages": messages})
}

// handleDisconnect drives the Bound -> Closed transition. A connection
// that never joined just goes away.
func (h *Hub) handleDisconnect(msg Message) {
	sess := h.binder.Release(msg.ConnID)
	if c, ok := msg.Sink.(*Client); ok {
		c.shutdown()
	}
	if sess == nil {
		return
	}

	empty := h.registry.Unregister(sess.RoomID, sess.ConnID)
	logrus.WithFields(logrus.Fields{
		"conn_id":  msg.ConnID,
		"room_id":  sess.RoomID,
		"username": sess.Username,
	}).Info("Member left room")

	if !empty {
		h.broadcastMembers(sess.RoomID)
	}
}

// route forwards a bound connection's event per the routing table. Events
// from unbound connections are dropped.
func (h *Hub) route(msg Message, env domain.Envelope) {
	sess := h.binder.Get(msg.ConnID)
	if sess == nil {
		logrus.WithFields(logrus.Fields{
			"conn_id":    msg.ConnID,
			"event_type": env.Type,
		}).Debug("Dropping event from unbound connection")
		return
	}
	logCtx := logrus.WithFields(logrus.Fields{
		"conn_id":    msg.ConnID,
		"room_id":    sess.RoomID,
		"event_type": env.Type,
	})

	switch env.Type {
	case domain.EventDrawing:
		var payload domain.DrawPayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			logCtx.WithError(err).Debug("Dropping malformed drawing event")
			return
		}
		if err := payload.Validate(); err != nil {
			logCtx.WithError(err).Debug("Dropping invalid drawing event")
			return
		}
		// sender already applied the mark locally; relay to everyone else
		h.broadcast(sess.RoomID, sess.ConnID, domain.EventDrawing, payload)

	case domain.EventChat:
		var payload domain.ChatPayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			logCtx.WithError(err).Debug("Dropping malformed chat message")
			return
		}
		if payload.Message == "" {
			logCtx.Debug("Dropping empty chat message")
			return
		}
		h.handleChat(sess, payload.Message, logCtx)

	case domain.EventTyping:
		var payload domain.TypingPayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			logCtx.WithError(err).Debug("Dropping malformed typing event")
			return
		}
		h.broadcast(sess.RoomID, sess.ConnID, domain.EventUserTyping, map[string]interface{}{
			"username": sess.Username,
			"isTyping": payload.IsTyping,
		})

	case domain.EventSave:
		var payload domain.SavePayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			logCtx.WithError(err).Debug("Dropping malformed save-board event")
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		if err := h.snapshots.Save(ctx, sess.RoomID, payload.Data); err != nil {
			// degraded durability only; the next save is the retry
			logCtx.WithError(err).Error("Failed to save board snapshot")
		}

	default:
		logCtx.Debug("Dropping event with unrecognized type")
	}
}

// handleChat appends the message, then broadcasts to the whole room with
// the authoritative timestamp. On append failure the broadcast still goes
// out with the locally-generated timestamp: persistence is best-effort,
// live collaboration is not.
func (h *Hub) handleChat(sess *session.Session, body string, logCtx *logrus.Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	ts, err := h.chat.Append(ctx, sess.RoomID, sess.Username, body)
	if err != nil {
		logCtx.WithError(err).Error("Failed to append chat message, broadcasting with local timestamp")
	}

	h.broadcast(sess.RoomID, "", domain.EventChat, map[string]interface{}{
		"username":  sess.Username,
		"message":   body,
		"timestamp": ts,
	})
}

// broadcastMembers sends the current membership to everyone in the room,
// the affected member included.
func (h *Hub) broadcastMembers(roomID string) {
	members := h.registry.MembersOf(roomID)
	h.broadcast(roomID, "", domain.EventUsersUpdated, map[string]interface{}{"users": members})
}

// broadcast fans an event out to a room, optionally excluding one
// connection. Sends are non-blocking; a slow client misses the message
// rather than stalling the room.
func (h *Hub) broadcast(roomID, excludeConnID, eventType string, payload interface{}) {
	raw, err := marshalEvent(eventType, payload)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"room_id":    roomID,
			"event_type": eventType,
		}).WithError(err).Error("Failed to marshal outbound event")
		return
	}
	dropped := 0
	for _, sink := range h.registry.Sinks(roomID, excludeConnID) {
		if !sink.Enqueue(raw) {
			dropped++
		}
	}
	if dropped > 0 {
		logrus.WithFields(logrus.Fields{
			"room_id":    roomID,
			"event_type": eventType,
			"dropped":    dropped,
		}).Warn("Some clients missed a broadcast (send buffer full)")
	}
}

// send delivers one event to a single sink.
func (h *Hub) send(sink registry.Sink, eventType string, payload interface{}) {
	raw, err := marshalEvent(eventType, payload)
	if err != nil {
		logrus.WithField("event_type", eventType).WithError(err).Error("Failed to marshal outbound event")
		return
	}
	if !sink.Enqueue(raw) {
		logrus.WithField("event_type", eventType).Warn("Client send buffer full, event dropped")
	}
}

func marshalEvent(eventType string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(domain.Envelope{Type: eventType, Data: data})
}

// normalizeRoomID trims and upper-cases the caller-supplied identifier so
// persistence keys and registry entries agree regardless of input casing.
func normalizeRoomID(roomID string) string {
	return strings.ToUpper(strings.TrimSpace(roomID))
}
