package hub

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Client is one WebSocket connection pumping frames into the hub and
// draining its send buffer back to the peer.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	id   string
	send chan []byte

	done     chan struct{}
	doneOnce sync.Once
}

func NewClient(hub *Hub, conn *websocket.Conn, connID string) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		id:   connID,
		send: make(chan []byte, 256),
		done: make(chan struct{}),
	}
}

// Run starts the read and write pumps.
func (c *Client) Run() {
	go c.writePump()
	go c.readPump()
}

// ID returns the transport-assigned connection identifier.
func (c *Client) ID() string { return c.id }

// Enqueue implements registry.Sink. It never blocks; a full buffer drops
// the message.
func (c *Client) Enqueue(msg []byte) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// shutdown releases the write pump. Called by the hub once the connection
// is unregistered.
func (c *Client) shutdown() {
	c.doneOnce.Do(func() { close(c.done) })
}

// readPump moves frames from the WebSocket into the hub until the
// connection dies, then reports the disconnect.
func (c *Client) readPump() {
	defer func() {
		disconnect := Message{Type: "disconnect", ConnID: c.id, Sink: c}
		select {
		case c.hub.messageChan <- disconnect:
		case <-time.After(1 * time.Second):
			logrus.WithField("conn_id", c.id).Warn("Timeout sending disconnect to hub channel")
			c.shutdown()
		}
		c.conn.Close()
		logrus.WithField("conn_id", c.id).Debug("Read pump exited")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithField("conn_id", c.id).WithError(err).Warn("WebSocket read error")
			}
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}

		if !c.hub.QueueMessage(Message{Type: "frame", ConnID: c.id, Sink: c, RawData: message}) {
			logrus.WithField("conn_id", c.id).Warn("Hub busy, client frame dropped")
		}
	}
}

// writePump moves messages from the send buffer to the WebSocket and keeps
// the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		logrus.WithField("conn_id", c.id).Debug("Write pump exited")
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logrus.WithField("conn_id", c.id).WithError(err).Warn("Failed to write message to websocket")
				return
			}

		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
