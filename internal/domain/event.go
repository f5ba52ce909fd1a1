package domain

import (
	"encoding/json"
	"fmt"
)

// Inbound event types accepted from a connection.
const (
	EventJoin    = "join"
	EventDrawing = "drawing"
	EventChat    = "chat-message"
	EventTyping  = "typing"
	EventSave    = "save-board"
)

// Outbound event types produced to connections.
const (
	EventUsersUpdated   = "users-updated"
	EventBoardLoaded    = "board-loaded"
	EventMessagesLoaded = "messages-loaded"
	EventUserTyping     = "user-typing"
)

// Envelope is the wire frame every WebSocket message travels in. Data is
// left raw so each event type can decode its own payload.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// JoinPayload carries the join request for a connection.
type JoinPayload struct {
	Room     string `json:"room"`
	Username string `json:"username"`
}

// ChatPayload carries an inbound chat message body.
type ChatPayload struct {
	Message string `json:"message"`
}

// TypingPayload carries a typing indicator toggle.
type TypingPayload struct {
	IsTyping bool `json:"isTyping"`
}

// SavePayload carries the serialized canvas blob for save-board.
type SavePayload struct {
	Data string `json:"data"`
}

// Drawing tools forming the closed set of drawing event variants.
const (
	ToolPen    = "pen"
	ToolEraser = "eraser"
	ToolRect   = "rect"
	ToolCircle = "circle"
	ToolLine   = "line"
	ToolText   = "text"
)

// DrawPayload is the tagged drawing event variant. Tool selects the shape;
// the geometry fields carry anchor point, extent, color and stroke width,
// and Text carries the string for text inserts. Drawing events are relayed
// only, never persisted individually.
type DrawPayload struct {
	Tool  string  `json:"tool"`
	FromX float64 `json:"fromX"`
	FromY float64 `json:"fromY"`
	ToX   float64 `json:"toX"`
	ToY   float64 `json:"toY"`
	Color string  `json:"color,omitempty"`
	Width float64 `json:"width,omitempty"`
	Text  string  `json:"text,omitempty"`
}

// Validate rejects payloads outside the closed variant set so the router
// can drop them at the boundary.
func (d *DrawPayload) Validate() error {
	switch d.Tool {
	case ToolPen, ToolEraser, ToolRect, ToolCircle, ToolLine:
		return nil
	case ToolText:
		if d.Text == "" {
			return fmt.Errorf("draw payload: text tool requires a text value")
		}
		return nil
	default:
		return fmt.Errorf("draw payload: unknown tool %q", d.Tool)
	}
}
