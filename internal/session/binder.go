// Package session binds connections to their room and display identity for
// the lifetime of the connection.
package session

import (
	"errors"
	"math/rand"
	"strings"
	"sync"
)

// ErrAlreadyBound is returned when a connection attempts a second bind.
// Policy: the caller drops the event silently; the first binding stands.
var ErrAlreadyBound = errors.New("session: connection already bound")

// palette members are assigned uniformly at random with no collision
// avoidance; colors are cosmetic.
var palette = []string{
	"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4", "#FFEAA7",
	"#DDA0DD", "#98D8C8", "#F7DC6F", "#BB8FCE", "#85C1E9",
}

// Session is the write-once binding of one connection to one room and one
// display identity.
type Session struct {
	ConnID   string
	RoomID   string
	Username string
	Color    string
}

// Binder tracks live bindings. Bind is write-once per connection; bindings
// are released only via disconnect.
type Binder struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewBinder() *Binder {
	return &Binder{sessions: make(map[string]*Session)}
}

// Bind associates a connection with a room and display name and assigns a
// palette color. A blank name gets a derived default. A second bind for
// the same connection returns ErrAlreadyBound.
func (b *Binder) Bind(connID, roomID, username string) (*Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.sessions[connID]; ok {
		return nil, ErrAlreadyBound
	}

	username = strings.TrimSpace(username)
	if username == "" {
		username = defaultName(connID)
	}

	s := &Session{
		ConnID:   connID,
		RoomID:   roomID,
		Username: username,
		Color:    palette[rand.Intn(len(palette))],
	}
	b.sessions[connID] = s
	return s, nil
}

// Get returns the binding for a connection, or nil when unbound.
func (b *Binder) Get(connID string) *Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sessions[connID]
}

// Release removes and returns the binding for a connection. Returns nil if
// the connection was never bound.
func (b *Binder) Release(connID string) *Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.sessions[connID]
	delete(b.sessions, connID)
	return s
}

func defaultName(connID string) string {
	short := connID
	if len(short) > 6 {
		short = short[:6]
	}
	return "user-" + short
}

// Palette exposes the fixed color set, mainly for tests.
func Palette() []string {
	out := make([]string, len(palette))
	copy(out, palette)
	return out
}
