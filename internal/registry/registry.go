// Package registry holds the process-wide room membership map. It is the
// only globally mutable shared state in the session core; every mutation
// funnels through one mutex so membership snapshots handed to broadcasts
// are always consistent.
package registry

import (
	"sync"
	"time"
)

// Sink is the delivery side of a member. Enqueue must not block; it
// reports false when the message was dropped (e.g. a full send buffer).
type Sink interface {
	Enqueue(msg []byte) bool
}

// Member is one connected participant's transient identity within a room.
type Member struct {
	ConnID   string    `json:"id"`
	Username string    `json:"username"`
	Color    string    `json:"color"`
	JoinedAt time.Time `json:"-"`
	Sink     Sink      `json:"-"`
}

type room struct {
	// join order preserved; lookups scan the slice, rooms stay small
	members []Member
}

// Registry maps room identifiers to membership sets. Rooms come into
// existence on the first Register and are evicted as soon as the last
// member leaves; no memory is retained for empty rooms.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*room
}

func New() *Registry {
	return &Registry{rooms: make(map[string]*room)}
}

// Register adds a member to a room, creating the room if needed.
// Registering the same connection twice is a no-op.
func (r *Registry) Register(roomID string, m Member) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[roomID]
	if !ok {
		rm = &room{}
		r.rooms[roomID] = rm
	}
	for _, existing := range rm.members {
		if existing.ConnID == m.ConnID {
			return
		}
	}
	rm.members = append(rm.members, m)
}

// Unregister removes a connection from a room and reports whether the room
// is now empty (and therefore gone). Removing an absent connection is a
// silent no-op.
func (r *Registry) Unregister(roomID, connID string) (empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[roomID]
	if !ok {
		return false
	}
	for i, m := range rm.members {
		if m.ConnID == connID {
			rm.members = append(rm.members[:i], rm.members[i+1:]...)
			break
		}
	}
	if len(rm.members) == 0 {
		delete(r.rooms, roomID)
		return true
	}
	return false
}

// MembersOf returns the room's members in join order. The slice is a copy
// taken under the lock, safe to hand to a broadcast.
func (r *Registry) MembersOf(roomID string) []Member {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	out := make([]Member, len(rm.members))
	copy(out, rm.members)
	return out
}

// IsEmpty reports whether a room has no members (or does not exist).
func (r *Registry) IsEmpty(roomID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[roomID]
	return !ok || len(rm.members) == 0
}

// Sinks returns delivery sinks for a room's members in join order,
// excluding excludeConnID when non-empty.
func (r *Registry) Sinks(roomID, excludeConnID string) []Sink {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	out := make([]Sink, 0, len(rm.members))
	for _, m := range rm.members {
		if excludeConnID != "" && m.ConnID == excludeConnID {
			continue
		}
		if m.Sink != nil {
			out = append(out, m.Sink)
		}
	}
	return out
}

// ActiveRooms returns the identifiers of all rooms that currently have
// members. Used by the periodic board-sync worker.
func (r *Registry) ActiveRooms() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.rooms))
	for id := range r.rooms {
		out = append(out, id)
	}
	return out
}
