package repository

import (
	"context"

	"collaborative-whiteboard/internal/domain"
)

// BoardRepository defines durable storage for canvas snapshots.
type BoardRepository interface {
	// GetByRoom returns the snapshot row for a room.
	// Returns ErrNotFound when no save has happened yet.
	GetByRoom(ctx context.Context, roomID string) (*domain.Board, error)

	// Upsert replaces the room's stored blob wholesale, creating the row
	// if it does not exist.
	Upsert(ctx context.Context, board *domain.Board) error
}
