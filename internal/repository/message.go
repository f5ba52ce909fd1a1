package repository

import (
	"context"

	"collaborative-whiteboard/internal/domain"
)

// MessageRepository defines durable storage for chat history.
type MessageRepository interface {
	// Append inserts one message. The caller stamps the timestamp.
	Append(ctx context.Context, msg *domain.Message) error

	// RecentByRoom returns up to limit messages for a room, newest first.
	// Callers wanting reading order reverse the result.
	RecentByRoom(ctx context.Context, roomID string, limit int) ([]domain.Message, error)
}
