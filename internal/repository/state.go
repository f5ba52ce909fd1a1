package repository

import (
	"context"
	"time"
)

// StateRepository defines the fast-path room state operations, implemented
// over Redis.
type StateRepository interface {
	// GetBoardCache returns the cached canvas blob for a room.
	// Returns ErrNotFound on a cache miss.
	GetBoardCache(ctx context.Context, roomID string) (string, error)

	// SetBoardCache stores the canvas blob with the given TTL.
	// A zero TTL means no expiry.
	SetBoardCache(ctx context.Context, roomID string, data string, ttl time.Duration) error

	// CheckRateLimit increments the counter for key and reports whether the
	// request count within the window exceeded limit.
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
