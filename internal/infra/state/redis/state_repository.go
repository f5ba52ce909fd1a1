package redisstate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"collaborative-whiteboard/internal/repository"
)

// RedisStateRepository is the Redis implementation of StateRepository. It
// holds the hot copy of each room's canvas blob and the rate-limit
// counters.
type RedisStateRepository struct {
	client    *redis.Client
	keyPrefix string
}

func NewRedisStateRepository(client *redis.Client, keyPrefix string) *RedisStateRepository {
	if client == nil {
		panic("redis client cannot be nil for RedisStateRepository")
	}
	if keyPrefix == "" {
		keyPrefix = "wb:"
	}
	return &RedisStateRepository{client: client, keyPrefix: keyPrefix}
}

func (r *RedisStateRepository) boardCacheKey(roomID string) string {
	return fmt.Sprintf("%sroom:%s:board", r.keyPrefix, roomID)
}

// GetBoardCache returns the cached canvas blob for a room.
func (r *RedisStateRepository) GetBoardCache(ctx context.Context, roomID string) (string, error) {
	key := r.boardCacheKey(roomID)
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", repository.ErrNotFound
		}
		return "", fmt.Errorf("redis: get board cache for room %s from %s: %w", roomID, key, err)
	}
	return data, nil
}

// SetBoardCache stores the canvas blob. A zero ttl means no expiry.
func (r *RedisStateRepository) SetBoardCache(ctx context.Context, roomID string, data string, ttl time.Duration) error {
	key := r.boardCacheKey(roomID)
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set board cache for room %s on %s: %w", roomID, key, err)
	}
	return nil
}

// CheckRateLimit increments the counter for key and reports whether the
// count within the window exceeds limit. INCR and EXPIRE go through one
// pipeline to keep the window refresh close to the increment.
func (r *RedisStateRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	pipe := r.client.Pipeline()
	incrCmd := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("redis: rate limit pipeline for key %s: %w", key, err)
	}
	count, err := incrCmd.Result()
	if err != nil {
		return false, fmt.Errorf("redis: rate limit incr result for key %s: %w", key, err)
	}
	return count > int64(limit), nil
}
