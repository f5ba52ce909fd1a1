// Package mocks provides testify mock implementations of the repository
// interfaces and the task enqueuer for use in tests.
package mocks

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"

	"collaborative-whiteboard/internal/domain"
)

// BoardRepository is a testify mock of repository.BoardRepository.
type BoardRepository struct {
	mock.Mock
}

func (m *BoardRepository) GetByRoom(ctx context.Context, roomID string) (*domain.Board, error) {
	args := m.Called(ctx, roomID)
	if board, ok := args.Get(0).(*domain.Board); ok {
		return board, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *BoardRepository) Upsert(ctx context.Context, board *domain.Board) error {
	args := m.Called(ctx, board)
	return args.Error(0)
}

// MessageRepository is a testify mock of repository.MessageRepository.
type MessageRepository struct {
	mock.Mock
}

func (m *MessageRepository) Append(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MessageRepository) RecentByRoom(ctx context.Context, roomID string, limit int) ([]domain.Message, error) {
	args := m.Called(ctx, roomID, limit)
	if msgs, ok := args.Get(0).([]domain.Message); ok {
		return msgs, args.Error(1)
	}
	return nil, args.Error(1)
}

// StateRepository is a testify mock of repository.StateRepository.
type StateRepository struct {
	mock.Mock
}

func (m *StateRepository) GetBoardCache(ctx context.Context, roomID string) (string, error) {
	args := m.Called(ctx, roomID)
	return args.String(0), args.Error(1)
}

func (m *StateRepository) SetBoardCache(ctx context.Context, roomID string, data string, ttl time.Duration) error {
	args := m.Called(ctx, roomID, data, ttl)
	return args.Error(0)
}

func (m *StateRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

// Enqueuer is a testify mock of tasks.Enqueuer.
type Enqueuer struct {
	mock.Mock
}

func (m *Enqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(task, opts)
	if info, ok := args.Get(0).(*asynq.TaskInfo); ok {
		return info, args.Error(1)
	}
	return nil, args.Error(1)
}
