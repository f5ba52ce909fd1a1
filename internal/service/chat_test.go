package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"collaborative-whiteboard/internal/domain"
	"collaborative-whiteboard/internal/repository/mocks"
)

func TestChatAppendStampsUTCTimestamp(t *testing.T) {
	messageRepo := new(mocks.MessageRepository)

	var stored *domain.Message
	messageRepo.On("Append", mock.Anything, mock.AnythingOfType("*domain.Message")).
		Run(func(args mock.Arguments) {
			stored = args.Get(1).(*domain.Message)
		}).
		Return(nil)

	svc := NewChatService(messageRepo, 0)

	before := time.Now().UTC()
	ts, err := svc.Append(context.Background(), "ROOM1", "alice", "hello")
	after := time.Now().UTC()

	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "ROOM1", stored.RoomID)
	assert.Equal(t, "alice", stored.Username)
	assert.Equal(t, "hello", stored.Body)
	assert.Equal(t, ts, stored.Timestamp)
	assert.False(t, ts.Before(before))
	assert.False(t, ts.After(after))
	messageRepo.AssertExpectations(t)
}

func TestChatAppendReturnsTimestampOnFailure(t *testing.T) {
	messageRepo := new(mocks.MessageRepository)
	messageRepo.On("Append", mock.Anything, mock.Anything).Return(errors.New("db down"))

	svc := NewChatService(messageRepo, 0)

	ts, err := svc.Append(context.Background(), "ROOM1", "alice", "hello")
	assert.Error(t, err)
	assert.False(t, ts.IsZero())
}

func TestChatRecentReturnsAscendingOrder(t *testing.T) {
	messageRepo := new(mocks.MessageRepository)

	now := time.Now().UTC()
	// repository returns newest first
	messageRepo.On("RecentByRoom", mock.Anything, "ROOM1", 3).Return([]domain.Message{
		{Username: "carol", Body: "third", Timestamp: now},
		{Username: "bob", Body: "second", Timestamp: now.Add(-time.Minute)},
		{Username: "alice", Body: "first", Timestamp: now.Add(-2 * time.Minute)},
	}, nil)

	svc := NewChatService(messageRepo, 50)

	messages, err := svc.Recent(context.Background(), "ROOM1", 3)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "first", messages[0].Body)
	assert.Equal(t, "second", messages[1].Body)
	assert.Equal(t, "third", messages[2].Body)
}

func TestChatRecentCapsLimit(t *testing.T) {
	messageRepo := new(mocks.MessageRepository)
	messageRepo.On("RecentByRoom", mock.Anything, "ROOM1", 10).Return([]domain.Message{}, nil)

	svc := NewChatService(messageRepo, 10)

	_, err := svc.Recent(context.Background(), "ROOM1", 0)
	require.NoError(t, err)
	_, err = svc.Recent(context.Background(), "ROOM1", 500)
	require.NoError(t, err)

	messageRepo.AssertNumberOfCalls(t, "RecentByRoom", 2)
}

func TestChatRecentPropagatesError(t *testing.T) {
	messageRepo := new(mocks.MessageRepository)
	messageRepo.On("RecentByRoom", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("db down"))

	svc := NewChatService(messageRepo, 50)

	messages, err := svc.Recent(context.Background(), "ROOM1", 5)
	assert.Error(t, err)
	assert.Nil(t, messages)
}
