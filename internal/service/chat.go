package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"collaborative-whiteboard/internal/domain"
	"collaborative-whiteboard/internal/repository"
)

// DefaultHistoryLimit caps how many messages are replayed to a joiner.
const DefaultHistoryLimit = 50

// ChatService handles chat history persistence: ordered appends with a
// server-assigned timestamp and bounded recent-history reads.
type ChatService struct {
	messageRepo  repository.MessageRepository
	historyLimit int
}

func NewChatService(messageRepo repository.MessageRepository, historyLimit int) *ChatService {
	if messageRepo == nil {
		panic("MessageRepository cannot be nil for ChatService")
	}
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &ChatService{messageRepo: messageRepo, historyLimit: historyLimit}
}

// Append stamps the message with the current UTC time, stores it, and
// returns the stamped value so the caller can echo the authoritative
// timestamp. Sequential appends to a room therefore carry non-decreasing
// timestamps.
func (s *ChatService) Append(ctx context.Context, roomID, username, body string) (time.Time, error) {
	ts := time.Now().UTC()
	msg := &domain.Message{
		RoomID:    roomID,
		Username:  username,
		Body:      body,
		Timestamp: ts,
	}
	if err := s.messageRepo.Append(ctx, msg); err != nil {
		return ts, fmt.Errorf("append message: %w", err)
	}
	return ts, nil
}

// Recent returns the newest messages for a room in ascending timestamp
// order. The repository fetches newest-first to bound the scan; the result
// is reversed here into natural reading order.
func (s *ChatService) Recent(ctx context.Context, roomID string, limit int) ([]domain.Message, error) {
	if limit <= 0 || limit > s.historyLimit {
		limit = s.historyLimit
	}
	messages, err := s.messageRepo.RecentByRoom(ctx, roomID, limit)
	if err != nil {
		return nil, fmt.Errorf("load recent messages: %w", err)
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	logrus.WithFields(logrus.Fields{
		"room_id": roomID,
		"count":   len(messages),
	}).Debug("Recent messages loaded")
	return messages, nil
}
