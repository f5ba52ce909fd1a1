package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"collaborative-whiteboard/internal/domain"
	"collaborative-whiteboard/internal/repository"
	"collaborative-whiteboard/internal/tasks"
)

// SnapshotService handles canvas snapshot reads and writes. Reads are
// cache-first with database fallback and asynchronous cache backfill.
// Writes go to the cache synchronously, so the blob is visible to the next
// joiner immediately, while the database copy is written behind via a task.
type SnapshotService struct {
	boardRepo repository.BoardRepository
	stateRepo repository.StateRepository
	enqueuer  tasks.Enqueuer
	cacheTTL  time.Duration
}

func NewSnapshotService(boardRepo repository.BoardRepository, stateRepo repository.StateRepository, enqueuer tasks.Enqueuer, cacheTTL time.Duration) *SnapshotService {
	if boardRepo == nil {
		panic("BoardRepository cannot be nil for SnapshotService")
	}
	if stateRepo == nil {
		panic("StateRepository cannot be nil for SnapshotService")
	}
	if enqueuer == nil {
		panic("Enqueuer cannot be nil for SnapshotService")
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}
	return &SnapshotService{
		boardRepo: boardRepo,
		stateRepo: stateRepo,
		enqueuer:  enqueuer,
		cacheTTL:  cacheTTL,
	}
}

// Load returns the room's snapshot blob. ok is false when no save exists;
// that is not an error. Cache misses fall through to the database, and a
// database hit warms the cache in the background.
func (s *SnapshotService) Load(ctx context.Context, roomID string) (data string, ok bool, err error) {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "operation": "SnapshotLoad"})

	cached, err := s.stateRepo.GetBoardCache(ctx, roomID)
	if err == nil {
		logCtx.Debug("Board cache hit")
		return cached, true, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		logCtx.WithError(err).Warn("Failed to read board cache, falling back to database")
	}

	board, err := s.boardRepo.GetByRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("load board for room %s: %w", roomID, err)
	}

	// warm the cache off the caller's path
	go func(data string) {
		cacheCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.stateRepo.SetBoardCache(cacheCtx, roomID, data, s.cacheTTL); err != nil {
			logCtx.WithError(err).Warn("Failed to warm board cache after database load")
		}
	}(board.Data)

	logCtx.Debug("Board loaded from database")
	return board.Data, true, nil
}

// Save makes the blob immediately visible through the cache and hands the
// durable write to the persistence worker. If the task cannot be enqueued
// the database write happens inline instead; only a failure of both paths
// is reported.
func (s *SnapshotService) Save(ctx context.Context, roomID, data string) error {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "operation": "SnapshotSave"})

	if err := s.stateRepo.SetBoardCache(ctx, roomID, data, s.cacheTTL); err != nil {
		logCtx.WithError(err).Warn("Failed to write board cache on save")
	}

	task, err := tasks.NewBoardPersistTask(roomID, data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("build board persist task: %w", err)
	}
	if _, err := s.enqueuer.Enqueue(task); err != nil {
		logCtx.WithError(err).Warn("Failed to enqueue board persist task, writing database inline")
		if err := s.Persist(ctx, roomID, data); err != nil {
			return err
		}
	}
	return nil
}

// Persist writes the blob to the database. Called by the persistence
// worker, and inline when enqueueing fails.
func (s *SnapshotService) Persist(ctx context.Context, roomID, data string) error {
	board := &domain.Board{RoomID: roomID, Data: data}
	if err := s.boardRepo.Upsert(ctx, board); err != nil {
		return fmt.Errorf("persist board for room %s: %w", roomID, err)
	}
	return nil
}

// FlushActive re-persists the cached blob of each given room to the
// database. Reconciliation path for persist tasks lost to broker outages;
// rooms without a cached blob are skipped.
func (s *SnapshotService) FlushActive(ctx context.Context, roomIDs []string) {
	for _, roomID := range roomIDs {
		logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "operation": "SnapshotFlush"})
		data, err := s.stateRepo.GetBoardCache(ctx, roomID)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				logCtx.WithError(err).Warn("Failed to read board cache during flush")
			}
			continue
		}
		if err := s.Persist(ctx, roomID, data); err != nil {
			logCtx.WithError(err).Error("Failed to flush cached board to database")
		}
	}
}
