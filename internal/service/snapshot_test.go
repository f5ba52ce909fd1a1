package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"collaborative-whiteboard/internal/domain"
	"collaborative-whiteboard/internal/repository"
	"collaborative-whiteboard/internal/repository/mocks"
	"collaborative-whiteboard/internal/tasks"
)

func newSnapshotService(boardRepo *mocks.BoardRepository, stateRepo *mocks.StateRepository, enqueuer *mocks.Enqueuer) *SnapshotService {
	return NewSnapshotService(boardRepo, stateRepo, enqueuer, time.Hour)
}

func TestSnapshotLoadCacheHit(t *testing.T) {
	boardRepo := new(mocks.BoardRepository)
	stateRepo := new(mocks.StateRepository)
	enqueuer := new(mocks.Enqueuer)

	stateRepo.On("GetBoardCache", mock.Anything, "ROOM1").Return(`{"shapes":[]}`, nil)

	svc := newSnapshotService(boardRepo, stateRepo, enqueuer)

	data, ok, err := svc.Load(context.Background(), "ROOM1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"shapes":[]}`, data)
	boardRepo.AssertNotCalled(t, "GetByRoom", mock.Anything, mock.Anything)
}

func TestSnapshotLoadFallsBackToDatabase(t *testing.T) {
	boardRepo := new(mocks.BoardRepository)
	stateRepo := new(mocks.StateRepository)
	enqueuer := new(mocks.Enqueuer)

	stateRepo.On("GetBoardCache", mock.Anything, "ROOM1").Return("", repository.ErrNotFound)
	boardRepo.On("GetByRoom", mock.Anything, "ROOM1").Return(&domain.Board{RoomID: "ROOM1", Data: "blob"}, nil)

	warmed := make(chan struct{})
	stateRepo.On("SetBoardCache", mock.Anything, "ROOM1", "blob", time.Hour).
		Run(func(mock.Arguments) { close(warmed) }).
		Return(nil)

	svc := newSnapshotService(boardRepo, stateRepo, enqueuer)

	data, ok, err := svc.Load(context.Background(), "ROOM1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "blob", data)

	select {
	case <-warmed:
	case <-time.After(2 * time.Second):
		t.Fatal("cache was not warmed after database load")
	}
}

func TestSnapshotLoadAbsentIsNotAnError(t *testing.T) {
	boardRepo := new(mocks.BoardRepository)
	stateRepo := new(mocks.StateRepository)
	enqueuer := new(mocks.Enqueuer)

	stateRepo.On("GetBoardCache", mock.Anything, "ROOM1").Return("", repository.ErrNotFound)
	boardRepo.On("GetByRoom", mock.Anything, "ROOM1").Return(nil, repository.ErrBoardNotFound)

	svc := newSnapshotService(boardRepo, stateRepo, enqueuer)

	data, ok, err := svc.Load(context.Background(), "ROOM1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, data)
}

func TestSnapshotLoadDatabaseError(t *testing.T) {
	boardRepo := new(mocks.BoardRepository)
	stateRepo := new(mocks.StateRepository)
	enqueuer := new(mocks.Enqueuer)

	stateRepo.On("GetBoardCache", mock.Anything, "ROOM1").Return("", repository.ErrNotFound)
	boardRepo.On("GetByRoom", mock.Anything, "ROOM1").Return(nil, errors.New("db down"))

	svc := newSnapshotService(boardRepo, stateRepo, enqueuer)

	_, ok, err := svc.Load(context.Background(), "ROOM1")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestSnapshotSaveCachesAndEnqueues(t *testing.T) {
	boardRepo := new(mocks.BoardRepository)
	stateRepo := new(mocks.StateRepository)
	enqueuer := new(mocks.Enqueuer)

	stateRepo.On("SetBoardCache", mock.Anything, "ROOM1", "blob", time.Hour).Return(nil)
	enqueuer.On("Enqueue", mock.AnythingOfType("*asynq.Task"), mock.Anything).
		Run(func(args mock.Arguments) {
			task := args.Get(0).(*asynq.Task)
			assert.Equal(t, tasks.TypeBoardPersist, task.Type())
		}).
		Return(&asynq.TaskInfo{}, nil)

	svc := newSnapshotService(boardRepo, stateRepo, enqueuer)

	require.NoError(t, svc.Save(context.Background(), "ROOM1", "blob"))
	boardRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	stateRepo.AssertExpectations(t)
	enqueuer.AssertExpectations(t)
}

func TestSnapshotSavePersistsInlineWhenEnqueueFails(t *testing.T) {
	boardRepo := new(mocks.BoardRepository)
	stateRepo := new(mocks.StateRepository)
	enqueuer := new(mocks.Enqueuer)

	stateRepo.On("SetBoardCache", mock.Anything, "ROOM1", "blob", time.Hour).Return(nil)
	enqueuer.On("Enqueue", mock.Anything, mock.Anything).Return(nil, errors.New("broker down"))
	boardRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(b *domain.Board) bool {
		return b.RoomID == "ROOM1" && b.Data == "blob"
	})).Return(nil)

	svc := newSnapshotService(boardRepo, stateRepo, enqueuer)

	require.NoError(t, svc.Save(context.Background(), "ROOM1", "blob"))
	boardRepo.AssertExpectations(t)
}

func TestSnapshotSaveReportsTotalFailure(t *testing.T) {
	boardRepo := new(mocks.BoardRepository)
	stateRepo := new(mocks.StateRepository)
	enqueuer := new(mocks.Enqueuer)

	stateRepo.On("SetBoardCache", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("redis down"))
	enqueuer.On("Enqueue", mock.Anything, mock.Anything).Return(nil, errors.New("broker down"))
	boardRepo.On("Upsert", mock.Anything, mock.Anything).Return(errors.New("db down"))

	svc := newSnapshotService(boardRepo, stateRepo, enqueuer)

	assert.Error(t, svc.Save(context.Background(), "ROOM1", "blob"))
}

func TestSnapshotFlushActiveSkipsUncachedRooms(t *testing.T) {
	boardRepo := new(mocks.BoardRepository)
	stateRepo := new(mocks.StateRepository)
	enqueuer := new(mocks.Enqueuer)

	stateRepo.On("GetBoardCache", mock.Anything, "ROOM1").Return("blob", nil)
	stateRepo.On("GetBoardCache", mock.Anything, "ROOM2").Return("", repository.ErrNotFound)
	boardRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(b *domain.Board) bool {
		return b.RoomID == "ROOM1"
	})).Return(nil)

	svc := newSnapshotService(boardRepo, stateRepo, enqueuer)

	svc.FlushActive(context.Background(), []string{"ROOM1", "ROOM2"})
	boardRepo.AssertNumberOfCalls(t, "Upsert", 1)
}
