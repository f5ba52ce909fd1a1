package worker

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"collaborative-whiteboard/internal/hub"
	"collaborative-whiteboard/internal/service"
)

// BoardSyncHandler is the periodic reconciliation task: it re-persists the
// cached canvas of every live room, covering persist tasks lost while the
// broker was unreachable.
type BoardSyncHandler struct {
	hub       *hub.Hub
	snapshots *service.SnapshotService
}

func NewBoardSyncHandler(hubInstance *hub.Hub, snapshots *service.SnapshotService) *BoardSyncHandler {
	if hubInstance == nil {
		panic("Hub cannot be nil for BoardSyncHandler")
	}
	if snapshots == nil {
		panic("SnapshotService cannot be nil for BoardSyncHandler")
	}
	return &BoardSyncHandler{hub: hubInstance, snapshots: snapshots}
}

// ProcessTask implements asynq.Handler.
func (h *BoardSyncHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	logCtx := logrus.WithField("task_type", t.Type())

	roomIDs := h.hub.ActiveRoomIDs()
	if len(roomIDs) == 0 {
		logCtx.Debug("No active rooms, skipping board sync")
		return nil
	}
	logCtx.Infof("Syncing cached boards for %d active room(s)", len(roomIDs))

	syncCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	h.snapshots.FlushActive(syncCtx, roomIDs)
	return nil
}
