package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"collaborative-whiteboard/internal/service"
	"collaborative-whiteboard/internal/tasks"
)

// BoardPersistHandler writes a saved canvas blob to the database. The blob
// was already made visible through the cache when the save was accepted;
// this is the durable half of the write.
type BoardPersistHandler struct {
	snapshots *service.SnapshotService
}

func NewBoardPersistHandler(snapshots *service.SnapshotService) *BoardPersistHandler {
	if snapshots == nil {
		panic("SnapshotService cannot be nil for BoardPersistHandler")
	}
	return &BoardPersistHandler{snapshots: snapshots}
}

// ProcessTask implements asynq.Handler.
func (h *BoardPersistHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload tasks.BoardPersistPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logrus.WithError(err).Error("Failed to unmarshal board persist payload")
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	logCtx := logrus.WithFields(logrus.Fields{
		"task_type": t.Type(),
		"room_id":   payload.RoomID,
		"saved_at":  payload.SavedAt,
	})

	if err := h.snapshots.Persist(ctx, payload.RoomID, payload.Data); err != nil {
		logCtx.WithError(err).Error("Failed to persist board")
		return err
	}
	logCtx.Debug("Board persisted")
	return nil
}
