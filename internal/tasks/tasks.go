// Package tasks defines the asynq task types exchanged between the session
// core and the background workers.
package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// TypeBoardPersist writes one room's canvas blob to the database.
	TypeBoardPersist = "board:persist"
	// TypeBoardSync periodically re-persists cached canvases for live rooms.
	TypeBoardSync = "board:sync"
)

// Enqueuer is the narrow slice of *asynq.Client the services need; tests
// substitute a mock.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// BoardPersistPayload carries a canvas blob to the persistence worker.
type BoardPersistPayload struct {
	RoomID  string    `json:"room_id"`
	Data    string    `json:"data"`
	SavedAt time.Time `json:"saved_at"`
}

// NewBoardPersistTask builds the write-behind persistence task for a save.
func NewBoardPersistTask(roomID, data string, savedAt time.Time) (*asynq.Task, error) {
	payload, err := json.Marshal(BoardPersistPayload{RoomID: roomID, Data: data, SavedAt: savedAt})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeBoardPersist, payload), nil
}

// NewBoardSyncTask builds the periodic reconciliation task. It carries no
// payload; the worker asks the hub which rooms are live.
func NewBoardSyncTask() *asynq.Task {
	return asynq.NewTask(TypeBoardSync, nil)
}
