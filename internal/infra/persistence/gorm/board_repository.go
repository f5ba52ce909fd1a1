package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"collaborative-whiteboard/internal/domain"
	"collaborative-whiteboard/internal/repository"
)

// GormBoardRepository is the GORM implementation of BoardRepository.
type GormBoardRepository struct {
	db *gorm.DB
}

func NewGormBoardRepository(db *gorm.DB) *GormBoardRepository {
	if db == nil {
		panic("database connection cannot be nil for GormBoardRepository")
	}
	return &GormBoardRepository{db: db}
}

// GetByRoom returns the single snapshot row for a room.
func (r *GormBoardRepository) GetByRoom(ctx context.Context, roomID string) (*domain.Board, error) {
	var board domain.Board
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		First(&board).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrBoardNotFound
		}
		return nil, fmt.Errorf("gorm: get board for room %s: %w", roomID, err)
	}
	return &board, nil
}

// Upsert replaces the room's blob wholesale. room_id carries a unique
// index, so ON CONFLICT keeps the invariant of at most one row per room.
func (r *GormBoardRepository) Upsert(ctx context.Context, board *domain.Board) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "room_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
		}).
		Create(board).Error
	if err != nil {
		return fmt.Errorf("gorm: upsert board for room %s: %w", board.RoomID, err)
	}
	return nil
}
