package domain

import "time"

// Board stores the persisted canvas snapshot for a room. There is at most
// one row per room; saves replace the blob wholesale (last write wins).
type Board struct {
	ID        uint      `gorm:"primaryKey"`
	RoomID    string    `gorm:"uniqueIndex;size:64;not null"`
	Data      string    `gorm:"type:longtext"` // opaque serialized canvas blob
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;index"`
}
