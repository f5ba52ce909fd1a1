package domain

import "time"

// Message is one chat message in a room's history. Rows are append-only;
// nothing in the server updates or deletes them.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	RoomID    string    `gorm:"index:idx_messages_room_ts,priority:1;size:64;not null" json:"-"`
	Username  string    `gorm:"size:191;not null" json:"username"`
	Body      string    `gorm:"type:text;not null" json:"message"`
	Timestamp time.Time `gorm:"index:idx_messages_room_ts,priority:2;not null" json:"timestamp"`
}
