package models

import "time"

// Recording is livecam recording metadata; the payload lives in S3 under Key.
type Recording struct {
	ID uint `gorm:"primaryKey" json:"id"`

	RoomID uint `gorm:"index;not null" json:"room_id"`
	Room   Room `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	UserID uint `gorm:"index" json:"user_id"`

	Key       string    `gorm:"size:255;uniqueIndex;not null" json:"key"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`

	CreatedAt time.Time `json:"created_at"`
}
