package models

import (
	"time"

	"gorm.io/gorm"
)

// TimeSlot is the single-table record behind every typed interval of a room's
// calendar. Type discriminates available/unavailable windows from booked
// appointments; the appointment-only columns stay NULL for the other kinds.
type TimeSlot struct {
	ID uint `gorm:"primaryKey" json:"id"`

	RoomID uint `gorm:"index;not null" json:"room_id"`
	Room   Room `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	Start time.Time `gorm:"index;not null" json:"start"`
	End   time.Time `gorm:"not null" json:"end"`

	Type string `gorm:"size:20;index;not null" json:"type"`

	SeriesID   *string `gorm:"size:36;index" json:"series_id"`
	Amount     int     `gorm:"default:1" json:"amount"`
	Recurrence string  `gorm:"size:10;default:'single'" json:"recurrence"`

	// IsDirty marks a series member that was edited individually and is
	// therefore detached from subsequent whole-series edits.
	IsDirty bool `gorm:"default:false" json:"is_dirty"`

	// Appointment-only fields.
	UserID             *uint  `json:"user_id"`
	User               *User  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
	ConfirmationStatus string `gorm:"size:10" json:"confirmation_status,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
