package models

import "time"

type Room struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`

	// May only grow after creation; lowering it could invalidate
	// already-committed bookings.
	MaxConcurrentBookings int  `gorm:"default:1" json:"max_concurrent_bookings"`
	AutoAcceptBookings    bool `gorm:"default:false" json:"auto_accept_bookings"`

	TimeSlots []TimeSlot `gorm:"constraint:OnDelete:CASCADE;" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
