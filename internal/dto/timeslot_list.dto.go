package dto

import "time"

// TimeSlotListDTO is one row of the room timeslot listing. MaxStart is the
// latest start over the non-dirty members of the row's series, nil for
// standalone timeslots.
type TimeSlotListDTO struct {
	ID                 uint       `json:"id"`
	RoomID             uint       `json:"room_id"`
	Start              time.Time  `json:"start"`
	End                time.Time  `json:"end"`
	Type               string     `json:"type"`
	SeriesID           *string    `json:"series_id"`
	Amount             int        `json:"amount"`
	Recurrence         string     `json:"recurrence"`
	IsDirty            bool       `json:"is_dirty"`
	UserID             *uint      `json:"user_id,omitempty"`
	ConfirmationStatus string     `json:"confirmation_status,omitempty"`
	MaxStart           *time.Time `json:"max_start"`
}
