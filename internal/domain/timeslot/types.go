package timeslot

import (
	"time"

	"github.com/hochlab/lab-booking/internal/models"
)

// ===============================
// Interval kinds
// ===============================

type Kind string

const (
	KindAvailable   Kind = "available"
	KindUnavailable Kind = "unavailable"
	KindAppointment Kind = "appointment"
)

func ValidKind(k Kind) bool {
	switch k {
	case KindAvailable, KindUnavailable, KindAppointment:
		return true
	}
	return false
}

// ===============================
// Recurrence
// ===============================

type Recurrence string

const (
	RecurrenceSingle  Recurrence = "single"
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
	RecurrenceYearly  Recurrence = "yearly"
)

func ValidRecurrence(r Recurrence) bool {
	switch r {
	case RecurrenceSingle, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly:
		return true
	}
	return false
}

// ===============================
// Appointment confirmation
// ===============================

type ConfirmationStatus string

const (
	StatusPending  ConfirmationStatus = "pending"
	StatusAccepted ConfirmationStatus = "accepted"
	StatusDenied   ConfirmationStatus = "denied"
)

func ValidConfirmationStatus(s ConfirmationStatus) bool {
	switch s {
	case StatusPending, StatusAccepted, StatusDenied:
		return true
	}
	return false
}

// ===============================
// Interval
// ===============================

// MinDuration is the shortest interval the engine accepts.
const MinDuration = time.Hour

// Interval is one typed [start, end) range on a room's calendar. ID is zero
// for intervals that have not been persisted yet.
type Interval struct {
	ID     uint      `json:"id"`
	RoomID uint      `json:"room_id"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Kind   Kind      `json:"type"`

	SeriesID   *string    `json:"series_id"`
	Amount     int        `json:"amount"`
	Recurrence Recurrence `json:"recurrence"`
	IsDirty    bool       `json:"is_dirty"`

	UserID             *uint              `json:"user_id,omitempty"`
	ConfirmationStatus ConfirmationStatus `json:"confirmation_status,omitempty"`

	// CreatedAt is carried from the stored row so engine updates never
	// rewrite the audit timestamp.
	CreatedAt time.Time `json:"created_at"`
}

// Overlaps reports whether the two half-open ranges share any instant.
// Touching boundaries (a.End == b.Start) do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// OverlapsRange is Overlaps against a bare [start, end) range.
func (iv Interval) OverlapsRange(start, end time.Time) bool {
	return iv.Start.Before(end) && start.Before(iv.End)
}

// Duration of the interval.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// ===============================
// Model conversion
// ===============================

func FromModel(m models.TimeSlot) Interval {
	return Interval{
		ID:                 m.ID,
		RoomID:             m.RoomID,
		Start:              m.Start,
		End:                m.End,
		Kind:               Kind(m.Type),
		SeriesID:           m.SeriesID,
		Amount:             m.Amount,
		Recurrence:         Recurrence(m.Recurrence),
		IsDirty:            m.IsDirty,
		UserID:             m.UserID,
		ConfirmationStatus: ConfirmationStatus(m.ConfirmationStatus),
		CreatedAt:          m.CreatedAt,
	}
}

func (iv Interval) ToModel() models.TimeSlot {
	return models.TimeSlot{
		ID:                 iv.ID,
		RoomID:             iv.RoomID,
		Start:              iv.Start,
		End:                iv.End,
		Type:               string(iv.Kind),
		SeriesID:           iv.SeriesID,
		Amount:             iv.Amount,
		Recurrence:         string(iv.Recurrence),
		IsDirty:            iv.IsDirty,
		UserID:             iv.UserID,
		ConfirmationStatus: string(iv.ConfirmationStatus),
		CreatedAt:          iv.CreatedAt,
	}
}
