package timeslot

import (
	"context"

	"github.com/hochlab/lab-booking/internal/cache"
	domain "github.com/hochlab/lab-booking/internal/domain/timeslot"
	"github.com/hochlab/lab-booking/internal/httperr"
	"github.com/hochlab/lab-booking/internal/messaging"
	"github.com/hochlab/lab-booking/internal/models"
	"github.com/hochlab/lab-booking/internal/roomlock"
)

// DependentBookingMessage is the 409 body when an available window with
// bookings inside it is deleted without force.
const DependentBookingMessage = "Cannot delete available timeslot because at least one booked appointment depends on it."

// ======================================================
// USE CASE
// ======================================================

type DeleteTimeslot struct {
	repo   domain.Repository
	locks  *roomlock.Registry
	events *messaging.Dispatcher
	cache  *cache.CalendarCache
}

func NewDeleteTimeslot(
	repo domain.Repository,
	locks *roomlock.Registry,
	events *messaging.Dispatcher,
	calCache *cache.CalendarCache,
) *DeleteTimeslot {
	return &DeleteTimeslot{
		repo:   repo,
		locks:  locks,
		events: events,
		cache:  calCache,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *DeleteTimeslot) Execute(
	ctx context.Context,
	roomID uint,
	id uint,
	force bool,
) error {

	unlock := uc.locks.Lock(roomID)
	defer unlock()

	var current domain.Interval
	_, err := uc.repo.Mutate(ctx, roomID, func(_ *models.Room, existing []domain.Interval) (domain.Batch, error) {
		var ok bool
		current, ok = findByID(existing, id)
		if !ok {
			return domain.Batch{}, httperr.ErrBusiness("timeslot_not_found")
		}

		if current.Kind == domain.KindAvailable && !force && hasDependentBooking(existing, current) {
			return domain.Batch{}, httperr.ErrConflict("dependent_booking", DependentBookingMessage)
		}

		return domain.Batch{Delete: []uint{id}}, nil
	})
	if err != nil {
		return err
	}
	uc.cache.Invalidate(ctx, roomID)

	if current.Kind == domain.KindAppointment && current.UserID != nil {
		entityID := current.ID
		uc.events.Dispatch(messaging.Event{
			UserID:   current.UserID,
			Action:   messaging.ActionAppointmentDeleted,
			Title:    "Appointment cancelled",
			Content:  "Your appointment was removed from the room calendar.",
			Entity:   "timeslot",
			EntityID: &entityID,
		})
	}

	return nil
}

func hasDependentBooking(existing []domain.Interval, window domain.Interval) bool {
	for _, e := range existing {
		if e.Kind == domain.KindAppointment && e.Overlaps(window) {
			return true
		}
	}
	return false
}
