package timeslot

import (
	"context"
	"time"

	"github.com/hochlab/lab-booking/internal/cache"
	domain "github.com/hochlab/lab-booking/internal/domain/timeslot"
	"github.com/hochlab/lab-booking/internal/httperr"
	"github.com/hochlab/lab-booking/internal/messaging"
	"github.com/hochlab/lab-booking/internal/models"
	"github.com/hochlab/lab-booking/internal/roomlock"
)

// ======================================================
// INPUT
// ======================================================

type CreateTimeslotInput struct {
	RoomID uint
	Kind   domain.Kind
	Start  time.Time
	End    time.Time
	Force  bool

	// Appointment-only.
	UserID             *uint
	ConfirmationStatus domain.ConfirmationStatus
}

// ======================================================
// USE CASE
// ======================================================

type CreateTimeslot struct {
	repo   domain.Repository
	locks  *roomlock.Registry
	events *messaging.Dispatcher
	cache  *cache.CalendarCache
}

func NewCreateTimeslot(
	repo domain.Repository,
	locks *roomlock.Registry,
	events *messaging.Dispatcher,
	calCache *cache.CalendarCache,
) *CreateTimeslot {
	return &CreateTimeslot{
		repo:   repo,
		locks:  locks,
		events: events,
		cache:  calCache,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateTimeslot) Execute(
	ctx context.Context,
	in CreateTimeslotInput,
) (domain.Interval, error) {

	unlock := uc.locks.Lock(in.RoomID)
	defer unlock()

	candidate := domain.Interval{
		RoomID:             in.RoomID,
		Start:              in.Start,
		End:                in.End,
		Kind:               in.Kind,
		Amount:             1,
		Recurrence:         domain.RecurrenceSingle,
		UserID:             in.UserID,
		ConfirmationStatus: in.ConfirmationStatus,
	}

	var (
		snapshot []domain.Interval
		roomName string
	)
	created, err := uc.repo.Mutate(ctx, in.RoomID, func(room *models.Room, existing []domain.Interval) (domain.Batch, error) {
		result := domain.CheckConflict(room.MaxConcurrentBookings, existing, candidate, in.Force)
		if result.Conflict() {
			return domain.Batch{}, httperr.ErrConflict(string(result.Reason), result.Reason.Message())
		}

		snapshot = existing
		roomName = room.Name

		builder := newBatchBuilder(existing)
		builder.place(candidate)
		return builder.build(), nil
	})
	if err != nil {
		return domain.Interval{}, err
	}
	uc.cache.Invalidate(ctx, in.RoomID)

	// A forced unavailable window leaves overlapped bookings intact; the
	// affected owners get told about the collision.
	if in.Kind == domain.KindUnavailable && in.Force {
		notifyOverridden(uc.events, snapshot, candidate, roomName)
	}

	if len(created) == 0 {
		return domain.Interval{}, httperr.ErrBusiness("timeslot_not_created")
	}
	return created[0], nil
}
