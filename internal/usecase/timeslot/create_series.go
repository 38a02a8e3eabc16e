package timeslot

import (
	"context"
	"errors"
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

type CreateTimeslotSeriesInput struct {
	RoomID     uint
	Kind       domain.Kind
	Start      time.Time
	End        time.Time
	Recurrence domain.Recurrence
	Amount     int
	Force      bool

	UserID             *uint
	ConfirmationStatus domain.ConfirmationStatus
}

// ======================================================
// USE CASE
// ======================================================

type CreateTimeslotSeries struct {
	repo   domain.Repository
	locks  *roomlock.Registry
	events *messaging.Dispatcher
	cache  *cache.CalendarCache
}

func NewCreateTimeslotSeries(
	repo domain.Repository,
	locks *roomlock.Registry,
	events *messaging.Dispatcher,
	calCache *cache.CalendarCache,
) *CreateTimeslotSeries {
	return &CreateTimeslotSeries{
		repo:   repo,
		locks:  locks,
		events: events,
		cache:  calCache,
	}
}

// ======================================================
// EXECUTE
// ======================================================

// Execute expands the series and commits all instances atomically; a conflict
// on any single instance aborts the whole series before anything is persisted.
func (uc *CreateTimeslotSeries) Execute(
	ctx context.Context,
	in CreateTimeslotSeriesInput,
) ([]domain.Interval, error) {

	template := domain.Interval{
		RoomID:             in.RoomID,
		Start:              in.Start,
		End:                in.End,
		Kind:               in.Kind,
		UserID:             in.UserID,
		ConfirmationStatus: in.ConfirmationStatus,
	}

	instances, err := domain.ExpandSeries(template, in.Recurrence, in.Amount)
	if err != nil {
		return nil, seriesValidationError(err)
	}

	unlock := uc.locks.Lock(in.RoomID)
	defer unlock()

	var (
		snapshot []domain.Interval
		roomName string
	)
	created, err := uc.repo.Mutate(ctx, in.RoomID, func(room *models.Room, existing []domain.Interval) (domain.Batch, error) {
		snapshot = existing
		roomName = room.Name

		builder := newBatchBuilder(existing)
		for _, inst := range instances {
			result := domain.CheckConflict(room.MaxConcurrentBookings, builder.snapshot(), inst, in.Force)
			if result.Conflict() {
				return domain.Batch{}, httperr.ErrConflict(string(result.Reason), result.Reason.Message())
			}
			builder.place(inst)
		}
		return builder.build(), nil
	})
	if err != nil {
		return nil, err
	}
	uc.cache.Invalidate(ctx, in.RoomID)

	// Same contract as the single-slot path: forcing an unavailable series
	// over booked appointments keeps the bookings and notifies their owners.
	if in.Kind == domain.KindUnavailable && in.Force {
		for _, inst := range instances {
			notifyOverridden(uc.events, snapshot, inst, roomName)
		}
	}

	return created, nil
}

func seriesValidationError(err error) error {
	switch {
	case errors.Is(err, domain.ErrSeriesTooSmall):
		return httperr.ErrBusiness("series_too_small")
	case errors.Is(err, domain.ErrSeriesNotRecurring):
		return httperr.ErrBusiness("series_not_recurring")
	case errors.Is(err, domain.ErrIllegalRecurrence):
		return httperr.ErrBusiness("illegal_recurrence")
	}
	return err
}
