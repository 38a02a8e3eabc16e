package timeslot

import (
	"context"
	"time"

	"github.com/hochlab/lab-booking/internal/cache"
	domain "github.com/hochlab/lab-booking/internal/domain/timeslot"
	"github.com/hochlab/lab-booking/internal/httperr"
	"github.com/hochlab/lab-booking/internal/models"
	"github.com/hochlab/lab-booking/internal/roomlock"
)

// ======================================================
// INPUT
// ======================================================

type UpdateTimeslotInput struct {
	RoomID uint
	ID     uint
	Start  *time.Time
	End    *time.Time
	Force  bool

	ConfirmationStatus *domain.ConfirmationStatus
}

// ======================================================
// USE CASE
// ======================================================

type UpdateTimeslot struct {
	repo  domain.Repository
	locks *roomlock.Registry
	cache *cache.CalendarCache
}

func NewUpdateTimeslot(
	repo domain.Repository,
	locks *roomlock.Registry,
	calCache *cache.CalendarCache,
) *UpdateTimeslot {
	return &UpdateTimeslot{
		repo:  repo,
		locks: locks,
		cache: calCache,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *UpdateTimeslot) Execute(
	ctx context.Context,
	in UpdateTimeslotInput,
) (domain.Interval, error) {

	unlock := uc.locks.Lock(in.RoomID)
	defer unlock()

	var merged domain.Interval
	_, err := uc.repo.Mutate(ctx, in.RoomID, func(room *models.Room, existing []domain.Interval) (domain.Batch, error) {
		current, ok := findByID(existing, in.ID)
		if !ok {
			return domain.Batch{}, httperr.ErrBusiness("timeslot_not_found")
		}

		updated := current
		if in.Start != nil {
			updated.Start = *in.Start
		}
		if in.End != nil {
			updated.End = *in.End
		}
		if in.ConfirmationStatus != nil {
			updated.ConfirmationStatus = *in.ConfirmationStatus
		}
		if !updated.Start.Before(updated.End) || updated.Duration() < domain.MinDuration {
			return domain.Batch{}, httperr.ErrBusiness("invalid_duration")
		}

		// Editing a series member individually detaches it from whole-series
		// edits and aggregates.
		if updated.SeriesID != nil && (in.Start != nil || in.End != nil) {
			updated.IsDirty = true
		}

		result := domain.CheckConflict(room.MaxConcurrentBookings, existing, updated, in.Force)
		if result.Conflict() {
			return domain.Batch{}, httperr.ErrConflict(string(result.Reason), result.Reason.Message())
		}

		builder := newBatchBuilder(existing)
		builder.remove(current)
		merged = builder.place(updated)
		return builder.build(), nil
	})
	if err != nil {
		return domain.Interval{}, err
	}
	uc.cache.Invalidate(ctx, in.RoomID)

	return merged, nil
}
