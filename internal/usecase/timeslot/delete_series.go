package timeslot

import (
	"context"

	"github.com/hochlab/lab-booking/internal/cache"
	domain "github.com/hochlab/lab-booking/internal/domain/timeslot"
	"github.com/hochlab/lab-booking/internal/httperr"
	"github.com/hochlab/lab-booking/internal/models"
	"github.com/hochlab/lab-booking/internal/roomlock"
)

// ======================================================
// USE CASE
// ======================================================

type DeleteTimeslotSeries struct {
	repo  domain.Repository
	locks *roomlock.Registry
	cache *cache.CalendarCache
}

func NewDeleteTimeslotSeries(
	repo domain.Repository,
	locks *roomlock.Registry,
	calCache *cache.CalendarCache,
) *DeleteTimeslotSeries {
	return &DeleteTimeslotSeries{
		repo:  repo,
		locks: locks,
		cache: calCache,
	}
}

// ======================================================
// EXECUTE
// ======================================================

// Execute removes every member of the series. Available series with booked
// dependents require force; unavailable and appointment series delete
// unconditionally.
func (uc *DeleteTimeslotSeries) Execute(
	ctx context.Context,
	roomID uint,
	seriesID string,
	force bool,
) error {

	unlock := uc.locks.Lock(roomID)
	defer unlock()

	_, err := uc.repo.Mutate(ctx, roomID, func(_ *models.Room, existing []domain.Interval) (domain.Batch, error) {
		members := membersOf(existing, seriesID)
		if len(members) == 0 {
			return domain.Batch{}, httperr.ErrBusiness("series_not_found")
		}

		batch := domain.Batch{}
		for _, m := range members {
			if m.Kind == domain.KindAvailable && !force && hasDependentBooking(existing, m) {
				return domain.Batch{}, httperr.ErrConflict("dependent_booking", DependentBookingMessage)
			}
			batch.Delete = append(batch.Delete, m.ID)
		}
		return batch, nil
	})
	if err != nil {
		return err
	}
	uc.cache.Invalidate(ctx, roomID)

	return nil
}
