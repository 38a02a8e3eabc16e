package timeslot

import (
	"context"
	"sort"
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

type UpdateTimeslotSeriesInput struct {
	RoomID   uint
	SeriesID string

	Start      *time.Time
	End        *time.Time
	Recurrence *domain.Recurrence
	Amount     *int
	Force      bool
}

// ======================================================
// USE CASE
// ======================================================

type UpdateTimeslotSeries struct {
	repo  domain.Repository
	locks *roomlock.Registry
	cache *cache.CalendarCache
}

func NewUpdateTimeslotSeries(
	repo domain.Repository,
	locks *roomlock.Registry,
	calCache *cache.CalendarCache,
) *UpdateTimeslotSeries {
	return &UpdateTimeslotSeries{
		repo:  repo,
		locks: locks,
		cache: calCache,
	}
}

// ======================================================
// EXECUTE
// ======================================================

// Execute applies a series-wide edit. Members detached by individual edits
// (dirty) are left untouched. Recurrence/amount changes regenerate the series
// under the same series ID; start/end changes re-apply the per-instance
// offset math anchored at the earliest non-dirty member.
func (uc *UpdateTimeslotSeries) Execute(
	ctx context.Context,
	in UpdateTimeslotSeriesInput,
) ([]domain.Interval, error) {

	unlock := uc.locks.Lock(in.RoomID)
	defer unlock()

	_, err := uc.repo.Mutate(ctx, in.RoomID, func(room *models.Room, existing []domain.Interval) (domain.Batch, error) {
		members := membersOf(existing, in.SeriesID)
		if len(members) == 0 {
			return domain.Batch{}, httperr.ErrBusiness("series_not_found")
		}

		anchor, ok := domain.SeriesAnchor(members)
		if !ok {
			return domain.Batch{}, httperr.ErrBusiness("series_fully_detached")
		}

		start := anchor.Start
		if in.Start != nil {
			start = *in.Start
		}
		end := anchor.End
		if in.End != nil {
			end = *in.End
		}
		if !start.Before(end) || end.Sub(start) < domain.MinDuration {
			return domain.Batch{}, httperr.ErrBusiness("invalid_duration")
		}

		builder := newBatchBuilder(existing)

		if uc.reshapes(in, anchor) {
			if err := uc.regenerate(room.MaxConcurrentBookings, builder, members, anchor, in, start, end); err != nil {
				return domain.Batch{}, err
			}
		} else if in.Start != nil || in.End != nil {
			if err := uc.shiftMembers(room.MaxConcurrentBookings, builder, members, in, start, end); err != nil {
				return domain.Batch{}, err
			}
		} else {
			return domain.Batch{}, nil
		}

		return builder.build(), nil
	})
	if err != nil {
		return nil, err
	}
	uc.cache.Invalidate(ctx, in.RoomID)

	return uc.repo.ListSeries(ctx, in.RoomID, in.SeriesID)
}

func (uc *UpdateTimeslotSeries) reshapes(in UpdateTimeslotSeriesInput, anchor domain.Interval) bool {
	if in.Recurrence != nil && *in.Recurrence != anchor.Recurrence {
		return true
	}
	if in.Amount != nil && *in.Amount != anchor.Amount {
		return true
	}
	return false
}

// regenerate retires the non-dirty members and expands a fresh instance set
// under the original series ID.
func (uc *UpdateTimeslotSeries) regenerate(
	maxConcurrent int,
	builder *batchBuilder,
	members []domain.Interval,
	anchor domain.Interval,
	in UpdateTimeslotSeriesInput,
	start, end time.Time,
) error {

	recurrence := anchor.Recurrence
	if in.Recurrence != nil {
		recurrence = *in.Recurrence
	}
	amount := anchor.Amount
	if in.Amount != nil {
		amount = *in.Amount
	}

	template := anchor
	template.Start = start
	template.End = end

	instances, err := domain.ExpandSeries(template, recurrence, amount)
	if err != nil {
		return seriesValidationError(err)
	}
	seriesID := in.SeriesID
	for i := range instances {
		instances[i].SeriesID = &seriesID
	}

	for _, m := range members {
		if m.IsDirty {
			continue
		}
		builder.delete(m)
	}

	for _, inst := range instances {
		result := domain.CheckConflict(maxConcurrent, builder.snapshot(), inst, in.Force)
		if result.Conflict() {
			return httperr.ErrConflict(string(result.Reason), result.Reason.Message())
		}
		builder.place(inst)
	}
	return nil
}

// shiftMembers moves every non-dirty member to the patched anchor times plus
// its recurrence offset.
func (uc *UpdateTimeslotSeries) shiftMembers(
	maxConcurrent int,
	builder *batchBuilder,
	members []domain.Interval,
	in UpdateTimeslotSeriesInput,
	start, end time.Time,
) error {

	var editable []domain.Interval
	for _, m := range members {
		if !m.IsDirty {
			editable = append(editable, m)
		}
	}
	sort.Slice(editable, func(i, j int) bool {
		return editable[i].Start.Before(editable[j].Start)
	})

	for _, m := range editable {
		builder.remove(m)
	}

	for i, m := range editable {
		updated := m
		updated.Start = domain.Shift(start, m.Recurrence, i)
		updated.End = domain.Shift(end, m.Recurrence, i)

		result := domain.CheckConflict(maxConcurrent, builder.snapshot(), updated, in.Force)
		if result.Conflict() {
			return httperr.ErrConflict(string(result.Reason), result.Reason.Message())
		}
		builder.place(updated)
	}
	return nil
}
