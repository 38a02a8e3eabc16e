package timeslot

import (
	"context"

	domain "github.com/hochlab/lab-booking/internal/domain/timeslot"
	"github.com/hochlab/lab-booking/internal/dto"
)

// ======================================================
// USE CASE
// ======================================================

type ListTimeslots struct {
	repo domain.Repository
}

func NewListTimeslots(repo domain.Repository) *ListTimeslots {
	return &ListTimeslots{repo: repo}
}

func (uc *ListTimeslots) Execute(
	ctx context.Context,
	roomID uint,
) ([]dto.TimeSlotListDTO, error) {

	if _, err := uc.repo.GetRoom(ctx, roomID); err != nil {
		return nil, err
	}

	intervals, err := uc.repo.ListIntervals(ctx, roomID)
	if err != nil {
		return nil, err
	}

	bySeries := make(map[string][]domain.Interval)
	for _, iv := range intervals {
		if iv.SeriesID != nil {
			bySeries[*iv.SeriesID] = append(bySeries[*iv.SeriesID], iv)
		}
	}

	out := make([]dto.TimeSlotListDTO, 0, len(intervals))
	for _, iv := range intervals {
		row := dto.TimeSlotListDTO{
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
		}
		if iv.SeriesID != nil {
			row.MaxStart = domain.MaxStart(bySeries[*iv.SeriesID])
		}
		out = append(out, row)
	}
	return out, nil
}
