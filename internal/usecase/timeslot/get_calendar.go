package timeslot

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/hochlab/lab-booking/internal/cache"
	domain "github.com/hochlab/lab-booking/internal/domain/timeslot"
)

// ======================================================
// RESPONSES
// ======================================================

type CalendarResponse struct {
	Calendar    domain.Grid `json:"calendar"`
	MinTimeslot int         `json:"minTimeslot"`
}

type AvailabilityCalendarResponse struct {
	Calendar    domain.AvailabilityGrid `json:"calendar"`
	MinTimeslot int                     `json:"minTimeslot"`
}

// ======================================================
// USE CASE
// ======================================================

type GetCalendar struct {
	repo  domain.Repository
	cache *cache.CalendarCache
	loc   *time.Location
}

// NewGetCalendar renders in loc so the hour rows line up with the wall clock
// the rooms physically live in.
func NewGetCalendar(
	repo domain.Repository,
	calCache *cache.CalendarCache,
	loc *time.Location,
) *GetCalendar {
	if loc == nil {
		loc = time.UTC
	}
	return &GetCalendar{
		repo:  repo,
		cache: calCache,
		loc:   loc,
	}
}

// ======================================================
// EXECUTE
// ======================================================

// Execute renders the booking grid for the week containing date and returns
// it as the marshalled response body, so cache hits skip both the database
// and the renderer.
func (uc *GetCalendar) Execute(
	ctx context.Context,
	roomID uint,
	date time.Time,
) ([]byte, error) {

	date = date.In(uc.loc)
	week := domain.StartOfWeek(date)
	if payload, ok := uc.cache.Get(ctx, "booking", roomID, week); ok {
		return payload, nil
	}

	room, err := uc.repo.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	intervals, err := uc.repo.ListIntervals(ctx, roomID)
	if err != nil {
		return nil, err
	}

	grid, minHour, err := domain.RenderCalendar(room.MaxConcurrentBookings, intervals, date)
	if err != nil {
		// The conflict resolver should make this unreachable; reaching it
		// means the stored interval set violates the concurrency limit.
		log.Printf("calendar integrity violation in room %d: %v", roomID, err)
		return nil, err
	}

	payload, err := json.Marshal(CalendarResponse{Calendar: grid, MinTimeslot: minHour})
	if err != nil {
		return nil, err
	}
	uc.cache.Set(ctx, "booking", roomID, week, payload)

	return payload, nil
}

// ======================================================
// AVAILABILITY VIEW
// ======================================================

type GetAvailabilityCalendar struct {
	repo  domain.Repository
	cache *cache.CalendarCache
	loc   *time.Location
}

func NewGetAvailabilityCalendar(
	repo domain.Repository,
	calCache *cache.CalendarCache,
	loc *time.Location,
) *GetAvailabilityCalendar {
	if loc == nil {
		loc = time.UTC
	}
	return &GetAvailabilityCalendar{
		repo:  repo,
		cache: calCache,
		loc:   loc,
	}
}

func (uc *GetAvailabilityCalendar) Execute(
	ctx context.Context,
	roomID uint,
	date time.Time,
) ([]byte, error) {

	date = date.In(uc.loc)
	week := domain.StartOfWeek(date)
	if payload, ok := uc.cache.Get(ctx, "availability", roomID, week); ok {
		return payload, nil
	}

	if _, err := uc.repo.GetRoom(ctx, roomID); err != nil {
		return nil, err
	}

	intervals, err := uc.repo.ListIntervals(ctx, roomID)
	if err != nil {
		return nil, err
	}

	grid, minHour := domain.RenderAvailabilityCalendar(intervals, date)

	payload, err := json.Marshal(AvailabilityCalendarResponse{Calendar: grid, MinTimeslot: minHour})
	if err != nil {
		return nil, err
	}
	uc.cache.Set(ctx, "availability", roomID, week, payload)

	return payload, nil
}
