package timeslot

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/hochlab/lab-booking/internal/domain/timeslot"
	"github.com/hochlab/lab-booking/internal/httperr"
	"github.com/hochlab/lab-booking/internal/messaging"
	"github.com/hochlab/lab-booking/internal/models"
	"github.com/hochlab/lab-booking/internal/roomlock"
)

// ======================================================
// FAKE REPOSITORY
// ======================================================

type fakeRepo struct {
	rooms     map[uint]*models.Room
	intervals map[uint]domain.Interval
	nextID    uint
	applied   int
}

func newFakeRepo(room *models.Room) *fakeRepo {
	r := &fakeRepo{
		rooms:     map[uint]*models.Room{},
		intervals: map[uint]domain.Interval{},
		nextID:    1,
	}
	if room != nil {
		r.rooms[room.ID] = room
	}
	return r
}

func (r *fakeRepo) seed(iv domain.Interval) domain.Interval {
	iv.ID = r.nextID
	r.nextID++
	r.intervals[iv.ID] = iv
	return iv
}

func (r *fakeRepo) GetRoom(_ context.Context, roomID uint) (*models.Room, error) {
	room, ok := r.rooms[roomID]
	if !ok {
		return nil, httperr.ErrBusiness("room_not_found")
	}
	return room, nil
}

func (r *fakeRepo) ListIntervals(_ context.Context, roomID uint) ([]domain.Interval, error) {
	var out []domain.Interval
	for _, iv := range r.intervals {
		if iv.RoomID == roomID {
			out = append(out, iv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (r *fakeRepo) GetInterval(_ context.Context, roomID, id uint) (domain.Interval, error) {
	iv, ok := r.intervals[id]
	if !ok || iv.RoomID != roomID {
		return domain.Interval{}, httperr.ErrBusiness("timeslot_not_found")
	}
	return iv, nil
}

func (r *fakeRepo) ListSeries(_ context.Context, roomID uint, seriesID string) ([]domain.Interval, error) {
	var out []domain.Interval
	for _, iv := range r.intervals {
		if iv.RoomID == roomID && iv.SeriesID != nil && *iv.SeriesID == seriesID {
			out = append(out, iv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (r *fakeRepo) Mutate(ctx context.Context, roomID uint, fn func(*models.Room, []domain.Interval) (domain.Batch, error)) ([]domain.Interval, error) {
	room, err := r.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	existing, err := r.ListIntervals(ctx, roomID)
	if err != nil {
		return nil, err
	}
	batch, err := fn(room, existing)
	if err != nil {
		return nil, err
	}
	return r.apply(batch)
}

func (r *fakeRepo) apply(batch domain.Batch) ([]domain.Interval, error) {
	r.applied++
	for _, id := range batch.Delete {
		delete(r.intervals, id)
	}
	for _, iv := range batch.Update {
		r.intervals[iv.ID] = iv
	}
	var created []domain.Interval
	for _, iv := range batch.Create {
		iv.ID = r.nextID
		r.nextID++
		r.intervals[iv.ID] = iv
		created = append(created, iv)
	}
	return created, nil
}

var _ domain.Repository = (*fakeRepo)(nil)

// ======================================================
// FIXTURES
// ======================================================

var monday = time.Date(2022, 2, 21, 0, 0, 0, 0, time.UTC)

func hour(day, h int) time.Time {
	return monday.AddDate(0, 0, day).Add(time.Duration(h) * time.Hour)
}

func testRoom(maxConcurrent int) *models.Room {
	return &models.Room{ID: 1, Name: "optics lab", MaxConcurrentBookings: maxConcurrent}
}

func availableAt(day, from, to int) domain.Interval {
	return domain.Interval{
		RoomID: 1, Kind: domain.KindAvailable,
		Start: hour(day, from), End: hour(day, to),
		Amount: 1, Recurrence: domain.RecurrenceSingle,
	}
}

func appointmentAt(day, from, to int, userID uint) domain.Interval {
	return domain.Interval{
		RoomID: 1, Kind: domain.KindAppointment,
		Start: hour(day, from), End: hour(day, to),
		Amount: 1, Recurrence: domain.RecurrenceSingle,
		UserID: &userID, ConfirmationStatus: domain.StatusAccepted,
	}
}

// ======================================================
// CREATE
// ======================================================

func TestCreateTimeslotMergesWithNeighbors(t *testing.T) {
	repo := newFakeRepo(testRoom(1))
	repo.seed(availableAt(0, 8, 10))
	repo.seed(availableAt(0, 12, 14))

	uc := NewCreateTimeslot(repo, roomlock.NewRegistry(), nil, nil)
	created, err := uc.Execute(context.Background(), CreateTimeslotInput{
		RoomID: 1,
		Kind:   domain.KindAvailable,
		Start:  hour(0, 10),
		End:    hour(0, 12),
	})
	require.NoError(t, err)

	assert.Equal(t, hour(0, 8), created.Start)
	assert.Equal(t, hour(0, 14), created.End)

	// Both neighbors were absorbed into the one persisted row.
	all, _ := repo.ListIntervals(context.Background(), 1)
	require.Len(t, all, 1)
	assert.Equal(t, hour(0, 8), all[0].Start)
	assert.Equal(t, hour(0, 14), all[0].End)
	assert.Equal(t, 1, repo.applied)
}

func TestCreateTimeslotConflictIsNotPersisted(t *testing.T) {
	repo := newFakeRepo(testRoom(1))
	repo.seed(availableAt(0, 8, 18))

	uc := NewCreateTimeslot(repo, roomlock.NewRegistry(), nil, nil)
	_, err := uc.Execute(context.Background(), CreateTimeslotInput{
		RoomID: 1,
		Kind:   domain.KindAvailable,
		Start:  hour(0, 10),
		End:    hour(0, 12),
	})

	ce, ok := httperr.AsConflict(err)
	require.True(t, ok)
	assert.Equal(t, string(domain.ReasonSameTypeOverlap), ce.Code)
	assert.Zero(t, repo.applied)
}

// staleReadRepo answers plain reads with an empty calendar while the
// mutation snapshot still holds the seeded rows, like a row committed by
// another replica between a plain read and the write transaction.
type staleReadRepo struct {
	*fakeRepo
}

func (r *staleReadRepo) ListIntervals(context.Context, uint) ([]domain.Interval, error) {
	return nil, nil
}

func TestCreateTimeslotChecksConflictsInsideMutation(t *testing.T) {
	inner := newFakeRepo(testRoom(1))
	inner.seed(availableAt(0, 8, 18))
	repo := &staleReadRepo{fakeRepo: inner}

	uc := NewCreateTimeslot(repo, roomlock.NewRegistry(), nil, nil)
	_, err := uc.Execute(context.Background(), CreateTimeslotInput{
		RoomID: 1,
		Kind:   domain.KindAvailable,
		Start:  hour(0, 10),
		End:    hour(0, 12),
	})

	// The overlap is only visible in the mutation snapshot; it must still
	// be caught there, not against the stale plain read.
	ce, ok := httperr.AsConflict(err)
	require.True(t, ok)
	assert.Equal(t, string(domain.ReasonSameTypeOverlap), ce.Code)
	assert.Zero(t, inner.applied)
}

func TestCreateTimeslotUnknownRoom(t *testing.T) {
	repo := newFakeRepo(nil)

	uc := NewCreateTimeslot(repo, roomlock.NewRegistry(), nil, nil)
	_, err := uc.Execute(context.Background(), CreateTimeslotInput{
		RoomID: 9,
		Kind:   domain.KindAvailable,
		Start:  hour(0, 10),
		End:    hour(0, 12),
	})
	assert.True(t, httperr.IsBusiness(err, "room_not_found"))
}

func TestCreateSeriesPersistsSharedSeriesID(t *testing.T) {
	repo := newFakeRepo(testRoom(1))

	uc := NewCreateTimeslotSeries(repo, roomlock.NewRegistry(), nil, nil)
	created, err := uc.Execute(context.Background(), CreateTimeslotSeriesInput{
		RoomID:     1,
		Kind:       domain.KindAvailable,
		Start:      hour(0, 10),
		End:        hour(0, 12),
		Recurrence: domain.RecurrenceDaily,
		Amount:     3,
	})
	require.NoError(t, err)
	require.Len(t, created, 3)

	seriesID := created[0].SeriesID
	require.NotNil(t, seriesID)
	for i, iv := range created {
		assert.Equal(t, hour(i, 10), iv.Start)
		assert.Equal(t, seriesID, iv.SeriesID)
	}
	assert.Equal(t, 1, repo.applied)
}

func TestCreateSeriesIsAllOrNothing(t *testing.T) {
	repo := newFakeRepo(testRoom(1))
	repo.seed(availableAt(0, 8, 18))
	repo.seed(availableAt(1, 8, 18))
	// No availability on Wednesday, so the third instance cannot land.

	uc := NewCreateTimeslotSeries(repo, roomlock.NewRegistry(), nil, nil)
	userID := uint(7)
	_, err := uc.Execute(context.Background(), CreateTimeslotSeriesInput{
		RoomID:             1,
		Kind:               domain.KindAppointment,
		Start:              hour(0, 10),
		End:                hour(0, 12),
		Recurrence:         domain.RecurrenceDaily,
		Amount:             3,
		UserID:             &userID,
		ConfirmationStatus: domain.StatusAccepted,
	})

	ce, ok := httperr.AsConflict(err)
	require.True(t, ok)
	assert.Equal(t, string(domain.ReasonOutsideAvailable), ce.Code)

	// Nothing was written, not even the two instances that fit.
	assert.Zero(t, repo.applied)
	all, _ := repo.ListIntervals(context.Background(), 1)
	assert.Len(t, all, 2)
}

func TestCreateSeriesValidation(t *testing.T) {
	repo := newFakeRepo(testRoom(1))
	uc := NewCreateTimeslotSeries(repo, roomlock.NewRegistry(), nil, nil)

	tests := []struct {
		name       string
		recurrence domain.Recurrence
		amount     int
		wantCode   string
	}{
		{"amount 1", domain.RecurrenceDaily, 1, "series_too_small"},
		{"single recurrence", domain.RecurrenceSingle, 3, "series_not_recurring"},
		{"unknown recurrence", domain.Recurrence("hourly"), 3, "illegal_recurrence"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), CreateTimeslotSeriesInput{
				RoomID:     1,
				Kind:       domain.KindAvailable,
				Start:      hour(0, 10),
				End:        hour(0, 12),
				Recurrence: tt.recurrence,
				Amount:     tt.amount,
			})
			assert.True(t, httperr.IsBusiness(err, tt.wantCode), "got %v", err)
		})
	}
}

type capturePublisher struct {
	mu     sync.Mutex
	events []messaging.Event
}

func (p *capturePublisher) Publish(_ context.Context, ev messaging.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *capturePublisher) snapshot() []messaging.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]messaging.Event, len(p.events))
	copy(out, p.events)
	return out
}

func TestCreateSeriesForcedUnavailableNotifiesOwners(t *testing.T) {
	repo := newFakeRepo(testRoom(1))
	repo.seed(availableAt(0, 8, 18))
	repo.seed(availableAt(1, 8, 18))
	repo.seed(appointmentAt(1, 10, 12, 7))

	pub := &capturePublisher{}
	events := messaging.NewDispatcher(nil, pub)

	uc := NewCreateTimeslotSeries(repo, roomlock.NewRegistry(), events, nil)
	created, err := uc.Execute(context.Background(), CreateTimeslotSeriesInput{
		RoomID:     1,
		Kind:       domain.KindUnavailable,
		Start:      hour(0, 9),
		End:        hour(0, 13),
		Recurrence: domain.RecurrenceDaily,
		Amount:     2,
		Force:      true,
	})
	require.NoError(t, err)
	require.Len(t, created, 2)

	// The Tuesday instance covers the booking; its owner hears about it.
	assert.Eventually(t, func() bool {
		for _, ev := range pub.snapshot() {
			if ev.Action == messaging.ActionAppointmentOverridden &&
				ev.UserID != nil && *ev.UserID == 7 {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)

	// The booking itself stays on the calendar.
	all, _ := repo.ListIntervals(context.Background(), 1)
	bookings := 0
	for _, iv := range all {
		if iv.Kind == domain.KindAppointment {
			bookings++
		}
	}
	assert.Equal(t, 1, bookings)
}

// ======================================================
// UPDATE
// ======================================================

func TestUpdateTimeslotMovesAndMerges(t *testing.T) {
	repo := newFakeRepo(testRoom(1))
	repo.seed(availableAt(0, 8, 10))
	moved := repo.seed(availableAt(0, 12, 14))

	newStart := hour(0, 10)
	newEnd := hour(0, 12)
	uc := NewUpdateTimeslot(repo, roomlock.NewRegistry(), nil)
	merged, err := uc.Execute(context.Background(), UpdateTimeslotInput{
		RoomID: 1,
		ID:     moved.ID,
		Start:  &newStart,
		End:    &newEnd,
	})
	require.NoError(t, err)

	assert.Equal(t, hour(0, 8), merged.Start)
	assert.Equal(t, hour(0, 12), merged.End)

	all, _ := repo.ListIntervals(context.Background(), 1)
	require.Len(t, all, 1)
}

func TestUpdateTimeslotDetachesSeriesMember(t *testing.T) {
	repo := newFakeRepo(testRoom(1))
	seriesID := "c1a6e6f2-0000-0000-0000-000000000000"
	member := availableAt(1, 10, 12)
	member.SeriesID = &seriesID
	member.Amount = 3
	member.Recurrence = domain.RecurrenceDaily
	member = repo.seed(member)

	newStart := hour(1, 14)
	newEnd := hour(1, 16)
	uc := NewUpdateTimeslot(repo, roomlock.NewRegistry(), nil)
	updated, err := uc.Execute(context.Background(), UpdateTimeslotInput{
		RoomID: 1,
		ID:     member.ID,
		Start:  &newStart,
		End:    &newEnd,
	})
	require.NoError(t, err)
	assert.True(t, updated.IsDirty)

	stored, err := repo.GetInterval(context.Background(), 1, member.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsDirty)
	assert.Equal(t, newStart, stored.Start)
}

func TestUpdateTimeslotRejectsShortDuration(t *testing.T) {
	repo := newFakeRepo(testRoom(1))
	iv := repo.seed(availableAt(0, 8, 10))

	newEnd := hour(0, 8).Add(30 * time.Minute)
	uc := NewUpdateTimeslot(repo, roomlock.NewRegistry(), nil)
	_, err := uc.Execute(context.Background(), UpdateTimeslotInput{
		RoomID: 1,
		ID:     iv.ID,
		End:    &newEnd,
	})
	assert.True(t, httperr.IsBusiness(err, "invalid_duration"))
}

func TestUpdateTimeslotDoesNotConflictWithItself(t *testing.T) {
	repo := newFakeRepo(testRoom(1))
	repo.seed(availableAt(0, 0, 24))
	appt := repo.seed(appointmentAt(0, 10, 14, 7))

	newEnd := hour(0, 12)
	uc := NewUpdateTimeslot(repo, roomlock.NewRegistry(), nil)
	updated, err := uc.Execute(context.Background(), UpdateTimeslotInput{
		RoomID: 1,
		ID:     appt.ID,
		End:    &newEnd,
	})
	require.NoError(t, err)
	assert.Equal(t, newEnd, updated.End)
}

func TestUpdateTimeslotKeepsCreatedAt(t *testing.T) {
	repo := newFakeRepo(testRoom(1))
	createdAt := monday.AddDate(0, 0, -2)
	iv := availableAt(0, 8, 10)
	iv.CreatedAt = createdAt
	iv = repo.seed(iv)
	repo.seed(availableAt(0, 12, 14))

	// Widening into the neighbor merges, and the surviving row must keep
	// its original creation time.
	newEnd := hour(0, 12)
	uc := NewUpdateTimeslot(repo, roomlock.NewRegistry(), nil)
	updated, err := uc.Execute(context.Background(), UpdateTimeslotInput{
		RoomID: 1,
		ID:     iv.ID,
		End:    &newEnd,
	})
	require.NoError(t, err)

	assert.Equal(t, hour(0, 14), updated.End)
	assert.Equal(t, createdAt, updated.CreatedAt)

	stored, err := repo.GetInterval(context.Background(), 1, iv.ID)
	require.NoError(t, err)
	assert.Equal(t, createdAt, stored.CreatedAt)
}

func TestUpdateSeriesShiftsNonDirtyMembers(t *testing.T) {
	repo := newFakeRepo(testRoom(1))
	seriesID := "0b54e8c0-0000-0000-0000-000000000000"
	for day := 0; day < 3; day++ {
		member := availableAt(day, 10, 12)
		member.SeriesID = &seriesID
		member.Amount = 3
		member.Recurrence = domain.RecurrenceDaily
		if day == 2 {
			member.IsDirty = true
		}
		repo.seed(member)
	}

	newStart := hour(0, 14)
	newEnd := hour(0, 16)
	uc := NewUpdateTimeslotSeries(repo, roomlock.NewRegistry(), nil)
	members, err := uc.Execute(context.Background(), UpdateTimeslotSeriesInput{
		RoomID:   1,
		SeriesID: seriesID,
		Start:    &newStart,
		End:      &newEnd,
	})
	require.NoError(t, err)
	require.Len(t, members, 3)

	// First two members follow the new anchor times, day by day.
	assert.Equal(t, hour(0, 14), members[0].Start)
	assert.Equal(t, hour(1, 14), members[1].Start)

	// The detached member keeps its own time.
	assert.Equal(t, hour(2, 10), members[2].Start)
	assert.True(t, members[2].IsDirty)
}

func TestUpdateSeriesRegeneratesOnAmountChange(t *testing.T) {
	repo := newFakeRepo(testRoom(1))
	seriesID := "7d9f3b10-0000-0000-0000-000000000000"
	for day := 0; day < 2; day++ {
		member := availableAt(day, 10, 12)
		member.SeriesID = &seriesID
		member.Amount = 2
		member.Recurrence = domain.RecurrenceDaily
		repo.seed(member)
	}

	amount := 4
	uc := NewUpdateTimeslotSeries(repo, roomlock.NewRegistry(), nil)
	members, err := uc.Execute(context.Background(), UpdateTimeslotSeriesInput{
		RoomID:   1,
		SeriesID: seriesID,
		Amount:   &amount,
	})
	require.NoError(t, err)
	require.Len(t, members, 4)

	for i, m := range members {
		assert.Equal(t, hour(i, 10), m.Start)
		require.NotNil(t, m.SeriesID)
		assert.Equal(t, seriesID, *m.SeriesID)
		assert.Equal(t, 4, m.Amount)
	}
}

func TestUpdateSeriesUnknownSeries(t *testing.T) {
	repo := newFakeRepo(testRoom(1))

	uc := NewUpdateTimeslotSeries(repo, roomlock.NewRegistry(), nil)
	newStart := hour(0, 9)
	_, err := uc.Execute(context.Background(), UpdateTimeslotSeriesInput{
		RoomID:   1,
		SeriesID: "missing",
		Start:    &newStart,
	})
	assert.True(t, httperr.IsBusiness(err, "series_not_found"))
}

// ======================================================
// DELETE
// ======================================================

func TestDeleteTimeslotBlockedByDependentBooking(t *testing.T) {
	repo := newFakeRepo(testRoom(1))
	window := repo.seed(availableAt(0, 8, 18))
	repo.seed(appointmentAt(0, 10, 12, 7))

	uc := NewDeleteTimeslot(repo, roomlock.NewRegistry(), nil, nil)
	err := uc.Execute(context.Background(), 1, window.ID, false)

	ce, ok := httperr.AsConflict(err)
	require.True(t, ok)
	assert.Equal(t, "dependent_booking", ce.Code)
	assert.Equal(t, DependentBookingMessage, ce.Message)

	// Force removes the window and leaves the booking in place.
	require.NoError(t, uc.Execute(context.Background(), 1, window.ID, true))
	all, _ := repo.ListIntervals(context.Background(), 1)
	require.Len(t, all, 1)
	assert.Equal(t, domain.KindAppointment, all[0].Kind)
}

func TestDeleteTimeslotSeriesRemovesAllMembers(t *testing.T) {
	repo := newFakeRepo(testRoom(1))
	seriesID := "e2c40d00-0000-0000-0000-000000000000"
	for day := 0; day < 3; day++ {
		member := availableAt(day, 10, 12)
		member.SeriesID = &seriesID
		repo.seed(member)
	}

	uc := NewDeleteTimeslotSeries(repo, roomlock.NewRegistry(), nil)
	require.NoError(t, uc.Execute(context.Background(), 1, seriesID, false))

	all, _ := repo.ListIntervals(context.Background(), 1)
	assert.Empty(t, all)
}

// ======================================================
// READS
// ======================================================

func TestGetCalendarPayload(t *testing.T) {
	repo := newFakeRepo(testRoom(2))
	repo.seed(availableAt(0, 8, 18))
	repo.seed(appointmentAt(0, 10, 14, 7))

	uc := NewGetCalendar(repo, nil, time.UTC)
	payload, err := uc.Execute(context.Background(), 1, monday)
	require.NoError(t, err)

	var resp CalendarResponse
	require.NoError(t, json.Unmarshal(payload, &resp))
	assert.Equal(t, 8, resp.MinTimeslot)
	assert.Len(t, resp.Calendar, 10)
}

func TestGetCalendarIntegrityViolation(t *testing.T) {
	repo := newFakeRepo(testRoom(1))
	repo.seed(availableAt(0, 8, 18))
	// Two simultaneous bookings slipped past the resolver somehow.
	repo.seed(appointmentAt(0, 10, 14, 7))
	repo.seed(appointmentAt(0, 12, 16, 8))

	uc := NewGetCalendar(repo, nil, time.UTC)
	_, err := uc.Execute(context.Background(), 1, monday)
	assert.ErrorIs(t, err, domain.ErrCalendarIntegrity)
}

func TestListTimeslotsCarriesMaxStart(t *testing.T) {
	repo := newFakeRepo(testRoom(1))
	seriesID := "f0a1b2c3-0000-0000-0000-000000000000"
	for day := 0; day < 2; day++ {
		member := availableAt(day, 10, 12)
		member.SeriesID = &seriesID
		repo.seed(member)
	}
	detached := availableAt(2, 10, 12)
	detached.SeriesID = &seriesID
	detached.IsDirty = true
	repo.seed(detached)
	repo.seed(availableAt(3, 10, 12))

	uc := NewListTimeslots(repo)
	rows, err := uc.Execute(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	for _, row := range rows {
		if row.SeriesID == nil {
			assert.Nil(t, row.MaxStart)
			continue
		}
		require.NotNil(t, row.MaxStart)
		// The dirty member on Wednesday does not count.
		assert.Equal(t, hour(1, 10), *row.MaxStart)
	}
}
