package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/hochlab/lab-booking/internal/domain/timeslot"
	"github.com/hochlab/lab-booking/internal/httperr"
	"github.com/hochlab/lab-booking/internal/models"
	"github.com/hochlab/lab-booking/internal/roomlock"
	uc "github.com/hochlab/lab-booking/internal/usecase/timeslot"
)

// ======================================================
// FIXTURE
// ======================================================

type stubRepo struct {
	room      *models.Room
	intervals map[uint]domain.Interval
	nextID    uint
}

func newStubRepo(room *models.Room) *stubRepo {
	return &stubRepo{room: room, intervals: map[uint]domain.Interval{}, nextID: 1}
}

func (r *stubRepo) seed(iv domain.Interval) domain.Interval {
	iv.ID = r.nextID
	r.nextID++
	r.intervals[iv.ID] = iv
	return iv
}

func (r *stubRepo) GetRoom(_ context.Context, roomID uint) (*models.Room, error) {
	if r.room == nil || r.room.ID != roomID {
		return nil, httperr.ErrBusiness("room_not_found")
	}
	return r.room, nil
}

func (r *stubRepo) ListIntervals(_ context.Context, roomID uint) ([]domain.Interval, error) {
	var out []domain.Interval
	for _, iv := range r.intervals {
		if iv.RoomID == roomID {
			out = append(out, iv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (r *stubRepo) GetInterval(_ context.Context, roomID, id uint) (domain.Interval, error) {
	iv, ok := r.intervals[id]
	if !ok || iv.RoomID != roomID {
		return domain.Interval{}, httperr.ErrBusiness("timeslot_not_found")
	}
	return iv, nil
}

func (r *stubRepo) ListSeries(_ context.Context, roomID uint, seriesID string) ([]domain.Interval, error) {
	var out []domain.Interval
	for _, iv := range r.intervals {
		if iv.RoomID == roomID && iv.SeriesID != nil && *iv.SeriesID == seriesID {
			out = append(out, iv)
		}
	}
	return out, nil
}

func (r *stubRepo) Mutate(ctx context.Context, roomID uint, fn func(*models.Room, []domain.Interval) (domain.Batch, error)) ([]domain.Interval, error) {
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

var _ domain.Repository = (*stubRepo)(nil)

func newTimeslotRouter(repo domain.Repository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	locks := roomlock.NewRegistry()

	h := NewTimeslotHandler(
		uc.NewCreateTimeslot(repo, locks, nil, nil),
		uc.NewCreateTimeslotSeries(repo, locks, nil, nil),
		uc.NewUpdateTimeslot(repo, locks, nil),
		uc.NewUpdateTimeslotSeries(repo, locks, nil),
		uc.NewDeleteTimeslot(repo, locks, nil, nil),
		uc.NewDeleteTimeslotSeries(repo, locks, nil),
		uc.NewListTimeslots(repo),
		uc.NewGetCalendar(repo, nil, time.UTC),
		uc.NewGetAvailabilityCalendar(repo, nil, time.UTC),
	)

	r := gin.New()
	r.POST("/api/rooms/:roomId/timeslots", h.Create)
	r.POST("/api/rooms/:roomId/timeslots/series", h.CreateSeries)
	r.PATCH("/api/rooms/:roomId/timeslots/:id", h.Update)
	r.DELETE("/api/rooms/:roomId/timeslots/:id", h.Delete)
	r.GET("/api/rooms/:roomId/timeslots", h.List)
	r.GET("/api/rooms/:roomId/calendar", h.Calendar)
	r.GET("/api/rooms/:roomId/availability-calendar", h.AvailabilityCalendar)
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) httperr.HTTPError {
	t.Helper()
	var body httperr.HTTPError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

var handlerMonday = time.Date(2022, 2, 21, 0, 0, 0, 0, time.UTC)

func rfc(day, hour int) string {
	return handlerMonday.AddDate(0, 0, day).Add(time.Duration(hour) * time.Hour).Format(time.RFC3339)
}

// ======================================================
// VALIDATION ORDER
// ======================================================

func TestCreateTimeslotValidationOrder(t *testing.T) {
	router := newTimeslotRouter(newStubRepo(&models.Room{ID: 1, MaxConcurrentBookings: 1}))

	tests := []struct {
		name        string
		body        string
		wantMessage string
	}{
		{
			"missing type",
			`{"start":"` + rfc(0, 10) + `","end":"` + rfc(0, 12) + `"}`,
			"No type specified.",
		},
		{
			"invalid type",
			`{"type":"banana","start":"` + rfc(0, 10) + `","end":"` + rfc(0, 12) + `"}`,
			"Invalid type.",
		},
		{
			"appointment type",
			`{"type":"appointment","start":"` + rfc(0, 10) + `","end":"` + rfc(0, 12) + `"}`,
			"Type appointment is illegal here.",
		},
		{
			"amount on single endpoint",
			`{"type":"available","amount":3,"start":"` + rfc(0, 10) + `","end":"` + rfc(0, 12) + `"}`,
			"Single timeslot amount cannot be greater than 1.",
		},
		{
			"bad start",
			`{"type":"available","start":"yesterday","end":"` + rfc(0, 12) + `"}`,
			"Invalid start format.",
		},
		{
			"bad end",
			`{"type":"available","start":"` + rfc(0, 10) + `","end":"later"}`,
			"Invalid end format.",
		},
		{
			"too short",
			`{"type":"available","start":"` + rfc(0, 10) + `","end":"` + handlerMonday.Add(10*time.Hour + 30*time.Minute).Format(time.RFC3339) + `"}`,
			"Duration must be at least 1h.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, http.MethodPost, "/api/rooms/1/timeslots", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantMessage, errorBody(t, w).Message)
		})
	}
}

func TestCreateSeriesValidationOrder(t *testing.T) {
	router := newTimeslotRouter(newStubRepo(&models.Room{ID: 1, MaxConcurrentBookings: 1}))

	tests := []struct {
		name        string
		body        string
		wantMessage string
	}{
		{
			"missing amount",
			`{"type":"available","recurrence":"daily","start":"` + rfc(0, 10) + `","end":"` + rfc(0, 12) + `"}`,
			"Series needs to have at least 2 appointments.",
		},
		{
			"amount of one",
			`{"type":"available","amount":1,"recurrence":"daily","start":"` + rfc(0, 10) + `","end":"` + rfc(0, 12) + `"}`,
			"Series needs to have at least 2 appointments.",
		},
		{
			"missing recurrence",
			`{"type":"available","amount":3,"start":"` + rfc(0, 10) + `","end":"` + rfc(0, 12) + `"}`,
			"Series can only be recurring.",
		},
		{
			"single recurrence",
			`{"type":"available","amount":3,"recurrence":"single","start":"` + rfc(0, 10) + `","end":"` + rfc(0, 12) + `"}`,
			"Series can only be recurring.",
		},
		{
			"unknown recurrence",
			`{"type":"available","amount":3,"recurrence":"hourly","start":"` + rfc(0, 10) + `","end":"` + rfc(0, 12) + `"}`,
			"Illegal recurrence.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, http.MethodPost, "/api/rooms/1/timeslots/series", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantMessage, errorBody(t, w).Message)
		})
	}
}

// ======================================================
// BEHAVIOR
// ======================================================

func TestCreateTimeslotAcceptsEpochAndRFC3339(t *testing.T) {
	repo := newStubRepo(&models.Room{ID: 1, MaxConcurrentBookings: 1})
	router := newTimeslotRouter(repo)

	start := handlerMonday.Add(10 * time.Hour)
	end := handlerMonday.Add(12 * time.Hour)

	w := doJSON(router, http.MethodPost, "/api/rooms/1/timeslots",
		`{"type":"available","start":`+jsonEpoch(start)+`,"end":`+jsonEpoch(end)+`}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(router, http.MethodPost, "/api/rooms/1/timeslots",
		`{"type":"unavailable","start":"`+start.Format(time.RFC3339)+`","end":"`+end.Format(time.RFC3339)+`"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created domain.Interval
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, start, created.Start.UTC())
	assert.Equal(t, domain.KindUnavailable, created.Kind)
}

func TestCreateTimeslotConflictCarriesReason(t *testing.T) {
	repo := newStubRepo(&models.Room{ID: 1, MaxConcurrentBookings: 1})
	repo.seed(domain.Interval{
		RoomID: 1, Kind: domain.KindAvailable,
		Start: handlerMonday.Add(8 * time.Hour), End: handlerMonday.Add(18 * time.Hour),
	})
	router := newTimeslotRouter(repo)

	w := doJSON(router, http.MethodPost, "/api/rooms/1/timeslots",
		`{"type":"available","start":"`+rfc(0, 10)+`","end":"`+rfc(0, 12)+`"}`)

	require.Equal(t, http.StatusConflict, w.Code)
	body := errorBody(t, w)
	assert.Equal(t, string(domain.ReasonSameTypeOverlap), body.Code)
	assert.Equal(t, "Timeslot overlaps an existing timeslot of the same type.", body.Message)
}

func TestCreateTimeslotUnknownRoomIs404(t *testing.T) {
	router := newTimeslotRouter(newStubRepo(&models.Room{ID: 1, MaxConcurrentBookings: 1}))

	w := doJSON(router, http.MethodPost, "/api/rooms/42/timeslots",
		`{"type":"available","start":"`+rfc(0, 10)+`","end":"`+rfc(0, 12)+`"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteTimeslotDependentBooking(t *testing.T) {
	repo := newStubRepo(&models.Room{ID: 1, MaxConcurrentBookings: 1})
	userID := uint(7)
	repo.seed(domain.Interval{
		RoomID: 1, Kind: domain.KindAvailable,
		Start: handlerMonday.Add(8 * time.Hour), End: handlerMonday.Add(18 * time.Hour),
	})
	repo.seed(domain.Interval{
		RoomID: 1, Kind: domain.KindAppointment,
		Start: handlerMonday.Add(10 * time.Hour), End: handlerMonday.Add(12 * time.Hour),
		UserID: &userID, ConfirmationStatus: domain.StatusAccepted,
	})
	router := newTimeslotRouter(repo)

	w := doJSON(router, http.MethodDelete, "/api/rooms/1/timeslots/1", "")
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t,
		"Cannot delete available timeslot because at least one booked appointment depends on it.",
		errorBody(t, w).Message)

	w = doJSON(router, http.MethodDelete, "/api/rooms/1/timeslots/1", `{"force":true}`)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCalendarEndpoint(t *testing.T) {
	repo := newStubRepo(&models.Room{ID: 1, MaxConcurrentBookings: 1})
	repo.seed(domain.Interval{
		RoomID: 1, Kind: domain.KindAvailable,
		Start: handlerMonday.Add(8 * time.Hour), End: handlerMonday.Add(18 * time.Hour),
	})
	router := newTimeslotRouter(repo)

	w := doJSON(router, http.MethodGet,
		"/api/rooms/1/calendar?date="+jsonEpoch(handlerMonday), "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Calendar   json.RawMessage `json:"calendar"`
		MinHourRow int             `json:"minTimeslot"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 8, resp.MinHourRow)
	assert.NotEmpty(t, resp.Calendar)
}

func TestCalendarIntegrityViolationIs500(t *testing.T) {
	repo := newStubRepo(&models.Room{ID: 1, MaxConcurrentBookings: 1})
	userID := uint(7)
	repo.seed(domain.Interval{
		RoomID: 1, Kind: domain.KindAvailable,
		Start: handlerMonday.Add(8 * time.Hour), End: handlerMonday.Add(18 * time.Hour),
	})
	repo.seed(domain.Interval{
		RoomID: 1, Kind: domain.KindAppointment,
		Start: handlerMonday.Add(10 * time.Hour), End: handlerMonday.Add(14 * time.Hour),
		UserID: &userID,
	})
	repo.seed(domain.Interval{
		RoomID: 1, Kind: domain.KindAppointment,
		Start: handlerMonday.Add(12 * time.Hour), End: handlerMonday.Add(16 * time.Hour),
		UserID: &userID,
	})
	router := newTimeslotRouter(repo)

	w := doJSON(router, http.MethodGet,
		"/api/rooms/1/calendar?date="+jsonEpoch(handlerMonday), "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "calendar_integrity", errorBody(t, w).Code)
}

func jsonEpoch(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10)
}
