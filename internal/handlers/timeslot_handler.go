package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/hochlab/lab-booking/internal/domain/timeslot"
	"github.com/hochlab/lab-booking/internal/httperr"
	"github.com/hochlab/lab-booking/internal/httpresp"
	uc "github.com/hochlab/lab-booking/internal/usecase/timeslot"
)

// ======================================================
// HANDLER
// ======================================================

type TimeslotHandler struct {
	create       *uc.CreateTimeslot
	createSeries *uc.CreateTimeslotSeries
	update       *uc.UpdateTimeslot
	updateSeries *uc.UpdateTimeslotSeries
	remove       *uc.DeleteTimeslot
	removeSeries *uc.DeleteTimeslotSeries
	list         *uc.ListTimeslots
	calendar     *uc.GetCalendar
	availability *uc.GetAvailabilityCalendar
}

func NewTimeslotHandler(
	create *uc.CreateTimeslot,
	createSeries *uc.CreateTimeslotSeries,
	update *uc.UpdateTimeslot,
	updateSeries *uc.UpdateTimeslotSeries,
	remove *uc.DeleteTimeslot,
	removeSeries *uc.DeleteTimeslotSeries,
	list *uc.ListTimeslots,
	calendar *uc.GetCalendar,
	availability *uc.GetAvailabilityCalendar,
) *TimeslotHandler {
	return &TimeslotHandler{
		create:       create,
		createSeries: createSeries,
		update:       update,
		updateSeries: updateSeries,
		remove:       remove,
		removeSeries: removeSeries,
		list:         list,
		calendar:     calendar,
		availability: availability,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateTimeslotRequest struct {
	Type       string          `json:"type"`
	Start      json.RawMessage `json:"start"`
	End        json.RawMessage `json:"end"`
	Force      bool            `json:"force"`
	Amount     *int            `json:"amount"`
	Recurrence *string         `json:"recurrence"`
}

type UpdateTimeslotRequest struct {
	Start json.RawMessage `json:"start"`
	End   json.RawMessage `json:"end"`
	Force bool            `json:"force"`
}

type UpdateSeriesRequest struct {
	Start      json.RawMessage `json:"start"`
	End        json.RawMessage `json:"end"`
	Recurrence *string         `json:"recurrence"`
	Amount     *int            `json:"amount"`
	Force      bool            `json:"force"`
}

type DeleteTimeslotRequest struct {
	Force bool `json:"force"`
}

// ======================================================
// VALIDATION
// ======================================================

// validateKind runs the shared type checks for both creation endpoints.
// Appointments have their own creation path and are rejected here.
func validateKind(c *gin.Context, rawType string) (domain.Kind, bool) {
	if rawType == "" {
		httperr.BadRequest(c, "no_type", "No type specified.")
		return "", false
	}
	kind := domain.Kind(rawType)
	if !domain.ValidKind(kind) {
		httperr.BadRequest(c, "invalid_type", "Invalid type.")
		return "", false
	}
	if kind == domain.KindAppointment {
		httperr.BadRequest(c, "illegal_type", "Type appointment is illegal here.")
		return "", false
	}
	return kind, true
}

// validateRange parses start and end and enforces the minimum duration.
func validateRange(c *gin.Context, rawStart, rawEnd json.RawMessage) (time.Time, time.Time, bool) {
	start, err := parseFlexTime(rawStart)
	if err != nil {
		httperr.BadRequest(c, "invalid_start", "Invalid start format.")
		return time.Time{}, time.Time{}, false
	}
	end, err := parseFlexTime(rawEnd)
	if err != nil {
		httperr.BadRequest(c, "invalid_end", "Invalid end format.")
		return time.Time{}, time.Time{}, false
	}
	if end.Sub(start) < domain.MinDuration {
		httperr.BadRequest(c, "invalid_duration", "Duration must be at least 1h.")
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// ======================================================
// CREATE
// ======================================================

// POST /api/rooms/:roomId/timeslots
func (h *TimeslotHandler) Create(c *gin.Context) {
	roomID, ok := uintParam(c, "roomId")
	if !ok {
		httperr.NotFound(c, "room_not_found", "Room not found.")
		return
	}

	var req CreateTimeslotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	kind, ok := validateKind(c, req.Type)
	if !ok {
		return
	}
	if req.Amount != nil && *req.Amount > 1 {
		httperr.BadRequest(c, "amount_too_large", "Single timeslot amount cannot be greater than 1.")
		return
	}
	if req.Recurrence != nil && *req.Recurrence != "" && *req.Recurrence != string(domain.RecurrenceSingle) {
		httperr.BadRequest(c, "illegal_recurrence", "Single timeslot cannot be recurring.")
		return
	}
	start, end, ok := validateRange(c, req.Start, req.End)
	if !ok {
		return
	}

	created, err := h.create.Execute(c.Request.Context(), uc.CreateTimeslotInput{
		RoomID: roomID,
		Kind:   kind,
		Start:  start,
		End:    end,
		Force:  req.Force,
	})
	if err != nil {
		writeUsecaseError(c, err)
		return
	}

	httpresp.Created(c, created)
}

// POST /api/rooms/:roomId/timeslots/series
func (h *TimeslotHandler) CreateSeries(c *gin.Context) {
	roomID, ok := uintParam(c, "roomId")
	if !ok {
		httperr.NotFound(c, "room_not_found", "Room not found.")
		return
	}

	var req CreateTimeslotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	kind, ok := validateKind(c, req.Type)
	if !ok {
		return
	}
	if req.Amount == nil || *req.Amount <= 1 {
		httperr.BadRequest(c, "series_too_small", "Series needs to have at least 2 appointments.")
		return
	}
	if req.Recurrence == nil || *req.Recurrence == "" || *req.Recurrence == string(domain.RecurrenceSingle) {
		httperr.BadRequest(c, "series_not_recurring", "Series can only be recurring.")
		return
	}
	recurrence := domain.Recurrence(*req.Recurrence)
	if !domain.ValidRecurrence(recurrence) {
		httperr.BadRequest(c, "illegal_recurrence", "Illegal recurrence.")
		return
	}
	start, end, ok := validateRange(c, req.Start, req.End)
	if !ok {
		return
	}

	created, err := h.createSeries.Execute(c.Request.Context(), uc.CreateTimeslotSeriesInput{
		RoomID:     roomID,
		Kind:       kind,
		Start:      start,
		End:        end,
		Recurrence: recurrence,
		Amount:     *req.Amount,
		Force:      req.Force,
	})
	if err != nil {
		writeUsecaseError(c, err)
		return
	}

	httpresp.Created(c, created)
}

// ======================================================
// UPDATE
// ======================================================

// PATCH /api/rooms/:roomId/timeslots/:id
func (h *TimeslotHandler) Update(c *gin.Context) {
	roomID, ok := uintParam(c, "roomId")
	if !ok {
		httperr.NotFound(c, "room_not_found", "Room not found.")
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		httperr.NotFound(c, "timeslot_not_found", "Timeslot not found.")
		return
	}

	var req UpdateTimeslotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	input := uc.UpdateTimeslotInput{
		RoomID: roomID,
		ID:     id,
		Force:  req.Force,
	}
	if len(req.Start) > 0 {
		start, err := parseFlexTime(req.Start)
		if err != nil {
			httperr.BadRequest(c, "invalid_start", "Invalid start format.")
			return
		}
		input.Start = &start
	}
	if len(req.End) > 0 {
		end, err := parseFlexTime(req.End)
		if err != nil {
			httperr.BadRequest(c, "invalid_end", "Invalid end format.")
			return
		}
		input.End = &end
	}

	updated, err := h.update.Execute(c.Request.Context(), input)
	if err != nil {
		writeUsecaseError(c, err)
		return
	}

	httpresp.OK(c, updated)
}

// PATCH /api/rooms/:roomId/timeslots/series/:seriesId
func (h *TimeslotHandler) UpdateSeries(c *gin.Context) {
	roomID, ok := uintParam(c, "roomId")
	if !ok {
		httperr.NotFound(c, "room_not_found", "Room not found.")
		return
	}
	seriesID := c.Param("seriesId")
	if seriesID == "" {
		httperr.NotFound(c, "series_not_found", "Series not found.")
		return
	}

	var req UpdateSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	input := uc.UpdateTimeslotSeriesInput{
		RoomID:   roomID,
		SeriesID: seriesID,
		Force:    req.Force,
	}
	if len(req.Start) > 0 {
		start, err := parseFlexTime(req.Start)
		if err != nil {
			httperr.BadRequest(c, "invalid_start", "Invalid start format.")
			return
		}
		input.Start = &start
	}
	if len(req.End) > 0 {
		end, err := parseFlexTime(req.End)
		if err != nil {
			httperr.BadRequest(c, "invalid_end", "Invalid end format.")
			return
		}
		input.End = &end
	}
	if req.Amount != nil {
		if *req.Amount <= 1 {
			httperr.BadRequest(c, "series_too_small", "Series needs to have at least 2 appointments.")
			return
		}
		input.Amount = req.Amount
	}
	if req.Recurrence != nil {
		recurrence := domain.Recurrence(*req.Recurrence)
		if recurrence == domain.RecurrenceSingle {
			httperr.BadRequest(c, "series_not_recurring", "Series can only be recurring.")
			return
		}
		if !domain.ValidRecurrence(recurrence) {
			httperr.BadRequest(c, "illegal_recurrence", "Illegal recurrence.")
			return
		}
		input.Recurrence = &recurrence
	}

	updated, err := h.updateSeries.Execute(c.Request.Context(), input)
	if err != nil {
		writeUsecaseError(c, err)
		return
	}

	httpresp.OK(c, updated)
}

// ======================================================
// DELETE
// ======================================================

// DELETE /api/rooms/:roomId/timeslots/:id
func (h *TimeslotHandler) Delete(c *gin.Context) {
	roomID, ok := uintParam(c, "roomId")
	if !ok {
		httperr.NotFound(c, "room_not_found", "Room not found.")
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		httperr.NotFound(c, "timeslot_not_found", "Timeslot not found.")
		return
	}

	// Body is optional on delete.
	var req DeleteTimeslotRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.remove.Execute(c.Request.Context(), roomID, id, req.Force); err != nil {
		writeUsecaseError(c, err)
		return
	}

	httpresp.NoContent(c)
}

// DELETE /api/rooms/:roomId/timeslots/series/:seriesId
func (h *TimeslotHandler) DeleteSeries(c *gin.Context) {
	roomID, ok := uintParam(c, "roomId")
	if !ok {
		httperr.NotFound(c, "room_not_found", "Room not found.")
		return
	}
	seriesID := c.Param("seriesId")
	if seriesID == "" {
		httperr.NotFound(c, "series_not_found", "Series not found.")
		return
	}

	var req DeleteTimeslotRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.removeSeries.Execute(c.Request.Context(), roomID, seriesID, req.Force); err != nil {
		writeUsecaseError(c, err)
		return
	}

	httpresp.NoContent(c)
}

// ======================================================
// READ
// ======================================================

// GET /api/rooms/:roomId/timeslots
func (h *TimeslotHandler) List(c *gin.Context) {
	roomID, ok := uintParam(c, "roomId")
	if !ok {
		httperr.NotFound(c, "room_not_found", "Room not found.")
		return
	}

	rows, err := h.list.Execute(c.Request.Context(), roomID)
	if err != nil {
		writeUsecaseError(c, err)
		return
	}

	httpresp.List(c, rows)
}

// GET /api/rooms/:roomId/calendar?date=<epoch>
func (h *TimeslotHandler) Calendar(c *gin.Context) {
	roomID, ok := uintParam(c, "roomId")
	if !ok {
		httperr.NotFound(c, "room_not_found", "Room not found.")
		return
	}
	date, err := parseEpochQuery(c, "date")
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Invalid date format.")
		return
	}

	payload, err := h.calendar.Execute(c.Request.Context(), roomID, date)
	if err != nil {
		writeUsecaseError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", payload)
}

// GET /api/rooms/:roomId/availability-calendar?date=<epoch>
func (h *TimeslotHandler) AvailabilityCalendar(c *gin.Context) {
	roomID, ok := uintParam(c, "roomId")
	if !ok {
		httperr.NotFound(c, "room_not_found", "Room not found.")
		return
	}
	date, err := parseEpochQuery(c, "date")
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Invalid date format.")
		return
	}

	payload, err := h.availability.Execute(c.Request.Context(), roomID, date)
	if err != nil {
		writeUsecaseError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", payload)
}
