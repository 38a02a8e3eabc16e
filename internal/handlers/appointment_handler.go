package handlers

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	domain "github.com/hochlab/lab-booking/internal/domain/timeslot"
	"github.com/hochlab/lab-booking/internal/httperr"
	"github.com/hochlab/lab-booking/internal/httpresp"
	"github.com/hochlab/lab-booking/internal/middleware"
	apptuc "github.com/hochlab/lab-booking/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	create    *apptuc.CreateAppointment
	setStatus *apptuc.SetAppointmentStatus
	remove    *apptuc.DeleteAppointment
}

func NewAppointmentHandler(
	create *apptuc.CreateAppointment,
	setStatus *apptuc.SetAppointmentStatus,
	remove *apptuc.DeleteAppointment,
) *AppointmentHandler {
	return &AppointmentHandler{
		create:    create,
		setStatus: setStatus,
		remove:    remove,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAppointmentRequest struct {
	Start      json.RawMessage `json:"start"`
	End        json.RawMessage `json:"end"`
	Force      bool            `json:"force"`
	Amount     *int            `json:"amount"`
	Recurrence *string         `json:"recurrence"`
}

type SetAppointmentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ======================================================
// CREATE
// ======================================================

// POST /api/rooms/:roomId/appointments
func (h *AppointmentHandler) Create(c *gin.Context) {
	roomID, ok := uintParam(c, "roomId")
	if !ok {
		httperr.NotFound(c, "room_not_found", "Room not found.")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}
	if req.Force && !middleware.IsAdmin(c) {
		httperr.Forbidden(c, "force_admin_only", "Only admins may force bookings.")
		return
	}
	if req.Amount != nil && *req.Amount > 1 {
		httperr.BadRequest(c, "amount_too_large", "Single timeslot amount cannot be greater than 1.")
		return
	}
	start, end, ok := validateRange(c, req.Start, req.End)
	if !ok {
		return
	}

	created, err := h.create.Execute(c.Request.Context(), apptuc.CreateAppointmentInput{
		RoomID:     roomID,
		UserID:     userID,
		Start:      start,
		End:        end,
		Recurrence: domain.RecurrenceSingle,
		Force:      req.Force,
	})
	if err != nil {
		writeUsecaseError(c, err)
		return
	}

	httpresp.Created(c, created[0])
}

// POST /api/rooms/:roomId/appointments/series
func (h *AppointmentHandler) CreateSeries(c *gin.Context) {
	roomID, ok := uintParam(c, "roomId")
	if !ok {
		httperr.NotFound(c, "room_not_found", "Room not found.")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}
	if req.Force && !middleware.IsAdmin(c) {
		httperr.Forbidden(c, "force_admin_only", "Only admins may force bookings.")
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

	created, err := h.create.Execute(c.Request.Context(), apptuc.CreateAppointmentInput{
		RoomID:     roomID,
		UserID:     userID,
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
// STATUS (admin)
// ======================================================

// PATCH /api/rooms/:roomId/appointments/:id/status
func (h *AppointmentHandler) SetStatus(c *gin.Context) {
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

	var req SetAppointmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	updated, err := h.setStatus.Execute(
		c.Request.Context(),
		roomID,
		id,
		domain.ConfirmationStatus(req.Status),
	)
	if err != nil {
		writeUsecaseError(c, err)
		return
	}

	httpresp.OK(c, updated)
}

// ======================================================
// DELETE
// ======================================================

// DELETE /api/rooms/:roomId/appointments/:id
func (h *AppointmentHandler) Delete(c *gin.Context) {
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
	userID := c.MustGet(middleware.ContextUserID).(uint)

	err := h.remove.Execute(c.Request.Context(), roomID, id, userID, middleware.IsAdmin(c))
	if err != nil {
		writeUsecaseError(c, err)
		return
	}

	httpresp.NoContent(c)
}
