package handlers

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hochlab/lab-booking/internal/httperr"
	"github.com/hochlab/lab-booking/internal/httpresp"
	"github.com/hochlab/lab-booking/internal/middleware"
	"github.com/hochlab/lab-booking/internal/models"
	"github.com/hochlab/lab-booking/internal/storage"
)

// ======================================================
// HANDLER
// ======================================================

type RecordingHandler struct {
	db    *gorm.DB
	store *storage.RecordingStorage
}

func NewRecordingHandler(db *gorm.DB, store *storage.RecordingStorage) *RecordingHandler {
	return &RecordingHandler{db: db, store: store}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateRecordingRequest struct {
	Key       string          `json:"key" binding:"required"`
	StartedAt json.RawMessage `json:"started_at"`
	EndedAt   json.RawMessage `json:"ended_at"`
}

// maxRecordings reads the per-user cap from global settings; zero means
// unlimited.
func (h *RecordingHandler) maxRecordings() int {
	var setting models.GlobalSetting
	if err := h.db.First(&setting, "key = ?", "user.max_recordings").Error; err != nil {
		return 0
	}
	limit, err := strconv.Atoi(setting.Value)
	if err != nil {
		return 0
	}
	return limit
}

// ======================================================
// ROUTES
// ======================================================

// POST /api/rooms/:roomId/recordings
func (h *RecordingHandler) Create(c *gin.Context) {
	roomID, ok := uintParam(c, "roomId")
	if !ok {
		httperr.NotFound(c, "room_not_found", "Room not found.")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var room models.Room
	if err := h.db.First(&room, roomID).Error; err != nil {
		httperr.NotFound(c, "room_not_found", "Room not found.")
		return
	}

	var req CreateRecordingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	startedAt, err := parseFlexTime(req.StartedAt)
	if err != nil {
		httperr.BadRequest(c, "invalid_start", "Invalid start format.")
		return
	}
	endedAt, err := parseFlexTime(req.EndedAt)
	if err != nil {
		httperr.BadRequest(c, "invalid_end", "Invalid end format.")
		return
	}

	if limit := h.maxRecordings(); limit > 0 {
		var count int64
		h.db.Model(&models.Recording{}).Where("user_id = ?", userID).Count(&count)
		if count >= int64(limit) {
			httperr.Conflict(c, "recording_limit_reached", "Recording limit reached.")
			return
		}
	}

	rec := models.Recording{
		RoomID:    roomID,
		UserID:    userID,
		Key:       req.Key,
		StartedAt: startedAt,
		EndedAt:   endedAt,
	}
	if err := h.db.Create(&rec).Error; err != nil {
		httperr.BadRequest(c, "recording_not_created", "Could not store recording; key may already exist.")
		return
	}

	httpresp.Created(c, rec)
}

// GET /api/recordings
func (h *RecordingHandler) List(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	q := h.db.Order("started_at DESC")
	if !middleware.IsAdmin(c) {
		q = q.Where("user_id = ?", userID)
	}

	var recordings []models.Recording
	if err := q.Find(&recordings).Error; err != nil {
		httperr.Internal(c, "internal_error", "Could not list recordings.")
		return
	}
	httpresp.List(c, recordings)
}

// GET /api/recordings/:id/download
func (h *RecordingHandler) Download(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		httperr.NotFound(c, "recording_not_found", "Recording not found.")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var rec models.Recording
	if err := h.db.First(&rec, id).Error; err != nil {
		httperr.NotFound(c, "recording_not_found", "Recording not found.")
		return
	}
	if !middleware.IsAdmin(c) && rec.UserID != userID {
		httperr.Forbidden(c, "not_owner", "You can only download your own recordings.")
		return
	}

	url, err := h.store.DownloadURL(c.Request.Context(), rec.Key, 15*time.Minute)
	if err != nil {
		httperr.Internal(c, "internal_error", "Could not generate download link.")
		return
	}
	if url == "" {
		httperr.NotFound(c, "storage_disabled", "Recording storage is not configured.")
		return
	}

	httpresp.OK(c, gin.H{"url": url})
}

// DELETE /api/recordings/:id
func (h *RecordingHandler) Delete(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		httperr.NotFound(c, "recording_not_found", "Recording not found.")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var rec models.Recording
	if err := h.db.First(&rec, id).Error; err != nil {
		httperr.NotFound(c, "recording_not_found", "Recording not found.")
		return
	}
	if !middleware.IsAdmin(c) && rec.UserID != userID {
		httperr.Forbidden(c, "not_owner", "You can only delete your own recordings.")
		return
	}

	// Object first, then the row, mirroring the cleanup job.
	if err := h.store.Delete(c.Request.Context(), rec.Key); err != nil {
		httperr.Internal(c, "internal_error", "Could not delete recording payload.")
		return
	}
	if err := h.db.Delete(&models.Recording{}, rec.ID).Error; err != nil {
		httperr.Internal(c, "internal_error", "Could not delete recording.")
		return
	}

	httpresp.NoContent(c)
}
