package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hochlab/lab-booking/internal/cache"
	"github.com/hochlab/lab-booking/internal/httperr"
	"github.com/hochlab/lab-booking/internal/httpresp"
	"github.com/hochlab/lab-booking/internal/models"
)

// ======================================================
// HANDLER
// ======================================================

type RoomHandler struct {
	db    *gorm.DB
	cache *cache.CalendarCache
}

func NewRoomHandler(db *gorm.DB, calCache *cache.CalendarCache) *RoomHandler {
	return &RoomHandler{db: db, cache: calCache}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateRoomRequest struct {
	Name                  string `json:"name" binding:"required"`
	Description           string `json:"description"`
	MaxConcurrentBookings int    `json:"max_concurrent_bookings"`
	AutoAcceptBookings    bool   `json:"auto_accept_bookings"`
}

type UpdateRoomRequest struct {
	Name                  *string `json:"name"`
	Description           *string `json:"description"`
	MaxConcurrentBookings *int    `json:"max_concurrent_bookings"`
	AutoAcceptBookings    *bool   `json:"auto_accept_bookings"`
}

// ======================================================
// CRUD
// ======================================================

// GET /api/rooms
func (h *RoomHandler) List(c *gin.Context) {
	var rooms []models.Room
	if err := h.db.Order("name ASC").Find(&rooms).Error; err != nil {
		httperr.Internal(c, "internal_error", "Could not list rooms.")
		return
	}
	httpresp.List(c, rooms)
}

// GET /api/rooms/:roomId
func (h *RoomHandler) Get(c *gin.Context) {
	roomID, ok := uintParam(c, "roomId")
	if !ok {
		httperr.NotFound(c, "room_not_found", "Room not found.")
		return
	}

	var room models.Room
	if err := h.db.First(&room, roomID).Error; err != nil {
		httperr.NotFound(c, "room_not_found", "Room not found.")
		return
	}
	httpresp.OK(c, room)
}

// POST /api/rooms (admin)
func (h *RoomHandler) Create(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	if req.MaxConcurrentBookings <= 0 {
		req.MaxConcurrentBookings = 1
	}

	room := models.Room{
		Name:                  req.Name,
		Description:           req.Description,
		MaxConcurrentBookings: req.MaxConcurrentBookings,
		AutoAcceptBookings:    req.AutoAcceptBookings,
	}
	if err := h.db.Create(&room).Error; err != nil {
		httperr.BadRequest(c, "room_not_created", "Could not create room; name may already exist.")
		return
	}

	httpresp.Created(c, room)
}

// PATCH /api/rooms/:roomId (admin)
//
// maxConcurrentBookings may only grow. Lowering it could strand bookings
// that passed the conflict check under the old limit.
func (h *RoomHandler) Update(c *gin.Context) {
	roomID, ok := uintParam(c, "roomId")
	if !ok {
		httperr.NotFound(c, "room_not_found", "Room not found.")
		return
	}

	var req UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	var room models.Room
	if err := h.db.First(&room, roomID).Error; err != nil {
		httperr.NotFound(c, "room_not_found", "Room not found.")
		return
	}

	if req.MaxConcurrentBookings != nil {
		if *req.MaxConcurrentBookings < room.MaxConcurrentBookings {
			httperr.Conflict(c, "max_concurrent_bookings_lowered",
				"maxConcurrentBookings may only be increased.")
			return
		}
		room.MaxConcurrentBookings = *req.MaxConcurrentBookings
	}
	if req.Name != nil {
		room.Name = *req.Name
	}
	if req.Description != nil {
		room.Description = *req.Description
	}
	if req.AutoAcceptBookings != nil {
		room.AutoAcceptBookings = *req.AutoAcceptBookings
	}

	if err := h.db.Save(&room).Error; err != nil {
		httperr.Internal(c, "internal_error", "Could not update room.")
		return
	}
	h.cache.Invalidate(c.Request.Context(), room.ID)

	httpresp.OK(c, room)
}

// DELETE /api/rooms/:roomId (admin)
func (h *RoomHandler) Delete(c *gin.Context) {
	roomID, ok := uintParam(c, "roomId")
	if !ok {
		httperr.NotFound(c, "room_not_found", "Room not found.")
		return
	}

	var room models.Room
	if err := h.db.First(&room, roomID).Error; err != nil {
		httperr.NotFound(c, "room_not_found", "Room not found.")
		return
	}

	if err := h.db.Select("TimeSlots").Delete(&room).Error; err != nil {
		httperr.Internal(c, "internal_error", "Could not delete room.")
		return
	}
	h.cache.Invalidate(c.Request.Context(), roomID)

	httpresp.NoContent(c)
}
