package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hochlab/lab-booking/internal/httperr"
	"github.com/hochlab/lab-booking/internal/httpresp"
	"github.com/hochlab/lab-booking/internal/middleware"
	"github.com/hochlab/lab-booking/internal/models"
)

// ======================================================
// HANDLER
// ======================================================

// MessageHandler exposes the inbox rows the messaging dispatcher writes.
type MessageHandler struct {
	db *gorm.DB
}

func NewMessageHandler(db *gorm.DB) *MessageHandler {
	return &MessageHandler{db: db}
}

// GET /api/messages
func (h *MessageHandler) List(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var messages []models.Message
	if err := h.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&messages).Error; err != nil {
		httperr.Internal(c, "internal_error", "Could not list messages.")
		return
	}
	httpresp.List(c, messages)
}

// PATCH /api/messages/:id/read
func (h *MessageHandler) MarkRead(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		httperr.NotFound(c, "message_not_found", "Message not found.")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uint)

	res := h.db.Model(&models.Message{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if res.Error != nil {
		httperr.Internal(c, "internal_error", "Could not update message.")
		return
	}
	if res.RowsAffected == 0 {
		httperr.NotFound(c, "message_not_found", "Message not found.")
		return
	}

	httpresp.NoContent(c)
}

// DELETE /api/messages/:id
func (h *MessageHandler) Delete(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		httperr.NotFound(c, "message_not_found", "Message not found.")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uint)

	res := h.db.Delete(&models.Message{}, "id = ? AND user_id = ?", id, userID)
	if res.Error != nil {
		httperr.Internal(c, "internal_error", "Could not delete message.")
		return
	}
	if res.RowsAffected == 0 {
		httperr.NotFound(c, "message_not_found", "Message not found.")
		return
	}

	httpresp.NoContent(c)
}
