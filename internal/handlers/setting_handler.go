package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hochlab/lab-booking/internal/httperr"
	"github.com/hochlab/lab-booking/internal/httpresp"
	"github.com/hochlab/lab-booking/internal/models"
)

// ======================================================
// HANDLER (admin only)
// ======================================================

type SettingHandler struct {
	db *gorm.DB
}

func NewSettingHandler(db *gorm.DB) *SettingHandler {
	return &SettingHandler{db: db}
}

type UpsertSettingRequest struct {
	Value       string `json:"value" binding:"required"`
	Description string `json:"description"`
}

// GET /api/settings
func (h *SettingHandler) List(c *gin.Context) {
	var settings []models.GlobalSetting
	if err := h.db.Order("key ASC").Find(&settings).Error; err != nil {
		httperr.Internal(c, "internal_error", "Could not list settings.")
		return
	}
	httpresp.List(c, settings)
}

// PUT /api/settings/:key
func (h *SettingHandler) Upsert(c *gin.Context) {
	key := c.Param("key")
	if key == "" {
		httperr.NotFound(c, "setting_not_found", "Setting not found.")
		return
	}

	var req UpsertSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	setting := models.GlobalSetting{
		Key:         key,
		Value:       req.Value,
		Description: req.Description,
	}
	err := h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "description", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		httperr.Internal(c, "internal_error", "Could not save setting.")
		return
	}

	httpresp.OK(c, setting)
}

// DELETE /api/settings/:key
func (h *SettingHandler) Delete(c *gin.Context) {
	key := c.Param("key")

	res := h.db.Delete(&models.GlobalSetting{}, "key = ?", key)
	if res.Error != nil {
		httperr.Internal(c, "internal_error", "Could not delete setting.")
		return
	}
	if res.RowsAffected == 0 {
		httperr.NotFound(c, "setting_not_found", "Setting not found.")
		return
	}

	httpresp.NoContent(c)
}
