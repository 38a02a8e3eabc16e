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
// HANDLER (admin only)
// ======================================================

type UserHandler struct {
	db *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

type UpdateUserRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	var users []models.User
	if err := h.db.Order("id ASC").Find(&users).Error; err != nil {
		httperr.Internal(c, "internal_error", "Could not list users.")
		return
	}
	httpresp.List(c, users)
}

// PATCH /api/users/:id/role
func (h *UserHandler) SetRole(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		httperr.NotFound(c, "user_not_found", "User not found.")
		return
	}

	var req UpdateUserRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}
	if req.Role != middleware.RoleAdmin && req.Role != middleware.RoleUser {
		httperr.BadRequest(c, "invalid_role", "Role must be admin or user.")
		return
	}

	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		httperr.NotFound(c, "user_not_found", "User not found.")
		return
	}

	user.Role = req.Role
	if err := h.db.Save(&user).Error; err != nil {
		httperr.Internal(c, "internal_error", "Could not update user.")
		return
	}

	httpresp.OK(c, user)
}
