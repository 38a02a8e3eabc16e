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

type OrderHandler struct {
	db *gorm.DB
}

func NewOrderHandler(db *gorm.DB) *OrderHandler {
	return &OrderHandler{db: db}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateOrderRequest struct {
	ItemName string `json:"item_name" binding:"required"`
	Quantity int    `json:"quantity"`
	URL      string `json:"url"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func validOrderStatus(s string) bool {
	switch s {
	case "pending", "ordered", "delivered", "declined":
		return true
	}
	return false
}

// ======================================================
// ROUTES
// ======================================================

// POST /api/orders
func (h *OrderHandler) Create(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	order := models.Order{
		UserID:   userID,
		ItemName: req.ItemName,
		Quantity: req.Quantity,
		URL:      req.URL,
		Status:   "pending",
	}
	if err := h.db.Create(&order).Error; err != nil {
		httperr.Internal(c, "internal_error", "Could not create order.")
		return
	}

	httpresp.Created(c, order)
}

// GET /api/orders
//
// Admins see all orders; everyone else only their own.
func (h *OrderHandler) List(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	q := h.db.Order("created_at DESC")
	if !middleware.IsAdmin(c) {
		q = q.Where("user_id = ?", userID)
	}

	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		httperr.Internal(c, "internal_error", "Could not list orders.")
		return
	}
	httpresp.List(c, orders)
}

// PATCH /api/orders/:id/status (admin)
func (h *OrderHandler) SetStatus(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		httperr.NotFound(c, "order_not_found", "Order not found.")
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}
	if !validOrderStatus(req.Status) {
		httperr.BadRequest(c, "invalid_status", "Invalid order status.")
		return
	}

	var order models.Order
	if err := h.db.First(&order, id).Error; err != nil {
		httperr.NotFound(c, "order_not_found", "Order not found.")
		return
	}

	order.Status = req.Status
	if err := h.db.Save(&order).Error; err != nil {
		httperr.Internal(c, "internal_error", "Could not update order.")
		return
	}

	httpresp.OK(c, order)
}

// DELETE /api/orders/:id
//
// Users may withdraw their own pending orders; admins may delete any.
func (h *OrderHandler) Delete(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		httperr.NotFound(c, "order_not_found", "Order not found.")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var order models.Order
	if err := h.db.First(&order, id).Error; err != nil {
		httperr.NotFound(c, "order_not_found", "Order not found.")
		return
	}

	if !middleware.IsAdmin(c) {
		if order.UserID != userID {
			httperr.Forbidden(c, "not_owner", "You can only delete your own orders.")
			return
		}
		if order.Status != "pending" {
			httperr.Conflict(c, "order_in_progress", "Only pending orders can be withdrawn.")
			return
		}
	}

	if err := h.db.Delete(&order).Error; err != nil {
		httperr.Internal(c, "internal_error", "Could not delete order.")
		return
	}

	httpresp.NoContent(c)
}
