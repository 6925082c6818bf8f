package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	orderapp "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// OrderHandler serves payment and order endpoints
type OrderHandler struct {
	BaseHandler
	orderService *orderapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *orderapp.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// ClientToken handles GET /api/v1/payment/token
func (h *OrderHandler) ClientToken(c *gin.Context) {
	token, err := h.orderService.ClientToken(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"client_token": token})
}

// Checkout handles POST /api/v1/payment/checkout
func (h *OrderHandler) Checkout(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req orderapp.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid checkout payload")
		return
	}

	ord, err := h.orderService.Checkout(c.Request.Context(), middleware.ResolvedTenant(c), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, ord)
}

// ListMine handles GET /api/v1/orders
func (h *OrderHandler) ListMine(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	orders, err := h.orderService.ListMine(c.Request.Context(), middleware.ResolvedTenant(c), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}

// ListAll handles GET /api/v1/orders/all
func (h *OrderHandler) ListAll(c *gin.Context) {
	var filter orderapp.OrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid order filter")
		return
	}

	result, err := h.orderService.ListAll(c.Request.Context(), middleware.ResolvedTenant(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Orders, result.Total, result.Page, result.PageSize)
}

// UpdateStatus handles PUT /api/v1/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req orderapp.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid status payload")
		return
	}

	ord, err := h.orderService.UpdateStatus(c.Request.Context(), middleware.ResolvedTenant(c), orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ord)
}
