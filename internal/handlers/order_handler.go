package handlers

import (
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// RegisterRoutes registers the order routes. Everything requires a bearer
// token; the global listing and status transitions additionally require the
// admin role. /my-orders is registered before /:id so it is not captured by
// the parameter route.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, authRequired, adminOnly fiber.Handler) {
	orders := router.Group("/orders", authRequired)
	orders.Post("/", h.HandlePlaceOrder)
	orders.Get("/my-orders", h.HandleMyOrders)
	orders.Get("/", adminOnly, h.HandleListAllOrders)
	orders.Get("/:id", h.HandleGetOrder)
	orders.Put("/:id/cancel", h.HandleCancelOrder)
	orders.Put("/:id/status", adminOnly, h.HandleUpdateStatus)
}

// PlaceOrderRequest is the request body for checkout.
type PlaceOrderRequest struct {
	Items           []services.OrderItemInput `json:"items"`
	ShippingAddress *models.ShippingAddress   `json:"shippingAddress"`
}

// UpdateStatusRequest carries the admin-supplied status value.
type UpdateStatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

// HandlePlaceOrder validates availability, reserves inventory and creates
// the order for the authenticated user.
func (h *OrderHandler) HandlePlaceOrder(c *fiber.Ctx) error {
	var req PlaceOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if len(req.Items) == 0 {
		return respondError(c, fiber.StatusBadRequest, "Order must have at least one item")
	}

	order, err := h.service.PlaceOrder(currentUserID(c), currentEmail(c), req.Items, req.ShippingAddress)
	if err != nil {
		return respondDomainError(c, err)
	}
	return respond(c, fiber.StatusCreated, "Order placed successfully!", order)
}

// HandleMyOrders lists the caller's orders, newest first.
func (h *OrderHandler) HandleMyOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListUserOrders(currentUserID(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return respond(c, fiber.StatusOK, "Orders fetched successfully!", orders)
}

// HandleListAllOrders lists every order with purchaser summaries. Admin only.
func (h *OrderHandler) HandleListAllOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListAllOrders()
	if err != nil {
		return respondDomainError(c, err)
	}
	return respond(c, fiber.StatusOK, "All orders fetched successfully!", orders)
}

// HandleGetOrder returns a single order.
func (h *OrderHandler) HandleGetOrder(c *fiber.Ctx) error {
	order, err := h.service.GetOrderByID(c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return respond(c, fiber.StatusOK, "Order fetched successfully!", order)
}

// HandleCancelOrder cancels the caller's own pending order and restores
// inventory.
func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	order, err := h.service.CancelOrder(c.Params("id"), currentUserID(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return respond(c, fiber.StatusOK, "Order cancelled successfully!", order)
}

// HandleUpdateStatus overwrites an order's status. Admin only.
func (h *OrderHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	order, err := h.service.UpdateOrderStatus(c.Params("id"), req.Status)
	if err != nil {
		return respondDomainError(c, err)
	}
	return respond(c, fiber.StatusOK, "Order status updated successfully!", order)
}
