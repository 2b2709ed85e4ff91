package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Abhishekhivarkar/Bakery-Website/internal/apperrors"
	"github.com/Abhishekhivarkar/Bakery-Website/internal/domain"
	applog "github.com/Abhishekhivarkar/Bakery-Website/internal/log"
	"github.com/Abhishekhivarkar/Bakery-Website/internal/metrics"
	"github.com/Abhishekhivarkar/Bakery-Website/internal/services"
	"github.com/Abhishekhivarkar/Bakery-Website/internal/validate"
)

type OrderHandler struct {
	Orders *services.OrderService
}

type placeOrderReq struct {
	Items         []services.PlaceLine   `json:"items"`
	Shipping      domain.ShippingAddress `json:"shippingAddress"`
	PaymentMethod string                 `json:"paymentMethod"`
}

// Place handles POST /api/orders for the logged-in user.
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	u := currentUser(c)

	var req placeOrderReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, "order.place", apperrors.ErrInvalidInput)
	}
	method, okM := validate.PaymentMethod(req.PaymentMethod)
	if !okM {
		return fail(c, "order.place", apperrors.ErrInvalidInput)
	}

	o, err := h.Orders.Place(services.PlaceOrderInput{
		UserID:        u.ID,
		Lines:         req.Items,
		Shipping:      req.Shipping,
		PaymentMethod: method,
	})
	if err != nil {
		return fail(c, "order.place", err)
	}

	metrics.OrdersPlaced.WithLabelValues(method).Inc()
	applog.Audit(c, "order.place", map[string]any{
		"order_id": o.ID,
		"total":    o.TotalAmount,
		"method":   method,
	})
	return ok(c, fiber.StatusCreated, fiber.Map{"order": o})
}

// History handles GET /api/orders: the caller's own orders.
func (h *OrderHandler) History(c *fiber.Ctx) error {
	u := currentUser(c)
	orders, err := h.Orders.ListByUser(u.ID)
	if err != nil {
		return fail(c, "order.history", err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"orders": orders})
}

func (h *OrderHandler) Get(c *fiber.Ctx) error {
	o, err := h.Orders.Get(c.Params("id"), currentUser(c))
	if err != nil {
		return fail(c, "order.get", err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"order": o})
}

// ListAll handles the admin order listing.
func (h *OrderHandler) ListAll(c *fiber.Ctx) error {
	orders, err := h.Orders.ListLatest(validate.Limit(c.Query("limit")))
	if err != nil {
		return fail(c, "admin.orders.list", err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"orders": orders})
}

type updateStatusReq struct {
	Status string `json:"status"`
}

// UpdateStatus handles PUT /api/orders/:id/status (admin).
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	var req updateStatusReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, "admin.orders.status", apperrors.ErrInvalidInput)
	}
	to := strings.ToLower(strings.TrimSpace(req.Status))
	if to == "" {
		return fail(c, "admin.orders.status", apperrors.ErrInvalidInput)
	}

	o, err := h.Orders.UpdateStatus(c.Params("id"), to)
	if err != nil {
		return fail(c, "admin.orders.status", err)
	}
	applog.Audit(c, "admin.orders.status", map[string]any{"order_id": o.ID, "status": o.OrderStatus})
	return ok(c, fiber.StatusOK, fiber.Map{"order": o})
}

// Cancel handles POST /api/orders/:id/cancel for the order's owner.
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	o, err := h.Orders.Cancel(c.Params("id"), currentUser(c))
	if err != nil {
		return fail(c, "order.cancel", err)
	}
	applog.Audit(c, "order.cancel", map[string]any{"order_id": o.ID})
	return ok(c, fiber.StatusOK, fiber.Map{"order": o})
}
