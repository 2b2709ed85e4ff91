package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Abhishekhivarkar/Bakery-Website/internal/apperrors"
	"github.com/Abhishekhivarkar/Bakery-Website/internal/cart"
	"github.com/Abhishekhivarkar/Bakery-Website/internal/services"
)

// CartHandler prices client-held carts. The server never stores cart
// state; the browser posts its lines and gets totals back.
type CartHandler struct {
	Orders *services.OrderService
}

type quoteReq struct {
	Items []cart.Item `json:"items"`
}

// Quote handles POST /api/cart/quote.
func (h *CartHandler) Quote(c *fiber.Ctx) error {
	var req quoteReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, "cart.quote", apperrors.ErrInvalidInput)
	}
	for _, it := range req.Items {
		if it.ProductID == "" || it.Price < 0 {
			return fail(c, "cart.quote", apperrors.ErrInvalidInput)
		}
	}
	totals := h.Orders.Quote(req.Items)
	return ok(c, fiber.StatusOK, fiber.Map{"totals": totals})
}
