package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"

	"github.com/Abhishekhivarkar/Bakery-Website/internal/gateway"
)

type HealthHandler struct {
	DB      *sqlx.DB
	Gateway *gateway.Client
}

// Check reports liveness plus store connectivity and gateway state.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbOK := h.DB.Ping() == nil
	status := fiber.StatusOK
	if !dbOK {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{
		"ok":                 dbOK,
		"db":                 dbOK,
		"gateway_configured": h.Gateway.Configured(),
		"gateway_breaker":    h.Gateway.BreakerState(),
	})
}
