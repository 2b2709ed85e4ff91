package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Abhishekhivarkar/Bakery-Website/internal/apperrors"
	applog "github.com/Abhishekhivarkar/Bakery-Website/internal/log"
)

// ok writes a success envelope, merging extra payload fields in.
func ok(c *fiber.Ctx, status int, payload fiber.Map) error {
	body := fiber.Map{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	return c.Status(status).JSON(body)
}

// fail maps an error through the taxonomy to a status code and a
// uniform failure envelope. Internal errors are logged with the real
// cause but never leak it to the client.
func fail(c *fiber.Ctx, action string, err error) error {
	status := apperrors.Status(err)
	if status == fiber.StatusInternalServerError {
		applog.Error(c, action, err, nil)
	} else {
		applog.Security(c, action, map[string]any{"reason": err.Error()})
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": apperrors.Message(err),
	})
}
