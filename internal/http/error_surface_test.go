package handlers_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	applog "github.com/Abhishekhivarkar/Bakery-Website/internal/log"
)

func TestUnknownRouteIsUniformJSON404(t *testing.T) {
	env := newEnv(t, "")

	for _, path := range []string{"/nope", "/api/nope", "/api/product/x/y/z"} {
		resp := env.doJSON(t, "GET", path, nil, "")
		if resp.StatusCode != fiber.StatusNotFound {
			t.Errorf("%s: want 404, got %d", path, resp.StatusCode)
			continue
		}
		body := envelope(t, resp)
		if body["success"] != false || body["message"] != "not found" {
			t.Errorf("%s: want uniform envelope, got %v", path, body)
		}
	}
}

// Internal errors answer with a generic line; the cause stays in the
// logs.
func TestInternalErrorsDoNotLeakDetails(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "something went wrong, please try again",
			})
		},
	})
	app.Use(requestid.New())
	app.Get("/boom", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusInternalServerError, "sqlite disk I/O at /var/lib/secret.db")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("want 500, got %d", resp.StatusCode)
	}
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	s := string(raw)
	if !strings.Contains(s, "something went wrong") {
		t.Fatalf("generic message missing: %s", s)
	}
	if strings.Contains(s, "sqlite") || strings.Contains(s, "secret") {
		t.Fatalf("internal details leaked: %s", s)
	}
}

func TestHealthEndpointReportsGatewayState(t *testing.T) {
	env := newEnv(t, "")

	resp := env.doJSON(t, "GET", "/health", nil, "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
	body := envelope(t, resp)
	if body["db"] != true {
		t.Fatalf("db should be up: %v", body)
	}
	if body["gateway_configured"] != false {
		t.Fatalf("gateway should read unconfigured: %v", body)
	}
}
