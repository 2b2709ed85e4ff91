package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Abhishekhivarkar/Bakery-Website/internal/config"
	"github.com/Abhishekhivarkar/Bakery-Website/internal/gateway"
	"github.com/Abhishekhivarkar/Bakery-Website/internal/http/handlers"
	applog "github.com/Abhishekhivarkar/Bakery-Website/internal/log"
	"github.com/Abhishekhivarkar/Bakery-Website/internal/metrics"
	"github.com/Abhishekhivarkar/Bakery-Website/internal/repos"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	gw := gateway.New(cfg.RazorpayKeyID, cfg.RazorpaySecret, cfg.RazorpayBaseURL)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			code := fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok && fe.Code < 500 {
				code = fe.Code
			}
			// Never leak internals; the envelope carries a generic line.
			return c.Status(code).JSON(fiber.Map{
				"success": false,
				"message": "something went wrong, please try again",
			})
		},
	})
	// Global body size guard (uploads excepted below via BodyLimit).
	app.Server().MaxRequestBodySize = 8 << 20 // 8 MiB, room for product images

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(metrics.Middleware())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/uploads/")
		},
	}))

	// ---------- Static uploads ----------
	uploadsDir := cfg.UploadsDir
	if !filepath.IsAbs(uploadsDir) {
		if abs, err := filepath.Abs(uploadsDir); err == nil {
			uploadsDir = abs
		}
	}
	for _, sub := range []string{"products", "designs"} {
		if err := os.MkdirAll(filepath.Join(uploadsDir, sub), 0755); err != nil {
			log.Fatal(err)
		}
	}
	log.Printf("[static] /uploads -> %s", uploadsDir)

	// Guarded to avoid traversal
	app.Get("/uploads/*", func(c *fiber.Ctx) error {
		path := c.Params("*")
		rawLower := strings.ToLower(path)
		if strings.Contains(rawLower, "..") || strings.Contains(rawLower, "%2e") || strings.Contains(rawLower, "\x00") {
			applog.Security(c, "uploads.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		clean := filepath.Clean(path)
		if clean == "." || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
			applog.Security(c, "uploads.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.SendFile(filepath.Join(uploadsDir, clean), true)
	})

	// ---------- App handlers ----------
	deps := handlers.NewDeps(db, cfg, gw)
	app.Use(handlers.AttachUser(deps.Auth))

	api := app.Group("/api")

	// Catalog
	api.Get("/product", deps.ProductHandler.List)
	api.Get("/product/facets", deps.ProductHandler.Facets)
	api.Get("/product/:id", deps.ProductHandler.Get)
	api.Post("/product/create", handlers.RequireAdmin(deps.Auth), deps.ProductHandler.Create)
	api.Put("/product/update/:id", handlers.RequireAdmin(deps.Auth), deps.ProductHandler.Update)
	api.Delete("/product/:id", handlers.RequireAdmin(deps.Auth), deps.ProductHandler.Delete)

	// Cart pricing (stateless; the cart itself lives in the client)
	api.Post("/cart/quote", deps.CartHandler.Quote)

	// Payment; throttled harder than the catalog
	payLimiter := limiter.New(limiter.Config{
		Max:        15,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|pay"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.payment.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"success": false, "message": "rate limit exceeded, retry soon"})
		},
	})
	api.Post("/payment/create-order", payLimiter, deps.PaymentHandler.CreateOrder)
	api.Post("/payment/verify", payLimiter, deps.PaymentHandler.Verify)

	// Orders
	api.Post("/orders", handlers.RequireUser(deps.Auth), deps.OrderHandler.Place)
	api.Get("/orders", handlers.RequireUser(deps.Auth), deps.OrderHandler.History)
	api.Get("/orders/:id", handlers.RequireUser(deps.Auth), deps.OrderHandler.Get)
	api.Post("/orders/:id/cancel", handlers.RequireUser(deps.Auth), deps.OrderHandler.Cancel)

	// Wallet
	api.Get("/wallet", handlers.RequireUser(deps.Auth), deps.WalletHandler.Balance)
	api.Get("/wallet/transactions", handlers.RequireUser(deps.Auth), deps.WalletHandler.Transactions)

	// Auth (login/OTP throttled)
	authLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.auth.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"success": false, "message": "too many attempts, try again later"})
		},
	})
	api.Post("/auth/register", authLimiter, deps.AuthHandler.Register)
	api.Post("/auth/login", authLimiter, deps.AuthHandler.Login)
	api.Post("/auth/logout", deps.AuthHandler.Logout)
	api.Get("/auth/me", deps.AuthHandler.Me)
	api.Post("/auth/otp/request", authLimiter, deps.AuthHandler.OTPRequest)
	api.Post("/auth/otp/verify", authLimiter, deps.AuthHandler.OTPVerify)

	// Admin
	admin := api.Group("/admin", handlers.RequireAdmin(deps.Auth))
	admin.Get("/orders", deps.OrderHandler.ListAll)
	admin.Put("/orders/:id/status", deps.OrderHandler.UpdateStatus)
	admin.Post("/wallet/adjust", deps.WalletHandler.Adjust)

	// Health & metrics
	app.Get("/health", deps.HealthHandler.Check)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Uniform JSON 404 for everything unmatched
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
