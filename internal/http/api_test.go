package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/Abhishekhivarkar/Bakery-Website/internal/config"
	"github.com/Abhishekhivarkar/Bakery-Website/internal/gateway"
	"github.com/Abhishekhivarkar/Bakery-Website/internal/http/handlers"
	applog "github.com/Abhishekhivarkar/Bakery-Website/internal/log"
)

type testEnv struct {
	app *fiber.App
	db  *sqlx.DB
	gw  *gateway.Client
}

// newEnv wires an in-memory store and the full API surface the way the
// server binary does, minus rate limiting. providerURL points the
// payment gateway at a stub; empty leaves it unconfigured.
func newEnv(t *testing.T, providerURL string) *testEnv {
	t.Helper()

	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	schema := `
	CREATE TABLE products(id TEXT PRIMARY KEY, name TEXT, slug TEXT, description TEXT DEFAULT '',
	  price NUMERIC, category TEXT DEFAULT '', images_json TEXT DEFAULT '[]',
	  stock INTEGER DEFAULT 0, tags_json TEXT DEFAULT '[]', flavour TEXT DEFAULT 'Vanilla',
	  weight TEXT DEFAULT '500g', is_featured INTEGER DEFAULT 0, rating NUMERIC DEFAULT 0,
	  reviews_count INTEGER DEFAULT 0, created_by TEXT DEFAULT '',
	  created_at TEXT DEFAULT CURRENT_TIMESTAMP, updated_at TEXT);
	CREATE TABLE users(id TEXT PRIMARY KEY, email TEXT UNIQUE, name TEXT, phone TEXT DEFAULT '',
	  password_hash TEXT, role TEXT, created_at TEXT DEFAULT CURRENT_TIMESTAMP, updated_at TEXT);
	CREATE TABLE sessions(id TEXT PRIMARY KEY, user_id TEXT, created_at TEXT DEFAULT CURRENT_TIMESTAMP, last_seen TEXT);
	CREATE TABLE orders(id TEXT PRIMARY KEY, user_id TEXT, total_amount NUMERIC,
	  payment_method TEXT DEFAULT 'razorpay', payment_status TEXT DEFAULT 'pending',
	  rzp_order_id TEXT DEFAULT '', rzp_payment_id TEXT DEFAULT '', rzp_signature TEXT DEFAULT '',
	  order_status TEXT DEFAULT 'created',
	  ship_name TEXT DEFAULT '', ship_phone TEXT DEFAULT '', ship_line1 TEXT DEFAULT '',
	  ship_line2 TEXT DEFAULT '', ship_city TEXT DEFAULT '', ship_state TEXT DEFAULT '',
	  ship_postal_code TEXT DEFAULT '', delivered_at TEXT DEFAULT '', cancelled_at TEXT DEFAULT '',
	  created_at TEXT DEFAULT CURRENT_TIMESTAMP);
	CREATE TABLE order_items(order_id TEXT, product_id TEXT, name TEXT, price NUMERIC,
	  qty INTEGER, image TEXT DEFAULT '', PRIMARY KEY(order_id, product_id));
	CREATE TABLE otps(id TEXT PRIMARY KEY, identifier TEXT, code_hash TEXT, purpose TEXT,
	  attempts INTEGER DEFAULT 0, expires_at TEXT, consumed_at TEXT DEFAULT '',
	  created_at TEXT DEFAULT CURRENT_TIMESTAMP);
	CREATE TABLE transactions(id TEXT PRIMARY KEY, user_id TEXT, type TEXT, amount NUMERIC,
	  method TEXT DEFAULT '', reference TEXT DEFAULT '', note TEXT DEFAULT '',
	  created_at TEXT DEFAULT CURRENT_TIMESTAMP);

	INSERT INTO products(id,name,slug,price,category,images_json,stock,tags_json,flavour) VALUES
	  ('p-cake','Chocolate Truffle Cake','chocolate-truffle-cake',549,'Cakes','["/uploads/products/choco.jpg"]',5,'["bestseller"]','Chocolate'),
	  ('p-cookie','Butter Cookies Box','butter-cookies-box',249,'Cookies','[]',30,'["gift"]','Vanilla');
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("Passw0rd!"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatal(err)
	}
	users := []struct{ id, email, name, role string }{
		{"u-buyer", "buyer@bakery.test", "Buyer", "USER"},
		{"u-admin", "admin@bakery.test", "Admin", "ADMIN"},
	}
	for _, u := range users {
		if _, err := db.Exec(`INSERT INTO users(id,email,name,password_hash,role) VALUES(?,?,?,?,?)`,
			u.id, u.email, u.name, string(hash), u.role); err != nil {
			t.Fatal(err)
		}
	}

	cfg := config.Config{
		TaxRate:       0.05,
		DeliveryFee:   40,
		OTPTTLMinutes: 10,
		UploadsDir:    t.TempDir(),
	}
	var gw *gateway.Client
	if providerURL != "" {
		gw = gateway.New("key", "secret", providerURL)
	} else {
		gw = gateway.New("", "", "")
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			code := fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok && fe.Code < 500 {
				code = fe.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"success": false,
				"message": "something went wrong, please try again",
			})
		},
	})
	app.Use(requestid.New())

	deps := handlers.NewDeps(db, cfg, gw)
	app.Use(handlers.AttachUser(deps.Auth))

	api := app.Group("/api")

	api.Get("/product", deps.ProductHandler.List)
	api.Get("/product/facets", deps.ProductHandler.Facets)
	api.Get("/product/:id", deps.ProductHandler.Get)
	api.Post("/product/create", handlers.RequireAdmin(deps.Auth), deps.ProductHandler.Create)
	api.Put("/product/update/:id", handlers.RequireAdmin(deps.Auth), deps.ProductHandler.Update)
	api.Delete("/product/:id", handlers.RequireAdmin(deps.Auth), deps.ProductHandler.Delete)

	api.Post("/cart/quote", deps.CartHandler.Quote)

	api.Post("/payment/create-order", deps.PaymentHandler.CreateOrder)
	api.Post("/payment/verify", deps.PaymentHandler.Verify)

	api.Post("/orders", handlers.RequireUser(deps.Auth), deps.OrderHandler.Place)
	api.Get("/orders", handlers.RequireUser(deps.Auth), deps.OrderHandler.History)
	api.Get("/orders/:id", handlers.RequireUser(deps.Auth), deps.OrderHandler.Get)
	api.Post("/orders/:id/cancel", handlers.RequireUser(deps.Auth), deps.OrderHandler.Cancel)

	api.Get("/wallet", handlers.RequireUser(deps.Auth), deps.WalletHandler.Balance)
	api.Get("/wallet/transactions", handlers.RequireUser(deps.Auth), deps.WalletHandler.Transactions)

	api.Post("/auth/register", deps.AuthHandler.Register)
	api.Post("/auth/login", deps.AuthHandler.Login)
	api.Post("/auth/logout", deps.AuthHandler.Logout)
	api.Get("/auth/me", deps.AuthHandler.Me)
	api.Post("/auth/otp/request", deps.AuthHandler.OTPRequest)
	api.Post("/auth/otp/verify", deps.AuthHandler.OTPVerify)

	admin := api.Group("/admin", handlers.RequireAdmin(deps.Auth))
	admin.Get("/orders", deps.OrderHandler.ListAll)
	admin.Put("/orders/:id/status", deps.OrderHandler.UpdateStatus)
	admin.Post("/wallet/adjust", deps.WalletHandler.Adjust)

	app.Get("/health", deps.HealthHandler.Check)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "not found"})
	})

	return &testEnv{app: app, db: db, gw: gw}
}

// login authenticates through the real endpoint and returns the sid
// cookie value.
func (e *testEnv) login(t *testing.T, email string) string {
	t.Helper()
	resp := e.doJSON(t, "POST", "/api/auth/login", map[string]any{
		"email": email, "password": "Passw0rd!",
	}, "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("login %s: status %d", email, resp.StatusCode)
	}
	for _, c := range resp.Cookies() {
		if c.Name == "sid" && c.Value != "" {
			return c.Value
		}
	}
	t.Fatal("no sid cookie after login")
	return ""
}

func (e *testEnv) doJSON(t *testing.T, method, path string, body any, sid string) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// envelope decodes the uniform response body.
func envelope(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return out
}
