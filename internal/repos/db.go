package repos

import (
	"log"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed baseline catalog data if DB is empty (idempotent).
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}
	// Ensure an admin account exists (idempotent; safe every start).
	if err := seedUsers(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Products. images_json / tags_json carry the document-style arrays.
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  slug TEXT NOT NULL,
  description TEXT DEFAULT '',
  price NUMERIC NOT NULL CHECK (price >= 0),
  category TEXT DEFAULT '',
  images_json TEXT DEFAULT '[]',
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  tags_json TEXT DEFAULT '[]',
  flavour TEXT DEFAULT 'Vanilla',
  weight TEXT DEFAULT '500g',
  is_featured INTEGER NOT NULL DEFAULT 0,
  rating NUMERIC NOT NULL DEFAULT 0,
  reviews_count INTEGER NOT NULL DEFAULT 0,
  created_by TEXT DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_products_slug     ON products(slug);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);
CREATE INDEX IF NOT EXISTS idx_products_name     ON products(LOWER(name));
CREATE INDEX IF NOT EXISTS idx_products_created  ON products(created_at);

-- Users & cookie sessions
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  phone TEXT DEFAULT '',
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('USER','ADMIN')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen  TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

-- Orders. Line items are snapshots, not live joins.
CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id),
  total_amount NUMERIC NOT NULL,
  payment_method TEXT NOT NULL DEFAULT 'razorpay'
    CHECK (payment_method IN ('razorpay','cod','wallet')),
  payment_status TEXT NOT NULL DEFAULT 'pending'
    CHECK (payment_status IN ('pending','paid','failed','refunded')),
  rzp_order_id TEXT DEFAULT '',
  rzp_payment_id TEXT DEFAULT '',
  rzp_signature TEXT DEFAULT '',
  order_status TEXT NOT NULL DEFAULT 'created'
    CHECK (order_status IN ('created','confirmed','preparing','out-for-delivery','delivered','cancelled','returned')),
  ship_name TEXT DEFAULT '',
  ship_phone TEXT DEFAULT '',
  ship_line1 TEXT DEFAULT '',
  ship_line2 TEXT DEFAULT '',
  ship_city TEXT DEFAULT '',
  ship_state TEXT DEFAULT '',
  ship_postal_code TEXT DEFAULT '',
  delivered_at TEXT DEFAULT '',
  cancelled_at TEXT DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_orders_user    ON orders(user_id);
CREATE INDEX IF NOT EXISTS idx_orders_rzp     ON orders(rzp_order_id);
CREATE INDEX IF NOT EXISTS idx_orders_created ON orders(created_at);

CREATE TABLE IF NOT EXISTS order_items(
  order_id  TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  price NUMERIC NOT NULL,
  qty INTEGER NOT NULL CHECK (qty >= 1),
  image TEXT DEFAULT '',
  PRIMARY KEY (order_id, product_id)
);

-- One-time codes. code_hash only; rows are consumed, never reused.
CREATE TABLE IF NOT EXISTS otps(
  id TEXT PRIMARY KEY,
  identifier TEXT NOT NULL,
  code_hash TEXT NOT NULL,
  purpose TEXT NOT NULL CHECK (purpose IN ('signup','forgot-password','2fa')),
  attempts INTEGER NOT NULL DEFAULT 0,
  expires_at TEXT NOT NULL,
  consumed_at TEXT DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_otps_identifier ON otps(identifier, purpose);

-- Append-only wallet ledger.
CREATE TABLE IF NOT EXISTS transactions(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id),
  type TEXT NOT NULL CHECK (type IN ('credit','debit')),
  amount NUMERIC NOT NULL CHECK (amount > 0),
  method TEXT DEFAULT '',
  reference TEXT DEFAULT '',
  note TEXT DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions(user_id);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo catalog")

	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO products(id,name,slug,description,price,category,images_json,stock,tags_json,flavour,weight,is_featured) VALUES
	  ('cake-choco-001','Chocolate Truffle Cake','chocolate-truffle-cake','Dark chocolate layers with truffle cream',549,'Cakes','["/uploads/products/choco-truffle.jpg"]',12,'["bestseller","chocolate"]','Chocolate','1kg',1),
	  ('cake-redvelvet-001','Red Velvet Cake','red-velvet-cake','Classic red velvet with cream cheese frosting',649,'Cakes','["/uploads/products/red-velvet.jpg"]',8,'["premium"]','Red Velvet','500g',1),
	  ('cookie-butter-001','Butter Cookies Box','butter-cookies-box','Assorted butter cookies, 24 pieces',249,'Cookies','["/uploads/products/butter-cookies.jpg"]',30,'["gift"]','Vanilla','400g',0),
	  ('bread-sour-001','Sourdough Loaf','sourdough-loaf','Slow-fermented country sourdough',149,'Breads','["/uploads/products/sourdough.jpg"]',20,'[]','Classic','700g',0)`)
	return tx.Commit()
}

// seedUsers ensures a demo customer and one admin exist (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Email, Name, Role, Hash string
	}
	mk := func(id, email, name, role, raw string) u {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), 12)
		return u{ID: id, Email: email, Name: name, Role: role, Hash: string(h)}
	}

	users := []u{
		mk("u-demo", "demo@bakery.test", "Demo Customer", "USER", "Passw0rd!"),
		mk("u-admin", "admin@bakery.test", "Admin", "ADMIN", "Passw0rd!"),
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.Exec(`
			INSERT INTO users(id,email,name,password_hash,role)
			VALUES(?,?,?,?,?)
			ON CONFLICT(email) DO NOTHING
		`, x.ID, x.Email, x.Name, x.Hash, x.Role); err != nil {
			return err
		}
	}

	return tx.Commit()
}
