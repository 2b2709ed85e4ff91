package services_test

import (
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/Abhishekhivarkar/Bakery-Website/internal/apperrors"
	"github.com/Abhishekhivarkar/Bakery-Website/internal/repos"
	"github.com/Abhishekhivarkar/Bakery-Website/internal/services"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	// One connection only, so every statement sees the same in-memory DB.
	db.SetMaxOpenConns(1)

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
	  ('p-cake','Chocolate Truffle Cake','chocolate-truffle-cake',549,'Cakes','["/uploads/products/choco.jpg"]',5,'["bestseller","chocolate"]','Chocolate'),
	  ('p-cookie','Butter Cookies Box','butter-cookies-box',249,'Cookies','[]',30,'["gift"]','Vanilla'),
	  ('p-bread','Sourdough Loaf','sourdough-loaf',149,'Breads','[]',20,'[]','Classic');
	INSERT INTO users(id,email,name,password_hash,role) VALUES
	  ('u1','buyer@bakery.test','Buyer','x','USER');
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}
	return db
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Choco Cake":       "choco-cake",
		"  Choco   Cake! ": "choco-cake",
		"100% Wheat Bread": "100-wheat-bread",
		"cookies":          "cookies",
	}
	for in, want := range cases {
		if got := services.Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeImagePathIdempotent(t *testing.T) {
	cases := map[string]string{
		"choco.jpg":                    "/uploads/products/choco.jpg",
		"uploads/products/a.png":       "/uploads/products/a.png",
		"/uploads/designs/b.webp":      "/uploads/designs/b.webp",
		"https://cdn.example.com/x.jp": "https://cdn.example.com/x.jp",
		"":                             "",
	}
	for in, want := range cases {
		once := services.NormalizeImagePath(in)
		if once != want {
			t.Errorf("normalize(%q) = %q, want %q", in, once, want)
		}
		if twice := services.NormalizeImagePath(once); twice != once {
			t.Errorf("normalize not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}

func TestCreateDerivesSlugAndNormalizesImages(t *testing.T) {
	svc := services.NewCatalogService(repos.NewProductRepo(memdb(t)))

	p, err := svc.Create(services.CreateProductInput{
		Name:     "Choco Cake",
		Price:    500,
		Category: "Cakes",
		Stock:    10,
		Images:   []string{"choco-cake.jpg"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if p.Slug != "choco-cake" {
		t.Fatalf("want slug choco-cake, got %q", p.Slug)
	}
	if len(p.Images) != 1 || p.Images[0] != "/uploads/products/choco-cake.jpg" {
		t.Fatalf("image not normalized: %+v", p.Images)
	}
	if p.Flavour != "Vanilla" || p.Weight != "500g" {
		t.Fatalf("defaults not applied: flavour=%q weight=%q", p.Flavour, p.Weight)
	}
}

func TestCreateRejectsBadInput(t *testing.T) {
	svc := services.NewCatalogService(repos.NewProductRepo(memdb(t)))

	if _, err := svc.Create(services.CreateProductInput{Name: "  ", Price: 10}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("blank name: want ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Create(services.CreateProductInput{Name: "Cake", Price: -1}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("negative price: want ErrInvalidInput, got %v", err)
	}
}

func TestListFiltersByCategoryAndPriceRange(t *testing.T) {
	svc := services.NewCatalogService(repos.NewProductRepo(memdb(t)))

	page, err := svc.List(repos.ListFilter{Category: "Cakes"}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 1 || page.Products[0].ID != "p-cake" {
		t.Fatalf("category filter: %+v", page)
	}

	min, max := 200.0, 600.0
	page, err = svc.List(repos.ListFilter{MinPrice: &min, MaxPrice: &max, Sort: "price_asc"}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 2 {
		t.Fatalf("want 2 in [200,600], got %d", page.Total)
	}
	if page.Products[0].ID != "p-cookie" || page.Products[1].ID != "p-cake" {
		t.Fatalf("price_asc order wrong: %s, %s", page.Products[0].ID, page.Products[1].ID)
	}
}

func TestGetTreatsMalformedIDAsNotFound(t *testing.T) {
	svc := services.NewCatalogService(repos.NewProductRepo(memdb(t)))

	for _, id := range []string{"", "no such id", "../../etc/passwd"} {
		if _, err := svc.Get(id); !errors.Is(err, apperrors.ErrNotFound) {
			t.Errorf("Get(%q): want ErrNotFound, got %v", id, err)
		}
	}
	if _, err := svc.Get("p-missing"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("unknown id: want ErrNotFound, got %v", err)
	}
}

func TestUpdateAppendsImagesAndReslugs(t *testing.T) {
	svc := services.NewCatalogService(repos.NewProductRepo(memdb(t)))

	name := "Dark Chocolate Cake"
	p, err := svc.Update("p-cake", services.UpdateProductInput{
		Name:      &name,
		NewImages: []string{"dark.jpg"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if p.Slug != "dark-chocolate-cake" {
		t.Fatalf("want reslugged name, got %q", p.Slug)
	}
	if len(p.Images) != 2 || p.Images[1] != "/uploads/products/dark.jpg" {
		t.Fatalf("new image should append, got %+v", p.Images)
	}
}

func TestDeleteUnknownIsNotFound(t *testing.T) {
	svc := services.NewCatalogService(repos.NewProductRepo(memdb(t)))

	if err := svc.Delete("p-missing"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if err := svc.Delete("p-bread"); err != nil {
		t.Fatalf("delete existing: %v", err)
	}
	if _, err := svc.Get("p-bread"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatal("product should be gone after delete")
	}
}

func TestFacetsCollectDistinctValues(t *testing.T) {
	svc := services.NewCatalogService(repos.NewProductRepo(memdb(t)))

	f, err := svc.Facets()
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Categories) != 3 {
		t.Fatalf("want 3 categories, got %v", f.Categories)
	}
	wantTags := []string{"bestseller", "chocolate", "gift"}
	if len(f.Tags) != len(wantTags) {
		t.Fatalf("want tags %v, got %v", wantTags, f.Tags)
	}
	for i, tag := range wantTags {
		if f.Tags[i] != tag {
			t.Fatalf("want tags %v, got %v", wantTags, f.Tags)
		}
	}
	if len(f.Flavours) != 3 {
		t.Fatalf("want 3 flavours, got %v", f.Flavours)
	}
}
