package repos

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Abhishekhivarkar/Bakery-Website/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `
  id, name, slug, description, price, category, images_json, stock,
  tags_json, flavour, weight, is_featured, rating, reviews_count,
  COALESCE(created_by,'') AS created_by,
  created_at, COALESCE(updated_at,'') AS updated_at`

// ListFilter mirrors the catalog list query parameters.
type ListFilter struct {
	Search   string
	Category string
	MinPrice *float64
	MaxPrice *float64
	Sort     string // price_asc | price_desc | "" (newest first)
	Limit    int
	Offset   int
}

func (r *ProductRepo) List(f ListFilter) ([]domain.Product, int, error) {
	where := `1=1`
	args := []any{}
	if f.Search != "" {
		where += ` AND LOWER(name) LIKE ?`
		args = append(args, "%"+f.Search+"%")
	}
	if f.Category != "" {
		where += ` AND category = ?`
		args = append(args, f.Category)
	}
	if f.MinPrice != nil {
		where += ` AND price >= ?`
		args = append(args, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		where += ` AND price <= ?`
		args = append(args, *f.MaxPrice)
	}

	order := `created_at DESC`
	switch f.Sort {
	case "price_asc":
		order = `price ASC`
	case "price_desc":
		order = `price DESC`
	}

	var total int
	if err := r.db.Get(&total, `SELECT COUNT(*) FROM products WHERE `+where, args...); err != nil {
		return nil, 0, err
	}

	var out []domain.Product
	q := `SELECT ` + productCols + ` FROM products WHERE ` + where +
		` ORDER BY ` + order + ` LIMIT ? OFFSET ?`
	args = append(args, f.Limit, f.Offset)
	if err := r.db.Select(&out, q, args...); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *ProductRepo) Get(id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `SELECT `+productCols+` FROM products WHERE id = ?`, id)
	return p, err
}

func (r *ProductRepo) Insert(p domain.Product) error {
	_, err := r.db.Exec(`
	  INSERT INTO products
	    (id, name, slug, description, price, category, images_json, stock,
	     tags_json, flavour, weight, is_featured, created_by, created_at)
	  VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
	`, p.ID, p.Name, p.Slug, p.Description, p.Price, p.Category, p.ImagesJSON,
		p.Stock, p.TagsJSON, p.Flavour, p.Weight, p.IsFeatured, p.CreatedBy)
	return err
}

func (r *ProductRepo) Update(p domain.Product) error {
	_, err := r.db.Exec(`
	  UPDATE products SET
	    name=?, slug=?, description=?, price=?, category=?, images_json=?,
	    stock=?, tags_json=?, flavour=?, weight=?, is_featured=?,
	    updated_at=CURRENT_TIMESTAMP
	  WHERE id=?
	`, p.Name, p.Slug, p.Description, p.Price, p.Category, p.ImagesJSON,
		p.Stock, p.TagsJSON, p.Flavour, p.Weight, p.IsFeatured, p.ID)
	return err
}

func (r *ProductRepo) Delete(id string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// DecrementStock subtracts qty only while enough stock remains; a zero
// rows-affected result means the order would oversell.
func (r *ProductRepo) DecrementStock(id string, qty int) error {
	res, err := r.db.Exec(`
		UPDATE products SET stock = stock - ?
		WHERE id = ? AND stock >= ?
	`, qty, id, qty)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("insufficient stock for %s", id)
	}
	return nil
}

// IncrementStock restores units after a failed placement or a cancel.
func (r *ProductRepo) IncrementStock(id string, qty int) error {
	_, err := r.db.Exec(`UPDATE products SET stock = stock + ? WHERE id = ?`, qty, id)
	return err
}

// Categories returns the distinct category labels currently in use.
func (r *ProductRepo) Categories() ([]string, error) {
	var out []string
	err := r.db.Select(&out, `
		SELECT DISTINCT category FROM products
		WHERE category != '' ORDER BY category
	`)
	return out, err
}

// TagAndFlavourColumns returns the raw tags_json and flavour values;
// the service folds them into distinct sets.
func (r *ProductRepo) TagAndFlavourColumns() ([]struct {
	TagsJSON string `db:"tags_json"`
	Flavour  string `db:"flavour"`
}, error) {
	var out []struct {
		TagsJSON string `db:"tags_json"`
		Flavour  string `db:"flavour"`
	}
	err := r.db.Select(&out, `SELECT tags_json, flavour FROM products`)
	return out, err
}
