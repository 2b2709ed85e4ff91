package handlers

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Abhishekhivarkar/Bakery-Website/internal/apperrors"
	applog "github.com/Abhishekhivarkar/Bakery-Website/internal/log"
	"github.com/Abhishekhivarkar/Bakery-Website/internal/repos"
	"github.com/Abhishekhivarkar/Bakery-Website/internal/services"
	"github.com/Abhishekhivarkar/Bakery-Website/internal/validate"
)

type ProductHandler struct {
	Catalog    *services.CatalogService
	UploadsDir string
}

// List handles GET /api/product with search/category/price/sort/page
// query parameters.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	f := repos.ListFilter{
		Search:   c.Query("search"),
		Category: strings.TrimSpace(c.Query("category")),
		Limit:    validate.Limit(c.Query("limit")),
	}

	if v := c.Query("minPrice"); v != "" {
		p, okP := validate.Price(v)
		if !okP {
			return fail(c, "product.list", apperrors.ErrInvalidInput)
		}
		f.MinPrice = &p
	}
	if v := c.Query("maxPrice"); v != "" {
		p, okP := validate.Price(v)
		if !okP {
			return fail(c, "product.list", apperrors.ErrInvalidInput)
		}
		f.MaxPrice = &p
	}
	sortKey, okS := validate.Sort(c.Query("sort"))
	if !okS {
		return fail(c, "product.list", apperrors.ErrInvalidInput)
	}
	f.Sort = sortKey

	page, err := h.Catalog.List(f, validate.Page(c.Query("page")))
	if err != nil {
		return fail(c, "product.list", err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{
		"products": page.Products,
		"total":    page.Total,
		"page":     page.Page,
		"pages":    page.Pages,
	})
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	p, err := h.Catalog.Get(c.Params("id"))
	if err != nil {
		return fail(c, "product.get", err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"product": p})
}

func (h *ProductHandler) Facets(c *fiber.Ctx) error {
	f, err := h.Catalog.Facets()
	if err != nil {
		return fail(c, "product.facets", err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"facets": f})
}

// Create handles POST /api/product/create: multipart form fields plus
// zero or more "images" files saved under the uploads root.
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	price, okP := validate.Price(c.FormValue("price"))
	if !okP {
		return fail(c, "product.create", apperrors.ErrInvalidInput)
	}

	images, err := h.saveUploads(c)
	if err != nil {
		return fail(c, "product.create.upload", err)
	}

	in := services.CreateProductInput{
		Name:        c.FormValue("name"),
		Description: c.FormValue("description"),
		Price:       price,
		Category:    c.FormValue("category"),
		Stock:       atoiDefault(c.FormValue("stock"), 0),
		Tags:        splitCSV(c.FormValue("tags")),
		Flavour:     c.FormValue("flavour"),
		Weight:      c.FormValue("weight"),
		IsFeatured:  c.FormValue("isFeatured") == "true",
		Images:      images,
	}
	if u := currentUser(c); u != nil {
		in.CreatedBy = u.ID
	}

	p, err := h.Catalog.Create(in)
	if err != nil {
		return fail(c, "product.create", err)
	}
	applog.Audit(c, "product.create", map[string]any{"product_id": p.ID, "slug": p.Slug})
	return ok(c, fiber.StatusCreated, fiber.Map{"product": p, "message": "product created"})
}

// Update handles PUT /api/product/update/:id; new images append to the
// existing list.
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var in services.UpdateProductInput

	if v := c.FormValue("name"); v != "" {
		in.Name = &v
	}
	if v := c.FormValue("description"); v != "" {
		in.Description = &v
	}
	if v := c.FormValue("price"); v != "" {
		p, okP := validate.Price(v)
		if !okP {
			return fail(c, "product.update", apperrors.ErrInvalidInput)
		}
		in.Price = &p
	}
	if v := c.FormValue("category"); v != "" {
		in.Category = &v
	}
	if v := c.FormValue("stock"); v != "" {
		n := atoiDefault(v, -1)
		in.Stock = &n
	}
	if v := c.FormValue("tags"); v != "" {
		in.Tags = splitCSV(v)
	}
	if v := c.FormValue("flavour"); v != "" {
		in.Flavour = &v
	}
	if v := c.FormValue("weight"); v != "" {
		in.Weight = &v
	}
	if v := c.FormValue("isFeatured"); v != "" {
		b := v == "true"
		in.IsFeatured = &b
	}

	images, err := h.saveUploads(c)
	if err != nil {
		return fail(c, "product.update.upload", err)
	}
	in.NewImages = images

	p, err := h.Catalog.Update(c.Params("id"), in)
	if err != nil {
		return fail(c, "product.update", err)
	}
	applog.Audit(c, "product.update", map[string]any{"product_id": p.ID})
	return ok(c, fiber.StatusOK, fiber.Map{"product": p})
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Catalog.Delete(id); err != nil {
		return fail(c, "product.delete", err)
	}
	applog.Audit(c, "product.delete", map[string]any{"product_id": id})
	return ok(c, fiber.StatusOK, fiber.Map{"message": "product deleted"})
}

// saveUploads stores multipart "images" files under uploads/products
// and returns their root-relative paths.
func (h *ProductHandler) saveUploads(c *fiber.Ctx) ([]string, error) {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil, nil // no multipart body; JSON-only update
	}
	files := form.File["images"]
	paths := make([]string, 0, len(files))
	for _, f := range files {
		name := services.UploadFilename(f.Filename)
		dst := filepath.Join(h.UploadsDir, "products", name)
		if err := c.SaveFile(f, dst); err != nil {
			return nil, err
		}
		paths = append(paths, "/uploads/products/"+name)
	}
	return paths, nil
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}
