package services

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Abhishekhivarkar/Bakery-Website/internal/apperrors"
	"github.com/Abhishekhivarkar/Bakery-Website/internal/domain"
	"github.com/Abhishekhivarkar/Bakery-Website/internal/repos"
	"github.com/Abhishekhivarkar/Bakery-Website/internal/validate"
)

type CatalogService struct {
	Prods *repos.ProductRepo
}

func NewCatalogService(prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Prods: prods}
}

// Slugify derives the URL-safe identifier from a product name:
// lowercased, non-alphanumeric runs collapsed to single hyphens.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// NormalizeImagePath maps any stored image value to its served form.
// Full URLs and rooted /uploads paths pass through, a bare "uploads/"
// prefix gains its slash, and legacy bare filenames land under
// /uploads/products/. Applying it twice yields the same path.
func NormalizeImagePath(img string) string {
	switch {
	case img == "":
		return img
	case strings.HasPrefix(img, "http://"), strings.HasPrefix(img, "https://"):
		return img
	case strings.HasPrefix(img, "/uploads/"):
		return img
	case strings.HasPrefix(img, "uploads/"):
		return "/" + img
	default:
		return "/uploads/products/" + img
	}
}

// UploadFilename builds a collision-free stored name for an uploaded
// file, keeping the original extension.
func UploadFilename(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	base = Slugify(base)
	if base == "" {
		base = "image"
	}
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), base, ext)
}

type CreateProductInput struct {
	Name        string
	Description string
	Price       float64
	Category    string
	Stock       int
	Tags        []string
	Flavour     string
	Weight      string
	IsFeatured  bool
	Images      []string // stored paths or filenames
	CreatedBy   string
}

func (s *CatalogService) Create(in CreateProductInput) (domain.Product, error) {
	name, ok := validate.Name(in.Name)
	if !ok || in.Price < 0 {
		return domain.Product{}, apperrors.ErrInvalidInput
	}
	if in.Stock < 0 {
		in.Stock = 0
	}
	if in.Flavour == "" {
		in.Flavour = "Vanilla"
	}
	if in.Weight == "" {
		in.Weight = "500g"
	}

	images := make([]string, 0, len(in.Images))
	for _, img := range in.Images {
		images = append(images, NormalizeImagePath(img))
	}

	p := domain.Product{
		ID:          uuid.NewString(),
		Name:        name,
		Slug:        Slugify(name),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Category:    strings.TrimSpace(in.Category),
		ImagesJSON:  domain.EncodeStrings(images),
		Stock:       in.Stock,
		TagsJSON:    domain.EncodeStrings(cleanTags(in.Tags)),
		Flavour:     in.Flavour,
		Weight:      in.Weight,
		IsFeatured:  in.IsFeatured,
		CreatedBy:   in.CreatedBy,
	}
	if err := s.Prods.Insert(p); err != nil {
		return domain.Product{}, err
	}
	return s.Get(p.ID)
}

func (s *CatalogService) Get(id string) (domain.Product, error) {
	// A malformed id is indistinguishable from an unknown one.
	if _, ok := validate.ID(id); !ok {
		return domain.Product{}, apperrors.ErrNotFound
	}
	p, err := s.Prods.Get(id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, apperrors.ErrNotFound
	}
	if err != nil {
		return domain.Product{}, err
	}
	finishProduct(&p)
	return p, nil
}

type ProductPage struct {
	Products []domain.Product `json:"products"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	Pages    int              `json:"pages"`
}

func (s *CatalogService) List(f repos.ListFilter, page int) (ProductPage, error) {
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if page < 1 {
		page = 1
	}
	f.Offset = (page - 1) * f.Limit
	f.Search = strings.ToLower(strings.TrimSpace(f.Search))

	prods, total, err := s.Prods.List(f)
	if err != nil {
		return ProductPage{}, err
	}
	for i := range prods {
		finishProduct(&prods[i])
	}
	pages := (total + f.Limit - 1) / f.Limit
	return ProductPage{Products: prods, Total: total, Page: page, Pages: pages}, nil
}

type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *float64
	Category    *string
	Stock       *int
	Tags        []string
	Flavour     *string
	Weight      *string
	IsFeatured  *bool
	// NewImages are appended to the existing list, never replacing it.
	NewImages []string
}

func (s *CatalogService) Update(id string, in UpdateProductInput) (domain.Product, error) {
	p, err := s.Get(id)
	if err != nil {
		return domain.Product{}, err
	}

	if in.Name != nil {
		name, ok := validate.Name(*in.Name)
		if !ok {
			return domain.Product{}, apperrors.ErrInvalidInput
		}
		p.Name = name
		p.Slug = Slugify(name)
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return domain.Product{}, apperrors.ErrInvalidInput
		}
		p.Price = *in.Price
	}
	if in.Category != nil {
		p.Category = strings.TrimSpace(*in.Category)
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return domain.Product{}, apperrors.ErrInvalidInput
		}
		p.Stock = *in.Stock
	}
	if in.Tags != nil {
		p.TagsJSON = domain.EncodeStrings(cleanTags(in.Tags))
	}
	if in.Flavour != nil && *in.Flavour != "" {
		p.Flavour = *in.Flavour
	}
	if in.Weight != nil && *in.Weight != "" {
		p.Weight = *in.Weight
	}
	if in.IsFeatured != nil {
		p.IsFeatured = *in.IsFeatured
	}
	if len(in.NewImages) > 0 {
		p.DecodeLists()
		imgs := p.Images
		for _, img := range in.NewImages {
			imgs = append(imgs, NormalizeImagePath(img))
		}
		p.ImagesJSON = domain.EncodeStrings(imgs)
	}

	if err := s.Prods.Update(p); err != nil {
		return domain.Product{}, err
	}
	return s.Get(id)
}

func (s *CatalogService) Delete(id string) error {
	if _, ok := validate.ID(id); !ok {
		return apperrors.ErrNotFound
	}
	ok, err := s.Prods.Delete(id)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrNotFound
	}
	return nil
}

// Facets is the distinct-values summary the client filter forms use, so
// the whole catalog is never fetched just to learn the vocabulary.
type Facets struct {
	Categories []string `json:"categories"`
	Tags       []string `json:"tags"`
	Flavours   []string `json:"flavours"`
}

func (s *CatalogService) Facets() (Facets, error) {
	cats, err := s.Prods.Categories()
	if err != nil {
		return Facets{}, err
	}

	rows, err := s.Prods.TagAndFlavourColumns()
	if err != nil {
		return Facets{}, err
	}
	tagSet := map[string]struct{}{}
	flavourSet := map[string]struct{}{}
	for _, row := range rows {
		for _, t := range decode(row.TagsJSON) {
			tagSet[t] = struct{}{}
		}
		if row.Flavour != "" {
			flavourSet[row.Flavour] = struct{}{}
		}
	}

	return Facets{
		Categories: cats,
		Tags:       sortedKeys(tagSet),
		Flavours:   sortedKeys(flavourSet),
	}, nil
}

func finishProduct(p *domain.Product) {
	p.DecodeLists()
	for i, img := range p.Images {
		p.Images[i] = NormalizeImagePath(img)
	}
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := map[string]struct{}{}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func decode(tagsJSON string) []string {
	p := domain.Product{TagsJSON: tagsJSON}
	p.DecodeLists()
	return p.Tags
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
