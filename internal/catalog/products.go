package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/fairyhunter13/storefront-catalog-service/internal/model"
	"github.com/fairyhunter13/storefront-catalog-service/internal/obs"
)

const (
	DefaultPage  = 1
	DefaultLimit = 100

	// PlaceholderImage is used when a product is created without images.
	PlaceholderImage = "https://images.unsplash.com/photo-1542291026-7eec264c27ff?w=800&h=800&fit=crop"

	defaultVariationStock = 10
	maxCreateAttempts     = 3
)

// ListParams selects a page of products. Category "all" or "" disables the
// category filter; non-positive Page/Limit fall back to the defaults.
type ListParams struct {
	Category     string
	FeaturedOnly bool
	Page         int64
	Limit        int64
}

// ListProducts returns one page of products ordered by key.
func (s *Service) ListProducts(ctx context.Context, p ListParams) (model.ProductPage, error) {
	if err := s.ready(); err != nil {
		return model.ProductPage{}, err
	}
	page, limit := p.Page, p.Limit
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	q := ProductQuery{FeaturedOnly: p.FeaturedOnly, Sort: SortByKey}
	if p.Category != "" && p.Category != "all" {
		q.Category = p.Category
	}
	total, err := s.store.CountProducts(ctx, q)
	if err != nil {
		return model.ProductPage{}, fmt.Errorf("count products: %w", err)
	}
	pg := model.ProductPage{
		Products: []model.Product{},
		Pagination: model.Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: pageCount(total, limit),
		},
	}
	// A skip past MaxInt64 is past every stored product.
	if page-1 > math.MaxInt64/limit {
		return pg, nil
	}
	q.Skip = (page - 1) * limit
	q.Limit = limit
	products, err := s.store.Products(ctx, q)
	if err != nil {
		return model.ProductPage{}, fmt.Errorf("list products: %w", err)
	}
	pg.Products = nonNil(products)
	return pg, nil
}

func pageCount(total, limit int64) int64 {
	n := total / limit
	if total%limit != 0 {
		n++
	}
	return n
}

// GetProduct returns the product with the given key.
func (s *Service) GetProduct(ctx context.Context, key int64) (model.Product, error) {
	if err := s.ready(); err != nil {
		return model.Product{}, err
	}
	if p, ok, err := s.cache.Product(ctx, key); err != nil {
		obs.Logger.Warn("cache_read_failed", "error", err, "product_id", key)
	} else if ok {
		return p, nil
	}
	p, err := s.store.ProductByKey(ctx, key)
	if err != nil {
		return model.Product{}, fmt.Errorf("product %d: %w", key, err)
	}
	if err := s.cache.StoreProduct(ctx, p); err != nil {
		obs.Logger.Warn("cache_write_failed", "error", err, "product_id", key)
	}
	return p, nil
}

// ProductsByCategory returns every product in category, ordered by key.
func (s *Service) ProductsByCategory(ctx context.Context, category string) (model.CategoryProducts, error) {
	if err := s.ready(); err != nil {
		return model.CategoryProducts{}, err
	}
	products, err := s.store.Products(ctx, ProductQuery{Category: category, Sort: SortByKey})
	if err != nil {
		return model.CategoryProducts{}, fmt.Errorf("list category %q: %w", category, err)
	}
	products = nonNil(products)
	return model.CategoryProducts{Products: products, Count: len(products)}, nil
}

// Categories returns the distinct non-empty category labels, sorted.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if cats, ok, err := s.cache.Categories(ctx); err != nil {
		obs.Logger.Warn("cache_read_failed", "error", err, "entry", "categories")
	} else if ok {
		return cats, nil
	}
	cats, err := s.categories(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.StoreCategories(ctx, cats); err != nil {
		obs.Logger.Warn("cache_write_failed", "error", err, "entry", "categories")
	}
	return cats, nil
}

func (s *Service) categories(ctx context.Context) ([]string, error) {
	raw, err := s.store.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("distinct categories: %w", err)
	}
	cats := make([]string, 0, len(raw))
	for _, c := range raw {
		if c != "" {
			cats = append(cats, c)
		}
	}
	sort.Strings(cats)
	return cats, nil
}

// NextProductKey returns one more than the largest stored key. It never
// fails: a detached service, an empty collection or a store error all
// yield 1.
func (s *Service) NextProductKey(ctx context.Context) int64 {
	if s.store == nil {
		return 1
	}
	maxKey, err := s.store.MaxProductKey(ctx)
	if err != nil {
		obs.Logger.Error("next_product_key_failed", "error", err)
		return 1
	}
	return maxKey + 1
}

// CreateProduct validates in, allocates a key and stores the new product.
// A key collision with a concurrent create is retried with a fresh key.
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (model.Product, error) {
	if err := s.ready(); err != nil {
		return model.Product{}, err
	}
	if err := validateProduct(in); err != nil {
		return model.Product{}, err
	}
	var lastErr error
	for attempt := 1; attempt <= maxCreateAttempts; attempt++ {
		key := s.NextProductKey(ctx)
		p := buildProduct(in, key, s.timestamp())
		err := s.store.InsertProduct(ctx, &p)
		if err == nil {
			obs.Logger.Info("product_created", "product_id", key, "attempt", attempt)
			s.invalidate(ctx)
			s.emit(model.EventProductCreated, p)
			return p, nil
		}
		if !errors.Is(err, ErrDuplicateKey) {
			return model.Product{}, fmt.Errorf("insert product %d: %w", key, err)
		}
		obs.Logger.Warn("product_key_collision", "product_id", key, "attempt", attempt)
		lastErr = err
	}
	return model.Product{}, fmt.Errorf("insert product after %d attempts: %w", maxCreateAttempts, lastErr)
}

func validateProduct(in ProductInput) error {
	var missing []string
	if strings.TrimSpace(in.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(in.Description) == "" {
		missing = append(missing, "description")
	}
	if !in.Price.Valid || in.Price.Value == 0 {
		missing = append(missing, "price")
	}
	if strings.TrimSpace(in.Category) == "" {
		missing = append(missing, "category")
	}
	if len(missing) > 0 {
		return invalid("Missing required fields: " + strings.Join(missing, ", "))
	}
	return nil
}

func buildProduct(in ProductInput, key int64, now time.Time) model.Product {
	images := in.Images.Values
	if len(images) == 0 {
		images = []string{PlaceholderImage}
	}
	specs := in.Specifications
	if specs == nil {
		specs = map[string]any{}
	}
	tags := in.Tags.Values
	if tags == nil {
		tags = []string{}
	}
	return model.Product{
		Key:            key,
		Name:           in.Name,
		Description:    in.Description,
		Price:          in.Price.Value,
		Category:       in.Category,
		Images:         images,
		Specifications: specs,
		Variations:     normalizeVariations(in.Variations, in.Price.Value, in.Category, key),
		Featured:       in.Featured.Value,
		CreatedAt:      now,
		UpdatedAt:      now,
		Tags:           tags,
	}
}

// normalizeVariations coerces prices and stock and fills in missing SKUs
// as "<CAT>-<key>-<position>".
func normalizeVariations(in []VariationInput, price int64, category string, key int64) []model.Variation {
	out := make([]model.Variation, 0, len(in))
	for i, v := range in {
		mv := model.Variation{Size: v.Size, Color: v.Color, Price: price, Stock: defaultVariationStock, SKU: v.SKU}
		if v.Price.Valid && v.Price.Value != 0 {
			mv.Price = v.Price.Value
		}
		if v.Stock.Valid {
			mv.Stock = v.Stock.Value
		}
		if mv.SKU == "" {
			mv.SKU = fmt.Sprintf("%s-%d-%d", skuPrefix(category), key, i+1)
		}
		out = append(out, mv)
	}
	return out
}

func skuPrefix(category string) string {
	r := []rune(category)
	if len(r) > 3 {
		r = r[:3]
	}
	return strings.ToUpper(string(r))
}

// UpdateProduct merges in into the product with the given key. The key,
// storage identity and creation time never change.
func (s *Service) UpdateProduct(ctx context.Context, key int64, in ProductUpdate) (model.Product, error) {
	if err := s.ready(); err != nil {
		return model.Product{}, err
	}
	patch := model.ProductPatch{
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		UpdatedAt:   s.timestamp(),
	}
	if in.Price.Valid {
		v := in.Price.Value
		patch.Price = &v
	}
	if in.Images.Valid {
		images := in.Images.Values
		if len(images) == 0 {
			images = []string{PlaceholderImage}
		}
		patch.Images = &images
	}
	if in.Specifications != nil {
		patch.Specifications = &in.Specifications
	}
	if in.Featured.Valid {
		v := in.Featured.Value
		patch.Featured = &v
	}
	if in.Tags.Valid {
		tags := nonNilStrings(in.Tags.Values)
		patch.Tags = &tags
	}
	if in.Variations != nil {
		current, err := s.store.ProductByKey(ctx, key)
		if err != nil {
			return model.Product{}, fmt.Errorf("product %d: %w", key, err)
		}
		price, category := current.Price, current.Category
		if patch.Price != nil {
			price = *patch.Price
		}
		if patch.Category != nil {
			category = *patch.Category
		}
		vs := normalizeVariations(*in.Variations, price, category, key)
		patch.Variations = &vs
	}

	updated, err := s.store.UpdateProduct(ctx, key, patch)
	if err != nil {
		return model.Product{}, fmt.Errorf("update product %d: %w", key, err)
	}
	s.invalidate(ctx, key)
	s.emit(model.EventProductUpdated, updated)
	return updated, nil
}

// DeleteProduct permanently removes the product with the given key.
func (s *Service) DeleteProduct(ctx context.Context, key int64) error {
	if err := s.ready(); err != nil {
		return err
	}
	p, err := s.store.ProductByKey(ctx, key)
	if err != nil {
		return fmt.Errorf("product %d: %w", key, err)
	}
	if err := s.store.DeleteProduct(ctx, key); err != nil {
		return fmt.Errorf("delete product %d: %w", key, err)
	}
	s.invalidate(ctx, key)
	s.emit(model.EventProductDeleted, p)
	return nil
}

func nonNil(ps []model.Product) []model.Product {
	if ps == nil {
		return []model.Product{}
	}
	return ps
}

func nonNilStrings(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
