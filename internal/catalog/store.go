package catalog

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fairyhunter13/storefront-catalog-service/internal/model"
)

// SortOrder selects the ordering of a product query.
type SortOrder int

const (
	// SortByKey orders products ascending by key.
	SortByKey SortOrder = iota
	// SortNewestFirst orders products descending by creation time.
	SortNewestFirst
)

// ProductQuery filters, orders and windows a product read.
// Zero values mean "no filter"; a zero Limit means unlimited.
type ProductQuery struct {
	Category       string
	FeaturedOnly   bool
	WithVariations bool
	Sort           SortOrder
	Skip           int64
	Limit          int64
}

// KeyRecord is the identity pair scanned by the key repair routine.
// Key is zero when the stored key is missing, null or non-positive.
type KeyRecord struct {
	ObjectID primitive.ObjectID
	Key      int64
}

// KeyAssignment sets a new key on the record with the given storage identity.
type KeyAssignment struct {
	ObjectID primitive.ObjectID
	Key      int64
}

// Store is the document store backing the catalog.
//
// Implementations return ErrNotFound (possibly wrapped) for missing records
// and ErrDuplicateKey when an insert collides on the product key.
type Store interface {
	Products(ctx context.Context, q ProductQuery) ([]model.Product, error)
	CountProducts(ctx context.Context, q ProductQuery) (int64, error)
	ProductByKey(ctx context.Context, key int64) (model.Product, error)
	// Categories returns the distinct category values, empty ones included.
	Categories(ctx context.Context) ([]string, error)
	// MaxProductKey returns the largest key, or 0 for an empty collection.
	MaxProductKey(ctx context.Context) (int64, error)
	InsertProduct(ctx context.Context, p *model.Product) error
	InsertProducts(ctx context.Context, ps []model.Product) error
	UpdateProduct(ctx context.Context, key int64, patch model.ProductPatch) (model.Product, error)
	DeleteProduct(ctx context.Context, key int64) error

	// ProductKeys lists every product's identity in natural order.
	ProductKeys(ctx context.Context) ([]KeyRecord, error)
	// ReassignKeys applies key assignments as a single unordered batch.
	ReassignKeys(ctx context.Context, as []KeyAssignment) error
	EnsureIndexes(ctx context.Context) error

	// Ads lists ads newest first.
	Ads(ctx context.Context) ([]model.Ad, error)
	InsertAd(ctx context.Context, a *model.Ad) error
	DeleteAd(ctx context.Context, id primitive.ObjectID) error
}

// Cache is an optional read-through cache for single products and the
// category list. Misses are reported with ok=false and a nil error.
type Cache interface {
	Product(ctx context.Context, key int64) (p model.Product, ok bool, err error)
	StoreProduct(ctx context.Context, p model.Product) error
	Categories(ctx context.Context) (cats []string, ok bool, err error)
	StoreCategories(ctx context.Context, cats []string) error
	// Invalidate drops the given product keys and the category list.
	Invalidate(ctx context.Context, keys ...int64) error
}

// EventSink receives product lifecycle events. Emit must not block.
type EventSink interface {
	Emit(ev model.ProductEvent) bool
}

type nopCache struct{}

func (nopCache) Product(context.Context, int64) (model.Product, bool, error) {
	return model.Product{}, false, nil
}
func (nopCache) StoreProduct(context.Context, model.Product) error { return nil }
func (nopCache) Categories(context.Context) ([]string, bool, error) { return nil, false, nil }
func (nopCache) StoreCategories(context.Context, []string) error { return nil }
func (nopCache) Invalidate(context.Context, ...int64) error { return nil }

type nopSink struct{}

func (nopSink) Emit(model.ProductEvent) bool { return true }
