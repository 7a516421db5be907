package catalog_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/storefront-catalog-service/internal/catalog"
	"github.com/fairyhunter13/storefront-catalog-service/internal/model"
	"github.com/fairyhunter13/storefront-catalog-service/internal/store"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 123456789, time.UTC)

func clock() time.Time { return fixedNow }

type recordingSink struct {
	mu     sync.Mutex
	events []model.ProductEvent
	reject bool
}

func (r *recordingSink) Emit(ev model.ProductEvent) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.reject {
		return false
	}
	r.events = append(r.events, ev)
	return true
}

func (r *recordingSink) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

func seeded(t *testing.T, opts ...catalog.Option) (*catalog.Service, *store.Store) {
	t.Helper()
	st := store.New()
	require.NoError(t, st.InsertProducts(context.Background(), catalog.SampleProducts(fixedNow)))
	return catalog.New(st, append([]catalog.Option{catalog.WithClock(clock)}, opts...)...), st
}

func validInput() catalog.ProductInput {
	return catalog.ProductInput{
		Name:        "Desk Lamp",
		Description: "LED lamp",
		Price:       catalog.Int(2500),
		Category:    "home",
	}
}

func TestCreateProductAssignsNextKey(t *testing.T) {
	svc, _ := seeded(t)
	p, err := svc.CreateProduct(context.Background(), validInput())
	require.NoError(t, err)
	require.EqualValues(t, 6, p.Key)
	require.Equal(t, []string{catalog.PlaceholderImage}, p.Images)
	require.NotNil(t, p.Specifications)
	require.NotNil(t, p.Tags)
	require.Empty(t, p.Variations)
	require.False(t, p.Featured)
	require.Equal(t, fixedNow.Truncate(time.Millisecond), p.CreatedAt)
	require.Equal(t, p.CreatedAt, p.UpdatedAt)

	got, err := svc.GetProduct(context.Background(), 6)
	require.NoError(t, err)
	require.Equal(t, "Desk Lamp", got.Name)
}

func TestCreateProductOnEmptyCatalogStartsAtOne(t *testing.T) {
	svc := catalog.New(store.New())
	p, err := svc.CreateProduct(context.Background(), validInput())
	require.NoError(t, err)
	require.EqualValues(t, 1, p.Key)
}

func TestCreateProductValidation(t *testing.T) {
	svc, st := seeded(t)
	in := validInput()
	in.Description = ""
	in.Price = catalog.Int(0)
	_, err := svc.CreateProduct(context.Background(), in)
	var ve *catalog.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "Missing required fields: description, price", ve.Msg)

	_, err = svc.CreateProduct(context.Background(), catalog.ProductInput{})
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "Missing required fields: name, description, price, category", ve.Msg)

	n, _ := st.CountProducts(context.Background(), catalog.ProductQuery{})
	require.EqualValues(t, 5, n)
}

func TestCreateProductNormalizesVariations(t *testing.T) {
	svc, _ := seeded(t)
	in := validInput()
	in.Category = "électronique"
	in.Variations = []catalog.VariationInput{
		{Size: "S"},
		{Color: "red", Price: catalog.Int(3000), Stock: catalog.Int(0), SKU: "LAMP-RED"},
	}
	p, err := svc.CreateProduct(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, []model.Variation{
		{Size: "S", Price: 2500, Stock: 10, SKU: "ÉLE-6-1"},
		{Color: "red", Price: 3000, Stock: 0, SKU: "LAMP-RED"},
	}, p.Variations)
}

func TestCreateProductDecodesLooseJSON(t *testing.T) {
	svc, _ := seeded(t)
	var in catalog.ProductInput
	body := `{"name":"Mug","description":"Ceramic","price":"450","category":"home",
		"images":"https://example.com/mug.jpg","tags":["kitchen",3],"featured":"true",
		"variations":[{"size":"L","price":"12.9","stock":"5 units"}]}`
	require.NoError(t, json.Unmarshal([]byte(body), &in))

	p, err := svc.CreateProduct(context.Background(), in)
	require.NoError(t, err)
	require.EqualValues(t, 450, p.Price)
	require.True(t, p.Featured)
	require.Equal(t, []string{"https://example.com/mug.jpg"}, p.Images)
	require.Equal(t, []string{"kitchen"}, p.Tags)
	require.Equal(t, []model.Variation{{Size: "L", Price: 12, Stock: 5, SKU: "HOM-6-1"}}, p.Variations)
}

// collidingStore reports a duplicate key on the first n inserts.
type collidingStore struct {
	*store.Store
	mu       sync.Mutex
	failures int
	attempts int
}

func (c *collidingStore) InsertProduct(ctx context.Context, p *model.Product) error {
	c.mu.Lock()
	c.attempts++
	fail := c.attempts <= c.failures
	c.mu.Unlock()
	if fail {
		return catalog.ErrDuplicateKey
	}
	return c.Store.InsertProduct(ctx, p)
}

func TestCreateProductRetriesKeyCollision(t *testing.T) {
	cs := &collidingStore{Store: store.New(), failures: 2}
	svc := catalog.New(cs)
	p, err := svc.CreateProduct(context.Background(), validInput())
	require.NoError(t, err)
	require.EqualValues(t, 1, p.Key)
	require.Equal(t, 3, cs.attempts)

	cs = &collidingStore{Store: store.New(), failures: 3}
	svc = catalog.New(cs)
	_, err = svc.CreateProduct(context.Background(), validInput())
	require.ErrorIs(t, err, catalog.ErrDuplicateKey)
	require.Equal(t, 3, cs.attempts)
}

func TestConcurrentCreatesGetDistinctKeys(t *testing.T) {
	svc, st := seeded(t)
	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateProduct(context.Background(), validInput())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	created := 0
	for err := range errs {
		if err == nil {
			created++
		} else {
			require.ErrorIs(t, err, catalog.ErrDuplicateKey)
		}
	}
	require.Positive(t, created)
	n, _ := st.CountProducts(context.Background(), catalog.ProductQuery{})
	require.EqualValues(t, 5+created, n)
	require.NoError(t, st.EnsureIndexes(context.Background()))
}

type failingMaxStore struct{ *store.Store }

func (failingMaxStore) MaxProductKey(context.Context) (int64, error) {
	return 0, errors.New("boom")
}

func TestNextProductKey(t *testing.T) {
	svc, _ := seeded(t)
	require.EqualValues(t, 6, svc.NextProductKey(context.Background()))
	require.EqualValues(t, 1, catalog.New(nil).NextProductKey(context.Background()))
	require.EqualValues(t, 1, catalog.New(failingMaxStore{store.New()}).NextProductKey(context.Background()))
}

func TestListProductsPagination(t *testing.T) {
	svc, _ := seeded(t)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		in := validInput()
		in.Category = "electronics"
		_, err := svc.CreateProduct(ctx, in)
		require.NoError(t, err)
	}

	page, err := svc.ListProducts(ctx, catalog.ListParams{Category: "electronics", Page: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Products, 2)
	require.Equal(t, model.Pagination{Page: 1, Limit: 2, Total: 3, Pages: 2}, page.Pagination)
	require.EqualValues(t, 1, page.Products[0].Key)
	require.EqualValues(t, 6, page.Products[1].Key)

	page, err = svc.ListProducts(ctx, catalog.ListParams{Category: "all"})
	require.NoError(t, err)
	require.Len(t, page.Products, 7)
	require.Equal(t, model.Pagination{Page: 1, Limit: 100, Total: 7, Pages: 1}, page.Pagination)

	page, err = svc.ListProducts(ctx, catalog.ListParams{FeaturedOnly: true, Page: 9, Limit: 2})
	require.NoError(t, err)
	require.NotNil(t, page.Products)
	require.Empty(t, page.Products)
	require.EqualValues(t, 4, page.Pagination.Total)
}

func TestListProductsHugePageAndLimit(t *testing.T) {
	svc, _ := seeded(t)
	ctx := context.Background()

	page, err := svc.ListProducts(ctx, catalog.ListParams{Page: 1e17, Limit: 100})
	require.NoError(t, err)
	require.NotNil(t, page.Products)
	require.Empty(t, page.Products)
	require.Equal(t, model.Pagination{Page: 1e17, Limit: 100, Total: 5, Pages: 1}, page.Pagination)

	page, err = svc.ListProducts(ctx, catalog.ListParams{Page: math.MaxInt64, Limit: math.MaxInt64})
	require.NoError(t, err)
	require.Empty(t, page.Products)

	page, err = svc.ListProducts(ctx, catalog.ListParams{Page: 1, Limit: math.MaxInt64})
	require.NoError(t, err)
	require.Len(t, page.Products, 5)
	require.EqualValues(t, 1, page.Pagination.Pages)
}

func TestProductsByCategory(t *testing.T) {
	svc, _ := seeded(t)
	got, err := svc.ProductsByCategory(context.Background(), "bags")
	require.NoError(t, err)
	require.Equal(t, 1, got.Count)
	require.EqualValues(t, 5, got.Products[0].Key)

	got, err = svc.ProductsByCategory(context.Background(), "nothing")
	require.NoError(t, err)
	require.NotNil(t, got.Products)
	require.Zero(t, got.Count)
}

func TestCategoriesSkipsEmpty(t *testing.T) {
	svc, st := seeded(t)
	st.Put(model.Product{Key: 50, Name: "uncategorized"})
	cats, err := svc.Categories(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"bags", "clothing", "electronics", "footwear", "perfumes"}, cats)
}

func TestUpdateProductMergesAndKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	st := store.New()
	require.NoError(t, st.InsertProducts(ctx, catalog.SampleProducts(fixedNow)))
	later := fixedNow.Add(time.Hour)
	svc := catalog.New(st, catalog.WithClock(func() time.Time { return later }))
	before, err := svc.GetProduct(ctx, 2)
	require.NoError(t, err)

	var in catalog.ProductUpdate
	body := `{"id":99,"_id":"x","createdAt":"2000-01-01T00:00:00Z","price":2100,"variations":[{"size":"XL"}]}`
	require.NoError(t, json.Unmarshal([]byte(body), &in))
	got, err := svc.UpdateProduct(ctx, 2, in)
	require.NoError(t, err)

	require.EqualValues(t, 2, got.Key)
	require.Equal(t, before.ObjectID, got.ObjectID)
	require.Equal(t, before.CreatedAt, got.CreatedAt)
	require.Equal(t, later.Truncate(time.Millisecond), got.UpdatedAt)
	require.EqualValues(t, 2100, got.Price)
	require.Equal(t, before.Name, got.Name)
	require.Equal(t, before.Tags, got.Tags)
	require.Equal(t, []model.Variation{{Size: "XL", Price: 2100, Stock: 10, SKU: "CLO-2-1"}}, got.Variations)

	_, err = svc.GetProduct(ctx, 99)
	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestUpdateProductIsIdempotent(t *testing.T) {
	svc, _ := seeded(t)
	ctx := context.Background()
	name := "Renamed"
	in := catalog.ProductUpdate{Name: &name, Featured: catalog.Bool(false), Tags: catalog.Strings("a", "b")}
	first, err := svc.UpdateProduct(ctx, 3, in)
	require.NoError(t, err)
	second, err := svc.UpdateProduct(ctx, 3, in)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestUpdateMissingProductDoesNotCreate(t *testing.T) {
	svc, st := seeded(t)
	ctx := context.Background()
	name := "ghost"
	_, err := svc.UpdateProduct(ctx, 404, catalog.ProductUpdate{Name: &name})
	require.ErrorIs(t, err, catalog.ErrNotFound)

	vs := []catalog.VariationInput{{Size: "M"}}
	_, err = svc.UpdateProduct(ctx, 404, catalog.ProductUpdate{Variations: &vs})
	require.ErrorIs(t, err, catalog.ErrNotFound)

	n, _ := st.CountProducts(ctx, catalog.ProductQuery{})
	require.EqualValues(t, 5, n)
}

func TestDeleteProduct(t *testing.T) {
	svc, _ := seeded(t)
	ctx := context.Background()
	require.NoError(t, svc.DeleteProduct(ctx, 4))
	_, err := svc.GetProduct(ctx, 4)
	require.ErrorIs(t, err, catalog.ErrNotFound)
	require.ErrorIs(t, svc.DeleteProduct(ctx, 4), catalog.ErrNotFound)
}

func TestProductEvents(t *testing.T) {
	sink := &recordingSink{}
	svc, _ := seeded(t, catalog.WithEvents(sink))
	ctx := context.Background()
	p, err := svc.CreateProduct(ctx, validInput())
	require.NoError(t, err)
	name := "x"
	_, err = svc.UpdateProduct(ctx, p.Key, catalog.ProductUpdate{Name: &name})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteProduct(ctx, p.Key))
	_, _ = svc.UpdateProduct(ctx, 404, catalog.ProductUpdate{Name: &name})

	require.Equal(t, []string{model.EventProductCreated, model.EventProductUpdated, model.EventProductDeleted}, sink.types())
	require.EqualValues(t, p.Key, sink.events[2].ProductKey)
	require.Equal(t, "x", sink.events[2].Name)

	sink.reject = true
	_, err = svc.CreateProduct(ctx, validInput())
	require.NoError(t, err)
}

func TestDetachedServiceFails(t *testing.T) {
	svc := catalog.New(nil)
	ctx := context.Background()
	require.False(t, svc.Connected())
	_, err := svc.ListProducts(ctx, catalog.ListParams{})
	require.ErrorIs(t, err, catalog.ErrStoreUnavailable)
	_, err = svc.GetProduct(ctx, 1)
	require.ErrorIs(t, err, catalog.ErrStoreUnavailable)
	_, err = svc.CreateProduct(ctx, validInput())
	require.ErrorIs(t, err, catalog.ErrStoreUnavailable)
	_, err = svc.Stats(ctx)
	require.ErrorIs(t, err, catalog.ErrStoreUnavailable)
	_, err = svc.ListAds(ctx)
	require.ErrorIs(t, err, catalog.ErrStoreUnavailable)
	require.ErrorIs(t, svc.DeleteAd(ctx, "x"), catalog.ErrStoreUnavailable)
	require.True(t, svc.RunStartupMaintenance(ctx, true).Detached)
}
