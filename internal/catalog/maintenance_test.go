package catalog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fairyhunter13/storefront-catalog-service/internal/catalog"
	"github.com/fairyhunter13/storefront-catalog-service/internal/model"
	"github.com/fairyhunter13/storefront-catalog-service/internal/store"
)

func TestPlanKeyRepair(t *testing.T) {
	ids := make([]primitive.ObjectID, 6)
	for i := range ids {
		ids[i] = primitive.NewObjectID()
	}
	records := []catalog.KeyRecord{
		{ObjectID: ids[0], Key: 3},
		{ObjectID: ids[1], Key: 0},
		{ObjectID: ids[2], Key: 3},
		{ObjectID: ids[3], Key: 1},
		{ObjectID: ids[4], Key: 0},
		{ObjectID: ids[5], Key: 1},
	}
	plan := catalog.PlanKeyRepair(records)
	require.Equal(t, []catalog.KeyAssignment{
		{ObjectID: ids[1], Key: 4},
		{ObjectID: ids[4], Key: 5},
		{ObjectID: ids[2], Key: 6},
		{ObjectID: ids[5], Key: 7},
	}, plan)

	require.Empty(t, catalog.PlanKeyRepair(nil))
	require.Empty(t, catalog.PlanKeyRepair([]catalog.KeyRecord{{ObjectID: ids[0], Key: 1}, {ObjectID: ids[1], Key: 2}}))
}

func TestRepairKeysMakesKeysUnique(t *testing.T) {
	ctx := context.Background()
	st := store.New()
	st.Put(
		model.Product{Key: 2, Name: "a"},
		model.Product{Key: 2, Name: "b"},
		model.Product{Name: "c"},
		model.Product{Key: -1, Name: "d"},
	)
	out := catalog.RepairKeys(ctx, st)
	require.NoError(t, out.Err)
	require.Equal(t, 4, out.Scanned)
	require.Equal(t, 3, out.Reassigned)

	recs, err := st.ProductKeys(ctx)
	require.NoError(t, err)
	seen := map[int64]bool{}
	for _, r := range recs {
		require.Positive(t, r.Key)
		require.False(t, seen[r.Key], "duplicate key %d", r.Key)
		seen[r.Key] = true
	}
	a, err := st.ProductByKey(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, "a", a.Name)

	again := catalog.RepairKeys(ctx, st)
	require.Zero(t, again.Reassigned)
}

type brokenKeysStore struct{ *store.Store }

func (brokenKeysStore) ProductKeys(context.Context) ([]catalog.KeyRecord, error) {
	return nil, errors.New("cursor died")
}

func TestRepairKeysReportsErrors(t *testing.T) {
	out := catalog.RepairKeys(context.Background(), brokenKeysStore{store.New()})
	require.ErrorContains(t, out.Err, "cursor died")
}

func TestSeedSampleProducts(t *testing.T) {
	ctx := context.Background()
	st := store.New()
	out := catalog.SeedSampleProducts(ctx, st, fixedNow)
	require.NoError(t, out.Err)
	require.Equal(t, 5, out.Inserted)

	out = catalog.SeedSampleProducts(ctx, st, fixedNow)
	require.NoError(t, out.Err)
	require.Zero(t, out.Inserted)
	require.EqualValues(t, 5, out.Existing)

	p, err := st.ProductByKey(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "Premium Wireless Headphones", p.Name)
	require.Len(t, p.Variations, 3)
}

func TestStartupMaintenance(t *testing.T) {
	ctx := context.Background()
	st := store.New()
	st.Put(model.Product{Key: 1, Name: "x"}, model.Product{Key: 1, Name: "y"})
	svc := catalog.New(st, catalog.WithClock(clock))

	r := svc.RunStartupMaintenance(ctx, true)
	require.False(t, r.Detached)
	require.Equal(t, 1, r.Repair.Reassigned)
	require.NoError(t, r.IndexErr)
	require.True(t, r.Seeded)
	require.EqualValues(t, 2, r.Seed.Existing)

	var buf bytes.Buffer
	r.Log(slog.New(slog.NewJSONHandler(&buf, nil)))
	require.Contains(t, buf.String(), "key_repair_applied")
	require.Contains(t, buf.String(), "indexes_ready")
	require.Contains(t, buf.String(), "sample_seed_skipped")

	r = catalog.New(store.New()).RunStartupMaintenance(ctx, false)
	require.False(t, r.Seeded)
	buf.Reset()
	r.Log(slog.New(slog.NewJSONHandler(&buf, nil)))
	require.Contains(t, buf.String(), "key_repair_clean")
	require.NotContains(t, buf.String(), "sample_")
}

func TestStats(t *testing.T) {
	svc, st := seeded(t)
	st.Put(model.Product{Key: 9, Name: "plain", Category: ""})
	s, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 6, s.TotalProducts)
	require.Equal(t, 5, s.Categories)
	require.Equal(t, 5, s.ProductsWithVariations)
	require.EqualValues(t, 4, s.FeaturedProducts)
	require.EqualValues(t, 15+8+5+20+25+15+30+15+12+18+10+12, s.TotalStock)
	require.Len(t, s.LatestProducts, 5)
	require.Equal(t, []string{"bags", "clothing", "electronics", "footwear", "perfumes"}, s.CategoriesList)
}

func TestAds(t *testing.T) {
	svc := catalog.New(store.New(), catalog.WithClock(clock))
	ctx := context.Background()

	_, err := svc.CreateAd(ctx, catalog.AdInput{Type: "audio", URL: "u"})
	var ve *catalog.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "type must be video or image", ve.Msg)

	_, err = svc.CreateAd(ctx, catalog.AdInput{Type: "video"})
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "type and url are required", ve.Msg)

	ad, err := svc.CreateAd(ctx, catalog.AdInput{Type: "video", URL: "https://cdn.example.com/a.mp4"})
	require.NoError(t, err)
	require.Equal(t, "Video Ad", ad.Title)
	require.False(t, ad.ID.IsZero())

	img, err := svc.CreateAd(ctx, catalog.AdInput{Type: "image", URL: "u", Title: "Sale"})
	require.NoError(t, err)
	require.Equal(t, "Sale", img.Title)

	ads, err := svc.ListAds(ctx)
	require.NoError(t, err)
	require.Len(t, ads, 2)
	require.Equal(t, img.ID, ads[0].ID)

	require.ErrorAs(t, svc.DeleteAd(ctx, "not-hex"), &ve)
	require.NoError(t, svc.DeleteAd(ctx, ad.ID.Hex()))
	require.ErrorIs(t, svc.DeleteAd(ctx, ad.ID.Hex()), catalog.ErrNotFound)

	ads, err = svc.ListAds(ctx)
	require.NoError(t, err)
	require.Len(t, ads, 1)
}
