package mongostore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fairyhunter13/storefront-catalog-service/internal/catalog"
	"github.com/fairyhunter13/storefront-catalog-service/internal/model"
)

func TestProductFilter(t *testing.T) {
	require.Equal(t, bson.M{}, productFilter(catalog.ProductQuery{}))
	got := productFilter(catalog.ProductQuery{Category: "bags", FeaturedOnly: true, WithVariations: true})
	require.Equal(t, bson.M{
		"category":     "bags",
		"featured":     true,
		"variations.0": bson.M{"$exists": true},
	}, got)
}

func TestFindOptions(t *testing.T) {
	o := findOptions(catalog.ProductQuery{Skip: 10, Limit: 5})
	require.Equal(t, bson.D{{Key: "id", Value: 1}}, o.Sort)
	require.EqualValues(t, 10, *o.Skip)
	require.EqualValues(t, 5, *o.Limit)

	o = findOptions(catalog.ProductQuery{Sort: catalog.SortNewestFirst})
	require.Equal(t, bson.D{{Key: "createdAt", Value: -1}}, o.Sort)
	require.Nil(t, o.Skip)
	require.Nil(t, o.Limit)
}

func TestPatchSetOnlyTouchesGivenFields(t *testing.T) {
	require.Empty(t, patchSet(model.ProductPatch{}))

	name := "n"
	featured := false
	tags := []string{}
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	set := patchSet(model.ProductPatch{Name: &name, Featured: &featured, Tags: &tags, UpdatedAt: now})
	require.Equal(t, bson.M{"name": "n", "featured": false, "tags": []string{}, "updatedAt": now}, set)
	require.NotContains(t, set, "id")
	require.NotContains(t, set, "createdAt")
}

func rawOf(t *testing.T, v any) bson.RawValue {
	t.Helper()
	b, err := bson.Marshal(bson.M{"id": v})
	require.NoError(t, err)
	return bson.Raw(b).Lookup("id")
}

func TestRawKey(t *testing.T) {
	require.EqualValues(t, 7, rawKey(rawOf(t, int32(7))))
	require.EqualValues(t, 8, rawKey(rawOf(t, int64(8))))
	require.EqualValues(t, 9, rawKey(rawOf(t, 9.0)))
	require.EqualValues(t, 0, rawKey(rawOf(t, 9.5)))
	require.EqualValues(t, 0, rawKey(rawOf(t, nil)))
	require.EqualValues(t, 0, rawKey(rawOf(t, "12")))
	require.EqualValues(t, 0, rawKey(rawOf(t, int64(-4))))
	require.EqualValues(t, 0, rawKey(bson.RawValue{}))
}

func TestKeyWrites(t *testing.T) {
	oid := primitive.NewObjectID()
	models := keyWrites([]catalog.KeyAssignment{{ObjectID: oid, Key: 12}})
	require.Len(t, models, 1)
	m, ok := models[0].(*mongo.UpdateOneModel)
	require.True(t, ok)
	require.Equal(t, bson.M{"_id": oid}, m.Filter)
	require.Equal(t, bson.M{"$set": bson.M{"id": int64(12)}}, m.Update)
}
