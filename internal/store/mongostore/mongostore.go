// Package mongostore implements catalog.Store on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/fairyhunter13/storefront-catalog-service/internal/catalog"
	"github.com/fairyhunter13/storefront-catalog-service/internal/model"
)

const (
	productsCollection = "products"
	adsCollection      = "ads"
)

// Options configures the MongoDB connection.
type Options struct {
	URI                    string
	Database               string
	ConnectTimeout         time.Duration
	ServerSelectionTimeout time.Duration
}

// Store is a catalog.Store backed by the "products" and "ads" collections.
type Store struct {
	client   *mongo.Client
	products *mongo.Collection
	ads      *mongo.Collection
}

var _ catalog.Store = (*Store)(nil)

// Connect dials MongoDB and verifies the connection with a ping.
func Connect(ctx context.Context, o Options) (*Store, error) {
	opts := options.Client().
		ApplyURI(o.URI).
		SetConnectTimeout(o.ConnectTimeout).
		SetServerSelectionTimeout(o.ServerSelectionTimeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return New(client, o.Database), nil
}

// New wraps an already connected client.
func New(client *mongo.Client, database string) *Store {
	db := client.Database(database)
	return &Store{
		client:   client,
		products: db.Collection(productsCollection),
		ads:      db.Collection(adsCollection),
	}
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func productFilter(q catalog.ProductQuery) bson.M {
	f := bson.M{}
	if q.Category != "" {
		f["category"] = q.Category
	}
	if q.FeaturedOnly {
		f["featured"] = true
	}
	if q.WithVariations {
		f["variations.0"] = bson.M{"$exists": true}
	}
	return f
}

func findOptions(q catalog.ProductQuery) *options.FindOptions {
	o := options.Find()
	if q.Sort == catalog.SortNewestFirst {
		o.SetSort(bson.D{{Key: "createdAt", Value: -1}})
	} else {
		o.SetSort(bson.D{{Key: "id", Value: 1}})
	}
	if q.Skip > 0 {
		o.SetSkip(q.Skip)
	}
	if q.Limit > 0 {
		o.SetLimit(q.Limit)
	}
	return o
}

func (s *Store) Products(ctx context.Context, q catalog.ProductQuery) ([]model.Product, error) {
	cur, err := s.products.Find(ctx, productFilter(q), findOptions(q))
	if err != nil {
		return nil, err
	}
	out := []model.Product{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) CountProducts(ctx context.Context, q catalog.ProductQuery) (int64, error) {
	return s.products.CountDocuments(ctx, productFilter(q))
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return catalog.ErrNotFound
	}
	return err
}

func (s *Store) ProductByKey(ctx context.Context, key int64) (model.Product, error) {
	var p model.Product
	if err := s.products.FindOne(ctx, bson.M{"id": key}).Decode(&p); err != nil {
		return model.Product{}, notFound(err)
	}
	return p, nil
}

func (s *Store) Categories(ctx context.Context) ([]string, error) {
	vals, err := s.products.Distinct(ctx, "category", bson.M{})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if c, ok := v.(string); ok {
			out = append(out, c)
		}
	}
	return out, nil
}

type keyDoc struct {
	ID  primitive.ObjectID `bson:"_id"`
	Key bson.RawValue      `bson:"id"`
}

// rawKey reads a stored key written by any client: int32, int64 or a whole
// double. Anything else, including null and absent, is 0.
func rawKey(v bson.RawValue) int64 {
	var k int64
	switch v.Type {
	case bson.TypeInt32:
		k = int64(v.Int32())
	case bson.TypeInt64:
		k = v.Int64()
	case bson.TypeDouble:
		f := v.Double()
		if f != math.Trunc(f) || f >= math.MaxInt64 {
			return 0
		}
		k = int64(f)
	}
	if k < 0 {
		return 0
	}
	return k
}

func (s *Store) MaxProductKey(ctx context.Context) (int64, error) {
	opts := options.FindOne().
		SetSort(bson.D{{Key: "id", Value: -1}}).
		SetProjection(bson.M{"id": 1})
	var d keyDoc
	err := s.products.FindOne(ctx, bson.M{}, opts).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return rawKey(d.Key), nil
}

func (s *Store) InsertProduct(ctx context.Context, p *model.Product) error {
	res, err := s.products.InsertOne(ctx, p)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("product %d: %w", p.Key, catalog.ErrDuplicateKey)
		}
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ObjectID = oid
	}
	return nil
}

func (s *Store) InsertProducts(ctx context.Context, ps []model.Product) error {
	docs := make([]any, 0, len(ps))
	for _, p := range ps {
		docs = append(docs, p)
	}
	if _, err := s.products.InsertMany(ctx, docs); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("insert many: %w", catalog.ErrDuplicateKey)
		}
		return err
	}
	return nil
}

// patchSet renders a patch as a $set document.
func patchSet(pp model.ProductPatch) bson.M {
	set := bson.M{}
	if pp.Name != nil {
		set["name"] = *pp.Name
	}
	if pp.Description != nil {
		set["description"] = *pp.Description
	}
	if pp.Price != nil {
		set["price"] = *pp.Price
	}
	if pp.Category != nil {
		set["category"] = *pp.Category
	}
	if pp.Images != nil {
		set["images"] = *pp.Images
	}
	if pp.Specifications != nil {
		set["specifications"] = *pp.Specifications
	}
	if pp.Variations != nil {
		set["variations"] = *pp.Variations
	}
	if pp.Featured != nil {
		set["featured"] = *pp.Featured
	}
	if pp.Tags != nil {
		set["tags"] = *pp.Tags
	}
	if !pp.UpdatedAt.IsZero() {
		set["updatedAt"] = pp.UpdatedAt
	}
	return set
}

func (s *Store) UpdateProduct(ctx context.Context, key int64, patch model.ProductPatch) (model.Product, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p model.Product
	err := s.products.FindOneAndUpdate(ctx, bson.M{"id": key}, bson.M{"$set": patchSet(patch)}, opts).Decode(&p)
	if err != nil {
		return model.Product{}, notFound(err)
	}
	return p, nil
}

func (s *Store) DeleteProduct(ctx context.Context, key int64) error {
	res, err := s.products.DeleteOne(ctx, bson.M{"id": key})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func (s *Store) ProductKeys(ctx context.Context) ([]catalog.KeyRecord, error) {
	cur, err := s.products.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"_id": 1, "id": 1}))
	if err != nil {
		return nil, err
	}
	var docs []keyDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]catalog.KeyRecord, 0, len(docs))
	for _, d := range docs {
		out = append(out, catalog.KeyRecord{ObjectID: d.ID, Key: rawKey(d.Key)})
	}
	return out, nil
}

func keyWrites(as []catalog.KeyAssignment) []mongo.WriteModel {
	models := make([]mongo.WriteModel, 0, len(as))
	for _, a := range as {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": a.ObjectID}).
			SetUpdate(bson.M{"$set": bson.M{"id": a.Key}}))
	}
	return models
}

func (s *Store) ReassignKeys(ctx context.Context, as []catalog.KeyAssignment) error {
	if len(as) == 0 {
		return nil
	}
	_, err := s.products.BulkWrite(ctx, keyWrites(as), options.BulkWrite().SetOrdered(false))
	return err
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.products.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "category", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("product indexes: %w", err)
	}
	if _, err := s.ads.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "createdAt", Value: -1}}}); err != nil {
		return fmt.Errorf("ad indexes: %w", err)
	}
	return nil
}

func (s *Store) Ads(ctx context.Context) ([]model.Ad, error) {
	cur, err := s.ads.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	out := []model.Ad{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) InsertAd(ctx context.Context, a *model.Ad) error {
	res, err := s.ads.InsertOne(ctx, a)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		a.ID = oid
	}
	return nil
}

func (s *Store) DeleteAd(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.ads.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return catalog.ErrNotFound
	}
	return nil
}
