// Package store provides an in-memory catalog.Store used by tests and by
// the STORE_DRIVER=memory mode.
package store

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fairyhunter13/storefront-catalog-service/internal/catalog"
	"github.com/fairyhunter13/storefront-catalog-service/internal/model"
)

// Store keeps products and ads in insertion order behind a RWMutex.
// Inserts enforce key uniqueness; Put bypasses it to model corrupted data.
type Store struct {
	mu       sync.RWMutex
	products []model.Product
	ads      []model.Ad
}

var _ catalog.Store = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// Put appends products as-is, without key checks, assigning storage
// identities where missing.
func (s *Store) Put(ps ...model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range ps {
		if p.ObjectID.IsZero() {
			p.ObjectID = primitive.NewObjectID()
		}
		s.products = append(s.products, clone(p))
	}
}

func clone(p model.Product) model.Product {
	p.Images = slices.Clone(p.Images)
	p.Variations = slices.Clone(p.Variations)
	p.Tags = slices.Clone(p.Tags)
	p.Specifications = maps.Clone(p.Specifications)
	return p
}

func matches(p model.Product, q catalog.ProductQuery) bool {
	if q.Category != "" && p.Category != q.Category {
		return false
	}
	if q.FeaturedOnly && !p.Featured {
		return false
	}
	if q.WithVariations && len(p.Variations) == 0 {
		return false
	}
	return true
}

func (s *Store) Products(_ context.Context, q catalog.ProductQuery) ([]model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		if matches(p, q) {
			out = append(out, clone(p))
		}
	}
	switch q.Sort {
	case catalog.SortNewestFirst:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	}
	if q.Skip > 0 {
		if q.Skip >= int64(len(out)) {
			return []model.Product{}, nil
		}
		out = out[q.Skip:]
	}
	if q.Limit > 0 && q.Limit < int64(len(out)) {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *Store) CountProducts(_ context.Context, q catalog.ProductQuery) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, p := range s.products {
		if matches(p, q) {
			n++
		}
	}
	return n, nil
}

// indexOf returns the position of the first product with key, or -1.
func (s *Store) indexOf(key int64) int {
	for i, p := range s.products {
		if p.Key == key {
			return i
		}
	}
	return -1
}

func (s *Store) ProductByKey(_ context.Context, key int64) (model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(key)
	if i < 0 {
		return model.Product{}, catalog.ErrNotFound
	}
	return clone(s.products[i]), nil
}

func (s *Store) Categories(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	var out []string
	for _, p := range s.products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out, nil
}

func (s *Store) MaxProductKey(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var maxKey int64
	for _, p := range s.products {
		if p.Key > maxKey {
			maxKey = p.Key
		}
	}
	return maxKey, nil
}

func (s *Store) InsertProduct(_ context.Context, p *model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(p.Key) >= 0 {
		return fmt.Errorf("product %d: %w", p.Key, catalog.ErrDuplicateKey)
	}
	if p.ObjectID.IsZero() {
		p.ObjectID = primitive.NewObjectID()
	}
	s.products = append(s.products, clone(*p))
	return nil
}

func (s *Store) InsertProducts(_ context.Context, ps []model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch := make(map[int64]struct{}, len(ps))
	for _, p := range ps {
		if _, dup := batch[p.Key]; dup || s.indexOf(p.Key) >= 0 {
			return fmt.Errorf("product %d: %w", p.Key, catalog.ErrDuplicateKey)
		}
		batch[p.Key] = struct{}{}
	}
	for _, p := range ps {
		if p.ObjectID.IsZero() {
			p.ObjectID = primitive.NewObjectID()
		}
		s.products = append(s.products, clone(p))
	}
	return nil
}

func (s *Store) UpdateProduct(_ context.Context, key int64, patch model.ProductPatch) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(key)
	if i < 0 {
		return model.Product{}, catalog.ErrNotFound
	}
	p := s.products[i]
	patch.Apply(&p)
	s.products[i] = clone(p)
	return clone(p), nil
}

func (s *Store) DeleteProduct(_ context.Context, key int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(key)
	if i < 0 {
		return catalog.ErrNotFound
	}
	s.products = slices.Delete(s.products, i, i+1)
	return nil
}

func (s *Store) ProductKeys(_ context.Context) ([]catalog.KeyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]catalog.KeyRecord, 0, len(s.products))
	for _, p := range s.products {
		k := p.Key
		if k < 0 {
			k = 0
		}
		out = append(out, catalog.KeyRecord{ObjectID: p.ObjectID, Key: k})
	}
	return out, nil
}

func (s *Store) ReassignKeys(_ context.Context, as []catalog.KeyAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range as {
		for i := range s.products {
			if s.products[i].ObjectID == a.ObjectID {
				s.products[i].Key = a.Key
				break
			}
		}
	}
	return nil
}

// EnsureIndexes fails, like a unique index build would, when two products
// share a positive key.
func (s *Store) EnsureIndexes(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[int64]struct{}, len(s.products))
	for _, p := range s.products {
		if p.Key <= 0 {
			continue
		}
		if _, dup := seen[p.Key]; dup {
			return fmt.Errorf("unique index on id: key %d: %w", p.Key, catalog.ErrDuplicateKey)
		}
		seen[p.Key] = struct{}{}
	}
	return nil
}

func (s *Store) Ads(_ context.Context) ([]model.Ad, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Ad, len(s.ads))
	for i, a := range s.ads {
		out[len(s.ads)-1-i] = a
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) InsertAd(_ context.Context, a *model.Ad) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	s.ads = append(s.ads, *a)
	return nil
}

func (s *Store) DeleteAd(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.ads {
		if a.ID == id {
			s.ads = slices.Delete(s.ads, i, i+1)
			return nil
		}
	}
	return catalog.ErrNotFound
}
