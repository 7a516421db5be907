// Package catalog implements the product catalog and ad rotation use cases
// on top of a pluggable document store.
package catalog

import (
	"context"
	"time"

	"github.com/fairyhunter13/storefront-catalog-service/internal/model"
	"github.com/fairyhunter13/storefront-catalog-service/internal/obs"
)

// Service exposes catalog operations. A Service built with a nil Store is
// detached: every data operation fails with ErrStoreUnavailable.
type Service struct {
	store  Store
	cache  Cache
	events EventSink
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithCache enables read-through caching of products and categories.
func WithCache(c Cache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithEvents routes product lifecycle events to sink.
func WithEvents(sink EventSink) Option {
	return func(s *Service) {
		if sink != nil {
			s.events = sink
		}
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service over st. Pass a nil st to run detached.
func New(st Store, opts ...Option) *Service {
	s := &Service{store: st, cache: nopCache{}, events: nopSink{}, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Connected reports whether a store is attached.
func (s *Service) Connected() bool { return s.store != nil }

func (s *Service) ready() error {
	if s.store == nil {
		return ErrStoreUnavailable
	}
	return nil
}

// timestamp is the current time at the precision the document store keeps.
func (s *Service) timestamp() time.Time { return s.now().UTC().Truncate(time.Millisecond) }

func (s *Service) emit(typ string, p model.Product) {
	ev := model.ProductEvent{Type: typ, ProductKey: p.Key, Name: p.Name, OccurredAt: s.timestamp()}
	if !s.events.Emit(ev) {
		obs.Logger.Warn("product_event_dropped", "type", typ, "product_id", p.Key)
	}
}

func (s *Service) invalidate(ctx context.Context, keys ...int64) {
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		obs.Logger.Warn("cache_invalidate_failed", "error", err, "keys", keys)
	}
}
