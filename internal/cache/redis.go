// Package cache provides a Redis-backed read-through cache for catalog reads.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/storefront-catalog-service/internal/catalog"
	"github.com/fairyhunter13/storefront-catalog-service/internal/model"
)

const (
	productKeyPrefix = "catalog:product:"
	categoriesKey    = "catalog:categories"
	pingTimeout      = 5 * time.Second
)

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Redis implements catalog.Cache. Entries are JSON documents with a fixed TTL.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

var _ catalog.Cache = (*Redis)(nil)

// Connect creates a client and checks it with a ping.
func Connect(ctx context.Context, o Options) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     o.Addr,
		Password: o.Password,
		DB:       o.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", o.Addr, err)
	}
	return New(client, o.TTL), nil
}

// New wraps an existing client.
func New(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Close() error { return r.client.Close() }

func productKey(key int64) string {
	return productKeyPrefix + strconv.FormatInt(key, 10)
}

func (r *Redis) get(ctx context.Context, key string, v any) (bool, error) {
	b, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (r *Redis) set(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return r.client.Set(ctx, key, b, r.ttl).Err()
}

func (r *Redis) Product(ctx context.Context, key int64) (model.Product, bool, error) {
	var p model.Product
	ok, err := r.get(ctx, productKey(key), &p)
	return p, ok, err
}

func (r *Redis) StoreProduct(ctx context.Context, p model.Product) error {
	return r.set(ctx, productKey(p.Key), p)
}

func (r *Redis) Categories(ctx context.Context) ([]string, bool, error) {
	var cats []string
	ok, err := r.get(ctx, categoriesKey, &cats)
	return cats, ok, err
}

func (r *Redis) StoreCategories(ctx context.Context, cats []string) error {
	return r.set(ctx, categoriesKey, cats)
}

// Invalidate deletes the product entries for keys and the category list.
func (r *Redis) Invalidate(ctx context.Context, keys ...int64) error {
	return r.client.Del(ctx, invalidationKeys(keys)...).Err()
}

func invalidationKeys(keys []int64) []string {
	out := make([]string, 0, len(keys)+1)
	out = append(out, categoriesKey)
	for _, k := range keys {
		out = append(out, productKey(k))
	}
	return out
}
