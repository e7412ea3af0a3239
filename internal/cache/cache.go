// Package cache implements the TTL'd search result cache. Rows are a
// disposable projection over live federation calls, never the source
// of truth.
package cache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nutrisync/foodsearch/internal/food"
	"github.com/nutrisync/foodsearch/internal/hash/sha256"
)

// Cache wraps a CacheStore with hashing, TTL checks and a background
// lane for writes that must never sit on the request path.
type Cache struct {
	store  food.CacheStore
	clock  food.Clock
	ttl    time.Duration
	logger *zap.Logger
	writer *backgroundWriter
}

// New builds a Cache and starts its background writer.
func New(store food.CacheStore, clock food.Clock, ttl time.Duration, logger *zap.Logger) *Cache {
	return &Cache{
		store:  store,
		clock:  clock,
		ttl:    ttl,
		logger: logger,
		writer: newBackgroundWriter(logger),
	}
}

// Close drains and stops the background writer.
func (c *Cache) Close() {
	c.writer.close()
}

// Get looks up a query. Expired rows count as misses and are deleted
// off the request path; hits get a best-effort hit-count bump the same
// way.
func (c *Cache) Get(ctx context.Context, query string) (food.CachedSearch, bool) {
	key := sha256.QueryKey(query)
	entry, err := c.store.Get(ctx, key)
	if err != nil {
		return food.CachedSearch{}, false
	}
	if !entry.ExpiresAt.After(c.clock.Now()) {
		c.writer.submit("delete expired", func(ctx context.Context) error {
			return c.store.Delete(ctx, key)
		})
		return food.CachedSearch{}, false
	}
	c.writer.submit("increment hits", func(ctx context.Context) error {
		return c.store.IncrementHits(ctx, key)
	})
	return entry, true
}

// Put upserts a query's result synchronously with a fresh TTL.
func (c *Cache) Put(ctx context.Context, query string, products []food.NormalizedProduct, totalCount int, sources map[food.Source]food.SourceCount) error {
	now := c.clock.Now()
	entry := food.CachedSearch{
		QueryHash:  sha256.QueryKey(query),
		Query:      query,
		Products:   products,
		TotalCount: totalCount,
		Sources:    sources,
		CreatedAt:  now,
		ExpiresAt:  now.Add(c.ttl),
	}
	return c.store.Put(ctx, entry)
}

// PutAsync schedules a Put on the background lane. A write failure is
// logged and otherwise invisible to the caller.
func (c *Cache) PutAsync(query string, products []food.NormalizedProduct, totalCount int, sources map[food.Source]food.SourceCount) {
	c.writer.submit("put", func(ctx context.Context) error {
		return c.Put(ctx, query, products, totalCount, sources)
	})
}
