package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/nutrisync/foodsearch/internal/food"
)

// CacheStore persists the search result cache. It assumes a table
// schema like:
//
//	CREATE TABLE search_cache (
//		query_hash TEXT PRIMARY KEY,
//		query TEXT NOT NULL,
//		products JSONB NOT NULL,
//		total_count INT NOT NULL,
//		sources JSONB NOT NULL,
//		created_at TIMESTAMPTZ NOT NULL,
//		expires_at TIMESTAMPTZ NOT NULL,
//		hit_count INT NOT NULL DEFAULT 0
//	);
type CacheStore struct {
	pool Pool
}

// NewCacheStore constructs a store over an existing pool.
func NewCacheStore(pool Pool) *CacheStore {
	return &CacheStore{pool: pool}
}

// Get loads one cache row or returns food.ErrNotFound. TTL checks are
// the caller's job.
func (s *CacheStore) Get(ctx context.Context, queryHash string) (food.CachedSearch, error) {
	query := `
		SELECT query_hash, query, products, total_count, sources, created_at, expires_at, hit_count
		FROM search_cache
		WHERE query_hash = $1;
	`
	var entry food.CachedSearch
	var productsJSON, sourcesJSON []byte
	err := s.pool.QueryRow(ctx, query, queryHash).Scan(
		&entry.QueryHash, &entry.Query, &productsJSON, &entry.TotalCount,
		&sourcesJSON, &entry.CreatedAt, &entry.ExpiresAt, &entry.HitCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return food.CachedSearch{}, fmt.Errorf("cache row %s: %w", queryHash, food.ErrNotFound)
		}
		return food.CachedSearch{}, fmt.Errorf("get cache row: %w", err)
	}
	if err := json.Unmarshal(productsJSON, &entry.Products); err != nil {
		return food.CachedSearch{}, fmt.Errorf("unmarshal cached products: %w", err)
	}
	if err := json.Unmarshal(sourcesJSON, &entry.Sources); err != nil {
		return food.CachedSearch{}, fmt.Errorf("unmarshal cached sources: %w", err)
	}
	return entry, nil
}

// Put upserts a cache row. An update keeps the row's creation time,
// refreshes its expiry and bumps its hit count.
func (s *CacheStore) Put(ctx context.Context, entry food.CachedSearch) error {
	productsJSON, err := json.Marshal(entry.Products)
	if err != nil {
		return fmt.Errorf("marshal cached products: %w", err)
	}
	sourcesJSON, err := json.Marshal(entry.Sources)
	if err != nil {
		return fmt.Errorf("marshal cached sources: %w", err)
	}
	query := `
		INSERT INTO search_cache (query_hash, query, products, total_count, sources, created_at, expires_at, hit_count)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (query_hash) DO UPDATE SET
			products = EXCLUDED.products,
			total_count = EXCLUDED.total_count,
			sources = EXCLUDED.sources,
			expires_at = EXCLUDED.expires_at,
			hit_count = search_cache.hit_count + 1;
	`
	_, err = s.pool.Exec(ctx, query,
		entry.QueryHash, entry.Query, productsJSON, entry.TotalCount,
		sourcesJSON, entry.CreatedAt, entry.ExpiresAt, entry.HitCount,
	)
	if err != nil {
		return fmt.Errorf("put cache row: %w", err)
	}
	return nil
}

// IncrementHits bumps a row's hit counter.
func (s *CacheStore) IncrementHits(ctx context.Context, queryHash string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE search_cache SET hit_count = hit_count + 1 WHERE query_hash = $1;`, queryHash)
	if err != nil {
		return fmt.Errorf("increment cache hits: %w", err)
	}
	return nil
}

// Delete removes a row. Deleting a missing row is not an error.
func (s *CacheStore) Delete(ctx context.Context, queryHash string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM search_cache WHERE query_hash = $1;`, queryHash)
	if err != nil {
		return fmt.Errorf("delete cache row: %w", err)
	}
	return nil
}
