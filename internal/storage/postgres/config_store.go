package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/nutrisync/foodsearch/internal/food"
)

// ConfigStore persists per-provider sync state. It assumes a table
// schema like:
//
//	CREATE TABLE scrape_configs (
//		provider TEXT PRIMARY KEY,
//		last_incremental_sync TIMESTAMPTZ NOT NULL,
//		total_products INT NOT NULL DEFAULT 0
//	);
type ConfigStore struct {
	pool Pool
}

// NewConfigStore constructs a store over an existing pool.
func NewConfigStore(pool Pool) *ConfigStore {
	return &ConfigStore{pool: pool}
}

// Get loads one provider's sync row or returns food.ErrNotFound.
func (s *ConfigStore) Get(ctx context.Context, provider food.Source) (food.ScrapeConfig, error) {
	query := `
		SELECT provider, last_incremental_sync, total_products
		FROM scrape_configs
		WHERE provider = $1;
	`
	var cfg food.ScrapeConfig
	err := s.pool.QueryRow(ctx, query, provider).Scan(&cfg.Provider, &cfg.LastIncrementalSync, &cfg.TotalProducts)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return food.ScrapeConfig{}, fmt.Errorf("sync state for %s: %w", provider, food.ErrNotFound)
		}
		return food.ScrapeConfig{}, fmt.Errorf("get sync state: %w", err)
	}
	return cfg, nil
}

// Upsert writes a provider's sync row.
func (s *ConfigStore) Upsert(ctx context.Context, cfg food.ScrapeConfig) error {
	query := `
		INSERT INTO scrape_configs (provider, last_incremental_sync, total_products)
		VALUES ($1, $2, $3)
		ON CONFLICT (provider) DO UPDATE SET
			last_incremental_sync = EXCLUDED.last_incremental_sync,
			total_products = EXCLUDED.total_products;
	`
	if _, err := s.pool.Exec(ctx, query, cfg.Provider, cfg.LastIncrementalSync, cfg.TotalProducts); err != nil {
		return fmt.Errorf("upsert sync state: %w", err)
	}
	return nil
}
