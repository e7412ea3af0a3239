package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/nutrisync/foodsearch/internal/food"
)

// ProductStore persists the product catalog. It assumes a table schema
// like:
//
//	CREATE TABLE products (
//		id TEXT PRIMARY KEY,
//		source TEXT NOT NULL,
//		external_id TEXT NOT NULL,
//		name TEXT NOT NULL,
//		brand TEXT,
//		image_url TEXT,
//		nutrients JSONB NOT NULL,
//		serving_size DOUBLE PRECISION NOT NULL DEFAULT 0,
//		serving_unit TEXT NOT NULL DEFAULT '',
//		serving_text TEXT NOT NULL DEFAULT '',
//		popularity INT NOT NULL DEFAULT 0,
//		quality INT NOT NULL DEFAULT 0,
//		refreshed_at TIMESTAMPTZ NOT NULL
//	);
type ProductStore struct {
	pool Pool
}

// NewProductStore constructs a store over an existing pool.
func NewProductStore(pool Pool) *ProductStore {
	return &ProductStore{pool: pool}
}

// Upsert writes a product by its deterministic ID. On conflict every
// normalized field is overwritten except popularity.
func (s *ProductStore) Upsert(ctx context.Context, p food.NormalizedProduct) error {
	nutrientsJSON, err := json.Marshal(p.Nutrients)
	if err != nil {
		return fmt.Errorf("marshal nutrients: %w", err)
	}
	query := `
		INSERT INTO products (
			id, source, external_id, name, brand, image_url, nutrients,
			serving_size, serving_unit, serving_text, popularity, quality, refreshed_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			brand = EXCLUDED.brand,
			image_url = EXCLUDED.image_url,
			nutrients = EXCLUDED.nutrients,
			serving_size = EXCLUDED.serving_size,
			serving_unit = EXCLUDED.serving_unit,
			serving_text = EXCLUDED.serving_text,
			quality = EXCLUDED.quality,
			refreshed_at = EXCLUDED.refreshed_at;
	`
	_, err = s.pool.Exec(ctx, query,
		p.ID, p.Source, p.ExternalID, p.Name, p.Brand, p.ImageURL, nutrientsJSON,
		p.ServingSize, p.ServingUnit, p.ServingText, p.Popularity, p.Quality, p.RefreshedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}

const productColumns = `id, source, external_id, name, brand, image_url, nutrients,
	serving_size, serving_unit, serving_text, popularity, quality, refreshed_at`

// GetByID loads one product or returns food.ErrNotFound.
func (s *ProductStore) GetByID(ctx context.Context, id string) (food.NormalizedProduct, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1;`
	p, err := scanProduct(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return food.NormalizedProduct{}, fmt.Errorf("product %s: %w", id, food.ErrNotFound)
		}
		return food.NormalizedProduct{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// SearchByName runs a case-insensitive substring search over the
// catalog, best rows first.
func (s *ProductStore) SearchByName(ctx context.Context, q string, limit int) ([]food.NormalizedProduct, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY popularity DESC, quality DESC
		LIMIT $2;
	`
	rows, err := s.pool.Query(ctx, query, q, limit)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

// CountBySource counts catalog rows for one provider.
func (s *ProductStore) CountBySource(ctx context.Context, source food.Source) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE source = $1;`, source).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}

// ListStale returns rows with popularity strictly above the bound that
// were not refreshed since the cutoff.
func (s *ProductStore) ListStale(ctx context.Context, minPopularity int, cutoff time.Time, limit int) ([]food.NormalizedProduct, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE popularity > $1 AND refreshed_at < $2
		ORDER BY popularity DESC
		LIMIT $3;
	`
	rows, err := s.pool.Query(ctx, query, minPopularity, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("list stale products: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

// TouchRefreshed stamps a row's refresh time.
func (s *ProductStore) TouchRefreshed(ctx context.Context, id string, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `UPDATE products SET refreshed_at = $2 WHERE id = $1;`, id, at)
	if err != nil {
		return fmt.Errorf("touch product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %s: %w", id, food.ErrNotFound)
	}
	return nil
}

func scanProduct(row pgx.Row) (food.NormalizedProduct, error) {
	var p food.NormalizedProduct
	var nutrientsJSON []byte
	err := row.Scan(
		&p.ID, &p.Source, &p.ExternalID, &p.Name, &p.Brand, &p.ImageURL, &nutrientsJSON,
		&p.ServingSize, &p.ServingUnit, &p.ServingText, &p.Popularity, &p.Quality, &p.RefreshedAt,
	)
	if err != nil {
		return food.NormalizedProduct{}, err
	}
	if err := json.Unmarshal(nutrientsJSON, &p.Nutrients); err != nil {
		return food.NormalizedProduct{}, fmt.Errorf("unmarshal nutrients: %w", err)
	}
	return p, nil
}

func scanProducts(rows pgx.Rows) ([]food.NormalizedProduct, error) {
	var products []food.NormalizedProduct
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}
	return products, nil
}
