package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nutrisync/foodsearch/internal/food"
)

// DemandStore persists the demand queue. It assumes a table schema
// like:
//
//	CREATE TABLE search_demand (
//		query TEXT PRIMARY KEY,
//		hit_count INT NOT NULL DEFAULT 1,
//		scrape_attempted BOOLEAN NOT NULL DEFAULT FALSE,
//		scrape_found_results BOOLEAN NOT NULL DEFAULT FALSE,
//		last_seen_at TIMESTAMPTZ NOT NULL
//	);
type DemandStore struct {
	pool Pool
}

// NewDemandStore constructs a store over an existing pool.
func NewDemandStore(pool Pool) *DemandStore {
	return &DemandStore{pool: pool}
}

// Record counts one unanswered search for a query. Keys are lowercased
// so casing variants share a row.
func (s *DemandStore) Record(ctx context.Context, query string, at time.Time) error {
	normalized := strings.ToLower(strings.TrimSpace(query))
	if normalized == "" {
		return nil
	}
	stmt := `
		INSERT INTO search_demand (query, hit_count, last_seen_at)
		VALUES ($1, 1, $2)
		ON CONFLICT (query) DO UPDATE SET
			hit_count = search_demand.hit_count + 1,
			last_seen_at = EXCLUDED.last_seen_at;
	`
	if _, err := s.pool.Exec(ctx, stmt, normalized, at); err != nil {
		return fmt.Errorf("record demand: %w", err)
	}
	return nil
}

// TopUnattempted returns the most-wanted queries no crawl has chased
// yet.
func (s *DemandStore) TopUnattempted(ctx context.Context, limit int) ([]food.SearchDemand, error) {
	stmt := `
		SELECT query, hit_count, scrape_attempted, scrape_found_results, last_seen_at
		FROM search_demand
		WHERE NOT scrape_attempted
		ORDER BY hit_count DESC
		LIMIT $1;
	`
	rows, err := s.pool.Query(ctx, stmt, limit)
	if err != nil {
		return nil, fmt.Errorf("list demand: %w", err)
	}
	defer rows.Close()

	var wanted []food.SearchDemand
	for rows.Next() {
		var d food.SearchDemand
		if err := rows.Scan(&d.Query, &d.HitCount, &d.ScrapeAttempted, &d.ScrapeFoundResults, &d.LastSeenAt); err != nil {
			return nil, fmt.Errorf("scan demand row: %w", err)
		}
		wanted = append(wanted, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate demand rows: %w", err)
	}
	return wanted, nil
}

// MarkAttempted records a crawl attempt and whether it found anything.
func (s *DemandStore) MarkAttempted(ctx context.Context, query string, foundResults bool) error {
	normalized := strings.ToLower(strings.TrimSpace(query))
	stmt := `
		UPDATE search_demand
		SET scrape_attempted = TRUE, scrape_found_results = $2
		WHERE query = $1;
	`
	if _, err := s.pool.Exec(ctx, stmt, normalized, foundResults); err != nil {
		return fmt.Errorf("mark demand attempted: %w", err)
	}
	return nil
}
