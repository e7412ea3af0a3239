package food

import (
	"context"
	"time"
)

// ProductStore persists the canonical product catalog.
type ProductStore interface {
	// Upsert writes a product by its deterministic ID. On conflict all
	// normalized fields are overwritten except popularity, which an
	// existing row keeps across re-scrapes.
	Upsert(ctx context.Context, product NormalizedProduct) error
	GetByID(ctx context.Context, id string) (NormalizedProduct, error)
	SearchByName(ctx context.Context, query string, limit int) ([]NormalizedProduct, error)
	CountBySource(ctx context.Context, source Source) (int, error)
	// ListStale returns popular rows not refreshed since the cutoff.
	ListStale(ctx context.Context, minPopularity int, cutoff time.Time, limit int) ([]NormalizedProduct, error)
	TouchRefreshed(ctx context.Context, id string, at time.Time) error
}

// JobStore is the durable scrape-run ledger.
type JobStore interface {
	Create(ctx context.Context, job ScrapeJob) error
	Update(ctx context.Context, job ScrapeJob) error
	Get(ctx context.Context, id string) (ScrapeJob, error)
	// LatestCompleted returns the most recently completed job for a
	// provider and job type, or ErrNotFound when none exists.
	LatestCompleted(ctx context.Context, provider Source, jobType JobType) (ScrapeJob, error)
}

// CacheStore holds the TTL'd search result projection.
type CacheStore interface {
	Get(ctx context.Context, queryHash string) (CachedSearch, error)
	Put(ctx context.Context, entry CachedSearch) error
	IncrementHits(ctx context.Context, queryHash string) error
	Delete(ctx context.Context, queryHash string) error
}

// DemandStore tracks queries worth crawling for.
type DemandStore interface {
	Record(ctx context.Context, query string, at time.Time) error
	TopUnattempted(ctx context.Context, limit int) ([]SearchDemand, error)
	MarkAttempted(ctx context.Context, query string, foundResults bool) error
}

// ConfigStore keeps per-provider sync state.
type ConfigStore interface {
	Get(ctx context.Context, provider Source) (ScrapeConfig, error)
	Upsert(ctx context.Context, cfg ScrapeConfig) error
}

// ProviderResult is one provider's normalized answer to a search.
type ProviderResult struct {
	Products []NormalizedProduct
	// Total is the provider's self-reported hit count, which may exceed
	// the number of returned items.
	Total int
}

// Provider is the adapter boundary for an upstream nutrition database.
type Provider interface {
	Source() Source
	Search(ctx context.Context, query string, limit int) (ProviderResult, error)
}

// BarcodeLookuper resolves a scanned code to a single product.
type BarcodeLookuper interface {
	LookupBarcode(ctx context.Context, code string) (NormalizedProduct, error)
}

// Translator converts a query to English, reporting the detected
// source language.
type Translator interface {
	Translate(ctx context.Context, text string) (translated string, detectedLanguage string, err error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces job IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
