// Package food defines core types shared across subsystems.
package food

import "time"

// Source identifies where a product record originated.
type Source string

// Source values persisted on product rows.
const (
	SourceProviderA Source = "providera"
	SourceProviderB Source = "providerb"
	SourceManual    Source = "manual"
)

// QueryCategory is the classifier's verdict for a search query.
type QueryCategory string

// Query categories driving merge order and brand filtering.
const (
	CategoryWholeFood QueryCategory = "whole_food"
	CategoryBranded   QueryCategory = "branded"
	CategoryUnknown   QueryCategory = "unknown"
)

// Nutrients holds the per-100g nutrient profile. Values are never
// negative; zero means unknown.
type Nutrients struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
	Sugar    float64 `json:"sugar"`
	Sodium   float64 `json:"sodium"`
}

// NormalizedProduct is the common shape every provider payload is
// reduced to before merging or storage.
type NormalizedProduct struct {
	ID          string    `json:"id"`
	Source      Source    `json:"source"`
	ExternalID  string    `json:"external_id"`
	Name        string    `json:"name"`
	Brand       *string   `json:"brand,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
	Nutrients   Nutrients `json:"nutrients"`
	ServingSize float64   `json:"serving_size,omitempty"`
	ServingUnit string    `json:"serving_unit,omitempty"`
	ServingText string    `json:"serving_text,omitempty"`
	Popularity  int       `json:"popularity"`
	Quality     int       `json:"quality"`
	RefreshedAt time.Time `json:"refreshed_at,omitempty"`
}

// ProductID builds the deterministic identity for a source record so
// that re-upserting the same upstream item is always a no-op insert.
func ProductID(source Source, externalID string) string {
	return string(source) + "_" + externalID
}

// PendingCount marks a source slot whose provider was still in flight
// when a fast search returned.
const PendingCount = -1

// SourceCount reports how one provider fared for a single query.
type SourceCount struct {
	Count int    `json:"count"`
	Error string `json:"error,omitempty"`
}

// TranslationInfo records how a non-English query was rewritten.
type TranslationInfo struct {
	OriginalQuery    string `json:"original_query"`
	TranslatedQuery  string `json:"translated_query"`
	DetectedLanguage string `json:"detected_language"`
	FromCache        bool   `json:"from_cache"`
}

// SearchResult is the merged answer for one federated query.
type SearchResult struct {
	Products    []NormalizedProduct    `json:"products"`
	TotalCount  int                    `json:"total_count"`
	Page        int                    `json:"page"`
	PageSize    int                    `json:"page_size"`
	HasMore     bool                   `json:"has_more"`
	Sources     map[Source]SourceCount `json:"sources"`
	Translation *TranslationInfo       `json:"translation,omitempty"`
	FromCache   bool                   `json:"from_cache"`
}

// CachedSearch is the payload stored per query hash. The cache row is
// derived state and may be discarded at any time.
type CachedSearch struct {
	QueryHash  string                 `json:"query_hash"`
	Query      string                 `json:"query"`
	Products   []NormalizedProduct    `json:"products"`
	TotalCount int                    `json:"total_count"`
	Sources    map[Source]SourceCount `json:"sources"`
	CreatedAt  time.Time              `json:"created_at"`
	ExpiresAt  time.Time              `json:"expires_at"`
	HitCount   int                    `json:"hit_count"`
}

// JobType distinguishes scheduled catalog sweeps from demand-driven runs.
type JobType string

// Job types recorded on the ledger.
const (
	JobTypeIncremental JobType = "incremental"
	JobTypeDemand      JobType = "demand"
)

// JobStatus represents the lifecycle state of a scrape job.
type JobStatus string

// Job status values persisted in the job ledger.
const (
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// JobCounters tracks per-run progress stats.
type JobCounters struct {
	ProductsScraped int `json:"products_scraped"`
	ProductsUpdated int `json:"products_updated"`
	ProductsSkipped int `json:"products_skipped"`
	ErrorCount      int `json:"error_count"`
}

// ScrapeJob is one row of the crawl ledger. It is created running,
// mutated per page, and transitions exactly once to completed or
// failed.
type ScrapeJob struct {
	ID          string      `json:"id"`
	Provider    Source      `json:"provider"`
	Type        JobType     `json:"type"`
	Status      JobStatus   `json:"status"`
	StartedAt   time.Time   `json:"started_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
	LastCursor  string      `json:"last_cursor,omitempty"`
	Counters    JobCounters `json:"counters"`
	LastError   string      `json:"last_error,omitempty"`
}

// ScrapeConfig keeps one row of sync state per provider.
type ScrapeConfig struct {
	Provider            Source    `json:"provider"`
	LastIncrementalSync time.Time `json:"last_incremental_sync"`
	TotalProducts       int       `json:"total_products"`
}

// SearchDemand records a query users keep issuing that the catalog
// cannot answer well, so background crawls can chase it.
type SearchDemand struct {
	Query              string    `json:"query"`
	HitCount           int       `json:"hit_count"`
	ScrapeAttempted    bool      `json:"scrape_attempted"`
	ScrapeFoundResults bool      `json:"scrape_found_results"`
	LastSeenAt         time.Time `json:"last_seen_at"`
}
