// Package scraper walks provider catalogs page by page, normalizing
// and upserting products under a per-provider rate limit.
package scraper

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/nutrisync/foodsearch/internal/food"
	"github.com/nutrisync/foodsearch/internal/metrics"
	"github.com/nutrisync/foodsearch/internal/provider/providera"
	"github.com/nutrisync/foodsearch/internal/provider/providerb"
)

// PageResult reports the outcome of one scraped page.
type PageResult struct {
	Processed  int
	Upserted   int
	Skipped    int
	Errors     int
	NextCursor string
	// Exhausted is set when the provider returned an empty page,
	// meaning the catalog walk is done.
	Exhausted bool
}

// Scraper walks one provider's catalog. Implementations do not track
// job state; the Runner owns the ledger.
type Scraper interface {
	Provider() food.Source
	// ScrapeIncremental fetches and stores the page at cursor. An empty
	// cursor starts from the beginning. On a fetch failure the returned
	// PageResult still carries the cursor past the failed page.
	ScrapeIncremental(ctx context.Context, cursor string) (PageResult, error)
	// ScrapeByQuery fetches and stores one page of search results for a
	// demand query.
	ScrapeByQuery(ctx context.Context, query string) (PageResult, error)
}

// ListFunc fetches one page of a provider's bulk catalog. Pages are
// numbered from 1.
type ListFunc func(ctx context.Context, page, pageSize int) ([]food.NormalizedProduct, error)

// SearchFunc fetches search results for a demand query.
type SearchFunc func(ctx context.Context, query string, limit int) ([]food.NormalizedProduct, error)

// Catalog is the common catalog-walking scraper. Both providers expose
// the same page-numbered listing shape, so one implementation serves
// both behind ListFunc/SearchFunc.
type Catalog struct {
	source   food.Source
	list     ListFunc
	search   SearchFunc
	store    food.ProductStore
	limiter  *rate.Limiter
	clock    food.Clock
	logger   *zap.Logger
	pageSize int
}

// CatalogDeps carries the shared collaborators for a Catalog.
type CatalogDeps struct {
	Store    food.ProductStore
	Clock    food.Clock
	Logger   *zap.Logger
	PageSize int
	// MinDelay spaces outbound requests; one request per MinDelay with
	// no burst allowance.
	MinDelay time.Duration
}

// NewCatalog builds a scraper from raw fetch functions. Prefer the
// provider-specific constructors outside of tests.
func NewCatalog(source food.Source, list ListFunc, search SearchFunc, deps CatalogDeps) *Catalog {
	if deps.PageSize <= 0 {
		deps.PageSize = 50
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if deps.MinDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(deps.MinDelay), 1)
	}
	return &Catalog{
		source:   source,
		list:     list,
		search:   search,
		store:    deps.Store,
		limiter:  limiter,
		clock:    deps.Clock,
		logger:   deps.Logger,
		pageSize: deps.PageSize,
	}
}

// NewProviderA builds the provider A catalog scraper.
func NewProviderA(client *providera.Client, deps CatalogDeps) *Catalog {
	search := func(ctx context.Context, query string, limit int) ([]food.NormalizedProduct, error) {
		res, err := client.Search(ctx, query, limit)
		if err != nil {
			return nil, err
		}
		return res.Products, nil
	}
	return NewCatalog(food.SourceProviderA, client.ListFoods, search, deps)
}

// NewProviderB builds the provider B catalog scraper.
func NewProviderB(client *providerb.Client, deps CatalogDeps) *Catalog {
	search := func(ctx context.Context, query string, limit int) ([]food.NormalizedProduct, error) {
		res, err := client.Search(ctx, query, 1, limit)
		if err != nil {
			return nil, err
		}
		return res.Products, nil
	}
	return NewCatalog(food.SourceProviderB, client.ListProducts, search, deps)
}

// Provider identifies the scraped source.
func (c *Catalog) Provider() food.Source {
	return c.source
}

// ScrapeIncremental fetches and stores the catalog page at cursor.
func (c *Catalog) ScrapeIncremental(ctx context.Context, cursor string) (PageResult, error) {
	page := pageFromCursor(cursor)

	if err := c.waitTurn(ctx); err != nil {
		return PageResult{}, err
	}
	items, err := c.list(ctx, page, c.pageSize)
	if err != nil {
		metrics.ObserveScrapePage(string(c.source), "error")
		// A failed page is skipped for this run; hand back the cursor
		// past it so the walk keeps moving.
		return PageResult{NextCursor: strconv.Itoa(page + 1)}, err
	}
	metrics.ObserveScrapePage(string(c.source), "ok")

	if len(items) == 0 {
		return PageResult{NextCursor: cursor, Exhausted: true}, nil
	}

	result := c.storePage(ctx, items)
	result.NextCursor = strconv.Itoa(page + 1)
	return result, nil
}

// ScrapeByQuery fetches and stores one page of search results.
func (c *Catalog) ScrapeByQuery(ctx context.Context, query string) (PageResult, error) {
	if err := c.waitTurn(ctx); err != nil {
		return PageResult{}, err
	}
	items, err := c.search(ctx, query, c.pageSize)
	if err != nil {
		metrics.ObserveScrapePage(string(c.source), "error")
		return PageResult{}, err
	}
	metrics.ObserveScrapePage(string(c.source), "ok")

	result := c.storePage(ctx, items)
	result.Exhausted = true
	return result, nil
}

// waitTurn blocks until the rate limiter allows the next request.
func (c *Catalog) waitTurn(ctx context.Context) error {
	start := c.clock.Now()
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	metrics.ObserveRateLimitDelay(string(c.source), c.clock.Now().Sub(start))
	return nil
}

// storePage upserts one page of normalized items. Items without a name
// or resolved energy are skipped; individual store failures are
// counted, never fatal.
func (c *Catalog) storePage(ctx context.Context, items []food.NormalizedProduct) PageResult {
	result := PageResult{Processed: len(items)}
	now := c.clock.Now()
	for _, item := range items {
		if !food.HasValidNutrition(item) {
			result.Skipped++
			continue
		}
		item.Quality = food.QualityScore(item)
		item.RefreshedAt = now
		if err := c.store.Upsert(ctx, item); err != nil {
			result.Errors++
			c.logger.Warn("product upsert failed",
				zap.String("provider", string(c.source)),
				zap.String("id", item.ID),
				zap.Error(err),
			)
			continue
		}
		result.Upserted++
	}
	metrics.ObserveScrapeProducts(string(c.source), "upserted", result.Upserted)
	metrics.ObserveScrapeProducts(string(c.source), "skipped", result.Skipped)
	metrics.ObserveScrapeProducts(string(c.source), "error", result.Errors)
	return result
}

// pageFromCursor parses a page-number cursor; anything unparseable
// starts the walk over at page 1.
func pageFromCursor(cursor string) int {
	if cursor == "" {
		return 1
	}
	page, err := strconv.Atoi(cursor)
	if err != nil || page < 1 {
		return 1
	}
	return page
}
