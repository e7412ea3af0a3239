// Package federation merges live results from both upstream providers
// into a single ranked answer, consulting the result cache first.
package federation

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nutrisync/foodsearch/internal/classify"
	"github.com/nutrisync/foodsearch/internal/food"
	"github.com/nutrisync/foodsearch/internal/metrics"
)

// ResultCache is the slice of the cache the engine needs.
type ResultCache interface {
	Get(ctx context.Context, query string) (food.CachedSearch, bool)
	PutAsync(query string, products []food.NormalizedProduct, totalCount int, sources map[food.Source]food.SourceCount)
}

// QueryNormalizer rewrites non-English queries before federation.
type QueryNormalizer interface {
	Normalize(ctx context.Context, query string) (string, *food.TranslationInfo)
}

// Deps carries everything the engine needs.
type Deps struct {
	ProviderA  food.Provider
	ProviderB  food.Provider
	Barcodes   food.BarcodeLookuper
	Cache      ResultCache
	Normalizer QueryNormalizer
	Demand     food.DemandStore
	Clock      food.Clock
	Logger     *zap.Logger

	DefaultPageSize int
	MaxPageSize     int
}

// Engine fans queries out to both providers and merges the answers.
// Provider failures degrade the result; they never fail the search.
type Engine struct {
	deps Deps
}

// New builds an Engine.
func New(deps Deps) *Engine {
	if deps.DefaultPageSize <= 0 {
		deps.DefaultPageSize = 20
	}
	if deps.MaxPageSize < deps.DefaultPageSize {
		deps.MaxPageSize = deps.DefaultPageSize
	}
	return &Engine{deps: deps}
}

// providerOutcome is one provider's contribution to a search.
type providerOutcome struct {
	source   food.Source
	products []food.NormalizedProduct
	total    int
	err      error
}

// FederatedSearch runs the full cache-then-fan-out search. Page 1 hits
// the cache first; misses query both providers concurrently and write
// the merged page back off the request path.
func (e *Engine) FederatedSearch(ctx context.Context, query string, page, pageSize int) food.SearchResult {
	page, pageSize = e.clampPaging(page, pageSize)

	searchText, translation := e.deps.Normalizer.Normalize(ctx, query)
	verdict := classify.Classify(searchText)
	metrics.ObserveSearch("federated", string(verdict.Category))

	if page == 1 {
		if entry, ok := e.deps.Cache.Get(ctx, searchText); ok {
			metrics.ObserveCacheLookup("hit")
			return e.resultFromCache(entry, page, pageSize, translation)
		}
		metrics.ObserveCacheLookup("miss")
	}

	// Each provider contributes at most half the page, rounded up.
	perProvider := (pageSize + 1) / 2
	outA, outB := e.fanOut(ctx, searchText, perProvider)

	sources := buildSources(outA, outB)
	bItems := outB.products
	if verdict.Category == food.CategoryWholeFood && !verdict.IsExplicitBrandSearch {
		bItems = dropBranded(bItems)
	}
	merged := mergeByCategory(verdict.Category, outA.products, bItems, pageSize)
	total := outA.total + outB.total

	result := food.SearchResult{
		Products:    merged,
		TotalCount:  total,
		Page:        page,
		PageSize:    pageSize,
		HasMore:     page*pageSize < total,
		Sources:     sources,
		Translation: translation,
	}

	if page == 1 {
		if len(merged) > 0 {
			e.deps.Cache.PutAsync(searchText, merged, total, sources)
		} else {
			e.recordDemand(searchText)
		}
	}
	return result
}

// FastSearch races both providers and answers with whichever resolves
// first. The slower source is reported as still pending.
func (e *Engine) FastSearch(ctx context.Context, query string, pageSize int) food.SearchResult {
	_, pageSize = e.clampPaging(1, pageSize)

	searchText, translation := e.deps.Normalizer.Normalize(ctx, query)
	verdict := classify.Classify(searchText)
	metrics.ObserveSearch("fast", string(verdict.Category))

	if entry, ok := e.deps.Cache.Get(ctx, searchText); ok {
		metrics.ObserveCacheLookup("hit")
		return e.resultFromCache(entry, 1, pageSize, translation)
	}
	metrics.ObserveCacheLookup("miss")

	outcomes := make(chan providerOutcome, 2)
	go func() { outcomes <- e.callProvider(ctx, e.deps.ProviderA, searchText, pageSize) }()
	go func() { outcomes <- e.callProvider(ctx, e.deps.ProviderB, searchText, pageSize) }()

	winner := <-outcomes
	sources := map[food.Source]food.SourceCount{}
	if winner.err != nil {
		// The first responder failed; wait for the other one.
		sources[winner.source] = food.SourceCount{Error: winner.err.Error()}
		winner = <-outcomes
		if winner.err != nil {
			sources[winner.source] = food.SourceCount{Error: winner.err.Error()}
			return food.SearchResult{
				Products:    []food.NormalizedProduct{},
				Page:        1,
				PageSize:    pageSize,
				Sources:     sources,
				Translation: translation,
			}
		}
	} else {
		sources[otherSource(winner.source, e.deps)] = food.SourceCount{Count: food.PendingCount}
	}
	sources[winner.source] = food.SourceCount{Count: winner.total}

	items := winner.products
	if winner.source == food.SourceProviderB &&
		verdict.Category == food.CategoryWholeFood && !verdict.IsExplicitBrandSearch {
		items = dropBranded(items)
	}
	if len(items) > pageSize {
		items = items[:pageSize]
	}

	return food.SearchResult{
		Products:    items,
		TotalCount:  winner.total,
		Page:        1,
		PageSize:    pageSize,
		HasMore:     pageSize < winner.total,
		Sources:     sources,
		Translation: translation,
	}
}

// LookupBarcode resolves a scanned code through the barcode-capable
// provider.
func (e *Engine) LookupBarcode(ctx context.Context, code string) (food.NormalizedProduct, error) {
	product, err := e.deps.Barcodes.LookupBarcode(ctx, code)
	if err != nil {
		metrics.ObserveProviderRequest(string(food.SourceProviderB), "error")
		return food.NormalizedProduct{}, err
	}
	metrics.ObserveProviderRequest(string(food.SourceProviderB), "ok")
	return product, nil
}

func (e *Engine) clampPaging(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = e.deps.DefaultPageSize
	}
	if pageSize > e.deps.MaxPageSize {
		pageSize = e.deps.MaxPageSize
	}
	return page, pageSize
}

func (e *Engine) fanOut(ctx context.Context, query string, limit int) (providerOutcome, providerOutcome) {
	chA := make(chan providerOutcome, 1)
	chB := make(chan providerOutcome, 1)
	go func() { chA <- e.callProvider(ctx, e.deps.ProviderA, query, limit) }()
	go func() { chB <- e.callProvider(ctx, e.deps.ProviderB, query, limit) }()
	return <-chA, <-chB
}

func (e *Engine) callProvider(ctx context.Context, p food.Provider, query string, limit int) providerOutcome {
	res, err := p.Search(ctx, query, limit)
	if err != nil {
		metrics.ObserveProviderRequest(string(p.Source()), "error")
		e.deps.Logger.Warn("provider search failed",
			zap.String("provider", string(p.Source())),
			zap.String("query", query),
			zap.Error(err),
		)
		return providerOutcome{source: p.Source(), err: err}
	}
	metrics.ObserveProviderRequest(string(p.Source()), "ok")
	return providerOutcome{source: p.Source(), products: res.Products, total: res.Total}
}

func (e *Engine) resultFromCache(entry food.CachedSearch, page, pageSize int, translation *food.TranslationInfo) food.SearchResult {
	return food.SearchResult{
		Products:    entry.Products,
		TotalCount:  entry.TotalCount,
		Page:        page,
		PageSize:    pageSize,
		HasMore:     page*pageSize < entry.TotalCount,
		Sources:     entry.Sources,
		Translation: translation,
		FromCache:   true,
	}
}

const demandRecordTimeout = 5 * time.Second

// recordDemand notes a query the catalog could not answer so background
// crawls can chase it. The write runs off the request path; failures
// are logged, never surfaced.
func (e *Engine) recordDemand(query string) {
	if e.deps.Demand == nil {
		return
	}
	now := e.deps.Clock.Now()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), demandRecordTimeout)
		defer cancel()
		if err := e.deps.Demand.Record(ctx, query, now); err != nil {
			e.deps.Logger.Warn("recording search demand failed",
				zap.String("query", query),
				zap.Error(err),
			)
		}
	}()
}

func buildSources(outA, outB providerOutcome) map[food.Source]food.SourceCount {
	sources := make(map[food.Source]food.SourceCount, 2)
	for _, out := range []providerOutcome{outA, outB} {
		if out.err != nil {
			sources[out.source] = food.SourceCount{Error: out.err.Error()}
			continue
		}
		sources[out.source] = food.SourceCount{Count: out.total}
	}
	return sources
}

func otherSource(s food.Source, deps Deps) food.Source {
	if s == deps.ProviderA.Source() {
		return deps.ProviderB.Source()
	}
	return deps.ProviderA.Source()
}

// dropBranded removes records carrying a brand name. Used on provider B
// results for whole-food queries.
func dropBranded(items []food.NormalizedProduct) []food.NormalizedProduct {
	kept := make([]food.NormalizedProduct, 0, len(items))
	for _, item := range items {
		if item.Brand != nil && *item.Brand != "" {
			continue
		}
		kept = append(kept, item)
	}
	return kept
}
