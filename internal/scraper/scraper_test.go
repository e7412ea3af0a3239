package scraper

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nutrisync/foodsearch/internal/food"
	"github.com/nutrisync/foodsearch/internal/storage/memory"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (s *seqIDs) NewID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("job-%d", s.n), nil
}

func validItem(source food.Source, externalID string) food.NormalizedProduct {
	return food.NormalizedProduct{
		ID:         food.ProductID(source, externalID),
		Source:     source,
		ExternalID: externalID,
		Name:       "Item " + externalID,
		Nutrients:  food.Nutrients{Calories: 100},
	}
}

func testDeps(store food.ProductStore) CatalogDeps {
	return CatalogDeps{
		Store:    store,
		Clock:    &fixedClock{now: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)},
		Logger:   zap.NewNop(),
		PageSize: 2,
	}
}

func newTestRunner(jobs food.JobStore, configs food.ConfigStore, products food.ProductStore, opts RunnerDeps) *Runner {
	opts.Jobs = jobs
	opts.Configs = configs
	opts.Products = products
	opts.IDs = &seqIDs{}
	opts.Clock = &fixedClock{now: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)}
	opts.Logger = zap.NewNop()
	return NewRunner(opts)
}

func TestCatalogScrapePageSkipsInvalidItems(t *testing.T) {
	t.Parallel()

	store := memory.NewProductStore()
	list := func(ctx context.Context, page, pageSize int) ([]food.NormalizedProduct, error) {
		return []food.NormalizedProduct{
			validItem(food.SourceProviderA, "1"),
			{ID: "providera_2", Source: food.SourceProviderA, ExternalID: "2", Name: "No energy"},
			validItem(food.SourceProviderA, "3"),
		}, nil
	}
	c := NewCatalog(food.SourceProviderA, list, nil, testDeps(store))

	result, err := c.ScrapeIncremental(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, 3, result.Processed)
	require.Equal(t, 2, result.Upserted)
	require.Equal(t, 1, result.Skipped)
	require.Equal(t, "2", result.NextCursor)
	require.False(t, result.Exhausted)

	count, err := store.CountBySource(context.Background(), food.SourceProviderA)
	require.NoError(t, err)
	require.Equal(t, 2, count, "invalid items must not reach the catalog")
}

func TestCatalogScrapeEmptyPageIsExhausted(t *testing.T) {
	t.Parallel()

	list := func(ctx context.Context, page, pageSize int) ([]food.NormalizedProduct, error) {
		return nil, nil
	}
	c := NewCatalog(food.SourceProviderA, list, nil, testDeps(memory.NewProductStore()))

	result, err := c.ScrapeIncremental(context.Background(), "7")
	require.NoError(t, err)
	require.True(t, result.Exhausted)
	require.Equal(t, "7", result.NextCursor, "an exhausted walk keeps its cursor for the next run")
}

func TestCatalogScrapeSetsQualityAndRefreshTime(t *testing.T) {
	t.Parallel()

	store := memory.NewProductStore()
	item := validItem(food.SourceProviderB, "9")
	item.Nutrients.Protein = 10
	list := func(ctx context.Context, page, pageSize int) ([]food.NormalizedProduct, error) {
		return []food.NormalizedProduct{item}, nil
	}
	deps := testDeps(store)
	c := NewCatalog(food.SourceProviderB, list, nil, deps)

	_, err := c.ScrapeIncremental(context.Background(), "")
	require.NoError(t, err)

	got, err := store.GetByID(context.Background(), "providerb_9")
	require.NoError(t, err)
	require.Equal(t, food.QualityScore(item), got.Quality)
	require.Equal(t, deps.Clock.Now(), got.RefreshedAt)
}

func TestRunnerIncrementalSkipsFailedPageForTheRun(t *testing.T) {
	t.Parallel()

	store := memory.NewProductStore()
	var mu sync.Mutex
	page2Calls := 0
	list := func(ctx context.Context, page, pageSize int) ([]food.NormalizedProduct, error) {
		mu.Lock()
		defer mu.Unlock()
		switch page {
		case 1, 3:
			a := fmt.Sprintf("%d-a", page)
			b := fmt.Sprintf("%d-b", page)
			return []food.NormalizedProduct{validItem(food.SourceProviderA, a), validItem(food.SourceProviderA, b)}, nil
		case 2:
			// Would succeed on a second call; the run must not make one.
			page2Calls++
			if page2Calls == 1 {
				return nil, food.ErrUpstreamUnavailable
			}
			return []food.NormalizedProduct{validItem(food.SourceProviderA, "2-a"), validItem(food.SourceProviderA, "2-b")}, nil
		default:
			return nil, nil
		}
	}
	c := NewCatalog(food.SourceProviderA, list, nil, testDeps(store))
	jobs := memory.NewJobStore()
	runner := newTestRunner(jobs, memory.NewConfigStore(), store, RunnerDeps{})

	job, err := runner.RunIncremental(context.Background(), c)
	require.NoError(t, err)
	require.Equal(t, food.JobStatusCompleted, job.Status, "a transient page failure must not fail the run")
	require.Equal(t, 1, job.Counters.ErrorCount)
	require.Equal(t, 4, job.Counters.ProductsScraped, "only pages 1 and 3 contribute")
	require.Equal(t, 4, job.Counters.ProductsUpdated)
	require.Equal(t, "4", job.LastCursor)
	require.NotNil(t, job.CompletedAt)

	mu.Lock()
	require.Equal(t, 1, page2Calls, "the failed page is not re-fetched within the run")
	mu.Unlock()
	_, err = store.GetByID(context.Background(), "providera_2-a")
	require.ErrorIs(t, err, food.ErrNotFound, "items from the failed page must not reach the catalog")

	stored, err := jobs.Get(context.Background(), job.ID)
	require.NoError(t, err)
	require.Equal(t, food.JobStatusCompleted, stored.Status)
}

func TestRunnerResumesFromLastCompletedCursor(t *testing.T) {
	t.Parallel()

	jobs := memory.NewJobStore()
	done := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, jobs.Create(context.Background(), food.ScrapeJob{
		ID:          "previous",
		Provider:    food.SourceProviderA,
		Type:        food.JobTypeIncremental,
		Status:      food.JobStatusCompleted,
		CompletedAt: &done,
		LastCursor:  "5",
	}))

	var mu sync.Mutex
	var requestedPages []int
	list := func(ctx context.Context, page, pageSize int) ([]food.NormalizedProduct, error) {
		mu.Lock()
		requestedPages = append(requestedPages, page)
		mu.Unlock()
		return nil, nil
	}
	store := memory.NewProductStore()
	c := NewCatalog(food.SourceProviderA, list, nil, testDeps(store))
	runner := newTestRunner(jobs, memory.NewConfigStore(), store, RunnerDeps{})

	_, err := runner.RunIncremental(context.Background(), c)
	require.NoError(t, err)
	require.Equal(t, []int{5}, requestedPages)
}

func TestRunnerErrorStreakStopsRunAsCompleted(t *testing.T) {
	t.Parallel()

	list := func(ctx context.Context, page, pageSize int) ([]food.NormalizedProduct, error) {
		return nil, food.ErrUpstreamUnavailable
	}
	store := memory.NewProductStore()
	c := NewCatalog(food.SourceProviderA, list, nil, testDeps(store))
	runner := newTestRunner(memory.NewJobStore(), memory.NewConfigStore(), store, RunnerDeps{
		MaxConsecutiveErrors: 3,
	})

	job, err := runner.RunIncremental(context.Background(), c)
	require.NoError(t, err, "an error streak is a soft stop, not a failure")
	require.Equal(t, food.JobStatusCompleted, job.Status)
	require.Equal(t, 4, job.Counters.ErrorCount, "the run stops once the streak exceeds the bound")
}

func TestRunnerBoundsProductsPerRun(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	serial := 0
	list := func(ctx context.Context, page, pageSize int) ([]food.NormalizedProduct, error) {
		mu.Lock()
		defer mu.Unlock()
		serial += 2
		return []food.NormalizedProduct{
			validItem(food.SourceProviderB, fmt.Sprintf("%d", serial)),
			validItem(food.SourceProviderB, fmt.Sprintf("%d", serial+1)),
		}, nil
	}
	store := memory.NewProductStore()
	c := NewCatalog(food.SourceProviderB, list, nil, testDeps(store))
	runner := newTestRunner(memory.NewJobStore(), memory.NewConfigStore(), store, RunnerDeps{
		MaxProductsPerRun: 4,
	})

	job, err := runner.RunIncremental(context.Background(), c)
	require.NoError(t, err)
	require.Equal(t, food.JobStatusCompleted, job.Status)
	require.Equal(t, 4, job.Counters.ProductsScraped)
}

func TestRunnerIncrementalUpdatesSyncState(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	called := false
	list := func(ctx context.Context, page, pageSize int) ([]food.NormalizedProduct, error) {
		mu.Lock()
		defer mu.Unlock()
		if called {
			return nil, nil
		}
		called = true
		return []food.NormalizedProduct{validItem(food.SourceProviderA, "1")}, nil
	}
	store := memory.NewProductStore()
	configs := memory.NewConfigStore()
	c := NewCatalog(food.SourceProviderA, list, nil, testDeps(store))
	runner := newTestRunner(memory.NewJobStore(), configs, store, RunnerDeps{})

	_, err := runner.RunIncremental(context.Background(), c)
	require.NoError(t, err)

	cfg, err := configs.Get(context.Background(), food.SourceProviderA)
	require.NoError(t, err)
	require.Equal(t, 1, cfg.TotalProducts)
	require.False(t, cfg.LastIncrementalSync.IsZero())
}

func TestRunnerDemandCompletesWithResults(t *testing.T) {
	t.Parallel()

	search := func(ctx context.Context, query string, limit int) ([]food.NormalizedProduct, error) {
		return []food.NormalizedProduct{
			validItem(food.SourceProviderB, "d1"),
			validItem(food.SourceProviderB, "d2"),
		}, nil
	}
	store := memory.NewProductStore()
	c := NewCatalog(food.SourceProviderB, nil, search, testDeps(store))
	runner := newTestRunner(memory.NewJobStore(), memory.NewConfigStore(), store, RunnerDeps{})

	job, err := runner.RunDemand(context.Background(), c, "dragon fruit jam")
	require.NoError(t, err)
	require.Equal(t, food.JobTypeDemand, job.Type)
	require.Equal(t, food.JobStatusCompleted, job.Status)
	require.Equal(t, 2, job.Counters.ProductsUpdated)
}

func TestRunnerDemandFailureFailsJob(t *testing.T) {
	t.Parallel()

	search := func(ctx context.Context, query string, limit int) ([]food.NormalizedProduct, error) {
		return nil, food.ErrUpstreamUnavailable
	}
	store := memory.NewProductStore()
	c := NewCatalog(food.SourceProviderB, nil, search, testDeps(store))
	jobs := memory.NewJobStore()
	runner := newTestRunner(jobs, memory.NewConfigStore(), store, RunnerDeps{})

	job, err := runner.RunDemand(context.Background(), c, "anything")
	require.ErrorIs(t, err, food.ErrUpstreamUnavailable)
	require.Equal(t, food.JobStatusFailed, job.Status)

	stored, err := jobs.Get(context.Background(), job.ID)
	require.NoError(t, err)
	require.Equal(t, food.JobStatusFailed, stored.Status)
}
