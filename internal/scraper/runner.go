package scraper

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/nutrisync/foodsearch/internal/food"
	"github.com/nutrisync/foodsearch/internal/metrics"
)

// Runner drives scrapers page by page and owns the job ledger. Every
// run gets a ledger row that transitions exactly once to completed or
// failed.
type Runner struct {
	jobs     food.JobStore
	configs  food.ConfigStore
	products food.ProductStore
	ids      food.IDGenerator
	clock    food.Clock
	logger   *zap.Logger

	maxProductsPerRun    int
	maxConsecutiveErrors int
}

// RunnerDeps carries the Runner's collaborators and bounds.
type RunnerDeps struct {
	Jobs     food.JobStore
	Configs  food.ConfigStore
	Products food.ProductStore
	IDs      food.IDGenerator
	Clock    food.Clock
	Logger   *zap.Logger

	MaxProductsPerRun    int
	MaxConsecutiveErrors int
}

// NewRunner builds a Runner.
func NewRunner(deps RunnerDeps) *Runner {
	if deps.MaxProductsPerRun <= 0 {
		deps.MaxProductsPerRun = 1000
	}
	if deps.MaxConsecutiveErrors <= 0 {
		deps.MaxConsecutiveErrors = 10
	}
	return &Runner{
		jobs:                 deps.Jobs,
		configs:              deps.Configs,
		products:             deps.Products,
		ids:                  deps.IDs,
		clock:                deps.Clock,
		logger:               deps.Logger,
		maxProductsPerRun:    deps.MaxProductsPerRun,
		maxConsecutiveErrors: deps.MaxConsecutiveErrors,
	}
}

// RunIncremental walks a provider's catalog from where the last
// completed run left off. A page fetch failure is counted and the page
// is skipped for this run; a streak of more than maxConsecutiveErrors
// failures soft-stops the run as completed. Only ledger and context
// failures fail the job.
func (r *Runner) RunIncremental(ctx context.Context, s Scraper) (food.ScrapeJob, error) {
	cursor, err := r.resumeCursor(ctx, s.Provider())
	if err != nil {
		return food.ScrapeJob{}, err
	}

	job, err := r.openJob(ctx, s.Provider(), food.JobTypeIncremental, cursor)
	if err != nil {
		return food.ScrapeJob{}, err
	}
	return r.runPages(ctx, s, job)
}

// StartIncremental opens the ledger row, continues the walk in the
// background and returns the job ID immediately. The walk gets its own
// context so it outlives the triggering request.
func (r *Runner) StartIncremental(ctx context.Context, s Scraper) (string, error) {
	cursor, err := r.resumeCursor(ctx, s.Provider())
	if err != nil {
		return "", err
	}

	job, err := r.openJob(ctx, s.Provider(), food.JobTypeIncremental, cursor)
	if err != nil {
		return "", err
	}
	go func() {
		if _, err := r.runPages(context.Background(), s, job); err != nil {
			r.logger.Error("background scrape run failed",
				zap.String("job_id", job.ID),
				zap.Error(err),
			)
		}
	}()
	return job.ID, nil
}

func (r *Runner) runPages(ctx context.Context, s Scraper, job food.ScrapeJob) (food.ScrapeJob, error) {
	consecutiveErrors := 0
	for {
		if ctx.Err() != nil {
			return r.failJob(job, ctx.Err())
		}
		if job.Counters.ProductsScraped >= r.maxProductsPerRun {
			r.logger.Info("scrape run reached product bound",
				zap.String("provider", string(s.Provider())),
				zap.Int("scraped", job.Counters.ProductsScraped),
			)
			break
		}

		page, err := s.ScrapeIncremental(ctx, job.LastCursor)
		if err != nil {
			if ctx.Err() != nil {
				return r.failJob(job, ctx.Err())
			}
			consecutiveErrors++
			job.Counters.ErrorCount++
			job.LastError = err.Error()
			failedCursor := job.LastCursor
			if page.NextCursor != "" {
				job.LastCursor = page.NextCursor
			}
			r.logger.Warn("scrape page failed",
				zap.String("provider", string(s.Provider())),
				zap.String("cursor", failedCursor),
				zap.Int("consecutive_errors", consecutiveErrors),
				zap.Error(err),
			)
			if consecutiveErrors > r.maxConsecutiveErrors {
				r.logger.Warn("error streak reached bound, stopping run early",
					zap.String("provider", string(s.Provider())),
				)
				break
			}
			r.updateJob(ctx, job)
			continue
		}

		consecutiveErrors = 0
		job.Counters.ProductsScraped += page.Processed
		job.Counters.ProductsUpdated += page.Upserted
		job.Counters.ProductsSkipped += page.Skipped
		job.Counters.ErrorCount += page.Errors
		job.LastCursor = page.NextCursor
		r.updateJob(ctx, job)

		if page.Exhausted {
			break
		}
	}

	return r.completeJob(ctx, job)
}

// RunDemand scrapes one page of search results for a demand query.
func (r *Runner) RunDemand(ctx context.Context, s Scraper, query string) (food.ScrapeJob, error) {
	job, err := r.openJob(ctx, s.Provider(), food.JobTypeDemand, "")
	if err != nil {
		return food.ScrapeJob{}, err
	}

	page, err := s.ScrapeByQuery(ctx, query)
	if err != nil {
		job.Counters.ErrorCount++
		return r.failJob(job, err)
	}

	job.Counters.ProductsScraped += page.Processed
	job.Counters.ProductsUpdated += page.Upserted
	job.Counters.ProductsSkipped += page.Skipped
	job.Counters.ErrorCount += page.Errors
	return r.completeJob(ctx, job)
}

// resumeCursor loads the last completed incremental run's cursor.
func (r *Runner) resumeCursor(ctx context.Context, provider food.Source) (string, error) {
	last, err := r.jobs.LatestCompleted(ctx, provider, food.JobTypeIncremental)
	if errors.Is(err, food.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return last.LastCursor, nil
}

func (r *Runner) openJob(ctx context.Context, provider food.Source, jobType food.JobType, cursor string) (food.ScrapeJob, error) {
	id, err := r.ids.NewID()
	if err != nil {
		return food.ScrapeJob{}, err
	}
	job := food.ScrapeJob{
		ID:         id,
		Provider:   provider,
		Type:       jobType,
		Status:     food.JobStatusRunning,
		StartedAt:  r.clock.Now(),
		LastCursor: cursor,
	}
	if err := r.jobs.Create(ctx, job); err != nil {
		return food.ScrapeJob{}, err
	}
	r.logger.Info("scrape job started",
		zap.String("job_id", job.ID),
		zap.String("provider", string(provider)),
		zap.String("type", string(jobType)),
		zap.String("cursor", cursor),
	)
	return job, nil
}

// updateJob persists intermediate progress. A failed progress write is
// logged and tolerated; the terminal transition is what matters.
func (r *Runner) updateJob(ctx context.Context, job food.ScrapeJob) {
	if err := r.jobs.Update(ctx, job); err != nil {
		r.logger.Warn("job progress update failed",
			zap.String("job_id", job.ID),
			zap.Error(err),
		)
	}
}

func (r *Runner) completeJob(ctx context.Context, job food.ScrapeJob) (food.ScrapeJob, error) {
	now := r.clock.Now()
	job.Status = food.JobStatusCompleted
	job.CompletedAt = &now
	if err := r.jobs.Update(ctx, job); err != nil {
		return job, err
	}
	metrics.ObserveScrapeJob(string(job.Provider), string(job.Type), string(job.Status))

	if job.Type == food.JobTypeIncremental {
		r.updateSyncState(ctx, job.Provider, now)
	}

	r.logger.Info("scrape job completed",
		zap.String("job_id", job.ID),
		zap.String("provider", string(job.Provider)),
		zap.Int("scraped", job.Counters.ProductsScraped),
		zap.Int("updated", job.Counters.ProductsUpdated),
		zap.Int("skipped", job.Counters.ProductsSkipped),
		zap.Int("errors", job.Counters.ErrorCount),
	)
	return job, nil
}

// failJob records a terminal failure and hands the cause back.
func (r *Runner) failJob(job food.ScrapeJob, cause error) (food.ScrapeJob, error) {
	now := r.clock.Now()
	job.Status = food.JobStatusFailed
	job.CompletedAt = &now
	job.LastError = cause.Error()

	// The run's context may already be dead; the terminal write gets
	// its own.
	if err := r.jobs.Update(context.Background(), job); err != nil {
		r.logger.Error("failed job could not be recorded",
			zap.String("job_id", job.ID),
			zap.Error(err),
		)
	}
	metrics.ObserveScrapeJob(string(job.Provider), string(job.Type), string(job.Status))
	r.logger.Error("scrape job failed",
		zap.String("job_id", job.ID),
		zap.String("provider", string(job.Provider)),
		zap.Error(cause),
	)
	return job, cause
}

// updateSyncState refreshes the per-provider sync row after a
// completed incremental run.
func (r *Runner) updateSyncState(ctx context.Context, provider food.Source, at time.Time) {
	total, err := r.products.CountBySource(ctx, provider)
	if err != nil {
		r.logger.Warn("counting products for sync state failed",
			zap.String("provider", string(provider)),
			zap.Error(err),
		)
		return
	}
	cfg := food.ScrapeConfig{
		Provider:            provider,
		LastIncrementalSync: at,
		TotalProducts:       total,
	}
	if err := r.configs.Upsert(ctx, cfg); err != nil {
		r.logger.Warn("sync state upsert failed",
			zap.String("provider", string(provider)),
			zap.Error(err),
		)
	}
}
