package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/nutrisync/foodsearch/internal/food"
)

// JobStore persists the scrape-run ledger. It assumes a table schema
// like:
//
//	CREATE TABLE scrape_jobs (
//		id TEXT PRIMARY KEY,
//		provider TEXT NOT NULL,
//		job_type TEXT NOT NULL,
//		status TEXT NOT NULL,
//		started_at TIMESTAMPTZ NOT NULL,
//		completed_at TIMESTAMPTZ,
//		last_cursor TEXT NOT NULL DEFAULT '',
//		products_scraped INT NOT NULL DEFAULT 0,
//		products_updated INT NOT NULL DEFAULT 0,
//		products_skipped INT NOT NULL DEFAULT 0,
//		error_count INT NOT NULL DEFAULT 0,
//		last_error TEXT NOT NULL DEFAULT ''
//	);
type JobStore struct {
	pool Pool
}

// NewJobStore constructs a store over an existing pool.
func NewJobStore(pool Pool) *JobStore {
	return &JobStore{pool: pool}
}

const jobColumns = `id, provider, job_type, status, started_at, completed_at, last_cursor,
	products_scraped, products_updated, products_skipped, error_count, last_error`

// Create inserts a new ledger row.
func (s *JobStore) Create(ctx context.Context, job food.ScrapeJob) error {
	query := `
		INSERT INTO scrape_jobs (` + jobColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12);
	`
	_, err := s.pool.Exec(ctx, query,
		job.ID, job.Provider, job.Type, job.Status, job.StartedAt, job.CompletedAt, job.LastCursor,
		job.Counters.ProductsScraped, job.Counters.ProductsUpdated,
		job.Counters.ProductsSkipped, job.Counters.ErrorCount, job.LastError,
	)
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

// Update overwrites a ledger row's mutable fields.
func (s *JobStore) Update(ctx context.Context, job food.ScrapeJob) error {
	query := `
		UPDATE scrape_jobs SET
			status = $2,
			completed_at = $3,
			last_cursor = $4,
			products_scraped = $5,
			products_updated = $6,
			products_skipped = $7,
			error_count = $8,
			last_error = $9
		WHERE id = $1;
	`
	tag, err := s.pool.Exec(ctx, query,
		job.ID, job.Status, job.CompletedAt, job.LastCursor,
		job.Counters.ProductsScraped, job.Counters.ProductsUpdated,
		job.Counters.ProductsSkipped, job.Counters.ErrorCount, job.LastError,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job %s: %w", job.ID, food.ErrNotFound)
	}
	return nil
}

// Get loads one ledger row or returns food.ErrNotFound.
func (s *JobStore) Get(ctx context.Context, id string) (food.ScrapeJob, error) {
	query := `SELECT ` + jobColumns + ` FROM scrape_jobs WHERE id = $1;`
	job, err := scanJob(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return food.ScrapeJob{}, fmt.Errorf("job %s: %w", id, food.ErrNotFound)
		}
		return food.ScrapeJob{}, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// LatestCompleted returns the most recently completed run for a
// provider and job type.
func (s *JobStore) LatestCompleted(ctx context.Context, provider food.Source, jobType food.JobType) (food.ScrapeJob, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM scrape_jobs
		WHERE provider = $1 AND job_type = $2 AND status = $3
		ORDER BY completed_at DESC
		LIMIT 1;
	`
	job, err := scanJob(s.pool.QueryRow(ctx, query, provider, jobType, food.JobStatusCompleted))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return food.ScrapeJob{}, fmt.Errorf("no completed %s job for %s: %w", jobType, provider, food.ErrNotFound)
		}
		return food.ScrapeJob{}, fmt.Errorf("latest completed job: %w", err)
	}
	return job, nil
}

func scanJob(row pgx.Row) (food.ScrapeJob, error) {
	var job food.ScrapeJob
	err := row.Scan(
		&job.ID, &job.Provider, &job.Type, &job.Status, &job.StartedAt, &job.CompletedAt, &job.LastCursor,
		&job.Counters.ProductsScraped, &job.Counters.ProductsUpdated,
		&job.Counters.ProductsSkipped, &job.Counters.ErrorCount, &job.LastError,
	)
	if err != nil {
		return food.ScrapeJob{}, err
	}
	return job, nil
}
