package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/nutrisync/foodsearch/internal/food"
)

// JobStore provides an in-memory scrape-job ledger.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]food.ScrapeJob
}

// NewJobStore constructs a JobStore.
func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[string]food.ScrapeJob)}
}

// Create stores a new job row.
func (s *JobStore) Create(_ context.Context, job food.ScrapeJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[job.ID]; exists {
		return errors.New("job already exists")
	}
	s.jobs[job.ID] = job
	return nil
}

// Update overwrites an existing job row.
func (s *JobStore) Update(_ context.Context, job food.ScrapeJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; !ok {
		return food.ErrNotFound
	}
	s.jobs[job.ID] = job
	return nil
}

// Get fetches a job by ID.
func (s *JobStore) Get(_ context.Context, id string) (food.ScrapeJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return food.ScrapeJob{}, food.ErrNotFound
	}
	return job, nil
}

// LatestCompleted returns the most recently completed job for a
// provider and type.
func (s *JobStore) LatestCompleted(_ context.Context, provider food.Source, jobType food.JobType) (food.ScrapeJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var completed []food.ScrapeJob
	for _, job := range s.jobs {
		if job.Provider == provider && job.Type == jobType &&
			job.Status == food.JobStatusCompleted && job.CompletedAt != nil {
			completed = append(completed, job)
		}
	}
	if len(completed) == 0 {
		return food.ScrapeJob{}, food.ErrNotFound
	}
	sort.Slice(completed, func(i, j int) bool {
		return completed[i].CompletedAt.After(*completed[j].CompletedAt)
	})
	return completed[0], nil
}
