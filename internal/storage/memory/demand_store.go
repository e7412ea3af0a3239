package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nutrisync/foodsearch/internal/food"
)

// DemandStore tracks unanswered queries in a map keyed by normalized
// query text.
type DemandStore struct {
	mu      sync.RWMutex
	demands map[string]food.SearchDemand
}

// NewDemandStore constructs a DemandStore.
func NewDemandStore() *DemandStore {
	return &DemandStore{demands: make(map[string]food.SearchDemand)}
}

// Record bumps the hit count for a query, creating the row on first sight.
func (s *DemandStore) Record(_ context.Context, query string, at time.Time) error {
	normalized := strings.ToLower(strings.TrimSpace(query))
	if normalized == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.demands[normalized]
	if !ok {
		d = food.SearchDemand{Query: normalized}
	}
	d.HitCount++
	d.LastSeenAt = at
	s.demands[normalized] = d
	return nil
}

// TopUnattempted returns the highest-hit rows not yet crawled for.
func (s *DemandStore) TopUnattempted(_ context.Context, limit int) ([]food.SearchDemand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []food.SearchDemand
	for _, d := range s.demands {
		if !d.ScrapeAttempted {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].HitCount != out[j].HitCount {
			return out[i].HitCount > out[j].HitCount
		}
		return out[i].Query < out[j].Query
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// MarkAttempted flags a row as crawled and records the outcome.
func (s *DemandStore) MarkAttempted(_ context.Context, query string, foundResults bool) error {
	normalized := strings.ToLower(strings.TrimSpace(query))
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.demands[normalized]
	if !ok {
		return food.ErrNotFound
	}
	d.ScrapeAttempted = true
	d.ScrapeFoundResults = foundResults
	s.demands[normalized] = d
	return nil
}
