package memory

import (
	"context"
	"sync"

	"github.com/nutrisync/foodsearch/internal/food"
)

// CacheStore keeps cached search payloads in a map. Expiry is the
// cache layer's concern; the store returns rows as-is.
type CacheStore struct {
	mu      sync.RWMutex
	entries map[string]food.CachedSearch
}

// NewCacheStore constructs a CacheStore.
func NewCacheStore() *CacheStore {
	return &CacheStore{entries: make(map[string]food.CachedSearch)}
}

// Get fetches a row by query hash.
func (s *CacheStore) Get(_ context.Context, queryHash string) (food.CachedSearch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[queryHash]
	if !ok {
		return food.CachedSearch{}, food.ErrNotFound
	}
	return entry, nil
}

// Put upserts a row by query hash. An update keeps the row's creation
// time and bumps its hit count.
func (s *CacheStore) Put(_ context.Context, entry food.CachedSearch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.entries[entry.QueryHash]; ok {
		entry.HitCount = existing.HitCount + 1
		entry.CreatedAt = existing.CreatedAt
	}
	s.entries[entry.QueryHash] = entry
	return nil
}

// IncrementHits bumps a row's hit counter.
func (s *CacheStore) IncrementHits(_ context.Context, queryHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[queryHash]
	if !ok {
		return food.ErrNotFound
	}
	entry.HitCount++
	s.entries[queryHash] = entry
	return nil
}

// Delete removes a row.
func (s *CacheStore) Delete(_ context.Context, queryHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, queryHash)
	return nil
}
