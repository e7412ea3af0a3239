// Package memory provides in-memory store implementations for
// development and testing.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nutrisync/foodsearch/internal/food"
)

// ProductStore keeps the product catalog in a map.
type ProductStore struct {
	mu       sync.RWMutex
	products map[string]food.NormalizedProduct
}

// NewProductStore constructs a ProductStore.
func NewProductStore() *ProductStore {
	return &ProductStore{products: make(map[string]food.NormalizedProduct)}
}

// Upsert writes a product by deterministic ID, preserving an existing
// row's popularity.
func (s *ProductStore) Upsert(_ context.Context, product food.NormalizedProduct) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.products[product.ID]; ok {
		product.Popularity = existing.Popularity
	}
	s.products[product.ID] = product
	return nil
}

// GetByID fetches a product by deterministic ID.
func (s *ProductStore) GetByID(_ context.Context, id string) (food.NormalizedProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return food.NormalizedProduct{}, food.ErrNotFound
	}
	return p, nil
}

// SearchByName matches by case-insensitive substring on name or brand.
func (s *ProductStore) SearchByName(_ context.Context, query string, limit int) ([]food.NormalizedProduct, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []food.NormalizedProduct
	for _, p := range s.products {
		if strings.Contains(strings.ToLower(p.Name), needle) ||
			(p.Brand != nil && strings.Contains(strings.ToLower(*p.Brand), needle)) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Popularity != out[j].Popularity {
			return out[i].Popularity > out[j].Popularity
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CountBySource counts catalog rows for one provider.
func (s *ProductStore) CountBySource(_ context.Context, source food.Source) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, p := range s.products {
		if p.Source == source {
			count++
		}
	}
	return count, nil
}

// ListStale returns popular rows not refreshed since the cutoff.
func (s *ProductStore) ListStale(_ context.Context, minPopularity int, cutoff time.Time, limit int) ([]food.NormalizedProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []food.NormalizedProduct
	for _, p := range s.products {
		if p.Popularity > minPopularity && p.RefreshedAt.Before(cutoff) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RefreshedAt.Before(out[j].RefreshedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// TouchRefreshed bumps a row's freshness timestamp.
func (s *ProductStore) TouchRefreshed(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return food.ErrNotFound
	}
	p.RefreshedAt = at
	s.products[id] = p
	return nil
}

// SetPopularity is a test helper for seeding popularity values.
func (s *ProductStore) SetPopularity(id string, popularity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.products[id]; ok {
		p.Popularity = popularity
		s.products[id] = p
	}
}
