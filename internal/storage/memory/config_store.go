package memory

import (
	"context"
	"sync"

	"github.com/nutrisync/foodsearch/internal/food"
)

// ConfigStore keeps one sync-state row per provider.
type ConfigStore struct {
	mu      sync.RWMutex
	configs map[food.Source]food.ScrapeConfig
}

// NewConfigStore constructs a ConfigStore.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{configs: make(map[food.Source]food.ScrapeConfig)}
}

// Get fetches the sync state for a provider.
func (s *ConfigStore) Get(_ context.Context, provider food.Source) (food.ScrapeConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.configs[provider]
	if !ok {
		return food.ScrapeConfig{}, food.ErrNotFound
	}
	return cfg, nil
}

// Upsert writes the sync state for a provider.
func (s *ConfigStore) Upsert(_ context.Context, cfg food.ScrapeConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[cfg.Provider] = cfg
	return nil
}
