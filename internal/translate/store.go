package translate

import (
	"context"
	"sync"
)

type cachedTranslation struct {
	translated string
	language   string
}

// MemoryStore is a thread-safe in-process translation cache.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]cachedTranslation
}

// NewMemoryStore constructs a MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]cachedTranslation)}
}

// Get returns a cached translation for the original text.
func (s *MemoryStore) Get(_ context.Context, original string) (string, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[original]
	if !ok {
		return "", "", false
	}
	return entry.translated, entry.language, true
}

// Put stores a translation keyed by original text.
func (s *MemoryStore) Put(_ context.Context, original, translated, detectedLanguage string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[original] = cachedTranslation{translated: translated, language: detectedLanguage}
}
