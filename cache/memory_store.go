package cache

import (
	"context"
	"sync"

	"liquidshuffle/model"
)

// MemoryStore is an in-process Store. It backs tests and degraded runs
// where Redis is unreachable; entries do not survive a restart.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]model.Album
}

// NewMemoryStore creates an empty in-memory album store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]model.Album)}
}

// Get fetches one cached album. A miss returns (nil, nil).
func (s *MemoryStore) Get(ctx context.Context, key string) (*model.Album, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	album, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	copied := album
	return &copied, nil
}

// Put stores one album under the given key.
func (s *MemoryStore) Put(ctx context.Context, key string, album *model.Album) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = *album
	return nil
}

// PutMany stores a batch of albums.
func (s *MemoryStore) PutMany(ctx context.Context, entries map[string]*model.Album) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, album := range entries {
		s.entries[key] = *album
	}
	return nil
}

// Len reports the number of cached entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
