package catalog

import (
	"context"
	"sync"
)

// Store holds catalog entries. Put replaces the entry for its key as a whole;
// readers see either the old or the new snapshot, never a mix.
type Store interface {
	Get(ctx context.Context, key Key) (*Entry, bool, error)
	Put(ctx context.Context, entry *Entry) error
	Delete(ctx context.Context, key Key) error
}

// MemoryStore is an in-process Store. The zero value is not usable; call
// NewMemoryStore.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[Key]*Entry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[Key]*Entry)}
}

func (s *MemoryStore) Get(_ context.Context, key Key) (*Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	return e, ok, nil
}

func (s *MemoryStore) Put(_ context.Context, entry *Entry) error {
	snapshot := *entry
	snapshot.Models = cloneModels(entry.Models)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[entry.Key()] = &snapshot
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// Len returns the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}
