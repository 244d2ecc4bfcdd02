package notes

import (
	"context"
	"sync"
)

// InMemoryStore is a simple in-process notes store for local/dev use.
type InMemoryStore struct {
	mu    sync.RWMutex
	items []Note
}

func NewInMemoryStore() *InMemoryStore { return &InMemoryStore{} }

func (s *InMemoryStore) Load(_ context.Context) ([]Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Note, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *InMemoryStore) Append(_ context.Context, n Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, n)
	return nil
}

func (s *InMemoryStore) Close() error { return nil }
