package history

import (
	"context"
	"sync"
)

// InMemoryStore is a simple in-process history store for local/dev use.
type InMemoryStore struct {
	mu   sync.RWMutex
	msgs []StoredMessage
}

func NewInMemoryStore() *InMemoryStore { return &InMemoryStore{} }

func (s *InMemoryStore) Load(_ context.Context) ([]StoredMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]StoredMessage, len(s.msgs))
	copy(out, s.msgs)
	return out, nil
}

func (s *InMemoryStore) Save(_ context.Context, msgs []StoredMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = make([]StoredMessage, len(msgs))
	copy(s.msgs, msgs)
	return nil
}

func (s *InMemoryStore) Close() error { return nil }
