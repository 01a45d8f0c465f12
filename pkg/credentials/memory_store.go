package credentials

import (
	"context"
	"sync"
)

// MemoryStore is a process-local Store, used when Redis is not configured
// and in tests.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]Tokens
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]Tokens)}
}

func (s *MemoryStore) Load(_ context.Context, visitorID string) (Tokens, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tokens[visitorID]
	if !ok || t.Empty() {
		return Tokens{}, ErrNoCredential
	}
	return t, nil
}

func (s *MemoryStore) Save(_ context.Context, visitorID string, t Tokens) error {
	s.mu.Lock()
	s.tokens[visitorID] = t
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, visitorID string) error {
	s.mu.Lock()
	delete(s.tokens, visitorID)
	s.mu.Unlock()
	return nil
}
