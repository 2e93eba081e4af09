package throttle

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store with lazy expiry: entries whose cooldown
// has passed are dropped on read.
type MemoryStore struct {
	mu   sync.RWMutex
	m    map[string]Entry
	nowF func() time.Time
}

// NewMemoryStore returns a new in-memory cooldown store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		m:    make(map[string]Entry),
		nowF: func() time.Time { return time.Now().UTC() },
	}
}

// Get returns the entry for key if present and still cooling down.
func (s *MemoryStore) Get(ctx context.Context, key string) (*Entry, error) {
	s.mu.RLock()
	e, ok := s.m[key]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if !e.CooldownUntil.After(s.nowF()) {
		s.mu.Lock()
		delete(s.m, key)
		s.mu.Unlock()
		return nil, nil
	}
	e2 := e
	return &e2, nil
}

// Put upserts the entry keyed by Entry.Key.
func (s *MemoryStore) Put(ctx context.Context, e *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[e.Key] = *e
	return nil
}
