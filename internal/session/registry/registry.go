// Package registry provides the in-memory registry of live sessions. Session
// validity checks at apply-time go through it, so a concurrent sign-out is
// observed by in-flight operations.
package registry

import (
	"context"
	"sync"

	"account-orchestrator/internal/session/domain"
)

// Registry holds live sessions keyed by session ID. Safe for concurrent use.
type Registry struct {
	mu sync.RWMutex
	m  map[string]*domain.Session
}

// New returns an empty session registry.
func New() *Registry {
	return &Registry{m: make(map[string]*domain.Session)}
}

// Put registers the session, replacing any session with the same ID.
func (r *Registry) Put(ctx context.Context, s *domain.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s2 := *s
	r.m[s.ID] = &s2
}

// Get returns a copy of the session for id, or ok false if none is live.
func (r *Registry) Get(ctx context.Context, id string) (*domain.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.m[id]
	if !ok {
		return nil, false
	}
	s2 := *s
	return &s2, true
}

// Delete removes the session for id. Removing a missing session is a no-op.
func (r *Registry) Delete(ctx context.Context, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, id)
}

// Mutate applies fn to the live session for id under the registry lock and
// returns a copy of the result. Returns ok false without calling fn when the
// session is no longer live, which is how in-flight updates observe a
// concurrent sign-out.
func (r *Registry) Mutate(ctx context.Context, id string, fn func(*domain.Session)) (*domain.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.m[id]
	if !ok {
		return nil, false
	}
	fn(s)
	s2 := *s
	return &s2, true
}
