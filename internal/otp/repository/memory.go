package repository

import (
	"context"
	"sync"

	"account-orchestrator/internal/otp/domain"
)

// MemoryRepository is an in-memory Repository for single-instance deployments.
type MemoryRepository struct {
	mu sync.RWMutex
	m  map[string]domain.Challenge
}

// NewMemoryRepository returns a new in-memory challenge repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{m: make(map[string]domain.Challenge)}
}

// Get returns a copy of the challenge for email, or nil if none exists.
func (r *MemoryRepository) Get(ctx context.Context, email string) (*domain.Challenge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.m[email]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// Put upserts the challenge keyed by its email.
func (r *MemoryRepository) Put(ctx context.Context, c *domain.Challenge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[c.Email] = *c
	return nil
}
