// Package repository defines persistence for OTP challenges.
package repository

import (
	"context"

	"account-orchestrator/internal/otp/domain"
)

// Repository stores at most one challenge per email. Put replaces any
// existing challenge for the email (supersede semantics). Implementations
// must be safe for concurrent use.
type Repository interface {
	// Get returns the challenge for email, or nil if none exists.
	Get(ctx context.Context, email string) (*domain.Challenge, error)
	// Put upserts the challenge keyed by its email.
	Put(ctx context.Context, c *domain.Challenge) error
}
