// Package repository defines persistence for audit events.
package repository

import (
	"context"

	"account-orchestrator/internal/audit/domain"
)

// Repository persists audit events.
type Repository interface {
	Create(ctx context.Context, e *domain.Event) error
}
