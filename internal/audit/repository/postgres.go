package repository

import (
	"context"
	"database/sql"

	"account-orchestrator/internal/audit/domain"
)

// PostgresRepository persists audit events to the audit_log table.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an audit repository that uses the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts one audit event. The event must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, e *domain.Event) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_log (id, email, user_id, action, resource, ip, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.Email, e.UserID, e.Action, e.Resource, e.IP, e.Metadata, e.CreatedAt)
	return err
}
