package repository

import (
	"context"
	"database/sql"
	"errors"

	"account-orchestrator/internal/otp/domain"
)

// PostgresRepository persists challenges so that multi-instance deployments
// observe the same verification state.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a challenge repository that uses the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get returns the challenge for email, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) Get(ctx context.Context, email string) (*domain.Challenge, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT email, state, attempts, issued_at, updated_at FROM otp_challenges WHERE email = $1`,
		email)
	var c domain.Challenge
	var state string
	if err := row.Scan(&c.Email, &state, &c.Attempts, &c.IssuedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	c.State = domain.State(state)
	return &c, nil
}

// Put upserts the challenge, superseding any existing row for the email.
func (r *PostgresRepository) Put(ctx context.Context, c *domain.Challenge) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO otp_challenges (email, state, attempts, issued_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (email) DO UPDATE
		 SET state = EXCLUDED.state, attempts = EXCLUDED.attempts,
		     issued_at = EXCLUDED.issued_at, updated_at = EXCLUDED.updated_at`,
		c.Email, string(c.State), c.Attempts, c.IssuedAt, c.UpdatedAt)
	return err
}
