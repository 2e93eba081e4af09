package throttle

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresStore persists cooldown entries so they survive restarts and are
// shared across instances.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore returns a cooldown store that uses the given db.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Get returns the entry for key, or nil if not found. Expired entries are
// returned as-is; the throttle compares against its own clock.
func (s *PostgresStore) Get(ctx context.Context, key string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT key, cooldown_until FROM resend_throttle WHERE key = $1`, key)
	var e Entry
	if err := row.Scan(&e.Key, &e.CooldownUntil); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// Put upserts the entry keyed by Entry.Key.
func (s *PostgresStore) Put(ctx context.Context, e *Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO resend_throttle (key, cooldown_until) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET cooldown_until = EXCLUDED.cooldown_until`,
		e.Key, e.CooldownUntil)
	return err
}
