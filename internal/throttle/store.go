// Package throttle enforces the resend cooldown: a keyed rate limit guarding
// the gateway's resend capability. The cooldown is authoritative server
// state; rendered countdowns are projections of it.
package throttle

import (
	"context"
	"time"
)

// Entry is the cooldown state for one key (the account email). It expires
// naturally once CooldownUntil passes; no explicit deletion is required.
type Entry struct {
	Key           string
	CooldownUntil time.Time
}

// Store persists cooldown entries. Implementations must be safe for
// concurrent use; atomicity of check-then-set is provided by the Throttle's
// per-key lock, not the store.
type Store interface {
	// Get returns the entry for key, or nil if none exists.
	Get(ctx context.Context, key string) (*Entry, error)
	// Put upserts the entry keyed by Entry.Key.
	Put(ctx context.Context, e *Entry) error
}
