// Package domain defines the one-time-code challenge and its states.
package domain

import "time"

// State is the challenge lifecycle state.
//
//	Pending --valid code--> Verified (terminal)
//	Pending --invalid code--> Failed (retriable; attempts increments)
//	Pending --provider expiry--> Expired (terminal)
type State string

const (
	StatePending  State = "pending"
	StateVerified State = "verified"
	StateExpired  State = "expired"
	StateFailed   State = "failed"
)

// Terminal reports whether no further verify attempts are allowed.
// Failed is retriable and therefore not terminal.
func (s State) Terminal() bool {
	return s == StateVerified || s == StateExpired
}

// Challenge is the verification state for a single registration attempt.
// At most one non-terminal challenge exists per email; a new registration or
// an accepted resend re-issues and supersedes any prior challenge.
type Challenge struct {
	Email     string
	State     State
	Attempts  int
	IssuedAt  time.Time
	UpdatedAt time.Time
}
