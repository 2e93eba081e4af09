// Package domain defines the error taxonomy shared by the account, otp,
// throttle, session, and profile services. Handlers map these to HTTP
// status codes and navigation outcomes.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by services; the HTTP layer maps them to status codes.
var (
	// ErrInvalidCredentials is returned on sign-in rejection. Deliberately
	// does not distinguish unknown email from wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidCode is the generic verification rejection. Never
	// distinguishes wrong code from unknown email (account enumeration).
	ErrInvalidCode = errors.New("invalid verification code")
	// ErrCodeExpired is returned only when the provider explicitly signals
	// that the code has expired.
	ErrCodeExpired = errors.New("verification code has expired")
	// ErrNotAuthenticated is returned when an operation requires a live
	// session and none exists.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrProviderTimeout is returned when a provider call exceeds its
	// deadline. The operation is safe to retry.
	ErrProviderTimeout = errors.New("identity provider timed out")
	// ErrChallengeComplete is returned when verifying a challenge that has
	// already reached a terminal state.
	ErrChallengeComplete = errors.New("verification already completed")
	// ErrNoChallenge is returned when no verification is in progress for the
	// email. Handlers surface it as ErrInvalidCode to avoid enumeration.
	ErrNoChallenge = errors.New("no verification in progress")
)

// ValidationError reports malformed or missing local input. It is resolved
// locally and never reaches the provider, and is never logged as an incident.
type ValidationError struct {
	Field string
	Msg   string
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Msg: msg}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// ProviderError is an opaque upstream failure. The upstream message is passed
// through verbatim for the user-facing surface and logged for operability.
type ProviderError struct {
	Msg string
}

func NewProviderError(msg string) *ProviderError {
	return &ProviderError{Msg: msg}
}

func (e *ProviderError) Error() string { return e.Msg }

// RateLimitError reports a rejected resend inside the cooldown window. It
// carries the remaining seconds as structured data so presentation layers can
// render countdowns from authoritative server state.
type RateLimitError struct {
	RemainingSeconds int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("resend rate limited; retry in %ds", e.RemainingSeconds)
}
