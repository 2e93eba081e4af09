// Package domain defines the authenticated session.
package domain

import "time"

// Metadata is the mutable profile snapshot carried on a session. It is
// updated optimistically by the profile updater; the provider remains the
// system of record.
type Metadata struct {
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	Phone           string     `json:"phone"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
}

// Session is the authenticated context identifying a verified user. It is
// created on sign-in or post-verification auto-login and destroyed on
// sign-out; expiry policy is owned by the identity authority.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Token     string    `json:"-"` // provider access token; never serialized outward
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
	Metadata  Metadata  `json:"metadata"`
}
