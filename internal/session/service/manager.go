// Package service implements sign-in, sign-out, and password-reset flows
// against the identity authority, and owns session establishment.
package service

import (
	"context"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"account-orchestrator/internal/audit"
	"account-orchestrator/internal/flow"
	identitydomain "account-orchestrator/internal/identity/domain"
	"account-orchestrator/internal/identity/gateway"
	"account-orchestrator/internal/session/domain"
	"account-orchestrator/internal/session/registry"
)

// IdentityProvider is the subset of the gateway the session manager needs.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (*gateway.ProviderSession, error)
	SignOut(ctx context.Context, token string) error
	RequestPasswordReset(ctx context.Context, email string) error
	CompleteReset(ctx context.Context, token, newPassword string) error
}

// Manager establishes and destroys authenticated sessions. Operations are
// independent and non-retrying; failures are surfaced directly to the caller.
type Manager struct {
	provider IdentityProvider
	registry *registry.Registry
	audit    audit.Recorder
	nowF     func() time.Time
}

// NewManager returns a session manager. audit may be nil.
func NewManager(provider IdentityProvider, reg *registry.Registry, rec audit.Recorder) *Manager {
	return &Manager{
		provider: provider,
		registry: reg,
		audit:    rec,
		nowF:     func() time.Time { return time.Now().UTC() },
	}
}

// Registry exposes the live-session registry for apply-time validity checks.
func (m *Manager) Registry() *registry.Registry {
	return m.registry
}

// SignIn exchanges credentials for a session and registers it.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	if email == "" {
		return nil, identitydomain.NewValidationError("email", "is required")
	}
	if password == "" {
		return nil, identitydomain.NewValidationError("password", "is required")
	}
	ps, err := m.provider.SignIn(ctx, email, password)
	if err != nil {
		m.record(ctx, email, "", audit.ActionSignIn, "sign-in failed: "+err.Error())
		return nil, err
	}
	sess, err := m.Establish(ctx, ps)
	if err != nil {
		return nil, err
	}
	m.record(ctx, sess.Email, sess.UserID, audit.ActionSignIn, "")
	return sess, nil
}

// Establish builds a Session from the provider session and registers it.
// Used by sign-in and by post-verification auto-login.
func (m *Manager) Establish(ctx context.Context, ps *gateway.ProviderSession) (*domain.Session, error) {
	if ps == nil || ps.AccessToken == "" {
		return nil, identitydomain.NewProviderError("provider returned no session")
	}
	sess := &domain.Session{
		ID:        uuid.New().String(),
		UserID:    ps.UserID,
		Email:     ps.Email,
		Token:     ps.AccessToken,
		IssuedAt:  ps.IssuedAt,
		ExpiresAt: ps.ExpiresAt,
		Metadata: domain.Metadata{
			FirstName:       ps.FirstName,
			LastName:        ps.LastName,
			Phone:           ps.Phone,
			EmailVerifiedAt: ps.EmailVerifiedAt,
		},
	}
	if sess.IssuedAt.IsZero() {
		sess.IssuedAt = m.nowF()
	}
	fillFromClaims(sess)
	m.registry.Put(ctx, sess)
	return sess, nil
}

// SignOut terminates the session. The local session is cleared even when the
// provider call fails, so a stuck-logged-in state cannot occur; the provider
// error is still reported to the caller.
func (m *Manager) SignOut(ctx context.Context, sessionID string) (flow.Outcome, error) {
	sess, ok := m.registry.Get(ctx, sessionID)
	if !ok {
		// Already signed out; nothing to clear.
		return flow.Continue(flow.StepSignIn), nil
	}
	m.registry.Delete(ctx, sessionID)
	if err := m.provider.SignOut(ctx, sess.Token); err != nil {
		m.record(ctx, sess.Email, sess.UserID, audit.ActionSignOut, "provider sign-out failed: "+err.Error())
		return flow.Outcome{}, err
	}
	m.record(ctx, sess.Email, sess.UserID, audit.ActionSignOut, "")
	return flow.Continue(flow.StepSignIn), nil
}

// RequestPasswordReset dispatches a reset link. The outcome is the same
// whether or not the email exists (account enumeration protection); provider
// errors are logged internally and never surfaced.
func (m *Manager) RequestPasswordReset(ctx context.Context, email string) (flow.Outcome, error) {
	if email == "" {
		return flow.Outcome{}, identitydomain.NewValidationError("email", "is required")
	}
	if err := m.provider.RequestPasswordReset(ctx, email); err != nil {
		log.Printf("session: password reset dispatch for %s failed: %v", email, err)
		m.record(ctx, email, "", audit.ActionResetRequest, "dispatch failed: "+err.Error())
	} else {
		m.record(ctx, email, "", audit.ActionResetRequest, "")
	}
	return flow.Success(flow.StepNone, "Check your email for a link to reset your password."), nil
}

// CompleteReset updates the credential through the recovery session.
func (m *Manager) CompleteReset(ctx context.Context, sessionID, newPassword, confirmPassword string) (flow.Outcome, error) {
	if newPassword == "" || confirmPassword == "" {
		return flow.Outcome{}, identitydomain.NewValidationError("password", "password and confirmation are required")
	}
	if newPassword != confirmPassword {
		return flow.Outcome{}, identitydomain.NewValidationError("confirmPassword", "passwords do not match")
	}
	sess, ok := m.registry.Get(ctx, sessionID)
	if !ok {
		return flow.Outcome{}, identitydomain.ErrNotAuthenticated
	}
	if err := m.provider.CompleteReset(ctx, sess.Token, newPassword); err != nil {
		m.record(ctx, sess.Email, sess.UserID, audit.ActionResetComplete, "failed: "+err.Error())
		return flow.Outcome{}, err
	}
	m.record(ctx, sess.Email, sess.UserID, audit.ActionResetComplete, "")
	return flow.Success(flow.StepProtected, "Password updated"), nil
}

func (m *Manager) record(ctx context.Context, email, userID, action, metadata string) {
	if m.audit != nil {
		m.audit.Record(ctx, email, userID, action, metadata)
	}
}

// fillFromClaims backfills user ID and timestamps from the provider-issued
// JWT. The signature is not verified here: the provider is authoritative and
// re-checks the token on every call; claims are decoded only for session
// bookkeeping.
func fillFromClaims(sess *domain.Session) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(sess.Token, &claims); err != nil {
		return
	}
	if sess.UserID == "" {
		sess.UserID = claims.Subject
	}
	if sess.ExpiresAt.IsZero() && claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
}
