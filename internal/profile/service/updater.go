// Package service implements idempotent partial profile updates on an
// already-authenticated session.
package service

import (
	"context"

	"account-orchestrator/internal/audit"
	identitydomain "account-orchestrator/internal/identity/domain"
	"account-orchestrator/internal/profile/domain"
	sessiondomain "account-orchestrator/internal/session/domain"
	"account-orchestrator/internal/session/registry"
)

// ProfileProvider is the gateway capability the updater needs.
type ProfileProvider interface {
	UpdateProfile(ctx context.Context, token string, patch *domain.Patch) error
}

// Updater applies profile patches. It requires a live session and never
// creates one.
type Updater struct {
	provider ProfileProvider
	sessions *registry.Registry
	audit    audit.Recorder
}

// NewUpdater returns a profile updater. audit may be nil.
func NewUpdater(provider ProfileProvider, sessions *registry.Registry, rec audit.Recorder) *Updater {
	return &Updater{provider: provider, sessions: sessions, audit: rec}
}

// Apply sends the provided subset of fields to the provider and, on success,
// replaces the matching session metadata in place (optimistic, no re-fetch).
// Omitted fields are never cleared, so resubmitting the same patch is
// idempotent. On provider failure the prior metadata is retained and the
// error surfaced; the call is safe to retry. Session validity is re-checked
// at apply-time, so a concurrent sign-out makes the update fail with
// ErrNotAuthenticated rather than mutate a dead session.
func (u *Updater) Apply(ctx context.Context, sessionID string, patch *domain.Patch) (*sessiondomain.Session, error) {
	sess, ok := u.sessions.Get(ctx, sessionID)
	if !ok {
		return nil, identitydomain.ErrNotAuthenticated
	}
	if patch.Empty() {
		return sess, nil
	}
	if err := u.provider.UpdateProfile(ctx, sess.Token, patch); err != nil {
		u.record(ctx, sess, "failed: "+err.Error())
		return nil, err
	}
	updated, ok := u.sessions.Mutate(ctx, sessionID, func(s *sessiondomain.Session) {
		if patch.FirstName != nil {
			s.Metadata.FirstName = *patch.FirstName
		}
		if patch.LastName != nil {
			s.Metadata.LastName = *patch.LastName
		}
		if patch.Phone != nil {
			s.Metadata.Phone = *patch.Phone
		}
	})
	if !ok {
		// Signed out while the provider call was in flight.
		return nil, identitydomain.ErrNotAuthenticated
	}
	u.record(ctx, updated, "")
	return updated, nil
}

func (u *Updater) record(ctx context.Context, sess *sessiondomain.Session, metadata string) {
	if u.audit != nil {
		u.audit.Record(ctx, sess.Email, sess.UserID, audit.ActionProfileUpdate, metadata)
	}
}
