// Package service implements the verification state machine for registration
// challenges.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"account-orchestrator/internal/audit"
	identitydomain "account-orchestrator/internal/identity/domain"
	"account-orchestrator/internal/identity/gateway"
	"account-orchestrator/internal/otp/domain"
	otprepo "account-orchestrator/internal/otp/repository"
	sessiondomain "account-orchestrator/internal/session/domain"
)

// CodeVerifier is the subset of the gateway the verifier needs.
type CodeVerifier interface {
	VerifyCode(ctx context.Context, email, code string, purpose gateway.VerifyPurpose) (*gateway.ProviderSession, error)
}

// SessionEstablisher creates the authenticated session once verification
// succeeds (post-verification auto-login).
type SessionEstablisher interface {
	Establish(ctx context.Context, ps *gateway.ProviderSession) (*sessiondomain.Session, error)
}

// Verifier owns the Pending→Verified/Expired/Failed transitions for one
// registration attempt per email. There is no local expiry timer; expiry is
// authoritative at the provider. State changes happen only on provider
// response, so an abandoned call always leaves the prior state intact.
type Verifier struct {
	provider   CodeVerifier
	challenges otprepo.Repository
	sessions   SessionEstablisher
	audit      audit.Recorder
	nowF       func() time.Time
}

// NewVerifier returns a verifier over the given challenge repository.
// audit may be nil.
func NewVerifier(provider CodeVerifier, challenges otprepo.Repository, sessions SessionEstablisher, rec audit.Recorder) *Verifier {
	return &Verifier{
		provider:   provider,
		challenges: challenges,
		sessions:   sessions,
		audit:      rec,
		nowF:       func() time.Time { return time.Now().UTC() },
	}
}

// Issue creates a Pending challenge for email, superseding any prior
// challenge. Called on registration and on each accepted resend.
func (v *Verifier) Issue(ctx context.Context, email string) error {
	now := v.nowF()
	return v.challenges.Put(ctx, &domain.Challenge{
		Email:     email,
		State:     domain.StatePending,
		IssuedAt:  now,
		UpdatedAt: now,
	})
}

// Verify consumes a one-time code for email. On provider acceptance the
// challenge transitions to Verified exactly once and a session is
// established; on an invalid-code rejection the challenge records the failure
// and returns to a retriable state with the attempt counter incremented.
// Timeouts and upstream faults propagate unchanged without touching the
// challenge.
func (v *Verifier) Verify(ctx context.Context, email, code string) (*sessiondomain.Session, error) {
	if email == "" {
		return nil, identitydomain.NewValidationError("email", "is required")
	}
	if code == "" {
		return nil, identitydomain.NewValidationError("code", "is required")
	}
	ch, err := v.challenges.Get(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("loading challenge: %w", err)
	}
	if ch == nil {
		return nil, identitydomain.ErrNoChallenge
	}
	if ch.State.Terminal() {
		return nil, identitydomain.ErrChallengeComplete
	}

	ps, err := v.provider.VerifyCode(ctx, email, code, gateway.PurposeRegistration)
	if err != nil {
		switch {
		case errors.Is(err, identitydomain.ErrCodeExpired):
			ch.State = domain.StateExpired
			ch.UpdatedAt = v.nowF()
			if perr := v.challenges.Put(ctx, ch); perr != nil {
				return nil, fmt.Errorf("recording expiry: %w", perr)
			}
			return nil, err
		case errors.Is(err, identitydomain.ErrInvalidCode):
			ch.State = domain.StateFailed
			ch.Attempts++
			ch.UpdatedAt = v.nowF()
			if perr := v.challenges.Put(ctx, ch); perr != nil {
				return nil, fmt.Errorf("recording failure: %w", perr)
			}
			v.record(ctx, email, "", "attempt rejected")
			return nil, err
		default:
			// Timeouts and upstream faults: the provider never evaluated the
			// code, so the challenge keeps its prior state and the error
			// surfaces as-is.
			return nil, err
		}
	}

	ch.State = domain.StateVerified
	ch.UpdatedAt = v.nowF()
	if err := v.challenges.Put(ctx, ch); err != nil {
		return nil, fmt.Errorf("recording verification: %w", err)
	}
	sess, err := v.sessions.Establish(ctx, ps)
	if err != nil {
		return nil, err
	}
	v.record(ctx, email, sess.UserID, "")
	return sess, nil
}

func (v *Verifier) record(ctx context.Context, email, userID, metadata string) {
	if v.audit != nil {
		v.audit.Record(ctx, email, userID, audit.ActionVerify, metadata)
	}
}
