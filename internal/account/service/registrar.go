// Package service implements registration: local validation, submission to
// the identity authority, and hand-off to the verification state machine.
package service

import (
	"context"
	"fmt"

	"account-orchestrator/internal/account/domain"
	"account-orchestrator/internal/audit"
	"account-orchestrator/internal/flow"
)

// AccountCreator is the gateway capability the registrar needs.
type AccountCreator interface {
	Register(ctx context.Context, draft *domain.Draft) error
}

// ChallengeIssuer opens the verification challenge once the provider accepts
// the draft.
type ChallengeIssuer interface {
	Issue(ctx context.Context, email string) error
}

// Registrar validates registration input and submits it through the gateway.
type Registrar struct {
	provider   AccountCreator
	challenges ChallengeIssuer
	audit      audit.Recorder
}

// NewRegistrar returns a registrar. audit may be nil.
func NewRegistrar(provider AccountCreator, challenges ChallengeIssuer, rec audit.Recorder) *Registrar {
	return &Registrar{provider: provider, challenges: challenges, audit: rec}
}

// Register validates the draft, creates the account at the provider, and
// issues a Pending challenge for the email. Validation failures never reach
// the provider. Provider errors surface unchanged and are not retried:
// registration is not idempotent-safe since the provider may have partially
// created the account.
func (r *Registrar) Register(ctx context.Context, draft *domain.Draft) (flow.Outcome, error) {
	if err := draft.Validate(); err != nil {
		return flow.Outcome{}, err
	}
	if err := r.provider.Register(ctx, draft); err != nil {
		r.record(ctx, draft.Email, "provider rejected registration: "+err.Error())
		return flow.Outcome{}, err
	}
	// The provider has dispatched exactly one code; open the challenge,
	// superseding any prior one for this email.
	if err := r.challenges.Issue(ctx, draft.Email); err != nil {
		return flow.Outcome{}, fmt.Errorf("issuing challenge: %w", err)
	}
	r.record(ctx, draft.Email, "")
	return flow.Continue(flow.StepVerifyOTP), nil
}

func (r *Registrar) record(ctx context.Context, email, metadata string) {
	if r.audit != nil {
		r.audit.Record(ctx, email, "", audit.ActionRegister, metadata)
	}
}
