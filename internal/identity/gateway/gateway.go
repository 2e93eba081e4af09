// Package gateway defines the capability interface to the external identity
// authority. The gateway is pure transport plus error mapping; it holds no
// verification or session logic.
package gateway

import (
	"context"
	"time"

	accountdomain "account-orchestrator/internal/account/domain"
	profiledomain "account-orchestrator/internal/profile/domain"
)

// VerifyPurpose distinguishes what a one-time code proves.
type VerifyPurpose string

// PurposeRegistration verifies a new registration. Password recovery does not
// flow through VerifyCode; the provider verifies the reset link itself.
const PurposeRegistration VerifyPurpose = "signup"

// ProviderSession is what the provider returns when it authenticates a user:
// the access token plus the identity and profile attributes it holds.
type ProviderSession struct {
	AccessToken     string
	UserID          string
	Email           string
	FirstName       string
	LastName        string
	Phone           string
	EmailVerifiedAt *time.Time
	IssuedAt        time.Time
	ExpiresAt       time.Time
}

// IdentityGateway is the narrow capability contract consumed by this core and
// implemented by the external identity authority.
//
// Error mapping contract: timeouts surface as domain.ErrProviderTimeout;
// verify rejections as domain.ErrInvalidCode or domain.ErrCodeExpired (the
// latter only on an explicit provider expiry signal); sign-in rejections as
// domain.ErrInvalidCredentials; anything else as *domain.ProviderError with
// the upstream message verbatim.
type IdentityGateway interface {
	// Register creates the account and triggers exactly one code dispatch.
	Register(ctx context.Context, draft *accountdomain.Draft) error
	// VerifyCode consumes a one-time code and returns the authenticated
	// provider session for the now-confirmed account.
	VerifyCode(ctx context.Context, email, code string, purpose VerifyPurpose) (*ProviderSession, error)
	// ResendCode dispatches a new code, superseding the previous one.
	ResendCode(ctx context.Context, email string) error
	// SignIn exchanges credentials for a provider session.
	SignIn(ctx context.Context, email, password string) (*ProviderSession, error)
	// SignOut invalidates the provider session for the given token.
	SignOut(ctx context.Context, token string) error
	// RequestPasswordReset dispatches a reset link to the email.
	RequestPasswordReset(ctx context.Context, email string) error
	// CompleteReset updates the credential on the session's account.
	CompleteReset(ctx context.Context, token, newPassword string) error
	// UpdateProfile applies the patch to the session's account. Omitted
	// fields are left untouched.
	UpdateProfile(ctx context.Context, token string, patch *profiledomain.Patch) error
}
