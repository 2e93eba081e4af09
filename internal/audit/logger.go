// Package audit records operability events for account-lifecycle operations.
// Validation errors are never recorded; provider interactions and failures
// are. Recording is best-effort and never affects the caller.
package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"account-orchestrator/internal/audit/domain"
	auditrepo "account-orchestrator/internal/audit/repository"
)

// Actions recorded by the lifecycle services.
const (
	ActionRegister      = "account.register"
	ActionVerify        = "otp.verify"
	ActionResend        = "otp.resend"
	ActionSignIn        = "session.sign_in"
	ActionSignOut       = "session.sign_out"
	ActionResetRequest  = "password.reset_request"
	ActionResetComplete = "password.reset_complete"
	ActionProfileUpdate = "profile.update"
)

// Recorder writes a single audit event. Implementations are best-effort:
// failures are logged and do not affect the caller.
type Recorder interface {
	Record(ctx context.Context, email, userID, action, metadata string)
}

type ipKeyType struct{}

var ipKey ipKeyType

// ContextWithIP stores the client IP for later extraction by the recorder.
// Set by the HTTP layer's middleware.
func ContextWithIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ipKey, ip)
}

// IPFromContext returns the client IP stored by ContextWithIP, or "unknown".
func IPFromContext(ctx context.Context) string {
	if ip, ok := ctx.Value(ipKey).(string); ok && ip != "" {
		return ip
	}
	return "unknown"
}

// Logger implements Recorder using the audit repository.
type Logger struct {
	repo auditrepo.Repository
}

// NewLogger returns a Recorder that persists to repo. A nil repo yields a
// recorder that drops events (useful when no database is configured).
func NewLogger(repo auditrepo.Repository) *Logger {
	return &Logger{repo: repo}
}

// Record writes one audit log entry. Best-effort: errors are logged and not returned.
func (l *Logger) Record(ctx context.Context, email, userID, action, metadata string) {
	if l == nil || l.repo == nil {
		return
	}
	e := &domain.Event{
		ID:        uuid.New().String(),
		Email:     email,
		UserID:    userID,
		Action:    action,
		Resource:  resourceFor(action),
		IP:        IPFromContext(ctx),
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, e); err != nil {
		log.Printf("audit: failed to record %s: %v", action, err)
	}
}

func resourceFor(action string) string {
	switch action {
	case ActionRegister:
		return "account"
	case ActionVerify, ActionResend:
		return "challenge"
	case ActionSignIn, ActionSignOut:
		return "session"
	case ActionResetRequest, ActionResetComplete:
		return "credential"
	case ActionProfileUpdate:
		return "profile"
	default:
		return "unknown"
	}
}
