package throttle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"account-orchestrator/internal/audit"
	"account-orchestrator/internal/flow"
	identitydomain "account-orchestrator/internal/identity/domain"
)

// DefaultCooldown is the minimum interval between accepted resends for the
// same key.
const DefaultCooldown = 60 * time.Second

// CodeResender is the gateway capability the throttle guards.
type CodeResender interface {
	ResendCode(ctx context.Context, email string) error
}

// ChallengeIssuer re-issues the Pending challenge when a resend is accepted,
// superseding the prior one.
type ChallengeIssuer interface {
	Issue(ctx context.Context, email string) error
}

// Throttle enforces the resend cooldown before the provider call. A per-key
// lock makes the check-then-call-then-set sequence a single logical
// transaction, so two near-simultaneous requests for the same email cannot
// both observe an expired cooldown. Lock entries are reference-counted and
// dropped once no request for the key is in flight, so the map only holds
// keys with active requests.
type Throttle struct {
	store    Store
	resender CodeResender
	issuer   ChallengeIssuer
	cooldown time.Duration
	audit    audit.Recorder
	nowF     func() time.Time

	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	sync.Mutex
	refs int
}

// New returns a throttle with the given cooldown window (0 means
// DefaultCooldown). issuer and audit may be nil.
func New(store Store, resender CodeResender, issuer ChallengeIssuer, cooldown time.Duration, rec audit.Recorder) *Throttle {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Throttle{
		store:    store,
		resender: resender,
		issuer:   issuer,
		cooldown: cooldown,
		audit:    rec,
		nowF:     func() time.Time { return time.Now().UTC() },
		locks:    make(map[string]*keyLock),
	}
}

// RequestResend dispatches a new code for email unless the key is still
// cooling down. Rejections perform no provider call and do not mutate the
// entry; the cooldown slot is consumed only after the provider accepts, so an
// abandoned or failed call leaves the prior state intact.
func (t *Throttle) RequestResend(ctx context.Context, email string) (flow.Outcome, error) {
	if email == "" {
		return flow.Outcome{}, identitydomain.NewValidationError("email", "is required")
	}

	lock := t.acquire(email)
	defer t.release(email, lock)

	e, err := t.store.Get(ctx, email)
	if err != nil {
		return flow.Outcome{}, fmt.Errorf("loading cooldown: %w", err)
	}
	now := t.nowF()
	if e != nil && now.Before(e.CooldownUntil) {
		remaining := int((e.CooldownUntil.Sub(now) + time.Second - 1) / time.Second)
		return flow.Outcome{}, &identitydomain.RateLimitError{RemainingSeconds: remaining}
	}

	if err := t.resender.ResendCode(ctx, email); err != nil {
		t.record(ctx, email, "dispatch failed: "+err.Error())
		return flow.Outcome{}, err
	}
	if err := t.store.Put(ctx, &Entry{Key: email, CooldownUntil: now.Add(t.cooldown)}); err != nil {
		return flow.Outcome{}, fmt.Errorf("recording cooldown: %w", err)
	}
	if t.issuer != nil {
		if err := t.issuer.Issue(ctx, email); err != nil {
			return flow.Outcome{}, fmt.Errorf("re-issuing challenge: %w", err)
		}
	}
	t.record(ctx, email, "")
	return flow.Success(flow.StepNone, "Verification code resent successfully"), nil
}

func (t *Throttle) acquire(key string) *keyLock {
	t.mu.Lock()
	l, ok := t.locks[key]
	if !ok {
		l = &keyLock{}
		t.locks[key] = l
	}
	l.refs++
	t.mu.Unlock()
	l.Lock()
	return l
}

func (t *Throttle) release(key string, l *keyLock) {
	l.Unlock()
	t.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(t.locks, key)
	}
	t.mu.Unlock()
}

func (t *Throttle) record(ctx context.Context, email, metadata string) {
	if t.audit != nil {
		t.audit.Record(ctx, email, "", audit.ActionResend, metadata)
	}
}
