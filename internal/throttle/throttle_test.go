package throttle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	identitydomain "account-orchestrator/internal/identity/domain"
)

type fakeResender struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeResender) ResendCode(ctx context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

func (f *fakeResender) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeIssuer struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeIssuer) Issue(ctx context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return nil
}

// newTestThrottle returns a throttle with a controllable clock shared with its
// memory store.
func newTestThrottle(resender *fakeResender, issuer *fakeIssuer) (*Throttle, *time.Time) {
	now := time.Now().UTC()
	clock := &now
	store := NewMemoryStore()
	store.nowF = func() time.Time { return *clock }
	var iss ChallengeIssuer
	if issuer != nil {
		iss = issuer
	}
	th := New(store, resender, iss, DefaultCooldown, nil)
	th.nowF = func() time.Time { return *clock }
	return th, clock
}

func TestThrottle_RequestResend_EmptyEmail(t *testing.T) {
	resender := &fakeResender{}
	th, _ := newTestThrottle(resender, nil)

	_, err := th.RequestResend(context.Background(), "")
	var ve *identitydomain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("RequestResend() error = %v, want *ValidationError", err)
	}
	if resender.callCount() != 0 {
		t.Errorf("provider calls = %d, want 0", resender.callCount())
	}
}

func TestThrottle_RequestResend_FirstRequestDispatches(t *testing.T) {
	resender := &fakeResender{}
	issuer := &fakeIssuer{}
	th, _ := newTestThrottle(resender, issuer)

	outcome, err := th.RequestResend(context.Background(), "jo@example.com")
	if err != nil {
		t.Fatalf("RequestResend() error = %v", err)
	}
	if outcome.Message != "Verification code resent successfully" {
		t.Errorf("message = %q, want success message", outcome.Message)
	}
	if resender.callCount() != 1 {
		t.Errorf("provider calls = %d, want 1", resender.callCount())
	}
	if issuer.calls != 1 {
		t.Errorf("issued challenges = %d, want 1", issuer.calls)
	}
}

func TestThrottle_RequestResend_SecondRequestInsideWindowRejected(t *testing.T) {
	resender := &fakeResender{}
	th, clock := newTestThrottle(resender, nil)
	ctx := context.Background()

	if _, err := th.RequestResend(ctx, "jo@example.com"); err != nil {
		t.Fatalf("first RequestResend() error = %v", err)
	}

	*clock = clock.Add(10 * time.Second)
	_, err := th.RequestResend(ctx, "jo@example.com")
	var rle *identitydomain.RateLimitError
	if !errors.As(err, &rle) {
		t.Fatalf("second RequestResend() error = %v, want *RateLimitError", err)
	}
	if rle.RemainingSeconds != 50 {
		t.Errorf("remaining = %d, want 50", rle.RemainingSeconds)
	}
	if resender.callCount() != 1 {
		t.Errorf("provider calls = %d, want 1 (rejection performs no provider call)", resender.callCount())
	}
}

func TestThrottle_RequestResend_RemainingSecondsRoundsUp(t *testing.T) {
	resender := &fakeResender{}
	th, clock := newTestThrottle(resender, nil)
	ctx := context.Background()

	_, _ = th.RequestResend(ctx, "jo@example.com")

	*clock = clock.Add(59*time.Second + 500*time.Millisecond)
	_, err := th.RequestResend(ctx, "jo@example.com")
	var rle *identitydomain.RateLimitError
	if !errors.As(err, &rle) {
		t.Fatalf("RequestResend() error = %v, want *RateLimitError", err)
	}
	if rle.RemainingSeconds != 1 {
		t.Errorf("remaining = %d, want 1 (never zero while still cooling)", rle.RemainingSeconds)
	}
}

func TestThrottle_RequestResend_AllowedAfterWindowPasses(t *testing.T) {
	resender := &fakeResender{}
	th, clock := newTestThrottle(resender, nil)
	ctx := context.Background()

	_, _ = th.RequestResend(ctx, "jo@example.com")

	*clock = clock.Add(60 * time.Second)
	if _, err := th.RequestResend(ctx, "jo@example.com"); err != nil {
		t.Fatalf("RequestResend() after window error = %v", err)
	}
	if resender.callCount() != 2 {
		t.Errorf("provider calls = %d, want 2", resender.callCount())
	}
}

func TestThrottle_RequestResend_FailedDispatchDoesNotConsumeSlot(t *testing.T) {
	resender := &fakeResender{err: identitydomain.NewProviderError("smtp down")}
	th, _ := newTestThrottle(resender, nil)
	ctx := context.Background()

	_, err := th.RequestResend(ctx, "jo@example.com")
	var pe *identitydomain.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("RequestResend() error = %v, want *ProviderError", err)
	}

	// The slot was not consumed; an immediate retry reaches the provider.
	resender.mu.Lock()
	resender.err = nil
	resender.mu.Unlock()
	if _, err := th.RequestResend(ctx, "jo@example.com"); err != nil {
		t.Fatalf("retry RequestResend() error = %v", err)
	}
	if resender.callCount() != 2 {
		t.Errorf("provider calls = %d, want 2", resender.callCount())
	}
}

func TestThrottle_RequestResend_KeysAreIndependent(t *testing.T) {
	resender := &fakeResender{}
	th, _ := newTestThrottle(resender, nil)
	ctx := context.Background()

	_, _ = th.RequestResend(ctx, "a@example.com")
	if _, err := th.RequestResend(ctx, "b@example.com"); err != nil {
		t.Fatalf("RequestResend() for second key error = %v", err)
	}
	if resender.callCount() != 2 {
		t.Errorf("provider calls = %d, want 2", resender.callCount())
	}
}

func TestThrottle_RequestResend_ConcurrentRequestsDispatchOnce(t *testing.T) {
	resender := &fakeResender{}
	th, _ := newTestThrottle(resender, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = th.RequestResend(ctx, "jo@example.com")
		}()
	}
	wg.Wait()

	if resender.callCount() != 1 {
		t.Errorf("provider calls = %d, want exactly 1 under concurrency", resender.callCount())
	}
}

func TestThrottle_KeyLocksDroppedWhenIdle(t *testing.T) {
	resender := &fakeResender{}
	th, _ := newTestThrottle(resender, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func(email string) {
				defer wg.Done()
				_, _ = th.RequestResend(ctx, email)
			}(email)
		}
	}
	wg.Wait()

	th.mu.Lock()
	defer th.mu.Unlock()
	if len(th.locks) != 0 {
		t.Errorf("lock entries = %d, want 0 once no request is in flight", len(th.locks))
	}
}

func TestNew_ZeroCooldownUsesDefault(t *testing.T) {
	th := New(NewMemoryStore(), &fakeResender{}, nil, 0, nil)
	if th.cooldown != DefaultCooldown {
		t.Errorf("cooldown = %v, want %v", th.cooldown, DefaultCooldown)
	}
}
