package registry

import (
	"context"
	"sync"
	"testing"

	"account-orchestrator/internal/session/domain"
)

func TestRegistry_PutThenGet(t *testing.T) {
	reg := New()
	ctx := context.Background()

	reg.Put(ctx, &domain.Session{ID: "sess-1", Email: "jo@example.com"})

	s, ok := reg.Get(ctx, "sess-1")
	if !ok {
		t.Fatal("Get() ok = false, want true")
	}
	if s.Email != "jo@example.com" {
		t.Errorf("email = %q, want %q", s.Email, "jo@example.com")
	}
}

func TestRegistry_Get_ReturnsFalseWhenMissing(t *testing.T) {
	reg := New()

	s, ok := reg.Get(context.Background(), "nonexistent")
	if ok {
		t.Error("Get() ok = true, want false")
	}
	if s != nil {
		t.Errorf("session = %+v, want nil", s)
	}
}

func TestRegistry_Get_ReturnsCopy(t *testing.T) {
	reg := New()
	ctx := context.Background()

	reg.Put(ctx, &domain.Session{ID: "sess-1", Email: "jo@example.com"})

	s1, _ := reg.Get(ctx, "sess-1")
	s1.Email = "tampered@example.com"

	s2, _ := reg.Get(ctx, "sess-1")
	if s2.Email != "jo@example.com" {
		t.Errorf("email = %q, want %q (mutating a returned session must not affect the registry)", s2.Email, "jo@example.com")
	}
}

func TestRegistry_Delete(t *testing.T) {
	reg := New()
	ctx := context.Background()

	reg.Put(ctx, &domain.Session{ID: "sess-1"})
	reg.Delete(ctx, "sess-1")

	if _, ok := reg.Get(ctx, "sess-1"); ok {
		t.Error("Get() after Delete ok = true, want false")
	}

	// Deleting a missing session is a no-op.
	reg.Delete(ctx, "sess-1")
}

func TestRegistry_Mutate_AppliesUnderLock(t *testing.T) {
	reg := New()
	ctx := context.Background()

	reg.Put(ctx, &domain.Session{ID: "sess-1", Metadata: domain.Metadata{Phone: "+1"}})

	updated, ok := reg.Mutate(ctx, "sess-1", func(s *domain.Session) {
		s.Metadata.Phone = "+15550001111"
	})
	if !ok {
		t.Fatal("Mutate() ok = false, want true")
	}
	if updated.Metadata.Phone != "+15550001111" {
		t.Errorf("phone = %q, want %q", updated.Metadata.Phone, "+15550001111")
	}

	s, _ := reg.Get(ctx, "sess-1")
	if s.Metadata.Phone != "+15550001111" {
		t.Errorf("stored phone = %q, want %q", s.Metadata.Phone, "+15550001111")
	}
}

func TestRegistry_Mutate_ReturnsFalseWhenSessionGone(t *testing.T) {
	reg := New()
	called := false

	_, ok := reg.Mutate(context.Background(), "sess-1", func(s *domain.Session) {
		called = true
	})
	if ok {
		t.Error("Mutate() ok = true, want false for a missing session")
	}
	if called {
		t.Error("Mutate() called fn for a missing session")
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	reg := New()
	ctx := context.Background()
	reg.Put(ctx, &domain.Session{ID: "sess-1"})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reg.Get(ctx, "sess-1")
			reg.Mutate(ctx, "sess-1", func(s *domain.Session) { s.Metadata.Phone = "+1" })
		}()
	}
	wg.Wait()
	// Races surface under -race.
}
