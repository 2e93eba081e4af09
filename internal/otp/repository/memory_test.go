package repository

import (
	"context"
	"testing"
	"time"

	"account-orchestrator/internal/otp/domain"
)

func TestMemoryRepository_Get_ReturnsNilWhenMissing(t *testing.T) {
	repo := NewMemoryRepository()

	c, err := repo.Get(context.Background(), "missing@example.com")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if c != nil {
		t.Errorf("Get() = %+v, want nil", c)
	}
}

func TestMemoryRepository_PutThenGet(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	now := time.Now().UTC()

	err := repo.Put(ctx, &domain.Challenge{
		Email:     "jo@example.com",
		State:     domain.StatePending,
		IssuedAt:  now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	c, err := repo.Get(ctx, "jo@example.com")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if c == nil {
		t.Fatal("Get() = nil, want challenge")
	}
	if c.State != domain.StatePending {
		t.Errorf("state = %q, want %q", c.State, domain.StatePending)
	}
}

func TestMemoryRepository_Put_Upserts(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_ = repo.Put(ctx, &domain.Challenge{Email: "jo@example.com", State: domain.StatePending})
	_ = repo.Put(ctx, &domain.Challenge{Email: "jo@example.com", State: domain.StateVerified, Attempts: 2})

	c, _ := repo.Get(ctx, "jo@example.com")
	if c.State != domain.StateVerified {
		t.Errorf("state = %q, want %q", c.State, domain.StateVerified)
	}
	if c.Attempts != 2 {
		t.Errorf("attempts = %d, want 2", c.Attempts)
	}
}

func TestMemoryRepository_Get_ReturnsCopy(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_ = repo.Put(ctx, &domain.Challenge{Email: "jo@example.com", State: domain.StatePending})

	c1, _ := repo.Get(ctx, "jo@example.com")
	c1.State = domain.StateFailed

	c2, _ := repo.Get(ctx, "jo@example.com")
	if c2.State != domain.StatePending {
		t.Errorf("state = %q, want %q (mutating a returned challenge must not affect the store)", c2.State, domain.StatePending)
	}
}
