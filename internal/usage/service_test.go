package usage

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestService(now *time.Time) *Service {
	svc := NewService(DailyPlans(3, 1))
	svc.store.(*memoryStore).now = func() time.Time { return *now }
	return svc
}

func TestConsumeEnforcesLimitPerIdentityKind(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(&now)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.Consume(ctx, "google:1", 1); err != nil {
			t.Fatalf("consume %d: %v", i, err)
		}
	}
	u, err := svc.Consume(ctx, "google:1", 1)
	if !errors.Is(err, ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached, got %v", err)
	}
	if u.Used != 3 || u.Remaining() != 0 {
		t.Fatalf("unexpected usage after limit: %+v", u)
	}

	guest, err := svc.Consume(ctx, "guest:abc", 1)
	if err != nil {
		t.Fatalf("guest consume: %v", err)
	}
	if guest.Plan != PlanGuest || guest.Limit != 1 {
		t.Fatalf("expected guest plan, got %+v", guest)
	}
	if ok, _, _ := svc.CanConsume(ctx, "guest:abc", 1); ok {
		t.Fatalf("guest should be out of quota")
	}
}

func TestWindowRollsAfter24Hours(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(&now)
	ctx := context.Background()

	first, _ := svc.Consume(ctx, "google:1", 3)
	if first.ResetsAt != now.Add(24*time.Hour) {
		t.Fatalf("unexpected resetsAt %v", first.ResetsAt)
	}

	now = now.Add(24 * time.Hour)
	u, err := svc.Get(ctx, "google:1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if u.Used != 0 || u.ResetsAt != now.Add(24*time.Hour) {
		t.Fatalf("expected a fresh window, got %+v", u)
	}
}

func TestResetAndPolicyChange(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(&now)
	ctx := context.Background()

	if _, err := svc.Consume(ctx, "google:1", 2); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	svc.plans = DailyPlans(10, 1)
	u, _ := svc.Get(ctx, "google:1")
	if u.Limit != 10 || u.Used != 2 {
		t.Fatalf("expected new limit with usage kept, got %+v", u)
	}

	u, err := svc.Reset(ctx, "google:1")
	if err != nil || u.Used != 0 {
		t.Fatalf("Reset: %+v %v", u, err)
	}
}
