package quota

import (
	"context"
	"errors"
	"testing"

	"sentimentiq-backend/internal/tier"
)

func TestLimitsByTier(t *testing.T) {
	cases := []struct {
		tier tier.Tier
		want int
	}{
		{tier.Guest, 25},
		{tier.Standard, 100},
		{tier.Pro, 1000},
		{tier.Tier("mystery"), 25},
	}
	for _, tc := range cases {
		if got := limitFor(tc.tier); got != tc.want {
			t.Errorf("limitFor(%s) = %d, want %d", tc.tier, got, tc.want)
		}
	}
}

func TestConsumeWithinLimit(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	u, err := svc.Consume(ctx, "user-1", tier.Standard, 1)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if u.Used != 1 || u.Limit != 100 {
		t.Errorf("usage = %+v, want used=1 limit=100", u)
	}
}

func TestConsumeBeyondLimit(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	if _, err := svc.Consume(ctx, "g-1", tier.Guest, 25); err != nil {
		t.Fatalf("fill quota: %v", err)
	}
	if _, err := svc.Consume(ctx, "g-1", tier.Guest, 1); !errors.Is(err, ErrLimitReached) {
		t.Fatalf("err = %v, want ErrLimitReached", err)
	}

	u, err := svc.Get(ctx, "g-1", tier.Guest)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if u.Used != 25 {
		t.Errorf("used = %d after rejected consume, want 25", u.Used)
	}
}

func TestTierChangeRefreshesLimit(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	if _, err := svc.Consume(ctx, "user-2", tier.Standard, 10); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	u, err := svc.Get(ctx, "user-2", tier.Pro)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if u.Limit != 1000 || u.Used != 10 {
		t.Errorf("usage = %+v, want limit=1000 used=10", u)
	}
}

func TestResetStartsFreshWindow(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	if _, err := svc.Consume(ctx, "user-3", tier.Pro, 5); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	u, err := svc.Reset(ctx, "user-3", tier.Pro)
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if u.Used != 0 {
		t.Errorf("used = %d after reset, want 0", u.Used)
	}
}
