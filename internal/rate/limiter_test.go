package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, cfg Config) (*miniredis.Miniredis, *Limiter) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return mr, New(client, cfg)
}

func TestSignInBudgetExhaustion(t *testing.T) {
	_, l := newTestLimiter(t, Config{
		MaxSignInAttempts: 3,
		SignInCooldown:    time.Minute,
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := l.CheckSignIn(ctx, "alice@firm.com", ""); err != nil {
			t.Fatalf("CheckSignIn before exhaustion (attempt %d): %v", i, err)
		}
		if err := l.RecordSignInFailure(ctx, "alice@firm.com", ""); err != nil {
			t.Fatalf("RecordSignInFailure %d: %v", i, err)
		}
	}

	// A fourth failure pushes the counter past the budget.
	if err := l.RecordSignInFailure(ctx, "alice@firm.com", ""); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("fourth failure = %v, want ErrRateLimited", err)
	}
	if err := l.CheckSignIn(ctx, "alice@firm.com", ""); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("CheckSignIn after exhaustion = %v, want ErrRateLimited", err)
	}

	// Other addresses are unaffected.
	if err := l.CheckSignIn(ctx, "bob@firm.com", ""); err != nil {
		t.Fatalf("CheckSignIn for other address = %v", err)
	}
}

func TestSignInResetClearsCounters(t *testing.T) {
	_, l := newTestLimiter(t, Config{
		EnableIPThrottle:  true,
		MaxSignInAttempts: 1,
		SignInCooldown:    time.Minute,
	})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		l.RecordSignInFailure(ctx, "alice@firm.com", "10.0.0.1")
	}
	if err := l.CheckSignIn(ctx, "alice@firm.com", "10.0.0.1"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("CheckSignIn = %v, want ErrRateLimited", err)
	}

	if err := l.ResetSignIn(ctx, "alice@firm.com", "10.0.0.1"); err != nil {
		t.Fatalf("ResetSignIn failed: %v", err)
	}
	if err := l.CheckSignIn(ctx, "alice@firm.com", "10.0.0.1"); err != nil {
		t.Fatalf("CheckSignIn after reset = %v, want nil", err)
	}

	n, err := l.SignInAttempts(ctx, "alice@firm.com")
	if err != nil || n != 0 {
		t.Fatalf("SignInAttempts = %d, %v; want 0, nil", n, err)
	}
}

func TestIPThrottleSharedAcrossAddresses(t *testing.T) {
	_, l := newTestLimiter(t, Config{
		EnableIPThrottle:  true,
		MaxSignInAttempts: 2,
		SignInCooldown:    time.Minute,
	})
	ctx := context.Background()

	l.RecordSignInFailure(ctx, "alice@firm.com", "10.0.0.1")
	l.RecordSignInFailure(ctx, "bob@firm.com", "10.0.0.1")
	l.RecordSignInFailure(ctx, "carol@firm.com", "10.0.0.1")

	// The per-IP counter is over budget even for a fresh address.
	if err := l.CheckSignIn(ctx, "dave@firm.com", "10.0.0.1"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("CheckSignIn = %v, want ErrRateLimited", err)
	}
	// The same address from a different IP is fine.
	if err := l.CheckSignIn(ctx, "dave@firm.com", "10.0.0.2"); err != nil {
		t.Fatalf("CheckSignIn from other IP = %v", err)
	}
}

func TestRefreshThrottle(t *testing.T) {
	mr, l := newTestLimiter(t, Config{
		EnableRefreshThrottle: true,
		MaxRefreshAttempts:    2,
		RefreshCooldown:       time.Minute,
	})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := l.CheckRefresh(ctx, "sub-1"); err != nil {
			t.Fatalf("CheckRefresh %d: %v", i, err)
		}
	}
	if err := l.CheckRefresh(ctx, "sub-1"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("third CheckRefresh = %v, want ErrRateLimited", err)
	}

	// The window expires and the budget replenishes.
	mr.FastForward(2 * time.Minute)
	if err := l.CheckRefresh(ctx, "sub-1"); err != nil {
		t.Fatalf("CheckRefresh after window = %v", err)
	}
}

func TestRefreshThrottleDisabledIsNoOp(t *testing.T) {
	_, l := newTestLimiter(t, Config{})
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if err := l.CheckRefresh(ctx, "sub-1"); err != nil {
			t.Fatalf("CheckRefresh %d with throttle disabled: %v", i, err)
		}
	}
}
