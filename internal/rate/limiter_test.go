package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, cfg Config) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, cfg), mr
}

func TestLoginThrottle(t *testing.T) {
	l, mr := newTestLimiter(t, Config{MaxLoginAttempts: 3, LoginWindow: time.Minute})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := l.CheckLogin(ctx, "a@example.com", ""); err != nil {
			t.Fatalf("attempt %d: unexpected %v", i, err)
		}
		if err := l.FailLogin(ctx, "a@example.com", ""); err != nil {
			t.Fatalf("fail %d: %v", i, err)
		}
	}
	if err := l.CheckLogin(ctx, "A@example.com ", ""); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if n, _ := l.LoginAttempts(ctx, "a@example.com"); n != 3 {
		t.Fatalf("expected 3 attempts, got %d", n)
	}

	mr.FastForward(2 * time.Minute)
	if err := l.CheckLogin(ctx, "a@example.com", ""); err != nil {
		t.Fatalf("window should have expired, got %v", err)
	}
}

func TestLoginResetAndIPThrottle(t *testing.T) {
	l, _ := newTestLimiter(t, Config{MaxLoginAttempts: 2, LoginWindow: time.Minute, ThrottleByIP: true})
	ctx := context.Background()

	_ = l.FailLogin(ctx, "a@example.com", "10.0.0.1")
	_ = l.FailLogin(ctx, "b@example.com", "10.0.0.1")

	if err := l.CheckLogin(ctx, "c@example.com", "10.0.0.1"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected address throttle, got %v", err)
	}
	if err := l.CheckLogin(ctx, "c@example.com", "10.0.0.2"); err != nil {
		t.Fatalf("other address should pass, got %v", err)
	}

	if err := l.ResetLogin(ctx, "a@example.com"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if n, _ := l.LoginAttempts(ctx, "a@example.com"); n != 0 {
		t.Fatalf("expected reset counter, got %d", n)
	}
}

func TestRefreshThrottle(t *testing.T) {
	l, mr := newTestLimiter(t, Config{MaxRefreshAttempts: 2, RefreshWindow: time.Minute})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := l.CheckRefresh(ctx, "R1"); err != nil {
			t.Fatalf("refresh %d: %v", i, err)
		}
	}
	if err := l.CheckRefresh(ctx, "R1"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if err := l.CheckRefresh(ctx, "R2"); err != nil {
		t.Fatalf("other token should pass, got %v", err)
	}
	for _, k := range mr.Keys() {
		if k == "fo:refresh:R1" {
			t.Fatal("refresh token stored in clear")
		}
	}
}

func TestDisabledLimitsNeverTouchRedis(t *testing.T) {
	l, mr := newTestLimiter(t, Config{})
	mr.Close()
	ctx := context.Background()

	if err := l.CheckLogin(ctx, "a@example.com", "ip"); err != nil {
		t.Fatalf("unexpected %v", err)
	}
	if err := l.FailLogin(ctx, "a@example.com", "ip"); err != nil {
		t.Fatalf("unexpected %v", err)
	}
	if err := l.CheckRefresh(ctx, "R1"); err != nil {
		t.Fatalf("unexpected %v", err)
	}
}

func TestRedisDown(t *testing.T) {
	l, mr := newTestLimiter(t, DefaultConfig())
	mr.Close()

	err := l.FailLogin(context.Background(), "a@example.com", "")
	if !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
}
