package rate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds limiter tuning. A zero max disables that limit.
type Config struct {
	MaxLoginAttempts   int
	LoginWindow        time.Duration
	ThrottleByIP       bool
	MaxRefreshAttempts int
	RefreshWindow      time.Duration
}

// DefaultConfig allows five failed logins per quarter hour and sixty
// refreshes per minute for one refresh token.
func DefaultConfig() Config {
	return Config{
		MaxLoginAttempts:   5,
		LoginWindow:        15 * time.Minute,
		ThrottleByIP:       true,
		MaxRefreshAttempts: 60,
		RefreshWindow:      time.Minute,
	}
}

type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// CheckLogin fails with ErrRateLimited once the account or address has used
// up its failed-login budget.
func (l *Limiter) CheckLogin(ctx context.Context, email, ip string) error {
	if l.config.MaxLoginAttempts <= 0 {
		return nil
	}
	if err := l.checkCounter(ctx, loginKey(email), l.config.MaxLoginAttempts); err != nil {
		return err
	}
	if l.config.ThrottleByIP && ip != "" {
		return l.checkCounter(ctx, loginIPKey(ip), l.config.MaxLoginAttempts)
	}
	return nil
}

// FailLogin records a failed login.
func (l *Limiter) FailLogin(ctx context.Context, email, ip string) error {
	if l.config.MaxLoginAttempts <= 0 {
		return nil
	}
	if _, err := l.incrementWithTTL(ctx, loginKey(email), l.config.LoginWindow); err != nil {
		return err
	}
	if l.config.ThrottleByIP && ip != "" {
		if _, err := l.incrementWithTTL(ctx, loginIPKey(ip), l.config.LoginWindow); err != nil {
			return err
		}
	}
	return nil
}

// ResetLogin clears the account counter after a successful login. The
// address counter is left to expire.
func (l *Limiter) ResetLogin(ctx context.Context, email string) error {
	if err := l.redis.Del(ctx, loginKey(email)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// LoginAttempts returns the failed-login count for email in the current
// window.
func (l *Limiter) LoginAttempts(ctx context.Context, email string) (int, error) {
	count, err := l.redis.Get(ctx, loginKey(email)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return int(count), nil
}

// CheckRefresh counts one refresh for token and fails once the window is
// exhausted.
func (l *Limiter) CheckRefresh(ctx context.Context, token string) error {
	if l.config.MaxRefreshAttempts <= 0 {
		return nil
	}
	count, err := l.incrementWithTTL(ctx, refreshKey(token), l.config.RefreshWindow)
	if err != nil {
		return err
	}
	if count > int64(l.config.MaxRefreshAttempts) {
		return ErrRateLimited
	}
	return nil
}

func (l *Limiter) checkCounter(ctx context.Context, key string, maxAttempts int) error {
	count, err := l.redis.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count >= int64(maxAttempts) {
		return ErrRateLimited
	}
	return nil
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// first hit opens the window
	if count == 1 {
		if err := l.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}
	return count, nil
}

func loginKey(email string) string {
	return "fo:login:" + strings.ToLower(strings.TrimSpace(email))
}

func loginIPKey(ip string) string {
	return "fo:login-ip:" + ip
}

func refreshKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "fo:refresh:" + hex.EncodeToString(sum[:])
}
