package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds throttle tuning parameters.
type Config struct {
	EnableIPThrottle      bool
	EnableRefreshThrottle bool
	MaxSignInAttempts     int
	SignInCooldown        time.Duration
	MaxRefreshAttempts    int
	RefreshCooldown       time.Duration
}

// Limiter enforces per-address and per-IP budgets for sign-in and a
// per-subject budget for session refresh, using Redis counters.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

func signInAddressKey(address string) string { return "si:" + address }
func signInIPKey(ip string) string           { return "sii:" + ip }
func refreshKey(subjectID string) string     { return "rf:" + subjectID }

// CheckSignIn reports whether the address+IP pair is still within the
// sign-in attempt budget.
func (l *Limiter) CheckSignIn(ctx context.Context, address, ip string) error {
	if err := l.checkCounter(ctx, signInAddressKey(address), l.config.MaxSignInAttempts); err != nil {
		return err
	}

	if l.config.EnableIPThrottle && ip != "" {
		if err := l.checkCounter(ctx, signInIPKey(ip), l.config.MaxSignInAttempts); err != nil {
			return err
		}
	}

	return nil
}

// RecordSignInFailure counts a failed sign-in for the address+IP pair.
func (l *Limiter) RecordSignInFailure(ctx context.Context, address, ip string) error {
	count, err := l.incrementWithTTL(ctx, signInAddressKey(address), l.config.SignInCooldown)
	if err != nil {
		return err
	}
	if count > int64(l.config.MaxSignInAttempts) {
		return ErrRateLimited
	}

	if l.config.EnableIPThrottle && ip != "" {
		count, err = l.incrementWithTTL(ctx, signInIPKey(ip), l.config.SignInCooldown)
		if err != nil {
			return err
		}
		if count > int64(l.config.MaxSignInAttempts) {
			return ErrRateLimited
		}
	}

	return nil
}

// ResetSignIn clears the failure counters for the address+IP pair.
// Called after a successful sign-in.
func (l *Limiter) ResetSignIn(ctx context.Context, address, ip string) error {
	keys := []string{signInAddressKey(address)}
	if l.config.EnableIPThrottle && ip != "" {
		keys = append(keys, signInIPKey(ip))
	}

	if err := l.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// CheckRefresh counts a refresh attempt for the subject and enforces
// the refresh budget in one step.
func (l *Limiter) CheckRefresh(ctx context.Context, subjectID string) error {
	if !l.config.EnableRefreshThrottle {
		return nil
	}

	count, err := l.incrementWithTTL(ctx, refreshKey(subjectID), l.config.RefreshCooldown)
	if err != nil {
		return err
	}
	if count > int64(l.config.MaxRefreshAttempts) {
		return ErrRateLimited
	}

	return nil
}

// SignInAttempts returns the current failure counter for an address.
// Missing keys return zero.
func (l *Limiter) SignInAttempts(ctx context.Context, address string) (int, error) {
	count, err := l.redis.Get(ctx, signInAddressKey(address)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count < 0 {
		return 0, nil
	}
	return int(count), nil
}

func (l *Limiter) checkCounter(ctx context.Context, key string, maxAttempts int) error {
	count, err := l.redis.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	if count > int64(maxAttempts) {
		return ErrRateLimited
	}

	return nil
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}
