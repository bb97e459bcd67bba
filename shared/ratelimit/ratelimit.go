// Package ratelimit counts failed or costly attempts per key in Redis and
// reports when a key has used up its budget for the current window.
package ratelimit

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Policy bounds attempts for one kind of action.
type Policy struct {
	Prefix      string
	MaxAttempts int64
	Window      time.Duration
}

var (
	LoginPolicy      = Policy{Prefix: "login_attempts:", MaxAttempts: 5, Window: 10 * time.Minute}
	SendCodePolicy   = Policy{Prefix: "send_code_attempts:", MaxAttempts: 3, Window: 15 * time.Minute}
	VerifyCodePolicy = Policy{Prefix: "verify_code_attempts:", MaxAttempts: 5, Window: 10 * time.Minute}
)

// Limiter tracks attempts per key.
type Limiter interface {
	// Exceeded reports whether key has no attempts left.
	Exceeded(ctx context.Context, key string) (bool, error)
	// Register counts one attempt and reports whether the budget is now used up.
	Register(ctx context.Context, key string) (bool, error)
	// Reset forgets every attempt for key.
	Reset(ctx context.Context, key string) error
}

// NewRedisClient parses a redis:// URL and returns a client for it.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	return redis.NewClient(opts), nil
}

type redisLimiter struct {
	client *redis.Client
	policy Policy
}

// NewRedisLimiter returns a Limiter storing counters in Redis under policy.Prefix.
func NewRedisLimiter(client *redis.Client, policy Policy) Limiter {
	return &redisLimiter{client: client, policy: policy}
}

func (l *redisLimiter) key(key string) string {
	return l.policy.Prefix + strings.ToLower(strings.TrimSpace(key))
}

func (l *redisLimiter) Exceeded(ctx context.Context, key string) (bool, error) {
	attempts, err := l.client.Get(ctx, l.key(key)).Int64()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return attempts >= l.policy.MaxAttempts, nil
}

func (l *redisLimiter) Register(ctx context.Context, key string) (bool, error) {
	k := l.key(key)

	attempts, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return false, err
	}
	if attempts == 1 {
		if err := l.client.Expire(ctx, k, l.policy.Window).Err(); err != nil {
			return false, err
		}
	}

	return attempts >= l.policy.MaxAttempts, nil
}

func (l *redisLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.key(key)).Err()
}

type noopLimiter struct{}

// Noop returns a Limiter that never limits. It is used when Redis is not configured.
func Noop() Limiter {
	return noopLimiter{}
}

func (noopLimiter) Exceeded(context.Context, string) (bool, error) { return false, nil }
func (noopLimiter) Register(context.Context, string) (bool, error) { return false, nil }
func (noopLimiter) Reset(context.Context, string) error            { return nil }
