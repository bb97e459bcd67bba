package ratelimit

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

var client *redis.Client

func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := startRedis(ctx)
	if err != nil {
		log.Printf("skipping redis integration tests: %s", err)
		os.Exit(m.Run())
	}

	url, err := container.ConnectionString(ctx)
	if err != nil {
		log.Fatalf("failed to obtain redis connection string: %s", err)
	}

	client, err = NewRedisClient(url)
	if err != nil {
		log.Fatalf("failed to create redis client: %s", err)
	}

	exitCode := m.Run()

	_ = client.Close()
	if err := container.Terminate(ctx); err != nil {
		log.Printf("failed to terminate container: %s", err)
	}
	os.Exit(exitCode)
}

// startRedis reports a missing Docker daemon as an error instead of a panic.
func startRedis(ctx context.Context) (container *tcredis.RedisContainer, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("docker unavailable: %v", r)
		}
	}()

	return tcredis.Run(ctx, "redis:7-alpine")
}

func requireRedis(t *testing.T) {
	t.Helper()
	if client == nil {
		t.Skip("redis container not available")
	}
}

func TestRedisLimiter_Register(t *testing.T) {
	requireRedis(t)
	ctx := context.Background()
	limiter := NewRedisLimiter(client, Policy{Prefix: "test_register:", MaxAttempts: 3, Window: time.Minute})

	for i := 1; i <= 2; i++ {
		locked, err := limiter.Register(ctx, "Alice@Example.com")
		require.NoError(t, err)
		assert.False(t, locked, "attempt %d", i)
	}

	exceeded, err := limiter.Exceeded(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.False(t, exceeded)

	locked, err := limiter.Register(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, locked)

	exceeded, err = limiter.Exceeded(ctx, "ALICE@example.com ")
	require.NoError(t, err)
	assert.True(t, exceeded)

	ttl, err := client.TTL(ctx, "test_register:alice@example.com").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}

func TestRedisLimiter_Reset(t *testing.T) {
	requireRedis(t)
	ctx := context.Background()
	limiter := NewRedisLimiter(client, Policy{Prefix: "test_reset:", MaxAttempts: 1, Window: time.Minute})

	locked, err := limiter.Register(ctx, "10.0.0.1")
	require.NoError(t, err)
	require.True(t, locked)

	require.NoError(t, limiter.Reset(ctx, "10.0.0.1"))

	exceeded, err := limiter.Exceeded(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, exceeded)
}

func TestRedisLimiter_KeysAreIndependent(t *testing.T) {
	requireRedis(t)
	ctx := context.Background()
	limiter := NewRedisLimiter(client, Policy{Prefix: "test_independent:", MaxAttempts: 1, Window: time.Minute})

	_, err := limiter.Register(ctx, "a")
	require.NoError(t, err)

	exceeded, err := limiter.Exceeded(ctx, "b")
	require.NoError(t, err)
	assert.False(t, exceeded)
}

func TestNoop(t *testing.T) {
	ctx := context.Background()
	l := Noop()

	for i := 0; i < 100; i++ {
		locked, err := l.Register(ctx, "k")
		require.NoError(t, err)
		assert.False(t, locked)
	}

	exceeded, err := l.Exceeded(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exceeded)
	assert.NoError(t, l.Reset(ctx, "k"))
}

func TestNewRedisClient_InvalidURL(t *testing.T) {
	_, err := NewRedisClient("://nope")
	assert.Error(t, err)
}
