// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/textfeature/internal/resilience"
)

func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *RedisCache) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := newRedisCache(client, "", zerolog.Nop())
	t.Cleanup(func() { _ = c.Close() })
	return mr, c
}

func TestRedisCache_SetGet(t *testing.T) {
	mr, c := setupMiniRedis(t)

	c.Set(ctx, "test-key", []byte(`{"nouns":["회의"]}`), 5*time.Minute)

	val, ok := c.Get(ctx, "test-key")
	require.True(t, ok)
	assert.JSONEq(t, `{"nouns":["회의"]}`, string(val))
	assert.True(t, mr.Exists(DefaultRedisPrefix+"test-key"), "keys are namespaced")

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Sets)
	assert.Equal(t, 1, stats.CurrentSize)
}

func TestRedisCache_Expiration(t *testing.T) {
	mr, c := setupMiniRedis(t)

	c.Set(ctx, "k", []byte("v"), time.Second)
	mr.FastForward(2 * time.Second)

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, int64(1), c.Stats().Misses)
}

func TestRedisCache_ClearKeepsForeignKeys(t *testing.T) {
	mr, c := setupMiniRedis(t)
	require.NoError(t, mr.Set("other:key", "keep"))

	c.Set(ctx, "a", []byte("1"), time.Minute)
	c.Set(ctx, "b", []byte("2"), time.Minute)
	c.Delete(ctx, "a")
	_, ok := c.Get(ctx, "a")
	assert.False(t, ok)

	c.Clear(ctx)

	assert.Equal(t, 0, c.Stats().CurrentSize)
	assert.True(t, mr.Exists("other:key"))
}

func TestRedisCache_BackendDownIsMiss(t *testing.T) {
	mr, c := setupMiniRedis(t)
	c.Set(ctx, "k", []byte("v"), time.Minute)
	mr.Close()

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
	assert.Error(t, c.HealthCheck(ctx))
}

func TestRedisCache_BreakerOpensWhenBackendDown(t *testing.T) {
	mr, c := setupMiniRedis(t)
	mr.Close()

	for i := 0; i < resilience.DefaultThreshold; i++ {
		c.Set(ctx, "k", []byte("v"), time.Minute)
	}
	assert.Equal(t, resilience.StateOpen, c.BreakerState())

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok, "an open breaker serves misses")
}

func TestRedisCache_ClearSkipsBackendWhileOpen(t *testing.T) {
	mr, c := setupMiniRedis(t)
	mr.Close()

	for i := 0; i < resilience.DefaultThreshold; i++ {
		c.Clear(ctx)
	}
	require.Equal(t, resilience.StateOpen, c.BreakerState())

	start := time.Now()
	c.Clear(ctx)
	assert.Zero(t, c.Stats().CurrentSize)
	assert.Less(t, time.Since(start), 100*time.Millisecond, "an open breaker fails fast")
}

func TestRedisCache_CanceledCallerKeepsBreakerClosed(t *testing.T) {
	_, c := setupMiniRedis(t)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	for i := 0; i < 2*resilience.DefaultThreshold; i++ {
		_, ok := c.Get(canceled, "k")
		assert.False(t, ok)
		c.Set(canceled, "k", []byte("v"), time.Minute)
	}
	assert.Equal(t, resilience.StateClosed, c.BreakerState())

	c.Set(ctx, "k", []byte("v"), time.Minute)
	got, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	_, err := NewRedisCache(ctx, RedisConfig{Addr: "127.0.0.1:1"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestNewRedisCache_Connects(t *testing.T) {
	mr := miniredis.RunT(t)

	c, err := NewRedisCache(ctx, RedisConfig{Addr: mr.Addr(), Prefix: "tf:"}, zerolog.Nop())
	require.NoError(t, err)
	defer c.Close()

	c.Set(ctx, "x", []byte("y"), 0)
	assert.True(t, mr.Exists("tf:x"))
	assert.NoError(t, c.HealthCheck(ctx))
}
