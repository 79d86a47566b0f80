// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ManuGH/textfeature/internal/resilience"
)

// DefaultRedisPrefix namespaces every key written by RedisCache.
const DefaultRedisPrefix = "textfeature:"

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// RedisCache is a Redis-backed Cache. Backend failures are logged and
// reported as misses. Repeated failures open a circuit breaker that skips
// Redis until a probe succeeds.
type RedisCache struct {
	client  *redis.Client
	prefix  string
	logger  zerolog.Logger
	breaker *resilience.CircuitBreaker
	stats   struct {
		hits   atomic.Int64
		misses atomic.Int64
		sets   atomic.Int64
	}
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(ctx context.Context, config RedisConfig, logger zerolog.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger.Info().
		Str("addr", config.Addr).
		Int("db", config.DB).
		Msg("connected to Redis cache")

	return newRedisCache(client, config.Prefix, logger), nil
}

func newRedisCache(client *redis.Client, prefix string, logger zerolog.Logger) *RedisCache {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisCache{
		client:  client,
		prefix:  prefix,
		logger:  logger,
		breaker: resilience.NewCircuitBreaker("cache_redis", resilience.DefaultThreshold, resilience.DefaultResetTimeout),
	}
}

// BreakerState reports the state of the Redis circuit breaker.
func (c *RedisCache) BreakerState() resilience.State {
	return c.breaker.State()
}

// logFailure logs backend errors. Rejections by the open breaker and
// cancelled callers stay quiet.
func (c *RedisCache) logFailure(err error, op, key string) {
	if errors.Is(err, resilience.ErrCircuitOpen) || errors.Is(err, context.Canceled) {
		return
	}
	c.logger.Warn().Err(err).Str("key", key).Msgf("redis %s failed", op)
}

func (c *RedisCache) Name() string { return "redis" }

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	var val []byte
	found := false
	err := c.breaker.Execute(func() error {
		v, err := c.client.Get(ctx, c.prefix+key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		val, found = v, true
		return nil
	})
	if err != nil {
		c.logFailure(err, "get", key)
	}
	if !found {
		c.stats.misses.Add(1)
		return nil, false
	}
	c.stats.hits.Add(1)
	return val, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	err := c.breaker.Execute(func() error {
		return c.client.Set(ctx, c.prefix+key, value, ttl).Err()
	})
	if err != nil {
		c.logFailure(err, "set", key)
		return
	}
	c.stats.sets.Add(1)
}

func (c *RedisCache) Delete(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	err := c.breaker.Execute(func() error {
		return c.client.Del(ctx, c.prefix+key).Err()
	})
	if err != nil {
		c.logFailure(err, "delete", key)
	}
}

// Clear deletes every key under the cache prefix.
func (c *RedisCache) Clear(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := c.breaker.Execute(func() error {
		iter := c.client.Scan(ctx, 0, c.prefix+"*", 256).Iterator()
		var batch []string
		flush := func() error {
			if len(batch) == 0 {
				return nil
			}
			err := c.client.Del(ctx, batch...).Err()
			batch = batch[:0]
			return err
		}
		for iter.Next(ctx) {
			batch = append(batch, iter.Val())
			if len(batch) >= 256 {
				if err := flush(); err != nil {
					return err
				}
			}
		}
		if err := iter.Err(); err != nil {
			return err
		}
		return flush()
	})
	if err != nil {
		c.logFailure(err, "clear", c.prefix+"*")
	}
}

func (c *RedisCache) size(ctx context.Context) int {
	n := 0
	err := c.breaker.Execute(func() error {
		iter := c.client.Scan(ctx, 0, c.prefix+"*", 256).Iterator()
		for iter.Next(ctx) {
			n++
		}
		return iter.Err()
	})
	if err != nil {
		c.logFailure(err, "scan", c.prefix+"*")
		return 0
	}
	return n
}

func (c *RedisCache) Stats() Stats {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	return Stats{
		Hits:        c.stats.hits.Load(),
		Misses:      c.stats.misses.Load(),
		Sets:        c.stats.sets.Load(),
		CurrentSize: c.size(ctx),
	}
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// HealthCheck pings Redis.
func (c *RedisCache) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
