// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Backend names accepted by New.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendBadger = "badger"
	BackendNone   = "none"
)

// ErrUnknownBackend is returned by New for an unsupported backend.
var ErrUnknownBackend = errors.New("unknown cache backend")

// Config selects and configures a backend.
type Config struct {
	Backend         string
	CleanupInterval time.Duration
	Redis           RedisConfig
	BadgerPath      string
}

// New builds the configured cache. An empty backend means memory.
func New(ctx context.Context, cfg Config, logger zerolog.Logger) (Cache, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendMemory:
		interval := cfg.CleanupInterval
		if interval <= 0 {
			interval = time.Minute
		}
		return NewMemoryCache(interval), nil
	case BackendRedis:
		c, err := NewRedisCache(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendBadger:
		c, err := OpenBadgerCache(cfg.BadgerPath, logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendNone, "off", "disabled":
		return NewNoOpCache(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
