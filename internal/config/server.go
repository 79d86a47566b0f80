// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"strings"
	"time"
)

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	// ListenAddr is the address to listen on (e.g., ":8080")
	ListenAddr string

	// ReadTimeout is the maximum duration for reading the entire request
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of the response
	WriteTimeout time.Duration

	// IdleTimeout is the maximum amount of time to wait for the next request
	IdleTimeout time.Duration

	// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header's keys and values
	MaxHeaderBytes int

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown
	ShutdownTimeout time.Duration
}

const (
	defaultReadTimeout     = 30 * time.Second
	defaultWriteTimeout    = 60 * time.Second
	defaultIdleTimeout     = 120 * time.Second
	defaultMaxHeaderBytes  = 1 << 20 // 1 MB
	defaultShutdownTimeout = 15 * time.Second
	minShutdownTimeout     = 3 * time.Second
)

// ServerConfigFor derives the HTTP server settings from cfg. Zero values
// fall back to defaults.
func ServerConfigFor(cfg AppConfig) ServerConfig {
	out := ServerConfig{
		ListenAddr:      strings.TrimSpace(cfg.API.ListenAddr),
		ReadTimeout:     orDefault(cfg.Server.ReadTimeout, defaultReadTimeout),
		WriteTimeout:    orDefault(cfg.Server.WriteTimeout, defaultWriteTimeout),
		IdleTimeout:     orDefault(cfg.Server.IdleTimeout, defaultIdleTimeout),
		MaxHeaderBytes:  cfg.Server.MaxHeaderBytes,
		ShutdownTimeout: max(orDefault(cfg.Server.ShutdownTimeout, defaultShutdownTimeout), minShutdownTimeout),
	}
	if out.ListenAddr == "" {
		out.ListenAddr = DefaultListenAddr
	}
	if out.MaxHeaderBytes <= 0 {
		out.MaxHeaderBytes = defaultMaxHeaderBytes
	}
	return out
}

// MetricsAddr returns the metrics listen address, or "" when disabled.
func MetricsAddr(cfg AppConfig) string {
	if !cfg.Metrics.Enabled {
		return ""
	}
	return cfg.Metrics.ListenAddr
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
