// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package ratelimit provides a cost-weighted per-client limiter. A batch
// request costs one token per document.
package ratelimit

import (
	"math"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"
)

var rateLimitExceeded = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "textfeature",
		Name:      "ratelimit_exceeded_total",
		Help:      "Total cost limiter rejections",
	},
	[]string{"limit_type"},
)

// Config holds rate limiting configuration
type Config struct {
	// Global limits, shared by every client
	GlobalRate  rate.Limit
	GlobalBurst int

	// Per-client limits
	PerClientRate  rate.Limit
	PerClientBurst int

	// IdleTTL is how long an unused client limiter is kept
	IdleTTL time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		GlobalRate:     500,
		GlobalBurst:    2000,
		PerClientRate:  50,
		PerClientBurst: 200,
		IdleTTL:        10 * time.Minute,
	}
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter charges a cost per request against a global and a per-client
// token bucket.
type Limiter struct {
	config Config
	now    func() time.Time

	global *rate.Limiter

	mu          sync.Mutex
	clients     map[string]*client
	lastCleanup time.Time
}

// New creates a new rate limiter with the given config
func New(config Config) *Limiter {
	return &Limiter{
		config:      config,
		now:         time.Now,
		global:      rate.NewLimiter(config.GlobalRate, config.GlobalBurst),
		clients:     make(map[string]*client),
		lastCleanup: time.Now(),
	}
}

// Allow charges cost tokens for clientIP. When the request is rejected it
// returns the time until it could succeed; a cost above the burst can
// never succeed and returns a negative duration.
func (l *Limiter) Allow(clientIP string, cost int) (bool, time.Duration) {
	if cost <= 0 {
		return true, 0
	}
	now := l.now()

	if cost > l.config.GlobalBurst || cost > l.config.PerClientBurst {
		rateLimitExceeded.WithLabelValues("cost").Inc()
		return false, -1
	}

	perClient := l.clientLimiter(clientIP, now)

	g := l.global.ReserveN(now, cost)
	if d := g.DelayFrom(now); d > 0 {
		g.CancelAt(now)
		rateLimitExceeded.WithLabelValues("global").Inc()
		return false, d
	}
	c := perClient.ReserveN(now, cost)
	if d := c.DelayFrom(now); d > 0 {
		c.CancelAt(now)
		g.CancelAt(now)
		rateLimitExceeded.WithLabelValues("per_client").Inc()
		return false, d
	}
	return true, 0
}

// RetryAfterSeconds rounds d up to whole seconds for a Retry-After header.
func RetryAfterSeconds(d time.Duration) int {
	if d <= 0 {
		return 1
	}
	return int(math.Ceil(d.Seconds()))
}

// Clients returns the number of tracked clients.
func (l *Limiter) Clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// clientLimiter returns the limiter for ip and drops idle ones.
func (l *Limiter) clientLimiter(ip string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.config.IdleTTL > 0 && now.Sub(l.lastCleanup) >= l.config.IdleTTL {
		for key, c := range l.clients {
			if now.Sub(c.lastSeen) >= l.config.IdleTTL {
				delete(l.clients, key)
			}
		}
		l.lastCleanup = now
	}

	c, ok := l.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(l.config.PerClientRate, l.config.PerClientBurst)}
		l.clients[ip] = c
	}
	c.lastSeen = now
	return c.limiter
}

// GetClientIP extracts the real client IP from the request
func GetClientIP(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs: "client, proxy1, proxy2"
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
