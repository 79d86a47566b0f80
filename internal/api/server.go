// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package api serves the extraction service over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ManuGH/textfeature/internal/api/middleware"
	"github.com/ManuGH/textfeature/internal/config"
	"github.com/ManuGH/textfeature/internal/feature"
	"github.com/ManuGH/textfeature/internal/health"
	"github.com/ManuGH/textfeature/internal/log"
	"github.com/ManuGH/textfeature/internal/ratelimit"
)

// DefaultMaxBodyBytes bounds request bodies when Config leaves it unset.
const DefaultMaxBodyBytes int64 = 1 << 20

// Config configures the HTTP surface.
type Config struct {
	MaxBodyBytes int64

	RateLimitEnabled  bool
	RequestsPerMinute int

	// Batch cost limiter; a non-positive rate disables it
	BatchCostPerSecond float64
	BatchCostBurst     int

	EnableMetrics  bool
	TracingService string
}

// ConfigFrom derives the HTTP settings from the application config.
func ConfigFrom(cfg config.AppConfig) Config {
	c := Config{
		MaxBodyBytes:       cfg.API.MaxBodyBytes,
		RateLimitEnabled:   cfg.API.RateLimit.Enabled,
		RequestsPerMinute:  cfg.API.RateLimit.RequestsPerMinute,
		BatchCostPerSecond: cfg.API.Batch.CostPerSecond,
		BatchCostBurst:     cfg.API.Batch.CostBurst,
		EnableMetrics:      true,
	}
	if cfg.Telemetry.Enabled {
		c.TracingService = cfg.LogService
	}
	return c
}

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	cfg     Config
	svc     *feature.Service
	health  *health.Manager
	limiter *ratelimit.Limiter
	router  chi.Router
	logger  zerolog.Logger
}

// New builds the router. hm may be nil, in which case the probes only
// report liveness.
func New(ctx context.Context, cfg Config, svc *feature.Service, hm *health.Manager) (*Server, error) {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if hm == nil {
		hm = health.NewManager("")
	}

	doc, err := LoadOpenAPI(ctx)
	if err != nil {
		return nil, err
	}
	validate, err := RequestValidator(doc)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:    cfg,
		svc:    svc,
		health: hm,
		logger: log.WithComponent("api"),
	}
	if cfg.BatchCostPerSecond > 0 && cfg.BatchCostBurst > 0 {
		s.limiter = ratelimit.New(ratelimit.Config{
			GlobalRate:     rate.Inf,
			GlobalBurst:    cfg.BatchCostBurst,
			PerClientRate:  rate.Limit(cfg.BatchCostPerSecond),
			PerClientBurst: cfg.BatchCostBurst,
			IdleTTL:        10 * time.Minute,
		})
	}
	s.router = s.routes(validate)
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes(validate func(http.Handler) http.Handler) chi.Router {
	r := middleware.NewRouter(middleware.StackConfig{
		EnableSecurityHeaders:      true,
		EnableMetrics:              s.cfg.EnableMetrics,
		TracingService:             s.cfg.TracingService,
		EnableLogging:              true,
		RateLimitEnabled:           s.cfg.RateLimitEnabled,
		RateLimitRequestsPerMinute: s.cfg.RequestsPerMinute,
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, r.Method)
	})

	r.Get("/healthz", s.health.ServeHealth)
	r.Get("/readyz", s.health.ServeReady)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/openapi.yaml", s.handleOpenAPI)

		r.Group(func(r chi.Router) {
			r.Use(s.limitBody)
			r.Use(validate)

			r.Post("/extract", s.handleExtract)
			r.Post("/keywords", s.handleKeywords)
			r.Post("/regex", s.handleRegex)
			r.Post("/filename-tokens", s.handleFilenameTokens)
			r.Post("/batch", s.handleBatch)

			r.Get("/dictionary", s.handleDictionaryList)
			r.Post("/dictionary", s.handleDictionaryAdd)
			r.Post("/dictionary/reload", s.handleDictionaryReload)
		})
	})
	return r
}

func (s *Server) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > s.cfg.MaxBodyBytes {
			writeError(w, http.StatusRequestEntityTooLarge, CodeBodyTooLarge,
				fmt.Sprintf("request body exceeds %d bytes", s.cfg.MaxBodyBytes))
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
		next.ServeHTTP(w, r)
	})
}
