// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package feature is the service layer in front of the keyword extractor.
// It adds result caching, request collapsing, batching, dictionary
// management, metrics and tracing.
package feature

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/ManuGH/textfeature/internal/cache"
	"github.com/ManuGH/textfeature/internal/dictionary"
	"github.com/ManuGH/textfeature/internal/keyword"
	"github.com/ManuGH/textfeature/internal/log"
	"github.com/ManuGH/textfeature/internal/metrics"
	"github.com/ManuGH/textfeature/internal/morph"
	"github.com/ManuGH/textfeature/internal/normalize"
	"github.com/ManuGH/textfeature/internal/pattern"
	"github.com/ManuGH/textfeature/internal/telemetry"
)

// Operation names used in cache keys, metrics and spans.
const (
	OpExtract  = "extract"
	OpKeywords = "keywords"
	OpRegex    = "regex"
)

// Defaults for Config.
const (
	DefaultCacheTTL          = 10 * time.Minute
	DefaultBatchConcurrency  = 4
	DefaultMaxBatchDocuments = 100
)

// Config tunes a Service.
type Config struct {
	CacheTTL          time.Duration
	BatchConcurrency  int
	MaxBatchDocuments int
}

func (c Config) withDefaults() Config {
	if c.CacheTTL < 0 {
		c.CacheTTL = 0
	}
	if c.BatchConcurrency <= 0 {
		c.BatchConcurrency = DefaultBatchConcurrency
	}
	if c.MaxBatchDocuments <= 0 {
		c.MaxBatchDocuments = DefaultMaxBatchDocuments
	}
	return c
}

// Document is one batch input.
type Document struct {
	Text   string `json:"text"`
	Format string `json:"format,omitempty"`
}

// Service answers extraction requests. It is safe for concurrent use.
type Service struct {
	extractor *keyword.Extractor
	store     dictionary.Store
	cache     cache.Cache
	cfg       Config
	logger    zerolog.Logger
	flight    singleflight.Group
}

// NewService wires an extractor to a cache and a dictionary store. A nil
// cache disables caching; a nil store disables persistence.
func NewService(extractor *keyword.Extractor, store dictionary.Store, c cache.Cache, cfg Config) *Service {
	if c == nil {
		c = cache.NewNoOpCache()
	}
	return &Service{
		extractor: extractor,
		store:     store,
		cache:     c,
		cfg:       cfg.withDefaults(),
		logger:    log.WithComponent("feature"),
	}
}

// Generation returns the active dictionary generation.
func (s *Service) Generation() uint64 {
	return s.extractor.Generation()
}

// CacheStats returns the cache statistics.
func (s *Service) CacheStats() cache.Stats {
	return s.cache.Stats()
}

// Extract returns the nouns and pattern matches of text.
func (s *Service) Extract(ctx context.Context, text string) (keyword.Result, error) {
	return cached(ctx, s, OpExtract, text, func(ctx context.Context) keyword.Result {
		r := s.extractor.Extract(ctx, text)
		r.Regex.Each(func(k pattern.Key, values []string) {
			metrics.RecordRegexMatches(k.KeyName(), len(values))
		})
		return r
	}, func(r keyword.Result) (int, int) { return len(r.Nouns), r.Regex.Total() })
}

// ExtractHTML extracts features from the visible text of markup.
func (s *Service) ExtractHTML(ctx context.Context, markup string) (keyword.Result, error) {
	return s.Extract(ctx, TextFromHTML(markup))
}

// ExtractDocument extracts doc according to its format.
func (s *Service) ExtractDocument(ctx context.Context, doc Document) (keyword.Result, error) {
	switch doc.Format {
	case "", FormatText:
		return s.Extract(ctx, doc.Text)
	case FormatHTML:
		return s.ExtractHTML(ctx, doc.Text)
	default:
		return keyword.Result{}, fmt.Errorf("%w: %q", ErrUnknownFormat, doc.Format)
	}
}

// UniqueKeywords returns the nouns followed by every pattern value.
func (s *Service) UniqueKeywords(ctx context.Context, text string) ([]string, error) {
	return cached(ctx, s, OpKeywords, text, func(ctx context.Context) []string {
		return s.extractor.UniqueKeywords(ctx, text)
	}, func(k []string) (int, int) { return len(k), 0 })
}

// Regex returns only the pattern matches of text.
func (s *Service) Regex(ctx context.Context, text string) (pattern.Matches, error) {
	return cached(ctx, s, OpRegex, text, func(context.Context) pattern.Matches {
		return pattern.Extract(text)
	}, func(m pattern.Matches) (int, int) { return 0, m.Total() })
}

// FilenameTokens splits a file name into searchable tokens.
func (s *Service) FilenameTokens(name string) []string {
	return keyword.SplitFilenameTokens(name)
}

// ExtractBatch extracts every document with bounded parallelism. Results
// are returned in input order. The first failure cancels the rest.
func (s *Service) ExtractBatch(ctx context.Context, docs []Document) ([]keyword.Result, error) {
	if len(docs) > s.cfg.MaxBatchDocuments {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyDocuments, len(docs), s.cfg.MaxBatchDocuments)
	}

	batchID := uuid.NewString()
	ctx = log.ContextWithBatchID(ctx, batchID)
	ctx, span := telemetry.Tracer().Start(ctx, "feature.batch",
		trace.WithAttributes(telemetry.BatchAttributes(len(docs), s.cfg.BatchConcurrency)...))
	defer span.End()

	start := time.Now()
	results := make([]keyword.Result, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.BatchConcurrency)

	for i, doc := range docs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := s.ExtractDocument(gctx, doc)
			if err != nil {
				return fmt.Errorf("document %d: %w", i, err)
			}
			results[i] = r
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		telemetry.RecordError(span, err, "batch")
		return nil, err
	}

	metrics.RecordBatch(len(docs), time.Since(start))
	s.logger.Debug().
		Str(log.FieldBatchID, batchID).
		Int(log.FieldDocuments, len(docs)).
		Int64(log.FieldDurationMS, time.Since(start).Milliseconds()).
		Msg("batch extracted")
	return results, nil
}

// cached serves op for text from the cache, computing and storing it on a
// miss. Concurrent misses for the same key share one computation.
func cached[T any](
	ctx context.Context,
	s *Service,
	op, text string,
	compute func(context.Context) T,
	counts func(T) (nouns, matches int),
) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	gen := s.extractor.Generation()
	ctx, span := telemetry.Tracer().Start(ctx, "feature."+op,
		trace.WithAttributes(telemetry.ExtractAttributes(op, len(text), gen)...))
	defer span.End()

	key, err := normalize.MapHash(map[string]any{"text": text, "generation": gen, "op": op})
	if err != nil {
		metrics.RecordExtractionError(op)
		telemetry.RecordError(span, err, "cache_key")
		return zero, fmt.Errorf("cache key: %w", err)
	}

	if data, ok := s.cache.Get(ctx, key); ok {
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			metrics.RecordCacheLookup(s.cache.Name(), "hit")
			metrics.RecordCachedExtraction(op)
			nouns, matches := counts(v)
			span.SetAttributes(telemetry.ResultAttributes(nouns, matches, "hit")...)
			return v, nil
		}
		metrics.RecordCacheLookup(s.cache.Name(), "error")
		s.cache.Delete(ctx, key)
	} else {
		metrics.RecordCacheLookup(s.cache.Name(), "miss")
	}

	v, err, shared := s.flight.Do(key, func() (any, error) {
		start := time.Now()
		res := compute(ctx)
		nouns, _ := counts(res)
		metrics.RecordExtraction(op, time.Since(start), len(text), nouns)

		if data, err := json.Marshal(res); err == nil {
			s.cache.Set(ctx, key, data, s.cfg.CacheTTL)
		} else {
			s.logger.Warn().Err(err).Str(log.FieldOperation, op).Msg("result not cacheable")
		}
		return res, nil
	})
	if err != nil {
		metrics.RecordExtractionError(op)
		telemetry.RecordError(span, err, op)
		return zero, err
	}

	res := v.(T)
	nouns, matches := counts(res)
	span.SetAttributes(telemetry.ResultAttributes(nouns, matches, "miss")...)
	span.SetAttributes(attribute.Bool("textfeature.shared", shared))
	return res, nil
}

// AddWords adds words to the user dictionary, persists it and clears the
// cache. It returns how many entries were added.
func (s *Service) AddWords(ctx context.Context, words []string) (int, error) {
	added, err := s.extractor.AddUserDictionary(ctx, words)
	if added > 0 {
		s.dictionaryChanged(ctx, len(s.extractor.UserDictionary()))
	}
	return added, err
}

// Words returns the active user dictionary.
func (s *Service) Words() []morph.Entry {
	return s.extractor.UserDictionary()
}

// ReloadDictionary replaces the user dictionary with the store contents.
func (s *Service) ReloadDictionary(ctx context.Context) error {
	if s.store == nil {
		return ErrNoStore
	}
	entries, err := s.store.Load(ctx)
	metrics.RecordDictionaryReload("store", err)
	if err != nil {
		return fmt.Errorf("load dictionary: %w", err)
	}
	s.extractor.ReplaceUserDictionary(entries)
	s.dictionaryChanged(ctx, len(entries))
	return nil
}

// ReloadDictionaryFile replaces the user dictionary with a dictionary
// file. It matches dictionary.ReloadFunc.
func (s *Service) ReloadDictionaryFile(ctx context.Context, path string) error {
	if err := s.extractor.LoadUserDictionaryFile(ctx, path); err != nil {
		return err
	}
	s.dictionaryChanged(ctx, len(s.extractor.UserDictionary()))
	return nil
}

func (s *Service) dictionaryChanged(ctx context.Context, entries int) {
	s.cache.Clear(ctx)
	gen := s.extractor.Generation()
	metrics.SetDictionaryState(entries, gen)
	logger := log.WithContext(ctx, s.logger)
	logger.Info().
		Str(log.FieldEvent, "dictionary.changed").
		Int(log.FieldEntries, entries).
		Uint64(log.FieldGeneration, gen).
		Msg("cache cleared after dictionary change")
}
