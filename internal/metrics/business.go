// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package metrics exposes the Prometheus collectors of the service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	extractionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "textfeature_extractions_total",
		Help: "Extractions served by operation and outcome",
	}, []string{"op", "outcome"}) // outcome=success|error|cached

	extractionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "textfeature_extraction_duration_seconds",
		Help:    "Extraction latency by operation (cache misses only)",
		Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"op"})

	nounsPerExtraction = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "textfeature_nouns_per_extraction",
		Help:    "Number of nouns returned per extraction",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})

	regexMatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "textfeature_regex_matches_total",
		Help: "Pattern matches by key",
	}, []string{"key"})

	textBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "textfeature_text_bytes",
		Help:    "Size of analysed texts in bytes",
		Buckets: prometheus.ExponentialBuckets(64, 4, 8),
	})

	batchDocuments = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "textfeature_batch_documents",
		Help:    "Documents per batch request",
		Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250},
	})

	batchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "textfeature_batch_duration_seconds",
		Help:    "Batch extraction latency",
		Buckets: prometheus.DefBuckets,
	})

	dictionaryEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "textfeature_dictionary_entries",
		Help: "Active user dictionary entries",
	})

	dictionaryGeneration = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "textfeature_dictionary_generation",
		Help: "User dictionary generation counter",
	})

	lexiconWords = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "textfeature_lexicon_words",
		Help: "Words in the built-in analyzer lexicon",
	})

	dictionaryReloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "textfeature_dictionary_reloads_total",
		Help: "User dictionary reloads by trigger and outcome",
	}, []string{"trigger", "outcome"}) // trigger=api|watch|startup

	cacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "textfeature_cache_lookups_total",
		Help: "Result cache lookups by backend and result",
	}, []string{"backend", "result"}) // result=hit|miss|error

	configReloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "textfeature_config_reloads_total",
		Help: "Configuration reloads by outcome",
	}, []string{"outcome"})

	configValidationErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "textfeature_config_validation_errors_total",
		Help: "Total number of configuration validation errors",
	})
)

// RecordExtraction records one completed extraction.
func RecordExtraction(op string, d time.Duration, bytes, nouns int) {
	extractionsTotal.WithLabelValues(op, "success").Inc()
	extractionDuration.WithLabelValues(op).Observe(d.Seconds())
	textBytes.Observe(float64(bytes))
	nounsPerExtraction.Observe(float64(nouns))
}

// RecordCachedExtraction records an extraction answered from the cache.
func RecordCachedExtraction(op string) {
	extractionsTotal.WithLabelValues(op, "cached").Inc()
}

// RecordExtractionError records a failed extraction.
func RecordExtractionError(op string) {
	extractionsTotal.WithLabelValues(op, "error").Inc()
}

// RecordRegexMatches adds n matches for key.
func RecordRegexMatches(key string, n int) {
	if n > 0 {
		regexMatchesTotal.WithLabelValues(key).Add(float64(n))
	}
}

// RecordBatch records a batch of documents.
func RecordBatch(documents int, d time.Duration) {
	batchDocuments.Observe(float64(documents))
	batchDuration.Observe(d.Seconds())
}

// SetDictionaryState publishes the user dictionary size and generation.
func SetDictionaryState(entries int, generation uint64) {
	dictionaryEntries.Set(float64(entries))
	dictionaryGeneration.Set(float64(generation))
}

// SetLexiconSize publishes the size of the built-in lexicon.
func SetLexiconSize(words int) {
	lexiconWords.Set(float64(words))
}

// RecordDictionaryReload records a dictionary reload.
func RecordDictionaryReload(trigger string, err error) {
	dictionaryReloadsTotal.WithLabelValues(trigger, outcome(err)).Inc()
}

// RecordCacheLookup records a cache lookup. result is hit, miss or error.
func RecordCacheLookup(backend, result string) {
	cacheLookupsTotal.WithLabelValues(backend, result).Inc()
}

// RecordConfigReload records a configuration reload.
func RecordConfigReload(err error) {
	configReloadsTotal.WithLabelValues(outcome(err)).Inc()
}

// IncConfigValidationError increments the config validation error counter.
func IncConfigValidationError() {
	configValidationErrors.Inc()
}

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
