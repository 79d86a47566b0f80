// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys shared by all spans.
const (
	ExtractOpKey        = "textfeature.op"
	TextBytesKey        = "textfeature.text_bytes"
	NounCountKey        = "textfeature.nouns"
	MatchCountKey       = "textfeature.matches"
	CacheResultKey      = "textfeature.cache"
	GenerationKey       = "textfeature.dictionary_generation"
	BatchSizeKey        = "textfeature.batch.size"
	BatchConcurrencyKey = "textfeature.batch.concurrency"
	DictionaryEntries   = "textfeature.dictionary.entries"

	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// ExtractAttributes describes one extraction request.
func ExtractAttributes(op string, textBytes int, generation uint64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(ExtractOpKey, op),
		attribute.Int(TextBytesKey, textBytes),
		attribute.Int64(GenerationKey, int64(generation)),
	}
}

// ResultAttributes describes an extraction outcome.
func ResultAttributes(nouns, matches int, cache string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(NounCountKey, nouns),
		attribute.Int(MatchCountKey, matches),
		attribute.String(CacheResultKey, cache),
	}
}

// BatchAttributes describes a batch request.
func BatchAttributes(size, concurrency int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(BatchSizeKey, size),
		attribute.Int(BatchConcurrencyKey, concurrency),
	}
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}

// RecordError marks span as failed.
func RecordError(span trace.Span, err error, errorType string) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetAttributes(ErrorAttributes(errorType)...)
	span.SetStatus(codes.Error, err.Error())
}
