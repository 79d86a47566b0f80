// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldService       = "service"
	FieldVersion       = "version"
	FieldRequestID     = "request_id"
	FieldCorrelationID = "correlation_id"
	FieldBatchID       = "batch_id"
	FieldTraceID       = "trace_id"
	FieldSpanID        = "span_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldOperation = "operation"

	// Extraction fields
	FieldTextBytes  = "text_bytes"
	FieldNouns      = "nouns"
	FieldMatches    = "matches"
	FieldDocuments  = "documents"
	FieldGeneration = "dictionary_generation"
	FieldEntries    = "entries"
	FieldCache      = "cache"

	// Path / HTTP fields
	FieldPath       = "path"
	FieldMethod     = "method"
	FieldStatus     = "status"
	FieldDurationMS = "duration_ms"
	FieldRemoteAddr = "remote_addr"
)
