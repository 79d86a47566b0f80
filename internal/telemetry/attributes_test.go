// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestExtractAttributes(t *testing.T) {
	attrs := ExtractAttributes("keywords", 42, 3)

	assert.Equal(t, []attribute.KeyValue{
		attribute.String(ExtractOpKey, "keywords"),
		attribute.Int(TextBytesKey, 42),
		attribute.Int64(GenerationKey, 3),
	}, attrs)
}

func TestResultAndBatchAttributes(t *testing.T) {
	assert.Len(t, ResultAttributes(2, 5, "hit"), 3)
	assert.Equal(t, attribute.Int(BatchConcurrencyKey, 4), BatchAttributes(10, 4)[1])
}

func TestRecordError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	RecordError(span, nil, "ignored")
	RecordError(span, errors.New("boom"), "analyzer")
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Contains(t, spans[0].Attributes(), attribute.String(ErrorTypeKey, "analyzer"))
	assert.Len(t, spans[0].Events(), 1)
}
