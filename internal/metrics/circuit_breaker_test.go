// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetCircuitBreakerState(t *testing.T) {
	SetCircuitBreakerState("cache_test", "open")
	assert.Equal(t, 1.0, testutil.ToFloat64(circuitBreakerState.WithLabelValues("cache_test", "open")))
	assert.Equal(t, 0.0, testutil.ToFloat64(circuitBreakerState.WithLabelValues("cache_test", "closed")))

	SetCircuitBreakerState("cache_test", "closed")
	assert.Equal(t, 0.0, testutil.ToFloat64(circuitBreakerState.WithLabelValues("cache_test", "open")))
	assert.Equal(t, 1.0, testutil.ToFloat64(circuitBreakerState.WithLabelValues("cache_test", "closed")))
}

func TestRecordCircuitBreakerTrip(t *testing.T) {
	RecordCircuitBreakerTrip("cache_trip", "threshold_exceeded")
	RecordCircuitBreakerTrip("cache_trip", "threshold_exceeded")
	assert.Equal(t, 2.0, testutil.ToFloat64(circuitBreakerTrips.WithLabelValues("cache_trip", "threshold_exceeded")))
}

func TestRecordCircuitBreakerRejection(t *testing.T) {
	before := testutil.ToFloat64(circuitBreakerRejections.WithLabelValues("cache_reject"))
	RecordCircuitBreakerRejection("cache_reject")
	assert.Equal(t, before+1, testutil.ToFloat64(circuitBreakerRejections.WithLabelValues("cache_reject")))
}

func TestCircuitBreakerStateLabels(t *testing.T) {
	SetCircuitBreakerState("cache_labels", "half-open")

	var m dto.Metric
	require.NoError(t, circuitBreakerState.WithLabelValues("cache_labels", "half-open").Write(&m))
	assert.Equal(t, 1.0, m.GetGauge().GetValue())

	labels := map[string]string{}
	for _, lp := range m.GetLabel() {
		labels[lp.GetName()] = lp.GetValue()
	}
	assert.Equal(t, map[string]string{"component": "cache_labels", "state": "half-open"}, labels)
}
