// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	circuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "textfeature_circuit_breaker_state",
		Help: "Circuit breaker state by component (1 for the active state, 0 otherwise)",
	}, []string{"component", "state"})

	circuitBreakerTrips = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "textfeature_circuit_breaker_trips_total",
		Help: "Circuit breaker transitions to open, by reason",
	}, []string{"component", "reason"})

	circuitBreakerRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "textfeature_circuit_breaker_rejections_total",
		Help: "Calls refused without reaching the backend because the breaker was open",
	}, []string{"component"})
)

var circuitStates = []string{"closed", "half-open", "open"}

// SetCircuitBreakerState sets the gauge of state to 1 and every other state to 0.
func SetCircuitBreakerState(component, state string) {
	for _, s := range circuitStates {
		value := 0.0
		if s == state {
			value = 1.0
		}
		circuitBreakerState.WithLabelValues(component, s).Set(value)
	}
}

func RecordCircuitBreakerTrip(component, reason string) {
	circuitBreakerTrips.WithLabelValues(component, reason).Inc()
}

// RecordCircuitBreakerRejection counts a call short-circuited by an open breaker.
func RecordCircuitBreakerRejection(component string) {
	circuitBreakerRejections.WithLabelValues(component).Inc()
}
