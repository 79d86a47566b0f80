// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package resilience

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockClock struct {
	now time.Time
}

func (m *mockClock) Now() time.Time { return m.now }

var errBackend = errors.New("backend down")

func fail() error { return errBackend }
func ok() error   { return nil }

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	clock := &mockClock{now: time.Now()}
	cb := NewCircuitBreaker("test_threshold", 3, 10*time.Second, WithClock(clock))

	for i := 0; i < 2; i++ {
		assert.ErrorIs(t, cb.Execute(fail), errBackend)
	}
	assert.Equal(t, StateClosed, cb.State())

	assert.ErrorIs(t, cb.Execute(fail), errBackend)
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	cb := NewCircuitBreaker("test_reset", 2, time.Second)

	require.Error(t, cb.Execute(fail))
	require.NoError(t, cb.Execute(ok))
	require.Error(t, cb.Execute(fail))
	assert.Equal(t, StateClosed, cb.State(), "failures must be consecutive")
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	clock := &mockClock{now: time.Now()}
	cb := NewCircuitBreaker("test_probe", 1, 10*time.Second, WithClock(clock))

	require.Error(t, cb.Execute(fail))
	require.Equal(t, StateOpen, cb.State())

	clock.now = clock.now.Add(11 * time.Second)
	require.Error(t, cb.Execute(fail))
	assert.Equal(t, StateOpen, cb.State(), "failed probe reopens")
	assert.ErrorIs(t, cb.Execute(ok), ErrCircuitOpen)

	clock.now = clock.now.Add(11 * time.Second)
	require.NoError(t, cb.Execute(ok))
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_SingleProbe(t *testing.T) {
	clock := &mockClock{now: time.Now()}
	cb := NewCircuitBreaker("test_single", 1, time.Second, WithClock(clock))
	require.Error(t, cb.Execute(fail))
	clock.now = clock.now.Add(2 * time.Second)

	err := cb.Execute(func() error {
		assert.Equal(t, StateHalfOpen, cb.State())
		assert.ErrorIs(t, cb.Execute(ok), ErrCircuitOpen, "second caller waits for the probe")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_CanceledCallerIsNotAFailure(t *testing.T) {
	cb := NewCircuitBreaker("test_canceled", 2, 10*time.Second)
	canceled := func() error { return fmt.Errorf("redis get: %w", context.Canceled) }

	for i := 0; i < 5; i++ {
		assert.ErrorIs(t, cb.Execute(canceled), context.Canceled)
	}
	assert.Equal(t, StateClosed, cb.State())

	require.Error(t, cb.Execute(fail))
	assert.Equal(t, StateClosed, cb.State())
	require.Error(t, cb.Execute(fail))
	assert.Equal(t, StateOpen, cb.State())
}

func TestCircuitBreaker_CanceledProbeFreesSlot(t *testing.T) {
	clock := &mockClock{now: time.Now()}
	cb := NewCircuitBreaker("test_canceled_probe", 1, 10*time.Second, WithClock(clock))

	require.Error(t, cb.Execute(fail))
	clock.now = clock.now.Add(11 * time.Second)

	assert.ErrorIs(t, cb.Execute(func() error { return context.Canceled }), context.Canceled)
	assert.Equal(t, StateHalfOpen, cb.State())

	require.NoError(t, cb.Execute(ok), "the next call may probe")
	assert.Equal(t, StateClosed, cb.State())
}
