// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/textfeature/internal/config"
	"github.com/ManuGH/textfeature/internal/log"
)

// fakeManager blocks in Start until ctx is done.
type fakeManager struct {
	started  atomic.Bool
	stopped  atomic.Bool
	startErr error
}

func (f *fakeManager) Start(ctx context.Context) error {
	f.started.Store(true)
	if f.startErr != nil {
		return f.startErr
	}
	<-ctx.Done()
	return nil
}

func (f *fakeManager) Shutdown(context.Context) error {
	f.stopped.Store(true)
	return nil
}

func (f *fakeManager) RegisterShutdownHook(string, ShutdownHook) {}

func (f *fakeManager) APIAddr() string { return "" }

func writeConfig(t *testing.T, path, level string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("logLevel: "+level+"\n"), 0o600))
}

func newTestHolder(t *testing.T, level string) (*config.Holder, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, level)
	loader := config.NewLoader(path, "test")
	cfg, err := loader.Load()
	require.NoError(t, err)
	return config.NewHolder(cfg, loader).WithDebounce(10 * time.Millisecond), path
}

func TestApp_RunRequiresManager(t *testing.T) {
	app := NewApp(log.WithComponent("test"), nil, nil)
	assert.ErrorIs(t, app.Run(context.Background()), ErrMissingManager)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	mgr := &fakeManager{}
	app := NewApp(log.WithComponent("test"), mgr, nil).WithReloadSignal(nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	require.Eventually(t, mgr.started.Load, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.False(t, mgr.stopped.Load(), "manager shuts itself down on cancel")
}

func TestApp_StartFailureShutsDown(t *testing.T) {
	mgr := &fakeManager{startErr: errors.New("bind failed")}
	app := NewApp(log.WithComponent("test"), mgr, nil).WithReloadSignal(nil)

	err := app.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bind failed")
	assert.True(t, mgr.stopped.Load())
}

func TestApp_ConfigReloadAppliesLogLevel(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	holder, path := newTestHolder(t, "info")
	mgr := &fakeManager{}
	app := NewApp(log.WithComponent("test"), mgr, holder).WithReloadSignal(nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()
	require.Eventually(t, mgr.started.Load, time.Second, 5*time.Millisecond)

	writeConfig(t, path, "debug")
	require.Eventually(t, func() bool {
		_ = holder.Reload(ctx)
		return zerolog.GlobalLevel() == zerolog.DebugLevel
	}, 2*time.Second, 20*time.Millisecond)
	assert.Equal(t, "debug", holder.Get().LogLevel)

	cancel()
	require.NoError(t, <-done)
}

func TestApp_ReloadKeepsConfigOnInvalidFile(t *testing.T) {
	holder, path := newTestHolder(t, "warn")
	var dictReloads atomic.Int32
	app := NewApp(log.WithComponent("test"), &fakeManager{}, holder).
		WithDictionaryReload(func(context.Context) error {
			dictReloads.Add(1)
			return nil
		})

	require.NoError(t, os.WriteFile(path, []byte("unknownKey: true\n"), 0o600))
	app.reload(context.Background())

	assert.Equal(t, "warn", holder.Get().LogLevel)
	assert.Equal(t, int32(1), dictReloads.Load(), "dictionary reloads even when config fails")
}

func TestApp_ReloadSignal(t *testing.T) {
	// keep SIGUSR1 from terminating the test binary before Run subscribes
	guard := make(chan os.Signal, 1)
	signal.Notify(guard, syscall.SIGUSR1)
	defer signal.Stop(guard)

	var dictReloads atomic.Int32
	mgr := &fakeManager{}
	app := NewApp(log.WithComponent("test"), mgr, nil).
		WithReloadSignal(syscall.SIGUSR1).
		WithDictionaryReload(func(context.Context) error {
			dictReloads.Add(1)
			return errors.New("store unavailable")
		})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()
	require.Eventually(t, mgr.started.Load, time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		_ = syscall.Kill(os.Getpid(), syscall.SIGUSR1)
		return dictReloads.Load() > 0
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	assert.NoError(t, <-done, "reload failures are not fatal")
}
