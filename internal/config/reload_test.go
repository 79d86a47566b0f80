// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestHolder(t *testing.T, content string) (*Holder, string) {
	t.Helper()
	path := writeConfig(t, t.TempDir(), content)
	loader := NewLoader(path, "test")
	cfg, err := loader.Load()
	require.NoError(t, err)
	return NewHolder(cfg, loader), path
}

func TestHolder_Reload(t *testing.T) {
	h, path := newTestHolder(t, "logLevel: info\n")
	updates := make(chan AppConfig, 1)
	h.RegisterListener(updates)

	require.NoError(t, os.WriteFile(path, []byte("logLevel: debug\n"), 0o600))
	require.NoError(t, h.Reload(context.Background()))

	assert.Equal(t, "debug", h.Get().LogLevel)
	select {
	case cfg := <-updates:
		assert.Equal(t, "debug", cfg.LogLevel)
	default:
		t.Fatal("listener was not notified")
	}
}

func TestHolder_ReloadKeepsOldConfigOnError(t *testing.T) {
	h, path := newTestHolder(t, "logLevel: warn\n")

	require.NoError(t, os.WriteFile(path, []byte("logLevel: shouting\n"), 0o600))
	require.Error(t, h.Reload(context.Background()))
	assert.Equal(t, "warn", h.Get().LogLevel)

	require.NoError(t, os.WriteFile(path, []byte("nope: true\n"), 0o600))
	assert.ErrorIs(t, h.Reload(context.Background()), ErrUnknownConfigField)
	assert.Equal(t, "warn", h.Get().LogLevel)
}

func TestHolder_ListenerNeverBlocks(t *testing.T) {
	h, _ := newTestHolder(t, "logLevel: info\n")
	full := make(chan AppConfig)
	h.RegisterListener(full)

	done := make(chan error, 1)
	go func() { done <- h.Reload(context.Background()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("reload blocked on an unbuffered listener")
	}
}

func TestHolder_WatchReloadsOnChange(t *testing.T) {
	h, path := newTestHolder(t, "logLevel: info\n")
	h.WithDebounce(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Watch(ctx) }()

	// give the watcher time to register before writing
	time.Sleep(100 * time.Millisecond)
	tmp := filepath.Join(filepath.Dir(path), "config.yaml.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("logLevel: error\n"), 0o600))
	require.NoError(t, os.Rename(tmp, path))

	assert.Eventually(t, func() bool { return h.Get().LogLevel == "error" },
		3*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestHolder_WatchWithoutFile(t *testing.T) {
	h := NewHolder(Defaults(), NewLoader("", ""))
	assert.NoError(t, h.Watch(context.Background()))
}

func TestHolder_WatchMissingDirectory(t *testing.T) {
	loader := NewLoader(filepath.Join(t.TempDir(), "gone", "config.yaml"), "")
	h := NewHolder(Defaults(), loader)
	assert.Error(t, h.Watch(context.Background()))
}
