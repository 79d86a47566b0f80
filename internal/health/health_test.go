// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/textfeature/internal/cache"
	"github.com/ManuGH/textfeature/internal/config"
	"github.com/ManuGH/textfeature/internal/dictionary"
	"github.com/ManuGH/textfeature/internal/morph"
)

type mockChecker struct {
	name   string
	status Status
}

func (m *mockChecker) Name() string { return m.name }

func (m *mockChecker) Check(context.Context) CheckResult {
	return CheckResult{Status: m.status}
}

func TestManager_Health(t *testing.T) {
	m := NewManager("v1.0.0")
	m.RegisterChecker(&mockChecker{name: "healthy", status: StatusHealthy})
	m.RegisterChecker(&mockChecker{name: "degraded", status: StatusDegraded})

	resp := m.Health(context.Background(), false)
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Equal(t, "v1.0.0", resp.Version)
	assert.GreaterOrEqual(t, resp.Uptime, int64(0))
	assert.Nil(t, resp.Checks)

	resp = m.Health(context.Background(), true)
	assert.Equal(t, StatusDegraded, resp.Status)
	assert.Len(t, resp.Checks, 2)
	assert.Equal(t, StatusDegraded, resp.Checks["degraded"].Status)
}

func TestManager_Ready(t *testing.T) {
	m := NewManager("v1.0.0")
	assert.True(t, m.Ready(context.Background()).Ready, "no checkers means ready")

	m.RegisterChecker(&mockChecker{name: "degraded", status: StatusDegraded})
	resp := m.Ready(context.Background())
	assert.True(t, resp.Ready)
	assert.Equal(t, StatusDegraded, resp.Status)

	m.RegisterChecker(&mockChecker{name: "down", status: StatusUnhealthy})
	resp = m.Ready(context.Background())
	assert.False(t, resp.Ready)
	assert.Equal(t, StatusUnhealthy, resp.Status)
}

func TestServeReady_StatusCodes(t *testing.T) {
	m := NewManager("v1.0.0")

	rec := httptest.NewRecorder()
	m.ServeReady(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	m.RegisterChecker(&mockChecker{name: "down", status: StatusUnhealthy})
	rec = httptest.NewRecorder()
	m.ServeReady(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp ReadinessResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.False(t, resp.Ready)
	assert.Equal(t, StatusUnhealthy, resp.Checks["down"].Status)

	rec = httptest.NewRecorder()
	m.ServeHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz?verbose=true", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "liveness is always 200")
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestFuncChecker(t *testing.T) {
	failing := func(context.Context) error { return errors.New("boom") }

	assert.Equal(t, StatusUnhealthy, NewFuncChecker("a", true, failing).Check(context.Background()).Status)
	assert.Equal(t, StatusDegraded, NewFuncChecker("b", false, failing).Check(context.Background()).Status)
	assert.Equal(t, StatusHealthy,
		NewFuncChecker("c", true, func(context.Context) error { return nil }).Check(context.Background()).Status)
}

func TestDictionaryChecker(t *testing.T) {
	store := dictionary.NewMemoryStore(morph.Entry{Word: "미래보고서", Tag: morph.NNP})
	res := NewDictionaryChecker(store).Check(context.Background())
	assert.Equal(t, CheckResult{Status: StatusHealthy, Message: "1 entries"}, res)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, StatusUnhealthy, NewDictionaryChecker(store).Check(ctx).Status)
}

func TestCacheChecker(t *testing.T) {
	mem := cache.NewMemoryCache(0)
	defer func() { _ = mem.Close() }()
	res := NewCacheChecker(mem).Check(context.Background())
	assert.Equal(t, StatusHealthy, res.Status)
	assert.Contains(t, res.Message, "memory")

	srv := miniredis.RunT(t)
	rc, err := cache.NewRedisCache(context.Background(), cache.RedisConfig{Addr: srv.Addr()}, zerolog.Nop())
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()
	assert.Equal(t, StatusHealthy, NewCacheChecker(rc).Check(context.Background()).Status)

	srv.Close()
	assert.Equal(t, StatusDegraded, NewCacheChecker(rc).Check(context.Background()).Status)
}

func TestSqliteChecker(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "dict.db")
	store, err := dictionary.OpenSqliteStore(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, []morph.Entry{{Word: "형태소", Tag: morph.NNG}}))
	require.NoError(t, store.Close())

	assert.Equal(t, StatusHealthy, NewSqliteChecker(path).Check(ctx).Status)
	assert.Equal(t, StatusUnhealthy, NewSqliteChecker(filepath.Join(t.TempDir(), "none.db")).Check(ctx).Status)
}

func TestFileChecker(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.dic")
	full := filepath.Join(dir, "user.dic")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	require.NoError(t, os.WriteFile(full, []byte("형태소\tNNG\n"), 0o600))

	tests := []struct {
		path string
		want Status
	}{
		{"", StatusHealthy},
		{full, StatusHealthy},
		{empty, StatusDegraded},
		{dir, StatusUnhealthy},
		{filepath.Join(dir, "missing.dic"), StatusUnhealthy},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NewFileChecker("dict", tt.path).Check(context.Background()).Status, tt.path)
	}
}

func TestPerformStartupChecks(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Defaults()
	cfg.Dictionary.Backend = "sqlite"
	cfg.Dictionary.Path = filepath.Join(dir, "data", "dict.db")
	cfg.Cache.Backend = "badger"
	cfg.Cache.Badger.Path = filepath.Join(dir, "badger")

	require.NoError(t, PerformStartupChecks(context.Background(), cfg))
	assert.DirExists(t, filepath.Join(dir, "data"))
	assert.DirExists(t, filepath.Join(dir, "badger"))

	cfg.Dictionary.WatchFile = filepath.Join(dir, "missing.dic")
	assert.Error(t, PerformStartupChecks(context.Background(), cfg))
}
