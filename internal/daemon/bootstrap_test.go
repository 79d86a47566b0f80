// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/textfeature/internal/config"
	"github.com/ManuGH/textfeature/internal/morph"
)

func bootstrapConfig(t *testing.T, extra string) *config.Holder {
	t.Helper()
	dir := t.TempDir()
	dictFile := filepath.Join(dir, "user.dic")
	require.NoError(t, os.WriteFile(dictFile, []byte("텍스트피처\n"), 0o600))

	body := `logLevel: info
api:
  listenAddr: 127.0.0.1:0
metrics:
  enabled: false
telemetry:
  enabled: false
cache:
  backend: memory
dictionary:
  watchFile: ` + dictFile + "\n" + extra

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	loader := config.NewLoader(path, "test")
	cfg, err := loader.Load()
	require.NoError(t, err)
	return config.NewHolder(cfg, loader)
}

func TestBootstrap_ServesAndShutsDown(t *testing.T) {
	rt, err := Bootstrap(context.Background(), bootstrapConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, []morph.Entry{{Word: "텍스트피처", Tag: morph.NNP}}, rt.Service.Words())
	assert.Equal(t, uint64(1), rt.Service.Generation())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- rt.App.WithReloadSignal(nil).Run(ctx) }()
	addr := waitForAddr(t, rt.Manager)

	client := newClient()
	resp, err := client.Get("http://" + addr + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = client.Post("http://"+addr+"/api/v1/extract", "application/json",
		strings.NewReader(`{"text":"텍스트피처 문의는 help@example.com"}`))
	require.NoError(t, err)
	var result struct {
		Nouns []string            `json:"nouns"`
		Regex map[string][]string `json:"regex"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, result.Nouns, "텍스트피처")
	assert.Contains(t, result.Regex["email"], "help@example.com")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop")
	}
}

func TestBootstrap_BadDictionaryFileFails(t *testing.T) {
	holder := bootstrapConfig(t, "")
	cfg := holder.Get()
	require.NoError(t, os.WriteFile(cfg.Dictionary.WatchFile, []byte("단어\tBOGUS\n"), 0o600))

	_, err := Bootstrap(context.Background(), holder)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load dictionary")
}
