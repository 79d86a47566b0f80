// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/textfeature/internal/morph"
	"github.com/ManuGH/textfeature/internal/version"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	return executeContext(context.Background(), t, stdin, args...)
}

func executeContext(ctx context.Context, t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func decode[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), "output: %s", out)
	return v
}

type extractResult struct {
	Nouns []string            `json:"nouns"`
	Regex map[string][]string `json:"regex"`
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	info := decode[version.Info](t, out)
	assert.Equal(t, version.Version, info.Version)
	assert.NotEmpty(t, info.GoVersion)
}

func TestRegex(t *testing.T) {
	out, err := execute(t, "", "regex", "문의는", "help@example.com", "으로")
	require.NoError(t, err)
	res := decode[struct {
		Regex map[string][]string `json:"regex"`
	}](t, out)
	assert.Contains(t, res.Regex["email"], "help@example.com")
	assert.Len(t, res.Regex, 8, "every pattern key is present")
}

func TestRegex_Stdin(t *testing.T) {
	out, err := execute(t, "홈페이지 https://example.com 참고", "regex")
	require.NoError(t, err)
	res := decode[extractResult](t, out)
	assert.Contains(t, res.Regex["url"], "https://example.com")
}

func TestExtract(t *testing.T) {
	dict := writeFile(t, "user.dic", "텍스트피처\n")

	out, err := execute(t, "", "extract", "--dict", dict, "텍스트피처 문의는 help@example.com")
	require.NoError(t, err)
	res := decode[extractResult](t, out)
	assert.Contains(t, res.Nouns, "텍스트피처")
	assert.Contains(t, res.Regex["email"], "help@example.com")
}

func TestExtract_Unique(t *testing.T) {
	out, err := execute(t, "", "extract", "--unique", "문의는 help@example.com")
	require.NoError(t, err)
	res := decode[struct {
		Keywords []string `json:"keywords"`
	}](t, out)
	assert.Contains(t, res.Keywords, "help@example.com")
}

func TestExtract_HTMLFromFile(t *testing.T) {
	page := writeFile(t, "page.html",
		"<html><body><p>연락처 help@example.com</p><script>var a = 'x@hidden.com';</script></body></html>")

	out, err := execute(t, "", "extract", "--html", "--file", page)
	require.NoError(t, err)
	res := decode[extractResult](t, out)
	assert.Contains(t, res.Regex["email"], "help@example.com")
	assert.NotContains(t, res.Regex["email"], "x@hidden.com")
}

func TestExtract_Errors(t *testing.T) {
	_, err := execute(t, "", "extract", "--file", filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorContains(t, err, "read input")

	_, err = execute(t, "\xff\xfe", "extract")
	assert.ErrorContains(t, err, "UTF-8")

	bad := writeFile(t, "bad.dic", "단어\tBOGUS\n")
	_, err = execute(t, "", "extract", "--dict", bad, "텍스트")
	assert.Error(t, err)
}

func TestTokens(t *testing.T) {
	out, err := execute(t, "", "tokens", "회의록2024_final.txt")
	require.NoError(t, err)
	res := decode[struct {
		Tokens []string `json:"tokens"`
	}](t, out)
	if diff := cmp.Diff([]string{"회의록2024", "회의록", "2024", "final", "txt"}, res.Tokens); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}

	_, err = execute(t, "", "tokens")
	assert.Error(t, err)
}

func TestDict_AddAndList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.dic")

	out, err := execute(t, "", "dict", "--path", path, "add", "텍스트피처", "삼성\tNNP")
	require.NoError(t, err)
	added := decode[dictAddOutput](t, out)
	assert.Equal(t, 2, added.Added)
	assert.Equal(t, 2, added.Size)

	out, err = execute(t, "", "dict", "--path", path, "add", "텍스트피처")
	require.NoError(t, err)
	again := decode[dictAddOutput](t, out)
	assert.Equal(t, 0, again.Added)
	assert.Equal(t, 2, again.Size)

	out, err = execute(t, "", "dict", "--path", path, "list")
	require.NoError(t, err)
	list := decode[dictListOutput](t, out)
	want := []morph.Entry{
		{Word: "텍스트피처", Tag: morph.NNP},
		{Word: "삼성", Tag: morph.NNP},
	}
	if diff := cmp.Diff(want, list.Entries); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestDict_SqliteBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dict.db")

	_, err := execute(t, "", "dict", "--backend", "sqlite", "--path", path, "add", "텍스트피처")
	require.NoError(t, err)

	out, err := execute(t, "", "dict", "--backend", "sqlite", "--path", path, "list")
	require.NoError(t, err)
	assert.Len(t, decode[dictListOutput](t, out).Entries, 1)
}

func TestDict_Errors(t *testing.T) {
	_, err := execute(t, "", "dict", "list")
	assert.ErrorIs(t, err, errVolatileBackend)

	path := filepath.Join(t.TempDir(), "user.dic")
	_, err = execute(t, "", "dict", "--path", path, "add", "단어\tBOGUS")
	assert.Error(t, err)
}

func TestHealthcheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/readyz" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	out, err := execute(t, "", "healthcheck", "--mode", "live", "--addr", srv.URL)
	require.NoError(t, err)
	live := decode[healthcheckOutput](t, out)
	assert.Equal(t, "ok", live.Status)
	assert.Equal(t, srv.URL+"/healthz", live.URL)

	out, err = execute(t, "", "healthcheck", "--addr", srv.URL)
	require.Error(t, err)
	ready := decode[healthcheckOutput](t, out)
	assert.Equal(t, "unhealthy", ready.Status)
	assert.Equal(t, http.StatusServiceUnavailable, ready.Code)

	_, err = execute(t, "", "healthcheck", "--mode", "bogus")
	assert.ErrorContains(t, err, "unknown mode")
}

func TestConfig_ValidateAndDump(t *testing.T) {
	good := writeFile(t, "config.yaml", "logLevel: debug\ncache:\n  redis:\n    password: secret\n")

	out, err := execute(t, "", "--config", good, "config", "validate")
	require.NoError(t, err)
	assert.True(t, decode[configValidateOutput](t, out).Valid)

	out, err = execute(t, "", "--config", good, "config", "dump")
	require.NoError(t, err)
	assert.Contains(t, out, "logLevel: debug")
	assert.Contains(t, out, "***")
	assert.NotContains(t, out, "secret")

	bad := writeFile(t, "bad.yaml", "unknownKey: 1\n")
	out, err = execute(t, "", "--config", bad, "config", "validate")
	require.Error(t, err)
	assert.False(t, decode[configValidateOutput](t, out).Valid)

	_, err = execute(t, "", "config", "validate")
	assert.ErrorIs(t, err, errConfigRequired)
}

func TestServe_StopsOnCancel(t *testing.T) {
	cfg := writeFile(t, "config.yaml", `api:
  listenAddr: 127.0.0.1:0
metrics:
  enabled: false
`)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := executeContext(ctx, t, "", "--config", cfg, "serve")
	assert.NoError(t, err)
}
