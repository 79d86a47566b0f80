// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type healthcheckOutput struct {
	Status string `json:"status"`
	Mode   string `json:"mode"`
	URL    string `json:"url"`
	Code   int    `json:"code,omitempty"`
	Error  string `json:"error,omitempty"`
}

func newHealthcheckCmd() *cobra.Command {
	var (
		mode    string
		addr    string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Probe a running daemon",
		Long:  "Probe a running daemon. Exits non-zero unless the probe answers 200.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := "/readyz"
			switch mode {
			case "ready":
			case "live":
				path = "/healthz"
			default:
				return fmt.Errorf("unknown mode %q (use ready or live)", mode)
			}

			base := strings.TrimRight(addr, "/")
			if !strings.Contains(base, "://") {
				base = "http://" + base
			}
			out := healthcheckOutput{Mode: mode, URL: base + path}

			code, err := probe(cmd.Context(), out.URL, timeout)
			out.Code = code
			switch {
			case err != nil:
				out.Status = "unreachable"
				out.Error = err.Error()
			case code != http.StatusOK:
				out.Status = "unhealthy"
			default:
				out.Status = "ok"
			}
			if werr := writeJSON(cmd.OutOrStdout(), out); werr != nil {
				return werr
			}
			if out.Status != "ok" {
				return fmt.Errorf("healthcheck failed: %s", out.Status)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "ready", "probe: ready (default) or live")
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "daemon address (host:port or URL)")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "probe timeout")
	return cmd
}

func probe(ctx context.Context, url string, timeout time.Duration) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	_ = resp.Body.Close()
	return resp.StatusCode, nil
}
