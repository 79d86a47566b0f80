// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import "errors"

// Wiring errors reported by NewManager and App.Run.
var (
	ErrMissingLogger     = errors.New("daemon: an enabled logger is required")
	ErrMissingAPIHandler = errors.New("daemon: the extraction API handler is required")
	ErrMissingManager    = errors.New("daemon: app has no server manager")

	// ErrManagerNotStarted is returned by Shutdown before Start.
	ErrManagerNotStarted = errors.New("daemon: manager not started")
)
