// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package feature

import "errors"

var (
	// ErrTooManyDocuments is returned when a batch exceeds the configured size.
	ErrTooManyDocuments = errors.New("too many documents in batch")
	// ErrUnknownFormat is returned for a document format other than text or html.
	ErrUnknownFormat = errors.New("unknown document format")
	// ErrNoStore is returned when a dictionary operation needs a store.
	ErrNoStore = errors.New("no dictionary store configured")
)
