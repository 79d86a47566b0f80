// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package keyword

import "errors"

var (
	// ErrInvalidEntry is returned when a user dictionary word cannot be parsed.
	ErrInvalidEntry = errors.New("invalid user dictionary entry")
	// ErrPersist is returned when the dictionary was applied but could not be saved.
	ErrPersist = errors.New("persist user dictionary")
)
