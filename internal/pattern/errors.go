// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package pattern

import "errors"

// ErrUnknownKey is returned when a wire name does not map to a Key.
var ErrUnknownKey = errors.New("unknown pattern key")
