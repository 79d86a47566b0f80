// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package morph

import "errors"

// ErrUnknownTag is returned for dictionary lines carrying an unknown tag.
var ErrUnknownTag = errors.New("unknown POS tag")
