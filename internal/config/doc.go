// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config loads the textfeature configuration.
//
// Precedence is ENV > file > defaults. The YAML file is parsed strictly:
// unknown keys, multiple documents and trailing content are errors.
// Environment variables use the TEXTFEATURE_ prefix. A Holder keeps the
// active configuration and reloads it when the file changes.
package config
