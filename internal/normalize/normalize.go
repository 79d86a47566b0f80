// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package normalize holds the text normalisation helpers shared by the
// analyzer, the extractors and the cache layer.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NFC returns s in Unicode normalisation form C. Decomposed Hangul jamo
// sequences (common in macOS file names) are composed into syllables.
func NFC(s string) string {
	if norm.NFC.IsNormalString(s) {
		return s
	}
	return norm.NFC.String(s)
}

// IsPunct reports whether r is ASCII punctuation or a curly quote.
func IsPunct(r rune) bool {
	switch r {
	case '“', '”', '‘', '’':
		return true
	}
	if r > unicode.MaxASCII {
		return false
	}
	return strings.ContainsRune("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", r)
}

// TrimPunct strips leading and trailing punctuation (see IsPunct).
func TrimPunct(s string) string {
	return strings.TrimFunc(s, IsPunct)
}

// MapHash deterministically marshals m (json.Marshal sorts map keys) and
// returns the hex SHA-256 of the result. An empty map hashes to "".
func MapHash(m map[string]any) (string, error) {
	if len(m) == 0 {
		return "", nil
	}

	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(b)
	return hex.EncodeToString(hash[:]), nil
}
