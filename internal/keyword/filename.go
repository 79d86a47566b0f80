// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package keyword

import (
	"regexp"
	"strings"

	"github.com/ManuGH/textfeature/internal/normalize"
)

var scriptBlockRe = regexp.MustCompile(`[가-힣]+|[a-zA-Z]+|[0-9]+`)

// SplitFilenameTokens breaks a file name into search tokens. Separators
// and symbols become spaces; a token mixing Hangul with Latin letters or
// digits also yields each script block.
func SplitFilenameTokens(filename string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if keepFilenameRune(r) {
			return r
		}
		return ' '
	}, normalize.NFC(filename))

	result := newOrderedSet()
	for _, tok := range strings.Fields(cleaned) {
		result.add(tok)

		blocks := scriptBlockRe.FindAllString(tok, -1)
		var hangul, other int
		for _, b := range blocks {
			if isSyllable([]rune(b)[0]) {
				hangul++
			} else {
				other++
			}
		}
		if len(blocks) > 1 && hangul > 0 && other > 0 {
			result.addAll(blocks)
		}
	}
	return result.values()
}

func keepFilenameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == ' ', r == '\t', r == '\n', r == '\v', r == '\f', r == '\r':
		return true
	case isSyllable(r),
		r >= 0x1100 && r <= 0x11FF,
		r >= 0x3130 && r <= 0x318F:
		return true
	}
	return false
}

func isSyllable(r rune) bool {
	return r >= 0xAC00 && r <= 0xD7A3
}
