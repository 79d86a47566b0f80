// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package pattern

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// rule is one regex feature. RE2 has no look-around, so the boundary
// assertions of the feature grammar are expressed as rune predicates that
// the scanner evaluates around every candidate match.
type rule struct {
	key Key

	find   *regexp.Regexp // unanchored, locates candidate starts
	prefix *regexp.Regexp // ^(?:expr), preferred match at a fixed start
	whole  *regexp.Regexp // ^(?:expr)$, used when the preferred end fails notAfter

	// notBefore/notAfter reject a match when the rune just outside the span
	// satisfies them. nil disables the assertion.
	notBefore func(rune) bool
	notAfter  func(rune) bool

	// alphabet bounds how far a match starting at a position can reach.
	alphabet func(rune) bool

	// validate post-filters accepted matches (calendar checks).
	validate func(string) bool

	// nested matches are dropped when an earlier accepted span covers them.
	dropNested bool
}

func newRule(key Key, expr string) *rule {
	return &rule{
		key:    key,
		find:   regexp.MustCompile(expr),
		prefix: regexp.MustCompile(`^(?:` + expr + `)`),
		whole:  regexp.MustCompile(`^(?:` + expr + `)$`),
	}
}

func (r *rule) bounded() bool {
	return r.notBefore != nil || r.notAfter != nil
}

// spans returns all non-overlapping matches, scanning left to right.
func (r *rule) spans(text string) []Span {
	if !r.bounded() {
		locs := r.find.FindAllStringIndex(text, -1)
		out := make([]Span, 0, len(locs))
		for _, loc := range locs {
			out = append(out, Span{Start: loc[0], End: loc[1]})
		}
		return out
	}

	var out []Span
	pos := 0
	for pos < len(text) {
		loc := r.find.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start := pos + loc[0]
		if end, ok := r.matchAt(text, start); ok {
			out = append(out, Span{Start: start, End: end})
			pos = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		pos = start + size
	}
	return out
}

// matchAt resolves the match that begins exactly at start, honouring both
// boundary assertions. The regex-preferred end is tried first; when the
// trailing assertion rejects it, the longest end inside the alphabet window
// that still forms a complete match is used instead.
func (r *rule) matchAt(text string, start int) (int, bool) {
	if r.notBefore != nil && start > 0 {
		prev, _ := utf8.DecodeLastRuneInString(text[:start])
		if r.notBefore(prev) {
			return 0, false
		}
	}

	if loc := r.prefix.FindStringIndex(text[start:]); loc != nil && loc[1] > 0 {
		end := start + loc[1]
		if r.acceptEnd(text, end) {
			return end, true
		}
	}

	limit := start
	for limit < len(text) {
		c, size := utf8.DecodeRuneInString(text[limit:])
		if r.alphabet == nil || !r.alphabet(c) {
			break
		}
		limit += size
	}

	for end := limit; end > start; {
		if r.whole.MatchString(text[start:end]) && r.acceptEnd(text, end) {
			return end, true
		}
		_, size := utf8.DecodeLastRuneInString(text[start:end])
		end -= size
	}
	return 0, false
}

func (r *rule) acceptEnd(text string, end int) bool {
	if r.notAfter == nil || end >= len(text) {
		return true
	}
	next, _ := utf8.DecodeRuneInString(text[end:])
	return !r.notAfter(next)
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

func isWord(c rune) bool {
	return c == '_' || isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isWordOrSlash(c rune) bool {
	return c == '/' || isWord(c)
}

// isSpace matches the ASCII whitespace class used by the patterns.
func isSpace(c rune) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func anyOf(chars string, classes ...func(rune) bool) func(rune) bool {
	return func(c rune) bool {
		if strings.ContainsRune(chars, c) {
			return true
		}
		for _, cls := range classes {
			if cls(c) {
				return true
			}
		}
		return false
	}
}
