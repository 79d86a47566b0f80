// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package keyword

import (
	"regexp"
	"strings"

	"github.com/ManuGH/textfeature/internal/morph"
	"github.com/ManuGH/textfeature/internal/normalize"
)

var (
	multiDigitRe     = regexp.MustCompile(`^[0-9]{2,}$`)
	latinWordRe      = regexp.MustCompile(`^[a-zA-Z'\-.]+$`)
	syllablesRe      = regexp.MustCompile(`^[가-힣]{2,}$`)
	singleSyllableRe = regexp.MustCompile(`^[가-힣]$`)
	alnumRe          = regexp.MustCompile(`^[A-Za-z0-9]{2,}$`)
	singleLatinRe    = regexp.MustCompile(`^[A-Za-z]$`)
	filenameRe       = regexp.MustCompile(`\.[A-Za-z0-9]{2,6}(?:\s|$)`)
)

var nounTags = map[morph.Tag]struct{}{
	morph.NNG: {}, morph.NNP: {}, morph.NP: {}, morph.NR: {},
	morph.SH: {}, morph.SL: {}, morph.NA: {},
}

func isNounTag(t morph.Tag) bool {
	_, ok := nounTags[t]
	return ok
}

// normalizeToken composes, strips edge punctuation and removes a trailing
// particle from pure Hangul words when at least two syllables remain.
func normalizeToken(word string) string {
	cleaned := normalize.TrimPunct(normalize.NFC(word))
	if syllablesRe.MatchString(cleaned) {
		cleaned = stripJosa(cleaned)
	}
	return strings.TrimSpace(cleaned)
}

// stripJosa removes the particle that leaves the shortest stem. A stem
// shorter than two syllables leaves the word unchanged.
func stripJosa(word string) string {
	runes := []rune(word)
	for i := 1; i < len(runes); i++ {
		if _, ok := josaSuffixes[string(runes[i:])]; !ok {
			continue
		}
		if i >= 2 {
			return string(runes[:i])
		}
		return word
	}
	return word
}

func isMeaningfulWord(word string) bool {
	if multiDigitRe.MatchString(word) {
		return false
	}
	if latinWordRe.MatchString(word) {
		_, stop := englishStopwords[strings.ToLower(word)]
		return !stop
	}
	return true
}

func isMeaningfulFilenameToken(word string) bool {
	switch {
	case word == "":
		return false
	case singleSyllableRe.MatchString(word):
		return false
	case multiDigitRe.MatchString(word):
		return true
	}
	return isMeaningfulWord(word)
}

// LooksLikeFilename reports whether text contains something shaped like a
// file extension.
func LooksLikeFilename(text string) bool {
	return filenameRe.MatchString(text)
}

// removeRedundantShortLatin drops single Latin letters that prefix a longer
// alphanumeric noun, ignoring case.
func removeRedundantShortLatin(nouns *orderedSet) {
	if nouns.len() == 0 {
		return
	}
	var longer []string
	for _, n := range nouns.items {
		if alnumRe.MatchString(n) {
			longer = append(longer, strings.ToLower(n))
		}
	}
	if len(longer) == 0 {
		return
	}
	nouns.filter(func(n string) bool {
		if !singleLatinRe.MatchString(n) {
			return true
		}
		lower := strings.ToLower(n)
		for _, l := range longer {
			if strings.HasPrefix(l, lower) {
				return false
			}
		}
		return true
	})
}

// splitWhitespaceNouns replaces nouns containing spaces by their
// meaningful parts.
func splitWhitespaceNouns(nouns *orderedSet) *orderedSet {
	rebuilt := newOrderedSet()
	for _, n := range nouns.items {
		if !strings.Contains(n, " ") {
			rebuilt.add(n)
			continue
		}
		for _, part := range strings.Fields(n) {
			p := normalizeToken(part)
			if p == "" || !isMeaningfulWord(p) {
				continue
			}
			rebuilt.add(p)
		}
	}
	return rebuilt
}
