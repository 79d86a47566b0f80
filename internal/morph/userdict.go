// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package morph

import (
	"sort"
	"unicode/utf8"
)

type userDict struct {
	words   map[string]Tag
	byFirst map[rune][]string
}

func newUserDict(entries []Entry) *userDict {
	ud := &userDict{
		words:   make(map[string]Tag, len(entries)),
		byFirst: make(map[rune][]string),
	}
	for _, e := range entries {
		if e.Word == "" {
			continue
		}
		tag := e.Tag
		if tag == "" {
			tag = NNP
		}
		if _, dup := ud.words[e.Word]; !dup {
			r, _ := utf8.DecodeRuneInString(e.Word)
			ud.byFirst[r] = append(ud.byFirst[r], e.Word)
		}
		// later entries override the tag
		ud.words[e.Word] = tag
	}
	for r, words := range ud.byFirst {
		sort.Slice(words, func(i, j int) bool {
			if len(words[i]) != len(words[j]) {
				return len(words[i]) > len(words[j])
			}
			return words[i] < words[j]
		})
		ud.byFirst[r] = words
	}
	return ud
}

// match returns the longest entry starting at byte offset i. Entries
// with a Latin or digit edge do not match inside a longer run of the
// same class.
func (ud *userDict) match(text string, i int) (string, Tag, bool) {
	r, _ := utf8.DecodeRuneInString(text[i:])
	cands := ud.byFirst[r]
	if len(cands) == 0 {
		return "", "", false
	}
	for _, w := range cands {
		if len(text)-i < len(w) || text[i:i+len(w)] != w {
			continue
		}
		if !edgeOK(text, i, i+len(w)) {
			continue
		}
		return w, ud.words[w], true
	}
	return "", "", false
}

func edgeOK(text string, begin, end int) bool {
	if begin > 0 {
		prev, _ := utf8.DecodeLastRuneInString(text[:begin])
		first, _ := utf8.DecodeRuneInString(text[begin:])
		if sticky(prev, first) {
			return false
		}
	}
	if end < len(text) {
		last, _ := utf8.DecodeLastRuneInString(text[:end])
		next, _ := utf8.DecodeRuneInString(text[end:])
		if sticky(last, next) {
			return false
		}
	}
	return true
}

func sticky(a, b rune) bool {
	ca, cb := classify(a), classify(b)
	return ca == cb && (ca == clsLatin || ca == clsDigit)
}

func (ud *userDict) list() []Entry {
	out := make([]Entry, 0, len(ud.words))
	for w, t := range ud.words {
		out = append(out, Entry{Word: w, Tag: t})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Word < out[j].Word })
	return out
}
