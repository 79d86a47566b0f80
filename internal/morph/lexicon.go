// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package morph

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"
	"unicode/utf8"
)

//go:embed lexicon.txt
var embeddedLexicon []byte

// lexicon is a read-only word list keyed by surface form.
type lexicon struct {
	words    map[string]Tag
	maxRunes int
}

var (
	defaultLexiconOnce sync.Once
	defaultLexicon     *lexicon
	defaultLexiconErr  error
)

func loadDefaultLexicon() (*lexicon, error) {
	defaultLexiconOnce.Do(func() {
		entries, err := ParseEntries(bytes.NewReader(embeddedLexicon))
		if err != nil {
			defaultLexiconErr = fmt.Errorf("embedded lexicon: %w", err)
			return
		}
		defaultLexicon = newLexicon(entries)
	})
	return defaultLexicon, defaultLexiconErr
}

func newLexicon(entries []Entry) *lexicon {
	lx := &lexicon{words: make(map[string]Tag, len(entries))}
	for _, e := range entries {
		// first tag wins
		if _, dup := lx.words[e.Word]; dup {
			continue
		}
		lx.words[e.Word] = e.Tag
		if n := utf8.RuneCountInString(e.Word); n > lx.maxRunes {
			lx.maxRunes = n
		}
	}
	return lx
}

func (lx *lexicon) lookup(s string) (Tag, bool) {
	t, ok := lx.words[s]
	return t, ok
}

func (lx *lexicon) size() int {
	return len(lx.words)
}

// cover splits runes into lexicon words using as few words as possible.
// Single-syllable words only count when another piece is longer or the
// input is a single syllable.
func (lx *lexicon) cover(runes []rune) ([]Entry, bool) {
	n := len(runes)
	if n == 0 {
		return nil, false
	}
	const inf = 1 << 30
	best := make([]int, n+1)
	from := make([]int, n+1)
	for i := 1; i <= n; i++ {
		best[i] = inf
	}
	for i := 0; i < n; i++ {
		if best[i] == inf {
			continue
		}
		for l := min(lx.maxRunes, n-i); l >= 1; l-- {
			if _, ok := lx.words[string(runes[i:i+l])]; !ok {
				continue
			}
			if best[i]+1 < best[i+l] {
				best[i+l] = best[i] + 1
				from[i+l] = i
			}
		}
	}
	if best[n] == inf {
		return nil, false
	}

	var out []Entry
	longest := 0
	for end := n; end > 0; end = from[end] {
		w := string(runes[from[end]:end])
		out = append(out, Entry{Word: w, Tag: lx.words[w]})
		longest = max(longest, end-from[end])
	}
	if n > 1 && longest < 2 {
		return nil, false
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, true
}

// coverNominal is cover restricted to results made only of nominals.
func (lx *lexicon) coverNominal(runes []rune) ([]Entry, bool) {
	out, ok := lx.cover(runes)
	if !ok {
		return nil, false
	}
	for _, e := range out {
		if !e.Tag.IsNominal() {
			return nil, false
		}
	}
	return out, true
}
