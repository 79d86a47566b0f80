// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package morph implements a dictionary driven Korean morphological
// analyzer with user dictionary support.
package morph

import (
	"sync/atomic"
	"unicode"
	"unicode/utf8"
)

// Analyzer splits text into tagged morphemes. It is safe for concurrent
// use; the user dictionary can be swapped while analyses are running.
type Analyzer struct {
	lex  *lexicon
	user atomic.Pointer[userDict]
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLexicon replaces the embedded lexicon.
func WithLexicon(entries []Entry) Option {
	return func(a *Analyzer) {
		a.lex = newLexicon(entries)
	}
}

// WithUserDictionary installs initial user dictionary entries.
func WithUserDictionary(entries []Entry) Option {
	return func(a *Analyzer) {
		a.user.Store(newUserDict(entries))
	}
}

// New builds an analyzer backed by the embedded lexicon.
func New(opts ...Option) (*Analyzer, error) {
	a := &Analyzer{}
	for _, opt := range opts {
		opt(a)
	}
	if a.lex == nil {
		lx, err := loadDefaultLexicon()
		if err != nil {
			return nil, err
		}
		a.lex = lx
	}
	return a, nil
}

// LexiconSize returns the number of built-in lexicon words.
func (a *Analyzer) LexiconSize() int {
	return a.lex.size()
}

// SetUserDictionary atomically replaces the user dictionary.
func (a *Analyzer) SetUserDictionary(entries []Entry) {
	a.user.Store(newUserDict(entries))
}

// UserDictionary returns the installed user entries sorted by word.
func (a *Analyzer) UserDictionary() []Entry {
	ud := a.user.Load()
	if ud == nil {
		return nil
	}
	return ud.list()
}

// Analyze tags every morpheme in text. Whitespace is dropped.
func (a *Analyzer) Analyze(text string) []Token {
	if text == "" {
		return nil
	}
	s := &scan{a: a, text: text, user: a.user.Load()}
	return s.run()
}

type class uint8

const (
	clsNone class = iota
	clsSpace
	clsHangul
	clsLatin
	clsDigit
	clsHan
	clsSymbol
)

func isHangul(r rune) bool {
	return (r >= 0xAC00 && r <= 0xD7A3) ||
		(r >= 0x1100 && r <= 0x11FF) ||
		(r >= 0x3130 && r <= 0x318F)
}

func classify(r rune) class {
	switch {
	case r == utf8.RuneError:
		return clsSymbol
	case unicode.IsSpace(r):
		return clsSpace
	case isHangul(r):
		return clsHangul
	case unicode.IsDigit(r):
		return clsDigit
	case unicode.Is(unicode.Han, r):
		return clsHan
	case unicode.IsLetter(r):
		return clsLatin
	}
	return clsSymbol
}

func symbolTag(r rune) Tag {
	switch r {
	case '.', '?', '!':
		return SF
	case ',', '·', ':', '/':
		return SP
	case '"', '\'', '(', ')', '[', ']', '{', '}', '<', '>',
		'‘', '’', '“', '”',
		'〈', '〉', '《', '》', '「', '」', '『', '』':
		return SS
	case '…':
		return SE
	case '-', '~', '–', '—', '〜':
		return SO
	}
	return SW
}

type scan struct {
	a    *Analyzer
	text string
	user *userDict
	out  []Token
}

func (s *scan) run() []Token {
	start, cls := 0, clsNone
	for i := 0; i < len(s.text); {
		if s.user != nil {
			if word, tag, ok := s.user.match(s.text, i); ok {
				s.flush(start, i, cls)
				s.emit(word, tag, i)
				i += len(word)
				start, cls = i, clsNone
				continue
			}
		}
		r, size := utf8.DecodeRuneInString(s.text[i:])
		c := classify(r)
		if c != cls || c == clsSymbol {
			s.flush(start, i, cls)
			start, cls = i, c
		}
		i += size
	}
	s.flush(start, len(s.text), cls)
	return s.out
}

func (s *scan) emit(morph string, tag Tag, begin int) {
	s.out = append(s.out, Token{Morph: morph, Tag: tag, Begin: begin, End: begin + len(morph)})
}

func (s *scan) flush(start, end int, cls class) {
	if start >= end {
		return
	}
	chunk := s.text[start:end]
	switch cls {
	case clsHangul:
		pos := start
		for _, e := range s.a.analyzeHangul([]rune(chunk)) {
			s.emit(e.Word, e.Tag, pos)
			pos += len(e.Word)
		}
	case clsLatin:
		s.emit(chunk, SL, start)
	case clsDigit:
		s.emit(chunk, SN, start)
	case clsHan:
		s.emit(chunk, SH, start)
	case clsSymbol:
		r, _ := utf8.DecodeRuneInString(chunk)
		s.emit(chunk, symbolTag(r), start)
	}
}
