// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package keyword extracts noun keywords and structured entities from
// Korean and mixed-script text.
package keyword

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/ManuGH/textfeature/internal/log"
	"github.com/ManuGH/textfeature/internal/metrics"
	"github.com/ManuGH/textfeature/internal/morph"
	"github.com/ManuGH/textfeature/internal/pattern"
)

// Result is the outcome of one extraction.
type Result struct {
	Nouns []string        `json:"nouns"`
	Regex pattern.Matches `json:"regex"`
}

// Persister saves the user dictionary after every change.
type Persister interface {
	Save(ctx context.Context, entries []morph.Entry) error
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithAnalyzer sets the morphological analyzer.
func WithAnalyzer(a *morph.Analyzer) Option {
	return func(e *Extractor) { e.analyzer = a }
}

// WithPatterns sets the regex extractor.
func WithPatterns(p *pattern.Extractor) Option {
	return func(e *Extractor) { e.patterns = p }
}

// WithPersister stores dictionary changes.
func WithPersister(p Persister) Option {
	return func(e *Extractor) { e.persist = p }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Extractor) { e.logger = l }
}

// Extractor combines morphological analysis with pattern matching. It is
// safe for concurrent use.
type Extractor struct {
	analyzer *morph.Analyzer
	patterns *pattern.Extractor
	persist  Persister
	logger   zerolog.Logger

	mu         sync.RWMutex
	entries    []morph.Entry
	entryKeys  map[string]struct{}
	baseWords  *orderedSet
	generation atomic.Uint64

	// saveMu orders saves; savedGen is the generation last written.
	saveMu   sync.Mutex
	savedGen uint64
}

// New creates an Extractor. Without WithAnalyzer it loads the embedded
// lexicon.
func New(opts ...Option) (*Extractor, error) {
	e := &Extractor{
		logger:    log.WithComponent("keyword"),
		entryKeys: make(map[string]struct{}),
		baseWords: newOrderedSet(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.analyzer == nil {
		a, err := morph.New()
		if err != nil {
			return nil, fmt.Errorf("create analyzer: %w", err)
		}
		e.analyzer = a
	}
	metrics.SetLexiconSize(e.analyzer.LexiconSize())
	if e.patterns == nil {
		e.patterns = pattern.Default()
	}
	return e, nil
}

// Generation increases on every dictionary change.
func (e *Extractor) Generation() uint64 {
	return e.generation.Load()
}

// Extract returns the nouns and pattern matches of text.
func (e *Extractor) Extract(ctx context.Context, text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{Nouns: []string{}, Regex: pattern.Matches{}}
	}

	regex := e.patterns.Extract(text)
	occupied := e.patterns.OccupiedSpans(text)

	e.mu.RLock()
	baseWords := e.baseWords.values()
	e.mu.RUnlock()

	nouns := newOrderedSet()
	used := make(map[string]struct{})

	for _, tok := range e.analyzer.Analyze(text) {
		word := normalizeToken(tok.Morph)
		if word == "" || !isNounTag(tok.Tag) {
			continue
		}
		key := fmt.Sprintf("%s:%d", word, tok.Begin)
		if _, seen := used[key]; seen {
			continue
		}
		if pattern.InAny(tok.Begin, occupied) || !isMeaningfulWord(word) {
			continue
		}

		nouns.add(word)
		for _, base := range baseWords {
			if base != word && strings.Contains(word, base) && isMeaningfulWord(base) {
				nouns.add(base)
			}
		}
		used[key] = struct{}{}
	}

	if LooksLikeFilename(text) {
		for _, tok := range SplitFilenameTokens(text) {
			if n := normalizeToken(tok); isMeaningfulFilenameToken(n) {
				nouns.add(n)
			}
		}
	}

	nouns = splitWhitespaceNouns(nouns)
	removeRedundantShortLatin(nouns)

	e.logger.Debug().
		Str(log.FieldEvent, "keyword.extracted").
		Str(log.FieldRequestID, log.RequestIDFromContext(ctx)).
		Int(log.FieldTextBytes, len(text)).
		Int(log.FieldNouns, nouns.len()).
		Int(log.FieldMatches, regex.Total()).
		Msg("keywords extracted")

	return Result{Nouns: nouns.values(), Regex: regex}
}

// UniqueKeywords returns the nouns followed by every pattern value in
// canonical key order, without duplicates.
func (e *Extractor) UniqueKeywords(ctx context.Context, text string) []string {
	return UniqueKeywords(e.Extract(ctx, text))
}

// UniqueKeywords flattens r.
func UniqueKeywords(r Result) []string {
	out := newOrderedSet()
	out.addAll(r.Nouns)
	r.Regex.Each(func(_ pattern.Key, values []string) {
		out.addAll(values)
	})
	return out.values()
}

// normalizeUserDictionaryEntry turns a plain word into a proper noun line.
// Lines already carrying a tab or a space are kept verbatim.
func normalizeUserDictionaryEntry(word string) string {
	trimmed := strings.TrimSpace(word)
	if trimmed == "" {
		return ""
	}
	if strings.ContainsAny(trimmed, "\t ") {
		return trimmed
	}
	return trimmed + "\t" + string(morph.NNP)
}

// AddUserDictionary adds words to the user dictionary and returns how many
// entries were new. Blank and already known words are ignored. Nothing is
// applied when any word is invalid. When saving fails the entries stay
// active and ErrPersist is returned with the count.
func (e *Extractor) AddUserDictionary(ctx context.Context, words []string) (int, error) {
	var parsed []morph.Entry
	for _, w := range words {
		line := normalizeUserDictionaryEntry(w)
		if line == "" {
			continue
		}
		entry, ok, err := morph.ParseEntry(line)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrInvalidEntry, err)
		}
		if ok {
			parsed = append(parsed, entry)
		}
	}
	if len(parsed) == 0 {
		return 0, nil
	}

	e.mu.Lock()
	added := 0
	for _, entry := range parsed {
		key := morph.FormatEntry(entry)
		if _, dup := e.entryKeys[key]; dup {
			continue
		}
		e.entryKeys[key] = struct{}{}
		e.entries = append(e.entries, entry)
		if base := entry.BaseWord(); base != "" {
			e.baseWords.add(base)
		}
		added++
	}
	if added == 0 {
		e.mu.Unlock()
		return 0, nil
	}
	e.analyzer.SetUserDictionary(append([]morph.Entry(nil), e.entries...))
	gen := e.generation.Add(1)
	size := len(e.entries)
	e.mu.Unlock()

	e.logger.Info().
		Str(log.FieldEvent, "dictionary.updated").
		Int(log.FieldEntries, size).
		Uint64(log.FieldGeneration, gen).
		Int("added", added).
		Msg("user dictionary updated")

	if err := e.save(ctx); err != nil {
		return added, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return added, nil
}

// save writes the newest dictionary. Saves are serialized and each one
// snapshots under saveMu, so an older snapshot never lands after a newer one.
func (e *Extractor) save(ctx context.Context) error {
	if e.persist == nil {
		return nil
	}
	e.saveMu.Lock()
	defer e.saveMu.Unlock()

	e.mu.RLock()
	gen := e.generation.Load()
	snapshot := append([]morph.Entry(nil), e.entries...)
	e.mu.RUnlock()

	if gen <= e.savedGen {
		return nil
	}
	if err := e.persist.Save(ctx, snapshot); err != nil {
		return err
	}
	e.savedGen = gen
	return nil
}

// ReplaceUserDictionary installs entries as the complete user dictionary
// without persisting them.
func (e *Extractor) ReplaceUserDictionary(entries []morph.Entry) {
	keys := make(map[string]struct{}, len(entries))
	bases := newOrderedSet()
	var kept []morph.Entry
	for _, entry := range entries {
		key := morph.FormatEntry(entry)
		if _, dup := keys[key]; dup {
			continue
		}
		keys[key] = struct{}{}
		kept = append(kept, entry)
		if base := entry.BaseWord(); base != "" {
			bases.add(base)
		}
	}

	e.mu.Lock()
	e.entries = kept
	e.entryKeys = keys
	e.baseWords = bases
	e.analyzer.SetUserDictionary(kept)
	gen := e.generation.Add(1)
	e.mu.Unlock()

	e.logger.Info().
		Str(log.FieldEvent, "dictionary.replaced").
		Int(log.FieldEntries, len(kept)).
		Uint64(log.FieldGeneration, gen).
		Msg("user dictionary replaced")
}

// LoadUserDictionaryFile replaces the user dictionary with the contents
// of a dictionary file. A blank path is a no-op.
func (e *Extractor) LoadUserDictionaryFile(ctx context.Context, path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("read user dictionary %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	entries, err := morph.ParseEntries(f)
	if err != nil {
		return fmt.Errorf("read user dictionary %s: %w", path, err)
	}
	e.ReplaceUserDictionary(entries)
	return nil
}

// UserDictionary returns the active entries in insertion order.
func (e *Extractor) UserDictionary() []morph.Entry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]morph.Entry(nil), e.entries...)
}
