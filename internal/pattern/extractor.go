// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package pattern extracts regex features (dates, URLs, e-mail addresses,
// Korean and international phone numbers, bank accounts and numbers) from
// free text.
package pattern

// Extractor runs the regex rules in canonical key order. It holds only
// compiled, immutable state and is safe for concurrent use.
type Extractor struct {
	rules []*rule
}

// New compiles the rule set.
func New() *Extractor {
	digit := isDigit

	shortDate := newRule(ShortDate6, `\d{6}`)
	shortDate.notBefore, shortDate.notAfter = digit, digit
	shortDate.alphabet = digit
	shortDate.validate = validShortDate6

	url := newRule(URL,
		`(?i)(?:https?|ftp)://[\w\-.\x{3131}-\x{D79D}@]+(?:/[\w\-./?&=#%:+~\x{3131}-\x{D79D}@]*)?`)

	email := newRule(Email, `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	email.notBefore, email.notAfter = isWordOrSlash, isWordOrSlash
	email.alphabet = anyOf("._%+-@", isWord)

	date := newRule(Date, `(?:19|20)\d{2}[./-](?:0?[1-9]|1[0-2])[./-](?:0?[1-9]|[12][0-9]|3[01])`)
	date.notBefore, date.notAfter = digit, digit
	date.alphabet = anyOf("./-", digit)
	date.validate = validSeparatedDate

	phoneKR := newRule(PhoneKR, `0\d{1,2}[-\s]?\d{3,4}[-\s]?\d{4}`)
	phoneKR.notBefore, phoneKR.notAfter = digit, digit
	phoneKR.alphabet = anyOf("-", digit, isSpace)
	phoneKR.dropNested = true

	phoneIntl := newRule(PhoneIntl, `\+\d{1,3}[-\s]?(?:\d{1,4}[-\s]?){2,4}\d{2,4}`)
	phoneIntl.notBefore, phoneIntl.notAfter = digit, digit
	phoneIntl.alphabet = anyOf("+-", digit, isSpace)
	phoneIntl.dropNested = true

	account := newRule(Account, `(?:\d{2,4}[-\s\x{2012}]?){2,3}\d{5,6}`)
	account.notBefore, account.notAfter = digit, digit
	account.alphabet = anyOf("-\u2012", digit, isSpace)
	account.dropNested = true

	number := newRule(Number, `(?:\d{1,3}(?:,\d{3})+)(?:\.\d+)?|\d+\.\d+|\d+`)
	number.notBefore, number.notAfter = digit, digit
	number.alphabet = anyOf(",.", digit)
	number.dropNested = true

	return &Extractor{rules: []*rule{
		shortDate, url, email, date, phoneKR, phoneIntl, account, number,
	}}
}

var defaultExtractor = New()

// Default returns the shared package-level extractor.
func Default() *Extractor {
	return defaultExtractor
}

// Extract runs every rule in canonical order. Calendar-invalid dates are
// discarded; number, phone and account matches nested inside an already
// accepted span are discarded. Every accepted match claims its span.
func (e *Extractor) Extract(text string) Matches {
	result := NewMatches()
	if text == "" {
		return result
	}

	var occupied []Span
	for _, r := range e.rules {
		var found []string
		for _, sp := range r.spans(text) {
			value := text[sp.Start:sp.End]
			if r.validate != nil && !r.validate(value) {
				continue
			}
			if r.dropNested && coveredByAny(sp, occupied) {
				continue
			}
			found = append(found, value)
			occupied = append(occupied, sp)
		}
		result.set(r.key, found)
	}
	return result
}

// OccupiedSpans returns the raw spans of every rule except Number, without
// calendar validation or nesting filters. Keyword extraction uses them to
// skip analyzer tokens that belong to a structured entity.
func (e *Extractor) OccupiedSpans(text string) []Span {
	var spans []Span
	for _, r := range e.rules {
		if r.key == Number {
			continue
		}
		spans = append(spans, r.spans(text)...)
	}
	return spans
}

// Extract runs the default extractor.
func Extract(text string) Matches {
	return defaultExtractor.Extract(text)
}

// OccupiedSpans runs the default extractor.
func OccupiedSpans(text string) []Span {
	return defaultExtractor.OccupiedSpans(text)
}

// InAny reports whether pos falls inside any of spans.
func InAny(pos int, spans []Span) bool {
	for _, sp := range spans {
		if sp.Contains(pos) {
			return true
		}
	}
	return false
}

func coveredByAny(sp Span, spans []Span) bool {
	for _, o := range spans {
		if o.Covers(sp) {
			return true
		}
	}
	return false
}
