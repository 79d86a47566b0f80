// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package pattern

import (
	"bytes"
	"encoding/json"
)

// Span is a half-open byte range [Start, End) into the analysed text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether pos lies inside the span.
func (s Span) Contains(pos int) bool {
	return pos >= s.Start && pos < s.End
}

// Covers reports whether o lies entirely inside s.
func (s Span) Covers(o Span) bool {
	return o.Start >= s.Start && o.End <= s.End
}

// Matches holds the extracted values of every key. A value built by
// NewMatches or Extract carries every key, with an empty slice for keys
// without hits. The zero Matches carries no keys and marshals as {}.
type Matches struct {
	values [numKeys][]string
}

// NewMatches returns a Matches value with an empty list for every key.
func NewMatches() Matches {
	var m Matches
	for k := range m.values {
		m.values[k] = []string{}
	}
	return m
}

// Get returns the values extracted for k.
func (m Matches) Get(k Key) []string {
	if k < 0 || k >= numKeys || m.values[k] == nil {
		return []string{}
	}
	return m.values[k]
}

func (m *Matches) set(k Key, values []string) {
	if values == nil {
		values = []string{}
	}
	m.values[k] = values
}

// Each calls fn for every key in canonical order.
func (m Matches) Each(fn func(Key, []string)) {
	for _, k := range Keys() {
		fn(k, m.Get(k))
	}
}

// Total returns the number of values across all keys.
func (m Matches) Total() int {
	n := 0
	for _, v := range m.values {
		n += len(v)
	}
	return n
}

// Map returns the present keys keyed by wire name.
func (m Matches) Map() map[string][]string {
	out := make(map[string][]string, numKeys)
	for _, k := range Keys() {
		if m.values[k] != nil {
			out[k.KeyName()] = m.values[k]
		}
	}
	return out
}

// MarshalJSON writes the present keys in canonical order.
func (m Matches) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, k := range Keys() {
		if m.values[k] == nil {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		name, _ := json.Marshal(k.KeyName())
		buf.Write(name)
		buf.WriteByte(':')
		vals, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vals)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts the object form written by MarshalJSON. Unknown
// members are rejected so that cached payloads from other versions fail loudly.
func (m *Matches) UnmarshalJSON(data []byte) error {
	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = Matches{}
	for name, vals := range raw {
		k, err := ParseKey(name)
		if err != nil {
			return err
		}
		m.set(k, vals)
	}
	return nil
}
