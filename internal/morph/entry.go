// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package morph

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Token is one analysed morpheme. Begin and End are byte offsets into the
// analysed text.
type Token struct {
	Morph string `json:"morph"`
	Tag   Tag    `json:"tag"`
	Begin int    `json:"begin"`
	End   int    `json:"end"`
}

// Entry is one dictionary line: a surface form and its tag.
type Entry struct {
	Word string `json:"word"`
	Tag  Tag    `json:"tag"`
}

// BaseWord returns the first whitespace-separated part of the surface.
func (e Entry) BaseWord() string {
	fields := strings.Fields(e.Word)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// String renders the entry in dictionary line format.
func (e Entry) String() string {
	return FormatEntry(e)
}

// FormatEntry renders "word<TAB>TAG".
func FormatEntry(e Entry) string {
	return e.Word + "\t" + string(e.Tag)
}

// ParseEntry parses one dictionary line. The tag follows the last tab; a
// line without a tab is a proper noun. Blank lines and '#' comments yield
// ok=false. An unknown tag is an error.
func ParseEntry(line string) (Entry, bool, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return Entry{}, false, nil
	}

	idx := strings.LastIndexByte(trimmed, '\t')
	if idx < 0 {
		return Entry{Word: trimmed, Tag: NNP}, true, nil
	}

	word := strings.TrimSpace(trimmed[:idx])
	tag := Tag(strings.ToUpper(strings.TrimSpace(trimmed[idx+1:])))
	if word == "" {
		return Entry{}, false, nil
	}
	if tag == "" {
		tag = NNP
	}
	if !tag.Valid() {
		return Entry{}, false, fmt.Errorf("%w: %q in line %q", ErrUnknownTag, tag, line)
	}
	return Entry{Word: word, Tag: tag}, true, nil
}

// ParseEntries reads a dictionary file body line by line.
func ParseEntries(r io.Reader) ([]Entry, error) {
	var out []Entry
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		e, ok, err := ParseEntry(sc.Text())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if ok {
			out = append(out, e)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}
	return out, nil
}

// WriteEntries writes entries in dictionary line format.
func WriteEntries(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)
	for _, e := range entries {
		if _, err := bw.WriteString(FormatEntry(e) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
