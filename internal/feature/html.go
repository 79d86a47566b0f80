// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package feature

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document formats accepted by ExtractBatch and the API.
const (
	FormatText = "text"
	FormatHTML = "html"
)

// TextFromHTML returns the visible text of markup. Script, style and
// template contents are dropped; text nodes are joined by single spaces.
func TextFromHTML(markup string) string {
	z := html.NewTokenizer(strings.NewReader(markup))
	var parts []string
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or a read error; either way the text seen so far is kept
			return strings.Join(parts, " ")
		case html.StartTagToken:
			if hidden(z) {
				skip++
			}
		case html.EndTagToken:
			if hidden(z) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip > 0 {
				continue
			}
			if text := strings.Join(strings.Fields(string(z.Text())), " "); text != "" {
				parts = append(parts, text)
			}
		}
	}
}

func hidden(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch atom.Lookup(name) {
	case atom.Script, atom.Style, atom.Template, atom.Noscript:
		return true
	}
	return false
}
