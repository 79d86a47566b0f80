// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package morph

import "strings"

// analyzeHangul segments one run of Hangul. The returned pieces
// concatenate back to the run.
func (a *Analyzer) analyzeHangul(runes []rune) []Entry {
	lx := a.lex
	whole := string(runes)

	if out, ok := lx.cover(runes); ok {
		return out
	}
	if tag, ok := josa[whole]; ok {
		return []Entry{{Word: whole, Tag: tag}}
	}
	if tag, ok := endings[whole]; ok {
		return []Entry{{Word: whole, Tag: tag}}
	}

	josaSufs := suffixes(runes, josa, maxJosaRunes)
	for _, j := range josaSufs {
		stem := runes[:len(runes)-len([]rune(j))]
		if out, ok := lx.coverNominal(stem); ok {
			return append(out, Entry{Word: j, Tag: josa[j]})
		}
	}

	endSufs := suffixes(runes, endings, maxEndingRunes)
	for _, e := range endSufs {
		stem := runes[:len(runes)-len([]rune(e))]
		if out, ok := lx.coverNominal(stem); ok {
			return append(out, endingPieces(e)...)
		}
	}

	longJosa := len(josaSufs) > 0 && len([]rune(josaSufs[0])) >= 2
	for _, e := range endSufs {
		n := len([]rune(e))
		if n < 2 && (e != "다" || longJosa) {
			continue
		}
		stem := runes[:len(runes)-n]
		if lightVerbEnding(e) || copulaEnding(e) {
			return append(a.greedy(stem), endingPieces(e)...)
		}
		return []Entry{{Word: string(stem), Tag: VV}, {Word: e, Tag: endings[e]}}
	}

	for _, j := range josaSufs {
		stem := runes[:len(runes)-len([]rune(j))]
		if len(stem) < 2 {
			continue
		}
		return append(a.greedy(stem), Entry{Word: j, Tag: josa[j]})
	}

	return a.greedy(runes)
}

func copulaEnding(e string) bool {
	return strings.HasPrefix(e, "이") || strings.HasPrefix(e, "입")
}

func endingPieces(e string) []Entry {
	if !lightVerbEnding(e) {
		return []Entry{{Word: e, Tag: endings[e]}}
	}
	verb, rest := splitLightVerb(e)
	out := []Entry{{Word: verb, Tag: XSV}}
	if rest != "" {
		tag, ok := endings[rest]
		if !ok || tag == XSV {
			tag = EC
		}
		out = append(out, Entry{Word: rest, Tag: tag})
	}
	return out
}

// greedy takes the longest multi-syllable lexicon word at each position.
// Unmatched stretches become NA, or NNB when a single syllable.
func (a *Analyzer) greedy(runes []rune) []Entry {
	var out []Entry
	unknown := -1
	flushUnknown := func(end int) {
		if unknown < 0 {
			return
		}
		tag := NA
		if end-unknown == 1 {
			tag = NNB
		}
		out = append(out, Entry{Word: string(runes[unknown:end]), Tag: tag})
		unknown = -1
	}

	for i := 0; i < len(runes); {
		matched := 0
		for l := min(a.lex.maxRunes, len(runes)-i); l >= 2; l-- {
			if _, ok := a.lex.lookup(string(runes[i : i+l])); ok {
				matched = l
				break
			}
		}
		if matched == 0 {
			if unknown < 0 {
				unknown = i
			}
			i++
			continue
		}
		flushUnknown(i)
		w := string(runes[i : i+matched])
		tag, _ := a.lex.lookup(w)
		out = append(out, Entry{Word: w, Tag: tag})
		i += matched
	}
	flushUnknown(len(runes))
	return out
}
