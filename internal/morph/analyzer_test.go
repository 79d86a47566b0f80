// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package morph

import (
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnalyzer(t *testing.T, opts ...Option) *Analyzer {
	t.Helper()
	a, err := New(opts...)
	require.NoError(t, err)
	return a
}

func TestNew_LoadsEmbeddedLexicon(t *testing.T) {
	a := newTestAnalyzer(t)
	assert.Greater(t, a.LexiconSize(), 500)
	assert.Empty(t, a.UserDictionary())
}

func TestAnalyze_Empty(t *testing.T) {
	a := newTestAnalyzer(t)
	assert.Nil(t, a.Analyze(""))
	assert.Empty(t, a.Analyze("   \t\n"))
}

func TestAnalyze_FilenameSentence(t *testing.T) {
	a := newTestAnalyzer(t)
	text := "파일명은 미래보고서_991231.pptx이고, 회의는 2024/11/27(화요일)에 열렸습니다."

	tokens := a.Analyze(text)
	require.NotEmpty(t, tokens)

	var nouns []string
	for _, tok := range tokens {
		if tok.Tag.IsNominal() {
			nouns = append(nouns, tok.Morph)
		}
	}
	assert.Equal(t, []string{"파일", "명", "미래", "보고서", "회의", "화요일"}, nouns)

	for _, tok := range tokens {
		assert.Equal(t, tok.Morph, text[tok.Begin:tok.End], "offsets of %q", tok.Morph)
	}
}

func TestAnalyze_TagsAndOffsets(t *testing.T) {
	a := newTestAnalyzer(t)

	got := a.Analyze("파일명은 pptx이고")
	want := []Token{
		{Morph: "파일", Tag: NNG, Begin: 0, End: 6},
		{Morph: "명", Tag: NNB, Begin: 6, End: 9},
		{Morph: "은", Tag: JX, Begin: 9, End: 12},
		{Morph: "pptx", Tag: SL, Begin: 13, End: 17},
		{Morph: "이고", Tag: EC, Begin: 17, End: 23},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyze_HangulRuns(t *testing.T) {
	a := newTestAnalyzer(t)

	tests := []struct {
		name string
		text string
		want []Entry
	}{
		{"noun with particle", "회의는", []Entry{{"회의", NNG}, {"는", JX}}},
		{"compound noun", "미래보고서", []Entry{{"미래", NNG}, {"보고서", NNG}}},
		{"particle alone", "에", []Entry{{"에", JKB}}},
		{"verb with ending", "열렸습니다", []Entry{{"열렸", VV}, {"습니다", EF}}},
		{"noun with light verb", "검토했습니다", []Entry{{"검토", NNG}, {"했", XSV}, {"습니다", EF}}},
		{"noun with copula", "보고서입니다", []Entry{{"보고서", NNG}, {"입니다", EF}}},
		{"unknown with particle", "홍길동은", []Entry{{"홍길동", NA}, {"은", JX}}},
		{"unknown with light verb", "참석했습니다", []Entry{{"참석", NA}, {"했", XSV}, {"습니다", EF}}},
		{"unknown before known", "홍길동보고서를", []Entry{{"홍길동", NA}, {"보고서", NNG}, {"를", JKO}}},
		{"single syllables stay whole", "일주일", []Entry{{"일주일", NA}}},
		{"conjunction", "또는", []Entry{{"또는", MAJ}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got []Entry
			for _, tok := range a.Analyze(tc.text) {
				got = append(got, Entry{Word: tok.Morph, Tag: tok.Tag})
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAnalyze_Scripts(t *testing.T) {
	a := newTestAnalyzer(t)

	var tags []Tag
	for _, tok := range a.Analyze("ABC 123 漢字 (!)") {
		tags = append(tags, tok.Tag)
	}
	assert.Equal(t, []Tag{SL, SN, SH, SS, SF, SS}, tags)
}

func TestAnalyze_InvalidUTF8(t *testing.T) {
	a := newTestAnalyzer(t)

	tokens := a.Analyze("\xff회의")
	require.Len(t, tokens, 2)
	assert.Equal(t, Token{Morph: "\xff", Tag: SW, Begin: 0, End: 1}, tokens[0])
	assert.Equal(t, Token{Morph: "회의", Tag: NNG, Begin: 1, End: 7}, tokens[1])
}

func TestAnalyze_UserDictionaryWins(t *testing.T) {
	a := newTestAnalyzer(t, WithUserDictionary([]Entry{{Word: "미래보고서", Tag: NNP}}))

	tokens := a.Analyze("미래보고서_991231")
	require.NotEmpty(t, tokens)
	assert.Equal(t, Token{Morph: "미래보고서", Tag: NNP, Begin: 0, End: 15}, tokens[0])
}

func TestAnalyze_UserDictionaryWithSpace(t *testing.T) {
	a := newTestAnalyzer(t)
	a.SetUserDictionary([]Entry{{Word: "삼성 전자", Tag: NNP}})

	var got []Entry
	for _, tok := range a.Analyze("삼성 전자의 보고서") {
		got = append(got, Entry{Word: tok.Morph, Tag: tok.Tag})
	}
	assert.Equal(t, []Entry{{"삼성 전자", NNP}, {"의", JKG}, {"보고서", NNG}}, got)
}

func TestAnalyze_UserDictionaryRespectsLatinBoundary(t *testing.T) {
	a := newTestAnalyzer(t, WithUserDictionary([]Entry{{Word: "AI", Tag: NNP}}))

	got := a.Analyze("MAIL AI")
	want := []Token{
		{Morph: "MAIL", Tag: SL, Begin: 0, End: 4},
		{Morph: "AI", Tag: NNP, Begin: 5, End: 7},
	}
	assert.Equal(t, want, got)
}

func TestSetUserDictionary_ReplacesEntries(t *testing.T) {
	a := newTestAnalyzer(t)
	a.SetUserDictionary([]Entry{{Word: "나", Tag: NNG}, {Word: "가", Tag: NNP}})
	a.SetUserDictionary([]Entry{{Word: "다", Tag: NNP}})

	assert.Equal(t, []Entry{{Word: "다", Tag: NNP}}, a.UserDictionary())
}

func TestAnalyze_ConcurrentDictionarySwap(t *testing.T) {
	a := newTestAnalyzer(t)
	text := strings.Repeat("미래보고서를 검토했습니다. ", 20)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if i%2 == 0 {
					a.SetUserDictionary([]Entry{{Word: "미래보고서", Tag: NNP}})
				} else {
					assert.NotEmpty(t, a.Analyze(text))
				}
			}
		}(i)
	}
	wg.Wait()
}
