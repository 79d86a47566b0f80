// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package morph

import (
	"strings"
	"unicode/utf8"
)

var josa = map[string]Tag{
	"이": JKS, "가": JKS, "께서": JKS, "에서는": JX,
	"을": JKO, "를": JKO,
	"의": JKG,
	"에": JKB, "에서": JKB, "에게": JKB, "한테": JKB, "께": JKB,
	"으로": JKB, "로": JKB, "으로서": JKB, "로서": JKB, "으로써": JKB, "로써": JKB,
	"처럼": JKB, "보다": JKB, "에게서": JKB, "한테서": JKB, "더러": JKB,
	"와": JC, "과": JC, "이랑": JC, "랑": JC,
	"은": JX, "는": JX, "도": JX, "만": JX, "까지": JX, "부터": JX,
	"조차": JX, "마저": JX, "이나": JX, "나": JX, "마다": JX, "밖에": JX,
	"이라도": JX, "라도": JX, "이든": JX, "든": JX, "이야": JX, "야": JX,
	"에는": JX, "에도": JX, "으로는": JX, "로는": JX, "와는": JX, "과는": JX,
	"에게는": JX, "까지는": JX, "부터는": JX, "에서도": JX, "만은": JX, "만이": JX,
	"이란": JX, "란": JX, "이라는": JX, "라는": JX, "으로도": JX, "로도": JX,
	"이라고": JKQ, "라고": JKQ,
	"이여": JKV, "여": JKV,
}

// endings maps predicate ending surfaces to their tag. Endings that begin
// with a light verb syllable are emitted as XSV when attached to a noun.
var endings = map[string]Tag{
	"다": EF, "요": EF, "죠": EF,
	"습니다": EF, "습니까": EF, "ㅂ니다": EF, "니다": EF,
	"었다": EF, "았다": EF, "였다": EF, "겠다": EF, "는다": EF,
	"었습니다": EF, "았습니다": EF, "였습니다": EF, "겠습니다": EF,
	"었어요": EF, "았어요": EF, "였어요": EF, "어요": EF, "아요": EF, "에요": EF, "예요": EF,
	"었고": EC, "았고": EC, "였고": EC,
	"어서": EC, "아서": EC, "지만": EC, "는데": EC, "니까": EC, "으면": EC, "도록": EC,
	"면서": EC, "으며": EC, "다가": EC, "려고": EC, "으려고": EC, "거나": EC,
	"이고": EC, "이며": EC, "이면": EC, "이지만": EC, "이라": EC, "이라서": EC,
	"입니다": EF, "입니까": EF, "이다": EF, "이에요": EF, "이었다": EF, "이었습니다": EF,
	"합니다": XSV, "했습니다": XSV, "했다": XSV, "한다": XSV, "하다": XSV,
	"해요": XSV, "했어요": XSV, "하는": XSV, "하고": XSV, "하여": XSV, "해서": XSV,
	"했고": XSV, "하면": XSV, "하며": XSV, "할": XSV, "한": XSV, "함": XSV, "하기": XSV,
	"하지만": XSV, "했는데": XSV, "하겠습니다": XSV, "하세요": XSV, "하십시오": XSV,
	"됩니다": XSV, "되었다": XSV, "되었습니다": XSV, "됐다": XSV, "됐습니다": XSV,
	"된다": XSV, "되다": XSV, "되는": XSV, "되고": XSV, "되어": XSV, "돼": XSV,
	"된": XSV, "될": XSV, "됨": XSV, "되며": XSV, "되면": XSV, "돼서": XSV,
	"시킨다": XSV, "시켰다": XSV, "시키는": XSV, "시켜": XSV,
}

var (
	maxJosaRunes   = maxRunes(josa)
	maxEndingRunes = maxRunes(endings)
)

func maxRunes(m map[string]Tag) int {
	n := 0
	for k := range m {
		if c := utf8.RuneCountInString(k); c > n {
			n = c
		}
	}
	return n
}

// suffixes returns the proper suffixes of runes found in table, longest
// first.
func suffixes(runes []rune, table map[string]Tag, limit int) []string {
	var out []string
	for n := min(limit, len(runes)-1); n >= 1; n-- {
		s := string(runes[len(runes)-n:])
		if _, ok := table[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

func lightVerbEnding(e string) bool {
	return endings[e] == XSV
}

// splitLightVerb separates a light verb ending into the verb part and
// the inflection, e.g. "했습니다" into "했" and "습니다".
func splitLightVerb(e string) (string, string) {
	for _, lv := range []string{"시키", "시킨", "시켰", "시켜"} {
		if strings.HasPrefix(e, lv) {
			return lv, e[len(lv):]
		}
	}
	_, size := utf8.DecodeRuneInString(e)
	return e[:size], e[size:]
}
