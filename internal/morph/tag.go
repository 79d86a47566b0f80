// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package morph

// Tag is a part-of-speech tag from the Sejong tag set.
type Tag string

// Nominals
const (
	NNG Tag = "NNG" // common noun
	NNP Tag = "NNP" // proper noun
	NNB Tag = "NNB" // bound noun
	NP  Tag = "NP"  // pronoun
	NR  Tag = "NR"  // numeral
	NA  Tag = "NA"  // unanalysable (unknown word)
)

// Predicates, modifiers and affixes
const (
	VV  Tag = "VV"
	VA  Tag = "VA"
	VX  Tag = "VX"
	VCP Tag = "VCP"
	VCN Tag = "VCN"
	MM  Tag = "MM"
	MAG Tag = "MAG"
	MAJ Tag = "MAJ"
	IC  Tag = "IC"
	XSV Tag = "XSV"
	XSA Tag = "XSA"
	XSN Tag = "XSN"
	XPN Tag = "XPN"
)

// Particles and endings
const (
	JKS Tag = "JKS"
	JKC Tag = "JKC"
	JKG Tag = "JKG"
	JKO Tag = "JKO"
	JKB Tag = "JKB"
	JKV Tag = "JKV"
	JKQ Tag = "JKQ"
	JX  Tag = "JX"
	JC  Tag = "JC"
	EP  Tag = "EP"
	EF  Tag = "EF"
	EC  Tag = "EC"
	ETN Tag = "ETN"
	ETM Tag = "ETM"
)

// Symbols and foreign script
const (
	SF Tag = "SF" // . ? !
	SP Tag = "SP" // , · : /
	SS Tag = "SS" // quotes and brackets
	SE Tag = "SE" // ellipsis
	SO Tag = "SO" // - ~
	SW Tag = "SW" // other symbols
	SL Tag = "SL" // Latin
	SH Tag = "SH" // Han
	SN Tag = "SN" // number
)

var knownTags = map[Tag]struct{}{}

func init() {
	for _, t := range []Tag{
		NNG, NNP, NNB, NP, NR, NA,
		VV, VA, VX, VCP, VCN, MM, MAG, MAJ, IC, XSV, XSA, XSN, XPN,
		JKS, JKC, JKG, JKO, JKB, JKV, JKQ, JX, JC, EP, EF, EC, ETN, ETM,
		SF, SP, SS, SE, SO, SW, SL, SH, SN,
	} {
		knownTags[t] = struct{}{}
	}
}

// Valid reports whether t is a known tag.
func (t Tag) Valid() bool {
	_, ok := knownTags[t]
	return ok
}

// IsNominal reports whether t is a noun-like tag.
func (t Tag) IsNominal() bool {
	switch t {
	case NNG, NNP, NNB, NP, NR, NA:
		return true
	}
	return false
}
