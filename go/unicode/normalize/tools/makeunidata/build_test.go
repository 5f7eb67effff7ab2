/*
Copyright 2023 The Unicode Transforms Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"encoding/binary"
	"hash/crc32"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bodigrim/unicode-transforms/go/unicode/normalize/tools/ucd"
	"github.com/Bodigrim/unicode-transforms/go/unicode/unidata"
)

// A self-consistent snapshot covering one witness per derivation rule:
// a composable pair (00E9), a starter pair (0B4B), an explicit
// exclusion (0958), a singleton (2126), a non-starter decomposition
// (0344), two compatibility mappings sharing one pool entry (00A0 and
// 2007), a ligature (FB01) and a five-syllable Hangul range. The
// exclusion and quick-check listings are exactly what extract derives
// from the records; extract cross-checks them.
const miniUnicodeData = `0020;SPACE;Zs;0;WS;;;;;N;;;;;
0041;LATIN CAPITAL LETTER A;Lu;0;L;;;;;N;;;;0061;
0065;LATIN SMALL LETTER E;Ll;0;L;;;;;N;;;0045;;0045
0066;LATIN SMALL LETTER F;Ll;0;L;;;;;N;;;0046;;0046
0069;LATIN SMALL LETTER I;Ll;0;L;;;;;N;;;0049;;0049
00A0;NO-BREAK SPACE;Zs;0;CS;<noBreak> 0020;;;;N;NON-BREAKING SPACE;;;;
00E9;LATIN SMALL LETTER E WITH ACUTE;Ll;0;L;0065 0301;;;;N;;;00C9;;00C9
0301;COMBINING ACUTE ACCENT;Mn;230;NSM;;;;;N;NON-SPACING ACUTE;;;;
0308;COMBINING DIAERESIS;Mn;230;NSM;;;;;N;NON-SPACING DIAERESIS;;;;
0344;COMBINING GREEK DIALYTIKA TONOS;Mn;230;NSM;0308 0301;;;;N;GREEK NON-SPACING DIAERESIS TONOS;;;;
03A9;GREEK CAPITAL LETTER OMEGA;Lu;0;L;;;;;N;;;;03C9;
0915;DEVANAGARI LETTER KA;Lo;0;L;;;;;N;;;;;
093C;DEVANAGARI SIGN NUKTA;Mn;7;NSM;;;;;N;;;;;
0958;DEVANAGARI LETTER QA;Lo;0;L;0915 093C;;;;N;;;;;
0B3E;ORIYA VOWEL SIGN AA;Mc;0;L;;;;;N;;;;;
0B47;ORIYA VOWEL SIGN E;Mc;0;L;;;;;N;;;;;
0B4B;ORIYA VOWEL SIGN O;Mc;0;L;0B47 0B3E;;;;N;;;;;
2007;FIGURE SPACE;Zs;0;WS;<noBreak> 0020;;;;N;;;;;
2126;OHM SIGN;Lu;0;L;03A9;;;;N;OHM;;;03C9;
AC00;<Hangul Syllable, First>;Lo;0;L;;;;;N;;;;;
AC04;<Hangul Syllable, Last>;Lo;0;L;;;;;N;;;;;
FB01;LATIN SMALL LIGATURE FI;Ll;0;L;<compat> 0066 0069;;;;N;;;;;
`

const miniExclusions = `# Script-specific precomposed characters.
0958 # DEVANAGARI LETTER QA
`

const miniProps = `# Full_Composition_Exclusion
0344 ; Full_Composition_Exclusion
0958 ; Full_Composition_Exclusion
2126 ; Full_Composition_Exclusion

# NFD_Quick_Check=No
00E9 ; NFD_QC; N
0344 ; NFD_QC; N
0958 ; NFD_QC; N
0B4B ; NFD_QC; N
2126 ; NFD_QC; N
AC00..AC04 ; NFD_QC; N

# NFKD_Quick_Check=No
00A0 ; NFKD_QC; N
00E9 ; NFKD_QC; N
0344 ; NFKD_QC; N
0958 ; NFKD_QC; N
0B4B ; NFKD_QC; N
2007 ; NFKD_QC; N
2126 ; NFKD_QC; N
AC00..AC04 ; NFKD_QC; N
FB01 ; NFKD_QC; N

# NFC_Quick_Check
0344 ; NFC_QC; N
0958 ; NFC_QC; N
2126 ; NFC_QC; N
0301 ; NFC_QC; M
0B3E ; NFC_QC; M

# NFKC_Quick_Check
00A0 ; NFKC_QC; N
0344 ; NFKC_QC; N
0958 ; NFKC_QC; N
2007 ; NFKC_QC; N
2126 ; NFKC_QC; N
FB01 ; NFKC_QC; N
0301 ; NFKC_QC; M
0B3E ; NFKC_QC; M

# Not consumed by the table builder.
0041..0069 ; Changes_When_NFKC_Casefolded
`

func writeSnapshot(t *testing.T, unicodeData, exclusions, props string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range map[string]string{
		"UnicodeData.txt":               unicodeData,
		"CompositionExclusions.txt":     exclusions,
		"DerivedNormalizationProps.txt": props,
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func loadMiniSnapshot(t *testing.T) *ucd.Snapshot {
	t.Helper()
	snap, err := ucd.LoadSnapshot(writeSnapshot(t, miniUnicodeData, miniExclusions, miniProps))
	require.NoError(t, err)
	return snap
}

func TestExtract(t *testing.T) {
	d, err := extract(loadMiniSnapshot(t), "14.0.0")
	require.NoError(t, err)

	assert.Equal(t, []uint32{0x0301<<8 | 230, 0x0308<<8 | 230, 0x0344<<8 | 230, 0x093C<<8 | 7}, d.ccc)
	assert.Equal(t, []rune{0x0301, 0x0308, 0x0344, 0x093C}, d.cccMembers)

	assert.Equal(t, []uint32{
		0x00A0 << 1, 0x00E9<<1 | 1, 0x0344<<1 | 1, 0x0958<<1 | 1,
		0x0B4B<<1 | 1, 0x2007 << 1, 0x2126<<1 | 1, 0xFB01 << 1,
	}, d.decompKeys)
	assert.Equal(t, []uint32{
		0<<6 | 1, 1<<6 | 2, 3<<6 | 2, 5<<6 | 2, 7<<6 | 2, 0<<6 | 1, 9<<6 | 1, 10<<6 | 2,
	}, d.decompVals)
	// U+00A0 and U+2007 resolve to the same pool entry.
	assert.Equal(t, []rune{
		0x0020, 0x0065, 0x0301, 0x0308, 0x0301, 0x0915, 0x093C,
		0x0B47, 0x0B3E, 0x03A9, 0x0066, 0x0069,
	}, d.decompBuf)

	assert.Equal(t, []rune{0x00E9, 0x0344, 0x0958, 0x0B4B, 0x2126}, d.canonMembers)
	assert.Equal(t, []rune{0x00A0, 0x00E9, 0x0344, 0x0958, 0x0B4B, 0x2007, 0x2126, 0xFB01}, d.anyMembers)

	// One exclusion per rule: non-starter decomposition, explicit
	// listing, singleton.
	assert.Equal(t, []rune{0x0344, 0x0958, 0x2126}, d.exclusions)

	assert.Equal(t, []uint64{0x0065<<32 | 0x0301}, d.pairKeys)
	assert.Equal(t, []uint32{0x00E9}, d.pairVals)
	assert.Equal(t, []uint64{0x0B47<<32 | 0x0B3E}, d.starterPairKeys)
	assert.Equal(t, []uint32{0x0B4B}, d.starterPairVals)

	assert.Equal(t, []rune{0x0301, 0x0B3E}, d.maybe)
	assert.Equal(t, []rune{0x00A0, 0x0344, 0x0958, 0x2007, 0x2126, 0xFB01}, d.nfkcNo)
}

func TestArtifactRoundTrip(t *testing.T) {
	d, err := extract(loadMiniSnapshot(t), "14.0.0")
	require.NoError(t, err)
	blob, err := serialize(d)
	require.NoError(t, err)

	assert.Equal(t, unidata.Magic, string(blob[:4]))
	assert.Equal(t, uint32(len(blob)), binary.LittleEndian.Uint32(blob[8:12]))
	assert.Equal(t, uint32(unidata.SectionMaybe), binary.LittleEndian.Uint32(blob[32:36]))
	assert.Equal(t, crc32.ChecksumIEEE(blob[unidata.HeaderSize:]), binary.LittleEndian.Uint32(blob[12:16]))

	tables, err := unidata.LoadFrom(blob)
	require.NoError(t, err)
	assert.Equal(t, "14.0.0", tables.UnicodeVersion())
	assert.Equal(t, crc32.ChecksumIEEE(blob[unidata.HeaderSize:]), tables.Checksum())

	assert.Equal(t, uint8(230), tables.CombiningClass(0x0301))
	assert.Equal(t, uint8(7), tables.CombiningClass(0x093C))
	assert.Equal(t, uint8(0), tables.CombiningClass(0x0041))

	m, ok := tables.Decomposition(0x00E9, false)
	require.True(t, ok)
	assert.Equal(t, []rune{0x0065, 0x0301}, m)
	m, ok = tables.Decomposition(0x2126, false)
	require.True(t, ok)
	assert.Equal(t, []rune{0x03A9}, m)
	_, ok = tables.Decomposition(0xFB01, false)
	assert.False(t, ok)
	m, ok = tables.Decomposition(0xFB01, true)
	require.True(t, ok)
	assert.Equal(t, []rune{0x0066, 0x0069}, m)
	for _, c := range []rune{0x00A0, 0x2007} {
		_, ok = tables.Decomposition(c, false)
		assert.False(t, ok)
		m, ok = tables.Decomposition(c, true)
		require.True(t, ok)
		assert.Equal(t, []rune{0x0020}, m)
	}
	_, ok = tables.Decomposition(0xAC00, true)
	assert.False(t, ok, "Hangul stays out of the tables")

	c, ok := tables.ComposePair(0x0065, 0x0301)
	require.True(t, ok)
	assert.Equal(t, rune(0x00E9), c)
	_, ok = tables.ComposePair(0x0B47, 0x0B3E)
	assert.False(t, ok)
	c, ok = tables.ComposeStarterPair(0x0B47, 0x0B3E)
	require.True(t, ok)
	assert.Equal(t, rune(0x0B4B), c)
	_, ok = tables.ComposeStarterPair(0x0065, 0x0301)
	assert.False(t, ok)

	assert.Equal(t, 3, tables.Exclusions.Count())
	assert.True(t, tables.Exclusions.Contains(0x2126))
	assert.False(t, tables.Exclusions.Contains(0x00E9))
	assert.Equal(t, 4, tables.Combining.Count())
	assert.Equal(t, 5, tables.DecompCanonical.Count())
	assert.Equal(t, 8, tables.DecompAny.Count())
	assert.True(t, tables.NFKCNo.Contains(0xFB01))
	assert.False(t, tables.NFKCNo.Contains(0x00E9))
	assert.True(t, tables.Maybe.Contains(0x0301))
	assert.True(t, tables.Maybe.Contains(0x0B3E))
	assert.False(t, tables.Maybe.Contains(0x0308))
}

func TestExtractRejectsBadSnapshots(t *testing.T) {
	tests := []struct {
		name        string
		unicodeData string
		wantErr     string
	}{
		{
			name:        "hangul syllable with mapping",
			unicodeData: "AC01;HANGUL SYLLABLE GAG;Lo;0;L;1100 1161;;;;N;;;;;\n",
			wantErr:     "must not carry decomposition mappings",
		},
		{
			name:        "canonical decomposition too long",
			unicodeData: "1E00;LATIN CAPITAL LETTER A WITH RING BELOW;Lu;0;L;0041 0325 0325;;;;N;;;;1E01;\n",
			wantErr:     "canonical decomposition with 3 elements",
		},
		{
			name:        "mapping into the hangul block",
			unicodeData: "FFDC;HALFWIDTH HANGUL LETTER I;Lo;0;L;<narrow> AC00;;;;N;;;;;\n",
			wantErr:     "maps into the Hangul syllable block",
		},
		{
			name: "oversized compatibility mapping",
			unicodeData: "FDFA;ARABIC LIGATURE SALLALLAHOU ALAYHE WASALLAM;Lo;0;AL;<isolated>" +
				strings.Repeat(" 0635", 64) + ";;;;N;;;;;\n",
			wantErr: "does not fit the table layout",
		},
		{
			name: "duplicate primary composite",
			unicodeData: "0065;LATIN SMALL LETTER E;Ll;0;L;;;;;N;;;0045;;0045\n" +
				"00E9;LATIN SMALL LETTER E WITH ACUTE;Ll;0;L;0065 0301;;;;N;;;00C9;;00C9\n" +
				"00EA;LATIN SMALL LETTER E WITH CIRCUMFLEX;Ll;0;L;0065 0301;;;;N;;;00CA;;00CA\n" +
				"0301;COMBINING ACUTE ACCENT;Mn;230;NSM;;;;;N;NON-SPACING ACUTE;;;;\n",
			wantErr: "more than one primary composite",
		},
		{
			name:        "no composition pairs",
			unicodeData: "0041;LATIN CAPITAL LETTER A;Lu;0;L;;;;;N;;;;0061;\n",
			wantErr:     "composition tables came out empty",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			snap, err := ucd.LoadSnapshot(writeSnapshot(t, tc.unicodeData, "", ""))
			require.NoError(t, err)
			_, err = extract(snap, "14.0.0")
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}

// extract trusts nothing: a snapshot whose derived listings disagree
// with what the records imply must not produce an artifact.
func TestExtractRejectsDivergentProps(t *testing.T) {
	tests := []struct {
		name    string
		drop    string
		add     string
		wantErr string
	}{
		{
			name:    "missing exclusion",
			drop:    "2126 ; Full_Composition_Exclusion\n",
			wantErr: "Full_Composition_Exclusion diverges",
		},
		{
			name:    "missing quick check no",
			drop:    "FB01 ; NFKD_QC; N\n",
			wantErr: "NFKD_QC=N diverges",
		},
		{
			name:    "extra maybe",
			add:     "0308 ; NFC_QC; M\n",
			wantErr: "NFC_QC=M diverges",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			props := miniProps
			if tc.drop != "" {
				require.Contains(t, props, tc.drop)
				props = strings.Replace(props, tc.drop, "", 1)
			}
			props += tc.add
			snap, err := ucd.LoadSnapshot(writeSnapshot(t, miniUnicodeData, miniExclusions, props))
			require.NoError(t, err)
			_, err = extract(snap, "14.0.0")
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestSerializeRejectsBadVersion(t *testing.T) {
	_, err := serialize(&buildData{})
	require.ErrorContains(t, err, "does not fit the header")

	_, err = serialize(&buildData{version: strings.Repeat("1", 17)})
	require.ErrorContains(t, err, "does not fit the header")
}

// TestBuildAgainstLocalSnapshot runs the whole pipeline over a real
// UCD snapshot. The assertions stick to properties the Unicode
// stability policy freezes, so any snapshot version passes.
func TestBuildAgainstLocalSnapshot(t *testing.T) {
	dir := os.Getenv("UCD_DIR")
	if dir == "" {
		t.Skipf("no local UCD snapshot: set UCD_DIR to a directory holding UnicodeData.txt, CompositionExclusions.txt and DerivedNormalizationProps.txt")
	}
	snap, err := ucd.LoadSnapshot(dir)
	require.NoError(t, err)
	d, err := extract(snap, "local")
	require.NoError(t, err)
	blob, err := serialize(d)
	require.NoError(t, err)
	tables, err := unidata.LoadFrom(blob)
	require.NoError(t, err)

	assert.Equal(t, uint8(230), tables.CombiningClass(0x0301))
	m, ok := tables.Decomposition(0x00E9, false)
	require.True(t, ok)
	assert.Equal(t, []rune{0x0065, 0x0301}, m)
	c, ok := tables.ComposePair(0x0065, 0x0301)
	require.True(t, ok)
	assert.Equal(t, rune(0x00E9), c)
	assert.True(t, tables.Exclusions.Contains(0x0344))
	assert.True(t, tables.Maybe.Contains(0x0301))
	assert.False(t, tables.DecompAny.Contains(0xAC00))
}
