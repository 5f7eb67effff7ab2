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

package normalize

// Hangul syllables decompose and compose arithmetically; none of them
// appear in the lookup tables.
const (
	hangulBase = 0xAC00
	hangulEnd  = hangulBase + jamoLVTCount // 0xD7A4

	jamoLBase = 0x1100
	jamoLEnd  = 0x1113
	jamoVBase = 0x1161
	jamoVEnd  = 0x1176
	jamoTBase = 0x11A7
	jamoTEnd  = 0x11C3

	jamoVCount   = 21
	jamoTCount   = 28
	jamoVTCount  = jamoVCount * jamoTCount
	jamoLVTCount = 19 * jamoVTCount
)

func isHangul(c rune) bool {
	return hangulBase <= c && c < hangulEnd
}

// isHangulLV reports whether c is a syllable without a trailing
// consonant, the only kind that still combines with a jamo T.
func isHangulLV(c rune) bool {
	return isHangul(c) && (c-hangulBase)%jamoTCount == 0
}

func isJamoL(c rune) bool {
	return jamoLBase <= c && c < jamoLEnd
}

func isJamoV(c rune) bool {
	return jamoVBase <= c && c < jamoVEnd
}

func isJamoT(c rune) bool {
	return jamoTBase < c && c < jamoTEnd
}

// appendHangulDecomposition appends the jamo expansion of the syllable
// c: leading and vowel jamo always, trailing jamo only when present.
func appendHangulDecomposition(dst []rune, c rune) []rune {
	c -= hangulBase
	t := c % jamoTCount
	c /= jamoTCount
	dst = append(dst, jamoLBase+c/jamoVCount, jamoVBase+c%jamoVCount)
	if t != 0 {
		dst = append(dst, jamoTBase+t)
	}
	return dst
}

// combineHangul combines L+V into an LV syllable and LV+T into an LVT
// one. ok is false for every other pair.
func combineHangul(a, b rune) (rune, bool) {
	switch {
	case isJamoL(a) && isJamoV(b):
		return hangulBase + ((a-jamoLBase)*jamoVCount+(b-jamoVBase))*jamoTCount, true
	case isHangulLV(a) && isJamoT(b):
		return a + (b - jamoTBase), true
	}
	return 0, false
}
