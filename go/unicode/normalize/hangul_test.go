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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHangulPredicates(t *testing.T) {
	assert.True(t, isHangul(0xAC00))
	assert.True(t, isHangul(0xD7A3))
	assert.False(t, isHangul(0xABFF))
	assert.False(t, isHangul(0xD7A4))

	assert.True(t, isHangulLV(0xAC00))
	assert.False(t, isHangulLV(0xAC01))
	assert.True(t, isHangulLV(0xAC1C))

	assert.True(t, isJamoL(0x1100))
	assert.True(t, isJamoL(0x1112))
	assert.False(t, isJamoL(0x1113))
	assert.True(t, isJamoV(0x1161))
	assert.True(t, isJamoV(0x1175))
	assert.False(t, isJamoV(0x1176))
	assert.False(t, isJamoT(0x11A7))
	assert.True(t, isJamoT(0x11A8))
	assert.True(t, isJamoT(0x11C2))
	assert.False(t, isJamoT(0x11C3))
}

func TestHangulDecomposition(t *testing.T) {
	cases := []struct {
		c    rune
		want []rune
	}{
		{0xAC00, []rune{0x1100, 0x1161}},
		{0xAC01, []rune{0x1100, 0x1161, 0x11A8}},
		{0xD4DB, []rune{0x1111, 0x1171, 0x11B6}},
		{0xD7A3, []rune{0x1112, 0x1175, 0x11C2}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, appendHangulDecomposition(nil, tc.c), "U+%04X", tc.c)
	}
}

func TestCombineHangul(t *testing.T) {
	c, ok := combineHangul(0x1100, 0x1161)
	assert.True(t, ok)
	assert.Equal(t, rune(0xAC00), c)

	c, ok = combineHangul(0xAC00, 0x11A8)
	assert.True(t, ok)
	assert.Equal(t, rune(0xAC01), c)

	c, ok = combineHangul(0x1112, 0x1175)
	assert.True(t, ok)
	assert.Equal(t, rune(0xD788), c)

	// LVT syllables accept no further trailing consonant.
	_, ok = combineHangul(0xAC01, 0x11A8)
	assert.False(t, ok)
	// The filler vowel and the T base do not combine.
	_, ok = combineHangul(0x1100, 0x1160)
	assert.False(t, ok)
	_, ok = combineHangul(0xAC00, 0x11A7)
	assert.False(t, ok)
	_, ok = combineHangul(0x1161, 0x11A8)
	assert.False(t, ok)
	_, ok = combineHangul(0x0041, 0x0042)
	assert.False(t, ok)
}
