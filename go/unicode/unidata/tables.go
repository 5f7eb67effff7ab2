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

// Package unidata holds the compiled normalization properties for a
// Unicode snapshot: combining classes, one-level decomposition
// mappings, canonical composition pairs, composition exclusions and
// quick-check sets, all read from a single binary artifact generated
// by makeunidata. The tables are immutable once loaded and safe for
// concurrent use.
package unidata

import (
	"cmp"
	"slices"
)

// Tables is the read-only handle over one loaded artifact.
//
// The exported bitmaps answer membership directly; the packed arrays
// behind CombiningClass, Decomposition and the composition lookups are
// sorted at build time and binary-searched here. Hangul syllables are
// deliberately absent everywhere: the engine resolves the block
// arithmetically before consulting any table.
type Tables struct {
	// Combining holds every code point with a non-zero combining class.
	Combining Bitmap
	// DecompCanonical holds every code point with a canonical
	// decomposition; DecompAny additionally covers compatibility
	// decompositions.
	DecompCanonical Bitmap
	DecompAny       Bitmap
	// Exclusions is the full composition-exclusion set: explicit
	// exclusions, singleton decompositions and non-starter
	// decompositions. It doubles as the NFC quick-check "No" set.
	Exclusions Bitmap
	// NFKCNo holds the code points that cannot appear in NFKC text.
	NFKCNo Bitmap
	// Maybe holds the quick-check "Maybe" set shared by NFC and NFKC:
	// possible second elements of a canonical composition.
	Maybe Bitmap

	version  string
	checksum uint32

	ccc []uint32 // cp<<8 | class, sorted by cp

	decompKeys []uint32 // cp<<1 | canonical bit, sorted by cp
	decompVals []uint32 // offset<<6 | length into decompBuf
	decompBuf  []rune

	pairKeys        []uint64 // first<<32 | second, second a non-starter
	pairVals        []uint32
	starterPairKeys []uint64 // first<<32 | second, second a starter
	starterPairVals []uint32
}

// UnicodeVersion returns the version string of the snapshot the
// artifact was built from.
func (t *Tables) UnicodeVersion() string {
	return t.version
}

// Checksum returns the artifact's payload CRC as recorded in its
// header.
func (t *Tables) Checksum() uint32 {
	return t.checksum
}

// CombiningClass returns the canonical combining class of c, or 0 when
// c carries none.
func (t *Tables) CombiningClass(c rune) uint8 {
	if !t.Combining.Contains(c) {
		return 0
	}
	i, ok := slices.BinarySearchFunc(t.ccc, uint32(c), func(e, target uint32) int {
		return cmp.Compare(e>>8, target)
	})
	if !ok {
		return 0
	}
	return uint8(t.ccc[i])
}

// Decomposition returns the one-level decomposition mapping of c. In
// canonical mode (compat false) only canonical mappings are returned;
// in compatibility mode both kinds are. The returned slice aliases the
// table and must not be modified. ok is false when c has no mapping in
// the requested mode.
func (t *Tables) Decomposition(c rune, compat bool) (mapping []rune, ok bool) {
	if compat {
		if !t.DecompAny.Contains(c) {
			return nil, false
		}
	} else if !t.DecompCanonical.Contains(c) {
		return nil, false
	}
	i, ok := slices.BinarySearchFunc(t.decompKeys, uint32(c), func(e, target uint32) int {
		return cmp.Compare(e>>1, target)
	})
	if !ok {
		return nil, false
	}
	if !compat && t.decompKeys[i]&1 == 0 {
		return nil, false
	}
	v := t.decompVals[i]
	off, n := v>>6, v&63
	return t.decompBuf[off : off+n], true
}

// ComposePair returns the primary composite of the pair (first,
// second) where second is a non-starter. Pairs removed by the
// composition exclusions are never present.
func (t *Tables) ComposePair(first, second rune) (rune, bool) {
	return searchPairs(t.pairKeys, t.pairVals, first, second)
}

// ComposeStarterPair is ComposePair for the partition whose second
// element is a starter, such as Indic two-part vowel signs.
func (t *Tables) ComposeStarterPair(first, second rune) (rune, bool) {
	return searchPairs(t.starterPairKeys, t.starterPairVals, first, second)
}

func searchPairs(keys []uint64, vals []uint32, first, second rune) (rune, bool) {
	i, ok := slices.BinarySearch(keys, uint64(first)<<32|uint64(second))
	if !ok {
		return 0, false
	}
	return rune(vals[i]), true
}
