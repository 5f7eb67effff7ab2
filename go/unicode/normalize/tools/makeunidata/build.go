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
	"fmt"
	"slices"

	"github.com/Bodigrim/unicode-transforms/go/unicode/normalize/tools/ucd"
)

const (
	hangulBase = 0xAC00
	hangulEnd  = 0xD7A4
	jamoLBase  = 0x1100
	jamoLEnd   = 0x1113
	jamoVBase  = 0x1161
	jamoVEnd   = 0x1176
	jamoTBase  = 0x11A7
	jamoTEnd   = 0x11C3
	jamoVCount = 21
	jamoTCount = 28
)

// buildData is the compiled table set, ready for serialization.
type buildData struct {
	version string

	ccc        []uint32 // cp<<8 | class, sorted
	cccMembers []rune

	decompKeys   []uint32 // cp<<1 | canonical bit, sorted
	decompVals   []uint32 // offset<<6 | length
	decompBuf    []rune
	canonMembers []rune
	anyMembers   []rune

	pairKeys        []uint64
	pairVals        []uint32
	starterPairKeys []uint64
	starterPairVals []uint32

	exclusions []rune
	nfkcNo     []rune
	maybe      []rune
}

// extract compiles the parsed snapshot into lookup tables and verifies
// every derived property against what the snapshot itself declares.
// Any disagreement means a corrupt or mismatched snapshot and fails
// the build.
func extract(snap *ucd.Snapshot, version string) (*buildData, error) {
	d := &buildData{version: version}
	n := newNormalizer()

	type pending struct {
		cp      rune
		mapping []rune
		tag     ucd.DecompositionTag
	}
	var decomps []pending

	for i := range snap.Records {
		rec := &snap.Records[i]
		c := rec.CodePoint
		if rec.CombiningClass != 0 {
			d.ccc = append(d.ccc, uint32(c)<<8|uint32(rec.CombiningClass))
			d.cccMembers = append(d.cccMembers, c)
			n.ccc[c] = rec.CombiningClass
		}
		if rec.DecompositionTag == ucd.TagNone {
			continue
		}
		if c >= hangulBase && c < hangulEnd {
			return nil, fmt.Errorf("U+%04X: Hangul syllables must not carry decomposition mappings", c)
		}
		if rec.DecompositionTag.Canonical() && len(rec.Decomposition) > 2 {
			return nil, fmt.Errorf("U+%04X: canonical decomposition with %d elements", c, len(rec.Decomposition))
		}
		if len(rec.Decomposition) > 63 {
			return nil, fmt.Errorf("U+%04X: decomposition with %d elements does not fit the table layout", c, len(rec.Decomposition))
		}
		for _, m := range rec.Decomposition {
			if m >= hangulBase && m < hangulEnd {
				return nil, fmt.Errorf("U+%04X: decomposition maps into the Hangul syllable block", c)
			}
		}
		decomps = append(decomps, pending{c, rec.Decomposition, rec.DecompositionTag})
		d.anyMembers = append(d.anyMembers, c)
		if rec.DecompositionTag.Canonical() {
			d.canonMembers = append(d.canonMembers, c)
		}
		n.decomp[c] = decompEntry{mapping: rec.Decomposition, canonical: rec.DecompositionTag.Canonical()}
	}

	// The records arrive sorted, so the key arrays come out sorted; the
	// shared rune pool dedups identical mappings.
	offsets := make(map[string]uint32)
	for _, p := range decomps {
		key := string(p.mapping)
		off, ok := offsets[key]
		if !ok {
			off = uint32(len(d.decompBuf))
			if off >= 1<<26 {
				return nil, fmt.Errorf("decomposition pool overflows the table layout at U+%04X", p.cp)
			}
			offsets[key] = off
			d.decompBuf = append(d.decompBuf, p.mapping...)
		}
		bit := uint32(0)
		if p.tag.Canonical() {
			bit = 1
		}
		d.decompKeys = append(d.decompKeys, uint32(p.cp)<<1|bit)
		d.decompVals = append(d.decompVals, off<<6|uint32(len(p.mapping)))
	}

	if err := d.deriveExclusions(snap, n); err != nil {
		return nil, err
	}
	if err := d.derivePairs(snap, n); err != nil {
		return nil, err
	}
	if err := d.deriveQuickCheck(snap, n); err != nil {
		return nil, err
	}
	return d, nil
}

// deriveExclusions computes the full composition-exclusion set —
// explicit exclusions, singleton decompositions and non-starter
// decompositions — and checks it against the snapshot's own
// Full_Composition_Exclusion listing.
func (d *buildData) deriveExclusions(snap *ucd.Snapshot, n *normalizer) error {
	for _, c := range d.canonMembers {
		rec := snap.Record(c)
		mapping := rec.Decomposition
		switch {
		case rec.Excluded:
		case len(mapping) == 1:
		case rec.CombiningClass != 0 || n.ccc[mapping[0]] != 0:
		default:
			continue
		}
		d.exclusions = append(d.exclusions, c)
		n.excluded[c] = true
	}
	if err := compareSets("Full_Composition_Exclusion", d.exclusions, snap.Props.FullExclusions); err != nil {
		return err
	}
	return nil
}

// derivePairs builds the composition tables from the non-excluded
// canonical pair decompositions, split by whether the second element
// is a starter.
func (d *buildData) derivePairs(snap *ucd.Snapshot, n *normalizer) error {
	seen := make(map[uint64]bool)
	for _, c := range d.canonMembers {
		rec := snap.Record(c)
		if n.excluded[c] || len(rec.Decomposition) != 2 {
			continue
		}
		first, second := rec.Decomposition[0], rec.Decomposition[1]
		key := uint64(first)<<32 | uint64(second)
		if seen[key] {
			return fmt.Errorf("pair U+%04X U+%04X has more than one primary composite", first, second)
		}
		seen[key] = true
		n.pairs[key] = c
		if n.ccc[second] == 0 {
			d.starterPairKeys = append(d.starterPairKeys, key)
		} else {
			d.pairKeys = append(d.pairKeys, key)
		}
	}
	slices.Sort(d.pairKeys)
	slices.Sort(d.starterPairKeys)
	for _, key := range d.pairKeys {
		d.pairVals = append(d.pairVals, uint32(n.pairs[key]))
	}
	for _, key := range d.starterPairKeys {
		d.starterPairVals = append(d.starterPairVals, uint32(n.pairs[key]))
	}
	if len(d.pairKeys) == 0 || len(d.starterPairKeys) == 0 {
		return fmt.Errorf("composition tables came out empty: %d mark pairs, %d starter pairs",
			len(d.pairKeys), len(d.starterPairKeys))
	}
	return nil
}

// deriveQuickCheck recomputes all quick-check sets from first
// principles — a code point is "No" for a form when normalizing it in
// isolation changes it, "Maybe" when it can combine with a preceding
// code point — and insists the snapshot's derived listings agree.
func (d *buildData) deriveQuickCheck(snap *ucd.Snapshot, n *normalizer) error {
	var nfdNo, nfkdNo, nfcNo []rune
	maybeSet := make(map[rune]bool)
	for _, key := range d.pairKeys {
		maybeSet[rune(key&0xFFFFFFFF)] = true
	}
	for _, key := range d.starterPairKeys {
		maybeSet[rune(key&0xFFFFFFFF)] = true
	}
	for c := rune(jamoVBase); c < jamoVEnd; c++ {
		maybeSet[c] = true
	}
	for c := rune(jamoTBase + 1); c < jamoTEnd; c++ {
		maybeSet[c] = true
	}

	var maybe, nfkcMaybe []rune
	for i := range snap.Records {
		rec := &snap.Records[i]
		c := rec.CodePoint
		if c >= hangulBase && c < hangulEnd {
			// Arithmetically decomposable, stable when composed.
			nfdNo = append(nfdNo, c)
			nfkdNo = append(nfkdNo, c)
			continue
		}
		isolated := []rune{c}
		if rec.DecompositionTag.Canonical() {
			nfdNo = append(nfdNo, c)
		}
		if rec.DecompositionTag != ucd.TagNone {
			nfkdNo = append(nfkdNo, c)
		}
		if !slices.Equal(n.apply(isolated, false, true), isolated) {
			nfcNo = append(nfcNo, c)
		} else if maybeSet[c] {
			maybe = append(maybe, c)
		}
		if !slices.Equal(n.apply(isolated, true, true), isolated) {
			d.nfkcNo = append(d.nfkcNo, c)
		} else if maybeSet[c] {
			nfkcMaybe = append(nfkcMaybe, c)
		}
	}

	p := &snap.Props
	for _, v := range []struct {
		name     string
		computed []rune
		declared []rune
	}{
		{"NFD_QC=N", nfdNo, p.NFDNo},
		{"NFKD_QC=N", nfkdNo, p.NFKDNo},
		{"NFC_QC=N", nfcNo, p.NFCNo},
		{"NFC_QC=M", maybe, p.NFCMaybe},
		{"NFKC_QC=N", d.nfkcNo, p.NFKCNo},
		{"NFKC_QC=M", nfkcMaybe, p.NFKCMaybe},
	} {
		if err := compareSets(v.name, v.computed, v.declared); err != nil {
			return err
		}
	}

	// The engine stores one Maybe set for both composed forms and
	// reuses the exclusion set as the NFC "No" set; make sure neither
	// shortcut loses information.
	if err := compareSets("NFC_QC=M against NFKC_QC=M", maybe, nfkcMaybe); err != nil {
		return err
	}
	if err := compareSets("NFC_QC=N against the full exclusions", nfcNo, d.exclusions); err != nil {
		return err
	}
	d.maybe = maybe
	return nil
}

// compareSets reports the first difference between two sorted code
// point sets.
func compareSets(name string, computed, declared []rune) error {
	if slices.Equal(computed, declared) {
		return nil
	}
	i := 0
	for i < len(computed) && i < len(declared) && computed[i] == declared[i] {
		i++
	}
	have, want := rune(-1), rune(-1)
	if i < len(computed) {
		have = computed[i]
	}
	if i < len(declared) {
		want = declared[i]
	}
	return fmt.Errorf("%s diverges from the snapshot at entry %d: computed U+%04X, declared U+%04X (%d vs %d total)",
		name, i, have, want, len(computed), len(declared))
}

type decompEntry struct {
	mapping   []rune
	canonical bool
}

// normalizer is the builder's own reference implementation over the
// freshly extracted properties, used to derive and verify the
// quick-check sets without touching the runtime engine (whose tables
// are the very thing being generated).
type normalizer struct {
	ccc      map[rune]uint8
	decomp   map[rune]decompEntry
	pairs    map[uint64]rune
	excluded map[rune]bool
}

func newNormalizer() *normalizer {
	return &normalizer{
		ccc:      make(map[rune]uint8),
		decomp:   make(map[rune]decompEntry),
		pairs:    make(map[uint64]rune),
		excluded: make(map[rune]bool),
	}
}

func (n *normalizer) expand(dst []rune, c rune, compat bool, depth int) ([]rune, error) {
	if depth > 16 {
		return nil, fmt.Errorf("decomposition of U+%04X does not terminate", c)
	}
	if c >= hangulBase && c < hangulEnd {
		s := c - hangulBase
		t := s % jamoTCount
		s /= jamoTCount
		dst = append(dst, jamoLBase+s/jamoVCount, jamoVBase+s%jamoVCount)
		if t != 0 {
			dst = append(dst, jamoTBase+t)
		}
		return dst, nil
	}
	entry, ok := n.decomp[c]
	if !ok || (!compat && !entry.canonical) {
		return append(dst, c), nil
	}
	for _, m := range entry.mapping {
		var err error
		if dst, err = n.expand(dst, m, compat, depth+1); err != nil {
			return nil, err
		}
	}
	return dst, nil
}

// apply normalizes src: full decomposition, canonical ordering and,
// when compose is set, canonical composition. It mirrors the runtime
// pipeline rule for rule.
func (n *normalizer) apply(src []rune, compat, compose bool) []rune {
	var buf []rune
	for _, c := range src {
		var err error
		if buf, err = n.expand(buf, c, compat, 0); err != nil {
			// Cycles are rejected while the tables are built; reaching
			// one here is a bug in extract itself.
			panic(err)
		}
	}
	for i := 1; i < len(buf); i++ {
		cc := n.ccc[buf[i]]
		if cc == 0 {
			continue
		}
		for j := i; j > 0 && n.ccc[buf[j-1]] > cc; j-- {
			buf[j-1], buf[j] = buf[j], buf[j-1]
		}
	}
	if !compose {
		return buf
	}

	out := buf[:0]
	starter := -1
	var prevCC uint8
	for _, c := range buf {
		cc := n.ccc[c]
		if starter >= 0 {
			first := out[starter]
			adjacent := starter == len(out)-1
			var composed rune
			var ok bool
			if cc == 0 {
				if adjacent {
					if composed, ok = combineHangul(first, c); !ok {
						composed, ok = n.composePair(first, c)
					}
				}
			} else if adjacent || prevCC < cc {
				composed, ok = n.composePair(first, c)
			}
			if ok {
				out[starter] = composed
				continue
			}
		}
		if cc == 0 {
			starter = len(out)
		}
		prevCC = cc
		out = append(out, c)
	}
	return out
}

func (n *normalizer) composePair(first, second rune) (rune, bool) {
	c, ok := n.pairs[uint64(first)<<32|uint64(second)]
	return c, ok
}

func combineHangul(a, b rune) (rune, bool) {
	switch {
	case jamoLBase <= a && a < jamoLEnd && jamoVBase <= b && b < jamoVEnd:
		return hangulBase + ((a-jamoLBase)*jamoVCount+(b-jamoVBase))*jamoTCount, true
	case hangulBase <= a && a < hangulEnd && (a-hangulBase)%jamoTCount == 0 && jamoTBase < b && b < jamoTEnd:
		return a + (b - jamoTBase), true
	}
	return 0, false
}
