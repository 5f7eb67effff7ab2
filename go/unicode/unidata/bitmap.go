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

package unidata

import (
	"encoding/binary"
	"fmt"
)

// Bitmap is a set of code points packed as one bit per code point over
// the bounded range [lo, hi]. Code points outside the range answer
// false without touching the bits. The zero value is the empty set.
type Bitmap struct {
	lo, hi rune
	words  []uint64
}

// NewBitmap builds a Bitmap from its member code points. The members
// need not be sorted or unique. An empty member list yields the empty
// set.
func NewBitmap(members []rune) Bitmap {
	if len(members) == 0 {
		return Bitmap{}
	}
	lo, hi := members[0], members[0]
	for _, c := range members[1:] {
		if c < lo {
			lo = c
		}
		if c > hi {
			hi = c
		}
	}
	bm := Bitmap{lo: lo, hi: hi, words: make([]uint64, (uint32(hi-lo)>>6)+1)}
	for _, c := range members {
		i := uint32(c - lo)
		bm.words[i>>6] |= 1 << (i & 63)
	}
	return bm
}

// Contains reports whether c is a member of the set.
func (bm Bitmap) Contains(c rune) bool {
	if c < bm.lo || c > bm.hi || len(bm.words) == 0 {
		return false
	}
	i := uint32(c - bm.lo)
	return bm.words[i>>6]&(1<<(i&63)) != 0
}

// Bounds returns the lowest and highest member the set can hold. For
// the empty set both bounds are zero.
func (bm Bitmap) Bounds() (lo, hi rune) {
	return bm.lo, bm.hi
}

// Count returns the number of members.
func (bm Bitmap) Count() (n int) {
	for _, w := range bm.words {
		for ; w != 0; w &= w - 1 {
			n++
		}
	}
	return n
}

// AppendBinary appends the serialized form of the set: lo, hi and the
// word count as little-endian uint32, then the words. The empty set
// serializes with a zero word count.
func (bm Bitmap) AppendBinary(b []byte) ([]byte, error) {
	b = binary.LittleEndian.AppendUint32(b, uint32(bm.lo))
	b = binary.LittleEndian.AppendUint32(b, uint32(bm.hi))
	b = binary.LittleEndian.AppendUint32(b, uint32(len(bm.words)))
	for _, w := range bm.words {
		b = binary.LittleEndian.AppendUint64(b, w)
	}
	return b, nil
}

func decodeBitmap(data []byte) (Bitmap, error) {
	if len(data) < 12 {
		return Bitmap{}, fmt.Errorf("bitmap section too short: %d bytes", len(data))
	}
	lo := rune(binary.LittleEndian.Uint32(data[0:4]))
	hi := rune(binary.LittleEndian.Uint32(data[4:8]))
	count := binary.LittleEndian.Uint32(data[8:12])
	if count == 0 {
		return Bitmap{}, nil
	}
	if lo > hi {
		return Bitmap{}, fmt.Errorf("bitmap bounds inverted: lo=%#x hi=%#x", lo, hi)
	}
	if want := (uint32(hi-lo) >> 6) + 1; count != want {
		return Bitmap{}, fmt.Errorf("bitmap word count %d does not cover [%#x, %#x]", count, lo, hi)
	}
	data = data[12:]
	if uint32(len(data)) != count*8 {
		return Bitmap{}, fmt.Errorf("bitmap payload is %d bytes, want %d", len(data), count*8)
	}
	words := make([]uint64, count)
	for i := range words {
		words[i] = binary.LittleEndian.Uint64(data[i*8:])
	}
	return Bitmap{lo: lo, hi: hi, words: words}, nil
}
