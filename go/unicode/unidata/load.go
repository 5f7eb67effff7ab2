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
	"bytes"
	_ "embed"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"sync"
)

// Artifact layout. The file opens with a fixed 64-byte header, then a
// directory of (id, offset, length) entries, then the 4-byte aligned
// sections themselves. All integers are little-endian.
const (
	Magic         = "UNrm"
	FormatVersion = 1

	HeaderSize     = 64
	offsetFormat   = 4
	offsetSize     = 8
	offsetChecksum = 12
	offsetVersion  = 16
	versionLen     = 16
	offsetCount    = 32
	dirEntrySize   = 12
)

// SectionID identifies one section of the artifact. Loading fails on
// ids outside this enumeration.
type SectionID uint32

const (
	SectionCCC SectionID = iota + 1
	SectionDecompKeys
	SectionDecompValues
	SectionDecompRunes
	SectionPairKeys
	SectionStarterPairKeys
	SectionPairValues
	SectionStarterPairValues
	SectionExclusions
	SectionCombining
	SectionDecompCanonical
	SectionDecompAny
	SectionNFKCNo
	SectionMaybe

	sectionCount = int(SectionMaybe)
)

//go:embed unidata.bin
var embedded []byte

var (
	defaultOnce   sync.Once
	defaultTables *Tables
)

// Default returns the tables parsed from the embedded artifact. The
// artifact ships with the package, so a failure to load it means a
// broken build and panics.
func Default() *Tables {
	defaultOnce.Do(func() {
		t, err := LoadFrom(embedded)
		if err != nil {
			panic("unidata: embedded artifact: " + err.Error())
		}
		if t.checksum != embeddedChecksum || t.version != UnicodeVersion {
			panic(fmt.Sprintf("unidata: embedded artifact is %s/%#08x, generated for %s/%#08x",
				t.version, t.checksum, UnicodeVersion, embeddedChecksum))
		}
		defaultTables = t
	})
	return defaultTables
}

// LoadFrom parses a serialized artifact. The data is validated
// (magic, format version, size, payload CRC, section directory bounds,
// sorted lookup keys) and decoded into fresh slices; the returned
// Tables does not alias data.
func LoadFrom(data []byte) (*Tables, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("truncated header: %d bytes", len(data))
	}
	if string(data[:4]) != Magic {
		return nil, fmt.Errorf("bad magic %q", data[:4])
	}
	if v := binary.LittleEndian.Uint32(data[offsetFormat:]); v != FormatVersion {
		return nil, fmt.Errorf("unsupported format version %d", v)
	}
	if size := binary.LittleEndian.Uint32(data[offsetSize:]); int(size) != len(data) {
		return nil, fmt.Errorf("size mismatch: header says %d, have %d", size, len(data))
	}
	sum := binary.LittleEndian.Uint32(data[offsetChecksum:])
	if got := crc32.ChecksumIEEE(data[HeaderSize:]); got != sum {
		return nil, fmt.Errorf("payload checksum mismatch: header says %#08x, have %#08x", sum, got)
	}
	version := string(bytes.TrimRight(data[offsetVersion:offsetVersion+versionLen], "\x00"))
	if version == "" {
		return nil, fmt.Errorf("empty version string")
	}
	count := int(binary.LittleEndian.Uint32(data[offsetCount:]))
	dirEnd := HeaderSize + count*dirEntrySize
	if count == 0 || dirEnd > len(data) {
		return nil, fmt.Errorf("section directory with %d entries does not fit", count)
	}

	t := &Tables{version: version, checksum: sum}
	var seen [sectionCount + 1]bool
	for i := 0; i < count; i++ {
		entry := data[HeaderSize+i*dirEntrySize:]
		id := SectionID(binary.LittleEndian.Uint32(entry))
		off := int(binary.LittleEndian.Uint32(entry[4:]))
		length := int(binary.LittleEndian.Uint32(entry[8:]))
		if id < SectionCCC || id > SectionMaybe {
			return nil, fmt.Errorf("unknown section id %d", id)
		}
		if seen[id] {
			return nil, fmt.Errorf("duplicate section id %d", id)
		}
		seen[id] = true
		if off < dirEnd || off%4 != 0 || length < 0 || off+length > len(data) {
			return nil, fmt.Errorf("section %d out of bounds: offset %d length %d", id, off, length)
		}
		if err := t.readSection(id, data[off:off+length]); err != nil {
			return nil, fmt.Errorf("section %d: %w", id, err)
		}
	}
	for id := SectionCCC; id <= SectionMaybe; id++ {
		if !seen[id] {
			return nil, fmt.Errorf("missing section id %d", id)
		}
	}
	return t, t.verify()
}

func (t *Tables) readSection(id SectionID, sec []byte) (err error) {
	switch id {
	case SectionCCC:
		t.ccc, err = readUint32s(sec)
	case SectionDecompKeys:
		t.decompKeys, err = readUint32s(sec)
	case SectionDecompValues:
		t.decompVals, err = readUint32s(sec)
	case SectionDecompRunes:
		var raw []uint32
		if raw, err = readUint32s(sec); err == nil {
			t.decompBuf = make([]rune, len(raw))
			for i, r := range raw {
				t.decompBuf[i] = rune(r)
			}
		}
	case SectionPairKeys:
		t.pairKeys, err = readUint64s(sec)
	case SectionStarterPairKeys:
		t.starterPairKeys, err = readUint64s(sec)
	case SectionPairValues:
		t.pairVals, err = readUint32s(sec)
	case SectionStarterPairValues:
		t.starterPairVals, err = readUint32s(sec)
	case SectionExclusions:
		t.Exclusions, err = decodeBitmap(sec)
	case SectionCombining:
		t.Combining, err = decodeBitmap(sec)
	case SectionDecompCanonical:
		t.DecompCanonical, err = decodeBitmap(sec)
	case SectionDecompAny:
		t.DecompAny, err = decodeBitmap(sec)
	case SectionNFKCNo:
		t.NFKCNo, err = decodeBitmap(sec)
	case SectionMaybe:
		t.Maybe, err = decodeBitmap(sec)
	}
	return err
}

// verify checks the cross-section invariants the lookup methods rely
// on: parallel arrays of equal length, strictly increasing search keys
// and in-bounds decomposition slices.
func (t *Tables) verify() error {
	if len(t.decompKeys) != len(t.decompVals) {
		return fmt.Errorf("decomposition arrays disagree: %d keys, %d values", len(t.decompKeys), len(t.decompVals))
	}
	if len(t.pairKeys) != len(t.pairVals) {
		return fmt.Errorf("composition arrays disagree: %d keys, %d values", len(t.pairKeys), len(t.pairVals))
	}
	if len(t.starterPairKeys) != len(t.starterPairVals) {
		return fmt.Errorf("starter composition arrays disagree: %d keys, %d values", len(t.starterPairKeys), len(t.starterPairVals))
	}
	for i := 1; i < len(t.ccc); i++ {
		if t.ccc[i-1]>>8 >= t.ccc[i]>>8 {
			return fmt.Errorf("combining classes not sorted at %d", i)
		}
	}
	for i := 1; i < len(t.decompKeys); i++ {
		if t.decompKeys[i-1]>>1 >= t.decompKeys[i]>>1 {
			return fmt.Errorf("decomposition keys not sorted at %d", i)
		}
	}
	for i, v := range t.decompVals {
		off, n := v>>6, v&63
		if n == 0 || int(off+n) > len(t.decompBuf) {
			return fmt.Errorf("decomposition %d reaches outside the rune pool", i)
		}
	}
	for i := 1; i < len(t.pairKeys); i++ {
		if t.pairKeys[i-1] >= t.pairKeys[i] {
			return fmt.Errorf("composition keys not sorted at %d", i)
		}
	}
	for i := 1; i < len(t.starterPairKeys); i++ {
		if t.starterPairKeys[i-1] >= t.starterPairKeys[i] {
			return fmt.Errorf("starter composition keys not sorted at %d", i)
		}
	}
	return nil
}

func readUint32s(sec []byte) ([]uint32, error) {
	if len(sec) < 4 || len(sec)%4 != 0 {
		return nil, fmt.Errorf("length %d is not a positive multiple of 4", len(sec))
	}
	n := int(binary.LittleEndian.Uint32(sec))
	sec = sec[4:]
	if len(sec) != n*4 {
		return nil, fmt.Errorf("count %d does not match %d payload bytes", n, len(sec))
	}
	out := make([]uint32, n)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(sec[i*4:])
	}
	return out, nil
}

func readUint64s(sec []byte) ([]uint64, error) {
	if len(sec) < 4 {
		return nil, fmt.Errorf("length %d too short", len(sec))
	}
	n := int(binary.LittleEndian.Uint32(sec))
	sec = sec[4:]
	if len(sec) != n*8 {
		return nil, fmt.Errorf("count %d does not match %d payload bytes", n, len(sec))
	}
	out := make([]uint64, n)
	for i := range out {
		out[i] = binary.LittleEndian.Uint64(sec[i*8:])
	}
	return out, nil
}
