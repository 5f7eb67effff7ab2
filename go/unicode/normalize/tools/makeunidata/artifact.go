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
	"fmt"
	"hash/crc32"

	"github.com/Bodigrim/unicode-transforms/go/unicode/unidata"
)

// serialize lays the tables out in the unidata artifact format: fixed
// header, section directory, 4-byte aligned sections in id order. The
// payload CRC is patched into the header last.
func serialize(d *buildData) ([]byte, error) {
	if len(d.version) == 0 || len(d.version) > 16 {
		return nil, fmt.Errorf("version string %q does not fit the header", d.version)
	}

	payloads := [][]byte{
		appendUint32Section(nil, d.ccc),
		appendUint32Section(nil, d.decompKeys),
		appendUint32Section(nil, d.decompVals),
		appendUint32Section(nil, runesToUint32(d.decompBuf)),
		appendUint64Section(nil, d.pairKeys),
		appendUint64Section(nil, d.starterPairKeys),
		appendUint32Section(nil, d.pairVals),
		appendUint32Section(nil, d.starterPairVals),
		bitmapSection(d.exclusions),
		bitmapSection(d.cccMembers),
		bitmapSection(d.canonMembers),
		bitmapSection(d.anyMembers),
		bitmapSection(d.nfkcNo),
		bitmapSection(d.maybe),
	}
	if len(payloads) != int(unidata.SectionMaybe) {
		return nil, fmt.Errorf("section list out of sync with the format: %d payloads", len(payloads))
	}

	offset := unidata.HeaderSize + len(payloads)*12
	total := offset
	for i, p := range payloads {
		if len(p)%4 != 0 {
			return nil, fmt.Errorf("section %d payload is %d bytes, not 4-byte aligned", i+1, len(p))
		}
		total += len(p)
	}

	out := make([]byte, 0, total)
	out = append(out, unidata.Magic...)
	out = binary.LittleEndian.AppendUint32(out, unidata.FormatVersion)
	out = binary.LittleEndian.AppendUint32(out, uint32(total))
	out = binary.LittleEndian.AppendUint32(out, 0) // CRC, patched below
	var version [16]byte
	copy(version[:], d.version)
	out = append(out, version[:]...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(payloads)))
	out = append(out, make([]byte, unidata.HeaderSize-len(out))...)

	pos := offset
	for i, p := range payloads {
		out = binary.LittleEndian.AppendUint32(out, uint32(i)+1)
		out = binary.LittleEndian.AppendUint32(out, uint32(pos))
		out = binary.LittleEndian.AppendUint32(out, uint32(len(p)))
		pos += len(p)
	}
	for _, p := range payloads {
		out = append(out, p...)
	}
	if len(out) != total {
		return nil, fmt.Errorf("artifact came out %d bytes, expected %d", len(out), total)
	}
	binary.LittleEndian.PutUint32(out[12:], crc32.ChecksumIEEE(out[unidata.HeaderSize:]))
	return out, nil
}

func appendUint32Section(dst []byte, vals []uint32) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(vals)))
	for _, v := range vals {
		dst = binary.LittleEndian.AppendUint32(dst, v)
	}
	return dst
}

func appendUint64Section(dst []byte, vals []uint64) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(vals)))
	for _, v := range vals {
		dst = binary.LittleEndian.AppendUint64(dst, v)
	}
	return dst
}

func runesToUint32(runes []rune) []uint32 {
	out := make([]uint32, len(runes))
	for i, c := range runes {
		out[i] = uint32(c)
	}
	return out
}

func bitmapSection(members []rune) []byte {
	b, _ := unidata.NewBitmap(members).AppendBinary(nil)
	return b
}
