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
	"unicode/utf8"

	"github.com/Bodigrim/unicode-transforms/go/unicode/unidata"
)

type qcValue uint8

const (
	qcYes qcValue = iota
	qcMaybe
	qcNo
)

// quickCheck answers the per-code-point quick-check property for f.
// Hangul syllables are resolved arithmetically: they decompose under
// NFD/NFKD and are stable under NFC/NFKC. Everything a composed form
// might need to reconsider (possible second elements of a pair,
// including jamo V and T) answers Maybe.
func quickCheck(t *unidata.Tables, f Form, c rune) qcValue {
	if isHangul(c) {
		if f.composing() {
			return qcYes
		}
		return qcNo
	}
	switch f {
	case NFD:
		if t.DecompCanonical.Contains(c) {
			return qcNo
		}
	case NFKD:
		if t.DecompAny.Contains(c) {
			return qcNo
		}
	case NFC:
		if t.Exclusions.Contains(c) {
			return qcNo
		}
		if t.Maybe.Contains(c) {
			return qcMaybe
		}
	case NFKC:
		if t.NFKCNo.Contains(c) {
			return qcNo
		}
		if t.Maybe.Contains(c) {
			return qcMaybe
		}
	}
	return qcYes
}

// quickSpanRunes returns the length of a prefix of src that is
// guaranteed normalized under f, cut back to a safe boundary: the
// prefix always ends immediately before a starter, so no reordering or
// composition can reach across the cut. A full-length result means the
// whole input is normalized.
func quickSpanRunes(t *unidata.Tables, f Form, src []rune) int {
	segStart := 0
	var lastCC uint8
	for i, c := range src {
		if c < utf8.RuneSelf {
			segStart = i
			lastCC = 0
			continue
		}
		if quickCheck(t, f, c) != qcYes {
			return segStart
		}
		cc := t.CombiningClass(c)
		if cc == 0 {
			segStart = i
		} else if lastCC > cc {
			return segStart
		}
		lastCC = cc
	}
	return len(src)
}

// quickSpanBytes is quickSpanRunes over UTF-8 bytes, with an ASCII
// fast loop. Invalid byte sequences count as trouble: the full
// pipeline rewrites them, so they must not land inside the span.
func quickSpanBytes(t *unidata.Tables, f Form, src []byte) int {
	segStart := 0
	var lastCC uint8
	for i := 0; i < len(src); {
		if src[i] < utf8.RuneSelf {
			segStart = i
			lastCC = 0
			i++
			continue
		}
		c, size := utf8.DecodeRune(src[i:])
		if c == utf8.RuneError && size <= 1 {
			return segStart
		}
		if quickCheck(t, f, c) != qcYes {
			return segStart
		}
		cc := t.CombiningClass(c)
		if cc == 0 {
			segStart = i
		} else if lastCC > cc {
			return segStart
		}
		lastCC = cc
		i += size
	}
	return len(src)
}
