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

// Package normalize transforms Unicode text into the four standard
// normalization forms of UAX #15.
//
// Every entry point is a pure function over immutable tables and safe
// for unbounded concurrent use. Inputs that are already normalized are
// detected with the quick-check properties and returned unchanged
// without allocating; this makes the common case (ASCII, NFC text)
// close to free. Callers who shard large inputs can split at any
// starter boundary the quick check accepts: normalization never
// reorders or composes across such a cut.
//
// The string and byte entry points replace invalid UTF-8 sequences
// with U+FFFD. The rune entry points are defined over valid Unicode
// scalar values; anything else passes through untouched.
package normalize

import (
	"bytes"
	"unicode/utf8"

	"github.com/Bodigrim/unicode-transforms/go/hack"
	"github.com/Bodigrim/unicode-transforms/go/unicode/unidata"
)

// Form denotes one of the four normalization forms of UAX #15.
type Form int

const (
	NFC Form = iota
	NFD
	NFKC
	NFKD
)

var formNames = [...]string{"NFC", "NFD", "NFKC", "NFKD"}

// Name returns the conventional name of the form.
func (f Form) Name() string {
	return formNames[f]
}

func (f Form) composing() bool {
	return f == NFC || f == NFKC
}

func (f Form) compat() bool {
	return f == NFKC || f == NFKD
}

// Runes returns f applied to src. When src is already normalized it is
// returned as is.
func (f Form) Runes(src []rune) []rune {
	t := unidata.Default()
	n := quickSpanRunes(t, f, src)
	if n == len(src) {
		return src
	}
	out := make([]rune, n, len(src)+4)
	copy(out, src[:n])
	return f.doAppend(t, out, src[n:])
}

// AppendRunes appends f applied to src onto dst and returns the
// extended buffer. The existing content of dst is left untouched and
// not reinterpreted.
func (f Form) AppendRunes(dst, src []rune) []rune {
	t := unidata.Default()
	n := quickSpanRunes(t, f, src)
	dst = append(dst, src[:n]...)
	if n == len(src) {
		return dst
	}
	return f.doAppend(t, dst, src[n:])
}

// String returns f applied to s. Already-normalized strings are
// returned as is.
func (f Form) String(s string) string {
	t := unidata.Default()
	b := hack.StringBytes(s)
	n := quickSpanBytes(t, f, b)
	if n == len(s) {
		return s
	}
	return hack.String(f.appendencoded(t, s[:n], s[n:], len(s)))
}

// Bytes returns f applied to b. Already-normalized input is returned
// as is; otherwise a fresh slice is allocated.
func (f Form) Bytes(b []byte) []byte {
	t := unidata.Default()
	n := quickSpanBytes(t, f, b)
	if n == len(b) {
		return b
	}
	return f.appendencoded(t, hack.String(b[:n]), hack.String(b[n:]), len(b))
}

// IsNormal reports whether b is in form f.
func (f Form) IsNormal(b []byte) bool {
	t := unidata.Default()
	n := quickSpanBytes(t, f, b)
	if n == len(b) {
		return true
	}
	return bytes.Equal(b[n:], f.appendencoded(t, "", hack.String(b[n:]), len(b)-n))
}

// IsNormalString reports whether s is in form f.
func (f Form) IsNormalString(s string) bool {
	t := unidata.Default()
	b := hack.StringBytes(s)
	n := quickSpanBytes(t, f, b)
	if n == len(b) {
		return true
	}
	return s[n:] == hack.String(f.appendencoded(t, "", s[n:], len(s)-n))
}

// doAppend runs the full pipeline over tail and appends the result to
// dst: decompose each code point, order the new region canonically,
// and for the composed forms compact it with the canonical
// composition. The tail must start at a safe boundary relative to dst.
func (f Form) doAppend(t *unidata.Tables, dst []rune, tail []rune) []rune {
	mark := len(dst)
	compat := f.compat()
	for _, c := range tail {
		dst = appendDecomposition(dst, t, c, compat)
	}
	canonicalOrder(t, dst[mark:])
	if f.composing() {
		dst = dst[:mark+len(compose(t, dst[mark:]))]
	}
	return dst
}

// appendencoded is the UTF-8 shaped pipeline: head is copied verbatim,
// tail is decoded (U+FFFD for invalid sequences), normalized and
// re-encoded. sizeHint sizes the result buffer.
func (f Form) appendencoded(t *unidata.Tables, head, tail string, sizeHint int) []byte {
	runes := make([]rune, 0, len(tail))
	for _, c := range tail {
		runes = append(runes, c)
	}
	norm := f.doAppend(t, make([]rune, 0, len(runes)+4), runes)
	out := make([]byte, len(head), sizeHint+utf8.UTFMax)
	copy(out, head)
	for _, c := range norm {
		out = utf8.AppendRune(out, c)
	}
	return out
}
