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
	"fmt"
	"unicode/utf8"

	"github.com/Bodigrim/unicode-transforms/go/unicode/unidata"
)

// The tables hold one-level mappings; full expansion recurses until no
// element decomposes further. The deepest chain in any Unicode
// snapshot to date is 3; the guard only trips on corrupt tables.
const maxDecompositionDepth = 16

// appendDecomposition appends the full decomposition of c under the
// given mode: the jamo expansion for Hangul syllables, the recursive
// expansion of the one-level table mapping otherwise, or c itself when
// no mapping applies.
func appendDecomposition(dst []rune, t *unidata.Tables, c rune, compat bool) []rune {
	if c < utf8.RuneSelf {
		return append(dst, c)
	}
	if isHangul(c) {
		return appendHangulDecomposition(dst, c)
	}
	return appendExpanded(dst, t, c, compat, 0)
}

func appendExpanded(dst []rune, t *unidata.Tables, c rune, compat bool, depth int) []rune {
	if depth > maxDecompositionDepth {
		panic(fmt.Sprintf("normalize: decomposition of %#x does not terminate", c))
	}
	mapping, ok := t.Decomposition(c, compat)
	if !ok {
		return append(dst, c)
	}
	for _, m := range mapping {
		if isHangul(m) {
			dst = appendHangulDecomposition(dst, m)
		} else {
			dst = appendExpanded(dst, t, m, compat, depth+1)
		}
	}
	return dst
}
