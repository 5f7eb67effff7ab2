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

import "github.com/Bodigrim/unicode-transforms/go/unicode/unidata"

// compose combines starters with later code points in a canonically
// decomposed, canonically ordered buffer, per the canonical
// composition algorithm (UAX #15). The buffer is compacted in place;
// the shortened slice is returned.
//
// A candidate combines with the most recent starter unless blocked by
// an intervening code point of equal or higher combining class.
// Because the buffer is ordered, the highest intervening class is the
// class of the last retained code point, so one byte of state decides
// blocking. Absorbed candidates do not update that state. Candidates
// that are themselves starters combine only when directly adjacent:
// Hangul jamo via arithmetic, the rest via the dedicated
// starter-second pair table.
func compose(t *unidata.Tables, buf []rune) []rune {
	out := buf[:0]
	starter := -1
	var prevCC uint8
	for _, c := range buf {
		cc := t.CombiningClass(c)
		if starter >= 0 {
			first := out[starter]
			adjacent := starter == len(out)-1
			if cc == 0 {
				if adjacent {
					if composed, ok := combineHangul(first, c); ok {
						out[starter] = composed
						continue
					}
					if composed, ok := t.ComposeStarterPair(first, c); ok && !t.Exclusions.Contains(composed) {
						out[starter] = composed
						continue
					}
				}
			} else if adjacent || prevCC < cc {
				if composed, ok := t.ComposePair(first, c); ok && !t.Exclusions.Contains(composed) {
					out[starter] = composed
					continue
				}
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
