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

// canonicalOrder rearranges buf in place so that every maximal run of
// non-starters is ordered by combining class. Starters never move, and
// marks with equal classes keep their relative order. Runs are a
// handful of marks in real text, so an insertion sort beats anything
// with setup cost.
func canonicalOrder(t *unidata.Tables, buf []rune) {
	for i := 1; i < len(buf); i++ {
		cc := t.CombiningClass(buf[i])
		if cc == 0 {
			continue
		}
		for j := i; j > 0 && t.CombiningClass(buf[j-1]) > cc; j-- {
			buf[j-1], buf[j] = buf[j], buf[j-1]
		}
	}
}
