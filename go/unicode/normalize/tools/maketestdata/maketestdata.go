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

// maketestdata regenerates the conformance fixture the normalize
// package tests against. The corpus is enumerated deterministically
// from a UCD snapshot — every decomposable code point, every canonical
// pair, Hangul coverage, mark stacks, exclusion probes and a set of
// fixed multilingual strings — and the expected outputs for all four
// forms come from the reference implementation in golang.org/x/text.
//
//	maketestdata --ucd ~/ucd/14.0.0 --out go/unicode/normalize/testdata/normalization_cases.txt.gz
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/pflag"
	xnorm "golang.org/x/text/unicode/norm"

	"github.com/Bodigrim/unicode-transforms/go/unicode/normalize/tools/ucd"
)

var (
	ucdDir = pflag.String("ucd", "", "directory holding the UCD snapshot")
	output = pflag.String("out", "go/unicode/normalize/testdata/normalization_cases.txt.gz", "fixture file to write")
)

var bases = []rune{0x0061, 0x0071, 0x03B1, 0x1100}

var marks = []rune{
	0x0300, 0x0301, 0x0308, 0x0316, 0x0323,
	0x0334, 0x0345, 0x05B0, 0x093C, 0x0F71,
}

// probes are code points with instructive composition behavior:
// excluded decomposables, singletons, non-starter decompositions and a
// few compatibility classics.
var probes = []rune{
	0x0340, 0x0341, 0x0343, 0x0344, 0x0374, 0x037E, 0x0387,
	0x0958, 0x0959, 0x095A, 0x095B, 0x095C, 0x095D, 0x095E, 0x095F,
	0x09DC, 0x09DD, 0x09DF, 0x0A33, 0x0A36, 0x0A59, 0x0A5A, 0x0A5B, 0x0A5E,
	0x0B5C, 0x0B5D, 0x0F43, 0x0F4D, 0x0F52, 0x0F57, 0x0F5C, 0x0F69,
	0x0F73, 0x0F75, 0x0F76, 0x0F78, 0x0F81, 0x0F93, 0x0F9D, 0x0FA2,
	0x0FA7, 0x0FAC, 0x0FB9, 0x1E9B, 0x2000, 0x2001, 0x2126, 0x212A,
	0x212B, 0x2329, 0x232A, 0xF900, 0xFA10, 0xFB1D, 0xFB1F,
}

var phrases = []string{
	"hello, world",
	"café",
	"café",
	"Việt Nam",
	"Việt Nam",
	"안녕하세요",
	"한국",
	"Ἀἀιͅ",
	"ẛ̣",
	"ﬁnancial",
	"ﷺ",
	"①②③",
	"ｶﾞﾀｶﾅ",
	"x̵̧̤́",
	"ྷཱིུ",
	"ÅÅÅ",
	"ΩΩ",
	"한글 한글",
	"السلام",
	"ﻻﻷ",
	"プログラマ",
	"½ + ¼ = ¾",
	"⒈⒉⒊",
	"ë́ĕ́",
	"Ǆǅǆ",
}

func main() {
	pflag.Parse()
	if *ucdDir == "" {
		pflag.Usage()
		os.Exit(2)
	}

	snap, err := ucd.LoadSnapshot(*ucdDir)
	if err != nil {
		log.Fatalf("failed to load the UCD snapshot: %v", err)
	}

	cases := corpus(snap)
	if err := writeFixture(*output, cases); err != nil {
		log.Fatal(err)
	}
	log.Printf("written %s (%d cases)", *output, len(cases))
}

// corpus enumerates the test inputs in a fixed order, dropping exact
// duplicates.
func corpus(snap *ucd.Snapshot) [][]rune {
	var out [][]rune
	seen := make(map[string]bool)
	add := func(src ...rune) {
		key := string(src)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, src)
	}

	for i := range snap.Records {
		rec := &snap.Records[i]
		if rec.DecompositionTag == ucd.TagNone {
			continue
		}
		add(rec.CodePoint)
		add(rec.CodePoint, 0x0301)
	}
	for i := range snap.Records {
		rec := &snap.Records[i]
		if !rec.DecompositionTag.Canonical() || len(rec.Decomposition) != 2 {
			continue
		}
		add(rec.Decomposition[0], rec.Decomposition[1])
		add(rec.Decomposition[0], 0x0334, rec.Decomposition[1])
	}
	for l := rune(0x1100); l < 0x1113; l++ {
		for v := rune(0x1161); v < 0x1176; v++ {
			add(l, v)
		}
	}
	for t := rune(0x11A8); t < 0x11C3; t++ {
		add(0x1100, 0x1161, t)
	}
	for s := rune(0xAC00); s <= 0xD7A3; s += 97 {
		add(s)
	}
	for _, base := range bases {
		for _, m1 := range marks {
			for _, m2 := range marks {
				add(base, m1, m2)
			}
		}
	}
	for _, p := range probes {
		add(p)
		add(0x0061, p)
	}
	for _, s := range phrases {
		add([]rune(s)...)
	}
	return out
}

func writeFixture(path string, cases [][]rune) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	gw := gzip.NewWriter(f)

	fmt.Fprintf(gw, "# Normalization conformance cases, generated by maketestdata.\n")
	fmt.Fprintf(gw, "# %d cases: source; NFC; NFD; NFKC; NFKD\n", len(cases))
	for _, src := range cases {
		s := string(src)
		fmt.Fprintf(gw, "%s;%s;%s;%s;%s\n",
			hexRunes(s),
			hexRunes(xnorm.NFC.String(s)),
			hexRunes(xnorm.NFD.String(s)),
			hexRunes(xnorm.NFKC.String(s)),
			hexRunes(xnorm.NFKD.String(s)))
	}
	if err := gw.Close(); err != nil {
		return err
	}
	return f.Close()
}

func hexRunes(s string) string {
	var sb strings.Builder
	for i, c := range []rune(s) {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%04X", c)
	}
	return sb.String()
}
