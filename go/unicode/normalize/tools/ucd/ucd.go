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

// Package ucd parses the Unicode Character Database files the table
// builder consumes: UnicodeData.txt, CompositionExclusions.txt and
// DerivedNormalizationProps.txt. Parsing is strict; any malformed
// line, unknown enumeration value or out-of-range code point is an
// error, because a silently misread snapshot would poison every table
// built from it.
package ucd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// Field numbers of a UnicodeData.txt line.
const (
	FCodePoint = iota
	FName
	FGeneralCategory
	FCanonicalCombiningClass
	FBidiClass
	FDecompositionTypeAndMapping
	FNumericType
	FNumericDigit
	FNumericValue
	FBidiMirrored
	FUnicode1Name
	FISOComment
	FSimpleUppercaseMapping
	FSimpleLowercaseMapping
	FSimpleTitlecaseMapping

	NumField
)

// DecompositionTag classifies the decomposition mapping of a record.
type DecompositionTag uint8

const (
	TagNone DecompositionTag = iota
	TagCanonical
	TagFont
	TagNoBreak
	TagInitial
	TagMedial
	TagFinal
	TagIsolated
	TagCircle
	TagSuper
	TagSub
	TagVertical
	TagWide
	TagNarrow
	TagSmall
	TagSquare
	TagFraction
	TagCompat
)

var decompositionTags = map[string]DecompositionTag{
	"<font>":     TagFont,
	"<noBreak>":  TagNoBreak,
	"<initial>":  TagInitial,
	"<medial>":   TagMedial,
	"<final>":    TagFinal,
	"<isolated>": TagIsolated,
	"<circle>":   TagCircle,
	"<super>":    TagSuper,
	"<sub>":      TagSub,
	"<vertical>": TagVertical,
	"<wide>":     TagWide,
	"<narrow>":   TagNarrow,
	"<small>":    TagSmall,
	"<square>":   TagSquare,
	"<fraction>": TagFraction,
	"<compat>":   TagCompat,
}

// Canonical reports whether the tag marks a canonical mapping.
func (t DecompositionTag) Canonical() bool {
	return t == TagCanonical
}

// Compat reports whether the tag marks a compatibility mapping.
func (t DecompositionTag) Compat() bool {
	return t >= TagFont
}

// QCValue is a quick-check property value.
type QCValue uint8

const (
	QCYes QCValue = iota
	QCMaybe
	QCNo
)

func (v QCValue) String() string {
	switch v {
	case QCYes:
		return "Y"
	case QCMaybe:
		return "M"
	case QCNo:
		return "N"
	}
	return fmt.Sprintf("QCValue(%d)", uint8(v))
}

// PropertyRecord carries the normalization-relevant properties of one
// code point, merged from the three snapshot files.
type PropertyRecord struct {
	CodePoint      rune
	Name           string
	CombiningClass uint8

	DecompositionTag DecompositionTag
	Decomposition    []rune

	// Excluded is the explicit CompositionExclusions.txt flag only;
	// singleton and non-starter exclusions are derived by the builder.
	Excluded bool

	NFDQC, NFCQC, NFKDQC, NFKCQC QCValue
}

// NormalizationProps are the derived quick-check assignments and the
// full exclusion set as listed in DerivedNormalizationProps.txt,
// before merging into records.
type NormalizationProps struct {
	NFDNo, NFKDNo     []rune
	NFCNo, NFCMaybe   []rune
	NFKCNo, NFKCMaybe []rune
	FullExclusions    []rune
}

// Snapshot is a parsed UCD directory.
type Snapshot struct {
	Records    []PropertyRecord // ordered by code point
	Exclusions []rune           // explicit exclusions, sorted
	Props      NormalizationProps
}

// Record returns the record of c, or nil.
func (s *Snapshot) Record(c rune) *PropertyRecord {
	i, ok := slices.BinarySearchFunc(s.Records, c, func(r PropertyRecord, target rune) int {
		return int(r.CodePoint) - int(target)
	})
	if !ok {
		return nil
	}
	return &s.Records[i]
}

// LoadSnapshot parses the three files in dir and merges the exclusion
// flags and quick-check values into the records. A property assigned
// to a code point UnicodeData.txt does not know is an error.
func LoadSnapshot(dir string) (*Snapshot, error) {
	snap := &Snapshot{}

	err := withFile(dir, "UnicodeData.txt", func(r io.Reader) (err error) {
		snap.Records, err = ParseUnicodeData(r)
		return err
	})
	if err != nil {
		return nil, err
	}
	err = withFile(dir, "CompositionExclusions.txt", func(r io.Reader) (err error) {
		snap.Exclusions, err = ParseCompositionExclusions(r)
		return err
	})
	if err != nil {
		return nil, err
	}
	err = withFile(dir, "DerivedNormalizationProps.txt", func(r io.Reader) (err error) {
		snap.Props, err = ParseNormalizationProps(r)
		return err
	})
	if err != nil {
		return nil, err
	}

	for _, c := range snap.Exclusions {
		rec := snap.Record(c)
		if rec == nil {
			return nil, fmt.Errorf("CompositionExclusions.txt lists unassigned code point %#x", c)
		}
		rec.Excluded = true
	}
	assign := func(set []rune, v QCValue, pick func(*PropertyRecord) *QCValue) error {
		for _, c := range set {
			rec := snap.Record(c)
			if rec == nil {
				return fmt.Errorf("DerivedNormalizationProps.txt assigns %v to unassigned code point %#x", v, c)
			}
			*pick(rec) = v
		}
		return nil
	}
	p := &snap.Props
	for _, m := range []struct {
		set  []rune
		v    QCValue
		pick func(*PropertyRecord) *QCValue
	}{
		{p.NFDNo, QCNo, func(r *PropertyRecord) *QCValue { return &r.NFDQC }},
		{p.NFKDNo, QCNo, func(r *PropertyRecord) *QCValue { return &r.NFKDQC }},
		{p.NFCNo, QCNo, func(r *PropertyRecord) *QCValue { return &r.NFCQC }},
		{p.NFCMaybe, QCMaybe, func(r *PropertyRecord) *QCValue { return &r.NFCQC }},
		{p.NFKCNo, QCNo, func(r *PropertyRecord) *QCValue { return &r.NFKCQC }},
		{p.NFKCMaybe, QCMaybe, func(r *PropertyRecord) *QCValue { return &r.NFKCQC }},
	} {
		if err := assign(m.set, m.v, m.pick); err != nil {
			return nil, err
		}
	}
	return snap, nil
}

func withFile(dir, name string, parse func(io.Reader) error) error {
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	defer f.Close()
	if err := parse(f); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// ParseUnicodeData reads UnicodeData.txt: one semicolon-separated
// 15-field line per code point, with First/Last pairs standing for
// whole ranges. Records come back ordered by code point.
func ParseUnicodeData(r io.Reader) ([]PropertyRecord, error) {
	var (
		records []PropertyRecord
		first   *PropertyRecord
		lastCP  rune = -1
	)
	err := eachLine(r, func(lineno int, line string) error {
		fields := strings.Split(line, ";")
		if len(fields) != NumField {
			return fmt.Errorf("line %d: %d fields, want %d", lineno, len(fields), NumField)
		}
		cp, err := parseCodePoint(fields[FCodePoint])
		if err != nil {
			return fmt.Errorf("line %d: %w", lineno, err)
		}
		if cp <= lastCP {
			return fmt.Errorf("line %d: code point %#x out of order", lineno, cp)
		}
		ccc, err := strconv.ParseUint(fields[FCanonicalCombiningClass], 10, 8)
		if err != nil {
			return fmt.Errorf("line %d: combining class: %w", lineno, err)
		}
		tag, mapping, err := parseDecomposition(fields[FDecompositionTypeAndMapping])
		if err != nil {
			return fmt.Errorf("line %d: %w", lineno, err)
		}
		rec := PropertyRecord{
			CodePoint:        cp,
			Name:             fields[FName],
			CombiningClass:   uint8(ccc),
			DecompositionTag: tag,
			Decomposition:    mapping,
		}

		name := fields[FName]
		switch {
		case strings.HasSuffix(name, ", First>"):
			if first != nil {
				return fmt.Errorf("line %d: nested range start %q", lineno, name)
			}
			first = &rec
		case strings.HasSuffix(name, ", Last>"):
			if first == nil {
				return fmt.Errorf("line %d: range end %q without start", lineno, name)
			}
			if first.CombiningClass != rec.CombiningClass || first.DecompositionTag != TagNone || tag != TagNone {
				return fmt.Errorf("line %d: range %q carries per-code-point properties", lineno, name)
			}
			for c := first.CodePoint; c <= cp; c++ {
				expanded := *first
				expanded.CodePoint = c
				records = append(records, expanded)
			}
			first = nil
		default:
			if first != nil {
				return fmt.Errorf("line %d: range start %q not followed by its end", lineno, first.Name)
			}
			records = append(records, rec)
		}
		lastCP = cp
		return nil
	})
	if err != nil {
		return nil, err
	}
	if first != nil {
		return nil, fmt.Errorf("unterminated range %q", first.Name)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no records")
	}
	return records, nil
}

func parseDecomposition(field string) (DecompositionTag, []rune, error) {
	if field == "" {
		return TagNone, nil, nil
	}
	parts := strings.Fields(field)
	tag := TagCanonical
	if strings.HasPrefix(parts[0], "<") {
		var ok bool
		if tag, ok = decompositionTags[parts[0]]; !ok {
			return 0, nil, fmt.Errorf("unknown decomposition tag %q", parts[0])
		}
		parts = parts[1:]
	}
	if len(parts) == 0 {
		return 0, nil, fmt.Errorf("decomposition tag without mapping")
	}
	mapping := make([]rune, len(parts))
	for i, p := range parts {
		c, err := parseCodePoint(p)
		if err != nil {
			return 0, nil, fmt.Errorf("decomposition mapping: %w", err)
		}
		mapping[i] = c
	}
	return tag, mapping, nil
}

// ParseCompositionExclusions reads the explicitly excluded code
// points, sorted.
func ParseCompositionExclusions(r io.Reader) ([]rune, error) {
	var out []rune
	err := eachLine(r, func(lineno int, line string) error {
		cp, err := parseCodePoint(line)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineno, err)
		}
		out = append(out, cp)
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(out)
	return out, nil
}

// ParseNormalizationProps reads DerivedNormalizationProps.txt,
// collecting the four quick-check properties and
// Full_Composition_Exclusion. Other properties in the file are not
// normalization inputs and are skipped; unknown values of the
// properties we do consume are errors.
func ParseNormalizationProps(r io.Reader) (NormalizationProps, error) {
	var props NormalizationProps
	err := eachLine(r, func(lineno int, line string) error {
		fields := strings.Split(line, ";")
		for i, f := range fields {
			fields[i] = strings.TrimSpace(f)
		}
		if len(fields) < 2 {
			return fmt.Errorf("line %d: missing property name", lineno)
		}
		lo, hi, err := parseCodePointRange(fields[0])
		if err != nil {
			return fmt.Errorf("line %d: %w", lineno, err)
		}
		var set *[]rune
		switch name := fields[1]; name {
		case "Full_Composition_Exclusion":
			set = &props.FullExclusions
		case "NFD_QC", "NFC_QC", "NFKD_QC", "NFKC_QC":
			if len(fields) < 3 {
				return fmt.Errorf("line %d: %s without a value", lineno, name)
			}
			switch value := fields[2]; {
			case name == "NFD_QC" && value == "N":
				set = &props.NFDNo
			case name == "NFKD_QC" && value == "N":
				set = &props.NFKDNo
			case name == "NFC_QC" && value == "N":
				set = &props.NFCNo
			case name == "NFC_QC" && value == "M":
				set = &props.NFCMaybe
			case name == "NFKC_QC" && value == "N":
				set = &props.NFKCNo
			case name == "NFKC_QC" && value == "M":
				set = &props.NFKCMaybe
			default:
				return fmt.Errorf("line %d: unknown %s value %q", lineno, name, value)
			}
		default:
			return nil
		}
		for c := lo; c <= hi; c++ {
			*set = append(*set, c)
		}
		return nil
	})
	if err != nil {
		return NormalizationProps{}, err
	}
	for _, set := range []*[]rune{
		&props.NFDNo, &props.NFKDNo, &props.NFCNo, &props.NFCMaybe,
		&props.NFKCNo, &props.NFKCMaybe, &props.FullExclusions,
	} {
		slices.Sort(*set)
	}
	return props, nil
}

// eachLine walks r line by line, stripping comments and blank lines,
// in the shared shape of the UCD text files.
func eachLine(r io.Reader, fn func(lineno int, line string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := fn(lineno, line); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func parseCodePoint(s string) (rune, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 16, 32)
	if err != nil {
		return 0, fmt.Errorf("bad code point %q", s)
	}
	if v > unicode.MaxRune {
		return 0, fmt.Errorf("code point %#x beyond U+10FFFF", v)
	}
	return rune(v), nil
}

func parseCodePointRange(s string) (lo, hi rune, err error) {
	if first, last, ok := strings.Cut(s, ".."); ok {
		if lo, err = parseCodePoint(first); err != nil {
			return 0, 0, err
		}
		if hi, err = parseCodePoint(last); err != nil {
			return 0, 0, err
		}
		if hi < lo {
			return 0, 0, fmt.Errorf("inverted range %q", s)
		}
		return lo, hi, nil
	}
	if lo, err = parseCodePoint(s); err != nil {
		return 0, 0, err
	}
	return lo, lo, nil
}
