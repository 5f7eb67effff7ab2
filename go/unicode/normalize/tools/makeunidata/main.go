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

// makeunidata compiles a Unicode Character Database snapshot into the
// binary table artifact the normalization engine embeds, plus the
// version constants that pin it.
//
//	makeunidata --ucd ~/ucd/14.0.0 --unicode-version 14.0.0 --out go/unicode/unidata
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/Bodigrim/unicode-transforms/go/unicode/normalize/tools/makeunidata/codegen"
	"github.com/Bodigrim/unicode-transforms/go/unicode/normalize/tools/ucd"
	"github.com/Bodigrim/unicode-transforms/go/unicode/unidata"
)

const PkgUnidata codegen.Package = "github.com/Bodigrim/unicode-transforms/go/unicode/unidata"

var (
	ucdDir         = pflag.String("ucd", "", "directory holding UnicodeData.txt, CompositionExclusions.txt and DerivedNormalizationProps.txt")
	unicodeVersion = pflag.String("unicode-version", "", "version of the snapshot, e.g. 14.0.0")
	output         = pflag.String("out", "go/unicode/unidata", "directory to write unidata.bin and version.go into")
)

func main() {
	pflag.Parse()
	if *ucdDir == "" || *unicodeVersion == "" {
		pflag.Usage()
		os.Exit(2)
	}

	snap, err := ucd.LoadSnapshot(*ucdDir)
	if err != nil {
		log.Fatalf("failed to load the UCD snapshot: %v", err)
	}
	log.Printf("parsed %d records, %d explicit exclusions", len(snap.Records), len(snap.Exclusions))

	data, err := extract(snap, *unicodeVersion)
	if err != nil {
		log.Fatalf("failed to build the tables: %v", err)
	}
	log.Printf("tables: %d combining classes, %d decompositions (%d pool runes), %d+%d composition pairs, %d exclusions, %d maybe",
		len(data.ccc), len(data.decompKeys), len(data.decompBuf),
		len(data.pairKeys), len(data.starterPairKeys), len(data.exclusions), len(data.maybe))

	artifact, err := serialize(data)
	if err != nil {
		log.Fatalf("failed to serialize the artifact: %v", err)
	}
	// Load the bytes back before writing anything: the loader is the
	// authority on whether the artifact is well formed.
	tables, err := unidata.LoadFrom(artifact)
	if err != nil {
		log.Fatalf("generated artifact does not load back: %v", err)
	}

	bin := filepath.Join(*output, "unidata.bin")
	if err := os.WriteFile(bin, artifact, 0o644); err != nil {
		log.Fatalf("%v", err)
	}
	log.Printf("written %s (%d bytes, crc %#08x)", bin, len(artifact), tables.Checksum())

	g := codegen.NewGenerator("makeunidata", PkgUnidata)
	g.P("// UnicodeVersion is the version of the snapshot the embedded")
	g.P("// artifact was built from.")
	g.P("const UnicodeVersion = ", codegen.Quote(data.version))
	g.P()
	g.P("// embeddedChecksum pins the payload CRC of the embedded artifact.")
	g.P("const embeddedChecksum = ", fmt.Sprintf("%#08x", tables.Checksum()))
	g.WriteToFile(filepath.Join(*output, "version.go"))
}
