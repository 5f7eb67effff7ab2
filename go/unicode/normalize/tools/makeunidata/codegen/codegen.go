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

// Package codegen emits generated Go source: raw fragments go in
// through P, gofmt shapes them on the way out.
package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"log"
	"os"
	"path"
	"strconv"
)

const licenseHeader = `/*
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
`

// Package is the import path of a package that receives generated
// code.
type Package string

// Name returns the last element of the import path.
func (p Package) Name() string {
	return path.Base(string(p))
}

type Generator struct {
	buf bytes.Buffer
}

// NewGenerator starts a generated file for pkg, tool being the name
// stamped into the DO NOT EDIT marker.
func NewGenerator(tool string, pkg Package) *Generator {
	g := &Generator{}
	g.buf.WriteString(licenseHeader)
	g.P()
	g.P("// Code generated by ", tool, ". DO NOT EDIT.")
	g.P()
	g.P("package ", pkg.Name())
	g.P()
	return g
}

// P writes its arguments verbatim followed by a newline. Formatting is
// deferred to WriteToFile; fragments only need to become valid Go once
// the file is complete.
func (g *Generator) P(args ...any) {
	for _, a := range args {
		fmt.Fprint(&g.buf, a)
	}
	g.buf.WriteByte('\n')
}

// Quote returns s as a Go string literal.
func Quote(s string) string {
	return strconv.Quote(s)
}

// WriteToFile formats the accumulated source and writes it out. Both
// unparseable source and write failures abort the build: a generator
// that cannot emit its file has nothing sensible to continue with.
func (g *Generator) WriteToFile(out string) {
	formatted, err := format.Source(g.buf.Bytes())
	if err != nil {
		log.Fatalf("codegen: generated %s does not parse: %v", out, err)
	}
	if err := os.WriteFile(out, formatted, 0o644); err != nil {
		log.Fatalf("codegen: %v", err)
	}
	log.Printf("written %s (%d bytes)", out, len(formatted))
}
