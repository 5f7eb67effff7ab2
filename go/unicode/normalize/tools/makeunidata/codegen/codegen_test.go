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

package codegen

import (
	"go/format"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackageName(t *testing.T) {
	assert.Equal(t, "unidata", Package("github.com/Bodigrim/unicode-transforms/go/unicode/unidata").Name())
	assert.Equal(t, "unidata", Package("unidata").Name())
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `"14.0.0"`, Quote("14.0.0"))
	assert.Equal(t, `"a\"b"`, Quote(`a"b`))
}

func TestGeneratorWritesFormattedFile(t *testing.T) {
	g := NewGenerator("maketest", Package("example.com/tools/gen"))
	g.P("// Answer is stamped in by the generator.")
	g.P("const Answer = ", 42)
	g.P()
	g.P("const Version = ", Quote("14.0.0"))

	out := filepath.Join(t.TempDir(), "gen.go")
	g.WriteToFile(out)

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	content := string(raw)

	assert.True(t, strings.HasPrefix(content, "/*\nCopyright"), "license header leads the file")
	assert.Contains(t, content, "// Code generated by maketest. DO NOT EDIT.")
	assert.Contains(t, content, "package gen")
	assert.Contains(t, content, "const Answer = 42")
	assert.Contains(t, content, `const Version = "14.0.0"`)

	formatted, err := format.Source(raw)
	require.NoError(t, err)
	assert.Equal(t, string(formatted), content, "emitted source is already gofmt formatted")
}
