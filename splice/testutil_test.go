//  Copyright (c) 2023 Uber Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package splice

import (
	"context"

	"github.com/langston-barrett/tree-splicer/cst"
	"github.com/langston-barrett/tree-splicer/nodetypes"
)

// testSchemaJSON describes a toy whitespace-token grammar: a source_file
// node whose children are an arbitrary number of token leaves. It exists
// purely to exercise the splice package's orchestration (loop mechanics,
// determinism, size bound) without depending on a real tree-sitter
// grammar.
const testSchemaJSON = `[
  {
    "type": "source_file",
    "named": true,
    "children": {
      "multiple": true,
      "required": false,
      "types": [{"type": "token", "named": true}]
    }
  },
  {"type": "token", "named": true}
]`

func loadTestSchema() *nodetypes.Schema {
	schema, err := nodetypes.Load([]byte(testSchemaJSON))
	if err != nil {
		panic(err)
	}
	return schema
}

// tokenParser is a stub cst.Parser for a whitespace-token toy language:
// it splits source on ASCII spaces into "token" leaves under a
// "source_file" root. It stands in for a real tree-sitter-backed parser
// so the splice package's tests can deterministically exercise reparse
// cycles without cgo or an embedded grammar.
type tokenParser struct {
	nextID uint64
}

func newTokenParser() *tokenParser { return &tokenParser{} }

func (p *tokenParser) Parse(_ context.Context, source []byte) (*cst.ParsedFile, error) {
	root := cst.NewNode(p.nextID, "source_file", true, 0, uint32(len(source)), "")
	p.nextID++

	pos := 0
	for pos < len(source) {
		for pos < len(source) && source[pos] == ' ' {
			pos++
		}
		start := pos
		for pos < len(source) && source[pos] != ' ' {
			pos++
		}
		if pos > start {
			tok := cst.NewNode(p.nextID, "token", true, uint32(start), uint32(pos), "")
			p.nextID++
			root.AddChild(tok)
		}
	}
	return &cst.ParsedFile{Source: source, Root: root}, nil
}

func mustParse(p *tokenParser, source string) cst.ParsedFile {
	pf, err := p.Parse(context.Background(), []byte(source))
	if err != nil {
		panic(err)
	}
	return *pf
}

// erroringParser fails every Parse call after the first successful one,
// to exercise SpliceTree's reparse-failure path.
type erroringParser struct {
	calls int
	fail  error
}

func (p *erroringParser) Parse(ctx context.Context, source []byte) (*cst.ParsedFile, error) {
	p.calls++
	if p.calls > 1 {
		return nil, p.fail
	}
	tp := newTokenParser()
	return tp.Parse(ctx, source)
}
