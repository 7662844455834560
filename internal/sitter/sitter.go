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

// Package sitter adapts github.com/smacker/go-tree-sitter into a
// cst.Parser, building a cst.Node tree via a pre-order cursor walk. Every
// named node becomes a cst.Node, since the Splice Engine needs a
// structurally complete CST rather than a language-specific AST.
package sitter

import (
	"context"
	"fmt"

	gotreesitter "github.com/smacker/go-tree-sitter"

	"github.com/langston-barrett/tree-splicer/cst"
)

// Parser parses source text with a single tree-sitter grammar. It
// implements cst.Parser.
type Parser struct {
	language *gotreesitter.Language
}

// New returns a Parser for the given tree-sitter language.
func New(language *gotreesitter.Language) *Parser {
	return &Parser{language: language}
}

// Parse implements cst.Parser. Each call assigns fresh node ids starting
// from zero: ids are only ever compared within a single parse's tree (the
// Edit Buffer is cleared at every reparse), so they need not be globally
// unique.
func (p *Parser) Parse(ctx context.Context, source []byte) (*cst.ParsedFile, error) {
	parser := gotreesitter.NewParser()
	parser.SetLanguage(p.language)

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("sitter: parse failed: %w", err)
	}
	defer tree.Close()

	b := &builder{source: source}
	root := b.build(tree.RootNode(), "")
	return &cst.ParsedFile{Source: source, Root: root}, nil
}

// builder constructs a cst.Node tree from a tree-sitter tree, assigning
// sequential ids in pre-order as it walks.
type builder struct {
	source []byte
	nextID uint64
}

func (b *builder) build(n *gotreesitter.Node, field string) *cst.Node {
	id := b.nextID
	b.nextID++

	node := cst.NewNode(id, n.Type(), n.IsNamed(), n.StartByte(), n.EndByte(), field)

	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		childField := n.FieldNameForChild(i)
		node.AddChild(b.build(child, childField))
	}
	return node
}
