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

package cst

import (
	"bytes"
	"fmt"
)

// Edits accumulates the interface Render needs: given a node, does it
// have a staged replacement, and if so, what bytes. editbuf.Buffer
// implements this so cst need not import editbuf (which in turn imports
// cst for *Node); editbuf depends on cst, not the reverse.
type Edits interface {
	HasEdit(n *Node) bool
	Edit(n *Node) []byte
}

// Render applies every edit in edits against tree rooted at root and its
// source bytes, producing the new source bytes implied by replacing each
// edited node's text with its staged replacement exactly once. An empty
// replacement denotes deletion.
//
// This is the tree-rewrite primitive a grammar-aware mutation engine
// needs from its parser library (a Rust tool in this space would reach
// for the tree_sitter_edit crate). No equivalent generic byte-splicing
// renderer exists among this repository's dependencies, so it is
// implemented here directly: a pre-order walk that emits staged-edit
// bytes verbatim (skipping the edited node's subtree so its text isn't
// also reproduced by its children) and otherwise stitches together gaps
// between children so that whitespace and punctuation not covered by
// any named/unnamed child node is preserved byte-for-byte.
func Render(source []byte, root *Node, edits Edits) ([]byte, error) {
	if root == nil {
		return nil, fmt.Errorf("cst: cannot render a nil tree")
	}
	var buf bytes.Buffer
	buf.Grow(len(source))
	cursor := root.StartByte()
	if err := render(&buf, root, source, edits, &cursor); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func render(buf *bytes.Buffer, node *Node, source []byte, edits Edits, cursor *uint32) error {
	if edits.HasEdit(node) {
		if *cursor > node.start {
			return fmt.Errorf("cst: overlapping edits at node %d (kind %q)", node.id, node.kind)
		}
		buf.Write(edits.Edit(node))
		*cursor = node.end
		return nil
	}
	if len(node.children) == 0 {
		if node.end < node.start || int(node.end) > len(source) {
			return fmt.Errorf("cst: node %d (kind %q) has out-of-range byte range [%d,%d)", node.id, node.kind, node.start, node.end)
		}
		if *cursor < node.start {
			*cursor = node.start
		}
		buf.Write(source[*cursor:node.end])
		*cursor = node.end
		return nil
	}
	for _, c := range node.children {
		if c.start > *cursor {
			buf.Write(source[*cursor:c.start])
			*cursor = c.start
		}
		if err := render(buf, c, source, edits, cursor); err != nil {
			return err
		}
	}
	if node.end > *cursor {
		buf.Write(source[*cursor:node.end])
		*cursor = node.end
	}
	return nil
}
