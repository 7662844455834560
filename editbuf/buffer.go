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

// Package editbuf implements the Edit Buffer: a mapping from node-id to
// pending replacement bytes, consumed by cst.Render (the tree-rewrite
// primitive) to produce the new source bytes implied by applying every
// staged edit once. An empty replacement denotes deletion.
package editbuf

import "github.com/langston-barrett/tree-splicer/cst"

// Buffer accumulates pending edits for a single output. It is private to
// one in-progress mutant; a fresh Buffer (or a cleared one) is used after
// every reparse, since node identities are only valid until the tree
// they were read from is reparsed.
type Buffer struct {
	edits map[uint64][]byte
}

// New returns an empty Buffer.
func New() *Buffer {
	return &Buffer{edits: make(map[uint64][]byte)}
}

// HasEdit reports whether node has a staged replacement. Implements
// cst.Edits.
func (b *Buffer) HasEdit(node *cst.Node) bool {
	_, ok := b.edits[node.ID()]
	return ok
}

// Edit returns node's staged replacement bytes. Implements cst.Edits.
// Callers must check HasEdit first; Edit returns nil for a node with no
// staged edit.
func (b *Buffer) Edit(node *cst.Node) []byte {
	return b.edits[node.ID()]
}

// Insert stages bytes as node's replacement, keyed by its current node
// id. An empty (possibly nil) bytes stages a deletion.
func (b *Buffer) Insert(node *cst.Node, bytes []byte) {
	b.edits[node.ID()] = bytes
}

// Len is the number of nodes with a staged edit.
func (b *Buffer) Len() int { return len(b.edits) }

// Clear removes every staged edit, e.g. after the buffer has been
// rendered and the tree reparsed.
func (b *Buffer) Clear() {
	b.edits = make(map[uint64][]byte)
}
