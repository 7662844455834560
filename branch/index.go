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

// Package branch builds and queries the Branch Index: the mapping from
// node kind to the set of distinct source texts observed at nodes of
// that kind across a corpus, closed under the grammar's subtype
// relation.
//
// Bags are built as map[string][][]byte whose slices are explicitly
// deduplicated and sorted once at build time, so that no later consumer
// (in particular the Splice Engine's RNG draws) ever observes Go's
// randomized map iteration order.
package branch

import (
	"sort"

	"github.com/langston-barrett/tree-splicer/cst"
	"github.com/langston-barrett/tree-splicer/nodetypes"
)

// Index is a built, read-only mapping from node kind to the closed bag of
// source texts observed at that kind (or one of its subtypes) across the
// corpus it was built from.
//
// Index holds borrowed slices into the []byte buffers it was built from:
// those buffers must outlive the Index (and, transitively, any Engine
// built on top of it). This is why Build takes []cst.ParsedFile rather
// than copies: copying every distinct subtree would be a correct
// alternative but is unnecessary overhead for the common case of a
// long-lived corpus.
type Index struct {
	bags  map[string][][]byte
	kinds []string // sorted; the fixed key set for chaotic kind selection
}

// Build constructs a Branch Index from files, closed under schema's
// subtype relation.
//
// Construction: for every named node N traversed in any input, the slice
// source[N.start:N.end] is inserted into the bag at N's kind
// (deduplicated by content). Then, for every kind K known to the index
// and every K' in Subtypes(K) with K'≠K, every slice at K' is also made
// available at K, so that a node of a supertype kind (e.g.
// "_expression") can be replaced by any of its concrete specializations.
// Duplicate slices across subtypes are permitted and expected: they
// raise the probability mass of common subtrees, which is desirable.
func Build(schema *nodetypes.Schema, files []cst.ParsedFile) *Index {
	direct := make(map[string]map[string][]byte)
	for _, f := range files {
		root := f.Root
		source := f.Source
		_ = cst.Inspect(root, func(n *cst.Node) {
			if !n.IsNamed() {
				return
			}
			kind := n.Kind()
			bag, ok := direct[kind]
			if !ok {
				bag = make(map[string][]byte, 1)
				direct[kind] = bag
			}
			bag[string(source[n.StartByte():n.EndByte()])] = source[n.StartByte():n.EndByte()]
		})
	}

	keySet := make(map[string]bool, len(direct))
	for k := range direct {
		keySet[k] = true
	}
	for _, k := range schema.Kinds() {
		keySet[k] = true
	}
	kinds := make([]string, 0, len(keySet))
	for k := range keySet {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	directSorted := make(map[string][][]byte, len(kinds))
	for _, k := range kinds {
		directSorted[k] = sortedSlices(direct[k])
	}

	bags := make(map[string][][]byte, len(kinds))
	for _, k := range kinds {
		bag := append([][]byte(nil), directSorted[k]...)
		// Kinds absent from the schema (e.g. a parser's "ERROR" node)
		// have no subtypes and keep only their own slices.
		subtypes, _ := schema.GetSubtypes(k)
		for _, sub := range subtypes {
			if sub == k {
				continue
			}
			bag = append(bag, directSorted[sub]...)
		}
		bags[k] = bag
	}

	return &Index{bags: bags, kinds: kinds}
}

func sortedSlices(m map[string][]byte) [][]byte {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([][]byte, len(keys))
	for i, k := range keys {
		out[i] = m[k]
	}
	return out
}

// Kinds returns every kind known to the index, in a fixed sorted order.
func (idx *Index) Kinds() []string { return idx.kinds }

// Bag returns the closed bag of source texts available at kind, or nil if
// kind is unknown to the index. Texts are distinct within each
// contributing kind; a text observed at several subtypes appears once per
// subtype.
func (idx *Index) Bag(kind string) [][]byte { return idx.bags[kind] }

// possible returns a rough count of the distinct substitutions the index
// could produce: the sum, over every kind with at least one candidate, of
// (bag size - 1). Diagnostic only; not used by the Splice Engine.
func (idx *Index) possible() int {
	total := 0
	for _, bag := range idx.bags {
		if len(bag) > 0 {
			total += len(bag) - 1
		}
	}
	return total
}

// ParsedAs returns the set of kinds the grammar permits at node's
// position in its parent, or nil ("none") if substitution is unsafe
// there (an unnamed node, a root node, or a position the schema has no
// record of).
//
// If node is unnamed, returns nil: substitution unsafe. Otherwise,
// locates node's field name under its parent; if the parent has a field
// entry for that name, returns the field's allowed kinds. Otherwise
// falls back to the parent's anonymous children spec. Otherwise nil.
func ParsedAs(schema *nodetypes.Schema, node *cst.Node) []string {
	if !node.IsNamed() {
		return nil
	}
	parent := node.Parent()
	if parent == nil {
		return nil
	}
	if field := node.Field(); field != "" {
		if spec, ok := schema.Fields(parent.Kind())[field]; ok {
			return spec.Types
		}
	}
	if spec, ok := schema.Children(parent.Kind()); ok {
		return spec.Types
	}
	return nil
}
