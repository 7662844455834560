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

package branch

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/langston-barrett/tree-splicer/cst"
	"github.com/langston-barrett/tree-splicer/nodetypes"
)

const fixtureSchema = `[
  {"type": "_expression", "named": true, "subtypes": [
    {"type": "identifier", "named": true},
    {"type": "binary_expression", "named": true},
    {"type": "integer_literal", "named": true}
  ]},
  {"type": "identifier", "named": true},
  {"type": "integer_literal", "named": true},
  {"type": "binary_expression", "named": true, "fields": {
    "left": {"multiple": false, "required": true, "types": [{"type": "_expression", "named": true}]},
    "right": {"multiple": false, "required": true, "types": [{"type": "_expression", "named": true}]}
  }},
  {"type": "let_declaration", "named": true, "fields": {
    "pattern": {"multiple": false, "required": true, "types": [{"type": "identifier", "named": true}]},
    "value": {"multiple": false, "required": false, "types": [{"type": "_expression", "named": true}]}
  }}
]`

// buildTwoInputs builds two small corpora shaped like:
//
//	in0: let x = 1 + 2;
//	in1: let y = 3;
func buildTwoInputs(t *testing.T) (*nodetypes.Schema, []cst.ParsedFile) {
	t.Helper()
	schema, err := nodetypes.Load([]byte(fixtureSchema))
	require.NoError(t, err)

	src0 := []byte("let x = 1 + 2;")
	root0 := cst.NewNode(100, "let_declaration", true, 0, uint32(len(src0)), "")
	pat0 := cst.NewNode(101, "identifier", true, 4, 5, "pattern")
	bin0 := cst.NewNode(102, "binary_expression", true, 8, 13, "value")
	one0 := cst.NewNode(103, "integer_literal", true, 8, 9, "left")
	two0 := cst.NewNode(104, "integer_literal", true, 12, 13, "right")
	bin0.AddChild(one0)
	bin0.AddChild(two0)
	root0.AddChild(pat0)
	root0.AddChild(bin0)

	src1 := []byte("let y = 3;")
	root1 := cst.NewNode(200, "let_declaration", true, 0, uint32(len(src1)), "")
	pat1 := cst.NewNode(201, "identifier", true, 4, 5, "pattern")
	val1 := cst.NewNode(202, "integer_literal", true, 8, 9, "value")
	root1.AddChild(pat1)
	root1.AddChild(val1)

	files := []cst.ParsedFile{
		{Source: src0, Root: root0},
		{Source: src1, Root: root1},
	}
	return schema, files
}

func TestBuildDirectBagsDeduped(t *testing.T) {
	schema, files := buildTwoInputs(t)
	idx := Build(schema, files)

	ids := idx.Bag("identifier")
	var texts []string
	for _, b := range ids {
		texts = append(texts, string(b))
	}
	require.ElementsMatch(t, []string{"x", "y"}, texts)
}

func TestBuildClosureUnderSubtypes(t *testing.T) {
	schema, files := buildTwoInputs(t)
	idx := Build(schema, files)

	// _expression is a supertype of identifier/binary_expression/integer_literal,
	// so its bag must contain every slice observed at any of those kinds.
	expr := idx.Bag("_expression")
	var texts []string
	for _, b := range expr {
		texts = append(texts, string(b))
	}
	require.Subset(t, texts, []string{"x", "y", "1", "2", "3", "1 + 2"})
}

func TestSubtypeClosureInvariant(t *testing.T) {
	// Invariant #1: for every kind K in the index, every slice present at
	// any K' in Subtypes(K), K'!=K, is also present at K.
	schema, files := buildTwoInputs(t)
	idx := Build(schema, files)

	for _, k := range idx.Kinds() {
		subtypes, ok := schema.GetSubtypes(k)
		if !ok {
			continue
		}
		kBag := toSet(idx.Bag(k))
		for _, sub := range subtypes {
			if sub == k {
				continue
			}
			for _, s := range idx.Bag(sub) {
				require.Contains(t, kBag, string(s), "kind %q missing slice %q from subtype %q", k, s, sub)
			}
		}
	}
}

func toSet(bag [][]byte) map[string]bool {
	set := make(map[string]bool, len(bag))
	for _, b := range bag {
		set[string(b)] = true
	}
	return set
}

func TestKindsIsSortedAndStable(t *testing.T) {
	schema, files := buildTwoInputs(t)
	idx := Build(schema, files)
	a := idx.Kinds()
	b := idx.Kinds()
	require.Equal(t, a, b)
	for i := 1; i < len(a); i++ {
		require.Less(t, a[i-1], a[i])
	}
}

func TestParsedAsFieldPosition(t *testing.T) {
	schema, files := buildTwoInputs(t)
	_ = Build(schema, files)
	root := files[0].Root
	pattern := root.Children()[0] // identifier in "pattern" field
	require.Equal(t, []string{"identifier"}, ParsedAs(schema, pattern))
}

func TestParsedAsUnnamedNodeIsUnsafe(t *testing.T) {
	schema, _ := buildTwoInputs(t)
	unnamed := cst.NewNode(1, "+", false, 0, 1, "")
	parent := cst.NewNode(2, "binary_expression", true, 0, 1, "")
	parent.AddChild(unnamed)
	require.Nil(t, ParsedAs(schema, unnamed))
}

func TestCandidatesChaoticPicksFromAllKinds(t *testing.T) {
	schema, files := buildTwoInputs(t)
	idx := Build(schema, files)
	rng := rand.New(rand.NewSource(0))
	node := files[0].Root
	for i := 0; i < 50; i++ {
		cands := idx.Candidates(schema, node, true, rng)
		// every returned bag must be one of the index's own bags
		require.Contains(t, idx.kinds, kindOfBag(idx, cands))
	}
}

// kindOfBag finds (one of) the kind(s) whose bag is cands by identity,
// used only to assert chaotic selection stays within the index's key set.
func kindOfBag(idx *Index, cands [][]byte) string {
	for _, k := range idx.kinds {
		if sameSlice(idx.bags[k], cands) {
			return k
		}
	}
	return ""
}

func sameSlice(a, b [][]byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if string(a[i]) != string(b[i]) {
			return false
		}
	}
	return true
}

func TestCandidatesNonChaoticUsesParsedAs(t *testing.T) {
	schema, files := buildTwoInputs(t)
	idx := Build(schema, files)
	rng := rand.New(rand.NewSource(0))
	value := files[1].Root.Children()[1] // integer_literal "3" in "value" field, typed _expression
	cands := idx.Candidates(schema, value, false, rng)
	require.Equal(t, idx.Bag("_expression"), cands)
}

func TestDeterministicBuildGivenSameInputs(t *testing.T) {
	schema, files := buildTwoInputs(t)
	idx1 := Build(schema, files)
	idx2 := Build(schema, files)
	require.Equal(t, idx1.Kinds(), idx2.Kinds())
	for _, k := range idx1.Kinds() {
		require.Equal(t, idx1.Bag(k), idx2.Bag(k))
	}
}
