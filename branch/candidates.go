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

	"github.com/langston-barrett/tree-splicer/cst"
	"github.com/langston-barrett/tree-splicer/nodetypes"
)

// Candidates returns the bag of replacement texts legal (or, under
// chaotic, simply available) at node's position.
//
//   - If chaotic, a kind is chosen uniformly at random from every key of
//     the index, trading grammar-local plausibility for broader mutation
//     coverage and deliberately risking syntax errors.
//   - Else, if ParsedAs(node) is non-empty, one of those kinds is chosen
//     uniformly and its bag returned.
//   - Else, the bag for node's own kind is returned (or nil).
func (idx *Index) Candidates(schema *nodetypes.Schema, node *cst.Node, chaotic bool, rng *rand.Rand) [][]byte {
	if chaotic {
		if len(idx.kinds) == 0 {
			return nil
		}
		kind := idx.kinds[rng.Intn(len(idx.kinds))]
		return idx.Bag(kind)
	}
	if parsedAs := ParsedAs(schema, node); len(parsedAs) > 0 {
		kind := parsedAs[rng.Intn(len(parsedAs))]
		return idx.Bag(kind)
	}
	return idx.Bag(node.Kind())
}
