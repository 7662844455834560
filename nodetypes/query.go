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

package nodetypes

import "github.com/langston-barrett/tree-splicer/cst"

// OptionalNode reports whether n is optional given its actual parent in
// the tree (or true if n has no parent, since there is no parent position
// to consult). Convenience wrapper around Optional for
// callers that already hold a *cst.Node.
func (s *Schema) OptionalNode(n *cst.Node) bool {
	p := n.Parent()
	if p == nil {
		return true
	}
	return s.Optional(n.Kind(), p.Kind())
}

