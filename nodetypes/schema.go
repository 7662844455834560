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

// Package nodetypes decodes a grammar's static node-type description
// (tree-sitter's node-types.json, conceptually) into a queryable schema:
// transitive subtypes, field specs, reverse-field lookups, and the
// optionality predicate the Splice Engine uses to decide whether a node
// is safe to delete.
package nodetypes

import (
	"encoding/json"
	"fmt"
	"sort"
)

// rawSubtype mirrors one entry of a "subtypes" or field "types" array in
// node-types.json.
type rawSubtype struct {
	Type  string `json:"type"`
	Named bool   `json:"named"`
}

// rawChildren mirrors a node's anonymous "children" spec.
type rawChildren struct {
	Multiple bool         `json:"multiple"`
	Required bool         `json:"required"`
	Types    []rawSubtype `json:"types"`
}

// rawField mirrors one entry of a node's "fields" map.
type rawField struct {
	Multiple bool         `json:"multiple"`
	Required bool         `json:"required"`
	Types    []rawSubtype `json:"types"`
}

// rawNode mirrors one top-level entry of node-types.json.
type rawNode struct {
	Type     string              `json:"type"`
	Named    bool                `json:"named"`
	Children rawChildren         `json:"children"`
	Fields   map[string]rawField `json:"fields"`
	Subtypes []rawSubtype        `json:"subtypes"`
}

// ChildrenSpec describes a node kind's anonymous (unnamed-field) child
// slot, if it has one.
type ChildrenSpec struct {
	Multiple bool
	Required bool
	Types    []string
}

// FieldSpec describes one named child slot of a node kind.
type FieldSpec struct {
	Multiple bool
	Required bool
	Types    []string
}

// reverseEntry is one (parent_kind, multiple, required) tuple recorded
// for a node kind that can appear at some field position.
type reverseEntry struct {
	parentKind string
	multiple   bool
	required   bool
}

// Schema is the queryable form of a grammar's node-type description.
type Schema struct {
	subtypes      map[string][]string // kind -> transitive closure including itself
	children      map[string]ChildrenSpec
	fields        map[string]map[string]FieldSpec
	reverseFields map[string][]reverseEntry
}

// Load decodes nodeTypesJSON (the raw bytes of a grammar's
// node-types.json) into a Schema.
//
// Decoding error handling: a malformed grammar schema fails Load and is
// fatal at startup, so callers should treat a Load error as unrecoverable.
func Load(nodeTypesJSON []byte) (*Schema, error) {
	var nodes []rawNode
	if err := json.Unmarshal(nodeTypesJSON, &nodes); err != nil {
		return nil, fmt.Errorf("nodetypes: malformed grammar schema: %w", err)
	}
	return build(nodes)
}

func build(nodes []rawNode) (*Schema, error) {
	byType := make(map[string]*rawNode, len(nodes))
	for i := range nodes {
		byType[nodes[i].Type] = &nodes[i]
	}

	s := &Schema{
		subtypes:      make(map[string][]string, len(nodes)),
		children:      make(map[string]ChildrenSpec, len(nodes)),
		fields:        make(map[string]map[string]FieldSpec, len(nodes)),
		reverseFields: make(map[string][]reverseEntry),
	}

	for i := range nodes {
		n := &nodes[i]
		visited := make(map[string]bool)
		s.subtypes[n.Type] = subtypesOf(n.Type, byType, visited)

		if n.Named {
			s.children[n.Type] = ChildrenSpec{
				Multiple: n.Children.Multiple,
				Required: n.Children.Required,
				Types:    typeNames(n.Children.Types),
			}
		}

		fieldMap := make(map[string]FieldSpec, len(n.Fields))
		for name, f := range n.Fields {
			fieldMap[name] = FieldSpec{
				Multiple: f.Multiple,
				Required: f.Required,
				Types:    typeNames(f.Types),
			}
		}
		s.fields[n.Type] = fieldMap
	}

	// reverse_fields: for every parent kind P and every field F of P with
	// allowed types Tᵢ, and for every K ∈ subtypes(Tᵢ), append
	// (P, F.multiple, F.required). Field names are iterated in sorted
	// order so that any caller observing construction order (e.g. via a
	// later addition of a deterministic tie-break) sees a stable result;
	// the appended entries themselves are unordered sets of facts so this
	// is a determinism hygiene measure, not a correctness requirement.
	for i := range nodes {
		n := &nodes[i]
		fieldNames := make([]string, 0, len(n.Fields))
		for name := range n.Fields {
			fieldNames = append(fieldNames, name)
		}
		sort.Strings(fieldNames)
		for _, name := range fieldNames {
			field := n.Fields[name]
			for _, t := range field.Types {
				for _, sub := range s.lookupSubtypes(t.Type) {
					s.reverseFields[sub] = append(s.reverseFields[sub], reverseEntry{
						parentKind: n.Type,
						multiple:   field.Multiple,
						required:   field.Required,
					})
				}
			}
		}
	}

	return s, nil
}

func (s *Schema) lookupSubtypes(kind string) []string {
	if v, ok := s.subtypes[kind]; ok {
		return v
	}
	return nil
}

// subtypesOf computes the transitive closure of kind under the grammar's
// "supertype" relation, including kind itself. Cycles are not expected in
// a well-formed grammar, but the visited set defends against them anyway.
func subtypesOf(kind string, byType map[string]*rawNode, visited map[string]bool) []string {
	if visited[kind] {
		return nil
	}
	visited[kind] = true
	result := []string{kind}
	n, ok := byType[kind]
	if !ok {
		return result
	}
	for _, sub := range n.Subtypes {
		result = append(result, subtypesOf(sub.Type, byType, visited)...)
	}
	return result
}

func typeNames(types []rawSubtype) []string {
	if len(types) == 0 {
		return nil
	}
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.Type
	}
	return names
}

// Subtypes returns the transitive set of node kinds reachable from kind
// through the grammar's supertype relation, including kind itself. It
// panics if kind is not a known grammar kind; callers that need a
// non-panicking lookup should use GetSubtypes.
func (s *Schema) Subtypes(kind string) []string {
	v, ok := s.subtypes[kind]
	if !ok {
		panic(fmt.Sprintf("nodetypes: invalid node kind %q", kind))
	}
	return v
}

// GetSubtypes returns the transitive subtypes of kind, or (nil, false) if
// kind is not a known grammar kind.
func (s *Schema) GetSubtypes(kind string) ([]string, bool) {
	v, ok := s.subtypes[kind]
	return v, ok
}

// Children returns the anonymous-child-slot spec for kind, if any.
func (s *Schema) Children(kind string) (ChildrenSpec, bool) {
	v, ok := s.children[kind]
	return v, ok
}

// Fields returns the field-name -> spec map for kind.
func (s *Schema) Fields(kind string) map[string]FieldSpec {
	return s.fields[kind]
}

// Optional reports whether a node of kind nodeKind, with a parent of kind
// parentKind, is optional, i.e. safe to delete without definitely
// breaking the grammar.
//
// Returns false iff some reverse-field entry for nodeKind names
// parentKind with (multiple=false OR required=true): a required position
// or a single-valued one (even if not required) counts as non-optional.
// Otherwise returns true, including when nodeKind is absent from the
// reverse-field table altogether.
func (s *Schema) Optional(nodeKind, parentKind string) bool {
	for _, e := range s.reverseFields[nodeKind] {
		if e.parentKind == parentKind && (!e.multiple || e.required) {
			return false
		}
	}
	return true
}

// Kinds returns every node kind known to the schema, i.e. every type
// declared in the grammar's node-types.json, named or not, in a stable,
// sorted order. This is the schema's contribution to the Branch Index's
// key set (construction invariant #3: "Keys are exactly the union of
// kinds appearing in the corpus and kinds mentioned in the schema's
// children/fields tables").
func (s *Schema) Kinds() []string {
	kinds := make([]string, 0, len(s.subtypes))
	for k := range s.subtypes {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// ListTypes returns the allowed kinds of kind's anonymous multiple,
// non-required child slot (i.e. its "list" position), or nil if kind has
// no such slot.
func (s *Schema) ListTypes(kind string) []string {
	c, ok := s.children[kind]
	if !ok || !c.Multiple || c.Required {
		return nil
	}
	return c.Types
}
