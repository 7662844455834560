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

// Package cst provides a parser-agnostic concrete-syntax-tree
// representation and the pre-order tree walk used throughout the
// mutation engine.
//
// A concrete external parser library (tree-sitter, via
// github.com/smacker/go-tree-sitter in internal/sitter) is assumed to
// expose parse, walk, node-kind, byte-range and field-name primitives;
// the rewrite-with-edits primitive is Render, implemented in this
// package. This package is the seam: it defines
// the uniform *Node shape every other core package (nodetypes, branch,
// editbuf, splice) depends on, so that those packages never import a
// concrete parser binding and can be unit tested against hand-built
// trees.
package cst

// Kind is an interned node-kind string, e.g. "binary_expression" or
// "identifier". Kinds are a closed set per grammar.
type Kind = string

// Node is one node of a concrete syntax tree, including unnamed
// (anonymous/punctuation) nodes. Node identities (ID) are assigned once
// per parse and are only valid until the tree is next reparsed.
type Node struct {
	id       uint64
	kind     Kind
	named    bool
	start    uint32
	end      uint32
	field    string // name of the field this node occupies under its parent, "" if none
	parent   *Node
	children []*Node
}

// NewNode constructs a Node. It is exported so that concrete parser
// adapters (internal/sitter) and tests can build trees without a
// circular dependency on any particular backend.
func NewNode(id uint64, kind Kind, named bool, start, end uint32, field string) *Node {
	return &Node{id: id, kind: kind, named: named, start: start, end: end, field: field}
}

// AddChild appends c as the next child of n, setting c's parent link.
func (n *Node) AddChild(c *Node) {
	c.parent = n
	n.children = append(n.children, c)
}

// ID is this node's identity, stable only until the owning tree is reparsed.
func (n *Node) ID() uint64 { return n.id }

// Kind is the grammar-assigned production name of this node.
func (n *Node) Kind() Kind { return n.kind }

// IsNamed reports whether this is a named grammar production, as opposed
// to an anonymous punctuation/keyword token.
func (n *Node) IsNamed() bool { return n.named }

// StartByte is the byte offset of the first byte of this node's text.
func (n *Node) StartByte() uint32 { return n.start }

// EndByte is the byte offset one past the last byte of this node's text.
func (n *Node) EndByte() uint32 { return n.end }

// Field is the name of the field this node occupies under its parent, or
// "" if it occupies an anonymous child slot (or has no parent).
func (n *Node) Field() string { return n.field }

// Parent is this node's parent, or nil at the root.
func (n *Node) Parent() *Node { return n.parent }

// Children is the ordered list of this node's children, named and
// unnamed alike. Callers must not mutate the returned slice.
func (n *Node) Children() []*Node { return n.children }

// ChildCount is len(n.Children()).
func (n *Node) ChildCount() int { return len(n.children) }

// ChildIndex returns the position of c among its parent's children, or -1
// if parent is nil or c is not found among its children.
func ChildIndex(parent, c *Node) int {
	if parent == nil {
		return -1
	}
	for i, ch := range parent.children {
		if ch == c {
			return i
		}
	}
	return -1
}

// ParsedFile is a source buffer together with the root of its parsed
// concrete syntax tree. The tree's node identities are valid only until
// the next parse of this buffer's bytes.
type ParsedFile struct {
	Source []byte
	Root   *Node
}

// Visitor is implemented by callers of Walk. Pre is called before a
// node's children are visited, Post after.
type Visitor interface {
	Pre(*Node) error
	Post(*Node) error
}

// Walk performs a pre-order depth-first traversal of the tree rooted at
// node, invoking v on every node exactly once (both named and unnamed).
// Ordering is pre-order DFS; traversal does not allocate beyond the
// recursion stack.
func Walk(v Visitor, node *Node) error {
	if node == nil {
		return nil
	}
	if err := v.Pre(node); err != nil {
		return err
	}
	for _, c := range node.children {
		if err := Walk(v, c); err != nil {
			return err
		}
	}
	return v.Post(node)
}

// inspector adapts a plain func(*Node) into a Visitor whose Post is a
// no-op, so callers don't need to define a full Visitor for simple
// traversals.
type inspector func(*Node)

func (f inspector) Pre(n *Node) error { f(n); return nil }
func (f inspector) Post(*Node) error  { return nil }

// Inspect traverses the tree rooted at node in pre-order, calling f on
// every node.
func Inspect(node *Node, f func(*Node)) error {
	return Walk(inspector(f), node)
}

// AllNodes returns every node of the tree rooted at root, in pre-order.
// This is the concrete form the Splice Engine consumes: a flat,
// randomly-indexable slice refreshed after every reparse.
func AllNodes(root *Node) []*Node {
	nodes := make([]*Node, 0, 16)
	_ = Inspect(root, func(n *Node) {
		nodes = append(nodes, n)
	})
	return nodes
}
