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
	"bytes"
	"context"
	"fmt"
	"math/rand"

	"github.com/langston-barrett/tree-splicer/branch"
	"github.com/langston-barrett/tree-splicer/cst"
	"github.com/langston-barrett/tree-splicer/editbuf"
	"github.com/langston-barrett/tree-splicer/nodetypes"
)

// maxResamples bounds the retry loops used when sampling dead-ends (a
// node with no usable candidates, a non-optional node picked for
// deletion). These are diagnostic caps, not correctness requirements: a
// tiny or homogeneous input can make every resample fail, and the engine
// must still terminate.
const maxResamples = 256

// Engine runs the per-output mutate-reparse loop (SpliceTree) against a
// shared, read-only Branch Index and Node-Type Schema.
//
// An Engine is single-threaded and synchronous: it owns a private *rand.Rand
// draw stream, so it must not be shared across goroutines. Multiple
// Engines (e.g. one per --jobs worker) may safely share the same *Schema
// and *branch.Index, since both are read-only after construction.
type Engine struct {
	schema *nodetypes.Schema
	index  *branch.Index
	parser cst.Parser
	cfg    Config
	rng    *rand.Rand
}

// NewEngine constructs an Engine. schema and index must outlive it.
func NewEngine(schema *nodetypes.Schema, index *branch.Index, parser cst.Parser, cfg Config) *Engine {
	return &Engine{
		schema: schema,
		index:  index,
		parser: parser,
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(int64(cfg.Seed))),
	}
}

// SpliceTree runs the per-output loop against seed, returning the
// resulting mutant bytes. ok is false if no mutation could be produced
// (InterSplices == 0); err is non-nil only on a render or reparse
// failure, which aborts this output without being fatal to the engine.
func (e *Engine) SpliceTree(ctx context.Context, seed cst.ParsedFile) (out []byte, ok bool, err error) {
	if e.cfg.InterSplices == 0 {
		return nil, false, nil
	}

	splices := e.drawSpliceCount()

	buf := editbuf.New()
	text := append([]byte(nil), seed.Source...)
	tree := seed.Root
	nodes := cst.AllNodes(tree)
	size := len(text)
	reparseEvery := e.cfg.normalizedReparse()

	var intra *branch.Index
	if e.cfg.IntraSplices > 0 {
		intra = branch.Build(e.schema, []cst.ParsedFile{{Source: text, Root: tree}})
	}

	for i := 0; i < splices; i++ {
		idx := e.index
		if intra != nil && i < e.cfg.IntraSplices {
			idx = intra
		}

		var (
			node *cst.Node
			repl []byte
			d    int
			have bool
		)
		if e.rng.Intn(100) < e.cfg.Deletions {
			node, repl, d, have = e.deleteNode(nodes)
		} else {
			node, repl, d, have = e.spliceNode(idx, text, nodes)
		}
		if !have {
			// No usable mutation at this step: silently skipped, but the
			// iteration counter still advances so the loop terminates.
			continue
		}

		buf.Insert(node, repl)
		size += d
		sizedOut := size >= e.cfg.MaxSize

		if i%reparseEvery == 0 || i+1 == splices || sizedOut {
			rendered, rerr := cst.Render(text, tree, buf)
			if rerr != nil {
				return nil, false, fmt.Errorf("splice: render failed: %w", rerr)
			}
			text = rendered

			parsed, perr := e.parser.Parse(ctx, text)
			if perr != nil {
				return nil, false, fmt.Errorf("splice: reparse failed: %w", perr)
			}
			tree = parsed.Root
			nodes = cst.AllNodes(tree)
			buf.Clear()

			if intra != nil && i+1 < e.cfg.IntraSplices {
				intra = branch.Build(e.schema, []cst.ParsedFile{{Source: text, Root: tree}})
			}
		}

		if sizedOut {
			break
		}
	}

	return text, true, nil
}

// drawSpliceCount draws the number of splice steps to perform this
// output, from the half-open range [1, InterSplices). This
// half-open-exclusive-upper-bound behavior is preserved deliberately for
// seed compatibility with existing corpora even though it looks like an
// off-by-one at first glance. When InterSplices <= 1 it is used as-is,
// since [1, n) is empty or ill-formed for n <= 1.
func (e *Engine) drawSpliceCount() int {
	if e.cfg.InterSplices <= 1 {
		return e.cfg.InterSplices
	}
	return e.rng.Intn(e.cfg.InterSplices-1) + 1
}

// deleteNode picks a deletion target among nodes. By default it only
// deletes optional nodes (nodes safe to remove without definitely
// breaking the grammar); a chaotic deletion, or a tree in which every
// node is non-optional, deletes any node.
func (e *Engine) deleteNode(nodes []*cst.Node) (node *cst.Node, repl []byte, delta int, ok bool) {
	chaotic := e.rng.Intn(100) < e.cfg.Chaos
	node = pickRandom(e.rng, nodes)

	if chaotic || allNonOptional(e.schema, nodes) {
		return node, nil, sizeDelta(node, nil), true
	}

	for attempt := 0; attempt < maxResamples; attempt++ {
		if e.schema.OptionalNode(node) {
			return node, nil, sizeDelta(node, nil), true
		}
		node = pickRandom(e.rng, nodes)
	}
	if e.schema.OptionalNode(node) {
		return node, nil, sizeDelta(node, nil), true
	}
	return nil, nil, 0, false
}

// spliceNode picks a substitution target and a replacement text from idx.
func (e *Engine) spliceNode(idx *branch.Index, text []byte, nodes []*cst.Node) (node *cst.Node, repl []byte, delta int, ok bool) {
	chaotic := e.rng.Intn(100) < e.cfg.Chaos

	var cands [][]byte
	found := false
	for attempt := 0; attempt < maxResamples; attempt++ {
		node = pickRandom(e.rng, nodes)
		cands = idx.Candidates(e.schema, node, chaotic, e.rng)
		// Size-1 bags are hopeless: the only candidate may be the node's
		// own current text, which would produce a no-op edit.
		if len(cands) > 1 {
			found = true
			break
		}
	}
	if !found {
		return nil, nil, 0, false
	}

	nodeText := text[node.StartByte():node.EndByte()]
	var candidate []byte
	for attempt := 0; attempt < maxResamples; attempt++ {
		candidate = cands[e.rng.Intn(len(cands))]
		if !bytes.Equal(candidate, nodeText) {
			break
		}
	}
	// If every resample above matched the node's current text, the last
	// draw is accepted anyway: a wasteful no-op edit, but not an error.
	replCopy := append([]byte(nil), candidate...)
	return node, replCopy, len(replCopy) - len(nodeText), true
}

func pickRandom(rng *rand.Rand, nodes []*cst.Node) *cst.Node {
	return nodes[rng.Intn(len(nodes))]
}

func allNonOptional(schema *nodetypes.Schema, nodes []*cst.Node) bool {
	for _, n := range nodes {
		if schema.OptionalNode(n) {
			return false
		}
	}
	return true
}

func sizeDelta(node *cst.Node, replace []byte) int {
	return len(replace) - int(node.EndByte()-node.StartByte())
}
