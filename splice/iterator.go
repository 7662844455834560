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
	"context"
	"sort"

	"github.com/langston-barrett/tree-splicer/branch"
	"github.com/langston-barrett/tree-splicer/cst"
	"github.com/langston-barrett/tree-splicer/nodetypes"
)

// Iterator is the unbounded, stateful sequence of mutant byte buffers.
// Each call to Next picks a seed input (uniformly, resampling away any
// input over the configured size cap) and runs the Splice Engine against
// it.
type Iterator struct {
	engine  *Engine
	inputs  []cst.ParsedFile
	maxSize int
}

// New builds the Branch Index from files (once, as the data-flow diagram
// requires), constructs the Splice Engine, and returns an Iterator ready
// to produce mutants.
//
// ok is false ("no engine") if every input tree is empty (has zero
// children): there is nothing in the corpus to splice. Map iteration
// order over files is stabilized (sorted by path) before any RNG draw is
// made, so that construction is itself deterministic.
func New(schema *nodetypes.Schema, files map[string]cst.ParsedFile, parser cst.Parser, cfg Config) (*Iterator, bool) {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	inputs := make([]cst.ParsedFile, len(paths))
	allEmpty := true
	for i, p := range paths {
		f := files[p]
		inputs[i] = f
		if f.Root != nil && f.Root.ChildCount() != 0 {
			allEmpty = false
		}
	}
	if allEmpty {
		return nil, false
	}

	index := branch.Build(schema, inputs)
	engine := NewEngine(schema, index, parser, cfg)
	return &Iterator{engine: engine, inputs: inputs, maxSize: cfg.MaxSize}, true
}

// Next produces the next mutant. ok is false when the Splice Engine
// declined to produce an output this round (InterSplices == 0); callers
// should interpret this as "skip" and call Next again. Steps that were
// dead ends do not make ok false: the text as it stands is returned. err
// is non-nil only on a render/reparse failure.
func (it *Iterator) Next(ctx context.Context) (out []byte, ok bool, err error) {
	if len(it.inputs) == 0 {
		return nil, false, nil
	}
	seed := it.pickSeed()
	return it.engine.SpliceTree(ctx, seed)
}

// pickSeed uniformly picks an input, resampling (bounded) away from any
// input whose size exceeds the configured cap. Falls back to the
// smallest input if every resample drew an oversized one, so Next never
// hangs on a corpus consisting entirely of large files.
func (it *Iterator) pickSeed() cst.ParsedFile {
	smallest := it.inputs[0]
	for _, f := range it.inputs {
		if len(f.Source) < len(smallest.Source) {
			smallest = f
		}
	}
	for attempt := 0; attempt < maxResamples; attempt++ {
		seed := it.inputs[it.engine.rng.Intn(len(it.inputs))]
		if len(seed.Source) <= it.maxSize {
			return seed
		}
	}
	return smallest
}
