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

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/langston-barrett/tree-splicer/cst"
	"github.com/langston-barrett/tree-splicer/nodetypes"
	"github.com/langston-barrett/tree-splicer/splice"
)

// runWorkers fans --jobs independent splice.Engine instances out over
// errgroup, each seeded with cfg.Seed + workerIndex so the whole run stays
// reproducible for a fixed --jobs value without the workers' draws
// colliding. Workers claim output indices from a shared atomic counter so
// file names never collide and exactly args.Tests files are written.
func runWorkers(ctx context.Context, schema *nodetypes.Schema, files map[string]cst.ParsedFile, parser cst.Parser, args *Args, cfg splice.Config, logger *zap.SugaredLogger) error {
	if err := os.MkdirAll(args.Output, 0o755); err != nil {
		return fmt.Errorf("output: creating %s: %w", args.Output, err)
	}

	var next atomic.Int64
	g, ctx := errgroup.WithContext(ctx)

	for worker := 0; worker < args.Jobs; worker++ {
		worker := worker
		workerCfg := cfg
		workerCfg.Seed = cfg.Seed + uint64(worker)

		it, ok := splice.New(schema, files, parser, workerCfg)
		if !ok {
			return fmt.Errorf("output: no engine: every input tree is empty")
		}

		g.Go(func() error {
			for {
				idx := next.Add(1) - 1
				if idx >= int64(args.Tests) {
					return nil
				}
				out, err := nextMutant(ctx, it)
				if err != nil {
					return err
				}
				path := filepath.Join(args.Output, strconv.FormatInt(idx, 10))
				if err := os.WriteFile(path, out, 0o644); err != nil {
					return fmt.Errorf("output: writing %s: %w", path, err)
				}
				logger.Debugw("wrote mutant", "worker", worker, "path", path, "bytes", len(out))
			}
		})
	}

	return g.Wait()
}

// nextMutant retries the iterator until it produces a mutant: a "skip"
// (ok == false, no error) does not claim an output index, so the caller
// must keep drawing rather than treat it as a completed test.
func nextMutant(ctx context.Context, it *splice.Iterator) ([]byte, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, ok, err := it.Next(ctx)
		if err != nil {
			return nil, fmt.Errorf("output: %w", err)
		}
		if ok {
			return out, nil
		}
	}
}
