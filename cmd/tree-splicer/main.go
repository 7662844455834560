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

// Command tree-splicer is the thin external shell around the mutation
// engine: it parses flags, loads and parses a corpus with a registered
// grammar, and writes the requested number of mutants to an output
// directory. None of this package's logic is part of the core; see
// cst, nodetypes, branch, editbuf and splice for that.
package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/langston-barrett/tree-splicer/internal/langs"
	"github.com/langston-barrett/tree-splicer/splice"
)

// Status (exit) codes.
const (
	exitSuccess = 0
	exitFailure = 1
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	args, err := ParseArgs(argv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}

	zl, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}
	defer zl.Sync() //nolint:errcheck
	logger := zl.Sugar()

	lang, err := langs.Get(args.Lang)
	if err != nil {
		logger.Errorw("failed to resolve language", "error", err)
		return exitFailure
	}

	ctx := context.Background()

	files, hadParseError, err := loadInputs(ctx, args.Files, lang.Parser, args.OnParseError, logger)
	if err != nil {
		logger.Errorw("failed to load inputs", "error", err)
		return exitFailure
	}

	cfg := splice.Config{
		Chaos:        args.Chaos,
		Deletions:    args.Deletions,
		InterSplices: args.Mutations,
		MaxSize:      args.MaxSize,
		Reparse:      args.Reparse,
		Seed:         args.Seed,
	}

	if err := runWorkers(ctx, lang.Schema, files, lang.Parser, args, cfg, logger); err != nil {
		logger.Errorw("mutation run failed", "error", err)
		return exitFailure
	}

	if args.OnParseError == onParseErrorError && hadParseError {
		logger.Errorw("exiting nonzero: inputs had parse errors and --on-parse-error=error")
		return exitFailure
	}
	return exitSuccess
}
