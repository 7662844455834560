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
	"fmt"

	"github.com/spf13/pflag"
)

// onParseError selects how the shell reacts to an input file that fails
// to parse cleanly. The core always tolerates a tree whose root reports
// errors; this only controls what the shell prints and whether it exits
// nonzero.
type onParseError string

const (
	onParseErrorIgnore onParseError = "ignore"
	onParseErrorWarn   onParseError = "warn"
	onParseErrorError  onParseError = "error"
)

// Args holds the parsed command-line surface, plus the --lang flag this
// repository adds to select a registered grammar (internal/langs).
type Args struct {
	Chaos        int
	Deletions    int
	Mutations    int
	Reparse      int
	MaxSize      int
	Seed         uint64
	Tests        int
	Jobs         int
	Output       string
	OnParseError onParseError
	Lang         string
	Files        []string
}

// ParseArgs parses argv (excluding the program name) into an Args,
// applying its documented defaults.
func ParseArgs(argv []string) (*Args, error) {
	fs := pflag.NewFlagSet("tree-splicer", pflag.ContinueOnError)

	args := &Args{}
	var onParseErrorStr string

	fs.IntVar(&args.Chaos, "chaos", 5, "percent chance of a chaotic mutation")
	fs.IntVar(&args.Deletions, "deletions", 5, "percent chance of a deletion rather than a splice")
	fs.IntVar(&args.Mutations, "mutations", 16, "inter-splices per output")
	fs.IntVar(&args.Reparse, "reparse", 1, "reparse the tree after this many mutations")
	fs.IntVar(&args.MaxSize, "max-size", 1048576, "approximate maximum output size, in bytes")
	fs.Uint64Var(&args.Seed, "seed", 0, "seed for the engine's random draw sequence")
	fs.IntVar(&args.Tests, "tests", 4, "number of mutants to emit")
	fs.IntVar(&args.Jobs, "jobs", 1, "number of parallel engine instances")
	fs.StringVar(&args.Output, "output", "tree-splicer.out", "output directory")
	fs.StringVar(&onParseErrorStr, "on-parse-error", string(onParseErrorWarn), "one of: ignore, warn, error")
	fs.StringVar(&args.Lang, "lang", "go", "registered grammar to parse FILE... with")

	if err := fs.Parse(argv); err != nil {
		return nil, err
	}

	switch onParseError(onParseErrorStr) {
	case onParseErrorIgnore, onParseErrorWarn, onParseErrorError:
		args.OnParseError = onParseError(onParseErrorStr)
	default:
		return nil, fmt.Errorf("args: invalid --on-parse-error %q", onParseErrorStr)
	}

	args.Files = fs.Args()
	if len(args.Files) == 0 {
		return nil, fmt.Errorf("args: at least one FILE (or \"-\" for stdin) is required")
	}
	if args.Jobs < 1 {
		args.Jobs = 1
	}
	return args, nil
}
