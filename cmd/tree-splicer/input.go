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
	"io"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/langston-barrett/tree-splicer/cst"
)

// loadInputs reads and parses every named file (or stdin for "-"),
// wrapping per-file I/O failures together with multierr.Append rather
// than stopping at the first one, so a single bad path doesn't hide
// every other problem in the batch. hadParseError reports whether any
// successfully-read file's tree reports a parse error (distinct from an
// I/O failure, which is always fatal): the core tolerates such a tree,
// but the shell's --on-parse-error policy decides whether that is just
// noise, a warning, or a reason to exit nonzero.
func loadInputs(ctx context.Context, paths []string, parser cst.Parser, onErr onParseError, logger *zap.SugaredLogger) (files map[string]cst.ParsedFile, hadParseError bool, err error) {
	files = make(map[string]cst.ParsedFile, len(paths))

	var errs error
	for _, path := range paths {
		source, readErr := readFile(path)
		if readErr != nil {
			errs = multierr.Append(errs, fmt.Errorf("input: reading %s: %w", path, readErr))
			continue
		}

		parsed, parseErr := parser.Parse(ctx, source)
		if parseErr != nil {
			errs = multierr.Append(errs, fmt.Errorf("input: parsing %s: %w", path, parseErr))
			continue
		}

		if cst.HasError(parsed.Root) {
			hadParseError = true
			switch onErr {
			case onParseErrorWarn:
				logger.Warnw("input has parse errors", "path", path)
			case onParseErrorError:
				logger.Errorw("input has parse errors", "path", path)
			case onParseErrorIgnore:
			}
		}

		files[path] = *parsed
	}

	if errs != nil {
		return nil, hadParseError, errs
	}
	return files, hadParseError, nil
}

func readFile(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
