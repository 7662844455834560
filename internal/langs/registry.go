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

// Package langs is the thin binding layer between the CLI and a concrete
// tree-sitter grammar: a per-language wrapper deliberately kept outside
// the grammar-agnostic core, exposed as a registry lookup by name so
// cmd/tree-splicer has something to pass --lang.
package langs

import (
	"fmt"

	gotreesitter "github.com/smacker/go-tree-sitter"

	"github.com/langston-barrett/tree-splicer/cst"
	"github.com/langston-barrett/tree-splicer/nodetypes"
	"github.com/langston-barrett/tree-splicer/internal/sitter"
)

// Language bundles everything cmd/tree-splicer needs for one grammar: a
// parser and its node-type schema.
type Language struct {
	Name   string
	Parser cst.Parser
	Schema *nodetypes.Schema
}

var registry = map[string]func() (*Language, error){
	"go": loadGo,
}

// Get resolves a registered language by name.
func Get(name string) (*Language, error) {
	load, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("langs: unknown language %q (registered: %v)", name, Names())
	}
	return load()
}

// Names lists every registered language, for --help and error messages.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	return names
}

func newSitterLanguage(lang *gotreesitter.Language, nodeTypesJSON []byte, name string) (*Language, error) {
	schema, err := nodetypes.Load(nodeTypesJSON)
	if err != nil {
		return nil, fmt.Errorf("langs: %s: %w", name, err)
	}
	return &Language{Name: name, Parser: sitter.New(lang), Schema: schema}, nil
}
