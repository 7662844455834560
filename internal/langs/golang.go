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

package langs

import (
	_ "embed"

	tsgo "github.com/smacker/go-tree-sitter/golang"
)

//go:embed golang_node_types.json
var golangNodeTypes []byte

func loadGo() (*Language, error) {
	return newSitterLanguage(tsgo.GetLanguage(), golangNodeTypes, "go")
}
