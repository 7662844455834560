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

package editbuf

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/langston-barrett/tree-splicer/cst"
)

func TestNewBufferIsEmpty(t *testing.T) {
	b := New()
	require.Equal(t, 0, b.Len())
	n := cst.NewNode(1, "identifier", true, 0, 1, "")
	require.False(t, b.HasEdit(n))
	require.Nil(t, b.Edit(n))
}

func TestInsertAndEdit(t *testing.T) {
	b := New()
	n := cst.NewNode(1, "identifier", true, 0, 1, "")
	b.Insert(n, []byte("y"))
	require.True(t, b.HasEdit(n))
	require.Equal(t, []byte("y"), b.Edit(n))
	require.Equal(t, 1, b.Len())
}

func TestInsertEmptyBytesIsDeletion(t *testing.T) {
	b := New()
	n := cst.NewNode(1, "identifier", true, 0, 1, "")
	b.Insert(n, []byte{})
	require.True(t, b.HasEdit(n))
	require.Empty(t, b.Edit(n))
}

func TestInsertOverwritesPreviousEdit(t *testing.T) {
	b := New()
	n := cst.NewNode(1, "identifier", true, 0, 1, "")
	b.Insert(n, []byte("y"))
	b.Insert(n, []byte("z"))
	require.Equal(t, []byte("z"), b.Edit(n))
	require.Equal(t, 1, b.Len())
}

func TestClearRemovesAllEdits(t *testing.T) {
	b := New()
	n1 := cst.NewNode(1, "identifier", true, 0, 1, "")
	n2 := cst.NewNode(2, "identifier", true, 1, 2, "")
	b.Insert(n1, []byte("a"))
	b.Insert(n2, []byte("b"))
	require.Equal(t, 2, b.Len())
	b.Clear()
	require.Equal(t, 0, b.Len())
	require.False(t, b.HasEdit(n1))
	require.False(t, b.HasEdit(n2))
}

func TestBufferKeyedByIDNotIdentity(t *testing.T) {
	b := New()
	n1 := cst.NewNode(7, "identifier", true, 0, 1, "")
	n2 := cst.NewNode(7, "identifier", true, 0, 1, "") // distinct struct, same id
	b.Insert(n1, []byte("a"))
	require.True(t, b.HasEdit(n2), "edits are keyed by node id, valid across distinct Node values sharing an id")
}
