// Copyright 2025 Kadir Pekel
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

package history

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingAppendAndGet(t *testing.T) {
	r := NewRing()
	r.Append("u1", "nb1", Turn{Role: "user", Content: "hi"})
	r.Append("u1", "nb1", Turn{Role: "assistant", Content: "hello"})

	turns := r.Get("u1", "nb1")
	require.Len(t, turns, 2)
	assert.Equal(t, "hi", turns[0].Content)
}

func TestRingTrimsOnOverflow(t *testing.T) {
	r := NewRing()
	for i := 0; i < capMessages+10; i++ {
		r.Append("u1", "nb1", Turn{Role: "user", Content: fmt.Sprintf("msg-%d", i)})
	}

	turns := r.Get("u1", "nb1")
	// The append that pushes the ring past capMessages trims it to trimTo;
	// the 9 appends after that one are kept on top.
	assert.Len(t, turns, trimTo+9)
	assert.Equal(t, fmt.Sprintf("msg-%d", capMessages+10-1), turns[len(turns)-1].Content)
}

func TestRingIsolatesKeys(t *testing.T) {
	r := NewRing()
	r.Append("u1", "nb1", Turn{Role: "user", Content: "a"})
	r.Append("u2", "nb1", Turn{Role: "user", Content: "b"})

	assert.Len(t, r.Get("u1", "nb1"), 1)
	assert.Len(t, r.Get("u2", "nb1"), 1)
}

func TestInMemoryTurnStore(t *testing.T) {
	s := NewInMemoryTurnStore()
	require.NoError(t, s.Append("conv-1", Turn{Role: "user", Content: "hi"}))

	turns, err := s.List("conv-1")
	require.NoError(t, err)
	assert.Len(t, turns, 1)

	_, err = s.List("missing")
	assert.Error(t, err)
}
