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

package notebook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborly/cortex/pkg/apperr"
)

func TestStoreCreateAndGet(t *testing.T) {
	s := NewStore()
	nb := s.Create("user-1", "Untitled", "")
	require.NotEmpty(t, nb.ID)

	got, err := s.Get(nb.ID)
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.OwnerID)
	assert.Empty(t, got.Cells)
}

func TestStoreGetMissing(t *testing.T) {
	s := NewStore()
	_, err := s.Get("does-not-exist")
	require.Error(t, err)
	assert.Equal(t, apperr.ResourceNotFound, apperr.KindOf(err))
}

func TestAddUpdateDeleteCell(t *testing.T) {
	s := NewStore()
	nb := s.Create("user-1", "nb", "")

	c1, err := s.AddCell(nb.ID, CellCode, "1 + 1", nil)
	require.NoError(t, err)
	c2, err := s.AddCell(nb.ID, CellCode, "2 + 2", nil)
	require.NoError(t, err)

	got, _ := s.Get(nb.ID)
	require.Len(t, got.Cells, 2)
	assert.Equal(t, c1.ID, got.Cells[0].ID)
	assert.Equal(t, c2.ID, got.Cells[1].ID)

	newSource := "3 + 3"
	_, err = s.UpdateCell(nb.ID, c1.ID, CellPatch{Source: &newSource})
	require.NoError(t, err)
	got, _ = s.Get(nb.ID)
	assert.Equal(t, "3 + 3", got.Cells[0].Source)

	require.NoError(t, s.DeleteCell(nb.ID, c1.ID))
	got, _ = s.Get(nb.ID)
	require.Len(t, got.Cells, 1)
	assert.Equal(t, c2.ID, got.Cells[0].ID)
}

func TestAddCellAtIndex(t *testing.T) {
	s := NewStore()
	nb := s.Create("user-1", "nb", "")

	_, _ = s.AddCell(nb.ID, CellCode, "a", nil)
	_, _ = s.AddCell(nb.ID, CellCode, "b", nil)
	zero := 0
	mid, err := s.AddCell(nb.ID, CellCode, "inserted", &zero)
	require.NoError(t, err)

	got, _ := s.Get(nb.ID)
	require.Len(t, got.Cells, 3)
	assert.Equal(t, mid.ID, got.Cells[0].ID)
	assert.Equal(t, "inserted", got.Cells[0].Source)
}

func TestMoveCellContiguous(t *testing.T) {
	s := NewStore()
	nb := s.Create("user-1", "nb", "")

	a, _ := s.AddCell(nb.ID, CellCode, "a", nil)
	_, _ = s.AddCell(nb.ID, CellCode, "b", nil)
	_, _ = s.AddCell(nb.ID, CellCode, "c", nil)

	require.NoError(t, s.MoveCell(nb.ID, a.ID, 2))
	got, _ := s.Get(nb.ID)
	require.Len(t, got.Cells, 3)
	assert.Equal(t, a.ID, got.Cells[2].ID)
}

func TestExecutionCountMonotonic(t *testing.T) {
	s := NewStore()
	nb := s.Create("user-1", "nb", "")

	require.NoError(t, s.BumpExecutionCount(nb.ID, 5))
	require.NoError(t, s.BumpExecutionCount(nb.ID, 2))

	got, _ := s.Get(nb.ID)
	assert.Equal(t, 5, got.ExecutionCount)
}

func TestDeleteCellMissing(t *testing.T) {
	s := NewStore()
	nb := s.Create("user-1", "nb", "")
	err := s.DeleteCell(nb.ID, "nonexistent")
	require.Error(t, err)
	assert.Equal(t, apperr.ResourceNotFound, apperr.KindOf(err))
}
