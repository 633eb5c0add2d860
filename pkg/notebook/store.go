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
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arborly/cortex/pkg/apperr"
)

// entry pairs a Notebook with the mutex that serializes mutations to it.
type entry struct {
	mu sync.Mutex
	nb *Notebook
}

// Store is an in-memory, concurrency-safe registry of notebooks keyed
// by id. A per-notebook mutex serializes cell mutations; a store-wide
// mutex protects the id→entry map itself.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewStore returns an empty notebook store.
func NewStore() *Store {
	return &Store{entries: make(map[string]*entry)}
}

// Create allocates a new notebook for owner and returns it.
func (s *Store) Create(ownerID, title, description string) *Notebook {
	now := time.Now()
	nb := &Notebook{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.mu.Lock()
	s.entries[nb.ID] = &entry{nb: nb}
	s.mu.Unlock()
	return nb
}

// Get returns a snapshot copy of the notebook with the given id, or an
// apperr.ResourceNotFound error.
func (s *Store) Get(id string) (*Notebook, error) {
	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	cp := *e.nb
	cp.Cells = append([]Cell(nil), e.nb.Cells...)
	return &cp, nil
}

// Delete removes a notebook from the store.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return apperr.New(apperr.ResourceNotFound, "notebook not found: "+id)
	}
	delete(s.entries, id)
	return nil
}

func (s *Store) lookup(id string) (*entry, error) {
	s.mu.Lock()
	e, ok := s.entries[id]
	s.mu.Unlock()
	if !ok {
		return nil, apperr.New(apperr.ResourceNotFound, "notebook not found: "+id)
	}
	return e, nil
}

// AddCell inserts a new cell of the given kind/source at index (or at
// the end, if index is nil) and returns it.
func (s *Store) AddCell(notebookID string, kind CellKind, source string, index *int) (*Cell, error) {
	e, err := s.lookup(notebookID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	c := newCell(kind, source)
	pos := len(e.nb.Cells)
	if index != nil && *index >= 0 && *index <= len(e.nb.Cells) {
		pos = *index
	}
	e.nb.Cells = append(e.nb.Cells, Cell{})
	copy(e.nb.Cells[pos+1:], e.nb.Cells[pos:])
	e.nb.Cells[pos] = c
	e.nb.UpdatedAt = time.Now()

	out := e.nb.Cells[pos]
	return &out, nil
}

// UpdateCell applies patch to the cell identified by cellID.
func (s *Store) UpdateCell(notebookID, cellID string, patch CellPatch) (*Cell, error) {
	e, err := s.lookup(notebookID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := indexOf(e.nb.Cells, cellID)
	if idx < 0 {
		return nil, apperr.New(apperr.ResourceNotFound, "cell not found: "+cellID)
	}
	c := &e.nb.Cells[idx]
	if patch.Source != nil {
		c.Source = *patch.Source
	}
	if patch.Kind != nil {
		c.Kind = *patch.Kind
	}
	if patch.Outputs != nil {
		c.Outputs = patch.Outputs
	}
	if patch.ExecutionCount != nil {
		c.ExecutionCount = patch.ExecutionCount
		if *patch.ExecutionCount > e.nb.ExecutionCount {
			e.nb.ExecutionCount = *patch.ExecutionCount
		}
	}
	e.nb.UpdatedAt = time.Now()

	out := *c
	return &out, nil
}

// DeleteCell removes a cell, closing the gap it leaves so positions
// stay contiguous.
func (s *Store) DeleteCell(notebookID, cellID string) error {
	e, err := s.lookup(notebookID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := indexOf(e.nb.Cells, cellID)
	if idx < 0 {
		return apperr.New(apperr.ResourceNotFound, "cell not found: "+cellID)
	}
	e.nb.Cells = append(e.nb.Cells[:idx], e.nb.Cells[idx+1:]...)
	e.nb.UpdatedAt = time.Now()
	return nil
}

// MoveCell relocates a cell to newIndex, shifting intervening cells.
func (s *Store) MoveCell(notebookID, cellID string, newIndex int) error {
	e, err := s.lookup(notebookID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := indexOf(e.nb.Cells, cellID)
	if idx < 0 {
		return apperr.New(apperr.ResourceNotFound, "cell not found: "+cellID)
	}
	if newIndex < 0 {
		newIndex = 0
	}
	if newIndex >= len(e.nb.Cells) {
		newIndex = len(e.nb.Cells) - 1
	}
	c := e.nb.Cells[idx]
	e.nb.Cells = append(e.nb.Cells[:idx], e.nb.Cells[idx+1:]...)
	e.nb.Cells = append(e.nb.Cells, Cell{})
	copy(e.nb.Cells[newIndex+1:], e.nb.Cells[newIndex:])
	e.nb.Cells[newIndex] = c
	e.nb.UpdatedAt = time.Now()
	return nil
}

// BumpExecutionCount records the latest Kernel execution counter
// observed for notebookID, keeping ExecutionCount monotonic.
func (s *Store) BumpExecutionCount(notebookID string, count int) error {
	e, err := s.lookup(notebookID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if count > e.nb.ExecutionCount {
		e.nb.ExecutionCount = count
	}
	return nil
}

func indexOf(cells []Cell, id string) int {
	for i := range cells {
		if cells[i].ID == id {
			return i
		}
	}
	return -1
}
