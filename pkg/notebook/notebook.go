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

// Package notebook holds the in-memory notebook/cell model and the store
// that owns it. Every mutation goes through the store so that cell id
// uniqueness, contiguous ordering, and execution-count monotonicity hold
// regardless of caller.
package notebook

import (
	"time"

	"github.com/google/uuid"
)

// CellKind distinguishes code from prose cells.
type CellKind string

const (
	CellCode     CellKind = "code"
	CellMarkdown CellKind = "markdown"
)

// OutputKind tags the variant carried by a CellOutput.
type OutputKind string

const (
	OutputStream        OutputKind = "stream"
	OutputExecuteResult OutputKind = "execute_result"
	OutputDisplayData   OutputKind = "display_data"
	OutputError         OutputKind = "error"
)

// ErrorContent carries a captured exception's name, message, and
// traceback lines, mirroring a CellOutput of kind "error".
type ErrorContent struct {
	Name      string   `json:"name"`
	Value     string   `json:"value"`
	Traceback []string `json:"traceback"`
}

// CellOutput is one tagged piece of output a cell execution produced.
type CellOutput struct {
	Kind     OutputKind    `json:"kind"`
	Content  string        `json:"content,omitempty"`
	Error    *ErrorContent `json:"error,omitempty"`
	MimeType string        `json:"mime_type,omitempty"`
}

// Cell is one unit of a Notebook: source plus the ordered outputs its
// most recent execution produced.
type Cell struct {
	ID             string         `json:"id"`
	Kind           CellKind       `json:"kind"`
	Source         string         `json:"source"`
	Outputs        []CellOutput   `json:"outputs"`
	ExecutionCount *int           `json:"execution_count"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// Notebook is an ordered collection of cells owned by a single user.
type Notebook struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"owner_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Cells          []Cell    `json:"cells"`
	ExecutionCount int       `json:"execution_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CellPatch carries the optional fields update_cell may change; nil
// fields are left untouched.
type CellPatch struct {
	Source         *string
	Kind           *CellKind
	Outputs        []CellOutput
	ExecutionCount *int
}

func newCell(kind CellKind, source string) Cell {
	return Cell{
		ID:     uuid.NewString(),
		Kind:   kind,
		Source: source,
	}
}
