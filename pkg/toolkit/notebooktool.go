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

package toolkit

import (
	"context"
	"fmt"
	"time"

	"github.com/arborly/cortex/pkg/kernel"
	"github.com/arborly/cortex/pkg/notebook"
)

// defaultNotebookExecuteTimeout is used when callers don't supply one
// (e.g. existing tests); production wiring passes
// appconfig.KernelConfig.AgentExecTimeout instead.
const defaultNotebookExecuteTimeout = 60 * time.Second

// NotebookExecuteArgs is the notebook_execute tool's argument shape.
type NotebookExecuteArgs struct {
	Code string `json:"code" jsonschema:"required,description=Code to execute in the notebook's kernel"`
}

// NewNotebookExecute builds the privileged notebook_execute tool: runs
// code in the notebook's Kernel (via C2) and appends a new Cell carrying
// the outputs (via C3). timeout governs the agent-driven execution cap;
// the source uses 60s here versus the 30s direct-cell-execution default
// (spec.md's Open Question, resolved in DESIGN.md). A zero timeout falls
// back to defaultNotebookExecuteTimeout.
func NewNotebookExecute(notebookID string, authorized bool, registry *kernel.Registry, store *notebook.Store, timeout time.Duration) Tool {
	if timeout <= 0 {
		timeout = defaultNotebookExecuteTimeout
	}
	return NewFunc[NotebookExecuteArgs]("notebook_execute",
		"Execute code in the notebook's persistent kernel and append the result as a new cell.",
		func(ctx context.Context, args NotebookExecuteArgs) Result {
			if !authorized {
				return unauthorized()
			}
			k := registry.GetOrCreate(notebookID)
			res := k.Execute(ctx, args.Code, timeout)

			cell, err := store.AddCell(notebookID, notebook.CellCode, args.Code, nil)
			if err != nil {
				return Fail("resource_not_found", fmt.Sprintf("notebook not found: %v", err))
			}
			count := res.ExecutionCount
			if _, err := store.UpdateCell(notebookID, cell.ID, notebook.CellPatch{
				Outputs:        res.Outputs,
				ExecutionCount: &count,
			}); err != nil {
				return Fail("resource_not_found", fmt.Sprintf("update cell failed: %v", err))
			}
			_ = store.BumpExecutionCount(notebookID, res.ExecutionCount)

			summary := fmt.Sprintf("executed cell %s (execution_count=%d, %d output(s))", cell.ID, res.ExecutionCount, len(res.Outputs))
			return Result{
				Success: res.Success,
				Output:  summary,
				Data: map[string]any{
					"cell_id":         cell.ID,
					"execution_count": res.ExecutionCount,
					"outputs":         res.Outputs,
				},
			}
		})
}

func unauthorized() Result {
	return Result{
		Success: false,
		Output:  "this action requires authorization",
		Error:   "authorization_required",
		Data:    map[string]any{"requires_authorization": true},
	}
}

// NotebookCellArgs is the notebook_cell tool's argument shape. Action
// selects add/update/delete/get; fields not relevant to the action are
// ignored.
type NotebookCellArgs struct {
	Action   string `json:"action" jsonschema:"required,description=add, update, delete, or get"`
	CellID   string `json:"cell_id,omitempty" jsonschema:"description=Target cell id for update/delete/get"`
	Kind     string `json:"kind,omitempty" jsonschema:"description=Cell kind for add,default=code"`
	Source   string `json:"source,omitempty" jsonschema:"description=Cell source for add/update"`
	Index    *int   `json:"index,omitempty" jsonschema:"description=Insertion index for add"`
}

// NewNotebookCell builds the notebook_cell tool. get is unauthenticated;
// add/update/delete require authorization.
func NewNotebookCell(notebookID string, authorized bool, store *notebook.Store) Tool {
	return NewFunc[NotebookCellArgs]("notebook_cell",
		"Add, update, delete, or get a cell in the notebook.",
		func(ctx context.Context, args NotebookCellArgs) Result {
			switch args.Action {
			case "get":
				nb, err := store.Get(notebookID)
				if err != nil {
					return Fail("resource_not_found", err.Error())
				}
				return Ok(fmt.Sprintf("notebook has %d cells", len(nb.Cells)), map[string]any{"cells": nb.Cells})

			case "add":
				if !authorized {
					return unauthorized()
				}
				kind := notebook.CellCode
				if args.Kind == "markdown" {
					kind = notebook.CellMarkdown
				}
				cell, err := store.AddCell(notebookID, kind, args.Source, args.Index)
				if err != nil {
					return Fail("resource_not_found", err.Error())
				}
				return Ok(fmt.Sprintf("added cell %s", cell.ID), map[string]any{"cell": cell})

			case "update":
				if !authorized {
					return unauthorized()
				}
				patch := notebook.CellPatch{}
				if args.Source != "" {
					patch.Source = &args.Source
				}
				if args.Kind != "" {
					k := notebook.CellKind(args.Kind)
					patch.Kind = &k
				}
				cell, err := store.UpdateCell(notebookID, args.CellID, patch)
				if err != nil {
					return Fail("resource_not_found", err.Error())
				}
				return Ok(fmt.Sprintf("updated cell %s", cell.ID), map[string]any{"cell": cell})

			case "delete":
				if !authorized {
					return unauthorized()
				}
				if err := store.DeleteCell(notebookID, args.CellID); err != nil {
					return Fail("resource_not_found", err.Error())
				}
				return Ok(fmt.Sprintf("deleted cell %s", args.CellID), nil)

			default:
				return Fail("invalid_input", fmt.Sprintf("unknown notebook_cell action %q", args.Action))
			}
		})
}

// NotebookVariablesArgs is the notebook_variables tool's argument shape.
type NotebookVariablesArgs struct{}

// NewNotebookVariables builds the notebook_variables tool: a read-only
// view of the Kernel's tracked bindings.
func NewNotebookVariables(notebookID string, registry *kernel.Registry) Tool {
	return NewFunc[NotebookVariablesArgs]("notebook_variables",
		"List variables currently bound in the notebook's kernel namespace.",
		func(ctx context.Context, _ NotebookVariablesArgs) Result {
			k := registry.Get(notebookID)
			if k == nil {
				return Ok("no kernel yet for this notebook", map[string]any{"variables": map[string]string{}})
			}
			vars := k.Variables()
			return Ok(fmt.Sprintf("%d variable(s) bound", len(vars)), map[string]any{"variables": vars})
		})
}
