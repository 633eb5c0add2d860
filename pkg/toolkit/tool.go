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

// Package toolkit implements the agent's tool contract (C4 ToolRegistry,
// C5 concrete tools). Tools describe themselves with a JSON-schema
// manifest, generated from a typed Go struct the way the teacher's
// functiontool package does, and are invoked with raw JSON-decoded
// arguments.
package toolkit

import (
	"context"
	"encoding/json"

	"github.com/arborly/cortex/pkg/apperr"
)

// Result is what every tool call returns to the agent loop. It is never
// an error in the Go sense: failures are represented in-band so the
// agent loop can feed them back to the LLM as an observation.
type Result struct {
	Success bool           `json:"success"`
	Output  string         `json:"output"`
	Data    map[string]any `json:"data,omitempty"`
	Error   apperr.Kind    `json:"error,omitempty"`
}

// Fail builds a failed Result tagged with kind, the way every tool's
// error path is expected to.
func Fail(kind apperr.Kind, output string) Result {
	return Result{Success: false, Output: output, Error: kind}
}

// Ok builds a successful Result.
func Ok(output string, data map[string]any) Result {
	return Result{Success: true, Output: output, Data: data}
}

// Tool is the contract every C5 tool implements.
type Tool interface {
	Name() string
	Description() string
	// Parameters returns the JSON-schema "object" describing this
	// tool's arguments, in the OpenAI "tools" manifest shape.
	Parameters() map[string]any
	// Execute decodes raw into the tool's typed arguments and runs it.
	Execute(ctx context.Context, raw map[string]any) Result
}

// Manifest is one entry of the OpenAI-convention tools array rendered
// into the LLM system prompt.
type Manifest struct {
	Type     string           `json:"type"`
	Function ManifestFunction `json:"function"`
}

// ManifestFunction is the `function` half of a Manifest entry.
type ManifestFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// decodeArgs round-trips raw through JSON into a typed struct, the
// simplest way to reuse encoding/json's field-tag-driven decoding for
// dynamically-typed tool call arguments.
func decodeArgs[T any](raw map[string]any) (T, error) {
	var out T
	buf, err := json.Marshal(raw)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(buf, &out); err != nil {
		return out, err
	}
	return out, nil
}
