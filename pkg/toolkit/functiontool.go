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
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// FuncTool adapts a typed Go function into a Tool, generating its
// JSON-schema manifest from the argument struct's tags the way the
// teacher's functiontool package does.
type FuncTool[T any] struct {
	name        string
	description string
	schema      map[string]any
	fn          func(ctx context.Context, args T) Result
}

// NewFunc builds a Tool named name whose parameters are reflected from
// T's json/jsonschema struct tags, and whose body is fn.
func NewFunc[T any](name, description string, fn func(ctx context.Context, args T) Result) *FuncTool[T] {
	return &FuncTool[T]{
		name:        name,
		description: description,
		schema:      mustGenerateSchema[T](),
		fn:          fn,
	}
}

func (t *FuncTool[T]) Name() string               { return t.name }
func (t *FuncTool[T]) Description() string        { return t.description }
func (t *FuncTool[T]) Parameters() map[string]any { return t.schema }

func (t *FuncTool[T]) Execute(ctx context.Context, raw map[string]any) Result {
	args, err := decodeArgs[T](raw)
	if err != nil {
		return Fail("invalid_input", fmt.Sprintf("invalid arguments for %s: %v", t.name, err))
	}
	return t.fn(ctx, args)
}

// mustGenerateSchema reflects T's struct tags into an OpenAI-shaped
// parameters object. Generation of a fixed, compile-time-known struct
// cannot fail at runtime in practice; a panic here means the tool's Args
// type itself is malformed, a programming error worth surfacing loudly.
func mustGenerateSchema[T any]() map[string]any {
	reflector := &jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		DoNotReference:             true,
	}
	schema := reflector.Reflect(new(T))

	buf, err := json.Marshal(schema)
	if err != nil {
		panic(fmt.Sprintf("toolkit: marshal schema: %v", err))
	}
	var out map[string]any
	if err := json.Unmarshal(buf, &out); err != nil {
		panic(fmt.Sprintf("toolkit: unmarshal schema: %v", err))
	}
	delete(out, "$schema")
	delete(out, "$id")
	return out
}
