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
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/arborly/cortex/pkg/tracing"
)

// Registry is a per-request collection of tools. It holds no shared
// mutation across requests; each agent turn builds its own.
type Registry struct {
	tools     map[string]Tool
	OnExecute func(name string, dur time.Duration, success bool)
}

// NewRegistry builds a Registry from a fixed set of tools.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		r.tools[t.Name()] = t
	}
	return r
}

// Execute dispatches to the named tool. An unknown name never panics
// the agent loop: it returns a Result whose Output lists the available
// tool names so the LLM can self-correct.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) Result {
	t, ok := r.tools[name]
	if !ok {
		names := make([]string, 0, len(r.tools))
		for n := range r.tools {
			names = append(names, n)
		}
		sort.Strings(names)
		return Fail("tool_not_found", fmt.Sprintf("unknown tool %q; available tools: %s", name, strings.Join(names, ", ")))
	}
	ctx, span := tracing.Tracer("cortex.toolkit").Start(ctx, tracing.SpanToolExecution,
		trace.WithAttributes(attribute.String(tracing.AttrToolName, name)))
	defer span.End()

	start := time.Now()
	result := t.Execute(ctx, args)
	span.SetAttributes(attribute.Bool(tracing.AttrToolSuccess, result.Success))
	if !result.Success {
		span.SetStatus(codes.Error, string(result.Error))
	}
	if r.OnExecute != nil {
		r.OnExecute(name, time.Since(start), result.Success)
	}
	return result
}

// Manifest renders every registered tool into the OpenAI "tools"
// convention for the LLM system prompt.
func (r *Registry) Manifest() []Manifest {
	names := make([]string, 0, len(r.tools))
	for n := range r.tools {
		names = append(names, n)
	}
	sort.Strings(names)

	out := make([]Manifest, 0, len(names))
	for _, n := range names {
		t := r.tools[n]
		out = append(out, Manifest{
			Type: "function",
			Function: ManifestFunction{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return out
}
