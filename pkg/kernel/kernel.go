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

// Package kernel implements the persistent, per-notebook code execution
// environment. A Kernel wraps a yaegi interpreter whose namespace
// survives across calls to Execute, giving each notebook a REPL-like
// session: variables declared in one cell remain visible to the next.
package kernel

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/arborly/cortex/pkg/apperr"
	"github.com/arborly/cortex/pkg/notebook"
	"github.com/arborly/cortex/pkg/plotsink"
)

var (
	varDeclRe   = regexp.MustCompile(`^\s*var\s+([A-Za-z_]\w*(?:\s*,\s*[A-Za-z_]\w*)*)`)
	shortDeclRe = regexp.MustCompile(`^\s*([A-Za-z_]\w*(?:\s*,\s*[A-Za-z_]\w*)*)\s*:=`)
)

// ExecuteResult is the outcome of one Kernel.Execute call.
type ExecuteResult struct {
	Success         bool
	Outputs         []notebook.CellOutput
	ExecutionCount  int
	ExecutionTimeMS int64
}

// Kernel is a persistent interpreter bound to one notebook. All
// exported methods are safe to call concurrently; each serializes
// through an internal mutex matching the spec's one-at-a-time
// execution contract per notebook.
type Kernel struct {
	mu             sync.Mutex
	interp         *interp.Interp
	sink           *plotsink.Sink
	vars           map[string]struct{}
	executionCount int
	lastUsedAt     time.Time
	createdAt      time.Time
}

// New creates a Kernel with a fresh namespace, the standard library
// pre-loaded, and a display sink bound as `display.Show`.
func New() *Kernel {
	k := &Kernel{
		vars:      make(map[string]struct{}),
		sink:      plotsink.New(),
		createdAt: time.Now(),
	}
	k.init()
	return k
}

func (k *Kernel) init() {
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		// stdlib.Symbols is a fixed, well-formed table; a failure here
		// means the yaegi version is incompatible, not a user error.
		panic(fmt.Sprintf("kernel: load stdlib symbols: %v", err))
	}
	if err := i.Use(displayExports(k.sink)); err != nil {
		panic(fmt.Sprintf("kernel: bind display sink: %v", err))
	}
	k.interp = i
	k.vars = make(map[string]struct{})
	k.lastUsedAt = time.Now()
}

// displayExports builds the yaegi symbol table exposing sink.Show to
// interpreted code as `display.Show`.
func displayExports(sink *plotsink.Sink) interp.Exports {
	return interp.Exports{
		"display/display": {
			"Show": reflect.ValueOf(sink.Show),
		},
	}
}

// Reset clears the namespace, reseeds the standard bindings, and zeroes
// the execution counter.
func (k *Kernel) Reset() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.executionCount = 0
	k.init()
}

// Execute runs code under timeout, following the REPL "last expression"
// convention: if the final logical line is syntactically an expression,
// preceding lines run as statements and the final line's value is
// captured as an execute_result output; otherwise the whole block runs
// as statements with no captured value.
func (k *Kernel) Execute(ctx context.Context, code string, timeout time.Duration) ExecuteResult {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.executionCount++
	count := k.executionCount
	k.lastUsedAt = time.Now()
	start := time.Now()

	var stdout, stderr bytes.Buffer
	k.interp.Stdout = &stdout
	k.interp.Stderr = &stderr

	type evalOutcome struct {
		val reflect.Value
		err error
	}
	done := make(chan evalOutcome, 1)

	go func() {
		stmts, expr, hasExpr := splitTrailingExpr(code)
		k.trackDecls(stmts)
		k.trackDecls(expr)

		var v reflect.Value
		var err error
		if stmts != "" {
			_, err = k.interp.Eval(stmts)
		}
		if err == nil && hasExpr {
			v, err = k.interp.Eval(expr)
		}
		done <- evalOutcome{val: v, err: err}
	}()

	var outcome evalOutcome
	select {
	case outcome = <-done:
	case <-time.After(timeout):
		outcome = evalOutcome{err: apperr.New(apperr.KernelExec, "execution timed out")}
	case <-ctx.Done():
		outcome = evalOutcome{err: apperr.Wrap(apperr.KernelExec, "execution cancelled", ctx.Err())}
	}

	var outputs []notebook.CellOutput
	success := true

	if s := stdout.String(); s != "" {
		outputs = append(outputs, notebook.CellOutput{Kind: notebook.OutputStream, Content: s})
	}
	if s := filterWarnings(stderr.String()); s != "" {
		outputs = append(outputs, notebook.CellOutput{Kind: notebook.OutputStream, Content: s})
	}

	if outcome.err != nil {
		success = false
		outputs = append(outputs, notebook.CellOutput{
			Kind: notebook.OutputError,
			Error: &notebook.ErrorContent{
				Name:      string(apperr.KindOf(outcome.err)),
				Value:     outcome.err.Error(),
				Traceback: []string{outcome.err.Error()},
			},
		})
	} else if outcome.val.IsValid() && outcome.val.CanInterface() {
		outputs = append(outputs, notebook.CellOutput{
			Kind:    notebook.OutputExecuteResult,
			Content: formatValue(outcome.val),
		})
	}

	for _, frame := range k.sink.Drain() {
		outputs = append(outputs, notebook.CellOutput{
			Kind:     notebook.OutputDisplayData,
			Content:  fmt.Sprintf("<%d bytes png>", len(frame)),
			MimeType: "image/png",
		})
	}

	return ExecuteResult{
		Success:         success,
		Outputs:         outputs,
		ExecutionCount:  count,
		ExecutionTimeMS: time.Since(start).Milliseconds(),
	}
}

// Variables returns a name→type-name mapping of tracked top-level
// bindings, excluding private (`_`-prefixed) names.
func (k *Kernel) Variables() map[string]string {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.lastUsedAt = time.Now()

	out := make(map[string]string, len(k.vars))
	for name := range k.vars {
		if strings.HasPrefix(name, "_") {
			continue
		}
		v, err := k.interp.Eval(name)
		if err != nil || !v.IsValid() {
			continue
		}
		if v.Kind() == reflect.Func {
			continue
		}
		out[name] = v.Type().String()
	}
	return out
}

// LastUsedAt reports the time of the most recent Execute or Variables call.
func (k *Kernel) LastUsedAt() time.Time {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.lastUsedAt
}

func (k *Kernel) trackDecls(block string) {
	if block == "" {
		return
	}
	for _, line := range strings.Split(block, "\n") {
		var names string
		if m := varDeclRe.FindStringSubmatch(line); m != nil {
			names = m[1]
		} else if m := shortDeclRe.FindStringSubmatch(line); m != nil {
			names = m[1]
		} else {
			continue
		}
		for _, n := range strings.Split(names, ",") {
			n = strings.TrimSpace(n)
			if n != "" && n != "_" {
				k.vars[n] = struct{}{}
			}
		}
	}
}

// filterWarnings drops stderr lines beginning with "WARNING" unless the
// captured text contains other, non-warning content.
func filterWarnings(s string) string {
	if s == "" {
		return s
	}
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	hasOther := false
	for _, l := range lines {
		if !strings.HasPrefix(l, "WARNING") {
			hasOther = true
			break
		}
	}
	if !hasOther {
		return ""
	}
	return strings.Join(lines, "\n")
}

// formatValue renders a captured expression result the way the
// notebook's execute_result cells display values: tabular-shaped
// values (Shape + Head) render their head; array-shaped values
// (Shape only) and everything else render their Go-syntax debug
// representation (%#v).
func formatValue(v reflect.Value) string {
	if v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	if !v.IsValid() {
		return "<nil>"
	}
	if headFn := v.MethodByName("Head"); headFn.IsValid() && v.MethodByName("Shape").IsValid() {
		results := headFn.Call([]reflect.Value{reflect.ValueOf(50)})
		if len(results) > 0 {
			return fmt.Sprintf("%v", results[0].Interface())
		}
	}
	if v.MethodByName("Shape").IsValid() {
		return fmt.Sprintf("%#v", v.Interface())
	}
	return fmt.Sprintf("%#v", v.Interface())
}
