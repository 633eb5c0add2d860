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
	"go/ast"
	"go/parser"
	"go/token"
	"sort"

	"github.com/arborly/cortex/pkg/apperr"
)

// CodeAnalysisArgs is the structured argument set for code_analysis.
type CodeAnalysisArgs struct {
	Code string `json:"code" jsonschema:"required,description=Go source fragment to statically inspect"`
}

// NewCodeAnalysis statically inspects a Go source fragment with go/parser
// and go/ast — the Go-native analogue of the original's Python `ast`
// based inspection tool. Standard library only: AST inspection of Go
// source has no better ecosystem fit than the standard library's own
// parser.
func NewCodeAnalysis() Tool {
	return NewFunc("code_analysis", "Statically analyze a Go source fragment: imports, declared functions, types, and variables", func(ctx context.Context, args CodeAnalysisArgs) Result {
		src := args.Code
		fset := token.NewFileSet()

		file, err := parser.ParseFile(fset, "fragment.go", wrapIfNeeded(src), parser.AllErrors)
		if err != nil {
			return Fail(apperr.ParserFormat, fmt.Sprintf("code_analysis: could not parse source: %v", err))
		}

		var imports, functions, types, vars []string
		for _, imp := range file.Imports {
			imports = append(imports, imp.Path.Value)
		}

		ast.Inspect(file, func(n ast.Node) bool {
			switch decl := n.(type) {
			case *ast.FuncDecl:
				functions = append(functions, decl.Name.Name)
			case *ast.TypeSpec:
				types = append(types, decl.Name.Name)
			case *ast.ValueSpec:
				for _, name := range decl.Names {
					if name.Name != "_" {
						vars = append(vars, name.Name)
					}
				}
			}
			return true
		})

		sort.Strings(imports)
		sort.Strings(functions)
		sort.Strings(types)
		sort.Strings(vars)

		data := map[string]any{
			"imports":   imports,
			"functions": functions,
			"types":     types,
			"variables": vars,
		}
		output := fmt.Sprintf("%d import(s), %d function(s), %d type(s), %d variable(s)", len(imports), len(functions), len(types), len(vars))
		return Ok(output, data)
	})
}

// wrapIfNeeded wraps a bare statement/declaration list in a package
// clause so parser.ParseFile accepts fragments that omit one, mirroring
// the kernel's own tolerance for unwrapped REPL-style input.
func wrapIfNeeded(src string) string {
	fset := token.NewFileSet()
	if _, err := parser.ParseFile(fset, "", src, parser.PackageClauseOnly); err == nil {
		return src
	}
	return "package fragment\n" + src
}
