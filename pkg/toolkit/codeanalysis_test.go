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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeAnalysisReportsDeclarations(t *testing.T) {
	tool := NewCodeAnalysis()
	res := tool.Execute(context.Background(), map[string]any{
		"code": `import "fmt"

type Point struct {
	X, Y int
}

var origin = Point{0, 0}

func Add(a, b int) int {
	return a + b
}
`,
	})

	require.True(t, res.Success)
	assert.Contains(t, res.Data["functions"], "Add")
	assert.Contains(t, res.Data["types"], "Point")
	assert.Contains(t, res.Data["variables"], "origin")
	assert.Contains(t, res.Data["imports"], `"fmt"`)
}

func TestCodeAnalysisParseError(t *testing.T) {
	tool := NewCodeAnalysis()
	res := tool.Execute(context.Background(), map[string]any{
		"code": "func( this is not valid go {{{",
	})

	assert.False(t, res.Success)
	assert.Equal(t, "parser_format", string(res.Error))
}
