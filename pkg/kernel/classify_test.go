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

package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitTrailingExprCapturesExpression(t *testing.T) {
	stmts, expr, ok := splitTrailingExpr("x := 1\ny := 2\nx + y")
	assert.True(t, ok)
	assert.Equal(t, "x := 1\ny := 2", stmts)
	assert.Equal(t, "x + y", expr)
}

func TestSplitTrailingExprSingleLineExpr(t *testing.T) {
	stmts, expr, ok := splitTrailingExpr("1 + 1")
	assert.True(t, ok)
	assert.Empty(t, stmts)
	assert.Equal(t, "1 + 1", expr)
}

func TestSplitTrailingExprAssignmentDisqualifies(t *testing.T) {
	_, _, ok := splitTrailingExpr("x := 1\ny := x + 1")
	assert.False(t, ok)
}

func TestSplitTrailingExprComparisonIsExpr(t *testing.T) {
	_, expr, ok := splitTrailingExpr("x := 1\nx == 1")
	assert.True(t, ok)
	assert.Equal(t, "x == 1", expr)
}

func TestSplitTrailingExprImportDisqualifies(t *testing.T) {
	_, _, ok := splitTrailingExpr(`import "fmt"`)
	assert.False(t, ok)
}

func TestSplitTrailingExprTrailingBlankLines(t *testing.T) {
	stmts, expr, ok := splitTrailingExpr("x := 1\nx + 1\n\n\n")
	assert.True(t, ok)
	assert.Equal(t, "x := 1", stmts)
	assert.Equal(t, "x + 1", expr)
}
