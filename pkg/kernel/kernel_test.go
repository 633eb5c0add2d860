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
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborly/cortex/pkg/notebook"
)

func TestExecuteCapturesTrailingExpression(t *testing.T) {
	k := New()
	res := k.Execute(context.Background(), "x := 40\nx + 2", time.Second)

	require.True(t, res.Success)
	require.Len(t, res.Outputs, 1)
	assert.Equal(t, notebook.OutputExecuteResult, res.Outputs[0].Kind)
	assert.Equal(t, 1, res.ExecutionCount)
}

func TestExecuteStatementOnlyHasNoResult(t *testing.T) {
	k := New()
	res := k.Execute(context.Background(), "x := 1", time.Second)

	require.True(t, res.Success)
	assert.Empty(t, res.Outputs)
}

func TestExecuteNamespacePersistsAcrossCalls(t *testing.T) {
	k := New()
	k.Execute(context.Background(), "counter := 1", time.Second)
	res := k.Execute(context.Background(), "counter = counter + 1\ncounter", time.Second)

	require.True(t, res.Success)
	require.Len(t, res.Outputs, 1)
	assert.Equal(t, notebook.OutputExecuteResult, res.Outputs[0].Kind)
}

func TestExecuteErrorProducesErrorOutput(t *testing.T) {
	k := New()
	res := k.Execute(context.Background(), "undefinedSymbolUsage", time.Second)

	assert.False(t, res.Success)
	require.NotEmpty(t, res.Outputs)
	assert.Equal(t, notebook.OutputError, res.Outputs[len(res.Outputs)-1].Kind)
}

func TestExecutionCountIncrementsEvenOnFailure(t *testing.T) {
	k := New()
	k.Execute(context.Background(), "definitelyNotDeclared", time.Second)
	res := k.Execute(context.Background(), "definitelyNotDeclared2", time.Second)

	assert.Equal(t, 2, res.ExecutionCount)
}

func TestResetClearsCounterAndNamespace(t *testing.T) {
	k := New()
	k.Execute(context.Background(), "x := 5", time.Second)
	k.Reset()
	res := k.Execute(context.Background(), "x := 9\nx", time.Second)

	assert.Equal(t, 1, res.ExecutionCount)
	require.True(t, res.Success)
}

func TestVariablesExcludesPrivateNames(t *testing.T) {
	k := New()
	k.Execute(context.Background(), "visible := 3\n_hidden := 4", time.Second)

	vars := k.Variables()
	_, hasVisible := vars["visible"]
	_, hasHidden := vars["_hidden"]
	assert.True(t, hasVisible)
	assert.False(t, hasHidden)
}
