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

func TestCalculatorBasicExpression(t *testing.T) {
	c := NewCalculator()
	res := c.Execute(context.Background(), map[string]any{"expression": "sqrt(144)+3"})
	require.True(t, res.Success)
	assert.Equal(t, float64(15), res.Data["result"])
}

func TestCalculatorDivisionByZero(t *testing.T) {
	c := NewCalculator()
	res := c.Execute(context.Background(), map[string]any{"expression": "1/0"})
	assert.False(t, res.Success)
	assert.EqualValues(t, "division_by_zero", res.Error)
}

func TestCalculatorInvalidIdentifier(t *testing.T) {
	c := NewCalculator()
	res := c.Execute(context.Background(), map[string]any{"expression": "rm_rf(1)"})
	assert.False(t, res.Success)
	assert.EqualValues(t, "invalid_identifier", res.Error)
}

func TestCalculatorMultiArgFunctions(t *testing.T) {
	c := NewCalculator()
	res := c.Execute(context.Background(), map[string]any{"expression": "max(1,5,3)+min(9,2)"})
	require.True(t, res.Success)
	assert.Equal(t, float64(7), res.Data["result"])
}

func TestCalculatorConstants(t *testing.T) {
	v, err := evalExpr("pi")
	require.NoError(t, err)
	assert.InDelta(t, 3.14159, v, 0.001)
}
