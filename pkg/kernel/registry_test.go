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
)

func TestRegistryGetOrCreateSingleton(t *testing.T) {
	r := NewRegistry(time.Hour, time.Hour)
	defer r.Close()

	k1 := r.GetOrCreate("nb-1")
	k2 := r.GetOrCreate("nb-1")
	assert.Same(t, k1, k2)
}

func TestRegistryDestroyRemovesKernel(t *testing.T) {
	r := NewRegistry(time.Hour, time.Hour)
	defer r.Close()

	r.GetOrCreate("nb-1")
	r.Destroy("nb-1")
	assert.Nil(t, r.Get("nb-1"))
}

func TestRegistrySweepEvictsIdleKernels(t *testing.T) {
	r := NewRegistry(10*time.Millisecond, 5*time.Millisecond)
	defer r.Close()

	k := r.GetOrCreate("nb-1")
	k.Execute(context.Background(), "1", time.Second)

	require.Eventually(t, func() bool {
		return r.Get("nb-1") == nil
	}, time.Second, 5*time.Millisecond)
}
