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
	"sync"
	"time"
)

// Registry owns at most one Kernel per notebook id and runs a
// background sweeper that evicts kernels idle past idleTimeout,
// mirroring the teacher's ticker-driven background workers (e.g. the
// ratelimit refill loop).
type Registry struct {
	mu           sync.Mutex
	kernels      map[string]*Kernel
	idleTimeout  time.Duration
	sweepEvery   time.Duration
	stop         chan struct{}
	stopOnce     sync.Once
}

// NewRegistry starts a Registry with a background sweeper running
// every sweepEvery, evicting kernels unused for longer than idleTimeout.
func NewRegistry(idleTimeout, sweepEvery time.Duration) *Registry {
	r := &Registry{
		kernels:     make(map[string]*Kernel),
		idleTimeout: idleTimeout,
		sweepEvery:  sweepEvery,
		stop:        make(chan struct{}),
	}
	go r.sweepLoop()
	return r
}

// GetOrCreate returns the notebook's Kernel, creating one if absent.
func (r *Registry) GetOrCreate(notebookID string) *Kernel {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, ok := r.kernels[notebookID]
	if !ok {
		k = New()
		r.kernels[notebookID] = k
	}
	return k
}

// Get returns the notebook's Kernel, or nil if none exists.
func (r *Registry) Get(notebookID string) *Kernel {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.kernels[notebookID]
}

// Reset clears and reinitializes the notebook's Kernel in place, if one
// exists.
func (r *Registry) Reset(notebookID string) {
	r.mu.Lock()
	k, ok := r.kernels[notebookID]
	r.mu.Unlock()
	if ok {
		k.Reset()
	}
}

// Destroy removes the notebook's Kernel from the registry.
func (r *Registry) Destroy(notebookID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.kernels, notebookID)
}

// Close stops the background sweeper.
func (r *Registry) Close() {
	r.stopOnce.Do(func() { close(r.stop) })
}

// Len reports the number of kernels currently held, for gauge metrics.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.kernels)
}

func (r *Registry) sweepLoop() {
	ticker := time.NewTicker(r.sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.sweep()
		case <-r.stop:
			return
		}
	}
}

// sweep evicts kernels idle past idleTimeout. It holds the registry
// lock for the whole scan so a concurrent GetOrCreate can never observe
// a half-evicted entry.
func (r *Registry) sweep() {
	cutoff := time.Now().Add(-r.idleTimeout)
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, k := range r.kernels {
		if k.LastUsedAt().Before(cutoff) {
			delete(r.kernels, id)
		}
	}
}
