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

// Package plotsink is the Go-native analogue of the notebook's
// "_plot_outputs" convention: interpreted code calls Show on the sink
// bound into its namespace, and the Kernel drains the accumulated PNG
// frames into display_data outputs after each execution.
package plotsink

import (
	"bytes"
	"sync"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
)

// Sink buffers rendered plot frames in display order for one Kernel.
type Sink struct {
	mu     sync.Mutex
	frames [][]byte
}

// New returns an empty Sink.
func New() *Sink {
	return &Sink{}
}

// Show renders p as a PNG and appends it to the sink. Interpreted code
// calls this directly; it is bound into the Kernel's yaegi namespace
// under the symbol `display.Show`.
func (s *Sink) Show(p *plot.Plot) error {
	w, err := p.WriterTo(6*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return err
	}
	s.mu.Lock()
	s.frames = append(s.frames, buf.Bytes())
	s.mu.Unlock()
	return nil
}

// Drain returns all buffered frames in the order Show produced them and
// clears the sink.
func (s *Sink) Drain() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.frames
	s.frames = nil
	return out
}
