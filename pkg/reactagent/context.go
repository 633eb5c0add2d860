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

package reactagent

import "github.com/arborly/cortex/pkg/llm"

// RunState is the agent turn's coarse-grained state, mirroring
// pkg/reasoning's ReasoningState lifecycle but over the tag-stream loop.
type RunState string

const (
	StateIdle      RunState = "idle"
	StateThinking  RunState = "thinking"
	StateActing    RunState = "acting"
	StateObserving RunState = "observing"
	StateAnswering RunState = "answering"
	StateDone      RunState = "done"
	StateError     RunState = "error"
)

// Context is per-turn state: discarded after the SSE response closes.
type Context struct {
	System        string
	Messages      []llm.Message
	Steps         []Step
	Iteration     int
	MaxIterations int
	FinalAnswer   string
	LastThought   string
	State         RunState
}

// NewContext seeds a turn with the system prompt and the user's message.
func NewContext(system, userMessage string, maxIterations int) *Context {
	return &Context{
		System: system,
		Messages: []llm.Message{
			{Role: "user", Content: userMessage},
		},
		MaxIterations: maxIterations,
		State:         StateIdle,
	}
}
