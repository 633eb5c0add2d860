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

// Package reactagent drives an LLM through a bounded Thought/Action/
// Observation/Answer loop, parsing the tag-delimited wire format
// incrementally via pkg/reactagent/tagparser and emitting a fine-grained
// event stream. Grounded structurally on pkg/reasoning's Strategy /
// ReasoningState seam, but the control flow here is the tag-stream state
// machine, not native function calling.
package reactagent

// EventType names the SSE-facing event kinds from the external interface.
type EventType string

const (
	EventStart                EventType = "start"
	EventModelInfo             EventType = "model_info"
	EventThinkingStart         EventType = "thinking_start"
	EventThinking              EventType = "thinking"
	EventThought               EventType = "thought"
	EventAction                EventType = "action"
	EventObservation           EventType = "observation"
	EventContent               EventType = "content"
	EventAnswer                EventType = "answer"
	EventAuthorizationRequired EventType = "authorization_required"
	EventDone                  EventType = "done"
	EventError                 EventType = "error"
)

// Event is one item on the agent's output channel.
type Event struct {
	Type EventType
	Data any
}

// ModelInfo is the payload for EventStart/EventModelInfo.
type ModelInfo struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// ActionData is the payload for EventAction.
type ActionData struct {
	Tool  string         `json:"tool"`
	Input map[string]any `json:"input"`
}

// ObservationData is the payload for EventObservation.
type ObservationData struct {
	Tool    string `json:"tool"`
	Success bool   `json:"success"`
	Output  string `json:"output"`
}

// AuthorizationRequiredData is the payload for EventAuthorizationRequired.
type AuthorizationRequiredData struct {
	Action string `json:"action"`
}

// DoneData is the payload for EventDone.
type DoneData struct {
	MessageID  int    `json:"message_id"`
	Thought    string `json:"thought"`
	Answer     string `json:"answer"`
	ReactSteps []Step `json:"react_steps"`
}

// StepKind tags an AgentStep's variant.
type StepKind string

const (
	StepThought     StepKind = "thought"
	StepAction      StepKind = "action"
	StepObservation StepKind = "observation"
	StepAnswer      StepKind = "answer"
)

// Step is one entry in the agent's collected trace.
type Step struct {
	Kind       StepKind       `json:"kind"`
	Content    string         `json:"content"`
	ToolName   string         `json:"tool_name,omitempty"`
	ToolInput  map[string]any `json:"tool_input,omitempty"`
	ToolOutput string         `json:"tool_output,omitempty"`
	Success    bool           `json:"success,omitempty"`
}
