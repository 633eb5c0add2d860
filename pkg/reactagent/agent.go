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

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/arborly/cortex/pkg/apperr"
	"github.com/arborly/cortex/pkg/llm"
	"github.com/arborly/cortex/pkg/reactagent/tagparser"
	"github.com/arborly/cortex/pkg/toolkit"
	"github.com/arborly/cortex/pkg/tracing"
)

const observationTruncateLen = 2000

// Agent drives one notebook turn through the Thought/Action/Observation/
// Answer loop. It is stateless across turns — all per-turn state lives
// in Context.
type Agent struct {
	llmClient llm.Client
	tools     *toolkit.Registry
	sysPrompt string
}

// New builds an Agent bound to a client and a tool registry scoped to
// one notebook/request.
func New(llmClient llm.Client, tools *toolkit.Registry, systemPromptTemplate string) *Agent {
	return &Agent{llmClient: llmClient, tools: tools, sysPrompt: systemPromptTemplate}
}

// Run executes the turn and returns a channel of Events. The channel is
// closed when the turn reaches StateDone or StateError. Run propagates
// ctx cancellation to the LLM stream and any in-flight tool call.
func (a *Agent) Run(ctx context.Context, userMessage string, maxIterations int) <-chan Event {
	out := make(chan Event, 64)
	go a.run(ctx, userMessage, maxIterations, out)
	return out
}

func (a *Agent) run(ctx context.Context, userMessage string, maxIterations int, out chan<- Event) {
	defer close(out)

	system := renderSystemPrompt(a.sysPrompt, a.tools.Manifest())
	rc := NewContext(system, userMessage, maxIterations)

	out <- Event{Type: EventStart, Data: ModelInfo{Provider: a.llmClient.Provider(), Model: a.llmClient.Model()}}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		rc.State = StateThinking
		rc.Iteration++

		finalCall := rc.Iteration > rc.MaxIterations
		if finalCall {
			rc.Messages = append(rc.Messages, llm.Message{
				Role:    "user",
				Content: "You are out of iterations. Produce an <answer> now, using whatever you've learned so far.",
			})
		}

		iterCtx, span := tracing.Tracer("cortex.reactagent").Start(ctx, tracing.SpanAgentIteration,
			trace.WithAttributes(attribute.Int(tracing.AttrIteration, rc.Iteration)))
		thought, action, answer, recoverable, err := a.streamOneIteration(iterCtx, rc, out)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.End()
			out <- Event{Type: EventError, Data: err.Error()}
			rc.State = StateError
			return
		}
		span.End()
		if recoverable != "" {
			rc.Steps = append(rc.Steps, Step{Kind: StepThought, Content: recoverable})
		}
		if thought != "" {
			rc.LastThought = thought
			rc.Steps = append(rc.Steps, Step{Kind: StepThought, Content: thought})
		}

		if answer != "" {
			a.finish(rc, answer, out)
			return
		}

		if action != nil {
			a.act(ctx, rc, *action, out)
			if finalCall {
				// One more iteration already granted for max_iterations
				// recovery; don't loop forever if the model keeps acting.
				a.finish(rc, synthesizeAnswer(rc), out)
				return
			}
			continue
		}

		// Stream ended without a closed tag and without a usable
		// recovery path: synthesize an answer from whatever text we saw
		// and terminate, per spec's "always terminate" requirement.
		a.finish(rc, synthesizeAnswer(rc), out)
		return
	}
}

// streamOneIteration calls the LLM, feeds the stream to the tag parser,
// and returns whichever of (thought, action, answer) resulted, plus any
// recoverable-error text the parser emitted.
func (a *Agent) streamOneIteration(ctx context.Context, rc *Context, out chan<- Event) (thought string, action *tagparser.Action, answer, recoverable string, err error) {
	req := llm.ChatRequest{Messages: rc.Messages, System: rc.System}
	deltas, streamErr := a.llmClient.ChatStream(ctx, req)
	if streamErr != nil {
		return "", nil, "", "", fmt.Errorf("llm stream: %w", streamErr)
	}

	p := tagparser.New()
	var rawResponse strings.Builder

	for delta := range deltas {
		select {
		case <-ctx.Done():
			return "", nil, "", "", ctx.Err()
		default:
		}
		if delta.Err != nil {
			return "", nil, "", "", fmt.Errorf("llm stream delta: %w", delta.Err)
		}
		if delta.Content == "" {
			continue
		}
		rawResponse.WriteString(delta.Content)

		for _, ev := range p.Feed(delta.Content) {
			switch ev.Kind {
			case tagparser.EventThinkingStart:
				out <- Event{Type: EventThinkingStart, Data: map[string]int{"iteration": rc.Iteration}}
			case tagparser.EventThinking:
				out <- Event{Type: EventThinking, Data: ev.Text}
			case tagparser.EventThought:
				thought = ev.Text
				out <- Event{Type: EventThought, Data: ev.Text}
			case tagparser.EventAction:
				parsed := ev.Action
				action = &parsed
				out <- Event{Type: EventAction, Data: ActionData{Tool: parsed.Tool, Input: parsed.Input}}
			case tagparser.EventContent:
				out <- Event{Type: EventContent, Data: ev.Text}
			case tagparser.EventAnswer:
				answer = ev.Text
				out <- Event{Type: EventAnswer, Data: ev.Text}
			case tagparser.EventRecoverableError:
				recoverable = ev.Text
			}
		}

		if delta.Done {
			break
		}
		if answer != "" || action != nil {
			// Do not continue parsing the remainder of the current LLM
			// stream — an action or answer changes what happens next.
			break
		}
	}

	rc.Messages = append(rc.Messages, llm.Message{Role: "assistant", Content: rawResponse.String()})

	if answer != "" || action != nil {
		return thought, action, answer, recoverable, nil
	}

	// Stream ended mid-region: attempt the two recovery paths in order.
	mode, accumulated := p.Unterminated()
	if bare, ok := tagparser.ExtractBareAction(rawResponse.String()); ok {
		return thought, &bare, "", recoverable, nil
	}
	cleaned := cleanTagArtefacts(rawResponse.String())
	if mode != tagparser.ModeNone && accumulated != "" {
		cleaned = cleanTagArtefacts(accumulated)
	}
	return thought, nil, cleaned, recoverable, nil
}

// act executes one action, emits its observation, and appends the
// observation turn to the conversation per spec §4.6 step 3.
func (a *Agent) act(ctx context.Context, rc *Context, action tagparser.Action, out chan<- Event) {
	rc.State = StateActing
	rc.Steps = append(rc.Steps, Step{Kind: StepAction, ToolName: action.Tool, ToolInput: action.Input})

	result := a.tools.Execute(ctx, action.Tool, action.Input)

	rc.State = StateObserving
	truncated := truncate(result.Output, observationTruncateLen)
	out <- Event{Type: EventObservation, Data: ObservationData{Tool: action.Tool, Success: result.Success, Output: truncated}}

	if result.Error == apperr.AuthorizationRequired {
		out <- Event{Type: EventAuthorizationRequired, Data: AuthorizationRequiredData{Action: action.Tool}}
	}

	rc.Steps = append(rc.Steps, Step{
		Kind:       StepObservation,
		ToolName:   action.Tool,
		ToolOutput: truncated,
		Success:    result.Success,
	})

	rc.Messages = append(rc.Messages, llm.Message{
		Role:    "user",
		Content: fmt.Sprintf("<observation>\n%s\n</observation>\n\nContinue reasoning, or provide your final <answer>.", truncated),
	})
}

func (a *Agent) finish(rc *Context, answer string, out chan<- Event) {
	rc.FinalAnswer = answer
	rc.State = StateDone
	rc.Steps = append(rc.Steps, Step{Kind: StepAnswer, Content: answer})
	out <- Event{Type: EventDone, Data: DoneData{
		Thought:    rc.LastThought,
		Answer:     answer,
		ReactSteps: rc.Steps,
	}}
}

// synthesizeAnswer builds a last-resort answer from the most recent
// thought when the model never produced a usable <answer> tag, per
// spec §4.6 step 6 ("if still none, synthesize an answer from cleaned
// text").
func synthesizeAnswer(rc *Context) string {
	if rc.LastThought != "" {
		return rc.LastThought
	}
	return "I was unable to produce a final answer within the allotted iterations."
}

// cleanTagArtefacts strips any stray tag sentinels from recovered text.
func cleanTagArtefacts(s string) string {
	replacer := strings.NewReplacer(
		"<think>", "", "</think>", "",
		"<action>", "", "</action>", "",
		"<answer>", "", "</answer>", "",
	)
	return strings.TrimSpace(replacer.Replace(s))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}

// renderSystemPrompt embeds the tool manifest into the system prompt
// template, matching spec §4.6's "tool manifest rendered into it".
func renderSystemPrompt(template string, manifest []toolkit.Manifest) string {
	encoded, _ := json.MarshalIndent(manifest, "", "  ")
	return strings.ReplaceAll(template, "{{tools}}", string(encoded))
}
