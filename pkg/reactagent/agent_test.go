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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborly/cortex/pkg/llm"
	"github.com/arborly/cortex/pkg/toolkit"
)

// scriptedClient replays a fixed sequence of full responses, one per
// ChatStream call, split into several small chunks to exercise the
// parser's incremental feeding (and, for one script entry, a tag split
// across chunks).
type scriptedClient struct {
	responses [][]string // each entry is a list of chunks for one call
	calls     int
}

func (c *scriptedClient) Provider() string { return "test" }
func (c *scriptedClient) Model() string    { return "test-model" }

func (c *scriptedClient) Chat(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
	return llm.ChatResponse{}, nil
}

func (c *scriptedClient) ChatStream(ctx context.Context, req llm.ChatRequest) (<-chan llm.StreamDelta, error) {
	idx := c.calls
	c.calls++
	chunks := c.responses[idx]
	ch := make(chan llm.StreamDelta, len(chunks)+1)
	for _, chunk := range chunks {
		ch <- llm.StreamDelta{Content: chunk}
	}
	ch <- llm.StreamDelta{Done: true}
	close(ch)
	return ch, nil
}

func drain(t *testing.T, events <-chan Event) []Event {
	t.Helper()
	var all []Event
	timeout := time.After(2 * time.Second)
	for {
		select {
		case e, ok := <-events:
			if !ok {
				return all
			}
			all = append(all, e)
		case <-timeout:
			t.Fatal("timed out waiting for agent events")
		}
	}
}

func TestAgentAnswersDirectly(t *testing.T) {
	client := &scriptedClient{responses: [][]string{
		{"<think>simple question</think><answer>4</answer>"},
	}}
	registry := toolkit.NewRegistry()
	a := New(client, registry, "system prompt {{tools}}")

	events := drain(t, a.Run(context.Background(), "what is 2+2", 5))

	var gotDone bool
	for _, e := range events {
		if e.Type == EventDone {
			gotDone = true
			done := e.Data.(DoneData)
			assert.Equal(t, "4", done.Answer)
		}
	}
	assert.True(t, gotDone)
}

func TestAgentCallsToolThenAnswers(t *testing.T) {
	client := &scriptedClient{responses: [][]string{
		{`<action>{"tool": "calculator", "input": {"expression": "2+2"}}</action>`},
		{"<answer>The answer is 4</answer>"},
	}}
	registry := toolkit.NewRegistry(toolkit.NewCalculator())
	a := New(client, registry, "system prompt {{tools}}")

	events := drain(t, a.Run(context.Background(), "what is 2+2", 5))

	var sawObservation, sawDone bool
	for _, e := range events {
		if e.Type == EventObservation {
			sawObservation = true
			obs := e.Data.(ObservationData)
			assert.True(t, obs.Success)
		}
		if e.Type == EventDone {
			sawDone = true
			done := e.Data.(DoneData)
			assert.Contains(t, done.Answer, "4")
		}
	}
	assert.True(t, sawObservation)
	assert.True(t, sawDone)
}

func TestAgentSplitClosingTagAcrossChunks(t *testing.T) {
	client := &scriptedClient{responses: [][]string{
		{"<answer>partial", "-answer-text</ans", "wer>"},
	}}
	registry := toolkit.NewRegistry()
	a := New(client, registry, "system prompt {{tools}}")

	events := drain(t, a.Run(context.Background(), "anything", 5))

	var done DoneData
	for _, e := range events {
		if e.Type == EventDone {
			done = e.Data.(DoneData)
		}
	}
	assert.Equal(t, "partial-answer-text", done.Answer)
}

func TestAgentMalformedActionFallsBackAndAnswers(t *testing.T) {
	client := &scriptedClient{responses: [][]string{
		{"<action>not json</action>"},
	}}
	registry := toolkit.NewRegistry()
	a := New(client, registry, "system prompt {{tools}}")

	events := drain(t, a.Run(context.Background(), "anything", 5))

	var gotDone bool
	for _, e := range events {
		if e.Type == EventDone {
			gotDone = true
		}
	}
	require.True(t, gotDone)
}

func TestAgentUnterminatedStreamSynthesizesAnswer(t *testing.T) {
	client := &scriptedClient{responses: [][]string{
		{"<think>still thinking, ran out of budget"},
	}}
	registry := toolkit.NewRegistry()
	a := New(client, registry, "system prompt {{tools}}")

	events := drain(t, a.Run(context.Background(), "anything", 5))

	var done DoneData
	for _, e := range events {
		if e.Type == EventDone {
			done = e.Data.(DoneData)
		}
	}
	assert.NotEmpty(t, done.Answer)
}
