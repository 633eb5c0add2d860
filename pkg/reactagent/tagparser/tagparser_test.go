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

package tagparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(p *Parser, chunks ...string) []Event {
	var all []Event
	for _, c := range chunks {
		all = append(all, p.Feed(c)...)
	}
	return all
}

func TestThinkThenAnswerSingleChunk(t *testing.T) {
	p := New()
	events := collect(p, "<think>reasoning here</think><answer>42</answer>")

	var kinds []EventKind
	for _, e := range events {
		kinds = append(kinds, e.Kind)
	}
	assert.Contains(t, kinds, EventThinkingStart)
	assert.Contains(t, kinds, EventThought)
	assert.Contains(t, kinds, EventAnswer)

	for _, e := range events {
		if e.Kind == EventThought {
			assert.Equal(t, "reasoning here", e.Text)
		}
		if e.Kind == EventAnswer {
			assert.Equal(t, "42", e.Text)
		}
	}
}

func TestActionParsed(t *testing.T) {
	p := New()
	events := collect(p, `<action>{"tool": "calculator", "input": {"expression": "1+1"}}</action>`)

	require.Len(t, events, 1)
	assert.Equal(t, EventAction, events[0].Kind)
	assert.Equal(t, "calculator", events[0].Action.Tool)
	assert.Equal(t, "1+1", events[0].Action.Input["expression"])
}

func TestSplitClosingTagAcrossChunks(t *testing.T) {
	p := New()
	// The closing tag "</answer>" is split across two Feed calls.
	events := collect(p, "<answer>partial answer</ans", "wer>")

	var answerText string
	for _, e := range events {
		if e.Kind == EventAnswer {
			answerText = e.Text
		}
	}
	assert.Equal(t, "partial answer", answerText)
}

func TestMalformedActionEmitsRecoverableError(t *testing.T) {
	p := New()
	events := collect(p, `<action>not valid json at all</action>`)

	require.Len(t, events, 1)
	assert.Equal(t, EventRecoverableError, events[0].Kind)
}

func TestBytesBeforeTagAreDiscarded(t *testing.T) {
	p := New()
	events := collect(p, "some preamble noise <answer>final</answer>")

	var answerText string
	for _, e := range events {
		if e.Kind == EventAnswer {
			answerText = e.Text
		}
	}
	assert.Equal(t, "final", answerText)
}

func TestExtractBareAction(t *testing.T) {
	a, ok := ExtractBareAction(`some preamble {"tool": "calculator", "input": {"x": 1}} trailer`)
	require.True(t, ok)
	assert.Equal(t, "calculator", a.Tool)
}

func TestExtractBareActionNoMatch(t *testing.T) {
	_, ok := ExtractBareAction("just plain text, no json here")
	assert.False(t, ok)
}
