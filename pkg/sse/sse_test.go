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

package sse

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborly/cortex/pkg/history"
	"github.com/arborly/cortex/pkg/reactagent"
)

func TestBridgeWritesFramesAndPersistsOnDone(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ring := history.NewRing()
	store := history.NewInMemoryTurnStore()
	bridge := New(logger, ring, store)

	events := make(chan reactagent.Event, 2)
	events <- reactagent.Event{Type: reactagent.EventThought, Data: "thinking"}
	events <- reactagent.Event{Type: reactagent.EventDone, Data: reactagent.DoneData{Answer: "42", Thought: "thinking"}}
	close(events)

	rec := httptest.NewRecorder()
	bridge.Serve(rec, "user-1", "nb-1", events)

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Contains(t, rec.Body.String(), "event: thought")
	assert.Contains(t, rec.Body.String(), "event: done")

	turns := ring.Get("user-1", "nb-1")
	require.Len(t, turns, 1)
	assert.Equal(t, "42", turns[0].Content)

	stored, err := store.List("nb-1")
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestBridgeDoesNotPersistWithoutAnswer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ring := history.NewRing()
	bridge := New(logger, ring, nil)

	events := make(chan reactagent.Event, 1)
	events <- reactagent.Event{Type: reactagent.EventError, Data: "boom"}
	close(events)

	rec := httptest.NewRecorder()
	bridge.Serve(rec, "user-1", "nb-1", events)

	assert.Empty(t, ring.Get("user-1", "nb-1"))
}
