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

// Package sse translates a reactagent.Event stream into Server-Sent
// Events, grounded directly on pkg/a2a/server.go's sendSSEEvent: set
// Cache-Control/Connection/X-Accel-Buffering headers once, then write
// "event: %s\ndata: %s\n\n" per event and Flush after each one.
package sse

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/arborly/cortex/pkg/history"
	"github.com/arborly/cortex/pkg/reactagent"
)

// Bridge forwards one agent turn's events to an http.ResponseWriter as
// SSE frames and persists the outcome to history on completion.
type Bridge struct {
	logger *slog.Logger
	ring   *history.Ring
	store  history.TurnStore

	// OnComplete, if set, is called once per served turn with the
	// outcome ("answered", "cancelled", "error"), wall-clock duration,
	// and number of react_steps — the metrics instrumentation seam.
	OnComplete func(outcome string, dur time.Duration, steps int)
}

// New builds a Bridge. store may be nil if no durable log is wired.
func New(logger *slog.Logger, ring *history.Ring, store history.TurnStore) *Bridge {
	return &Bridge{logger: logger, ring: ring, store: store}
}

// Serve sets SSE headers on w, then relays every event from events until
// the channel closes (normal completion) or the request context is
// cancelled (client disconnect — the agent's own ctx.Done() path stops
// producing further events; the assistant message is not persisted
// unless a done event already fired).
func (b *Bridge) Serve(w http.ResponseWriter, userID, notebookID string, events <-chan reactagent.Event) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	start := time.Now()
	var answered bool
	var errored bool
	var steps int
	for event := range events {
		b.writeEvent(w, flusher, event)

		switch event.Type {
		case reactagent.EventDone:
			answered = true
			done := event.Data.(reactagent.DoneData)
			steps = len(done.ReactSteps)
			b.persist(userID, notebookID, done)
		case reactagent.EventError:
			errored = true
			b.logger.Error("agent turn ended in error", "error", event.Data)
		}
	}

	if !answered {
		b.logger.Info("agent turn ended without an answer; not persisting", "notebook_id", notebookID)
	}

	if b.OnComplete != nil {
		outcome := "cancelled"
		switch {
		case errored:
			outcome = "error"
		case answered:
			outcome = "answered"
		}
		b.OnComplete(outcome, time.Since(start), steps)
	}
}

func (b *Bridge) writeEvent(w http.ResponseWriter, flusher http.Flusher, event reactagent.Event) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		b.logger.Error("marshal sse event", "error", err)
		return
	}
	fmt.Fprintf(w, "event: %s\n", event.Type)
	fmt.Fprintf(w, "data: %s\n\n", payload)
	flusher.Flush()
}

func (b *Bridge) persist(userID, notebookID string, done reactagent.DoneData) {
	turn := history.Turn{
		Role:    "assistant",
		Content: done.Answer,
		Thought: done.Thought,
	}
	steps := make([]any, len(done.ReactSteps))
	for i, s := range done.ReactSteps {
		steps[i] = s
	}
	turn.Steps = steps

	if b.ring != nil {
		b.ring.Append(userID, notebookID, turn)
	}
	if b.store != nil {
		if err := b.store.Append(notebookID, turn); err != nil {
			b.logger.Error("persist conversation turn", "error", err)
		}
	}
}
