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

package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/arborly/cortex/pkg/authn"
	"github.com/arborly/cortex/pkg/reactagent"
	"github.com/arborly/cortex/pkg/toolkit"
)

const defaultMaxIterations = 10

// createNotebookRequest is the body for POST /v1/notebooks.
type createNotebookRequest struct {
	OwnerID     string `json:"owner_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (s *Server) handleCreateNotebook(w http.ResponseWriter, r *http.Request) {
	var req createNotebookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	nb := s.notebooks.Create(req.OwnerID, req.Title, req.Description)
	writeJSON(w, http.StatusCreated, nb)
}

func (s *Server) handleGetNotebook(w http.ResponseWriter, r *http.Request) {
	notebookID := chi.URLParam(r, "notebookID")
	nb, err := s.notebooks.Get(notebookID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, nb)
}

// turnRequest is the body for POST /v1/notebooks/{id}/turns.
type turnRequest struct {
	Message    string `json:"message"`
	Authorized bool   `json:"authorized"`
	UserID     string `json:"user_id"`
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	notebookID := chi.URLParam(r, "notebookID")

	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if id, ok := authn.FromContext(r.Context()); ok {
		req.UserID = id.UserID
	}

	registry := s.buildToolRegistry(notebookID, req.UserID, req.Authorized)
	agent := reactagent.New(s.llmClient, registry, systemPromptTemplate)

	events := agent.Run(r.Context(), req.Message, defaultMaxIterations)
	s.sseBridge.Serve(w, req.UserID, notebookID, events)
}

// executeCellRequest is the body for POST .../cells/{cellID}/execute.
type executeCellRequest struct {
	Code string `json:"code"`
}

func (s *Server) handleExecuteCell(w http.ResponseWriter, r *http.Request) {
	notebookID := chi.URLParam(r, "notebookID")
	cellID := chi.URLParam(r, "cellID")

	var req executeCellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	k := s.kernels.GetOrCreate(notebookID)
	s.metrics.SetKernelsLive(s.kernels.Len())
	start := time.Now()
	result := k.Execute(r.Context(), req.Code, s.cfg.Kernel.ExecuteTimeout)
	s.metrics.ObserveKernelExecute(result.Success, time.Since(start))

	executionCount := result.ExecutionCount
	patch := notebookPatchFromResult(result)
	if _, err := s.notebooks.UpdateCell(notebookID, cellID, patch); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	_ = s.notebooks.BumpExecutionCount(notebookID, executionCount)

	writeJSON(w, http.StatusOK, result)
}

// buildToolRegistry assembles a fresh, per-request ToolRegistry scoped
// to one notebook and user — per spec §5, "ToolRegistry: per-request
// instance; no shared mutation."
func (s *Server) buildToolRegistry(notebookID, userID string, authorized bool) *toolkit.Registry {
	registry := toolkit.NewRegistry(
		toolkit.NewCalculator(),
		toolkit.NewDateTime(),
		toolkit.NewUnitConverter(),
		toolkit.NewTextAnalysis(),
		toolkit.NewWebSearch(s.cfg.Tools.SerperAPIKey),
		toolkit.NewWebScrape(),
		toolkit.NewKnowledgeSearch(userID, s.vecStore, s.embedder),
		toolkit.NewLiteratureSearch(s.cfg.Tools.LiteratureAPI),
		toolkit.NewCodeAnalysis(),
		toolkit.NewNotebookExecute(notebookID, authorized, s.kernels, s.notebooks, s.cfg.Kernel.AgentExecTimeout),
		toolkit.NewNotebookCell(notebookID, authorized, s.notebooks),
		toolkit.NewNotebookVariables(notebookID, s.kernels),
		toolkit.NewPipInstall(authorized, noopInstaller{}),
	)
	registry.OnExecute = func(name string, dur time.Duration, success bool) {
		s.metrics.ObserveToolCall(name, success, dur)
	}
	return registry
}

const systemPromptTemplate = `You are a notebook data-analysis assistant. You have access to the following tools:

{{tools}}

Respond using this exact wire format:
<think>your reasoning</think>
<action>{"tool": "tool_name", "input": {...}}</action>

or, when you have a final answer:
<think>your reasoning</think>
<answer>your final answer</answer>
`
