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

// Package httpserver wires C1-C9 behind a chi router, grounded on
// pkg/transport's chi-based middleware chain and pkg/server's executor
// wiring.
package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/arborly/cortex/pkg/appconfig"
	"github.com/arborly/cortex/pkg/authn"
	"github.com/arborly/cortex/pkg/history"
	"github.com/arborly/cortex/pkg/kernel"
	"github.com/arborly/cortex/pkg/llm"
	"github.com/arborly/cortex/pkg/llm/pluginembedder"
	"github.com/arborly/cortex/pkg/metrics"
	"github.com/arborly/cortex/pkg/notebook"
	"github.com/arborly/cortex/pkg/sse"
	"github.com/arborly/cortex/pkg/tracing"
	"github.com/arborly/cortex/pkg/vectorstore"
)

// Server bundles every component needed to serve the notebook API.
type Server struct {
	cfg       *appconfig.Config
	logger    *slog.Logger
	kernels   *kernel.Registry
	notebooks *notebook.Store
	llmClient llm.Client
	embedder  llm.Embedder
	vecStore  vectorstore.Store
	history   *history.Ring
	turnStore history.TurnStore
	sseBridge      *sse.Bridge
	metrics        *metrics.Metrics
	authn          *authn.Validator
	embedderPlugin *pluginembedder.Embedder
	tracerProvider oteltrace.TracerProvider
	router         chi.Router
}

// New builds a Server with all components wired from cfg.
func New(cfg *appconfig.Config, logger *slog.Logger) (*Server, error) {
	llmClient, err := llm.NewClient(llm.Config{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
	})
	if err != nil {
		return nil, err
	}

	vecStore, err := vectorstore.New(vectorstore.Config{
		Backend:        cfg.VectorStore.Backend,
		DSN:            cfg.VectorStore.DSN,
		QdrantAddr:     cfg.VectorStore.QdrantAddr,
		QdrantAPIKey:   cfg.VectorStore.QdrantAPIKey,
		ChromemPath:    cfg.VectorStore.ChromemPath,
		CollectionName: cfg.VectorStore.CollectionName,
		PineconeAPIKey: cfg.VectorStore.PineconeAPIKey,
		PineconeHost:   cfg.VectorStore.PineconeHost,
	})
	if err != nil {
		return nil, err
	}

	var embedder llm.Embedder
	var embedderPlugin *pluginembedder.Embedder
	if cfg.EmbedderPlugin.Path != "" {
		embedderPlugin, err = pluginembedder.New(context.Background(), cfg.EmbedderPlugin.Path, cfg.EmbedderPlugin.Config)
		if err != nil {
			return nil, err
		}
		embedder = embedderPlugin
	} else {
		embedder = llm.NewOpenAIEmbedder(cfg.LLM.BaseURL, cfg.LLM.APIKey, "")
	}

	var validator *authn.Validator
	if cfg.Auth.Enabled {
		validator, err = authn.NewValidator(context.Background(), cfg.Auth.JWKSURL, cfg.Auth.Issuer, cfg.Auth.Audience)
		if err != nil {
			return nil, err
		}
	}

	tracerProvider, err := tracing.Init(context.Background(), cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	s := &Server{
		cfg:       cfg,
		logger:    logger,
		kernels:   kernel.NewRegistry(cfg.Kernel.IdleTimeout, cfg.Kernel.CleanupInterval),
		notebooks: notebook.NewStore(),
		llmClient: llmClient,
		embedder:  embedder,
		vecStore:  vecStore,
		history:   history.NewRing(),
		turnStore: history.NewInMemoryTurnStore(),
		metrics:        metrics.New(),
		authn:          validator,
		embedderPlugin: embedderPlugin,
		tracerProvider: tracerProvider,
	}
	s.sseBridge = sse.New(logger, s.history, s.turnStore)
	s.sseBridge.OnComplete = func(outcome string, dur time.Duration, steps int) {
		s.metrics.ObserveAgentTurn(outcome, dur, steps)
	}
	s.router = s.buildRouter()
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close stops the kernel registry's background sweeper and, if an
// embedder plugin subprocess was launched, terminates it. Call it once
// the HTTP listener has drained in-flight requests.
func (s *Server) Close() {
	s.kernels.Close()
	if s.embedderPlugin != nil {
		s.embedderPlugin.Close()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := tracing.Shutdown(shutdownCtx, s.tracerProvider); err != nil {
		s.logger.Warn("tracer shutdown", "error", err)
	}
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	if s.authn != nil {
		r.Use(s.authn.Middleware)
	}

	r.Route("/v1/notebooks", func(r chi.Router) {
		r.Post("/", s.handleCreateNotebook)
		r.Get("/{notebookID}", s.handleGetNotebook)
		r.Post("/{notebookID}/turns", s.handleTurn)
		r.Post("/{notebookID}/cells/{cellID}/execute", s.handleExecuteCell)
	})
	r.Handle("/metrics", s.metrics.Handler())

	return r
}

// loggingMiddleware logs each request at debug level the way
// pkg/transport's metrics middleware wraps the response writer.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("http request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
