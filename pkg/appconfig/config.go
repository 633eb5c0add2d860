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

// Package appconfig loads the service's YAML configuration, expanding
// ${VAR} / ${VAR:-default} references against the process environment
// (and a .env file, if present) before decoding into typed structs.
package appconfig

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/arborly/cortex/pkg/tracing"
)

// Config is the root configuration for the service.
type Config struct {
	Server         ServerConfig         `yaml:"server"`
	LLM            LLMConfig            `yaml:"llm"`
	Kernel         KernelConfig         `yaml:"kernel"`
	VectorStore    VectorStoreConfig    `yaml:"vector_store"`
	Tools          ToolsConfig          `yaml:"tools"`
	Auth           AuthConfig           `yaml:"auth"`
	Remote         RemoteConfig         `yaml:"remote"`
	EmbedderPlugin EmbedderPluginConfig `yaml:"embedder_plugin"`
	Tracing        tracing.Config       `yaml:"tracing"`
	LogLevel       string               `yaml:"log_level"`
}

// AuthConfig enables bearer-token verification ahead of the turn/notebook
// handlers. Left zero, the server runs without authentication (suitable
// for local development), since spec.md treats auth middleware as an
// external collaborator outside the core's scope.
type AuthConfig struct {
	Enabled  bool   `yaml:"enabled"`
	JWKSURL  string `yaml:"jwks_url"`
	Issuer   string `yaml:"issuer"`
	Audience string `yaml:"audience"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LLMConfig selects and configures the chat provider.
type LLMConfig struct {
	Provider    string  `yaml:"provider"` // "anthropic" | "openai" | "ollama" | "gemini"
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// KernelConfig controls kernel registry lifetime.
type KernelConfig struct {
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	CleanupInterval  time.Duration `yaml:"cleanup_interval"`
	ExecuteTimeout   time.Duration `yaml:"execute_timeout"`
	AgentExecTimeout time.Duration `yaml:"agent_execute_timeout"`
}

// VectorStoreConfig selects the knowledge_search backend.
type VectorStoreConfig struct {
	Backend        string `yaml:"backend"` // "postgres" | "qdrant" | "chromem" | "pinecone"
	DSN            string `yaml:"dsn"`
	QdrantAddr     string `yaml:"qdrant_addr"`
	QdrantAPIKey   string `yaml:"qdrant_api_key"`
	ChromemPath    string `yaml:"chromem_path"`
	CollectionName string `yaml:"collection"`
	PineconeAPIKey string `yaml:"pinecone_api_key"`
	PineconeHost   string `yaml:"pinecone_host"`
}

// ToolsConfig carries external endpoints used by C5 tools.
type ToolsConfig struct {
	SerperAPIKey  string `yaml:"serper_api_key"`
	LiteratureAPI string `yaml:"literature_api"`
}

// EmbedderPluginConfig optionally replaces the built-in OpenAI-compatible
// embedder with an out-of-process plugin (pkg/llm/pluginembedder).
type EmbedderPluginConfig struct {
	Path   string            `yaml:"path"`
	Config map[string]string `yaml:"config"`
}

// defaults applies conservative defaults for anything left zero.
func (c *Config) defaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "anthropic"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 4096
	}
	if c.Kernel.IdleTimeout == 0 {
		c.Kernel.IdleTimeout = 2 * time.Hour
	}
	if c.Kernel.CleanupInterval == 0 {
		c.Kernel.CleanupInterval = time.Hour
	}
	if c.Kernel.ExecuteTimeout == 0 {
		c.Kernel.ExecuteTimeout = 30 * time.Second
	}
	if c.Kernel.AgentExecTimeout == 0 {
		c.Kernel.AgentExecTimeout = 60 * time.Second
	}
	if c.VectorStore.Backend == "" {
		c.VectorStore.Backend = "chromem"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Load reads a YAML config file at path, expands environment variable
// references (loading a .env file from the working directory first, if
// present; variables already set in the shell environment take
// precedence over its entries), and decodes the result.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // optional .env in cwd; ignored if absent

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var tree map[string]any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	tree = expandTree(tree).(map[string]any)

	expanded, err := yaml.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("re-marshal expanded config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(expanded, &cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	cfg.defaults()

	overrides, err := ApplyRemoteOverrides(context.Background(), cfg.Remote, []string{"serper_api_key", "literature_api"})
	if err != nil {
		return nil, fmt.Errorf("remote config overlay: %w", err)
	}
	if v, ok := overrides["serper_api_key"]; ok {
		cfg.Tools.SerperAPIKey = v
	}
	if v, ok := overrides["literature_api"]; ok {
		cfg.Tools.LiteratureAPI = v
	}

	return &cfg, nil
}
