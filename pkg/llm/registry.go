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

package llm

import (
	"context"
	"fmt"
)

// Config selects and configures one provider.
type Config struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}

// NewClient builds the Client named by cfg.Provider, mirroring the
// teacher's pkg/llms/registry.go provider-name dispatch.
func NewClient(cfg Config) (Client, error) {
	switch cfg.Provider {
	case "anthropic":
		return NewAnthropic(cfg.BaseURL, cfg.APIKey, cfg.Model), nil
	case "openai":
		base := cfg.BaseURL
		if base == "" {
			base = "https://api.openai.com/v1"
		}
		return NewOpenAICompat("openai", base, cfg.APIKey, cfg.Model), nil
	case "ollama":
		base := cfg.BaseURL
		if base == "" {
			base = "http://localhost:11434/v1"
		}
		return NewOpenAICompat("ollama", base, cfg.APIKey, cfg.Model), nil
	case "gemini":
		// Matches the teacher's pkg/model/gemini.New: constructors
		// shouldn't require a caller context, so client setup uses
		// context.Background() rather than threading one through Config.
		return NewGemini(context.Background(), cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
}
