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

	"google.golang.org/genai"

	"github.com/arborly/cortex/pkg/apperr"
)

// GeminiClient adapts the official google.golang.org/genai SDK to the
// vendor-agnostic Client contract, grounded on the teacher's
// pkg/model/gemini adapter (same SDK, same Content/Part shape) but
// narrowed to this package's plain message/delta contract instead of
// the teacher's a2a.Message/tool-definition plumbing.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGemini builds a Client against the Gemini API using an API key.
func NewGemini(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, apperr.Wrap(apperr.LLMStream, "create gemini client", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

func (c *GeminiClient) Provider() string { return "gemini" }
func (c *GeminiClient) Model() string    { return c.model }

func (c *GeminiClient) toContents(req ChatRequest) ([]*genai.Content, *genai.GenerateContentConfig) {
	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := "user"
		if m.Role == "assistant" {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}

	config := &genai.GenerateContentConfig{}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Role:  "user",
			Parts: []*genai.Part{{Text: req.System}},
		}
	}
	if req.Temperature > 0 {
		t := float32(req.Temperature)
		config.Temperature = &t
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	return contents, config
}

// Chat issues a non-streamed GenerateContent call.
func (c *GeminiClient) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	contents, config := c.toContents(req)
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return ChatResponse{}, apperr.Wrap(apperr.LLMStream, "gemini generation failed", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ChatResponse{}, apperr.New(apperr.LLMStream, "gemini returned no candidates")
	}

	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		text += part.Text
	}
	usage := Usage{}
	if resp.UsageMetadata != nil {
		usage.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		usage.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return ChatResponse{
		Content:      text,
		Model:        c.model,
		FinishReason: string(resp.Candidates[0].FinishReason),
		Usage:        usage,
	}, nil
}

// ChatStream issues a streamed GenerateContent call, translating each
// chunk's text parts into StreamDelta values.
func (c *GeminiClient) ChatStream(ctx context.Context, req ChatRequest) (<-chan StreamDelta, error) {
	contents, config := c.toContents(req)
	out := make(chan StreamDelta)

	go func() {
		defer close(out)
		for resp, err := range c.client.Models.GenerateContentStream(ctx, c.model, contents, config) {
			select {
			case <-ctx.Done():
				out <- StreamDelta{Err: ctx.Err(), Done: true}
				return
			default:
			}
			if err != nil {
				out <- StreamDelta{Err: apperr.Wrap(apperr.LLMStream, "gemini stream error", err), Done: true}
				return
			}
			if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
				continue
			}
			for _, part := range resp.Candidates[0].Content.Parts {
				if part.Text != "" {
					out <- StreamDelta{Content: part.Text}
				}
			}
		}
		out <- StreamDelta{Done: true}
	}()
	return out, nil
}
