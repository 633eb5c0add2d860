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
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/arborly/cortex/pkg/apperr"
	"github.com/arborly/cortex/pkg/httpclient"
)

// OpenAICompatClient talks the `chat/completions`-shaped HTTP contract
// spec §6 requires: {model, messages, temperature, max_tokens, stream}
// in, a sequence of `delta.content` chunks out. It serves both the
// OpenAI provider and any OpenAI-compatible endpoint (local models,
// Ollama's OpenAI shim, ...).
type OpenAICompatClient struct {
	httpClient *httpclient.Client
	baseURL    string
	apiKey     string
	model      string
	provider   string
}

// NewOpenAICompat builds a Client against an OpenAI-compatible HTTP
// endpoint, reusing the teacher's retrying httpclient.Client the same
// way pkg/tool/webtool constructs its fetchers.
func NewOpenAICompat(provider, baseURL, apiKey, model string) *OpenAICompatClient {
	return &OpenAICompatClient{
		httpClient: httpclient.New(
			httpclient.WithMaxRetries(3),
			httpclient.WithHeaderParser(httpclient.ParseOpenAIHeaders),
		),
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		model:    model,
		provider: provider,
	}
}

func (c *OpenAICompatClient) Provider() string { return c.provider }
func (c *OpenAICompatClient) Model() string     { return c.model }

type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []oaiMsg  `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Stream      bool      `json:"stream"`
}

type oaiMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      oaiMsg `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

type chatCompletionChunk struct {
	Choices []struct {
		Delta        oaiMsg `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func (c *OpenAICompatClient) toPayload(req ChatRequest, stream bool) chatCompletionRequest {
	msgs := make([]oaiMsg, 0, len(req.Messages)+1)
	if req.System != "" {
		msgs = append(msgs, oaiMsg{Role: "system", Content: req.System})
	}
	for _, m := range req.Messages {
		msgs = append(msgs, oaiMsg{Role: m.Role, Content: m.Content})
	}
	return chatCompletionRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      stream,
	}
}

func (c *OpenAICompatClient) newRequest(ctx context.Context, payload chatCompletionRequest) (*http.Request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperr.Wrap(apperr.LLMStream, "encode chat request", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, apperr.Wrap(apperr.LLMStream, "build chat request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return httpReq, nil
}

// Chat issues a non-streamed completion.
func (c *OpenAICompatClient) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	httpReq, err := c.newRequest(ctx, c.toPayload(req, false))
	if err != nil {
		return ChatResponse{}, err
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return ChatResponse{}, apperr.Wrap(apperr.LLMStream, "chat request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return ChatResponse{}, apperr.New(apperr.LLMStream, fmt.Sprintf("chat completion error %d: %s", resp.StatusCode, string(body)))
	}

	var parsed chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return ChatResponse{}, apperr.Wrap(apperr.LLMStream, "decode chat response", err)
	}
	if len(parsed.Choices) == 0 {
		return ChatResponse{}, apperr.New(apperr.LLMStream, "chat completion returned no choices")
	}
	return ChatResponse{
		Content:      parsed.Choices[0].Message.Content,
		Model:        parsed.Model,
		FinishReason: parsed.Choices[0].FinishReason,
		Usage: Usage{
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
		},
	}, nil
}

// ChatStream issues a streamed completion, emitting one StreamDelta per
// `data: ` line following the teacher's bufio.Scanner-over-SSE-lines
// pattern.
func (c *OpenAICompatClient) ChatStream(ctx context.Context, req ChatRequest) (<-chan StreamDelta, error) {
	httpReq, err := c.newRequest(ctx, c.toPayload(req, true))
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, apperr.Wrap(apperr.LLMStream, "chat stream request failed", err)
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, apperr.New(apperr.LLMStream, fmt.Sprintf("chat stream error %d: %s", resp.StatusCode, string(body)))
	}

	out := make(chan StreamDelta)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case <-ctx.Done():
				out <- StreamDelta{Err: ctx.Err(), Done: true}
				return
			default:
			}

			line := strings.TrimSpace(scanner.Text())
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			data := strings.TrimPrefix(line, "data: ")
			if data == "[DONE]" {
				out <- StreamDelta{Done: true}
				return
			}

			var chunk chatCompletionChunk
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				continue
			}
			if len(chunk.Choices) == 0 {
				continue
			}
			if d := chunk.Choices[0].Delta.Content; d != "" {
				out <- StreamDelta{Content: d}
			}
			if chunk.Choices[0].FinishReason != "" {
				out <- StreamDelta{Done: true}
				return
			}
		}
		if err := scanner.Err(); err != nil {
			out <- StreamDelta{Err: apperr.Wrap(apperr.LLMStream, "stream read failed", err), Done: true}
		}
	}()
	return out, nil
}
