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

// AnthropicClient adapts the Messages API to the vendor-agnostic Client
// contract, grounded on the teacher's hand-rolled HTTP streaming loop
// (bufio.Scanner over "data: " lines) rather than the vendor SDK — see
// DESIGN.md for why the SDK dependency was dropped.
type AnthropicClient struct {
	httpClient *httpclient.Client
	baseURL    string
	apiKey     string
	model      string
}

const anthropicVersion = "2023-06-01"

// NewAnthropic builds a Client against the Anthropic Messages API.
func NewAnthropic(baseURL, apiKey, model string) *AnthropicClient {
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	return &AnthropicClient{
		httpClient: httpclient.New(
			httpclient.WithMaxRetries(3),
			httpclient.WithHeaderParser(httpclient.ParseAnthropicHeaders),
		),
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
	}
}

func (c *AnthropicClient) Provider() string { return "anthropic" }
func (c *AnthropicClient) Model() string     { return c.model }

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string              `json:"model"`
	System      string              `json:"system,omitempty"`
	Messages    []anthropicMessage  `json:"messages"`
	MaxTokens   int                 `json:"max_tokens"`
	Temperature float64             `json:"temperature,omitempty"`
	Stream      bool                `json:"stream"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Model      string `json:"model"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type anthropicStreamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
}

func (c *AnthropicClient) toPayload(req ChatRequest, stream bool) anthropicRequest {
	msgs := make([]anthropicMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, anthropicMessage{Role: m.Role, Content: m.Content})
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}
	return anthropicRequest{
		Model:       c.model,
		System:      req.System,
		Messages:    msgs,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
		Stream:      stream,
	}
}

func (c *AnthropicClient) newRequest(ctx context.Context, payload anthropicRequest) (*http.Request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperr.Wrap(apperr.LLMStream, "encode anthropic request", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, apperr.Wrap(apperr.LLMStream, "build anthropic request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)
	return httpReq, nil
}

// Chat issues a non-streamed Messages API call.
func (c *AnthropicClient) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	httpReq, err := c.newRequest(ctx, c.toPayload(req, false))
	if err != nil {
		return ChatResponse{}, err
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return ChatResponse{}, apperr.Wrap(apperr.LLMStream, "anthropic request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return ChatResponse{}, apperr.New(apperr.LLMStream, fmt.Sprintf("anthropic error %d: %s", resp.StatusCode, string(body)))
	}

	var parsed anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return ChatResponse{}, apperr.Wrap(apperr.LLMStream, "decode anthropic response", err)
	}
	var text strings.Builder
	for _, block := range parsed.Content {
		text.WriteString(block.Text)
	}
	return ChatResponse{
		Content:      text.String(),
		Model:        parsed.Model,
		FinishReason: parsed.StopReason,
		Usage: Usage{
			PromptTokens:     parsed.Usage.InputTokens,
			CompletionTokens: parsed.Usage.OutputTokens,
		},
	}, nil
}

// ChatStream issues a streamed Messages API call, translating
// `content_block_delta` events into StreamDelta values.
func (c *AnthropicClient) ChatStream(ctx context.Context, req ChatRequest) (<-chan StreamDelta, error) {
	httpReq, err := c.newRequest(ctx, c.toPayload(req, true))
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, apperr.Wrap(apperr.LLMStream, "anthropic stream request failed", err)
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, apperr.New(apperr.LLMStream, fmt.Sprintf("anthropic stream error %d: %s", resp.StatusCode, string(body)))
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

			var event anthropicStreamEvent
			if err := json.Unmarshal([]byte(data), &event); err != nil {
				continue
			}
			switch event.Type {
			case "content_block_delta":
				if event.Delta.Text != "" {
					out <- StreamDelta{Content: event.Delta.Text}
				}
			case "message_stop":
				out <- StreamDelta{Done: true}
				return
			}
		}
		if err := scanner.Err(); err != nil {
			out <- StreamDelta{Err: apperr.Wrap(apperr.LLMStream, "anthropic stream read failed", err), Done: true}
		}
	}()
	return out, nil
}
