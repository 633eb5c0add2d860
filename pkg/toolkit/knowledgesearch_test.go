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

package toolkit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborly/cortex/pkg/vectorstore"
)

type fakeEmbedder struct {
	vec []float32
	err error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.vec, f.err
}

type fakeStore struct {
	chunks []vectorstore.SearchChunk
	err    error
}

func (f *fakeStore) Search(ctx context.Context, userID string, embedding []float32, topK int) ([]vectorstore.SearchChunk, error) {
	return f.chunks, f.err
}

func TestKnowledgeSearchReturnsChunks(t *testing.T) {
	store := &fakeStore{chunks: []vectorstore.SearchChunk{
		{ChunkID: "c1", KBName: "physics", DocumentName: "notes.md", Content: "gravity is 9.8", Similarity: 0.81},
	}}
	tool := NewKnowledgeSearch("user-1", store, &fakeEmbedder{vec: []float32{0.1, 0.2}})

	res := tool.Execute(context.Background(), map[string]any{"query": "what is gravity"})

	require.True(t, res.Success)
	assert.Contains(t, res.Output, "gravity is 9.8")
}

func TestKnowledgeSearchNoResults(t *testing.T) {
	tool := NewKnowledgeSearch("user-1", &fakeStore{}, &fakeEmbedder{vec: []float32{0.1}})

	res := tool.Execute(context.Background(), map[string]any{"query": "anything"})

	require.True(t, res.Success)
	assert.Contains(t, res.Output, "No relevant")
}

func TestKnowledgeSearchEmbeddingFailure(t *testing.T) {
	tool := NewKnowledgeSearch("user-1", &fakeStore{}, &fakeEmbedder{err: assert.AnError})

	res := tool.Execute(context.Background(), map[string]any{"query": "anything"})

	assert.False(t, res.Success)
	assert.Equal(t, "tool_external", string(res.Error))
}
