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

// Package vectorstore implements the knowledge_search tool's read path:
// a parametric ANN query over a (chunk_id, document_id, kb_id, content,
// embedding, document_name, kb_name) view, selecting among several
// backends the way the teacher's pkg/databases picks a provider from
// config.
package vectorstore

import "context"

// SearchChunk is one ranked hit from a knowledge_search query.
type SearchChunk struct {
	ChunkID      string  `json:"chunk_id"`
	DocumentID   string  `json:"document_id"`
	KBID         string  `json:"kb_id"`
	Content      string  `json:"content"`
	DocumentName string  `json:"document_name"`
	KBName       string  `json:"kb_name"`
	Similarity   float64 `json:"similarity"`
}

// Store is the narrow ANN read path every backend implements: cosine
// distance, ascending order, similarity threshold 0.5, top-k limit.
type Store interface {
	Search(ctx context.Context, userID string, embedding []float32, topK int) ([]SearchChunk, error)
}

// SimilarityThreshold is the minimum cosine similarity (1 - distance) a
// hit must clear to be returned, per spec §6's vector search contract.
const SimilarityThreshold = 0.5
