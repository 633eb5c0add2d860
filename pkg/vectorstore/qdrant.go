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

package vectorstore

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
)

// QdrantStore is an alternate Store backend for deployments that run a
// Qdrant cluster instead of Postgres+pgvector.
type QdrantStore struct {
	client     *qdrant.Client
	collection string
}

// NewQdrantStore dials a Qdrant gRPC endpoint.
func NewQdrantStore(addr, apiKey, collection string) (*QdrantStore, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   addr,
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("dial qdrant: %w", err)
	}
	return &QdrantStore{client: client, collection: collection}, nil
}

// Search runs a Qdrant Query Points request and maps hits back onto
// SearchChunk, filtering client-side to the similarity threshold since
// Qdrant's score_threshold is expressed in the collection's configured
// distance metric.
func (s *QdrantStore) Search(ctx context.Context, userID string, embedding []float32, topK int) ([]SearchChunk, error) {
	limit := uint64(topK)
	result, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(embedding...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("owner_id", userID),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant query: %w", err)
	}

	out := make([]SearchChunk, 0, len(result))
	for _, hit := range result {
		similarity := float64(hit.GetScore())
		if similarity < SimilarityThreshold {
			continue
		}
		payload := hit.GetPayload()
		out = append(out, SearchChunk{
			ChunkID:      payload["chunk_id"].GetStringValue(),
			DocumentID:   payload["document_id"].GetStringValue(),
			KBID:         payload["kb_id"].GetStringValue(),
			Content:      payload["content"].GetStringValue(),
			DocumentName: payload["document_name"].GetStringValue(),
			KBName:       payload["kb_name"].GetStringValue(),
			Similarity:   similarity,
		})
	}
	return out, nil
}
