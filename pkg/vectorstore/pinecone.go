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

	"github.com/pinecone-io/go-pinecone/pinecone"
	"google.golang.org/protobuf/types/known/structpb"
)

// PineconeStore is an alternate Store backend for deployments that run
// their knowledge base on managed Pinecone indexes instead of
// Postgres+pgvector or Qdrant, grounded on the teacher's
// pkg/databases/pinecone.go (DescribeIndex → Index connection →
// QueryByVectorValues), narrowed to this package's read-only
// SearchChunk contract.
type PineconeStore struct {
	client    *pinecone.Client
	indexName string
	userField string
}

// NewPineconeStore creates the Pinecone client; the named index's host
// is resolved on each Search, not here.
func NewPineconeStore(apiKey, host, indexName string) (*PineconeStore, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("vectorstore: pinecone API key is required")
	}
	client, err := pinecone.NewClient(pinecone.NewClientParams{
		ApiKey: apiKey,
		Host:   host,
	})
	if err != nil {
		return nil, fmt.Errorf("vectorstore: create pinecone client: %w", err)
	}
	if indexName == "" {
		indexName = "cortex-index"
	}
	return &PineconeStore{client: client, indexName: indexName, userField: "owner_id"}, nil
}

func (s *PineconeStore) indexConn(ctx context.Context) (*pinecone.IndexConnection, error) {
	index, err := s.client.DescribeIndex(ctx, s.indexName)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: describe pinecone index %s: %w", s.indexName, err)
	}
	conn, err := s.client.Index(pinecone.NewIndexConnParams{Host: index.Host})
	if err != nil {
		return nil, fmt.Errorf("vectorstore: connect pinecone index %s: %w", s.indexName, err)
	}
	return conn, nil
}

// Search issues a QueryByVectorValues call filtered to the caller's
// owner_id metadata field, then maps matches onto SearchChunk using
// the same similarity threshold every other backend applies.
func (s *PineconeStore) Search(ctx context.Context, userID string, embedding []float32, topK int) ([]SearchChunk, error) {
	conn, err := s.indexConn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	filter, err := structpb.NewStruct(map[string]any{s.userField: userID})
	if err != nil {
		return nil, fmt.Errorf("vectorstore: build pinecone filter: %w", err)
	}

	resp, err := conn.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
		Vector:          embedding,
		TopK:            uint32(topK),
		MetadataFilter:  filter,
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, fmt.Errorf("vectorstore: pinecone query: %w", err)
	}

	out := make([]SearchChunk, 0, len(resp.Matches))
	for _, match := range resp.Matches {
		if match.Vector == nil {
			continue
		}
		similarity := float64(match.Score)
		if similarity < SimilarityThreshold {
			continue
		}
		meta := map[string]any{}
		if match.Vector.Metadata != nil {
			meta = match.Vector.Metadata.AsMap()
		}
		out = append(out, SearchChunk{
			ChunkID:      match.Vector.Id,
			DocumentID:   stringField(meta, "document_id"),
			KBID:         stringField(meta, "kb_id"),
			Content:      stringField(meta, "content"),
			DocumentName: stringField(meta, "document_name"),
			KBName:       stringField(meta, "kb_name"),
			Similarity:   similarity,
		})
	}
	return out, nil
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
