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

	"github.com/philippgille/chromem-go"
)

// ChromemStore is an embedded, file-persisted alternate Store backend —
// useful for local development and tests without a running database.
type ChromemStore struct {
	collection *chromem.Collection
}

// NewChromemStore opens (or creates) a persistent chromem-go database at
// path and the named collection within it.
func NewChromemStore(path, collectionName string) (*ChromemStore, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("open chromem db: %w", err)
	}
	col, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("open chromem collection: %w", err)
	}
	return &ChromemStore{collection: col}, nil
}

// Search queries the collection by embedding and filters to userID's
// documents and the similarity threshold.
func (s *ChromemStore) Search(ctx context.Context, userID string, embedding []float32, topK int) ([]SearchChunk, error) {
	results, err := s.collection.QueryEmbedding(ctx, embedding, topK, map[string]string{"owner_id": userID}, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	out := make([]SearchChunk, 0, len(results))
	for _, r := range results {
		if float64(r.Similarity) < SimilarityThreshold {
			continue
		}
		out = append(out, SearchChunk{
			ChunkID:      r.ID,
			DocumentID:   r.Metadata["document_id"],
			KBID:         r.Metadata["kb_id"],
			Content:      r.Content,
			DocumentName: r.Metadata["document_name"],
			KBName:       r.Metadata["kb_name"],
			Similarity:   float64(r.Similarity),
		})
	}
	return out, nil
}
