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
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
)

// PostgresStore queries a pgvector-backed view via the `<=>` cosine
// distance operator, matching spec §6's "Vector search (read path)"
// contract exactly. The query embedding is passed as a Postgres array
// literal cast to vector, so no pgvector-aware driver type is required —
// grounded on the teacher's `database/sql` + `github.com/lib/pq` usage
// for its other relational stores.
type PostgresStore struct {
	db       *sql.DB
	viewName string
}

// NewPostgresStore opens a connection pool against dsn.
func NewPostgresStore(dsn, viewName string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if viewName == "" {
		viewName = "knowledge_chunks"
	}
	return &PostgresStore{db: db, viewName: viewName}, nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error { return s.db.Close() }

// Search runs the ANN query: cosine distance ascending, threshold 0.5
// similarity, limited to topK, scoped to userID's accessible knowledge
// bases.
func (s *PostgresStore) Search(ctx context.Context, userID string, embedding []float32, topK int) ([]SearchChunk, error) {
	vectorLiteral := floatsToPgArray(embedding)

	query := fmt.Sprintf(`
		SELECT chunk_id, document_id, kb_id, content, document_name, kb_name,
		       1 - (embedding <=> $1::vector) AS similarity
		FROM %s
		WHERE owner_id = $2
		  AND 1 - (embedding <=> $1::vector) >= $3
		ORDER BY embedding <=> $1::vector ASC
		LIMIT $4`, s.viewName)

	rows, err := s.db.QueryContext(ctx, query, vectorLiteral, userID, SimilarityThreshold, topK)
	if err != nil {
		return nil, fmt.Errorf("knowledge search query: %w", err)
	}
	defer rows.Close()

	var out []SearchChunk
	for rows.Next() {
		var c SearchChunk
		if err := rows.Scan(&c.ChunkID, &c.DocumentID, &c.KBID, &c.Content, &c.DocumentName, &c.KBName, &c.Similarity); err != nil {
			return nil, fmt.Errorf("scan search row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// floatsToPgArray renders an embedding as a Postgres array literal
// (`{0.1,0.2,...}`), avoiding a dependency on a pgvector-aware driver
// type for a single parametric query.
func floatsToPgArray(v []float32) string {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = strconv.FormatFloat(float64(f), 'f', -1, 32)
	}
	return "{" + strings.Join(parts, ",") + "}"
}
