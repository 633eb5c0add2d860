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
	"fmt"

	"github.com/arborly/cortex/pkg/apperr"
	"github.com/arborly/cortex/pkg/llm"
	"github.com/arborly/cortex/pkg/vectorstore"
)

// KnowledgeSearchArgs is the structured argument set for knowledge_search.
type KnowledgeSearchArgs struct {
	Query string `json:"query" jsonschema:"required,description=Natural-language question to search the knowledge base for"`
	TopK  int    `json:"top_k" jsonschema:"description=Maximum number of chunks to return,default=5"`
}

// NewKnowledgeSearch embeds the query and runs an ANN search scoped to
// userID against store, matching spec §6's vector-search read path.
func NewKnowledgeSearch(userID string, store vectorstore.Store, embedder llm.Embedder) Tool {
	return NewFunc("knowledge_search", "Search the user's knowledge base for relevant document chunks", func(ctx context.Context, args KnowledgeSearchArgs) Result {
		topK := args.TopK
		if topK <= 0 {
			topK = 5
		}

		embedding, err := embedder.Embed(ctx, args.Query)
		if err != nil {
			return Fail(apperr.ToolExternal, fmt.Sprintf("could not embed query: %v", err))
		}

		chunks, err := store.Search(ctx, userID, embedding, topK)
		if err != nil {
			return Fail(apperr.ToolExternal, fmt.Sprintf("knowledge search failed: %v", err))
		}

		if len(chunks) == 0 {
			return Ok("No relevant knowledge base chunks found.", map[string]any{"chunks": []vectorstore.SearchChunk{}})
		}

		output := fmt.Sprintf("Found %d relevant chunk(s):\n", len(chunks))
		for i, c := range chunks {
			output += fmt.Sprintf("%d. [%s / %s] (similarity %.2f): %s\n", i+1, c.KBName, c.DocumentName, c.Similarity, c.Content)
		}
		return Ok(output, map[string]any{"chunks": chunks})
	})
}
