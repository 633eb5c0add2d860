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
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleAtomFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/1234.5678</id>
    <title>Attention Is All You Need</title>
    <summary>We propose a new simple network architecture.</summary>
    <author><name>A. Vaswani</name></author>
    <author><name>N. Shazeer</name></author>
  </entry>
</feed>`

func TestLiteratureSearchParsesFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/atom+xml")
		w.Write([]byte(sampleAtomFeed))
	}))
	defer srv.Close()

	tool := NewLiteratureSearch(srv.URL)
	res := tool.Execute(context.Background(), map[string]any{"query": "transformers"})

	require.True(t, res.Success)
	assert.Contains(t, res.Output, "Attention Is All You Need")
	assert.Contains(t, res.Output, "A. Vaswani, N. Shazeer")
}

func TestLiteratureSearchNoEntries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<feed xmlns="http://www.w3.org/2005/Atom"></feed>`))
	}))
	defer srv.Close()

	tool := NewLiteratureSearch(srv.URL)
	res := tool.Execute(context.Background(), map[string]any{"query": "nonexistent topic"})

	require.True(t, res.Success)
	assert.Contains(t, res.Output, "No papers found")
}

func TestLiteratureSearchUnreachable(t *testing.T) {
	tool := NewLiteratureSearch("http://127.0.0.1:0")
	res := tool.Execute(context.Background(), map[string]any{"query": "anything"})

	assert.True(t, res.Success)
	assert.Contains(t, res.Output, "unavailable")
}
