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
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/arborly/cortex/pkg/httpclient"
)

const literatureSearchTimeout = 15 * time.Second

const defaultLiteratureAPIBase = "http://export.arxiv.org/api/query"

// LiteratureSearchArgs is the structured argument set for literature_search.
type LiteratureSearchArgs struct {
	Query string `json:"query" jsonschema:"required,description=Topic or keywords to search academic papers for"`
	TopK  int    `json:"top_k" jsonschema:"description=Maximum number of papers to return,default=5"`
}

type arxivFeed struct {
	XMLName xml.Name     `xml:"feed"`
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	Title   string `xml:"title"`
	Summary string `xml:"summary"`
	Link    string `xml:"id"`
	Authors []struct {
		Name string `xml:"name"`
	} `xml:"author"`
}

// NewLiteratureSearch queries an arXiv-style Atom API. It gives
// web_search's sibling a distinct network surface (a configurable
// literature API) without duplicating its HTML-scraping fallback.
func NewLiteratureSearch(apiBase string) Tool {
	if apiBase == "" {
		apiBase = defaultLiteratureAPIBase
	}
	client := httpclient.New(httpclient.WithMaxRetries(2))

	return NewFunc("literature_search", "Search academic papers relevant to a research topic", func(ctx context.Context, args LiteratureSearchArgs) Result {
		topK := args.TopK
		if topK <= 0 {
			topK = 5
		}

		reqCtx, cancel := context.WithTimeout(ctx, literatureSearchTimeout)
		defer cancel()

		qs := url.Values{}
		qs.Set("search_query", "all:"+args.Query)
		qs.Set("start", "0")
		qs.Set("max_results", fmt.Sprintf("%d", topK))

		httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodGet, apiBase+"?"+qs.Encode(), nil)
		if err != nil {
			return Ok(fmt.Sprintf("literature search could not be prepared: %v", err), map[string]any{"papers": []any{}})
		}

		resp, err := client.Do(httpReq)
		if err != nil {
			return Ok(fmt.Sprintf("literature search unavailable: %v", err), map[string]any{"papers": []any{}})
		}
		defer resp.Body.Close()

		var feed arxivFeed
		if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
			return Ok(fmt.Sprintf("literature search returned an unparsable response: %v", err), map[string]any{"papers": []any{}})
		}

		if len(feed.Entries) == 0 {
			return Ok("No papers found for that query.", map[string]any{"papers": []any{}})
		}

		type paper struct {
			Title   string `json:"title"`
			Authors string `json:"authors"`
			Link    string `json:"link"`
			Summary string `json:"summary"`
		}
		papers := make([]paper, 0, len(feed.Entries))
		output := fmt.Sprintf("Found %d paper(s):\n", len(feed.Entries))
		for i, e := range feed.Entries {
			names := make([]string, 0, len(e.Authors))
			for _, a := range e.Authors {
				names = append(names, a.Name)
			}
			authors := strings.Join(names, ", ")
			papers = append(papers, paper{
				Title:   strings.TrimSpace(e.Title),
				Authors: authors,
				Link:    strings.TrimSpace(e.Link),
				Summary: strings.TrimSpace(e.Summary),
			})
			output += fmt.Sprintf("%d. %s (%s) — %s\n", i+1, strings.TrimSpace(e.Title), authors, strings.TrimSpace(e.Link))
		}
		return Ok(output, map[string]any{"papers": papers})
	})
}
