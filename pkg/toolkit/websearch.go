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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/arborly/cortex/pkg/httpclient"
)

const webSearchTimeout = 15 * time.Second

// SearchResultEntry is one structured hit returned by web_search.
type SearchResultEntry struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// WebSearchArgs is the web_search tool's argument shape.
type WebSearchArgs struct {
	Query string `json:"query" jsonschema:"required,description=Search query"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"description=Maximum number of results,default=5"`
}

// NewWebSearch builds the web_search tool: a Serper JSON API call when
// an API key is configured, else an HTML-scraping fallback, grounded on
// the teacher's pkg/tool/webtool httpclient-based construction.
func NewWebSearch(serperAPIKey string) Tool {
	client := httpclient.New(httpclient.WithMaxRetries(2))
	return NewFunc[WebSearchArgs]("web_search",
		"Search the web and return a ranked list of results.",
		func(ctx context.Context, args WebSearchArgs) Result {
			topK := args.TopK
			if topK <= 0 {
				topK = 5
			}
			ctx, cancel := context.WithTimeout(ctx, webSearchTimeout)
			defer cancel()

			var entries []SearchResultEntry
			var err error
			if serperAPIKey != "" {
				entries, err = serperSearch(ctx, client, serperAPIKey, args.Query, topK)
			} else {
				entries, err = htmlSearchFallback(ctx, client, args.Query, topK)
			}
			if err != nil {
				return Ok(fmt.Sprintf("web search failed: %v", err), map[string]any{"results": []SearchResultEntry{}})
			}

			var b strings.Builder
			for i, e := range entries {
				fmt.Fprintf(&b, "%d. %s (%s)\n   %s\n", i+1, e.Title, e.URL, e.Snippet)
			}
			return Ok(b.String(), map[string]any{"results": entries})
		})
}

type serperRequest struct {
	Q string `json:"q"`
}

type serperResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
}

func serperSearch(ctx context.Context, client *httpclient.Client, apiKey, query string, topK int) ([]SearchResultEntry, error) {
	body, err := json.Marshal(serperRequest{Q: query})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://google.serper.dev/search", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("serper returned %d", resp.StatusCode)
	}

	var parsed serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]SearchResultEntry, 0, topK)
	for i, o := range parsed.Organic {
		if i >= topK {
			break
		}
		out = append(out, SearchResultEntry{Title: o.Title, URL: o.Link, Snippet: o.Snippet})
	}
	return out, nil
}

// htmlSearchFallback scrapes a search-results page with goquery when no
// Serper key is configured — the Go analogue of the original source's
// BeautifulSoup-based scraping fallback.
func htmlSearchFallback(ctx context.Context, client *httpclient.Client, query string, topK int) ([]SearchResultEntry, error) {
	endpoint := "https://html.duckduckgo.com/html/?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; cortex-agent/1.0)")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("search page returned %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	var out []SearchResultEntry
	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if len(out) >= topK {
			return false
		}
		link := s.Find(".result__a")
		title := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		snippet := strings.TrimSpace(s.Find(".result__snippet").Text())
		if title == "" {
			return true
		}
		out = append(out, SearchResultEntry{Title: title, URL: href, Snippet: snippet})
		return true
	})
	return out, nil
}
