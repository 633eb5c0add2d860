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
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/arborly/cortex/pkg/httpclient"
)

const (
	webScrapeTimeout  = 30 * time.Second
	webScrapeMaxChars = 8000
)

// webScrapeBlockedHosts is the closed set of hostname substrings the
// spec requires web_scrape to refuse, materialized as a compile-time set
// per the design notes.
var webScrapeBlockedHosts = []string{
	"localhost", "127.0.0.1", "0.0.0.0", "internal", "intranet", "corp", "private",
}

var webScrapeBlockedPrefixes = []string{"10.", "192.168.", "172."}

// WebScrapeArgs is the web_scrape tool's argument shape.
type WebScrapeArgs struct {
	URL      string `json:"url" jsonschema:"required,description=URL to fetch"`
	Selector string `json:"selector,omitempty" jsonschema:"description=Optional CSS selector to scope extraction"`
	Extract  string `json:"extract,omitempty" jsonschema:"description=What to extract,default=text,enum=text,enum=html,enum=links,enum=tables,enum=all"`
}

// NewWebScrape builds the privileged web_scrape tool.
func NewWebScrape() Tool {
	client := httpclient.New(httpclient.WithMaxRetries(1))
	return NewFunc[WebScrapeArgs]("web_scrape",
		"Fetch a URL and extract text, HTML, links, or tables. Refuses private/internal hosts.",
		func(ctx context.Context, args WebScrapeArgs) Result {
			if err := validateScrapeURL(args.URL); err != nil {
				return Fail("blocked_domain", err.Error())
			}

			ctx, cancel := context.WithTimeout(ctx, webScrapeTimeout)
			defer cancel()

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, args.URL, nil)
			if err != nil {
				return Fail("tool_external", fmt.Sprintf("invalid request: %v", err))
			}
			req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; cortex-agent/1.0)")

			resp, err := client.Do(req)
			if err != nil {
				return Fail(httpclient.Kind(err), fmt.Sprintf("fetch failed: %v", err))
			}
			defer resp.Body.Close()
			if resp.StatusCode >= 400 {
				return Fail("tool_external", fmt.Sprintf("fetch returned status %d", resp.StatusCode))
			}

			doc, err := goquery.NewDocumentFromReader(resp.Body)
			if err != nil {
				return Fail("tool_external", fmt.Sprintf("parse failed: %v", err))
			}
			doc.Find("script, style").Remove()

			scope := doc.Selection
			if args.Selector != "" {
				scope = doc.Find(args.Selector)
			}

			extract := args.Extract
			if extract == "" {
				extract = "text"
			}
			out, data := extractScrape(scope, extract)
			return Ok(truncate(out, webScrapeMaxChars), data)
		})
}

// validateScrapeURL enforces the spec's scheme and domain-blocklist
// checks before any network request is issued.
func validateScrapeURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme %q is not allowed", u.Scheme)
	}
	host := strings.ToLower(u.Hostname())
	for _, blocked := range webScrapeBlockedHosts {
		if strings.Contains(host, blocked) {
			return fmt.Errorf("host %q is blocked", host)
		}
	}
	for _, prefix := range webScrapeBlockedPrefixes {
		if strings.HasPrefix(host, prefix) {
			return fmt.Errorf("host %q is in a blocked private range", host)
		}
	}
	return nil
}

func extractScrape(sel *goquery.Selection, mode string) (string, map[string]any) {
	switch mode {
	case "html":
		h, _ := sel.Html()
		return h, nil
	case "links":
		var links []string
		sel.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
			if href, ok := s.Attr("href"); ok {
				links = append(links, href)
			}
		})
		return strings.Join(links, "\n"), map[string]any{"links": links}
	case "tables":
		var rows []string
		sel.Find("table tr").Each(func(_ int, tr *goquery.Selection) {
			var cells []string
			tr.Find("td, th").Each(func(_ int, td *goquery.Selection) {
				cells = append(cells, strings.TrimSpace(td.Text()))
			})
			rows = append(rows, strings.Join(cells, " | "))
		})
		return strings.Join(rows, "\n"), nil
	case "all":
		return strings.TrimSpace(sel.Text()), map[string]any{"html_length": len(sel.Text())}
	default:
		return strings.TrimSpace(sel.Text()), nil
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...[truncated]"
}
