package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/finsightco/finsight/pkg/llm"
)

const (
	// DefaultSearchBaseURL is the DuckDuckGo Instant Answer endpoint.
	DefaultSearchBaseURL = "https://api.duckduckgo.com"

	// DefaultSearchHTMLBaseURL serves the HTML snippet fallback.
	DefaultSearchHTMLBaseURL = "https://html.duckduckgo.com"

	searchUserAgent = "finsight/1.0 (+https://github.com/finsightco/finsight)"
)

var (
	snippetPattern = regexp.MustCompile(`(?s)<a[^>]+class="result__snippet"[^>]*>(.*?)</a>`)
	htmlTagPattern = regexp.MustCompile(`<[^>]+>`)
)

// WebSearchArgs is the typed argument record for web_search.
type WebSearchArgs struct {
	Query string `json:"query"`
}

// WebSearchTool answers queries via DuckDuckGo's Instant Answer API with an
// HTML snippet fallback.
type WebSearchTool struct {
	baseURL     string
	htmlBaseURL string
	httpClient  *http.Client
}

// WebSearchConfig overrides the search endpoints, mainly for tests.
type WebSearchConfig struct {
	BaseURL     string
	HTMLBaseURL string
}

// NewWebSearchTool creates the web_search tool.
func NewWebSearchTool(cfg WebSearchConfig) *WebSearchTool {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultSearchBaseURL
	}
	htmlBaseURL := cfg.HTMLBaseURL
	if htmlBaseURL == "" {
		htmlBaseURL = DefaultSearchHTMLBaseURL
	}
	return &WebSearchTool{
		baseURL:     baseURL,
		htmlBaseURL: htmlBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (t *WebSearchTool) Name() string { return NameWebSearch }

func (t *WebSearchTool) Description() string {
	return "Search the web for current financial information."
}

func (t *WebSearchTool) Spec() llm.ToolSpec {
	return llm.ToolSpec{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Search terms",
				},
			},
			"required": []string{"query"},
		},
	}
}

func (t *WebSearchTool) Invoke(ctx context.Context, args json.RawMessage) string {
	var a WebSearchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Sprintf("Web search error: invalid arguments: %v", err)
	}
	if a.Query == "" {
		return "Web search error: query is required"
	}

	result, err := t.search(ctx, a.Query)
	if err != nil {
		return fmt.Sprintf("Web search error: %v", err)
	}
	return result
}

// instantAnswer is the subset of DuckDuckGo's response we render.
type instantAnswer struct {
	Abstract       string `json:"Abstract"`
	AbstractSource string `json:"AbstractSource"`
	AbstractURL    string `json:"AbstractURL"`
	Heading        string `json:"Heading"`
	Answer         string `json:"Answer"`
	RelatedTopics  []struct {
		Text     string `json:"Text"`
		FirstURL string `json:"FirstURL"`
	} `json:"RelatedTopics"`
}

func (t *WebSearchTool) search(ctx context.Context, query string) (string, error) {
	answer, err := t.instant(ctx, query)
	if err == nil && answer != "" {
		return answer, nil
	}
	return t.htmlSnippets(ctx, query)
}

func (t *WebSearchTool) instant(ctx context.Context, query string) (string, error) {
	u := fmt.Sprintf("%s/?q=%s&format=json&no_html=1&skip_disambig=1",
		t.baseURL, url.QueryEscape(query))

	body, err := t.get(ctx, u)
	if err != nil {
		return "", err
	}

	var result instantAnswer
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decoding instant answer: %w", err)
	}

	var parts []string
	if result.Heading != "" {
		parts = append(parts, result.Heading)
	}
	if result.Answer != "" {
		parts = append(parts, result.Answer)
	}
	if result.Abstract != "" {
		parts = append(parts, result.Abstract)
		if result.AbstractSource != "" {
			parts = append(parts, fmt.Sprintf("(Source: %s — %s)", result.AbstractSource, result.AbstractURL))
		}
	}
	for i, topic := range result.RelatedTopics {
		if i >= 3 || topic.Text == "" {
			break
		}
		parts = append(parts, "- "+topic.Text)
	}

	return strings.Join(parts, "\n"), nil
}

func (t *WebSearchTool) htmlSnippets(ctx context.Context, query string) (string, error) {
	u := fmt.Sprintf("%s/html/?q=%s", t.htmlBaseURL, url.QueryEscape(query))

	body, err := t.get(ctx, u)
	if err != nil {
		return "", err
	}

	matches := snippetPattern.FindAllStringSubmatch(string(body), 10)
	var snippets []string
	for _, m := range matches {
		s := htmlTagPattern.ReplaceAllString(m[1], "")
		s = html.UnescapeString(strings.TrimSpace(s))
		if s != "" {
			snippets = append(snippets, "- "+s)
		}
	}
	if len(snippets) == 0 {
		return "", fmt.Errorf("no results for %q", query)
	}

	return fmt.Sprintf("Search results for %q:\n%s", query, strings.Join(snippets, "\n")), nil
}

func (t *WebSearchTool) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", searchUserAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

var _ Tool = (*WebSearchTool)(nil)
