package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultHackerNewsURL = "https://hacker-news.firebaseio.com"
	DefaultDuckDuckGoURL = "https://api.duckduckgo.com"
)

// WebClient talks to the public Hacker News and DuckDuckGo APIs.
type WebClient struct {
	HTTPClient    *http.Client
	HackerNewsURL string
	DuckDuckGoURL string
}

func NewWebClient() *WebClient {
	return &WebClient{
		HTTPClient:    &http.Client{Timeout: 15 * time.Second},
		HackerNewsURL: DefaultHackerNewsURL,
		DuckDuckGoURL: DefaultDuckDuckGoURL,
	}
}

type Story struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Score int    `json:"score"`
	By    string `json:"by"`
}

func (c *WebClient) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", rawURL, resp.StatusCode)
	}
	return sonic.Unmarshal(body, out)
}

// TopStories fetches the first n Hacker News top stories, in rank order.
func (c *WebClient) TopStories(ctx context.Context, n int) ([]Story, error) {
	var ids []int
	if err := c.getJSON(ctx, c.HackerNewsURL+"/v0/topstories.json", &ids); err != nil {
		return nil, err
	}
	if n > 0 && len(ids) > n {
		ids = ids[:n]
	}

	stories := make([]Story, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, id := range ids {
		g.Go(func() error {
			return c.getJSON(gctx, fmt.Sprintf("%s/v0/item/%d.json", c.HackerNewsURL, id), &stories[i])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stories, nil
}

type SearchResult struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type ddgResponse struct {
	Heading       string `json:"Heading"`
	AbstractText  string `json:"AbstractText"`
	AbstractURL   string `json:"AbstractURL"`
	RelatedTopics []struct {
		Text     string `json:"Text"`
		FirstURL string `json:"FirstURL"`
	} `json:"RelatedTopics"`
}

// Search queries the DuckDuckGo instant answer API.
func (c *WebClient) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("no_html", "1")

	var resp ddgResponse
	if err := c.getJSON(ctx, c.DuckDuckGoURL+"/?"+q.Encode(), &resp); err != nil {
		return nil, err
	}

	var results []SearchResult
	if resp.AbstractURL != "" {
		results = append(results, SearchResult{Title: firstNonEmpty(resp.Heading, resp.AbstractText), URL: resp.AbstractURL})
	}
	for _, t := range resp.RelatedTopics {
		if t.FirstURL == "" {
			continue
		}
		results = append(results, SearchResult{Title: t.Text, URL: t.FirstURL})
	}
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

type TopStoriesInput struct {
	N int `json:"n" jsonschema:"description=How many stories to return"`
}

type WebSearchInput struct {
	Query      string `json:"query" jsonschema:"description=Search query"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"description=Maximum number of results"`
}

func (c *WebClient) HackerNewsTool() tool.BaseTool {
	t, _ := utils.InferTool("get_top_hackernews_stories", "Get the top stories from Hacker News.",
		func(ctx context.Context, in *TopStoriesInput) (string, error) {
			n := in.N
			if n <= 0 {
				n = 10
			}
			stories, err := c.TopStories(ctx, n)
			if err != nil {
				return "", err
			}
			return sonic.MarshalString(stories)
		})
	return t
}

func (c *WebClient) WebSearchTool() tool.BaseTool {
	t, _ := utils.InferTool("duckduckgo_search", "Search the web with DuckDuckGo.",
		func(ctx context.Context, in *WebSearchInput) (string, error) {
			limit := in.MaxResults
			if limit <= 0 {
				limit = 5
			}
			results, err := c.Search(ctx, in.Query, limit)
			if err != nil {
				return "", err
			}
			if len(results) == 0 {
				return "No results.", nil
			}
			var sb strings.Builder
			for _, r := range results {
				fmt.Fprintf(&sb, "- %s (%s)\n", r.Title, r.URL)
			}
			return sb.String(), nil
		})
	return t
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
