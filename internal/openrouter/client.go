// Package openrouter is a small client for the OpenRouter REST endpoints
// that the chat-completions API does not cover.
package openrouter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cenkalti/backoff/v4"

	"context_bench/internal/llm"
)

var ErrMissingAPIKey = errors.New("OPENROUTER_API_KEY is not set")

type Client struct {
	BaseURL    string
	APIKey     string
	AppURL     string
	AppTitle   string
	HTTPClient *http.Client
	// MaxRetries bounds retries of 429 and 5xx responses.
	MaxRetries uint64
}

func New(apiKey, appURL, appTitle string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	return &Client{
		BaseURL:    llm.OpenRouterBaseURL,
		APIKey:     apiKey,
		AppURL:     appURL,
		AppTitle:   appTitle,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		MaxRetries: 3,
	}, nil
}

// StatusError is a non-2xx answer.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("openrouter: HTTP %d: %s", e.Status, e.Body)
}

func (e *StatusError) retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

type Model struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ContextLength int    `json:"context_length"`
	Pricing       struct {
		Prompt     string `json:"prompt"`
		Completion string `json:"completion"`
	} `json:"pricing"`
}

type Provider struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ID is the provider slug, falling back to the display name.
func (p Provider) ID() string {
	if p.Slug != "" {
		return p.Slug
	}
	return p.Name
}

type Activity struct {
	Date             string  `json:"date"`
	Model            string  `json:"model"`
	Endpoint         string  `json:"endpoint_id"`
	Requests         int     `json:"requests"`
	Usage            float64 `json:"usage"`
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
}

type Key struct {
	Name     string  `json:"name"`
	Label    string  `json:"label"`
	Hash     string  `json:"hash"`
	Disabled bool    `json:"disabled"`
	Limit    float64 `json:"limit"`
	Usage    float64 `json:"usage"`
}

// Enabled reports whether the key may be used.
func (k Key) Enabled() bool { return !k.Disabled }

// ShortHash returns the first 12 characters of the key hash.
func (k Key) ShortHash() string {
	if len(k.Hash) <= 12 {
		return k.Hash
	}
	return k.Hash[:12]
}

func (c *Client) ListModels(ctx context.Context) ([]Model, error) {
	var out struct {
		Data []Model `json:"data"`
	}
	if err := c.get(ctx, "/models", &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) ListProviders(ctx context.Context) ([]Provider, error) {
	var out struct {
		Data []Provider `json:"data"`
	}
	if err := c.get(ctx, "/providers", &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// UserActivity returns usage grouped by endpoint for the last 30 UTC days.
func (c *Client) UserActivity(ctx context.Context) ([]Activity, error) {
	var out struct {
		Data []Activity `json:"data"`
	}
	if err := c.get(ctx, "/activity", &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// ListKeys needs a provisioning key.
func (c *Client) ListKeys(ctx context.Context) ([]Key, error) {
	var out struct {
		Data []Key `json:"data"`
	}
	if err := c.get(ctx, "/keys", &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) get(ctx context.Context, path string, v any) error {
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(c.BaseURL, "/")+path, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
		req.Header.Set("Accept", "application/json")
		if c.AppURL != "" {
			req.Header.Set("HTTP-Referer", c.AppURL)
		}
		if c.AppTitle != "" {
			req.Header.Set("X-Title", c.AppTitle)
		}

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode/100 != 2 {
			se := &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
			if se.retryable() {
				return se
			}
			return backoff.Permanent(se)
		}
		if err := sonic.Unmarshal(body, v); err != nil {
			return backoff.Permanent(fmt.Errorf("decode %s: %w", path, err))
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, c.MaxRetries), ctx))
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	return nil
}
