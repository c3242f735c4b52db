// Package llm builds the chat models every scenario talks to.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"context_bench/internal/config"
)

const (
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderDeepSeek   = "deepseek"
	ProviderOllama     = "ollama"
	ProviderArk        = "ark"

	OpenRouterBaseURL = "https://openrouter.ai/api/v1"
)

// ModelConfig is the provider-neutral description of one chat model.
type ModelConfig struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Temperature *float32
	MaxTokens   int
	Timeout     time.Duration
	// Headers are added to every request, e.g. OpenRouter app attribution.
	Headers map[string]string
}

// FromConfig picks the credentials that match cfg.Provider.
func FromConfig(cfg config.LLMConfig) ModelConfig {
	mc := ModelConfig{
		Provider: strings.ToLower(cfg.Provider),
		Model:    cfg.Model,
		BaseURL:  cfg.BaseURL,
	}
	if cfg.Temperature != 0 {
		t := cfg.Temperature
		mc.Temperature = &t
	}
	mc.MaxTokens = cfg.MaxTokens

	switch mc.Provider {
	case ProviderOpenRouter:
		mc.APIKey = cfg.OpenRouterAPIKey
		mc.Headers = map[string]string{
			"HTTP-Referer": cfg.AppURL,
			"X-Title":      cfg.AppTitle,
		}
	case ProviderDeepSeek:
		mc.APIKey = cfg.DeepSeekAPIKey
	case ProviderArk:
		mc.APIKey = cfg.ArkAPIKey
	case ProviderOllama:
		if mc.BaseURL == "" {
			mc.BaseURL = cfg.OllamaHost
		}
	default:
		mc.APIKey = cfg.OpenAIAPIKey
	}
	return mc
}

// WithModel returns a copy of mc using another model name.
func (mc ModelConfig) WithModel(name string) ModelConfig {
	mc.Model = name
	return mc
}

// NewChatModel creates a tool-calling chat model for mc.Provider.
func NewChatModel(ctx context.Context, mc ModelConfig) (model.ToolCallingChatModel, error) {
	if mc.Model == "" {
		return nil, fmt.Errorf("model name is required")
	}

	switch mc.Provider {
	case ProviderOpenAI, ProviderOpenRouter, "":
		if mc.APIKey == "" {
			return nil, fmt.Errorf("%s API key is not set", providerName(mc.Provider))
		}
		baseURL := mc.BaseURL
		if baseURL == "" && mc.Provider == ProviderOpenRouter {
			baseURL = OpenRouterBaseURL
		}
		cfg := &openai.ChatModelConfig{
			APIKey:      mc.APIKey,
			BaseURL:     baseURL,
			Model:       mc.Model,
			Temperature: mc.Temperature,
			Timeout:     mc.Timeout,
			HTTPClient:  headerClient(mc.Headers, mc.Timeout),
		}
		if mc.MaxTokens > 0 {
			cfg.MaxTokens = &mc.MaxTokens
		}
		return wrap(openai.NewChatModel(ctx, cfg))

	case ProviderDeepSeek:
		if mc.APIKey == "" {
			return nil, fmt.Errorf("deepseek API key is not set")
		}
		return wrap(deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:  mc.APIKey,
			Model:   mc.Model,
			BaseURL: mc.BaseURL,
			Timeout: mc.Timeout,
		}))

	case ProviderOllama:
		return wrap(ollama.NewChatModel(ctx, &ollama.ChatModelConfig{
			BaseURL: mc.BaseURL,
			Model:   mc.Model,
			Timeout: mc.Timeout,
		}))

	case ProviderArk:
		if mc.APIKey == "" {
			return nil, fmt.Errorf("ark API key is not set")
		}
		cfg := &ark.ChatModelConfig{
			APIKey:      mc.APIKey,
			Model:       mc.Model,
			Temperature: mc.Temperature,
		}
		if mc.BaseURL != "" {
			cfg.BaseURL = mc.BaseURL
		}
		return wrap(ark.NewChatModel(ctx, cfg))
	}

	return nil, fmt.Errorf("unknown LLM provider %q", mc.Provider)
}

// wrap keeps a failed constructor from yielding a non-nil interface.
func wrap[M model.ToolCallingChatModel](m M, err error) (model.ToolCallingChatModel, error) {
	if err != nil {
		return nil, err
	}
	return m, nil
}

func providerName(p string) string {
	if p == "" {
		return ProviderOpenAI
	}
	return p
}

type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}
	return t.base.RoundTrip(req)
}

func headerClient(headers map[string]string, timeout time.Duration) *http.Client {
	if len(headers) == 0 {
		return nil
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: &headerTransport{base: http.DefaultTransport, headers: headers},
	}
}
