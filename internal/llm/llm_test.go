package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"context_bench/internal/config"
)

func TestFromConfigOpenRouter(t *testing.T) {
	mc := FromConfig(config.LLMConfig{
		Provider:         "OpenRouter",
		Model:            "openai/gpt-4o-mini",
		OpenRouterAPIKey: "or-key",
		OpenAIAPIKey:     "oa-key",
		AppURL:           "http://localhost:3000",
		AppTitle:         "Demo",
	})
	assert.Equal(t, ProviderOpenRouter, mc.Provider)
	assert.Equal(t, "or-key", mc.APIKey)
	assert.Equal(t, "Demo", mc.Headers["X-Title"])
	assert.Nil(t, mc.Temperature)
}

func TestFromConfigOllamaHost(t *testing.T) {
	mc := FromConfig(config.LLMConfig{Provider: "ollama", Model: "llama3", OllamaHost: "http://127.0.0.1:11434"})
	assert.Equal(t, "http://127.0.0.1:11434", mc.BaseURL)
	assert.Empty(t, mc.APIKey)
}

func TestNewChatModelErrors(t *testing.T) {
	ctx := context.Background()

	_, err := NewChatModel(ctx, ModelConfig{Provider: ProviderOpenAI})
	assert.Error(t, err)

	_, err = NewChatModel(ctx, ModelConfig{Provider: ProviderOpenAI, Model: "gpt-4o-mini"})
	assert.ErrorContains(t, err, "API key")

	_, err = NewChatModel(ctx, ModelConfig{Provider: "mystery", Model: "m"})
	assert.ErrorContains(t, err, "unknown LLM provider")
}

func TestNewChatModelOpenRouter(t *testing.T) {
	cm, err := NewChatModel(context.Background(), ModelConfig{
		Provider: ProviderOpenRouter,
		Model:    "openrouter/auto",
		APIKey:   "test",
		Headers:  map[string]string{"X-Title": "Demo"},
	})
	require.NoError(t, err)
	assert.NotNil(t, cm)
}

func TestHeaderTransport(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	}))
	defer srv.Close()

	client := headerClient(map[string]string{"X-Title": "Demo", "HTTP-Referer": ""}, 0)
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "Demo", got.Get("X-Title"))
	assert.Empty(t, got.Get("HTTP-Referer"))
	assert.Nil(t, headerClient(nil, 0))
}

func TestListLocalModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"models":[{"name":"llama3.2:latest","model":"llama3.2:latest","size":2019393189,"details":{"family":"llama"}}]}`)
	}))
	defer srv.Close()

	models, err := ListLocalModels(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Equal(t, "llama3.2:latest", models[0].Name)
	assert.Equal(t, "llama", models[0].Family)
}
