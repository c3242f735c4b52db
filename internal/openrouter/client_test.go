package openrouter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New("sk-test", "http://localhost:3000", "Context Bench")
	require.NoError(t, err)
	c.BaseURL = srv.URL
	return c
}

func TestNewRequiresKey(t *testing.T) {
	_, err := New("", "", "")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestListModelsSendsHeaders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "http://localhost:3000", r.Header.Get("HTTP-Referer"))
		assert.Equal(t, "Context Bench", r.Header.Get("X-Title"))
		_, _ = w.Write([]byte(`{"data":[{"id":"openai/gpt-4o","context_length":128000},{"id":"openrouter/auto"}]}`))
	})

	models, err := c.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "openai/gpt-4o", models[0].ID)
	assert.Equal(t, 128000, models[0].ContextLength)
}

func TestListProvidersAndKeys(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/providers":
			_, _ = w.Write([]byte(`{"data":[{"name":"OpenAI","slug":"openai"},{"name":"Groq"}]}`))
		case "/keys":
			_, _ = w.Write([]byte(`{"data":[{"name":"ci","hash":"abcdef0123456789","disabled":false}]}`))
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	providers, err := c.ListProviders(ctx)
	require.NoError(t, err)
	assert.Equal(t, "openai", providers[0].ID())
	assert.Equal(t, "Groq", providers[1].ID())

	keys, err := c.ListKeys(ctx)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, "abcdef012345", keys[0].ShortHash())
	assert.True(t, keys[0].Enabled())

	_, err = c.UserActivity(ctx)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Status)
}

func TestRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"date":"2025-10-01","endpoint_id":"e1","requests":4}]}`))
	})

	rows, err := c.UserActivity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(3), hits.Load())
	require.Len(t, rows, 1)
	assert.Equal(t, 4, rows[0].Requests)
}

func TestClientErrorIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	_, err := c.ListKeys(context.Background())
	assert.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}
