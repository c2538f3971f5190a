package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenAIClientSendsPromptAndReturnsContent(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"{\"ok\":true}"},"finish_reason":"stop"}],"usage":{"total_tokens":12}}`))
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(ProviderConfig{ID: "deepseek", Kind: "deepseek", Endpoint: server.URL + "/v1/", Credential: "secret", Model: "deepseek-chat", Temperature: 0.2})
	require.NoError(t, err)

	text, err := client.Complete(context.Background(), CompletionRequest{System: "sys", User: "hello", JSONObject: true})
	require.NoError(t, err)
	require.Equal(t, `{"ok":true}`, text)

	require.Equal(t, "deepseek-chat", captured["model"])
	require.EqualValues(t, defaultMaxOutputTokens, captured["max_tokens"])
	messages := captured["messages"].([]any)
	require.Len(t, messages, 2)
	require.Equal(t, "system", messages[0].(map[string]any)["role"])
	require.Equal(t, "json_object", captured["response_format"].(map[string]any)["type"])
}

func TestOpenAIClientSurfacesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit"}}`))
	}))
	t.Cleanup(server.Close)

	client, err := NewOpenAIClient(ProviderConfig{ID: "openai", Endpoint: server.URL + "/v1", Credential: "k", Model: "gpt-4o-mini"})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), CompletionRequest{User: "hello"})
	require.Error(t, err)
}

func TestNewClientValidatesConfig(t *testing.T) {
	_, err := NewClient(ProviderConfig{ID: "x", Model: "m"})
	require.ErrorContains(t, err, "credential is required")

	_, err = NewClient(ProviderConfig{ID: "x", Kind: "anthropic", Credential: "k", Model: "m"})
	require.ErrorContains(t, err, "unsupported kind")
}
