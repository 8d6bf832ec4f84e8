package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
	"github.com/custodia-labs/lecturelens/internal/core/ports/driven"
)

func TestNewLLMService(t *testing.T) {
	_, err := NewLLMService(Config{})
	assert.EqualError(t, err, "anthropic: API key is required")

	svc, err := NewLLMService(Config{APIKey: "ak"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, DefaultBaseURL, svc.baseURL)
	assert.NoError(t, svc.Close())
}

func TestLLMService_Chat(t *testing.T) {
	var got messagesRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "ak", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Week 2 "},{"type":"tool_use"},{"type":"text","text":"covers it."}],"stop_reason":"end_turn"}`))
	}))
	defer server.Close()

	svc, err := NewLLMService(Config{APIKey: "ak", BaseURL: server.URL})
	require.NoError(t, err)

	answer, err := svc.Chat(context.Background(), []driven.ChatMessage{
		{Role: domain.RoleSystem, Content: "Use the course content."},
		{Role: domain.RoleUser, Content: "Where are loops covered?"},
		{Role: domain.RoleAssistant, Content: "In week 2."},
		{Role: domain.RoleUser, Content: "Which lecture?"},
	}, driven.ChatOptions{Temperature: 0.7})

	require.NoError(t, err)
	assert.Equal(t, "Week 2 covers it.", answer)
	assert.Equal(t, "Use the course content.", got.System)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, DefaultMaxTokens, got.MaxTokens)
	require.NotNil(t, got.Temperature)
	assert.InDelta(t, 0.7, *got.Temperature, 1e-9)
}

func TestLLMService_Chat_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "20")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"Number of requests has exceeded your rate limit"}}`))
	}))
	defer server.Close()

	svc, err := NewLLMService(Config{APIKey: "ak", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = svc.Chat(context.Background(), []driven.ChatMessage{{Role: "user", Content: "hi"}}, driven.ChatOptions{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Equal(t, 20*time.Second, domain.RetryAfter(err))
	assert.Contains(t, err.Error(), "exceeded your rate limit")
}

func TestLLMService_Chat_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"invalid key", http.StatusUnauthorized, `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`, "invalid x-api-key"},
		{"overloaded plain", http.StatusServiceUnavailable, `overloaded`, "status 503"},
		{"empty content", http.StatusOK, `{"content":[]}`, "no response content"},
		{"bad json", http.StatusOK, `{`, "decode response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			svc, err := NewLLMService(Config{APIKey: "ak", BaseURL: server.URL})
			require.NoError(t, err)

			_, err = svc.Chat(context.Background(), []driven.ChatMessage{{Role: "user", Content: "hi"}}, driven.ChatOptions{})

			require.Error(t, err)
			assert.NotErrorIs(t, err, domain.ErrRateLimited)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLLMService_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	good, err := NewLLMService(Config{APIKey: "good", BaseURL: server.URL})
	require.NoError(t, err)
	assert.NoError(t, good.Ping(context.Background()))

	bad, err := NewLLMService(Config{APIKey: "bad", BaseURL: server.URL})
	require.NoError(t, err)
	err = bad.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}
