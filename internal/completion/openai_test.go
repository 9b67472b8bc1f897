package completion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maintenance-dashboard/internal/config"
)

func testLLMConfig(baseURL string) config.LLM {
	return config.LLM{
		Provider:    config.ProviderOpenAI,
		APIKey:      "sk-test",
		Model:       "gpt-4o",
		BaseURL:     baseURL,
		Temperature: 0.7,
		MaxTokens:   2000,
		Timeout:     5 * time.Second,
	}
}

func TestOpenAICompleteSendsChatRequest(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o", body.Model)
		assert.InDelta(t, 0.7, body.Temperature, 1e-9)
		assert.Equal(t, 2000, body.MaxTokens)
		if assert.Len(t, body.Messages, 2) {
			assert.Equal(t, "system", body.Messages[0].Role)
			assert.Equal(t, "sys", body.Messages[0].Content)
			assert.Equal(t, "user", body.Messages[1].Role)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hello"}}],
			"usage":{"prompt_tokens":12,"completion_tokens":3,"total_tokens":15}}`))
	}))
	defer srv.Close()

	result, err := NewOpenAI(testLLMConfig(srv.URL+"/"), nil).Complete(context.Background(), "sys", "usr")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "hello", result.Text)
	require.NotNil(t, result.Usage)
	assert.Equal(t, 15, result.Usage.TotalTokens)
}

func TestOpenAICompleteMapsStatuses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"bad key"}}`, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrUnauthorized)
		}},
		{"rate limited", http.StatusTooManyRequests, `{}`, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrRateLimited)
		}},
		{"server error", http.StatusBadGateway, `upstream down`, func(t *testing.T, err error) {
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
			assert.Equal(t, "upstream down", apiErr.Body)
		}},
		{"no choices", http.StatusOK, `{"choices":[]}`, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrEmptyResponse)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewOpenAI(testLLMConfig(srv.URL), nil).Complete(context.Background(), "s", "u")
			require.Error(t, err)
			tt.check(t, err)
			assert.Equal(t, 1, calls, "requests are not retried")
		})
	}
}

func TestOpenAIMissingKeyMakesNoRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	}))
	defer srv.Close()

	cfg := testLLMConfig(srv.URL)
	cfg.APIKey = ""
	_, err := NewOpenAI(cfg, nil).Complete(context.Background(), "s", "u")
	require.ErrorIs(t, err, ErrMissingCredential)
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(config.LLM{Provider: config.ProviderOpenAI}, nil)
	require.NoError(t, err)
	assert.IsType(t, &OpenAI{}, p)

	p, err = NewProvider(config.LLM{Provider: config.ProviderGemini}, nil)
	require.NoError(t, err)
	assert.IsType(t, &Gemini{}, p)

	_, err = NewProvider(config.LLM{Provider: "watson"}, nil)
	require.Error(t, err)
}
