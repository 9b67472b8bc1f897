package completion

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"maintenance-dashboard/internal/config"
)

func TestGeminiMissingKey(t *testing.T) {
	_, err := NewGemini(config.LLM{Provider: config.ProviderGemini}, nil).Complete(context.Background(), "s", "u")
	require.ErrorIs(t, err, ErrMissingCredential)
}

func TestGeminiDefaultsModel(t *testing.T) {
	g := NewGemini(config.LLM{Provider: config.ProviderGemini}, nil)
	assert.Equal(t, config.DefaultGeminiModel, g.cfg.Model)
}

func TestMapGenAIError(t *testing.T) {
	err := mapGenAIError(fmt.Errorf("wrapped: %w", genai.APIError{Code: 401, Message: "API key not valid"}))
	assert.ErrorIs(t, err, ErrUnauthorized)

	err = mapGenAIError(genai.APIError{Code: 429, Message: "quota"})
	assert.ErrorIs(t, err, ErrRateLimited)

	err = mapGenAIError(genai.APIError{Code: 500, Message: "internal"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Gemini", apiErr.Provider)
	assert.Equal(t, 500, apiErr.StatusCode)

	err = mapGenAIError(errors.New("dial tcp: refused"))
	assert.Contains(t, err.Error(), "request failed")
}
