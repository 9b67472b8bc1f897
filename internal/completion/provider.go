// Package completion talks to the hosted text-completion APIs and holds the prompt templates
// for chart, data-requirements and insight requests.
package completion

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"maintenance-dashboard/internal/config"
)

// Provider sends one system and one user message and returns the reply.
type Provider interface {
	Complete(ctx context.Context, system, user string) (Result, error)
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type Result struct {
	Text  string `json:"result"`
	Usage *Usage `json:"usage,omitempty"`
}

// NewProvider picks the provider named by cfg.Provider. A missing API key is reported by
// Complete, not here, so the server can still start without one.
func NewProvider(cfg config.LLM, logger *zap.Logger) (Provider, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI, "":
		return NewOpenAI(cfg, logger), nil
	case config.ProviderGemini:
		return NewGemini(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown completion provider %q", cfg.Provider)
	}
}
