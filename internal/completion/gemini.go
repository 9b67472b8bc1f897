package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"maintenance-dashboard/internal/config"
	"maintenance-dashboard/internal/logging"
)

// Gemini calls the Gemini API through the genai SDK. The client is created on first use.
type Gemini struct {
	cfg    config.LLM
	logger *zap.Logger

	mu     sync.Mutex
	client *genai.Client
}

func NewGemini(cfg config.LLM, logger *zap.Logger) *Gemini {
	if cfg.Model == "" {
		cfg.Model = config.DefaultGeminiModel
	}
	return &Gemini{cfg: cfg, logger: logging.OrNop(logger).Named("gemini")}
}

func (g *Gemini) genaiClient(ctx context.Context) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client != nil {
		return g.client, nil
	}
	cc := &genai.ClientConfig{
		APIKey:  g.cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	// The OpenAI default base URL is meaningless here.
	if g.cfg.BaseURL != "" && !strings.Contains(g.cfg.BaseURL, "api.openai.com") {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: g.cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	g.client = client
	return client, nil
}

func (g *Gemini) Complete(ctx context.Context, system, user string) (Result, error) {
	if strings.TrimSpace(g.cfg.APIKey) == "" {
		return Result{}, ErrMissingCredential
	}
	if g.cfg.Timeout > 0 {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
			defer cancel()
		}
	}
	client, err := g.genaiClient(ctx)
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	gc := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr(float32(g.cfg.Temperature)),
	}
	if g.cfg.MaxTokens > 0 {
		gc.MaxOutputTokens = int32(g.cfg.MaxTokens)
	}
	resp, err := client.Models.GenerateContent(ctx, g.cfg.Model, genai.Text(user), gc)
	if err != nil {
		return Result{}, mapGenAIError(err)
	}

	text := resp.Text()
	if text == "" {
		return Result{}, ErrEmptyResponse
	}
	result := Result{Text: text}
	if u := resp.UsageMetadata; u != nil {
		result.Usage = &Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	g.logger.Debug("completion finished",
		zap.String("model", g.cfg.Model),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("response_len", len(text)),
	)
	return result, nil
}

func mapGenAIError(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("request failed: %w", err)
	}
	switch apiErr.Code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w (status %d)", ErrUnauthorized, apiErr.Code)
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return &APIError{Provider: "Gemini", StatusCode: apiErr.Code, Body: apiErr.Message}
	}
}
