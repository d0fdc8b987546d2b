package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/llm"

	"github.com/Yudaimo23/yt-summarizer/internal/engine"
)

// unconfigured stands in for a known backend whose credentials are missing.
type unconfigured struct {
	backend engine.Backend
	envVar  string
}

func (u unconfigured) Condense(context.Context, string, string) (string, error) {
	return "", fmt.Errorf("%s backend: %s is not set", u.backend, u.envVar)
}

// Build registers every known backend from configuration. Backends without
// credentials are registered but fail on first use.
func Build(ctx context.Context, cfg engine.Config) (*Summarizer, error) {
	tok, err := NewTokenizer()
	if err != nil {
		return nil, err
	}

	var gemini Condenser = unconfigured{engine.BackendGemini, "GOOGLE_API_KEY"}
	if cfg.GeminiAPIKey != "" {
		g, err := NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		gemini = g
	}

	var openai Condenser = unconfigured{engine.BackendOpenAI, "LLM_API_KEY"}
	if cfg.LLMAPIKey != "" {
		client := llm.NewClient(cfg.LLMAPIBase, cfg.LLMAPIKey, cfg.LLMModel,
			llm.WithFallbackKeys(cfg.LLMAPIKeyFallbacks),
			llm.WithMaxTokens(cfg.LLMMaxTokens),
			llm.WithTemperature(cfg.LLMTemperature),
			llm.WithHTTPClient(&http.Client{Timeout: 120 * time.Second}),
		)
		openai = NewOpenAI(client)
	}

	slog.Debug("summarize: backends ready",
		slog.Bool("gemini", cfg.GeminiAPIKey != ""), slog.Bool("openai", cfg.LLMAPIKey != ""),
		slog.Int("rpm", cfg.LLMRequestsPerMinute))

	return New(tok,
		WithBackend(engine.BackendGemini, gemini, cfg.ChunkTokenLimit(engine.BackendGemini)),
		WithBackend(engine.BackendOpenAI, openai, cfg.ChunkTokenLimit(engine.BackendOpenAI)),
		WithRequestsPerMinute(cfg.LLMRequestsPerMinute),
	), nil
}
