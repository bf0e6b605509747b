package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/agenthands/rolodex/internal/config"
)

// NewClient builds the provider-specific client pair from config. The
// embedder may be nil when the provider has no embedding endpoint, in
// which case the similarity cache cannot run.
func NewClient(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (LLMClient, EmbedderClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := Options{
		Temperature: cfg.Temperature,
		TopP:        cfg.TopP,
		Seed:        cfg.Seed,
	}

	switch strings.ToLower(cfg.Provider) {
	case "openai":
		c := NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.EmbeddingModel, cfg.BaseURL, opts)
		return c, c, nil

	case "gemini":
		c, err := NewGeminiClient(ctx, cfg.APIKey, cfg.Model, cfg.EmbeddingModel, opts)
		if err != nil {
			return nil, nil, err
		}
		return c, c, nil

	case "claude":
		c := NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL, opts)
		// nil embedder: Anthropic has no embedding endpoint.
		return c, nil, nil

	case "ollama":
		// Ollama speaks the OpenAI API under /v1; routing through the
		// OpenAI client gives us chat, embeddings and the model-list
		// probe in one place.
		baseURL := cfg.BaseURL
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL = fmt.Sprintf("%s/v1", strings.TrimRight(baseURL, "/"))
		}
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = "ollama" // ignored by Ollama but required by the client
		}
		logger.Info("initializing ollama via OpenAI-compatible API", zap.String("base_url", baseURL))
		c := NewOpenAIClient(apiKey, cfg.Model, cfg.EmbeddingModel, baseURL, opts)
		return c, c, nil

	default:
		return nil, nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}
