package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/carelog/carebot/internal/config"
	"github.com/carelog/carebot/internal/core"
	"github.com/carelog/carebot/pkg/log"
)

// NewProvider creates the appropriate AIProvider based on configuration.
func NewProvider(ctx context.Context, cfg *config.AppConfig, creds *config.ProviderConfig) (core.AIProvider, error) {
	log.FromCtx(ctx).Info().
		Str("provider", cfg.LLMProvider).
		Str("model", cfg.Model).
		Msg("starting llm provider")

	timeout := time.Duration(cfg.LLMTimeoutSeconds) * time.Second

	switch cfg.LLMProvider {
	case "openai":
		if creds.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is not set")
		}
		return NewOpenAI(creds.OpenAIAPIKey, cfg.Model, timeout), nil
	case "anthropic":
		if creds.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is not set")
		}
		return NewAnthropic(creds.AnthropicAPIKey, cfg.Model, timeout), nil
	case "openrouter":
		if creds.OpenRouterAPIKey == "" {
			return nil, fmt.Errorf("OPENROUTER_API_KEY is not set")
		}
		return NewOpenRouter(creds.OpenRouterAPIKey, cfg.Model, timeout), nil
	case "ollama":
		return NewOllama(creds.OllamaBaseURL, creds.OllamaAPIKey, cfg.Model, timeout), nil
	case "custom":
		if creds.CustomBaseURL == "" {
			return nil, fmt.Errorf("CUSTOM_OPENAI_BASE_URL is not set")
		}
		return NewCustomOpenAI(creds.CustomBaseURL, creds.CustomAPIKey, cfg.Model, timeout), nil
	case "mock":
		return NewMock(cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.LLMProvider)
	}
}
