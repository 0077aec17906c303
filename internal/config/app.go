package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"

	"github.com/carelog/carebot/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"CAREBOT_RUNTIME_PATH" envDefault:".carebot"`

	// Provider selection
	LLMProvider       string `env:"LLM_PROVIDER" envDefault:"openrouter"`
	Model             string `env:"LLM_MODEL" envDefault:"openai/gpt-4o-mini"`
	LLMTimeoutSeconds int    `env:"LLM_TIMEOUT_SECONDS" envDefault:"120"`

	// Context assembly
	ContextTokenBudget int     `env:"CONTEXT_TOKEN_BUDGET" envDefault:"3000"`
	MinPinImportance   float64 `env:"CONTEXT_MIN_PIN_IMPORTANCE" envDefault:"0.5"`
	RecentMessageLimit int     `env:"CONTEXT_RECENT_MESSAGES" envDefault:"50"`
	PinLimit           int     `env:"CONTEXT_PIN_LIMIT" envDefault:"20"`
	SummaryLimit       int     `env:"CONTEXT_SUMMARY_LIMIT" envDefault:"10"`

	// Summarization
	SummaryThreshold int `env:"SUMMARY_THRESHOLD" envDefault:"20"`

	// Facts: when true, the short-circuit answer is restated
	// conversationally by the model and validated against ground
	// truth before delivery.
	ConversationalFacts bool `env:"CONVERSATIONAL_FACTS" envDefault:"false"`

	// Transport flags
	EnableTelegram bool `env:"ENABLE_TELEGRAM" envDefault:"false"`
	EnableCLI      bool `env:"ENABLE_CLI" envDefault:"true"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse app config")
	}
	return c
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "carebot.db")
}

func (c AppConfig) GetRecordsPath() string {
	return filepath.Join(c.RuntimePath, "records.db")
}
