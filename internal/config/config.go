package config

import (
	"log/slog"

	"github.com/caarlos0/env/v10"
)

// Config holds minimal runtime configuration. Extend as needed.
type Config struct {
	// Server
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Store
	StoreProvider string `env:"STORE_PROVIDER" envDefault:"postgres"` // "postgres" (production database)
	DBURL         string `env:"DB_URL"`

	// Queue
	QueueProvider string `env:"QUEUE_PROVIDER" envDefault:"nats"` // "nats" (required for index tasks)
	QueueURL      string `env:"QUEUE_URL"`

	// External search provider (OpenLibrary-compatible full-text index)
	SearchBaseURL    string `env:"SEARCH_BASE_URL" envDefault:"https://openlibrary.org"`
	SearchTimeoutSec int    `env:"SEARCH_TIMEOUT_SEC" envDefault:"10"`

	// Last-served history backing the dedup filter's rotate fallback
	HistoryProvider string `env:"HISTORY_PROVIDER" envDefault:"memory"` // "memory" or "redis"
	HistorySize     int    `env:"HISTORY_SIZE" envDefault:"512"`        // memory provider: max tracked items
	RedisAddr       string `env:"REDIS_ADDR"`
	RedisPassword   string `env:"REDIS_PASSWORD"`

	// Embeddings
	EmbeddingProvider string `env:"EMBEDDING_PROVIDER" envDefault:"openai"` // "openai" or "deterministic" (offline fallback)
	EmbeddingModel    string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`

	// LLM annotator (summary + tags for indexed items)
	LLMProvider string `env:"LLM_PROVIDER" envDefault:"openai"` // "openai" (uses OpenAI API) or "stub" (offline heuristic)
	LLMModel    string `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	OpenAIKey   string `env:"OPENAI_API_KEY"`
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}
