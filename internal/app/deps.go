package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/openai/openai-go/v3"

	"book-recs/internal/cache"
	"book-recs/internal/config"
	"book-recs/internal/embeddings"
	"book-recs/internal/llm"
	"book-recs/internal/logger"
	"book-recs/internal/queue"
	"book-recs/internal/recommend"
	"book-recs/internal/search"
	"book-recs/internal/store"
)

// Deps bundles common runtime dependencies for services.
type Deps struct {
	Config   config.Config
	Log      *slog.Logger
	Store    store.Store
	Queue    queue.Queue
	Search   search.Provider
	History  recommend.History
	Embedder embeddings.Embedder
	LLM      llm.Client
}

// Build loads env, config, and shared components.
func Build() (Deps, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "err", err)
	}
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	st, err := buildStore(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize store: %w", err)
	}
	q, err := buildQueue(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize queue: %w", err)
	}
	llmClient, err := buildLLM(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize LLM: %w", err)
	}
	embedder, err := buildEmbedder(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	history, err := buildHistory(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize history: %w", err)
	}
	searchClient := search.NewClient(cfg.SearchBaseURL, time.Duration(cfg.SearchTimeoutSec)*time.Second, logger.WithComponent(log, "search"))

	return Deps{
		Config:   cfg,
		Log:      log,
		Store:    st,
		Queue:    q,
		Search:   searchClient,
		History:  history,
		Embedder: embedder,
		LLM:      llmClient,
	}, nil
}

func buildStore(cfg config.Config, log *slog.Logger) (store.Store, error) {
	switch cfg.StoreProvider {
	case "postgres":
		if cfg.DBURL == "" {
			return nil, fmt.Errorf("DB_URL is required when STORE_PROVIDER=postgres")
		}
		db, err := store.NewPostgres(cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres: %w", err)
		}
		log.Info("using Postgres store")
		return db, nil
	default:
		return nil, fmt.Errorf("invalid STORE_PROVIDER: %s (valid option: postgres)", cfg.StoreProvider)
	}
}

func buildQueue(cfg config.Config, log *slog.Logger) (queue.Queue, error) {
	switch cfg.QueueProvider {
	case "nats":
		if cfg.QueueURL == "" {
			return nil, fmt.Errorf("QUEUE_URL is required when QUEUE_PROVIDER=nats")
		}
		nc, err := nats.Connect(cfg.QueueURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		log.Info("using NATS queue")
		return queue.NewNATS(log, nc), nil
	default:
		return nil, fmt.Errorf("invalid QUEUE_PROVIDER: %s (valid option: nats)", cfg.QueueProvider)
	}
}

func buildLLM(cfg config.Config, log *slog.Logger) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
		client, err := llm.NewOpenAIClient(cfg.OpenAIKey, openai.ChatModel(cfg.LLMModel))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
		}
		log.Info("using OpenAI LLM client", "model", cfg.LLMModel)
		return client, nil
	case "stub":
		log.Info("using stub LLM client")
		return llm.NewStubClient(), nil
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER: %s (valid options: openai, stub)", cfg.LLMProvider)
	}
}

func buildEmbedder(cfg config.Config, log *slog.Logger) (embeddings.Embedder, error) {
	switch cfg.EmbeddingProvider {
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when EMBEDDING_PROVIDER=openai")
		}
		embedder, err := embeddings.NewOpenAIEmbedder(cfg.OpenAIKey, openai.EmbeddingModel(cfg.EmbeddingModel))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI embedder: %w", err)
		}
		log.Info("using OpenAI embedder", "model", cfg.EmbeddingModel)
		return embedder, nil
	case "deterministic":
		log.Info("using deterministic embedder")
		return embeddings.NewDeterministicEmbedder(0), nil
	default:
		return nil, fmt.Errorf("invalid EMBEDDING_PROVIDER: %s (valid options: openai, deterministic)", cfg.EmbeddingProvider)
	}
}

func buildHistory(cfg config.Config, log *slog.Logger) (recommend.History, error) {
	switch cfg.HistoryProvider {
	case "redis":
		history, err := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword)
		if err == nil {
			log.Info("using Redis history", "addr", cfg.RedisAddr)
			return history, nil
		}
		// History degrades gracefully everywhere it is read, so a dead
		// Redis only costs the rotate fallback across instances.
		log.Warn("redis unavailable, falling back to memory history", "err", err)
		return cache.NewMemory(cfg.HistorySize)
	case "memory":
		log.Info("using memory history", "size", cfg.HistorySize)
		return cache.NewMemory(cfg.HistorySize)
	default:
		return nil, fmt.Errorf("invalid HISTORY_PROVIDER: %s (valid options: memory, redis)", cfg.HistoryProvider)
	}
}
