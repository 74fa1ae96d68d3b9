package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"interview-assistant/internal/assistant"
	"interview-assistant/internal/auth"
	"interview-assistant/internal/cache"
	"interview-assistant/internal/classify"
	"interview-assistant/internal/config"
	"interview-assistant/internal/llm"
	"interview-assistant/internal/logger"
	"interview-assistant/internal/queue"
	"interview-assistant/internal/store"
)

// Deps bundles the runtime dependencies of the HTTP server and the CLI.
type Deps struct {
	Config config.Config
	Log    *slog.Logger
	// Store is nil when STORE_PROVIDER=none.
	Store store.Store
	// Queue is nil unless QUEUE_PROVIDER=nats.
	Queue     queue.Queue
	Cache     cache.Cache
	LLM       llm.Client
	Assistant *assistant.Service
	// Auth is nil when JWT_SECRET is empty; history endpoints are then disabled.
	Auth *auth.Service

	closers []func() error
}

// RecorderDeps are the dependencies of the recorder worker.
type RecorderDeps struct {
	Config config.Config
	Log    *slog.Logger
	Store  store.Store
	Queue  queue.Queue

	closers []func() error
}

// LoadConfig loads an optional .env file, then the environment, and builds
// the logger.
func LoadConfig() (config.Config, *slog.Logger) {
	envErr := godotenv.Load()
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	if envErr != nil {
		log.Debug("no .env file loaded, using environment", "err", envErr)
	}
	return cfg, log
}

// Build loads env, config, and shared components.
func Build(ctx context.Context) (Deps, error) {
	cfg, log := LoadConfig()
	return BuildWith(ctx, cfg, log)
}

// BuildWith wires components from an already loaded configuration.
func BuildWith(ctx context.Context, cfg config.Config, log *slog.Logger) (Deps, error) {
	deps := Deps{Config: cfg, Log: log}

	st, err := buildStore(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize store: %w", err)
	}
	if st != nil {
		deps.Store = st
		deps.closers = append(deps.closers, st.Close)
	}

	q, nc, err := buildQueue(cfg, log)
	if err != nil {
		deps.Close()
		return Deps{}, fmt.Errorf("failed to initialize queue: %w", err)
	}
	if nc != nil {
		deps.Queue = q
		deps.closers = append(deps.closers, func() error { nc.Close(); return nil })
	}

	deps.Cache = buildCache(cfg, log)
	deps.closers = append(deps.closers, deps.Cache.Close)

	deps.LLM, err = buildLLM(ctx, cfg, log)
	if err != nil {
		deps.Close()
		return Deps{}, fmt.Errorf("failed to initialize LLM: %w", err)
	}

	deps.Auth, err = buildAuth(cfg, log)
	if err != nil {
		deps.Close()
		return Deps{}, fmt.Errorf("failed to initialize auth: %w", err)
	}

	deps.Assistant, err = assistant.New(assistant.Config{
		LLM:               deps.LLM,
		Classifier:        classify.New(classify.DefaultVocabulary()),
		Cache:             deps.Cache,
		Recorder:          buildRecorder(deps.Store, deps.Queue),
		Log:               log,
		MaxPoints:         cfg.MaxPoints,
		MaxQuestionLength: cfg.MaxQuestionLength,
		SnippetsEnabled:   cfg.SnippetsEnabled,
		CacheTTL:          cfg.CacheDuration(),
	})
	if err != nil {
		deps.Close()
		return Deps{}, err
	}
	return deps, nil
}

// Close releases every connection opened by Build.
func (d Deps) Close() error {
	return closeAll(d.closers)
}

// BuildRecorder wires the recorder worker, which needs a store and NATS.
func BuildRecorder() (RecorderDeps, error) {
	cfg, log := LoadConfig()
	if cfg.QueueProvider != "nats" {
		return RecorderDeps{}, fmt.Errorf("recorder requires QUEUE_PROVIDER=nats (got %q)", cfg.QueueProvider)
	}
	st, err := buildStore(cfg, log)
	if err != nil {
		return RecorderDeps{}, fmt.Errorf("failed to initialize store: %w", err)
	}
	if st == nil {
		return RecorderDeps{}, errors.New("recorder requires a store (STORE_PROVIDER is none)")
	}
	q, nc, err := buildQueue(cfg, log)
	if err != nil {
		_ = st.Close()
		return RecorderDeps{}, fmt.Errorf("failed to initialize queue: %w", err)
	}
	return RecorderDeps{
		Config:  cfg,
		Log:     log,
		Store:   st,
		Queue:   q,
		closers: []func() error{st.Close, func() error { nc.Close(); return nil }},
	}, nil
}

func (d RecorderDeps) Close() error {
	return closeAll(d.closers)
}

func closeAll(closers []func() error) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
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
	case "sqlite":
		db, err := store.NewSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite: %w", err)
		}
		log.Info("using SQLite store", "path", cfg.SQLitePath)
		return db, nil
	case "none", "":
		log.Info("history store disabled")
		return nil, nil
	default:
		return nil, fmt.Errorf("invalid STORE_PROVIDER: %s (valid options: sqlite, postgres, none)", cfg.StoreProvider)
	}
}

func buildQueue(cfg config.Config, log *slog.Logger) (queue.Queue, *nats.Conn, error) {
	switch cfg.QueueProvider {
	case "nats":
		if cfg.QueueURL == "" {
			return nil, nil, fmt.Errorf("QUEUE_URL is required when QUEUE_PROVIDER=nats")
		}
		nc, err := nats.Connect(cfg.QueueURL, nats.Name("interview-assistant"), nats.MaxReconnects(-1))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		log.Info("using NATS queue")
		return queue.NewNATS(log, nc), nc, nil
	case "none", "":
		return nil, nil, nil
	default:
		return nil, nil, fmt.Errorf("invalid QUEUE_PROVIDER: %s (valid options: nats, none)", cfg.QueueProvider)
	}
}

// buildCache falls back to the no-op cache when Redis is unreachable; caching
// is an optimisation and never blocks startup.
func buildCache(cfg config.Config, log *slog.Logger) cache.Cache {
	if cfg.CacheProvider != "redis" {
		return cache.NewNoOpCache()
	}
	c, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Warn("redis unavailable, caching disabled", "addr", cfg.RedisAddr, "err", err)
		return cache.NewNoOpCache()
	}
	log.Info("using Redis cache", "addr", cfg.RedisAddr, "ttl", cfg.CacheDuration())
	return c
}

func buildLLM(ctx context.Context, cfg config.Config, log *slog.Logger) (llm.Client, error) {
	opts := llm.Options{
		Model:        cfg.LLMModel,
		SnippetModel: cfg.SnippetModel,
		Timeout:      cfg.LLMTimeout(),
		MaxRetries:   cfg.LLMMaxRetries,
	}
	switch cfg.LLMProvider {
	case llm.ProviderGemini:
		if cfg.GeminiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required when LLM_PROVIDER=gemini")
		}
		log.Info("using Gemini LLM client", "model", modelOr(cfg.LLMModel, llm.DefaultGeminiModel))
		return llm.NewGeminiClient(ctx, cfg.GeminiKey, opts)
	case llm.ProviderGroq:
		if cfg.GroqKey == "" {
			return nil, fmt.Errorf("GROQ_API_KEY is required when LLM_PROVIDER=groq")
		}
		log.Info("using Groq LLM client", "model", modelOr(cfg.LLMModel, llm.DefaultGroqModel))
		return llm.NewGroqClient(cfg.GroqKey, opts)
	case llm.ProviderOpenAI:
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
		log.Info("using OpenAI LLM client", "model", modelOr(cfg.LLMModel, llm.DefaultOpenAIModel))
		return llm.NewOpenAIClient(cfg.OpenAIKey, opts)
	case llm.ProviderOpenRouter:
		if cfg.OpenRouterKey == "" {
			return nil, fmt.Errorf("OPENROUTER_API_KEY is required when LLM_PROVIDER=openrouter")
		}
		log.Info("using OpenRouter LLM client", "model", modelOr(cfg.LLMModel, llm.DefaultOpenRouterModel))
		return llm.NewOpenRouterClient(cfg.OpenRouterKey, opts)
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER: %s (valid options: gemini, groq, openai, openrouter)", cfg.LLMProvider)
	}
}

func buildAuth(cfg config.Config, log *slog.Logger) (*auth.Service, error) {
	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET not set; history endpoints disabled")
		return nil, nil
	}
	return auth.NewService(cfg.JWTSecret, time.Duration(cfg.JWTExpirationHours)*time.Hour)
}

// buildRecorder prefers the queue so the request path never waits on the
// database; without a queue it writes directly.
func buildRecorder(st store.Store, q queue.Queue) assistant.Recorder {
	switch {
	case q != nil:
		return assistant.QueueRecorder{Queue: q}
	case st != nil:
		return assistant.StoreRecorder{Store: st}
	default:
		return nil
	}
}

func modelOr(model, fallback string) string {
	if model == "" {
		return fallback
	}
	return model
}
