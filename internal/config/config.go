package config

import (
	"log/slog"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds runtime configuration for the server, the recorder worker and the CLI.
type Config struct {
	// Server
	Port      int    `env:"PORT" envDefault:"8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"` // "json" or "text"

	// LLM
	LLMProvider       string `env:"LLM_PROVIDER" envDefault:"gemini"` // "gemini", "groq", "openai" or "openrouter"
	LLMModel          string `env:"LLM_MODEL"`                        // empty uses the provider default
	SnippetModel      string `env:"SNIPPET_MODEL"`                    // empty reuses LLMModel
	GeminiKey         string `env:"GEMINI_API_KEY"`
	GroqKey           string `env:"GROQ_API_KEY"`
	OpenAIKey         string `env:"OPENAI_API_KEY"`
	OpenRouterKey     string `env:"OPENROUTER_API_KEY"`
	LLMTimeoutSeconds int    `env:"LLM_TIMEOUT_SECONDS" envDefault:"30"`
	LLMMaxRetries     int    `env:"LLM_MAX_RETRIES" envDefault:"2"`

	// Answers
	MaxPoints         int  `env:"MAX_POINTS" envDefault:"7"`
	SnippetsEnabled   bool `env:"SNIPPETS_ENABLED" envDefault:"true"`
	MaxQuestionLength int  `env:"MAX_QUESTION_LENGTH" envDefault:"1000"`

	// Store
	StoreProvider string `env:"STORE_PROVIDER" envDefault:"sqlite"` // "sqlite", "postgres" or "none"
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"interview.db"`
	DBURL         string `env:"DB_URL"`

	// Queue
	QueueProvider string `env:"QUEUE_PROVIDER" envDefault:"none"` // "none" records synchronously, "nats" hands off to the recorder
	QueueURL      string `env:"QUEUE_URL"`

	// Cache
	CacheProvider string `env:"CACHE_PROVIDER" envDefault:"none"` // "none" or "redis"
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	CacheTTL      int    `env:"CACHE_TTL" envDefault:"3600"` // seconds

	// Auth
	JWTSecret          string `env:"JWT_SECRET"`
	JWTExpirationHours int    `env:"JWT_EXPIRATION_HOURS" envDefault:"24"`
	SessionSecret      string `env:"SESSION_SECRET"`

	// Rate limiting on the ask endpoints, per client IP
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"1"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"5"`
	// TrustProxy takes the client IP from X-Forwarded-For / X-Real-IP.
	TrustProxy     bool    `env:"TRUST_PROXY" envDefault:"false"`
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}

// LLMTimeout is the per-call deadline for model requests.
func (c Config) LLMTimeout() time.Duration {
	if c.LLMTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.LLMTimeoutSeconds) * time.Second
}

// CacheDuration is the TTL for cached answers.
func (c Config) CacheDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}
