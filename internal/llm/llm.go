package llm

import (
	"context"
	"errors"
	"time"
)

// Client is a minimal LLM interface to allow pluggable providers.
type Client interface {
	// Answer returns the raw model text for an interview question.
	Answer(ctx context.Context, question string) (string, error)
	// Snippet returns a short code example for the question in language
	// (empty when unknown).
	Snippet(ctx context.Context, question, language string) (string, error)
}

// Provider names accepted by LLM_PROVIDER.
const (
	ProviderGemini     = "gemini"
	ProviderGroq       = "groq"
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
)

// Default models per provider.
const (
	DefaultGeminiModel     = "gemini-2.5-flash"
	DefaultGroqModel       = "llama-3.3-70b-versatile"
	DefaultOpenAIModel     = "gpt-4o-mini"
	DefaultOpenRouterModel = "openai/gpt-4o-mini"

	GroqBaseURL       = "https://api.groq.com/openai/v1/"
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"
)

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("llm: empty response")

// Options configures a provider client.
type Options struct {
	Model        string
	SnippetModel string
	Timeout      time.Duration
	MaxRetries   int
	// BaseURL overrides the provider endpoint (OpenAI-compatible and OpenRouter clients).
	BaseURL string
}

func (o Options) withDefaults(model string) Options {
	if o.Model == "" {
		o.Model = model
	}
	if o.SnippetModel == "" {
		o.SnippetModel = o.Model
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultChatTimeout
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	return o
}

const (
	defaultChatTimeout        = 30 * time.Second
	defaultAnswerTemperature  = 0.2
	defaultSnippetTemperature = 0.1
)
