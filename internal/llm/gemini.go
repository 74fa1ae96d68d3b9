package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"interview-assistant/internal/retry"
)

// GeminiClient calls the Gemini API through the genai SDK, retrying rate
// limits and server errors with capped exponential backoff.
type GeminiClient struct {
	opts   Options
	client *genai.Client
	policy retry.Policy
}

// NewGeminiClient builds a Gemini API client.
func NewGeminiClient(ctx context.Context, apiKey string, opts Options) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: api key required")
	}
	opts = opts.withDefaults(DefaultGeminiModel)
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &GeminiClient{
		opts:   opts,
		client: client,
		policy: retry.Policy{
			MaxRetries: opts.MaxRetries,
			Base:       500 * time.Millisecond,
			Max:        8 * time.Second,
			Retryable:  isRetryableError,
		},
	}, nil
}

func (c *GeminiClient) Answer(ctx context.Context, question string) (string, error) {
	return c.generate(ctx, c.opts.Model, answerSystemPrompt, AnswerPrompt(question), defaultAnswerTemperature)
}

func (c *GeminiClient) Snippet(ctx context.Context, question, language string) (string, error) {
	out, err := c.generate(ctx, c.opts.SnippetModel, snippetSystemPrompt, SnippetPrompt(question, language), defaultSnippetTemperature)
	if err != nil {
		return "", err
	}
	return CleanCodeBlock(out), nil
}

func (c *GeminiClient) generate(ctx context.Context, model, system, prompt string, temperature float32) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("nil gemini client")
	}
	config := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(temperature),
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	}

	var text string
	err := retry.Do(ctx, c.policy, func(ctx context.Context) error {
		reqCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
		result, err := c.client.Models.GenerateContent(reqCtx, model, genai.Text(prompt), config)
		if err != nil {
			return err
		}
		text = result.Text()
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini: %w", ErrEmptyResponse)
	}
	return text, nil
}

// isRetryableError reports whether a Gemini failure is worth another attempt:
// rate limits, server errors and transient network failures.
func isRetryableError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if code, ok := apiErrorCode(err); ok {
		return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection reset", "connection refused", "timeout", "temporarily unavailable", "eof"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// apiErrorCode extracts the HTTP status of a genai API error. The SDK returns
// APIError by value; the pointer form is accepted as well.
func apiErrorCode(err error) (int, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, true
	}
	return 0, false
}
