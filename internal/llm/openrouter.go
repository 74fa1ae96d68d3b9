package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

// OpenRouterClient calls OpenRouter's chat completions endpoint over plain
// HTTP and reads the reply with gjson.
type OpenRouterClient struct {
	apiKey string
	opts   Options
	http   *resty.Client
}

// NewOpenRouterClient builds an OpenRouter client.
func NewOpenRouterClient(apiKey string, opts Options) (*OpenRouterClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openrouter: api key required")
	}
	opts = opts.withDefaults(DefaultOpenRouterModel)
	if opts.BaseURL == "" {
		opts.BaseURL = OpenRouterBaseURL
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.MaxRetries).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() == 429 || r.StatusCode() >= 500
		})
	return &OpenRouterClient{apiKey: apiKey, opts: opts, http: client}, nil
}

func (c *OpenRouterClient) Answer(ctx context.Context, question string) (string, error) {
	return c.complete(ctx, c.opts.Model, answerSystemPrompt, AnswerPrompt(question), defaultAnswerTemperature)
}

func (c *OpenRouterClient) Snippet(ctx context.Context, question, language string) (string, error) {
	out, err := c.complete(ctx, c.opts.SnippetModel, snippetSystemPrompt, SnippetPrompt(question, language), defaultSnippetTemperature)
	if err != nil {
		return "", err
	}
	return CleanCodeBlock(out), nil
}

func (c *OpenRouterClient) complete(ctx context.Context, model, system, user string, temperature float64) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{
			"model":       model,
			"temperature": temperature,
			"messages": []map[string]string{
				{"role": "system", "content": system},
				{"role": "user", "content": user},
			},
		}).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("openrouter: %w", err)
	}
	if resp.IsError() {
		msg := gjson.Get(resp.String(), "error.message").String()
		if msg == "" {
			msg = resp.Status()
		}
		return "", fmt.Errorf("openrouter: status %d: %s", resp.StatusCode(), msg)
	}
	text := gjson.Get(resp.String(), "choices.0.message.content").String()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("openrouter: %w", ErrEmptyResponse)
	}
	return text, nil
}
