package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIClient calls an OpenAI-compatible Chat Completions API. Groq is
// reached through the same client with a different base URL.
type OpenAIClient struct {
	name   string
	opts   Options
	client *openai.Client
}

// NewOpenAIClient builds a client against api.openai.com unless opts.BaseURL
// is set.
func NewOpenAIClient(apiKey string, opts Options) (*OpenAIClient, error) {
	return newChatClient(ProviderOpenAI, apiKey, opts.withDefaults(DefaultOpenAIModel))
}

// NewGroqClient builds a client against Groq's OpenAI-compatible endpoint.
func NewGroqClient(apiKey string, opts Options) (*OpenAIClient, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = GroqBaseURL
	}
	return newChatClient(ProviderGroq, apiKey, opts.withDefaults(DefaultGroqModel))
}

func newChatClient(name, apiKey string, opts Options) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%s: api key required", name)
	}
	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(opts.MaxRetries),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	cli := openai.NewClient(reqOpts...)
	return &OpenAIClient{name: name, opts: opts, client: &cli}, nil
}

func (c *OpenAIClient) Answer(ctx context.Context, question string) (string, error) {
	return c.complete(ctx, c.opts.Model, answerSystemPrompt, AnswerPrompt(question), defaultAnswerTemperature)
}

func (c *OpenAIClient) Snippet(ctx context.Context, question, language string) (string, error) {
	out, err := c.complete(ctx, c.opts.SnippetModel, snippetSystemPrompt, SnippetPrompt(question, language), defaultSnippetTemperature)
	if err != nil {
		return "", err
	}
	return CleanCodeBlock(out), nil
}

func (c *OpenAIClient) complete(ctx context.Context, model, system, user string, temperature float64) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("nil openai client")
	}
	reqCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()
	resp, err := c.client.Chat.Completions.New(reqCtx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    buildMessages(system, user),
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", c.name, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%s: %w", c.name, ErrEmptyResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

func buildMessages(system, user string) []openai.ChatCompletionMessageParamUnion {
	return []openai.ChatCompletionMessageParamUnion{
		{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: openai.String(system),
				},
			},
		},
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: openai.String(user),
				},
			},
		},
	}
}
