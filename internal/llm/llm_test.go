package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestCleanCodeBlock(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", "print('hi')", "print('hi')"},
		{"fence with language", "```python\nprint('hi')\n```", "print('hi')"},
		{"fence without language", "```\nx := 1\n```", "x := 1"},
		{"surrounding whitespace", "\n\n```go\nfmt.Println(1)\n```\n", "fmt.Println(1)"},
		{"first line is code", "```int main() { return 0; }\n```", "int main() { return 0; }"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanCodeBlock(tt.in))
		})
	}
}

func TestPrompts(t *testing.T) {
	assert.Equal(t, "Question: What is a mutex?", AnswerPrompt("  What is a mutex? "))
	assert.Contains(t, SnippetPrompt("reverse a list", "Python"), "minimal Python code example")
	assert.NotContains(t, SnippetPrompt("reverse a list", ""), "minimal  code")
	assert.Contains(t, answerSystemPrompt, OutOfScopeReply)
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{MaxRetries: -3}.withDefaults("m")
	assert.Equal(t, "m", o.Model)
	assert.Equal(t, "m", o.SnippetModel)
	assert.Equal(t, defaultChatTimeout, o.Timeout)
	assert.Equal(t, 0, o.MaxRetries)

	o = Options{Model: "a", SnippetModel: "b", Timeout: time.Second}.withDefaults("m")
	assert.Equal(t, "a", o.Model)
	assert.Equal(t, "b", o.SnippetModel)
	assert.Equal(t, time.Second, o.Timeout)
}

func TestConstructorsRequireKey(t *testing.T) {
	_, err := NewOpenAIClient("", Options{})
	assert.Error(t, err)
	_, err = NewGroqClient("", Options{})
	assert.Error(t, err)
	_, err = NewOpenRouterClient("", Options{})
	assert.Error(t, err)
	_, err = NewGeminiClient(context.Background(), "", Options{})
	assert.Error(t, err)
}

func TestGroqDefaults(t *testing.T) {
	c, err := NewGroqClient("key", Options{})
	require.NoError(t, err)
	assert.Equal(t, GroqBaseURL, c.opts.BaseURL)
	assert.Equal(t, DefaultGroqModel, c.opts.Model)
	assert.Equal(t, ProviderGroq, c.name)
}

// chatServer answers every chat completion request with content and records
// the decoded request body.
func chatServer(t *testing.T, status int, content string, got *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		if got != nil {
			_ = json.Unmarshal(body, got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status >= 400 {
			fmt.Fprint(w, `{"error":{"message":"boom","type":"server_error"}}`)
			return
		}
		resp := map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIClientAnswer(t *testing.T) {
	var body map[string]any
	srv := chatServer(t, http.StatusOK, "1. Point one\n2. Point two", &body)

	c, err := NewOpenAIClient("key", Options{Model: "test-model", BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	out, err := c.Answer(context.Background(), "What is a goroutine?")
	require.NoError(t, err)
	assert.Equal(t, "1. Point one\n2. Point two", out)
	assert.Equal(t, "test-model", body["model"])
	msgs, ok := body["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, msgs, 2)
}

func TestOpenAIClientSnippetStripsFence(t *testing.T) {
	srv := chatServer(t, http.StatusOK, "```go\ngo work()\n```", nil)
	c, err := NewOpenAIClient("key", Options{BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	out, err := c.Snippet(context.Background(), "start a goroutine", "Go")
	require.NoError(t, err)
	assert.Equal(t, "go work()", out)
}

func TestOpenAIClientEmptyResponse(t *testing.T) {
	srv := chatServer(t, http.StatusOK, "", nil)
	c, err := NewOpenAIClient("key", Options{BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	_, err = c.Answer(context.Background(), "q")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestOpenAIClientServerError(t *testing.T) {
	srv := chatServer(t, http.StatusBadRequest, "", nil)
	c, err := NewOpenAIClient("key", Options{BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	_, err = c.Answer(context.Background(), "q")
	assert.Error(t, err)
}

func TestOpenRouterClient(t *testing.T) {
	var body map[string]any
	srv := chatServer(t, http.StatusOK, "- A\n- B", &body)

	c, err := NewOpenRouterClient("key", Options{BaseURL: srv.URL})
	require.NoError(t, err)

	out, err := c.Answer(context.Background(), "Explain REST")
	require.NoError(t, err)
	assert.Equal(t, "- A\n- B", out)
	assert.Equal(t, DefaultOpenRouterModel, body["model"])
}

func TestOpenRouterClientErrors(t *testing.T) {
	t.Run("status error carries message", func(t *testing.T) {
		srv := chatServer(t, http.StatusBadRequest, "", nil)
		c, err := NewOpenRouterClient("key", Options{BaseURL: srv.URL})
		require.NoError(t, err)

		_, err = c.Answer(context.Background(), "q")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("empty content", func(t *testing.T) {
		srv := chatServer(t, http.StatusOK, "  ", nil)
		c, err := NewOpenRouterClient("key", Options{BaseURL: srv.URL})
		require.NoError(t, err)

		_, err = c.Snippet(context.Background(), "q", "")
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"rate limited", genai.APIError{Code: 429}, true},
		{"server error", fmt.Errorf("wrapped: %w", genai.APIError{Code: 503}), true},
		{"bad request", genai.APIError{Code: 400}, false},
		{"rate limited pointer", &genai.APIError{Code: 429}, true},
		{"bad request pointer", &genai.APIError{Code: 400}, false},
		{"connection reset", errors.New("read: connection reset by peer"), true},
		{"other", errors.New("invalid argument"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableError(tt.err))
		})
	}
}

// geminiServer fails the first requests with statuses, then answers normally.
func geminiServer(t *testing.T, statuses ...int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(calls.Add(1)) - 1
		status := http.StatusOK
		if n < len(statuses) {
			status = statuses[n]
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status >= 400 {
			fmt.Fprintf(w, `{"error":{"code":%d,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`, status)
			return
		}
		fmt.Fprint(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"1. Retried answer"}]}}]}`)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestGeminiRetriesRateLimit(t *testing.T) {
	tests := []struct {
		name      string
		statuses  []int
		wantCalls int
		wantErr   bool
	}{
		{name: "429 then success", statuses: []int{http.StatusTooManyRequests}, wantCalls: 2},
		{name: "503 then success", statuses: []int{http.StatusServiceUnavailable}, wantCalls: 2},
		{name: "400 is not retried", statuses: []int{http.StatusBadRequest}, wantCalls: 1, wantErr: true},
		{name: "retries exhausted", statuses: []int{429, 429, 429}, wantCalls: 3, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, calls := geminiServer(t, tt.statuses...)
			c, err := NewGeminiClient(context.Background(), "key", Options{BaseURL: srv.URL, MaxRetries: 2, Timeout: 5 * time.Second})
			require.NoError(t, err)
			c.policy.Base = time.Millisecond
			c.policy.Max = 5 * time.Millisecond

			out, err := c.Answer(context.Background(), "What is a goroutine?")
			assert.Equal(t, int32(tt.wantCalls), calls.Load())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "1. Retried answer", out)
		})
	}
}

func TestMockClientSatisfiesInterface(t *testing.T) {
	var _ Client = (*MockClient)(nil)
	var _ Client = (*OpenAIClient)(nil)
	var _ Client = (*GeminiClient)(nil)
	var _ Client = (*OpenRouterClient)(nil)
}
