package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"interview-assistant/internal/cache"
	"interview-assistant/internal/llm"
	"interview-assistant/internal/store"
)

type recorderFunc func(ctx context.Context, ex store.Exchange) error

func (f recorderFunc) Record(ctx context.Context, ex store.Exchange) error { return f(ctx, ex) }

func newService(t *testing.T, cfg Config) *Service {
	t.Helper()
	s, err := New(cfg)
	require.NoError(t, err)
	return s
}

func TestNewRequiresLLM(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestAskValidation(t *testing.T) {
	l := new(llm.MockClient)
	s := newService(t, Config{LLM: l, MaxQuestionLength: 10})

	_, err := s.Ask(context.Background(), Request{Question: "   "})
	assert.ErrorIs(t, err, ErrEmptyQuestion)

	_, err = s.Ask(context.Background(), Request{Question: "what is an array in memory"})
	assert.ErrorIs(t, err, ErrQuestionTooLong)

	l.AssertNotCalled(t, "Answer", mock.Anything, mock.Anything)
}

func TestAskNonTechnicalSkipsModel(t *testing.T) {
	l := new(llm.MockClient)
	c := new(cache.MockCache)
	s := newService(t, Config{LLM: l, Cache: c})

	res, err := s.Ask(context.Background(), Request{Question: "What is your favourite colour?", UserID: "u1"})
	require.NoError(t, err)
	assert.False(t, res.Technical)
	assert.Equal(t, []string{NonTechnicalMessage}, res.Points)
	assert.Equal(t, uuid.Nil, res.ID)
	l.AssertNotCalled(t, "Answer", mock.Anything, mock.Anything)
	c.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestAskNormalizesAndTruncates(t *testing.T) {
	var raw strings.Builder
	for i := 1; i <= 10; i++ {
		fmt.Fprintf(&raw, "%d. **Point** %d\n", i, i)
	}
	l := new(llm.MockClient)
	l.On("Answer", mock.Anything, "Explain SQL joins").Return(raw.String(), nil).Once()

	s := newService(t, Config{LLM: l})
	res, err := s.Ask(context.Background(), Request{Question: "  Explain SQL joins  "})
	require.NoError(t, err)

	assert.True(t, res.Technical)
	assert.False(t, res.Cached)
	assert.Equal(t, "Explain SQL joins", res.Question)
	require.Len(t, res.Points, 7)
	assert.Equal(t, "Point 1", res.Points[0])
	assert.Equal(t, "Point 7", res.Points[6])
	assert.Equal(t, "Databases", res.Topic)
	assert.Equal(t, "SQL", res.Language)
	l.AssertExpectations(t)
}

func TestAskEmptyReplyGetsPlaceholder(t *testing.T) {
	l := new(llm.MockClient)
	l.On("Answer", mock.Anything, mock.Anything).Return("**\n#\n", nil)

	s := newService(t, Config{LLM: l})
	res, err := s.Ask(context.Background(), Request{Question: "What is recursion?"})
	require.NoError(t, err)
	assert.Equal(t, []string{NoAnswerMessage}, res.Points)
}

func TestAskUpstreamError(t *testing.T) {
	l := new(llm.MockClient)
	l.On("Answer", mock.Anything, mock.Anything).Return("", errors.New("503 from provider"))
	c := new(cache.MockCache)
	c.On("Get", mock.Anything, mock.Anything).Return(nil, nil)

	s := newService(t, Config{LLM: l, Cache: c})
	_, err := s.Ask(context.Background(), Request{Question: "What is a thread?"})
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Contains(t, err.Error(), "503 from provider")
	c.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAskSnippet(t *testing.T) {
	question := "Write a function to reverse a list in python"

	t.Run("requested and enabled", func(t *testing.T) {
		l := new(llm.MockClient)
		l.On("Answer", mock.Anything, question).Return("- Use slicing", nil)
		l.On("Snippet", mock.Anything, question, "Python").Return("xs[::-1]", nil).Once()

		s := newService(t, Config{LLM: l, SnippetsEnabled: true})
		res, err := s.Ask(context.Background(), Request{Question: question, WithSnippet: true})
		require.NoError(t, err)
		assert.Equal(t, "xs[::-1]", res.Snippet)
		l.AssertExpectations(t)
	})

	t.Run("disabled by configuration", func(t *testing.T) {
		l := new(llm.MockClient)
		l.On("Answer", mock.Anything, question).Return("- Use slicing", nil)

		s := newService(t, Config{LLM: l, SnippetsEnabled: false})
		res, err := s.Ask(context.Background(), Request{Question: question, WithSnippet: true})
		require.NoError(t, err)
		assert.Empty(t, res.Snippet)
		l.AssertNotCalled(t, "Snippet", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("not requested", func(t *testing.T) {
		l := new(llm.MockClient)
		l.On("Answer", mock.Anything, question).Return("- Use slicing", nil)

		s := newService(t, Config{LLM: l, SnippetsEnabled: true})
		_, err := s.Ask(context.Background(), Request{Question: question})
		require.NoError(t, err)
		l.AssertNotCalled(t, "Snippet", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("failure is not fatal", func(t *testing.T) {
		l := new(llm.MockClient)
		l.On("Answer", mock.Anything, question).Return("- Use slicing", nil)
		l.On("Snippet", mock.Anything, question, "Python").Return("", errors.New("rate limited"))

		s := newService(t, Config{LLM: l, SnippetsEnabled: true})
		res, err := s.Ask(context.Background(), Request{Question: question, WithSnippet: true})
		require.NoError(t, err)
		assert.Equal(t, []string{"Use slicing"}, res.Points)
		assert.Empty(t, res.Snippet)
	})
}

func TestAskCache(t *testing.T) {
	question := "What is a hash map?"
	key := cache.GenerateCacheKey(question, false)

	t.Run("hit skips model", func(t *testing.T) {
		l := new(llm.MockClient)
		c := new(cache.MockCache)
		c.On("Get", mock.Anything, key).Return(&cache.Answer{Points: []string{"cached"}, Topic: "Data Structures & Algorithms"}, nil)

		s := newService(t, Config{LLM: l, Cache: c})
		res, err := s.Ask(context.Background(), Request{Question: question})
		require.NoError(t, err)
		assert.True(t, res.Cached)
		assert.True(t, res.Technical)
		assert.Equal(t, []string{"cached"}, res.Points)
		l.AssertNotCalled(t, "Answer", mock.Anything, mock.Anything)
	})

	t.Run("miss stores answer", func(t *testing.T) {
		l := new(llm.MockClient)
		l.On("Answer", mock.Anything, question).Return("1. Key value pairs", nil)
		c := new(cache.MockCache)
		c.On("Get", mock.Anything, key).Return(nil, nil)
		c.On("Set", mock.Anything, key, mock.MatchedBy(func(a *cache.Answer) bool {
			return len(a.Points) == 1 && a.Points[0] == "Key value pairs"
		}), time.Minute).Return(nil).Once()

		s := newService(t, Config{LLM: l, Cache: c, CacheTTL: time.Minute})
		_, err := s.Ask(context.Background(), Request{Question: question})
		require.NoError(t, err)
		c.AssertExpectations(t)
	})

	t.Run("cache errors are not fatal", func(t *testing.T) {
		l := new(llm.MockClient)
		l.On("Answer", mock.Anything, question).Return("1. Key value pairs", nil)
		c := new(cache.MockCache)
		c.On("Get", mock.Anything, key).Return(nil, errors.New("redis down"))
		c.On("Set", mock.Anything, key, mock.Anything, mock.Anything).Return(errors.New("redis down"))

		s := newService(t, Config{LLM: l, Cache: c})
		res, err := s.Ask(context.Background(), Request{Question: question})
		require.NoError(t, err)
		assert.Equal(t, []string{"Key value pairs"}, res.Points)
	})
}

func TestAskRecordsForUser(t *testing.T) {
	l := new(llm.MockClient)
	l.On("Answer", mock.Anything, mock.Anything).Return("- Processes isolate memory", nil)

	var recorded []store.Exchange
	rec := recorderFunc(func(_ context.Context, ex store.Exchange) error {
		recorded = append(recorded, ex)
		return nil
	})
	s := newService(t, Config{LLM: l, Recorder: rec})

	res, err := s.Ask(context.Background(), Request{Question: "Difference between process and thread", UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, recorded, 1)
	assert.Equal(t, recorded[0].ID, res.ID)
	assert.Equal(t, "u1", recorded[0].UserID)
	assert.Equal(t, []string{"Processes isolate memory"}, recorded[0].Points)
	assert.Equal(t, "Operating Systems", recorded[0].Topic)

	// Anonymous questions are not recorded.
	res, err = s.Ask(context.Background(), Request{Question: "Difference between process and thread"})
	require.NoError(t, err)
	assert.Len(t, recorded, 1)
	assert.Equal(t, uuid.Nil, res.ID)
}

func TestAskRecordFailureIsNotFatal(t *testing.T) {
	l := new(llm.MockClient)
	l.On("Answer", mock.Anything, mock.Anything).Return("- A point", nil)
	rec := recorderFunc(func(context.Context, store.Exchange) error { return errors.New("db locked") })

	s := newService(t, Config{LLM: l, Recorder: rec})
	res, err := s.Ask(context.Background(), Request{Question: "What is an API?", UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, res.ID)
	assert.Equal(t, []string{"A point"}, res.Points)
}
