// Package assistant answers interview questions: it screens out non-technical
// questions, asks the model, normalizes the reply into points, and caches and
// records the result.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"interview-assistant/internal/cache"
	"interview-assistant/internal/classify"
	"interview-assistant/internal/llm"
	"interview-assistant/internal/logger"
	"interview-assistant/internal/normalize"
	"interview-assistant/internal/store"
)

const (
	// NonTechnicalMessage is the single point returned for questions outside
	// technical scope.
	NonTechnicalMessage = "⚠️ Please ask only technical or programming-related questions."
	// NoAnswerMessage stands in when the model reply normalizes to nothing.
	NoAnswerMessage = "No answer generated."

	DefaultMaxQuestionLength = 1000
)

var (
	ErrEmptyQuestion   = errors.New("question is required")
	ErrQuestionTooLong = errors.New("question is too long")
	// ErrUpstream wraps failures of the model provider.
	ErrUpstream = errors.New("llm request failed")
)

// Request is one question to answer.
type Request struct {
	Question string
	// UserID, when set, has the exchange recorded to the user's history.
	UserID      string
	WithSnippet bool
}

// Result is the answer to a Request.
type Result struct {
	// ID identifies the recorded exchange; uuid.Nil when nothing was recorded.
	ID        uuid.UUID
	Question  string
	Points    []string
	Topic     string
	Language  string
	Snippet   string
	Technical bool
	Cached    bool
}

// Config wires a Service. LLM is required; the rest have defaults.
type Config struct {
	LLM        llm.Client
	Classifier *classify.Classifier
	Cache      cache.Cache
	// Recorder is nil when history is disabled.
	Recorder Recorder
	Log      *slog.Logger

	MaxPoints         int
	MaxQuestionLength int
	SnippetsEnabled   bool
	CacheTTL          time.Duration
}

type Service struct {
	llm        llm.Client
	classifier *classify.Classifier
	cache      cache.Cache
	recorder   Recorder
	log        *slog.Logger

	maxPoints         int
	maxQuestionLength int
	snippetsEnabled   bool
	cacheTTL          time.Duration
}

func New(cfg Config) (*Service, error) {
	if cfg.LLM == nil {
		return nil, errors.New("assistant: llm client required")
	}
	s := &Service{
		llm:               cfg.LLM,
		classifier:        cfg.Classifier,
		cache:             cfg.Cache,
		recorder:          cfg.Recorder,
		log:               cfg.Log,
		maxPoints:         cfg.MaxPoints,
		maxQuestionLength: cfg.MaxQuestionLength,
		snippetsEnabled:   cfg.SnippetsEnabled,
		cacheTTL:          cfg.CacheTTL,
	}
	if s.classifier == nil {
		s.classifier = classify.New(classify.DefaultVocabulary())
	}
	if s.cache == nil {
		s.cache = cache.NewNoOpCache()
	}
	if s.log == nil {
		s.log = logger.Discard()
	}
	if s.maxPoints == 0 {
		s.maxPoints = normalize.DefaultMaxPoints
	}
	if s.maxQuestionLength <= 0 {
		s.maxQuestionLength = DefaultMaxQuestionLength
	}
	return s, nil
}

// Ask answers req. Only validation errors and ErrUpstream are returned; cache,
// snippet and recording failures are logged and the answer still succeeds.
func (s *Service) Ask(ctx context.Context, req Request) (Result, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return Result{}, ErrEmptyQuestion
	}
	if utf8.RuneCountInString(question) > s.maxQuestionLength {
		return Result{}, fmt.Errorf("%w (max %d characters)", ErrQuestionTooLong, s.maxQuestionLength)
	}

	if !s.classifier.IsTechnical(question) {
		s.log.Info("non-technical question rejected", "question_len", len(question))
		return Result{Question: question, Points: []string{NonTechnicalMessage}}, nil
	}

	withSnippet := req.WithSnippet && s.snippetsEnabled
	key := cache.GenerateCacheKey(question, withSnippet)

	res, err := s.answer(ctx, question, key, withSnippet)
	if err != nil {
		return Result{}, err
	}

	if req.UserID != "" && s.recorder != nil {
		ex := store.Exchange{
			ID:        uuid.New(),
			UserID:    req.UserID,
			Question:  question,
			Points:    res.Points,
			Topic:     res.Topic,
			Language:  res.Language,
			Snippet:   res.Snippet,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.recorder.Record(ctx, ex); err != nil {
			s.log.Warn("failed to record exchange", "user_id", req.UserID, "err", err)
		} else {
			res.ID = ex.ID
		}
	}
	return res, nil
}

func (s *Service) answer(ctx context.Context, question, key string, withSnippet bool) (Result, error) {
	if cached, err := s.cache.Get(ctx, key); err != nil {
		s.log.Warn("cache lookup failed", "err", err)
	} else if cached != nil {
		s.log.Info("cache hit", "topic", cached.Topic)
		return Result{
			Question:  question,
			Points:    cached.Points,
			Topic:     cached.Topic,
			Language:  cached.Language,
			Snippet:   cached.Snippet,
			Technical: true,
			Cached:    true,
		}, nil
	}

	raw, err := s.llm.Answer(ctx, question)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	points := normalize.Truncate(normalize.Normalize(raw), s.maxPoints)
	if len(points) == 0 {
		points = []string{NoAnswerMessage}
	}

	res := Result{
		Question:  question,
		Points:    points,
		Topic:     s.classifier.Topic(question),
		Language:  s.classifier.Language(question),
		Technical: true,
	}

	if withSnippet && s.classifier.WantsCode(question) {
		snippet, err := s.llm.Snippet(ctx, question, res.Language)
		if err != nil {
			s.log.Warn("snippet generation failed", "err", err)
		} else {
			res.Snippet = snippet
		}
	}

	if err := s.cache.Set(ctx, key, &cache.Answer{
		Points:   res.Points,
		Topic:    res.Topic,
		Language: res.Language,
		Snippet:  res.Snippet,
	}, s.cacheTTL); err != nil {
		s.log.Warn("failed to cache answer", "err", err)
	}
	return res, nil
}
