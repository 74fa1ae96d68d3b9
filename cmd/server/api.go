package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"interview-assistant/internal/app"
	"interview-assistant/internal/assistant"
	"interview-assistant/internal/auth"
	"interview-assistant/internal/httputil"
	"interview-assistant/internal/render"
)

const maxBodyBytes = 1 << 20

type askRequest struct {
	Question string `json:"question" validate:"required"`
	Snippet  bool   `json:"snippet"`
}

type askResponse struct {
	ID        string   `json:"id,omitempty"`
	Question  string   `json:"question"`
	Answer    string   `json:"answer"`
	Points    []string `json:"points"`
	Topic     string   `json:"topic,omitempty"`
	Language  string   `json:"language,omitempty"`
	Snippet   string   `json:"snippet,omitempty"`
	Technical bool     `json:"technical"`
	Cached    bool     `json:"cached"`
}

type pdfRequest struct {
	Title    string   `json:"title" validate:"max=200"`
	Question string   `json:"question" validate:"required"`
	Points   []string `json:"points" validate:"required,min=1,dive,required"`
	Snippet  string   `json:"snippet"`
	Topic    string   `json:"topic"`
	Language string   `json:"language"`
}

type exchangeView struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Points    []string  `json:"points"`
	Topic     string    `json:"topic,omitempty"`
	Language  string    `json:"language,omitempty"`
	Snippet   string    `json:"snippet,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func askHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req askRequest
		if !decodeJSON(deps, w, r, &req) {
			return
		}

		user, _ := auth.UserFrom(r.Context())
		res, err := deps.Assistant.Ask(r.Context(), assistant.Request{
			Question:    req.Question,
			UserID:      user.ID,
			WithSnippet: req.Snippet,
		})
		if err != nil {
			failAsk(deps, w, err)
			return
		}

		resp := askResponse{
			Question:  res.Question,
			Answer:    render.JoinPoints(res.Points),
			Points:    res.Points,
			Topic:     res.Topic,
			Language:  res.Language,
			Snippet:   res.Snippet,
			Technical: res.Technical,
			Cached:    res.Cached,
		}
		if res.ID != uuid.Nil {
			resp.ID = res.ID.String()
		}
		httputil.WriteJSON(w, http.StatusOK, resp)
	}
}

func failAsk(deps app.Deps, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, assistant.ErrEmptyQuestion), errors.Is(err, assistant.ErrQuestionTooLong):
		httputil.Fail(deps.Log, w, err.Error(), err, http.StatusBadRequest)
	case errors.Is(err, assistant.ErrUpstream):
		httputil.Fail(deps.Log, w, "llm request failed", err, http.StatusBadGateway)
	default:
		httputil.Fail(deps.Log, w, "failed to answer question", err, http.StatusInternalServerError)
	}
}

func pdfHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req pdfRequest
		if !decodeJSON(deps, w, r, &req) {
			return
		}
		writePDF(deps, w, "answer.pdf", render.Document{
			Title:    req.Title,
			Question: req.Question,
			Points:   req.Points,
			Snippet:  req.Snippet,
			Topic:    req.Topic,
			Language: req.Language,
		})
	}
}

// decodeJSON reads and validates a request body, writing the 400 itself.
func decodeJSON(deps app.Deps, w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
		return false
	}
	if err := httputil.Validator.Struct(v); err != nil {
		httputil.ValidationError(deps.Log, w, err)
		return false
	}
	return true
}

// writePDF renders doc fully before writing so a render error can still
// produce a proper status.
func writePDF(deps app.Deps, w http.ResponseWriter, filename string, doc render.Document) {
	var buf bytes.Buffer
	if err := render.PDF(&buf, doc); err != nil {
		httputil.Fail(deps.Log, w, "failed to render pdf", err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		deps.Log.Warn("pdf write failed", "err", err)
	}
}
