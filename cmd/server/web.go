package main

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"

	"interview-assistant/internal/app"
	"interview-assistant/internal/assistant"
	"interview-assistant/internal/httputil"
	"interview-assistant/internal/render"
)

const (
	sessionName   = "interview-assistant"
	lastAnswerKey = "last_answer"
)

// sessionStore keeps the last answer of a browser in a signed cookie so it
// can be downloaded as a PDF.
type sessionStore struct {
	cookies *sessions.CookieStore
	log     *slog.Logger
}

func newSessionStore(secret string, log *slog.Logger) (*sessionStore, error) {
	key := []byte(secret)
	if secret == "" {
		// Sessions then do not survive a restart.
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, err
		}
		log.Warn("SESSION_SECRET not set; using a random key")
	}
	cookies := sessions.NewCookieStore(key)
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &sessionStore{cookies: cookies, log: log}, nil
}

// saveLast stores doc in the session. An answer too large for a cookie is
// retried without its snippet.
func (s *sessionStore) saveLast(w http.ResponseWriter, r *http.Request, doc render.Document) bool {
	sess, err := s.cookies.Get(r, sessionName)
	if err != nil {
		// A cookie signed with an old key; start a fresh session.
		sess, _ = s.cookies.New(r, sessionName)
	}
	for _, d := range []render.Document{doc, {Question: doc.Question, Points: doc.Points, Topic: doc.Topic, Language: doc.Language}} {
		data, err := json.Marshal(d)
		if err != nil {
			s.log.Warn("failed to encode session answer", "err", err)
			return false
		}
		sess.Values[lastAnswerKey] = string(data)
		if err = sess.Save(r, w); err == nil {
			return true
		}
		s.log.Warn("failed to save session", "err", err)
	}
	return false
}

func (s *sessionStore) last(r *http.Request) (render.Document, bool) {
	sess, err := s.cookies.Get(r, sessionName)
	if err != nil {
		return render.Document{}, false
	}
	raw, ok := sess.Values[lastAnswerKey].(string)
	if !ok {
		return render.Document{}, false
	}
	var doc render.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil || len(doc.Points) == 0 {
		return render.Document{}, false
	}
	return doc, true
}

func indexHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writePage(deps, w, http.StatusOK, render.PageData{})
	}
}

// askFormHandler answers the HTML form. Failures are shown in the page rather
// than as error statuses.
func askFormHandler(deps app.Deps, sess *sessionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			writePage(deps, w, http.StatusBadRequest, render.PageData{Error: "Error: invalid form"})
			return
		}
		question := r.PostFormValue("question")
		res, err := deps.Assistant.Ask(r.Context(), assistant.Request{
			Question:    question,
			WithSnippet: r.PostFormValue("snippet") != "",
		})

		data := render.PageData{Question: question}
		switch {
		case errors.Is(err, assistant.ErrEmptyQuestion), errors.Is(err, assistant.ErrQuestionTooLong):
			data.Error = "Error: " + err.Error()
			writePage(deps, w, http.StatusBadRequest, data)
			return
		case err != nil:
			deps.Log.Error("form answer failed", "err", err)
			data.Error = "Error: " + err.Error()
			writePage(deps, w, http.StatusOK, data)
			return
		case !res.Technical:
			data.Warning = res.Points[0]
			writePage(deps, w, http.StatusOK, data)
			return
		}

		data.Question = res.Question
		data.Points = res.Points
		data.Snippet = res.Snippet
		data.Topic = res.Topic
		data.Language = res.Language
		data.CanDownload = sess.saveLast(w, r, render.Document{
			Question: res.Question,
			Points:   res.Points,
			Snippet:  res.Snippet,
			Topic:    res.Topic,
			Language: res.Language,
		})
		writePage(deps, w, http.StatusOK, data)
	}
}

func downloadHandler(deps app.Deps, sess *sessionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, ok := sess.last(r)
		if !ok {
			httputil.Fail(deps.Log, w, "no answer to download", nil, http.StatusNotFound)
			return
		}
		writePDF(deps, w, "answer.pdf", doc)
	}
}

func writePage(deps app.Deps, w http.ResponseWriter, status int, data render.PageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := render.Page(w, data); err != nil {
		deps.Log.Error("failed to render page", "err", err)
	}
}
