package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"interview-assistant/internal/app"
	"interview-assistant/internal/auth"
	"interview-assistant/internal/httputil"
	"interview-assistant/internal/render"
	"interview-assistant/internal/store"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

func listHistoryHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := auth.UserFrom(r.Context())

		limit := defaultHistoryLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				httputil.Fail(deps.Log, w, "limit must be a positive integer", err, http.StatusBadRequest)
				return
			}
			limit = min(n, maxHistoryLimit)
		}

		exchanges, err := deps.Store.ListExchanges(r.Context(), user.ID, limit)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to list history", err, http.StatusInternalServerError)
			return
		}
		views := make([]exchangeView, 0, len(exchanges))
		for _, ex := range exchanges {
			views = append(views, toView(ex))
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"exchanges": views,
			"limit":     limit,
		})
	}
}

func getHistoryHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ex, ok := loadExchange(deps, w, r)
		if !ok {
			return
		}
		httputil.WriteJSON(w, http.StatusOK, toView(ex))
	}
}

func historyPDFHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ex, ok := loadExchange(deps, w, r)
		if !ok {
			return
		}
		writePDF(deps, w, "answer-"+ex.ID.String()+".pdf", render.Document{
			Question: ex.Question,
			Points:   ex.Points,
			Snippet:  ex.Snippet,
			Topic:    ex.Topic,
			Language: ex.Language,
		})
	}
}

func deleteHistoryHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := auth.UserFrom(r.Context())
		id, ok := parseID(deps, w, r)
		if !ok {
			return
		}
		err := deps.Store.DeleteExchange(r.Context(), user.ID, id)
		if errors.Is(err, store.ErrExchangeNotFound) {
			httputil.Fail(deps.Log, w, "exchange not found", err, http.StatusNotFound)
			return
		}
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to delete exchange", err, http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func deleteAllHistoryHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := auth.UserFrom(r.Context())
		n, err := deps.Store.DeleteAllExchanges(r.Context(), user.ID)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to delete history", err, http.StatusInternalServerError)
			return
		}
		deps.Log.Info("history cleared", "user_id", user.ID, "deleted", n)
		httputil.WriteJSON(w, http.StatusOK, map[string]int64{"deleted": n})
	}
}

func historyDisabled(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.Fail(deps.Log, w, "history is disabled (set JWT_SECRET and a STORE_PROVIDER)", nil, http.StatusServiceUnavailable)
	}
}

func loadExchange(deps app.Deps, w http.ResponseWriter, r *http.Request) (store.Exchange, bool) {
	user, _ := auth.UserFrom(r.Context())
	id, ok := parseID(deps, w, r)
	if !ok {
		return store.Exchange{}, false
	}
	ex, err := deps.Store.GetExchange(r.Context(), user.ID, id)
	if errors.Is(err, store.ErrExchangeNotFound) {
		httputil.Fail(deps.Log, w, "exchange not found", err, http.StatusNotFound)
		return store.Exchange{}, false
	}
	if err != nil {
		httputil.Fail(deps.Log, w, "failed to load exchange", err, http.StatusInternalServerError)
		return store.Exchange{}, false
	}
	return ex, true
}

func parseID(deps app.Deps, w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Fail(deps.Log, w, "invalid exchange id", err, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func toView(ex store.Exchange) exchangeView {
	return exchangeView{
		ID:        ex.ID.String(),
		Question:  ex.Question,
		Answer:    render.JoinPoints(ex.Points),
		Points:    ex.Points,
		Topic:     ex.Topic,
		Language:  ex.Language,
		Snippet:   ex.Snippet,
		CreatedAt: ex.CreatedAt,
	}
}
