package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"interview-assistant/internal/app"
	"interview-assistant/internal/httputil"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.Build(ctx)
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	defer deps.Close()

	sess, err := newSessionStore(deps.Config.SessionSecret, deps.Log)
	if err != nil {
		deps.Log.Error("failed to create session store", "err", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", deps.Config.Port),
		Handler:           newRouter(deps, sess),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	deps.Log.Info("server listening", "addr", srv.Addr, "llm", deps.Config.LLMProvider, "store", deps.Config.StoreProvider)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		deps.Log.Error("server failed", "err", err)
	}
}

// newRouter mounts the web form, the JSON API and the history endpoints.
func newRouter(deps app.Deps, sess *sessionStore) http.Handler {
	r := httputil.NewRouter(deps.Log, deps.Config.TrustProxy)
	limiter := httputil.NewRateLimiter(deps.Config.RateLimitRPS, deps.Config.RateLimitBurst)

	r.Get("/healthz", httputil.HealthHandler(deps.Log))

	r.Get("/", indexHandler(deps))
	r.With(limiter.Middleware).Post("/", askFormHandler(deps, sess))
	r.Get("/download.pdf", downloadHandler(deps, sess))

	r.Route("/api", func(r chi.Router) {
		if deps.Auth != nil {
			r.With(limiter.Middleware, deps.Auth.Middleware(false)).Post("/ask", askHandler(deps))
		} else {
			r.With(limiter.Middleware).Post("/ask", askHandler(deps))
		}
		r.Post("/pdf", pdfHandler(deps))

		r.Route("/history", func(r chi.Router) {
			if deps.Auth == nil || deps.Store == nil {
				r.HandleFunc("/*", historyDisabled(deps))
				r.HandleFunc("/", historyDisabled(deps))
				return
			}
			r.Use(deps.Auth.Middleware(true))
			r.Get("/", listHistoryHandler(deps))
			r.Delete("/", deleteAllHistoryHandler(deps))
			r.Get("/{id}", getHistoryHandler(deps))
			r.Get("/{id}/pdf", historyPDFHandler(deps))
			r.Delete("/{id}", deleteHistoryHandler(deps))
		})
	})
	return r
}
