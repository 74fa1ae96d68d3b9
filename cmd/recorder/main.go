package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"interview-assistant/internal/app"
	"interview-assistant/internal/assistant"
	"interview-assistant/internal/httputil"
	"interview-assistant/internal/queue"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.BuildRecorder()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	defer deps.Close()
	deps.Log.Info("recorder worker starting")

	if err := run(ctx, deps, func(ctx context.Context) error {
		return httputil.ServeHealth(ctx, deps.Log, deps.Config.Port, "recorder")
	}); err != nil {
		deps.Log.Error("recorder stopped", "err", err)
	}
}

// run consumes record tasks until ctx ends or either the worker or the health
// server fails.
func run(ctx context.Context, deps app.RecorderDeps, health func(context.Context) error) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return deps.Queue.Worker(ctx, queue.TaskTypeRecord, recordHandler(deps))
	})
	g.Go(func() error {
		return health(ctx)
	})

	return g.Wait()
}

func recordHandler(deps app.RecorderDeps) queue.Handler {
	save := assistant.RecordHandler(deps.Store)
	return func(ctx context.Context, task queue.Task) error {
		if err := save(ctx, task); err != nil {
			deps.Log.Warn("record task failed", "task_id", task.ID, "attempt", task.Attempts, "err", err)
			return err
		}
		deps.Log.Debug("exchange recorded", "task_id", task.ID)
		return nil
	}
}
