// Command scheduler runs the task queue worker that delivers delayed
// messages, currently viewing reminders.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"proppanda_backend/internal/scheduler"
	"proppanda_backend/internal/tenant"
	"proppanda_backend/internal/whatsapp"
	"proppanda_backend/platform/config"
	"proppanda_backend/platform/db"
	"proppanda_backend/platform/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	worker, err := scheduler.NewWorker(cfg, tenant.NewRepository(pool), whatsapp.NewClient(log), log)
	if err != nil {
		return fmt.Errorf("create worker: %w", err)
	}

	go func() {
		<-ctx.Done()
		log.Info("shutting down worker")
		worker.Shutdown()
	}()

	log.Info("scheduler worker started", "queue", cfg.GetTaskQueueName())
	return worker.Run()
}
