// Command api runs the conversational agent's HTTP server: the WhatsApp
// webhook, health checks, and the event-driven side effects behind them.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"proppanda_backend/internal/bot"
	"proppanda_backend/internal/conversation"
	"proppanda_backend/internal/events"
	"proppanda_backend/internal/geocode"
	apphttp "proppanda_backend/internal/http"
	"proppanda_backend/internal/http/router"
	"proppanda_backend/internal/knowledge"
	"proppanda_backend/internal/llm"
	"proppanda_backend/internal/properties"
	"proppanda_backend/internal/scheduler"
	"proppanda_backend/internal/tenant"
	"proppanda_backend/internal/webhook"
	"proppanda_backend/internal/whatsapp"
	"proppanda_backend/internal/workflow"
	"proppanda_backend/platform/config"
	"proppanda_backend/platform/db"
	"proppanda_backend/platform/logger"

	"proppanda_backend/internal/bot/checkpoint"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
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

	pool, err := withRetry(ctx, log, "database", func() (*pgxpool.Pool, error) {
		return db.NewPool(ctx, cfg)
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, cfg, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	store, err := withRetry(ctx, log, "redis", func() (*checkpoint.RedisStore, error) {
		s, err := checkpoint.NewRedisStore(cfg)
		if err != nil {
			return nil, err
		}
		if err := s.Ping(ctx); err != nil {
			_ = s.Close()
			return nil, err
		}
		return s, nil
	})
	if err != nil {
		return err
	}
	defer store.Close()

	bus := events.NewInMemoryBus(log)

	// Repositories.
	tenants := tenant.NewRepository(pool)
	listings := properties.NewRepository(pool)
	transcripts := conversation.NewRepository(pool)
	knowledgeRepo := knowledge.NewRepository(pool)

	// Collaborator clients.
	completer := llm.NewClient(cfg, log)
	geocoder := geocode.NewClient(cfg, log)
	workflows := workflow.NewClient(cfg, log)
	sender := whatsapp.NewClient(log)

	botModule := bot.NewModule(bot.Deps{
		Store:      store,
		Bus:        bus,
		Logger:     log,
		Completer:  completer,
		Geocoder:   geocoder,
		Properties: listings,
		Tenants:    tenants,
		Workflows:  workflows,
		Knowledge:  knowledge.NewService(knowledgeRepo),
	})

	// Event-driven side effects.
	conversation.NewSubscriber(transcripts, log).Register(bus)

	reminders, err := scheduler.NewClient(cfg, log)
	if err != nil {
		return fmt.Errorf("create scheduler client: %w", err)
	}
	defer reminders.Close()
	reminders.Register(bus)

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: bus,
		Modules: []apphttp.Module{
			webhook.NewModule(cfg, tenants, botModule.Engine(), sender, log),
		},
	}

	server := &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server listening", "addr", cfg.GetHTTPAddr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// withRetry attempts a startup dependency a few times before giving up, so a
// fresh deploy tolerates the database or Redis coming up slightly later.
func withRetry[T any](ctx context.Context, log *logger.Logger, name string, fn func() (T, error)) (T, error) {
	var zero T
	const attempts = 5

	for i := 1; i <= attempts; i++ {
		v, err := fn()
		if err == nil {
			return v, nil
		}
		log.Warn("startup dependency not ready", "dependency", name, "attempt", i, "error", err.Error())
		if i == attempts {
			return zero, fmt.Errorf("connect %s: %w", name, err)
		}
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(time.Duration(i) * time.Second):
		}
	}
	return zero, nil
}
