// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
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

	"golang.org/x/sync/errgroup"

	"github.com/Shivanand-hulikatti/event-inscriptions/internal/config"
	"github.com/Shivanand-hulikatti/event-inscriptions/internal/database"
	"github.com/Shivanand-hulikatti/event-inscriptions/internal/handler"
	"github.com/Shivanand-hulikatti/event-inscriptions/internal/i18n"
	"github.com/Shivanand-hulikatti/event-inscriptions/internal/repository"
	"github.com/Shivanand-hulikatti/event-inscriptions/internal/service"
	"github.com/Shivanand-hulikatti/event-inscriptions/internal/telemetry"
)

const serviceName = "event-inscriptions"

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	// ── 1. Configuration and logging ─────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, cfg.OTELEndpoint)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracer shutdown", slog.Any("error", err))
		}
	}()

	// ── 2. Connect to the store ──────────────────────────────────────────
	conn, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// ── 3. Wire up layers ────────────────────────────────────────────────
	regs := service.NewRegistrationManager(logger)
	router := handler.NewRouter(handler.Dependencies{
		Conn:          conn,
		Registrations: regs,
		Events:        service.NewEventService(logger, regs),
		Users:         service.NewUserService(logger),
		Translator:    i18n.NewTranslator(cfg.DefaultLocale, logger),
		Logger:        logger,
		JWTSecret:     cfg.JWTSecret,
	})

	// ── 4. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", slog.Int("port", cfg.Port), slog.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// openStore connects the configured driver, applies migrations when enabled
// and returns the pool-backed handle with its close function.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.Conn, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("database: %w", err)
		}
		if cfg.MigrateOnStart {
			if err := database.MigrateSQLite(db, logger); err != nil {
				_ = db.Close()
				return nil, nil, fmt.Errorf("migrate: %w", err)
			}
		}
		logger.Info("connected to SQLite", slog.String("path", cfg.SQLitePath))
		return repository.NewSQLite(db), func() { _ = db.Close() }, nil

	default:
		// NewPool retries until the server accepts connections, so migrate after it.
		pool, err := database.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("database: %w", err)
		}
		if cfg.MigrateOnStart {
			if err := database.MigratePostgres(cfg.Database.URL(), logger); err != nil {
				pool.Close()
				return nil, nil, fmt.Errorf("migrate: %w", err)
			}
		}
		logger.Info("connected to PostgreSQL", slog.String("host", cfg.Database.Host))
		return repository.NewPostgres(pool), pool.Close, nil
	}
}
