// Package server wires the auth server together: PostgreSQL user storage,
// Redis one-time codes and the HTTP API, with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/medreminder/internal/logging"
	"github.com/dmitrijs2005/medreminder/internal/server/config"
	"github.com/dmitrijs2005/medreminder/internal/server/httpapi"
	"github.com/dmitrijs2005/medreminder/internal/server/migrations"
	"github.com/dmitrijs2005/medreminder/internal/server/otp"
	"github.com/dmitrijs2005/medreminder/internal/server/repositories/users"
	"github.com/dmitrijs2005/medreminder/internal/server/services"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
)

const (
	dbWaitRetries   = 10
	dbWaitBase      = 200 * time.Millisecond
	shutdownTimeout = 10 * time.Second
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	redis  *redis.Client
	server *http.Server
}

func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := waitForDB(ctx, db, dbWaitRetries, dbWaitBase); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database unavailable: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		_ = db.Close()
		return nil, fmt.Errorf("redis unavailable: %w", err)
	}

	svc := services.NewUserService(users.NewPostgresRepository(db), otp.NewRedisStore(rdb), cfg)
	checks := map[string]httpapi.Check{
		"postgres": db.PingContext,
		"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	}
	handler := httpapi.NewHandler(svc, checks, logger)

	return &App{
		config: cfg,
		logger: logger,
		db:     db,
		redis:  rdb,
		server: &http.Server{
			Addr:              cfg.EndpointAddr,
			Handler:           httpapi.NewRouter(handler),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

// waitForDB pings db with exponential backoff, giving up after retries
// failed attempts beyond the first.
func waitForDB(ctx context.Context, db *sql.DB, retries uint64, base time.Duration) error {
	b := retry.WithMaxRetries(retries, retry.NewExponential(base))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

// RunMigrations applies the embedded PostgreSQL migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// Run serves HTTP until ctx is cancelled or SIGINT/SIGTERM arrives, then
// shuts down gracefully and releases the database and Redis connections.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app.logger.Info(ctx, "Starting app...", "addr", app.config.EndpointAddr)

	errCh := make(chan error, 1)
	go func() {
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		app.logger.Info(ctx, "Shutting down...")
	case runErr = <-errCh:
		app.logger.Error(ctx, "http server failed", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "http shutdown failed", "error", err)
	}

	return errors.Join(runErr, app.redis.Close(), app.db.Close())
}
