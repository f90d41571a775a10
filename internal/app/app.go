// Package app provides the top-level application lifecycle for the trade
// feed service. It wires dependencies, seeds the first snapshot, runs the
// HTTP server, and shuts everything down on context cancellation.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jayasurya0007/trades-backend/internal/config"
	"github.com/jayasurya0007/trades-backend/internal/server"
	"github.com/jayasurya0007/trades-backend/internal/server/handler"
)

// shutdownTimeout bounds the graceful HTTP shutdown.
const shutdownTimeout = 10 * time.Second

// App is the root application object. It owns the configuration, logger, and
// a list of cleanup functions that are called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run is the main entry point. It wires all dependencies, seeds the cache
// with the first snapshot, starts the HTTP server, and blocks until the
// context is cancelled. On return it runs all registered cleanup functions.
func (a *App) Run(ctx context.Context) error {
	deps, cleanup, err := Wire(ctx, a.cfg)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	// The process must not serve without seeded data; a failed first
	// generation is fatal.
	snap, err := deps.Cache.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("app: seed snapshot: %w", err)
	}
	a.logger.InfoContext(ctx, "initial snapshot seeded",
		slog.String("snapshot_id", snap.ID.String()),
		slog.Int("records", len(snap.Records)),
	)

	srv := server.New(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
	}, server.Handlers{
		Health:  handler.NewHealthHandler(a.logger),
		Records: handler.NewRecordsHandler(deps.Cache, a.logger),
	}, deps.Hub, a.logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(srv.Start)

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		return fmt.Errorf("app: %w", err)
	}
	return context.Cause(ctx)
}

// Close tears down all resources in reverse registration order. It is safe
// to call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	a.logger.Info("shutting down application")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
