package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"TelescopeStatus/internal/usecase"
	"TelescopeStatus/pkg/cache"
	"TelescopeStatus/pkg/config"
	xhttp "TelescopeStatus/pkg/http"
	applogger "TelescopeStatus/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	registry   *usecase.Registry
	httpServer *xhttp.Server
	cache      cache.Service
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	registry *usecase.Registry,
	httpServer *xhttp.Server,
	c cache.Service,
) *App {
	return &App{
		cfg:        cfg,
		log:        log,
		registry:   registry,
		httpServer: httpServer,
		cache:      c,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return a.RunContext(ctx)
}

// RunContext serves until ctx is cancelled, then shuts down.
func (a *App) RunContext(ctx context.Context) error {
	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	// Preload configured telescopes so the first page view is served from memory.
	go func() {
		a.registry.Warm(ctx, a.cfg.Dashboard.Telescopes)
	}()
	a.log.Info("warming telescopes", applogger.Strings("telescopes", a.cfg.Dashboard.Telescopes))

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.httpServer.ShutdownTimeout())
	defer cancel()

	var firstErr error
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
		firstErr = err
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.log.Warn("cache close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return firstErr
}
