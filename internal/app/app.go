package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vidora/vidora-backend/internal/config"
	"github.com/vidora/vidora-backend/internal/health"
	"github.com/vidora/vidora-backend/internal/observability"
)

type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Server        *http.Server
	Observability *observability.Runtime
	Readiness     *health.ProbeRunner

	ShutdownTimeout time.Duration

	stop func()
}

func New(
	cfg *config.Config,
	logger *slog.Logger,
	server *http.Server,
	runtime *observability.Runtime,
	readiness *health.ProbeRunner,
	stop func(),
) *App {
	return &App{
		Config:          cfg,
		Logger:          logger,
		Server:          server,
		Observability:   runtime,
		Readiness:       readiness,
		ShutdownTimeout: cfg.ShutdownTimeout,
		stop:            stop,
	}
}

func (a *App) StopBackgroundTasks() {
	if a.stop != nil {
		a.stop()
	}
}

// Run serves until the context is cancelled or SIGINT/SIGTERM arrives,
// then drains in-flight requests and flushes telemetry.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Logger.Info("http server listening", "addr", a.Server.Addr)
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		a.Logger.Info("shutdown requested")
		a.StopBackgroundTasks()

		drainCtx, drainCancel := context.WithTimeout(context.Background(), a.shutdownTimeout())
		defer drainCancel()
		if err := a.Server.Shutdown(drainCtx); err != nil {
			a.Logger.Error("http server shutdown", "error", err)
			_ = a.Server.Close()
		}
		return nil
	})

	err := g.Wait()

	if a.Observability != nil {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), a.shutdownTimeout())
		defer flushCancel()
		if sderr := a.Observability.Shutdown(flushCtx); sderr != nil {
			a.Logger.Error("observability shutdown", "error", sderr)
		}
	}
	return err
}

func (a *App) shutdownTimeout() time.Duration {
	if a.ShutdownTimeout > 0 {
		return a.ShutdownTimeout
	}
	return 10 * time.Second
}
