package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"DeBrief/internal/usecase"
	"DeBrief/pkg/config"
	xhttp "DeBrief/pkg/http"
	applogger "DeBrief/pkg/logger"
)

// App encapsulates the entire application lifecycle: the supervised
// background actors, the daily digest scheduler and the control API.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	supervisor *usecase.Supervisor
	digest     *usecase.DigestScheduler
	httpServer *xhttp.Server
}

// New creates a new App. digest and httpServer may be nil when disabled.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	supervisor *usecase.Supervisor,
	digest *usecase.DigestScheduler,
	httpServer *xhttp.Server,
) *App {
	return &App{
		cfg:        cfg,
		log:        log,
		supervisor: supervisor,
		digest:     digest,
		httpServer: httpServer,
	}
}

// Run starts every component and blocks until ctx is cancelled or the
// process receives SIGINT/SIGTERM.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		a.supervisor.Run(runCtx)
	}()
	a.log.Info("actors started", applogger.String("env", a.cfg.Environment))

	if a.digest != nil {
		if err := a.digest.Start(runCtx); err != nil {
			a.log.Error("digest scheduler start error", applogger.Error(err))
			cancel()
			<-done
			return err
		}
	}

	if a.httpServer != nil {
		if err := a.httpServer.Start(); err != nil {
			a.log.Error("http server start error", applogger.Error(err))
			cancel()
			<-done
			return err
		}
	}

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown(cancel, done)
}

// shutdown stops intake first (HTTP, digest), then cancels the actors and
// waits for an in-flight monitor tick to merge its history.
func (a *App) shutdown(cancel context.CancelFunc, done <-chan struct{}) error {
	if a.httpServer != nil {
		if err := a.httpServer.Stop(context.Background()); err != nil {
			a.log.Error("http shutdown error", applogger.Error(err))
		}
	}
	if a.digest != nil {
		a.digest.Stop()
	}

	cancel()
	a.log.Info("waiting for actors to finish")
	<-done

	a.log.Info("shutdown complete")
	return nil
}
