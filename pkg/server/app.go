package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"CorrScope/internal/scheduler"
	"CorrScope/internal/usecase"
	"CorrScope/pkg/config"
	xhttp "CorrScope/pkg/http"
	applogger "CorrScope/pkg/logger"
)

// App encapsulates the application lifecycle: HTTP server, refresh scheduler
// and ordered teardown of everything DI opened.
type App struct {
	cfg       *config.Config
	l         *applogger.Logger
	handler   xhttp.Handler
	refresher *usecase.Refresher

	httpServer *xhttp.Server
	closers    []namedCloser
}

type namedCloser struct {
	name  string
	close func() error
}

func New(cfg *config.Config, l *applogger.Logger, handler xhttp.Handler, refresher *usecase.Refresher) *App {
	return &App{cfg: cfg, l: l, handler: handler, refresher: refresher}
}

// AddCloser registers a resource to close on shutdown. Closers run in reverse
// registration order.
func (a *App) AddCloser(name string, close func() error) {
	a.closers = append(a.closers, namedCloser{name: name, close: close})
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(a.cfg.Metrics.Path),
	)

	var sched *scheduler.Scheduler
	if a.cfg.Refresh.Enabled && a.refresher != nil {
		sched = scheduler.New(ctx, a.refresher, a.l)
		if err := sched.Register(a.cfg.Refresh.Schedule); err != nil {
			return err
		}
		sched.Start()
		a.l.Info("refresh scheduled", applogger.String("cron", a.cfg.Refresh.Schedule))
	}

	if err := a.httpServer.Start(); err != nil {
		return err
	}
	a.l.Info("server started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("env", a.cfg.Environment),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.l.Info("shutdown signal received")
	cancel()
	if sched != nil {
		sched.Stop()
	}
	return a.shutdown()
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.close(); err != nil {
			a.l.Error("close "+c.name, applogger.Error(err))
		}
	}
	a.l.Info("shutdown complete")
	return nil
}
