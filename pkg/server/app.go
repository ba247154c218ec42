package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	domrepo "EquityScout/internal/domain/repository"
	"EquityScout/internal/scheduler"
	pkgch "EquityScout/pkg/clickhouse"
	"EquityScout/pkg/config"
	xhttp "EquityScout/pkg/http"
	applogger "EquityScout/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	chClient   *pkgch.Client
	store      domrepo.ResultStore
	publisher  domrepo.Publisher // optional
	scheduler  *scheduler.Scheduler
	httpServer *xhttp.Server
	handler    xhttp.Handler
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	chClient *pkgch.Client,
	store domrepo.ResultStore,
	sched *scheduler.Scheduler,
	handler xhttp.Handler,
) *App {
	return &App{
		cfg:       cfg,
		logger:    logger,
		chClient:  chClient,
		store:     store,
		scheduler: sched,
		handler:   handler,
	}
}

// SetPublisher allows DI to inject the optional Kafka publisher.
func (a *App) SetPublisher(p domrepo.Publisher) {
	a.publisher = p
	if a.scheduler != nil {
		a.scheduler.SetPublisher(p)
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.store.Init(ctx); err != nil {
		a.logger.Error("result store init failed", applogger.Error(err))
		return err
	}

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}

	if a.scheduler != nil {
		if err := a.scheduler.Register(a.cfg.Screening.DailyCron); err != nil {
			a.logger.Error("scheduler register failed", applogger.Error(err))
			return err
		}
		a.scheduler.Start()
		if a.cfg.Screening.DailyCron != "" {
			a.logger.Info("daily screening scheduled",
				applogger.String("cron", a.cfg.Screening.DailyCron),
				applogger.String("market", a.cfg.Screening.DailyMarket),
			)
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	if a.scheduler != nil {
		<-a.scheduler.Stop().Done() // let an in-flight daily run finish
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	a.logger.RemoveCollector() // flush aggregated logs before the producer closes

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("publisher close error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.logger.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
