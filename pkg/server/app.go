package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"BitSight/internal/service/binance"
	"BitSight/internal/usecase"
	"BitSight/pkg/cache"
	pkgch "BitSight/pkg/clickhouse"
	"BitSight/pkg/config"
	xhttp "BitSight/pkg/http"
	pkgkafka "BitSight/pkg/kafka"
	applogger "BitSight/pkg/logger"
)

// App encapsulates the application lifecycle: the startup snapshot build,
// the scheduled refresh, the optional live price stream and the HTTP server,
// plus graceful teardown of every infrastructure client.
type App struct {
	cfg       *config.Config
	log       *applogger.Logger
	handler   xhttp.Handler
	snapshots *usecase.SnapshotService
	stream    *binance.Stream
	producer  *pkgkafka.Producer
	chClient  *pkgch.Client
	cacheSvc  cache.Service

	httpServer *xhttp.Server
	cron       *cron.Cron
}

// New creates the App. stream, producer and chClient may be nil when the
// corresponding integration is disabled.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	handler xhttp.Handler,
	snapshots *usecase.SnapshotService,
	stream *binance.Stream,
	producer *pkgkafka.Producer,
	chClient *pkgch.Client,
	cacheSvc cache.Service,
) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		handler:   handler,
		snapshots: snapshots,
		stream:    stream,
		producer:  producer,
		chClient:  chClient,
		cacheSvc:  cacheSvc,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Build or restore the snapshot before accepting traffic. A failure here
	// is not fatal: the server comes up degraded and the first successful
	// refresh recovers it.
	buildCtx, buildCancel := context.WithTimeout(ctx, a.cfg.Dataset.BuildTimeout)
	if err := a.snapshots.LoadOrBuild(buildCtx); err != nil {
		a.log.Error("startup snapshot build failed, serving degraded", applogger.Error(err))
	}
	buildCancel()

	if a.cfg.Dataset.RefreshCron != "" {
		if err := a.startCron(ctx); err != nil {
			return err
		}
	}

	if a.stream != nil {
		if err := a.stream.Start(ctx); err != nil {
			a.log.Warn("live stream unavailable, price endpoint falls back to REST", applogger.Error(err))
		}
	}

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetrics(a.cfg.Metrics.Enabled, a.cfg.Metrics.Path),
	)
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("listening",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("symbol", a.cfg.Dataset.Symbol))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

func (a *App) startCron(ctx context.Context) error {
	a.cron = cron.New()
	_, err := a.cron.AddFunc(a.cfg.Dataset.RefreshCron, func() {
		refreshCtx, cancel := context.WithTimeout(ctx, a.cfg.Dataset.BuildTimeout)
		defer cancel()
		if err := a.snapshots.Refresh(refreshCtx); err != nil {
			a.log.Error("scheduled refresh failed", applogger.Error(err))
		}
	})
	if err != nil {
		return err
	}
	a.cron.Start()
	a.log.Info("refresh schedule active", applogger.String("cron", a.cfg.Dataset.RefreshCron))
	return nil
}

func (a *App) shutdown(ctx context.Context) error {
	if a.cron != nil {
		<-a.cron.Stop().Done()
	}
	if a.stream != nil {
		if err := a.stream.Close(); err != nil {
			a.log.Warn("stream close error", applogger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.log.Warn("kafka producer close error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	if a.cacheSvc != nil {
		if err := a.cacheSvc.Close(); err != nil {
			a.log.Warn("cache close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
