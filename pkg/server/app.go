package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"RiskPulse/internal/service/pricefeed"
	"RiskPulse/internal/usecase"
	"RiskPulse/pkg/config"
	xhttp "RiskPulse/pkg/http"
	pkgkafka "RiskPulse/pkg/kafka"
	applogger "RiskPulse/pkg/logger"
	"RiskPulse/pkg/queue"
)

// Params collects the application's runtime components. Optional components
// (collector, poller, consumer, queue, scheduler) may be nil depending on
// configuration.
type Params struct {
	Config        *config.Config
	Logger        *applogger.Logger
	HTTPServer    *xhttp.Server
	Collector     *usecase.PriceCollector
	Poller        *pricefeed.Poller
	Consumer      *pkgkafka.Consumer
	PricesHandler *usecase.KafkaPricesHandler
	Queue         *queue.RedisQueue
	Scheduler     *usecase.DailyScheduler
	Cleanup       func()
}

// App encapsulates the entire application lifecycle.
type App struct {
	p Params
}

// New creates a new App instance with all dependencies.
func New(p Params) *App {
	return &App{p: p}
}

// Run starts all configured components and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := a.p.Logger
	cfg := a.p.Config

	if a.p.Collector != nil {
		if err := a.p.Collector.Start(ctx); err != nil {
			l.Error("collector start error", applogger.Error(err))
		} else {
			l.Info("price collector started",
				applogger.Strings("symbols", cfg.Engine.Symbols))
		}
	}

	if a.p.Poller != nil {
		a.p.Poller.Start(ctx)
		l.Info("price poller started",
			applogger.String("url", cfg.PriceFeed.PollURL),
			applogger.Duration("interval", cfg.PriceFeed.PollInterval))
	}

	if a.p.Consumer != nil && a.p.PricesHandler != nil {
		a.p.Consumer.RegisterHandler(a.p.PricesHandler)
		go func() {
			if err := a.p.Consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		l.Info("kafka consumer started",
			applogger.String("topic", a.p.PricesHandler.Topic()))
	}

	if a.p.Queue != nil {
		if err := a.p.Queue.Start(); err != nil {
			l.Error("queue start error", applogger.Error(err))
		}
	}

	if a.p.Scheduler != nil {
		a.p.Scheduler.Start(ctx)
	}

	if err := a.p.HTTPServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}
	l.Info("http server started", applogger.Int("port", cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services in reverse start order.
func (a *App) shutdown(ctx context.Context) error {
	l := a.p.Logger

	shutdownCtx, cancel := context.WithTimeout(ctx, a.p.Config.Server.ShutdownTimeout)
	defer cancel()

	if a.p.Scheduler != nil {
		a.p.Scheduler.Stop()
	}

	if a.p.Queue != nil {
		if err := a.p.Queue.Stop(shutdownCtx); err != nil {
			l.Warn("queue stop error", applogger.Error(err))
		}
	}

	if a.p.Consumer != nil {
		if err := a.p.Consumer.Stop(shutdownCtx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	if a.p.Poller != nil {
		a.p.Poller.Stop()
	}

	if a.p.Collector != nil {
		if err := a.p.Collector.Shutdown(shutdownCtx); err != nil {
			l.Warn("collector stop error", applogger.Error(err))
		}
	}

	if err := a.p.HTTPServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	if a.p.Cleanup != nil {
		a.p.Cleanup()
	}

	l.Info("shutdown complete")
	return nil
}
