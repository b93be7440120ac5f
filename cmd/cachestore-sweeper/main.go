// Command cachestore-sweeper periodically removes expired cache entries from a
// shared backend and publishes a report of every sweep.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/amirrezaask/cachestore/amqp"
	"github.com/amirrezaask/cachestore/cache"
	"github.com/amirrezaask/cachestore/env"
	"github.com/amirrezaask/cachestore/errors"
	"github.com/amirrezaask/cachestore/logging"
	"github.com/amirrezaask/cachestore/storage"
	"github.com/amirrezaask/cachestore/tracing"
)

type config struct {
	Backend       string        `env:"CACHE_BACKEND" envDefault:"redis"`
	BoltPath      string        `env:"BOLT_PATH" envDefault:"cachestore.db"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`
	LockKey       string        `env:"SWEEP_LOCK_KEY" envDefault:"sweeper-lock:cachestore"`
	MetricsAddr   string        `env:"METRICS_ADDR" envDefault:":9090"`
	Tracing       bool          `env:"TRACING_ENABLED"`
	Reports       bool          `env:"SWEEP_REPORTS_ENABLED"`
	CallerInfo    bool          `env:"ERRORS_CALLER_INFO"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("sweeper stopped", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	lc, err := logging.ConfigFromEnv()
	if err != nil {
		return err
	}
	if _, err := logging.Init(lc); err != nil {
		return err
	}

	var c config
	if err := env.Load(&c); err != nil {
		return err
	}
	errors.RuntimeFileInfo = c.CallerInfo
	cacheConfig, err := cache.ConfigFromEnv()
	if err != nil {
		return err
	}

	b, err := openBackend(ctx, c.Backend, c.BoltPath)
	if err != nil {
		return err
	}
	defer b.Close()

	reg := prometheus.NewRegistry()
	var instrumented storage.Backend
	instrumented, err = storage.WithMetrics(b.Backend, c.Backend, "cachestore", reg)
	if err != nil {
		return err
	}
	if c.Tracing {
		shutdown, err := tracing.Init(tracing.Config{})
		if err != nil {
			return err
		}
		defer shutdown(context.Background())
		instrumented = storage.WithTracing(instrumented, c.Backend, tracing.Tracer())
	}

	store, err := cache.New[any](instrumented, cacheConfig)
	if err != nil {
		return err
	}

	opts := []cache.SweeperOption{}
	if b.lock != nil {
		opts = append(opts, cache.WithLock(b.lock, c.LockKey, c.SweepInterval))
	}
	if c.Reports {
		ac, err := amqp.ConfigFromEnv()
		if err != nil {
			return err
		}
		publisher, conn, err := amqp.DialSweepPublisher(ctx, ac)
		if err != nil {
			return err
		}
		defer conn.Close()
		opts = append(opts, cache.WithReporter(publisher))
	}

	sweeper, err := cache.NewSweeper(store, c.SweepInterval, opts...)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              c.MetricsAddr,
		Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", "err", err)
		}
	}()

	slog.Info("starting sweeper", "backend", c.Backend, "interval", c.SweepInterval)
	stopSweeper := sweeper.Start(ctx)

	<-ctx.Done()
	stopSweeper()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
