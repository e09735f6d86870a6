// Command evtimer-demo registers an interval timer and a one-shot timer from
// two goroutines while a third runs the timer loop, then stops the loop.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/shaovie/evtimer"
	"github.com/shaovie/evtimer/internal/config"
	"github.com/shaovie/evtimer/internal/log"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "evtimer-demo:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg := config.NewConfig()

	fs := pflag.NewFlagSet("evtimer-demo", pflag.ContinueOnError)
	cfgPath := fs.String("config", "evtimer.yaml", "path to the YAML config file")
	backend := fs.String("backend", "", "epoll or heap (default: platform default)")
	duration := fs.Duration("duration", 0, "how long the loop runs before it is stopped")
	logLevel := fs.String("log-level", "", "DEBUG, INFO, WARN or ERROR")
	metricsAddr := fs.String("metrics-addr", "", "serve prometheus metrics on this address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := cfg.Load(*cfgPath); err != nil {
		return err
	}
	if fs.Changed("backend") {
		cfg.Backend = *backend
	}
	if fs.Changed("duration") {
		cfg.Duration = *duration
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = *logLevel
	}
	if fs.Changed("metrics-addr") {
		cfg.MetricsAddr = *metricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	reg := prometheus.NewRegistry()
	opts := []evtimer.Option{
		evtimer.WithLogger(logger),
		evtimer.WithMetrics("evtimer", reg),
		evtimer.WithEventBatchSize(cfg.EventBatchSize),
	}
	switch cfg.Backend {
	case "heap":
		opts = append(opts, evtimer.WithBackend(evtimer.HeapBackend()))
	case "epoll":
		b, err := epollBackend(cfg.EventBatchSize)
		if err != nil {
			return err
		}
		opts = append(opts, evtimer.WithBackend(b))
	}
	tm, err := evtimer.New(opts...)
	if err != nil {
		return err
	}
	defer tm.Close()

	if cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		defer srv.Shutdown(context.Background())
	}

	return demo(tm, cfg, logger)
}

func demo(tm *evtimer.Manager, cfg config.Config, logger *slog.Logger) error {
	var loop errgroup.Group
	loop.Go(tm.Run)

	var adders errgroup.Group
	var ticks atomic.Int64
	adders.Go(func() error {
		_, err := tm.AddInterval(cfg.Interval.Delay, cfg.Interval.Interval, func() {
			logger.Info("interval timer fired", slog.Int64("tick", ticks.Add(1)))
		})
		return err
	})
	adders.Go(func() error {
		_, err := tm.AddOneshot(cfg.Oneshot.Delay, func() {
			logger.Info("one-shot timer fired")
		})
		return err
	})
	if err := adders.Wait(); err != nil {
		return errors.Join(err, stop(tm, &loop))
	}

	time.Sleep(cfg.Duration)
	if err := stop(tm, &loop); err != nil {
		return err
	}
	logger.Info("loop stopped",
		slog.String("backend", tm.Backend()),
		slog.Int64("interval_ticks", ticks.Load()),
		slog.Int("pending_timers", tm.Len()),
	)
	return nil
}

// stop repeats Stop until the loop returns: a Stop issued before Run set
// its running flag is overwritten by Run.
func stop(tm *evtimer.Manager, loop *errgroup.Group) error {
	done := make(chan error, 1)
	go func() { done <- loop.Wait() }()
	for {
		tm.Stop()
		select {
		case err := <-done:
			return err
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func newLogger(cfg config.Config) (*slog.Logger, func(), error) {
	lvl, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	if cfg.LogDir != "" {
		f, err := log.NewDailyFile(cfg.LogDir, "evtimer")
		if err != nil {
			return nil, nil, err
		}
		return log.NewText(f, lvl), func() { f.Close() }, nil
	}
	var w io.Writer = os.Stdout
	if cfg.DevLog {
		return log.NewDev(w, lvl), func() {}, nil
	}
	return log.New(w, lvl), func() {}, nil
}
