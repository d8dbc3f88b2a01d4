// Package main is the entrypoint for stationd, the weather-station daemon.
//
// stationd polls a LAN weather station on a fixed cadence, runs each set of
// readings through the inference engine, and serves the latest conditions and
// forecasts over a small HTTP API. If DATABASE_URL is configured, every
// completed cycle is also archived to Postgres.
//
// This file handles dependency wiring only; all behavior lives in the
// internal packages.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"
	"golang.org/x/sync/errgroup"

	"microweather/internal/archive"
	"microweather/internal/config"
	"microweather/internal/engine"
	"microweather/internal/sensor"
	"microweather/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	logger.Info("stationd starting",
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
		"station_url", cfg.Station.BaseURL,
		"poll_interval", cfg.Station.PollInterval().String(),
		"archive_enabled", cfg.Database.ArchiveEnabled(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := sensor.NewClient(sensor.Config{
		BaseURL: cfg.Station.BaseURL,
		Timeout: cfg.Station.RequestTimeout,
		Logger:  logger,
	})

	eng := engine.New(engine.Config{
		AltitudeM:    cfg.Engine.AltitudeM,
		ZenithMaxWM2: cfg.Engine.ZenithMaxWM2,
		Latitude:     cfg.Engine.Latitude,
		Longitude:    cfg.Engine.Longitude,
		Seed:         cfg.Engine.ForecastSeed,
		Logger:       logger,
	})

	recorder, pool, err := archive.Connect(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect cycle archive", "error", err)
		os.Exit(1)
	}
	if pool != nil {
		defer pool.Close()
	}

	holder := &server.BundleHolder{}
	srv := server.New(server.Config{
		Source: holder,
		Build:  cfg.Build,
		Logger: logger,
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// One cycle: poll, infer, publish, archive. A failed poll skips the
	// cycle; the API keeps serving the previous bundle.
	runner := newCycleRunner(func() {
		cycleCtx, cancel := context.WithTimeout(ctx, cfg.Station.PollInterval())
		defer cancel()

		readings, err := client.Fetch(cycleCtx)
		if err != nil {
			logger.Warn("poll skipped", "error", err)
			return
		}

		bundle := eng.Process(readings)
		holder.Set(bundle)
		recorder.Record(cycleCtx, bundle)
	})

	// The first cycle fires inside the scheduler at StartAsync, so singleton
	// mode serializes it against every later run. The runner's own lock
	// backs that up; the engine is not safe for concurrent cycles.
	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.SingletonModeAll()
	if _, err := scheduler.Every(cfg.Station.PollInterval()).StartImmediately().Do(runner.Run); err != nil {
		logger.Error("failed to schedule poll job", "error", err)
		os.Exit(1)
	}
	scheduler.StartAsync()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		scheduler.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("stationd exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("stationd stopped")
}

// cycleRunner serializes poll cycles. The engine owns all cross-cycle state
// (history, hysteresis buffers, RNG) and must never run two cycles at once;
// the lock holds that even if the scheduler misfires.
type cycleRunner struct {
	mu  sync.Mutex
	run func()
}

func newCycleRunner(run func()) *cycleRunner {
	return &cycleRunner{run: run}
}

// Run executes one cycle, blocking while another is in flight.
func (r *cycleRunner) Run() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.run()
}

// logLevel maps the validated config value onto a slog level.
func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
