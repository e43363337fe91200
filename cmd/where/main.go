package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lcalzada-xor/where/internal/app"
	"github.com/lcalzada-xor/where/internal/config"
	"github.com/lcalzada-xor/where/internal/telemetry"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// load config
	cfg, err := config.Load()
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(2)
	}

	// Setup Structured Logging
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	telemetry.InitMetrics()

	// Spans go to stdout only in debug mode
	tracerOpts := telemetry.TracerOptions{Writer: io.Discard, Version: version}
	if cfg.Debug {
		tracerOpts.Writer = os.Stdout
		tracerOpts.SampleRatio = 1
	}
	shutdownTracer, err := telemetry.InitTracer(tracerOpts)
	if err != nil {
		slog.Error("Failed to init tracer", "error", err)
	} else {
		defer func() {
			if err := shutdownTracer(context.Background()); err != nil {
				slog.Error("Failed to shutdown tracer", "error", err)
			}
		}()
	}

	// Initialize Application
	application, err := app.New(cfg)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}

	// Root Context with cancellation on Interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	slog.Info("where starting...")

	if err := application.Run(ctx); err != nil {
		slog.Error("Application error", "error", err)
		cancel()
	}
}
