// Package main implements the ringcast CLI: one producer writes a value
// sequence into a broadcast ring and every consumer copies each value into
// its own output file until the run deadline.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/google/uuid"

	"github.com/c360/ringcast/config"
	"github.com/c360/ringcast/fanout"
	"github.com/c360/ringcast/health"
	"github.com/c360/ringcast/metric"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "ringcast"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cli, err := parseFlags(args, stderr)
	if err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	if cli.ShowVersion {
		_, _ = fmt.Fprintf(stdout, "%s version %s\n", appName, Version)
		return nil
	}
	if cli.ShowHelp {
		cli.usage()
		return nil
	}

	cfg, err := loadConfig(cli, stdin, stderr)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	logger := setupLogger(stdout, cfg.LogLevel, cfg.LogFormat, runID)
	slog.SetDefault(logger)

	if cli.Validate {
		logger.Info("Configuration is valid", "config_path", cli.ConfigPath)
		return nil
	}

	logger.Info("Starting ringcast",
		"build_time", BuildTime,
		"config_path", cli.ConfigPath)

	registry := metric.NewMetricsRegistry()
	monitor := health.NewMonitor()

	if cfg.MetricsPort > 0 {
		server := metric.NewServer(cfg.MetricsPort, "/metrics", registry, monitor)
		go func() {
			if err := server.Start(); err != nil {
				logger.Error("Metrics server failed", "error", err)
			}
		}()
		defer func() {
			if err := server.Stop(); err != nil {
				logger.Warn("Metrics server stop failed", "error", err)
			}
		}()
		logger.Info("Metrics server listening", "address", server.Address())
	}

	signalCtx, signalCancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	report, err := fanout.Run(signalCtx, fanout.Options{
		Config:   cfg,
		Registry: registry,
		Monitor:  monitor,
		Logger:   logger,
		RunID:    runID,
	})
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	for _, sub := range report.Health.SubStatuses {
		logger.Info("Component health", "name", sub.Component, "status", sub.Status, "message", sub.Message)
	}
	logger.Info("ringcast shutdown complete",
		"produced", report.Produced,
		"health", report.Health.Status)
	return nil
}

// loadConfig layers defaults, the config file, environment, flags and stdin sizing.
func loadConfig(cli *CLIConfig, stdin io.Reader, prompt io.Writer) (*config.Config, error) {
	loader := config.NewLoader()
	if cli.ConfigPath != "" {
		loader.AddLayer(cli.ConfigPath)
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	cli.apply(cfg)

	if err := readSizing(stdin, prompt, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
