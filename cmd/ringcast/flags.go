package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/c360/ringcast/config"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath  string
	Debug       bool
	ShowVersion bool
	ShowHelp    bool
	Validate    bool

	// values holds ring settings given on the command line; set records
	// which of them were given explicitly
	values config.Config
	set    map[string]bool

	usage func()
}

func parseFlags(args []string, stderr io.Writer) (*CLIConfig, error) {
	cli := &CLIConfig{set: make(map[string]bool)}
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&cli.ConfigPath, "config",
		getEnv("RINGCAST_CONFIG", ""),
		"Path to a JSON or YAML configuration file (env: RINGCAST_CONFIG)")
	fs.StringVar(&cli.ConfigPath, "c",
		getEnv("RINGCAST_CONFIG", ""),
		"Path to a JSON or YAML configuration file (env: RINGCAST_CONFIG)")

	fs.IntVar(&cli.values.Capacity, "capacity", 0,
		"Ring capacity in slots; read from stdin if unset (env: RINGCAST_CAPACITY)")
	fs.IntVar(&cli.values.Readers, "readers", 0,
		"Number of consumers; read from stdin if unset (env: RINGCAST_READERS)")
	fs.DurationVar(&cli.values.Duration, "duration", 0,
		"Run time, 0 for no deadline (default 60s, env: RINGCAST_DURATION)")
	fs.IntVar(&cli.values.Limit, "limit", 0,
		"Stop after producing this many values, 0 for no limit (env: RINGCAST_LIMIT)")
	fs.Float64Var(&cli.values.Rate, "rate", 0,
		"Producer values per second, 0 for unthrottled (env: RINGCAST_RATE)")
	fs.StringVar(&cli.values.OutputDir, "output-dir", "",
		"Directory for consumer output files (default \".\", env: RINGCAST_OUTPUT_DIR)")
	fs.StringVar(&cli.values.FilePattern, "file-pattern", "",
		"Output file name pattern with one %d (default \"file%d.txt\", env: RINGCAST_FILE_PATTERN)")
	fs.StringVar(&cli.values.Mode, "mode", "",
		"Ring mode: broadcast, queue (env: RINGCAST_MODE)")
	fs.StringVar(&cli.values.OverflowPolicy, "overflow-policy", "",
		"Queue overflow policy: drop_oldest, drop_newest (env: RINGCAST_OVERFLOW_POLICY)")
	fs.StringVar(&cli.values.Strategy, "strategy", "",
		"Producer strategy: block, poll (env: RINGCAST_STRATEGY)")
	fs.StringVar(&cli.values.LogLevel, "log-level", "",
		"Log level: debug, info, warn, error (env: RINGCAST_LOG_LEVEL)")
	fs.StringVar(&cli.values.LogFormat, "log-format", "",
		"Log format: json, text (env: RINGCAST_LOG_FORMAT)")
	fs.IntVar(&cli.values.MetricsPort, "metrics-port", 0,
		"Prometheus metrics port, 0 to disable (env: RINGCAST_METRICS_PORT)")

	fs.BoolVar(&cli.Debug, "debug",
		getEnvBool("RINGCAST_DEBUG", false),
		"Enable debug logging (env: RINGCAST_DEBUG)")
	fs.BoolVar(&cli.ShowVersion, "version", false, "Show version information")
	fs.BoolVar(&cli.ShowVersion, "v", false, "Show version information")
	fs.BoolVar(&cli.ShowHelp, "help", false, "Show help information")
	fs.BoolVar(&cli.ShowHelp, "h", false, "Show help information")
	fs.BoolVar(&cli.Validate, "validate", false, "Validate configuration and exit")

	fs.Usage = func() {
		printDetailedHelp(fs, stderr)
	}
	cli.usage = fs.Usage

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	fs.Visit(func(f *flag.Flag) {
		cli.set[f.Name] = true
	})

	if cli.Debug {
		cli.values.LogLevel = "debug"
		cli.set["log-level"] = true
	}

	return cli, nil
}

// apply copies explicitly given flags over cfg.
func (c *CLIConfig) apply(cfg *config.Config) {
	v := c.values
	if c.set["capacity"] {
		cfg.Capacity = v.Capacity
	}
	if c.set["readers"] {
		cfg.Readers = v.Readers
	}
	if c.set["duration"] {
		cfg.Duration = v.Duration
	}
	if c.set["limit"] {
		cfg.Limit = v.Limit
	}
	if c.set["rate"] {
		cfg.Rate = v.Rate
	}
	if c.set["output-dir"] {
		cfg.OutputDir = v.OutputDir
	}
	if c.set["file-pattern"] {
		cfg.FilePattern = v.FilePattern
	}
	if c.set["mode"] {
		cfg.Mode = v.Mode
	}
	if c.set["overflow-policy"] {
		cfg.OverflowPolicy = v.OverflowPolicy
	}
	if c.set["strategy"] {
		cfg.Strategy = v.Strategy
	}
	if c.set["log-level"] {
		cfg.LogLevel = v.LogLevel
	}
	if c.set["log-format"] {
		cfg.LogFormat = v.LogFormat
	}
	if c.set["metrics-port"] {
		cfg.MetricsPort = v.MetricsPort
	}
}

func printDetailedHelp(fs *flag.FlagSet, w io.Writer) {
	_, _ = fmt.Fprintf(w, `%s - one producer, many consumers, every consumer sees every value

Usage: %s [options]

Options:
`, appName, appName)
	fs.PrintDefaults()
	_, _ = fmt.Fprintf(w, `
Settings are layered: defaults, config file, RINGCAST_* environment, flags.
Capacity and reader count still unset after that are read from stdin.

Examples:
  # Interactive sizing, default 60s run
  echo "64 4" | %s

  # Fully specified, text logs, metrics on :9090
  %s --capacity=64 --readers=4 --duration=10s --log-format=text --metrics-port=9090

  # Config file with environment override
  RINGCAST_READERS=8 %s --config=configs/ringcast.yaml

  # Validate configuration only
  %s --config=configs/ringcast.yaml --validate

Version: %s
Build: %s
`, appName, appName, appName, appName, Version, BuildTime)
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
