package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360/ringcast/errors"
	"github.com/c360/ringcast/pkg/broadcast"
)

const (
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "RINGCAST"

	// DefaultFilePattern names consumer output files by index.
	DefaultFilePattern = "file%d.txt"

	// DefaultDuration is how long a run produces before shutting down.
	DefaultDuration = 60 * time.Second

	// MaxReaders bounds the consumer count accepted from any source.
	MaxReaders = 4096

	// Unset marks a sizing field that must still be supplied.
	Unset = -1
)

// Producer strategies
const (
	StrategyBlock = "block"
	StrategyPoll  = "poll"
)

// Config holds the settings of one ringcast run.
type Config struct {
	Capacity       int           `json:"capacity" yaml:"capacity"`
	Readers        int           `json:"readers" yaml:"readers"`
	Duration       time.Duration `json:"duration" yaml:"duration"`
	Limit          int           `json:"limit" yaml:"limit"`
	Rate           float64       `json:"rate" yaml:"rate"`
	OutputDir      string        `json:"output_dir" yaml:"output_dir"`
	FilePattern    string        `json:"file_pattern" yaml:"file_pattern"`
	Mode           string        `json:"mode" yaml:"mode"`
	OverflowPolicy string        `json:"overflow_policy" yaml:"overflow_policy"`
	Strategy       string        `json:"strategy" yaml:"strategy"`
	LogLevel       string        `json:"log_level" yaml:"log_level"`
	LogFormat      string        `json:"log_format" yaml:"log_format"`
	MetricsPort    int           `json:"metrics_port" yaml:"metrics_port"`
}

// Default returns the configuration used before any layer is applied.
// Capacity and Readers are Unset.
func Default() *Config {
	return &Config{
		Capacity:       Unset,
		Readers:        Unset,
		Duration:       DefaultDuration,
		OutputDir:      ".",
		FilePattern:    DefaultFilePattern,
		Mode:           broadcast.ModeBroadcast.String(),
		OverflowPolicy: broadcast.DropOldest.String(),
		Strategy:       StrategyBlock,
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// NeedsSizing reports whether capacity or reader count is still unset.
func (c *Config) NeedsSizing() bool {
	return c.Capacity == Unset || c.Readers == Unset
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// RingMode returns the parsed ring mode. Call Validate first.
func (c *Config) RingMode() broadcast.Mode {
	m, _ := broadcast.ParseMode(c.Mode)
	return m
}

// RingOverflowPolicy returns the parsed overflow policy. Call Validate first.
func (c *Config) RingOverflowPolicy() broadcast.OverflowPolicy {
	p, _ := broadcast.ParseOverflowPolicy(c.OverflowPolicy)
	return p
}

// OutputPath returns the output file for consumer index i.
func (c *Config) OutputPath(i int) string {
	return filepath.Join(c.OutputDir, fmt.Sprintf(c.FilePattern, i))
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Capacity <= 0 {
		return errors.WrapInvalid(errors.ErrInvalidCapacity, "Config", "Validate",
			fmt.Sprintf("capacity %d", c.Capacity))
	}
	if c.Readers < 0 || c.Readers > MaxReaders {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("readers must be between 0 and %d, got %d", MaxReaders, c.Readers))
	}
	if c.Duration < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"duration cannot be negative")
	}
	if c.Limit < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"limit cannot be negative")
	}
	if c.Rate < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"rate cannot be negative")
	}
	if c.OutputDir == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "Validate",
			"output_dir is required")
	}
	if strings.Count(c.FilePattern, "%d") != 1 || strings.Count(c.FilePattern, "%") != 1 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("file_pattern %q must contain exactly one %%d", c.FilePattern))
	}
	if strings.ContainsRune(c.FilePattern, os.PathSeparator) {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"file_pattern must be a file name, not a path")
	}
	if _, ok := broadcast.ParseMode(c.Mode); !ok {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("unknown mode %q", c.Mode))
	}
	if _, ok := broadcast.ParseOverflowPolicy(c.OverflowPolicy); !ok {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("unknown overflow_policy %q", c.OverflowPolicy))
	}
	switch c.Strategy {
	case StrategyBlock, StrategyPoll:
	default:
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("unknown strategy %q", c.Strategy))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("unknown log_level %q", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("unknown log_format %q", c.LogFormat))
	}
	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("metrics_port %d out of range", c.MetricsPort))
	}
	return nil
}

// String returns a JSON representation of the config
func (c *Config) String() string {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}

// SaveToFile writes the configuration as JSON or YAML, chosen by extension.
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return errors.WrapInvalid(err, "Config", "SaveToFile", "encode config")
	}
	return safeWriteFile(path, data)
}

// Loader handles configuration loading with layers and overrides
type Loader struct {
	layers     []string
	validation bool
	envPrefix  string
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		layers:    []string{},
		envPrefix: EnvPrefix,
	}
}

// AddLayer adds a configuration file layer
func (l *Loader) AddLayer(path string) {
	l.layers = append(l.layers, path)
}

// EnableValidation enables or disables configuration validation
func (l *Loader) EnableValidation(enable bool) {
	l.validation = enable
}

// LoadFile loads configuration from a single file
func (l *Loader) LoadFile(path string) (*Config, error) {
	l.layers = []string{path}
	return l.Load()
}

// Load loads and merges all configuration layers, then applies environment overrides.
func (l *Loader) Load() (*Config, error) {
	cfg := Default()

	for _, path := range l.layers {
		raw, err := loadRaw(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		cfg, err = mergeFromMap(cfg, raw)
		if err != nil {
			return nil, fmt.Errorf("failed to merge %s: %w", path, err)
		}
	}

	if err := ApplyEnv(cfg, l.envPrefix); err != nil {
		return nil, err
	}

	if l.validation {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// loadRaw reads a config file into a generic map with durations normalised.
func loadRaw(path string) (map[string]any, error) {
	data, err := safeReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if isYAML(path) {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, errors.WrapInvalid(err, "Loader", "loadRaw", "parse YAML")
		}
	} else {
		if err := validateJSONDepth(data); err != nil {
			return nil, fmt.Errorf("invalid JSON structure: %w", err)
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, errors.WrapInvalid(err, "Loader", "loadRaw", "parse JSON")
		}
	}

	if err := parseDurations(raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// parseDurations converts duration strings to nanoseconds for json unmarshaling
func parseDurations(raw map[string]any) error {
	s, ok := raw["duration"].(string)
	if !ok {
		return nil
	}
	d, err := parseDurationWithDays(s)
	if err != nil {
		return errors.WrapInvalid(err, "Loader", "parseDurations",
			fmt.Sprintf("parse duration %q", s))
	}
	raw["duration"] = d.Nanoseconds()
	return nil
}

// parseDurationWithDays parses durations that may include days (e.g., "14d")
func parseDurationWithDays(s string) (time.Duration, error) {
	if strings.HasSuffix(s, "d") {
		n, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return 0, err
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

// mergeFromMap overrides only the fields present in the map.
func mergeFromMap(base *Config, override map[string]any) (*Config, error) {
	if override == nil {
		return base, nil
	}

	baseJSON, err := json.Marshal(base)
	if err != nil {
		return nil, err
	}
	var merged map[string]any
	if err := json.Unmarshal(baseJSON, &merged); err != nil {
		return nil, err
	}

	for k, v := range override {
		if v == nil {
			continue
		}
		merged[k] = v
	}

	mergedJSON, err := json.Marshal(merged)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(mergedJSON, &cfg); err != nil {
		return nil, errors.WrapInvalid(err, "Loader", "mergeFromMap", "decode merged config")
	}
	return &cfg, nil
}

// ApplyEnv applies PREFIX_* environment overrides to cfg.
func ApplyEnv(cfg *Config, prefix string) error {
	lookup := func(name string) (string, bool, error) {
		key := prefix + "_" + name
		val := os.Getenv(key)
		if val == "" {
			return "", false, nil
		}
		if err := validateEnvVar(key, val); err != nil {
			return "", false, errors.WrapInvalid(err, "Config", "ApplyEnv", "validate "+key)
		}
		return val, true, nil
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"CAPACITY", &cfg.Capacity},
		{"READERS", &cfg.Readers},
		{"LIMIT", &cfg.Limit},
		{"METRICS_PORT", &cfg.MetricsPort},
	}
	for _, f := range ints {
		val, ok, err := lookup(f.name)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			return errors.WrapInvalid(err, "Config", "ApplyEnv",
				fmt.Sprintf("parse %s_%s", prefix, f.name))
		}
		*f.dst = n
	}

	val, ok, err := lookup("RATE")
	if err != nil {
		return err
	}
	if ok {
		r, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return errors.WrapInvalid(err, "Config", "ApplyEnv",
				fmt.Sprintf("parse %s_RATE", prefix))
		}
		cfg.Rate = r
	}

	val, ok, err = lookup("DURATION")
	if err != nil {
		return err
	}
	if ok {
		d, err := parseDurationWithDays(val)
		if err != nil {
			return errors.WrapInvalid(err, "Config", "ApplyEnv",
				fmt.Sprintf("parse %s_DURATION", prefix))
		}
		cfg.Duration = d
	}

	strs := []struct {
		name string
		dst  *string
	}{
		{"OUTPUT_DIR", &cfg.OutputDir},
		{"FILE_PATTERN", &cfg.FilePattern},
		{"MODE", &cfg.Mode},
		{"OVERFLOW_POLICY", &cfg.OverflowPolicy},
		{"STRATEGY", &cfg.Strategy},
		{"LOG_LEVEL", &cfg.LogLevel},
		{"LOG_FORMAT", &cfg.LogFormat},
	}
	for _, f := range strs {
		val, ok, err := lookup(f.name)
		if err != nil {
			return err
		}
		if ok {
			*f.dst = val
		}
	}

	return nil
}
