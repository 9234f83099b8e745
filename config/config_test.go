package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/ringcast/errors"
	"github.com/c360/ringcast/pkg/broadcast"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func validConfig() *Config {
	cfg := Default()
	cfg.Capacity = 8
	cfg.Readers = 2
	return cfg
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.True(t, cfg.NeedsSizing())
	assert.Equal(t, 60*time.Second, cfg.Duration)
	assert.Equal(t, "file%d.txt", cfg.FilePattern)
	assert.Equal(t, broadcast.ModeBroadcast, cfg.RingMode())
	assert.Equal(t, broadcast.DropOldest, cfg.RingOverflowPolicy())
	assert.Equal(t, StrategyBlock, cfg.Strategy)
	assert.Error(t, cfg.Validate(), "defaults alone lack sizing")
}

func TestLoader_LoadJSON(t *testing.T) {
	path := writeFile(t, "ringcast.json", `{
		"capacity": 16,
		"readers": 3,
		"duration": "5s",
		"mode": "queue",
		"overflow_policy": "drop_newest",
		"strategy": "poll",
		"metrics_port": 9100
	}`)

	cfg, err := NewLoader().LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 16, cfg.Capacity)
	assert.Equal(t, 3, cfg.Readers)
	assert.Equal(t, 5*time.Second, cfg.Duration)
	assert.Equal(t, broadcast.ModeQueue, cfg.RingMode())
	assert.Equal(t, broadcast.DropNewest, cfg.RingOverflowPolicy())
	assert.Equal(t, StrategyPoll, cfg.Strategy)
	assert.Equal(t, 9100, cfg.MetricsPort)

	// Untouched fields keep their defaults
	assert.Equal(t, DefaultFilePattern, cfg.FilePattern)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.NeedsSizing())
}

func TestLoader_LoadYAML(t *testing.T) {
	path := writeFile(t, "ringcast.yaml", `
capacity: 32
readers: 0
duration: 1d
output_dir: out
file_pattern: reader-%d.bin
log_format: json
`)

	cfg, err := NewLoader().LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 32, cfg.Capacity)
	assert.Equal(t, 0, cfg.Readers)
	assert.Equal(t, 24*time.Hour, cfg.Duration)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, filepath.Join("out", "reader-2.bin"), cfg.OutputPath(2))
	assert.Equal(t, "json", cfg.LogFormat)
	assert.NoError(t, cfg.Validate())
}

func TestLoader_Layers(t *testing.T) {
	base := writeFile(t, "base.yml", "capacity: 4\nreaders: 1\nstrategy: poll\n")
	override := writeFile(t, "override.json", `{"readers": 5}`)

	loader := NewLoader()
	loader.AddLayer(base)
	loader.AddLayer(override)
	loader.EnableValidation(true)

	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Capacity)
	assert.Equal(t, 5, cfg.Readers)
	assert.Equal(t, StrategyPoll, cfg.Strategy)
}

func TestLoader_EnvOverrides(t *testing.T) {
	t.Setenv("RINGCAST_READERS", "7")
	t.Setenv("RINGCAST_DURATION", "90s")
	t.Setenv("RINGCAST_MODE", "queue")
	t.Setenv("RINGCAST_RATE", "250.5")

	path := writeFile(t, "ringcast.json", `{"capacity": 8, "readers": 2}`)

	cfg, err := NewLoader().LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Readers, "env overrides file")
	assert.Equal(t, 8, cfg.Capacity, "file value remains without env override")
	assert.Equal(t, 90*time.Second, cfg.Duration)
	assert.Equal(t, "queue", cfg.Mode)
	assert.InDelta(t, 250.5, cfg.Rate, 1e-9)
}

func TestApplyEnv_InvalidInteger(t *testing.T) {
	t.Setenv("RINGCAST_CAPACITY", "lots")

	err := ApplyEnv(Default(), EnvPrefix)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestLoader_ValidationFailure(t *testing.T) {
	path := writeFile(t, "bad.json", `{"capacity": 0, "readers": 1}`)

	loader := NewLoader()
	loader.EnableValidation(true)
	loader.AddLayer(path)

	_, err := loader.Load()
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrInvalidCapacity))
}

func TestLoader_BadInput(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		errMsg  string
	}{
		{"bad extension", "config.toml", "capacity = 1", "only JSON or YAML"},
		{"malformed json", "config.json", `{"capacity": `, "unclosed brackets"},
		{"malformed yaml", "config.yaml", "capacity: [1", "parse YAML"},
		{"bad duration", "config.json", `{"duration": "soon"}`, "parse duration"},
		{"too deep", "config.json", strings.Repeat("[", maxJSONDepth+1) + strings.Repeat("]", maxJSONDepth+1), "too deep"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			_, err := NewLoader().LoadFile(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"valid", func(*Config) {}, ""},
		{"zero readers", func(c *Config) { c.Readers = 0 }, ""},
		{"zero duration", func(c *Config) { c.Duration = 0 }, ""},
		{"negative capacity", func(c *Config) { c.Capacity = -3 }, "capacity"},
		{"too many readers", func(c *Config) { c.Readers = MaxReaders + 1 }, "readers must be"},
		{"negative duration", func(c *Config) { c.Duration = -time.Second }, "duration"},
		{"negative limit", func(c *Config) { c.Limit = -1 }, "limit"},
		{"negative rate", func(c *Config) { c.Rate = -0.5 }, "rate"},
		{"no output dir", func(c *Config) { c.OutputDir = "" }, "output_dir"},
		{"pattern without index", func(c *Config) { c.FilePattern = "out.txt" }, "file_pattern"},
		{"pattern with path", func(c *Config) { c.FilePattern = "sub/file%d.txt" }, "file name"},
		{"unknown mode", func(c *Config) { c.Mode = "fanout" }, "unknown mode"},
		{"unknown policy", func(c *Config) { c.OverflowPolicy = "block" }, "overflow_policy"},
		{"unknown strategy", func(c *Config) { c.Strategy = "spin" }, "strategy"},
		{"unknown level", func(c *Config) { c.LogLevel = "trace" }, "log_level"},
		{"unknown format", func(c *Config) { c.LogFormat = "xml" }, "log_format"},
		{"bad port", func(c *Config) { c.MetricsPort = 70000 }, "metrics_port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsInvalid(err))
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestConfig_SaveRoundTrip(t *testing.T) {
	for _, name := range []string{"saved.json", "saved.yaml"} {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Duration = 3 * time.Second
			cfg.Strategy = StrategyPoll

			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, cfg.SaveToFile(path))

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

			loaded, err := NewLoader().LoadFile(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestConfig_Clone(t *testing.T) {
	cfg := validConfig()
	clone := cfg.Clone()
	clone.Readers = 99

	assert.Equal(t, 2, cfg.Readers)
	assert.Nil(t, (*Config)(nil).Clone())
	assert.Contains(t, cfg.String(), `"capacity": 8`)
}

func TestLoader_ExampleConfig(t *testing.T) {
	path, err := filepath.Abs(filepath.Join("..", "configs", "ringcast.yaml"))
	require.NoError(t, err)

	loader := NewLoader()
	loader.EnableValidation(true)
	cfg, err := loader.LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 64, cfg.Capacity)
	assert.Equal(t, 8, cfg.Readers)
	assert.Equal(t, 30*time.Second, cfg.Duration)
	assert.False(t, cfg.NeedsSizing())
	assert.Equal(t, broadcast.ModeBroadcast, cfg.RingMode())
}
