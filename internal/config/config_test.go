package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, 15, cfg.Generator.BatchPairs)
	assert.Equal(t, 15, cfg.Generator.BrokerPool)
	assert.Equal(t, 0.3, cfg.Generator.MismatchRate)
	assert.Equal(t, 5*time.Minute, cfg.Cache.RefreshInterval.Duration)
	assert.Equal(t, "file", cfg.Sequence.Backend)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Server.Port)
}

func TestLoadFromTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
log_level = "debug"

[server]
port = 8080

[cache]
refresh_interval = "180s"

[sequence]
backend = "pebble"
path = "/var/lib/trades/seq"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 180*time.Second, cfg.Cache.RefreshInterval.Duration)
	assert.Equal(t, "pebble", cfg.Sequence.Backend)
	assert.Equal(t, "/var/lib/trades/seq", cfg.Sequence.Path)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TRADES_SERVER_PORT", "9000")
	t.Setenv("TRADES_GENERATOR_MISMATCH_RATE", "0.5")
	t.Setenv("TRADES_CACHE_REFRESH_INTERVAL", "10m")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 0.5, cfg.Generator.MismatchRate)
	assert.Equal(t, 10*time.Minute, cfg.Cache.RefreshInterval.Duration)
}

func TestPortCompatibilityAlias(t *testing.T) {
	t.Setenv("PORT", "7000")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
}

func TestValidateFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }},
		{"empty refdata path", func(c *Config) { c.RefData.Path = " " }},
		{"zero batch pairs", func(c *Config) { c.Generator.BatchPairs = 0 }},
		{"broker pool too small", func(c *Config) { c.Generator.BrokerPool = 1 }},
		{"rate above one", func(c *Config) { c.Generator.MismatchRate = 1.5 }},
		{"zero interval", func(c *Config) { c.Cache.RefreshInterval.Duration = 0 }},
		{"unknown backend", func(c *Config) { c.Sequence.Backend = "sqlite" }},
		{"postgres without dsn", func(c *Config) { c.Sequence.Backend = "postgres"; c.Sequence.DSN = "" }},
		{"archive without bucket", func(c *Config) { c.Archive.Enabled = true; c.Archive.Bucket = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
