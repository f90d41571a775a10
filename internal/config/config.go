// Package config defines the top-level configuration for the trade feed
// service and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by TRADES_* environment variables.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	RefData   RefDataConfig   `toml:"refdata"`
	Generator GeneratorConfig `toml:"generator"`
	Cache     CacheConfig     `toml:"cache"`
	Sequence  SequenceConfig  `toml:"sequence"`
	Archive   ArchiveConfig   `toml:"archive"`
	LogLevel  string          `toml:"log_level"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// RefDataConfig locates the (ticker, price) reference table.
type RefDataConfig struct {
	Path string `toml:"path"`
}

// GeneratorConfig holds batch generation parameters.
type GeneratorConfig struct {
	BatchPairs   int     `toml:"batch_pairs"`
	BrokerPool   int     `toml:"broker_pool"`
	MaxQuantity  int     `toml:"max_quantity"`
	MismatchRate float64 `toml:"mismatch_rate"`
}

// CacheConfig controls the snapshot refresh cycle.
type CacheConfig struct {
	RefreshInterval duration `toml:"refresh_interval"`
}

// SequenceConfig selects and parameterizes the durable counter backend.
type SequenceConfig struct {
	// Backend is one of "file", "pebble", "postgres", "redis".
	Backend string `toml:"backend"`
	// Path is the state file (file backend) or database directory (pebble).
	Path string `toml:"path"`
	// DSN is the PostgreSQL connection string (postgres backend).
	DSN string `toml:"dsn"`
	// Addr, Password, DB and Key configure the redis backend.
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Key      string `toml:"key"`
}

// ArchiveConfig holds parameters for the optional S3 snapshot archiver.
type ArchiveConfig struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "300s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "300s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// validBackends enumerates the accepted values for SequenceConfig.Backend.
var validBackends = map[string]bool{
	"file":     true,
	"pebble":   true,
	"postgres": true,
	"redis":    true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 5000,
		},
		RefData: RefDataConfig{
			Path: "trade_reference.csv",
		},
		Generator: GeneratorConfig{
			BatchPairs:   15,
			BrokerPool:   15,
			MaxQuantity:  500,
			MismatchRate: 0.3,
		},
		Cache: CacheConfig{
			RefreshInterval: duration{5 * time.Minute},
		},
		Sequence: SequenceConfig{
			Backend: "file",
			Path:    "./trades-data/sequence.json",
			Addr:    "localhost:6379",
			Key:     "trades:sequence",
		},
		Archive: ArchiveConfig{
			Enabled:        false,
			Region:         "us-east-1",
			Bucket:         "trades-snapshots",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		LogLevel: "info",
	}
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
	}

	if strings.TrimSpace(c.RefData.Path) == "" {
		errs = append(errs, "refdata: path must not be empty")
	}

	if c.Generator.BatchPairs < 1 {
		errs = append(errs, "generator: batch_pairs must be >= 1")
	}
	if c.Generator.BrokerPool < 2 {
		errs = append(errs, "generator: broker_pool must be >= 2 (a pair needs two distinct brokers)")
	}
	if c.Generator.MaxQuantity < 1 {
		errs = append(errs, "generator: max_quantity must be >= 1")
	}
	if c.Generator.MismatchRate < 0 || c.Generator.MismatchRate > 1 {
		errs = append(errs, fmt.Sprintf("generator: mismatch_rate must be in [0, 1], got %g", c.Generator.MismatchRate))
	}

	if c.Cache.RefreshInterval.Duration <= 0 {
		errs = append(errs, "cache: refresh_interval must be positive")
	}

	backend := strings.ToLower(c.Sequence.Backend)
	if !validBackends[backend] {
		errs = append(errs, fmt.Sprintf("sequence: unknown backend %q (valid: file, pebble, postgres, redis)", c.Sequence.Backend))
	}
	switch backend {
	case "file", "pebble":
		if strings.TrimSpace(c.Sequence.Path) == "" {
			errs = append(errs, "sequence: path is required for the "+backend+" backend")
		}
	case "postgres":
		if strings.TrimSpace(c.Sequence.DSN) == "" {
			errs = append(errs, "sequence: dsn is required for the postgres backend")
		}
	case "redis":
		if c.Sequence.Addr == "" {
			errs = append(errs, "sequence: addr is required for the redis backend")
		}
		if c.Sequence.Key == "" {
			errs = append(errs, "sequence: key is required for the redis backend")
		}
	}

	if c.Archive.Enabled {
		if c.Archive.Bucket == "" {
			errs = append(errs, "archive: bucket must not be empty when enabled")
		}
		if c.Archive.Region == "" {
			errs = append(errs, "archive: region must not be empty when enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
