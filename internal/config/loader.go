package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies TRADES_* environment variable overrides, and
// returns the final Config. A missing config file is not an error: the
// service is expected to run from defaults plus environment in container
// deployments. The returned Config has NOT been validated; the caller should
// invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known TRADES_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators tune the service at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Server ──
	setInt(&cfg.Server.Port, "TRADES_SERVER_PORT")
	setInt(&cfg.Server.Port, "PORT") // compatibility alias
	setStringSlice(&cfg.Server.CORSOrigins, "TRADES_SERVER_CORS_ORIGINS")

	// ── Reference data ──
	setStr(&cfg.RefData.Path, "TRADES_REFDATA_PATH")

	// ── Generator ──
	setInt(&cfg.Generator.BatchPairs, "TRADES_GENERATOR_BATCH_PAIRS")
	setInt(&cfg.Generator.BrokerPool, "TRADES_GENERATOR_BROKER_POOL")
	setInt(&cfg.Generator.MaxQuantity, "TRADES_GENERATOR_MAX_QUANTITY")
	setFloat64(&cfg.Generator.MismatchRate, "TRADES_GENERATOR_MISMATCH_RATE")

	// ── Cache ──
	setDuration(&cfg.Cache.RefreshInterval, "TRADES_CACHE_REFRESH_INTERVAL")

	// ── Sequence ──
	setStr(&cfg.Sequence.Backend, "TRADES_SEQUENCE_BACKEND")
	setStr(&cfg.Sequence.Path, "TRADES_SEQUENCE_PATH")
	setStr(&cfg.Sequence.DSN, "TRADES_SEQUENCE_DSN")
	setStr(&cfg.Sequence.Addr, "TRADES_SEQUENCE_ADDR")
	setStr(&cfg.Sequence.Password, "TRADES_SEQUENCE_PASSWORD")
	setInt(&cfg.Sequence.DB, "TRADES_SEQUENCE_DB")
	setStr(&cfg.Sequence.Key, "TRADES_SEQUENCE_KEY")

	// ── Archive ──
	setBool(&cfg.Archive.Enabled, "TRADES_ARCHIVE_ENABLED")
	setStr(&cfg.Archive.Endpoint, "TRADES_ARCHIVE_ENDPOINT")
	setStr(&cfg.Archive.Region, "TRADES_ARCHIVE_REGION")
	setStr(&cfg.Archive.Bucket, "TRADES_ARCHIVE_BUCKET")
	setStr(&cfg.Archive.AccessKey, "TRADES_ARCHIVE_ACCESS_KEY")
	setStr(&cfg.Archive.SecretKey, "TRADES_ARCHIVE_SECRET_KEY")
	setBool(&cfg.Archive.UseSSL, "TRADES_ARCHIVE_USE_SSL")
	setBool(&cfg.Archive.ForcePathStyle, "TRADES_ARCHIVE_FORCE_PATH_STYLE")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "TRADES_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
