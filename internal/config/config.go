// Package config handles service configuration and environment loading.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"rfq-platform/internal/domain"
)

// Config holds the configuration for a platform service embedding the
// authorization core.
type Config struct {
	ServiceName string  `yaml:"service_name"`
	ListenAddr  string  `yaml:"listen_addr"` // HTTP listen address (default ":8080")
	LogLevel    string  `yaml:"log_level"`   // debug, info, warn, error (default "info")
	Env         string  `yaml:"env"`         // "development" (default) or "production"
	DefaultRPS  float64 `yaml:"default_rps"` // fallback RFQ rate when entitlements carry none
	BurstSize   int     `yaml:"burst_size"`  // token-bucket burst per tenant

	// DefaultLimits seeds the trading limits attached to callers whose
	// entitlements are not yet provisioned tenant-specifically.
	DefaultLimits domain.TradingLimits `yaml:"default_limits"`

	// Warnings collects non-fatal problems found during loading. They are
	// logged by the caller once the logger exists.
	Warnings []string `yaml:"-"`
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when the service runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("SERVICE_NAME must be set")
	}
	if c.DefaultRPS <= 0 {
		return fmt.Errorf("DEFAULT_RPS must be positive, got %v", c.DefaultRPS)
	}
	if c.BurstSize <= 0 {
		return fmt.Errorf("BURST_SIZE must be positive, got %d", c.BurstSize)
	}
	return nil
}

// Load builds the configuration from environment variables, optionally
// overlaid by a YAML file named in CONFIG_FILE. Environment variables win
// over file values so deployments can patch single settings.
func Load() (*Config, error) {
	cfg := &Config{
		ServiceName:   "rfq-core",
		ListenAddr:    ":8080",
		LogLevel:      "info",
		Env:           "development",
		DefaultRPS:    10,
		BurstSize:     20,
		DefaultLimits: domain.DefaultEntitlements().Limits,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if v := os.Getenv("SERVICE_NAME"); v != "" {
		cfg.ServiceName = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Env = v
	}
	if v := os.Getenv("DEFAULT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.DefaultRPS = f
		} else {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("ignoring unparseable DEFAULT_RPS %q", v))
		}
	}
	if v := os.Getenv("BURST_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.BurstSize = n
		} else {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("ignoring unparseable BURST_SIZE %q", v))
		}
	}
	if v := os.Getenv("DEFAULT_MAX_NOTIONAL"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.DefaultLimits.MaxNotional = f
		} else {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("ignoring unparseable DEFAULT_MAX_NOTIONAL %q", v))
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
