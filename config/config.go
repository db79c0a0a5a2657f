// Package config loads state cache settings from the environment of the
// host worker.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unkn0wn-root/statecache"
	zaplog "github.com/unkn0wn-root/statecache/log/zap"
)

type Config struct {
	MaxWeightMB int64  `env:"STATE_CACHE_MAX_WEIGHT_MB" envDefault:"100"`
	Shards      int    `env:"STATE_CACHE_SHARDS" envDefault:"16"`
	LogLevel    string `env:"STATE_CACHE_LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"STATE_CACHE_LOG_FORMAT" envDefault:"json"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.MaxWeightMB <= 0 {
		return fmt.Errorf("config: STATE_CACHE_MAX_WEIGHT_MB must be positive, got %d", c.MaxWeightMB)
	}
	if c.Shards <= 0 {
		return fmt.Errorf("config: STATE_CACHE_SHARDS must be positive, got %d", c.Shards)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: STATE_CACHE_LOG_LEVEL: %w", err)
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		return fmt.Errorf("config: STATE_CACHE_LOG_FORMAT must be json or console, got %q", c.LogFormat)
	}
	return nil
}

// NewLogger builds the zap logger described by c.
func (c Config) NewLogger() (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	zc := zap.NewProductionConfig()
	if c.LogFormat == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

// Options converts c into cache options. hooks may be nil.
func (c Config) Options(l *zap.Logger, hooks statecache.Hooks) statecache.Options {
	opts := statecache.Options{
		MaxWeight: c.MaxWeightMB << 20,
		Shards:    c.Shards,
		Hooks:     hooks,
	}
	if l != nil {
		opts.Logger = zaplog.New(l)
	}
	return opts
}
