package config

import (
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/unkn0wn-root/statecache"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxWeightMB != 100 || cfg.Shards != 16 || cfg.LogLevel != "info" || cfg.LogFormat != "json" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STATE_CACHE_MAX_WEIGHT_MB", "8")
	t.Setenv("STATE_CACHE_SHARDS", "4")
	t.Setenv("STATE_CACHE_LOG_LEVEL", "debug")
	t.Setenv("STATE_CACHE_LOG_FORMAT", "console")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	opts := cfg.Options(zap.NewNop(), nil)
	if opts.MaxWeight != 8<<20 || opts.Shards != 4 || opts.Logger == nil {
		t.Fatalf("unexpected options %+v", opts)
	}
	c, err := statecache.New[[]byte](opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.MaxWeight() != 8<<20 {
		t.Fatalf("MaxWeight() = %d", c.MaxWeight())
	}

	l, err := cfg.NewLogger()
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if !l.Core().Enabled(zap.DebugLevel) {
		t.Fatalf("debug level not applied")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"STATE_CACHE_MAX_WEIGHT_MB": "0",
		"STATE_CACHE_SHARDS":        "-1",
		"STATE_CACHE_LOG_LEVEL":     "loud",
		"STATE_CACHE_LOG_FORMAT":    "xml",
	}
	for name, val := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(name, val)
			if _, err := Load(); err == nil || !strings.Contains(err.Error(), name) {
				t.Fatalf("want error naming %s, got %v", name, err)
			}
		})
	}
	t.Run("unparsable", func(t *testing.T) {
		t.Setenv("STATE_CACHE_SHARDS", "many")
		if _, err := Load(); err == nil {
			t.Fatalf("expected parse error")
		}
	})
}
