package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.AcquireMode != AcquireAuto {
		t.Errorf("default acquire mode = %q", cfg.AcquireMode)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Errorf("default cache TTL = %v", cfg.CacheTTL)
	}
}

func TestDefaultAnalysisOptionsAllOn(t *testing.T) {
	opts := DefaultAnalysisOptions()
	if !opts.IncludeMetaTags || !opts.IncludeHeadings || !opts.IncludeContent ||
		!opts.IncludeImages || !opts.IncludeLinks || !opts.IncludePerformance {
		t.Error("default options should enable every extractor")
	}
	if !opts.UseCache {
		t.Error("default options should enable the cache")
	}
	if opts.ForceRefresh || opts.EnableRealtime {
		t.Error("refresh and realtime should default off")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad acquire mode", func(c *Config) { c.AcquireMode = "carrier-pigeon" }},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }},
		{"zero body size", func(c *Config) { c.MaxBodySize = 0 }},
		{"negative cache bound", func(c *Config) { c.CacheMaxEntries = -1 }},
		{"threshold above one", func(c *Config) { c.TextChangeThreshold = 1.5 }},
	}
	for _, tc := range cases {
		cfg := DefaultConfig()
		tc.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	payload := `{"acquire_mode": "http", "port": "9090", "cache_max_entries": 10}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.AcquireMode != AcquireHTTP {
		t.Errorf("acquire mode = %q", cfg.AcquireMode)
	}
	if cfg.Port != "9090" {
		t.Errorf("port = %q", cfg.Port)
	}
	// Unspecified fields keep their defaults.
	if cfg.CacheTTL != 5*time.Minute {
		t.Errorf("cache TTL = %v, want default", cfg.CacheTTL)
	}
}

func TestLoadFileErrors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(bad); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("AUDITOR_ACQUIRE_MODE", "render")
	t.Setenv("AUDITOR_CACHE_TTL_SECONDS", "120")
	t.Setenv("AUDITOR_RATE_LIMIT", "7.5")
	t.Setenv("PORT", "3001")

	cfg := FromEnv()

	if cfg.AcquireMode != AcquireRender {
		t.Errorf("acquire mode = %q", cfg.AcquireMode)
	}
	if cfg.CacheTTL != 120*time.Second {
		t.Errorf("cache TTL = %v", cfg.CacheTTL)
	}
	if cfg.RateLimit != 7.5 {
		t.Errorf("rate limit = %f", cfg.RateLimit)
	}
	if cfg.Port != "3001" {
		t.Errorf("port = %q", cfg.Port)
	}
}
