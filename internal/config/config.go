// Package config defines audit engine configuration options.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// AcquireMode defines how the target page is acquired.
type AcquireMode string

const (
	// AcquireHTTP fetches raw HTML over HTTP without JavaScript execution.
	AcquireHTTP AcquireMode = "http"

	// AcquireRender loads the page in headless Chromium, capturing the
	// post-JavaScript DOM and real navigation timing.
	AcquireRender AcquireMode = "render"

	// AcquireAuto tries the renderer and falls back to plain HTTP when no
	// Chromium binary is available.
	AcquireAuto AcquireMode = "auto"
)

// AnalysisOptions selects which sub-analyses an audit runs. The zero value
// disables everything; use DefaultAnalysisOptions for the all-on default.
type AnalysisOptions struct {
	IncludeMetaTags    bool `json:"include_meta_tags"`
	IncludeHeadings    bool `json:"include_headings"`
	IncludeContent     bool `json:"include_content"`
	IncludeImages      bool `json:"include_images"`
	IncludeLinks       bool `json:"include_links"`
	IncludePerformance bool `json:"include_performance"`

	// UseCache serves a previous analysis when the URL and document
	// fingerprint match an unexpired cache entry.
	UseCache bool `json:"use_cache"`

	// ForceRefresh bypasses the cache lookup but still stores the result.
	ForceRefresh bool `json:"force_refresh"`

	// EnableRealtime subscribes the engine to document change events and
	// re-analyzes changed sections incrementally.
	EnableRealtime bool `json:"enable_realtime"`
}

// DefaultAnalysisOptions returns options with every extractor enabled and
// caching on.
func DefaultAnalysisOptions() AnalysisOptions {
	return AnalysisOptions{
		IncludeMetaTags:    true,
		IncludeHeadings:    true,
		IncludeContent:     true,
		IncludeImages:      true,
		IncludeLinks:       true,
		IncludePerformance: true,
		UseCache:           true,
	}
}

// Config holds all configuration for the audit service.
type Config struct {
	// === Acquisition ===

	// How pages are acquired: http, render, or auto.
	AcquireMode AcquireMode `json:"acquire_mode"`

	// User-Agent string sent on fetches.
	UserAgent string `json:"user_agent"`

	// Fetch/render timeout.
	Timeout time.Duration `json:"timeout"`

	// Maximum response body size in bytes.
	MaxBodySize int64 `json:"max_body_size"`

	// Custom Chromium binary path (empty = chromedp default lookup).
	ChromiumPath string `json:"chromium_path"`

	// Number of pooled browser contexts for the renderer.
	RenderPoolSize int `json:"render_pool_size"`

	// === Engine ===

	// TTL for the in-memory analysis cache.
	CacheTTL time.Duration `json:"cache_ttl"`

	// Maximum number of cached analyses.
	CacheMaxEntries int `json:"cache_max_entries"`

	// Debounce window for coalescing document change bursts.
	ChangeDebounce time.Duration `json:"change_debounce"`

	// Relative text-length change treated as significant (0.05 = 5%).
	TextChangeThreshold float64 `json:"text_change_threshold"`

	// === Storage ===

	// Path to the sqlite report history database.
	DatabasePath string `json:"database_path"`

	// Reports older than this are pruned. Zero disables pruning.
	ReportRetention time.Duration `json:"report_retention"`

	// === Server ===

	// HTTP listen port.
	Port string `json:"port"`

	// Per-client request rate (requests per second).
	RateLimit float64 `json:"rate_limit"`

	// Per-client rate limiter burst size.
	RateBurst int `json:"rate_burst"`

	// Log level: debug, info, warn, error.
	LogLevel string `json:"log_level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		AcquireMode:         AcquireAuto,
		UserAgent:           "PageAuditor/1.0 (+https://github.com/page-audit/auditor)",
		Timeout:             30 * time.Second,
		MaxBodySize:         10 * 1024 * 1024,
		RenderPoolSize:      2,
		CacheTTL:            5 * time.Minute,
		CacheMaxEntries:     256,
		ChangeDebounce:      500 * time.Millisecond,
		TextChangeThreshold: 0.05,
		DatabasePath:        "auditor.db",
		ReportRetention:     24 * time.Hour,
		Port:                "8080",
		RateLimit:           2,
		RateBurst:           5,
		LogLevel:            "info",
	}
}

// LoadFile reads configuration from a JSON file, applying defaults for
// missing fields.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv returns the default configuration overridden by environment
// variables. Call after godotenv has loaded any .env file.
func FromEnv() *Config {
	cfg := DefaultConfig()

	cfg.AcquireMode = AcquireMode(getEnv("AUDITOR_ACQUIRE_MODE", string(cfg.AcquireMode)))
	cfg.UserAgent = getEnv("AUDITOR_USER_AGENT", cfg.UserAgent)
	cfg.Timeout = getEnvAsDuration("AUDITOR_TIMEOUT_SECONDS", cfg.Timeout)
	cfg.ChromiumPath = getEnv("AUDITOR_CHROMIUM_PATH", cfg.ChromiumPath)
	cfg.RenderPoolSize = getEnvAsInt("AUDITOR_RENDER_POOL", cfg.RenderPoolSize)
	cfg.CacheTTL = getEnvAsDuration("AUDITOR_CACHE_TTL_SECONDS", cfg.CacheTTL)
	cfg.CacheMaxEntries = getEnvAsInt("AUDITOR_CACHE_MAX_ENTRIES", cfg.CacheMaxEntries)
	cfg.DatabasePath = getEnv("AUDITOR_DB_PATH", cfg.DatabasePath)
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.RateLimit = getEnvAsFloat("AUDITOR_RATE_LIMIT", cfg.RateLimit)
	cfg.RateBurst = getEnvAsInt("AUDITOR_RATE_BURST", cfg.RateBurst)
	cfg.LogLevel = getEnv("AUDITOR_LOG_LEVEL", cfg.LogLevel)

	return cfg
}

// Validate checks configuration consistency.
func (c *Config) Validate() error {
	switch c.AcquireMode {
	case AcquireHTTP, AcquireRender, AcquireAuto:
	default:
		return fmt.Errorf("invalid acquire mode: %q", c.AcquireMode)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.MaxBodySize <= 0 {
		return fmt.Errorf("max body size must be positive, got %d", c.MaxBodySize)
	}
	if c.CacheMaxEntries < 0 {
		return fmt.Errorf("cache max entries must be >= 0, got %d", c.CacheMaxEntries)
	}
	if c.TextChangeThreshold < 0 || c.TextChangeThreshold > 1 {
		return fmt.Errorf("text change threshold must be in [0,1], got %f", c.TextChangeThreshold)
	}
	if c.RenderPoolSize < 1 {
		c.RenderPoolSize = 1
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return time.Duration(value) * time.Second
	}
	return fallback
}
