// Package config loads the aggregator configuration from built-in defaults
// layered with environment variables (prefix BS_).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "BS_"

// Config is the root configuration for the bestseller aggregator.
type Config struct {
	Server  ServerConfig    `koanf:"server"`
	Scrape  ScrapeConfig    `koanf:"scrape"`
	Cache   CacheConfig     `koanf:"cache"`
	Columns ColumnFallbacks `koanf:"columns"`
}

// ServerConfig configures the HTTP entry point.
type ServerConfig struct {
	Port   string `koanf:"port"`
	WarmUp bool   `koanf:"warm_up"`
}

// ScrapeConfig contains general scraping configuration
type ScrapeConfig struct {
	UserAgent       string `koanf:"user_agent"`
	TimeoutMs       int    `koanf:"timeout_ms"`
	QuickTimeoutMs  int    `koanf:"quick_timeout_ms"`
	RetryCount      int    `koanf:"retry_count"`
	RetryDelayMs    int    `koanf:"retry_delay_ms"`
	SizeLimitBytes  int    `koanf:"size_limit_bytes"`
	CurlBinary      string `koanf:"curl_binary"`
	BrowserFallback bool   `koanf:"browser_fallback"`
}

// CacheConfig controls the result cache.
type CacheConfig struct {
	TTLMinutes int `koanf:"ttl_minutes"`
}

// ColumnFallbacks holds the positional column indices used when the
// spreadsheet header row does not resolve a field by name. These track one
// observed export layout and are deliberately overridable.
type ColumnFallbacks struct {
	Title         int `koanf:"title"`
	Author        int `koanf:"author"`
	Publisher     int `koanf:"publisher"`
	ProductCode   int `koanf:"product_code"`
	SaleProductID int `koanf:"sale_product_id"`
}

func (s ScrapeConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutMs) * time.Millisecond
}

func (s ScrapeConfig) QuickTimeout() time.Duration {
	return time.Duration(s.QuickTimeoutMs) * time.Millisecond
}

func (s ScrapeConfig) RetryDelay() time.Duration {
	return time.Duration(s.RetryDelayMs) * time.Millisecond
}

func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:   "8080",
			WarmUp: false,
		},
		Scrape: ScrapeConfig{
			UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64)",
			TimeoutMs:       25000,
			QuickTimeoutMs:  7000,
			RetryCount:      3,
			RetryDelayMs:    700,
			SizeLimitBytes:  6_000_000,
			CurlBinary:      "curl",
			BrowserFallback: false,
		},
		Cache: CacheConfig{
			TTLMinutes: 360, // 6 hours
		},
		Columns: ColumnFallbacks{
			Title:         3,
			Author:        9,
			Publisher:     10,
			ProductCode:   1,
			SaleProductID: 2,
		},
	}
}

// Load builds the configuration from defaults overlaid with BS_* environment
// variables, e.g. BS_SCRAPE_RETRY_COUNT=5 or BS_CACHE_TTL_MINUTES=30.
func Load() (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load defaults: %w", err)
	}

	// BS_SCRAPE_RETRY_COUNT -> scrape.retry_count
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.Replace(
			strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".", 1)
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate rejects values the pipeline cannot run with.
func (c Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port must not be empty")
	}
	if c.Scrape.RetryCount < 1 {
		return fmt.Errorf("scrape.retry_count must be at least 1, got %d", c.Scrape.RetryCount)
	}
	if c.Scrape.TimeoutMs <= 0 || c.Scrape.QuickTimeoutMs <= 0 {
		return fmt.Errorf("scrape timeouts must be positive")
	}
	if c.Scrape.RetryDelayMs < 0 {
		return fmt.Errorf("scrape.retry_delay_ms must not be negative")
	}
	if c.Cache.TTLMinutes <= 0 {
		return fmt.Errorf("cache.ttl_minutes must be positive, got %d", c.Cache.TTLMinutes)
	}
	return nil
}
