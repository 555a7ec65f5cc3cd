// ReelTrack - Personal Media Tracking and Recommendations
// Copyright 2026 ReelTrack contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reeltrack/reeltrack

// Package config loads ReelTrack configuration with Koanf v2 layering:
// built-in defaults, then an optional YAML file, then environment
// variables (highest precedence, REELTRACK_ prefix).
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for ReelTrack.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Cache     CacheConfig     `koanf:"cache"`
	Recommend RecommendConfig `koanf:"recommend"`
	API       APIConfig       `koanf:"api"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the bind address.
	Host string `koanf:"host"`

	// Port is the HTTP listen port.
	Port int `koanf:"port"`

	// Timeout bounds request read/write.
	Timeout time.Duration `koanf:"timeout"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the database file path; ":memory:" for ephemeral use.
	Path string `koanf:"path"`

	// MaxMemory is the DuckDB memory limit (e.g. "1GB").
	MaxMemory string `koanf:"max_memory"`

	// Threads is the DuckDB thread count; 0 uses runtime.NumCPU().
	Threads int `koanf:"threads"`

	// SeedMockData loads a small deterministic fixture on startup.
	SeedMockData bool `koanf:"seed_mock_data"`
}

// CatalogConfig holds the external discovery API settings.
type CatalogConfig struct {
	// BaseURL is the catalog API root, e.g. "https://api.themoviedb.org/3".
	BaseURL string `koanf:"base_url"`

	// APIKey authenticates catalog requests.
	APIKey string `koanf:"api_key"`

	// Timeout bounds a single catalog HTTP call.
	Timeout time.Duration `koanf:"timeout"`

	// RequestsPerSecond caps the outbound request rate.
	RequestsPerSecond float64 `koanf:"requests_per_second"`

	// Burst is the rate limiter burst size.
	Burst int `koanf:"burst"`
}

// CacheConfig holds the bundle cache staleness settings.
type CacheConfig struct {
	// TTL is the bundle time-to-live; a bundle at least this old is stale.
	TTL time.Duration `koanf:"ttl"`
}

// RecommendConfig holds recommendation generation parameters.
type RecommendConfig struct {
	// ListSize caps each generated recommendation list.
	ListSize int `koanf:"list_size"`

	// TopGenres is how many of the user's most-frequent genres seed the
	// personalized query.
	TopGenres int `koanf:"top_genres"`

	// MoodMinVotes is the vote-count floor for mood bucket results.
	MoodMinVotes int `koanf:"mood_min_votes"`

	// Hidden gem band. Bounds are inclusive.
	GemMinRating float64 `koanf:"gem_min_rating"`
	GemMaxRating float64 `koanf:"gem_max_rating"`
	GemMinVotes  int     `koanf:"gem_min_votes"`
	GemMaxVotes  int     `koanf:"gem_max_votes"`
}

// APIConfig holds HTTP API limits.
type APIConfig struct {
	// RateLimitRequests is the per-IP request budget per window.
	RateLimitRequests int `koanf:"rate_limit_requests"`

	// RateLimitWindow is the rate limit window.
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by the config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    8480,
			Timeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Path:         "/data/reeltrack.duckdb",
			MaxMemory:    "1GB",
			Threads:      0,
			SeedMockData: false,
		},
		Catalog: CatalogConfig{
			BaseURL:           "https://api.themoviedb.org/3",
			APIKey:            "",
			Timeout:           15 * time.Second,
			RequestsPerSecond: 4,
			Burst:             8,
		},
		Cache: CacheConfig{
			TTL: time.Hour,
		},
		Recommend: RecommendConfig{
			ListSize:     20,
			TopGenres:    5,
			MoodMinVotes: 50,
			GemMinRating: 7.0,
			GemMaxRating: 9.0,
			GemMinVotes:  100,
			GemMaxVotes:  1000,
		},
		API: APIConfig{
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Catalog.BaseURL == "" {
		return fmt.Errorf("catalog.base_url must not be empty")
	}
	if c.Catalog.RequestsPerSecond <= 0 {
		return fmt.Errorf("catalog.requests_per_second must be positive, got %f", c.Catalog.RequestsPerSecond)
	}
	// A non-positive burst makes every limiter.Wait fail, which would
	// silently empty all recommendation lists.
	if c.Catalog.Burst < 1 {
		return fmt.Errorf("catalog.burst must be positive, got %d", c.Catalog.Burst)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %v", c.Cache.TTL)
	}
	if c.Recommend.ListSize < 1 {
		return fmt.Errorf("recommend.list_size must be positive, got %d", c.Recommend.ListSize)
	}
	if c.Recommend.TopGenres < 1 {
		return fmt.Errorf("recommend.top_genres must be positive, got %d", c.Recommend.TopGenres)
	}
	if c.Recommend.GemMinRating > c.Recommend.GemMaxRating {
		return fmt.Errorf("recommend.gem_min_rating must be <= gem_max_rating, got %f > %f",
			c.Recommend.GemMinRating, c.Recommend.GemMaxRating)
	}
	if c.Recommend.GemMinVotes > c.Recommend.GemMaxVotes {
		return fmt.Errorf("recommend.gem_min_votes must be <= gem_max_votes, got %d > %d",
			c.Recommend.GemMinVotes, c.Recommend.GemMaxVotes)
	}
	return nil
}
