// ReelTrack - Personal Media Tracking and Recommendations
// Copyright 2026 ReelTrack contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reeltrack/reeltrack

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 8480 {
		t.Errorf("server.port = %d, want 8480", cfg.Server.Port)
	}
	if cfg.Cache.TTL != time.Hour {
		t.Errorf("cache.ttl = %v, want 1h", cfg.Cache.TTL)
	}
	if cfg.Recommend.ListSize != 20 || cfg.Recommend.MoodMinVotes != 50 {
		t.Errorf("recommend defaults = %+v", cfg.Recommend)
	}
	if cfg.Recommend.GemMinRating != 7.0 || cfg.Recommend.GemMaxVotes != 1000 {
		t.Errorf("gem band defaults = %+v", cfg.Recommend)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("REELTRACK_SERVER_PORT", "9999")
	t.Setenv("REELTRACK_CATALOG_API_KEY", "secret")
	t.Setenv("REELTRACK_CACHE_TTL", "30m")
	t.Setenv("REELTRACK_RECOMMEND_GEM_MIN_VOTES", "200")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("server.port = %d, want env override 9999", cfg.Server.Port)
	}
	if cfg.Catalog.APIKey != "secret" {
		t.Errorf("catalog.api_key = %q", cfg.Catalog.APIKey)
	}
	if cfg.Cache.TTL != 30*time.Minute {
		t.Errorf("cache.ttl = %v, want 30m", cfg.Cache.TTL)
	}
	if cfg.Recommend.GemMinVotes != 200 {
		t.Errorf("gem_min_votes = %d, want 200", cfg.Recommend.GemMinVotes)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "server:\n  port: 8600\ncatalog:\n  api_key: from-file\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	// Env beats file for the key both define.
	t.Setenv("REELTRACK_CATALOG_API_KEY", "from-env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8600 {
		t.Errorf("server.port = %d, want file value 8600", cfg.Server.Port)
	}
	if cfg.Catalog.APIKey != "from-env" {
		t.Errorf("catalog.api_key = %q, want env to win", cfg.Catalog.APIKey)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("REELTRACK_SERVER_PORT", "0")
	if _, err := Load(); err == nil {
		t.Error("port 0 must fail validation")
	}
}

func TestEnvTransform(t *testing.T) {
	cases := map[string]string{
		"REELTRACK_SERVER_PORT":             "server.port",
		"REELTRACK_CATALOG_API_KEY":         "catalog.api_key",
		"REELTRACK_RECOMMEND_GEM_MIN_VOTES": "recommend.gem_min_votes",
		"REELTRACK_LOGGING_LEVEL":           "logging.level",
	}
	for in, want := range cases {
		if got := envTransformFunc(in); got != want {
			t.Errorf("transform(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestValidateGemBand(t *testing.T) {
	cfg := defaultConfig()
	cfg.Recommend.GemMinRating = 9.5
	cfg.Recommend.GemMaxRating = 7.0
	if err := cfg.Validate(); err == nil {
		t.Error("inverted gem rating band must fail validation")
	}
}

func TestValidateCatalogBurst(t *testing.T) {
	// Burst 0 would block every catalog request at the rate limiter.
	cfg := defaultConfig()
	cfg.Catalog.Burst = 0
	if err := cfg.Validate(); err == nil {
		t.Error("zero catalog burst must fail validation")
	}
	cfg.Catalog.Burst = -1
	if err := cfg.Validate(); err == nil {
		t.Error("negative catalog burst must fail validation")
	}
}
