// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()

	if cfg.Server.Port != 3001 {
		t.Errorf("Server.Port = %d, want 3001", cfg.Server.Port)
	}
	if cfg.Database.Path != "./data/eatwhat.duckdb" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if !cfg.Database.SeedCatalog {
		t.Error("Database.SeedCatalog should default to true")
	}
	if cfg.Catalog.CacheTTL != 5*time.Minute {
		t.Errorf("Catalog.CacheTTL = %v, want 5m", cfg.Catalog.CacheTTL)
	}
	if cfg.Catalog.BatchMaxItems != 50 {
		t.Errorf("Catalog.BatchMaxItems = %d, want 50", cfg.Catalog.BatchMaxItems)
	}
	if cfg.Session.Timeout != 5*time.Minute {
		t.Errorf("Session.Timeout = %v, want 5m", cfg.Session.Timeout)
	}
	if cfg.API.DefaultPageSize != 50 {
		t.Errorf("API.DefaultPageSize = %d, want 50", cfg.API.DefaultPageSize)
	}
	if cfg.API.DefaultRankLimit != 10 {
		t.Errorf("API.DefaultRankLimit = %d, want 10", cfg.API.DefaultRankLimit)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		env  string
		want string
	}{
		{"DUCKDB_PATH", "database.path"},
		{"HTTP_PORT", "server.port"},
		{"LOG_LEVEL", "logging.level"},
		{"CORS_ORIGINS", "security.cors_origins"},
		{"RATE_LIMIT_REQUESTS", "security.rate_limit_reqs"},
		{"SESSION_TIMEOUT", "session.timeout"},
		{"CATALOG_CACHE_TTL", "catalog.cache_ttl"},
		{"BATCH_MAX_ITEMS", "catalog.batch_max_items"},
		{"STATS_RETRY_MAX", "stats.retry_max"},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Parallel()
			if got := envTransformFunc(tt.env); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

func TestLoadWithKoanfEnvVars(t *testing.T) {
	t.Setenv(DotEnvPathEnvVar, filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("SESSION_TIMEOUT", "90s")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.Security.CORSOrigins, want) {
		t.Errorf("CORSOrigins = %v, want %v", cfg.Security.CORSOrigins, want)
	}
	if cfg.Session.Timeout != 90*time.Second {
		t.Errorf("Session.Timeout = %v, want 90s", cfg.Session.Timeout)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want default", cfg.Server.Host)
	}
}

func TestLoadWithKoanfConfigFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 8888
  host: "127.0.0.1"
catalog:
  batch_max_items: 20
logging:
  level: "warn"
`
	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(DotEnvPathEnvVar, filepath.Join(dir, "missing.env"))
	t.Setenv(ConfigPathEnvVar, configPath)
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Server.Port != 8888 || cfg.Server.Host != "127.0.0.1" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Catalog.BatchMaxItems != 20 {
		t.Errorf("BatchMaxItems = %d, want 20", cfg.Catalog.BatchMaxItems)
	}
	// environment beats the file
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %q, want error", cfg.Logging.Level)
	}
}

func TestLoadWithKoanfDotEnv(t *testing.T) {
	dir := t.TempDir()
	dotenv := filepath.Join(dir, "test.env")
	if err := os.WriteFile(dotenv, []byte("CATALOG_CACHE_TTL=2m\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv(DotEnvPathEnvVar, dotenv)
	t.Setenv(ConfigPathEnvVar, "")
	t.Cleanup(func() { _ = os.Unsetenv("CATALOG_CACHE_TTL") })

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Catalog.CacheTTL != 2*time.Minute {
		t.Errorf("CacheTTL = %v, want 2m", cfg.Catalog.CacheTTL)
	}
}

func TestLoadWithKoanfInvalid(t *testing.T) {
	t.Setenv(DotEnvPathEnvVar, filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv("HTTP_PORT", "70000")

	if _, err := LoadWithKoanf(); err == nil {
		t.Fatal("expected validation error for port 70000")
	}
}
