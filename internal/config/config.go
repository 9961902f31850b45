// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package config

import "time"

// Config is the complete server configuration.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Server   ServerConfig   `koanf:"server"`
	API      APIConfig      `koanf:"api"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
	Catalog  CatalogConfig  `koanf:"catalog"`
	Session  SessionConfig  `koanf:"session"`
	Stats    StatsConfig    `koanf:"stats"`
}

// DatabaseConfig configures the embedded DuckDB store.
type DatabaseConfig struct {
	Path                   string `koanf:"path"`
	MaxMemory              string `koanf:"max_memory"`
	Threads                int    `koanf:"threads"` // 0 means runtime.NumCPU()
	PreserveInsertionOrder bool   `koanf:"preserve_insertion_order"`
	SeedCatalog            bool   `koanf:"seed_catalog"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// APIConfig bounds list endpoints. CacheTTL applies to the ranking and
// session summary reads; 0 disables caching.
type APIConfig struct {
	DefaultPageSize  int           `koanf:"default_page_size"`
	MaxPageSize      int           `koanf:"max_page_size"`
	DefaultRankLimit int           `koanf:"default_rank_limit"`
	MaxRankLimit     int           `koanf:"max_rank_limit"`
	CacheTTL         time.Duration `koanf:"cache_ttl"`
}

// SecurityConfig holds CORS and rate limiting. There is no authentication.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// CatalogConfig configures the eligible-set cache and user uploads.
type CatalogConfig struct {
	CacheTTL      time.Duration `koanf:"cache_ttl"`
	BatchMaxItems int           `koanf:"batch_max_items"`
}

// SessionConfig configures decision-flow sessions.
type SessionConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

// StatsConfig configures the asynchronous stat dispatcher.
type StatsConfig struct {
	DispatchBuffer  int           `koanf:"dispatch_buffer"`
	RetryMax        int           `koanf:"retry_max"`
	RetryInterval   time.Duration `koanf:"retry_interval"`
	DispatchTimeout time.Duration `koanf:"dispatch_timeout"`
}

// Load reads configuration using LoadWithKoanf.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
