// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

/*
Package config loads Eat-What configuration with koanf v2.

# Configuration Sources

Layers are applied in order, later layers overriding earlier ones:

 1. Struct defaults (defaultConfig)
 2. An optional YAML file: CONFIG_PATH, else config.yaml, config.yml or
    /etc/eatwhat/config.yaml
 3. Environment variables, through an explicit name mapping

A .env file (or DOTENV_PATH) is merged into the process environment before
the environment layer runs. Variables already set are not overridden.

# Environment Variables

	DUCKDB_PATH            database.path           ./data/eatwhat.duckdb
	DUCKDB_MAX_MEMORY      database.max_memory     512MB
	DUCKDB_THREADS         database.threads        0 (NumCPU)
	SEED_CATALOG           database.seed_catalog   true
	HTTP_HOST              server.host             0.0.0.0
	HTTP_PORT              server.port             3001
	SERVER_TIMEOUT         server.timeout          30s
	ENVIRONMENT            server.environment      development
	API_CACHE_TTL          api.cache_ttl           30s (0 disables)
	CORS_ORIGINS           security.cors_origins   * (comma separated)
	RATE_LIMIT_REQUESTS    security.rate_limit_reqs    120
	RATE_LIMIT_WINDOW      security.rate_limit_window  1m
	DISABLE_RATE_LIMIT     security.rate_limit_disabled
	LOG_LEVEL / LOG_FORMAT / LOG_CALLER
	SESSION_TIMEOUT        session.timeout         5m
	CATALOG_CACHE_TTL      catalog.cache_ttl       5m
	BATCH_MAX_ITEMS        catalog.batch_max_items 50
	STATS_DISPATCH_BUFFER / STATS_RETRY_MAX / STATS_RETRY_INTERVAL / STATS_DISPATCH_TIMEOUT

# Validation

Validate runs after unmarshalling and reports the first invalid field with
a descriptive message. Load returns the validated *Config.
*/
package config
