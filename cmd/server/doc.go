// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

/*
Package main is the entry point for the Eat-What server.

Eat-What answers "what should I eat?" with a uniformly random dish from a
curated catalog, optionally paired with a drink, and keeps per-food and
per-day usage statistics as users accept or reject suggestions.

# Application Architecture

	RootSupervisor ("eatwhat")
	├── DataSupervisor ("data-layer")
	│   ├── Stats dispatcher (watermill gochannel, retried writes)
	│   └── Catalog refresh (eligible-set cache reload)
	├── MessagingSupervisor ("messaging-layer")
	│   └── WebSocket Hub (live usage counters)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (chi router, JSON envelope)

Component initialization order:

 1. Configuration: Koanf v2 with .env, config file and environment
 2. Logging: zerolog with JSON or console output
 3. Database: DuckDB, seeded with the built-in catalog when empty
 4. Statistics: Aggregator over the database, fed by the dispatcher
 5. Recommendation: eligible-set cache and random selector
 6. Sessions: server-side session service
 7. Supervisor Tree: Suture v4 process supervision
 8. HTTP Server: chi router with request id, CORS and rate limiting

# Configuration

Priority: environment variables > config file > defaults.

	HTTP_PORT=3001               # listen port
	HTTP_HOST=0.0.0.0
	DUCKDB_PATH=./data/eatwhat.duckdb
	SEED_CATALOG=true            # load built-in dishes when the catalog is empty
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console
	CORS_ORIGINS=*               # comma separated
	RATE_LIMIT_REQUESTS=120
	RATE_LIMIT_WINDOW=1m
	CATALOG_CACHE_TTL=5m
	SESSION_TIMEOUT=5m
	API_CACHE_TTL=30s

A .env file in the working directory (or DOTENV_PATH) is read first.
CONFIG_PATH names a YAML config file.

# Signal Handling

SIGINT and SIGTERM cancel the supervisor tree. The HTTP server drains for up
to 10 seconds, the stats dispatcher finishes in-flight events, and the
database is closed last.

# Example Usage

	export DUCKDB_PATH=./eatwhat.duckdb
	export LOG_FORMAT=console
	./eatwhat-server

	curl 'http://localhost:3001/api/recommend?includeDrink=true'
*/
package main
