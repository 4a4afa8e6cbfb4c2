// Copyright (c) 2026 mostafamaarof.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: PostgreSQL connection string or SQLite DSN (required)
  - DatabaseType: "sqlite" (default) or "postgres"
  - SurveyID: Survey served by default instead of the newest active one
  - RedisURL: Redis for wizard sessions; empty keeps sessions in memory
  - SessionTTL: Idle lifetime of a wizard session (default: 24h)
  - BreakdownCode: Question summarized by /api/stats (default: Q7)
  - SeedFile: YAML survey definition loaded at startup
  - AdminKeySalt: Secret for admin key HMAC (required)
  - IPHashSalt: Secret for respondent IP hashing (required)

# CLI Flags

	-p            Server port
	-d            Database URL
	-t            Database type
	-redis        Redis URL
	-session-ttl  Session lifetime
	-survey       Survey ID
	-breakdown    Stats question code
	-seed         Seed file
	-admin-salt   Admin key salt
	-ip-salt      IP hash salt
	-env          .env file (default ".env")

# Environment Variables

Flags fall back to environment variables:

	PORT           → -p
	DATABASE_URL   → -d
	DATABASE_TYPE  → -t
	REDIS_URL      → -redis
	SESSION_TTL    → -session-ttl
	SURVEY_ID      → -survey
	BREAKDOWN_CODE → -breakdown
	SEED_FILE      → -seed
	ADMIN_KEY_SALT → -admin-salt
	IP_HASH_SALT   → -ip-salt

Before the fallback, the .env file is loaded with godotenv. It never
overrides variables already present in the environment, and a missing file
is not an error. CLI flags take precedence over everything.

# Validation

ParseFlags returns an error if required values are missing:

  - DATABASE_URL must be provided
  - ADMIN_KEY_SALT must be provided
  - IP_HASH_SALT must be provided
*/
package cliparse
