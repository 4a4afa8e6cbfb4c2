// Copyright (c) 2026 mostafamaarof.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the AI survey API server.

The server hosts an AI-adoption audit questionnaire for institutions. A
respondent walks through the survey one section at a time in a wizard
session; every step is validated before moving on, and the final submission
stores the institution profile, the respondent and one row per answer.

# Starting the Server

Configuration comes from flags, a .env file or the environment:

	DATABASE_URL=survey.db ADMIN_KEY_SALT=... IP_HASH_SALT=... go run . -seed seed/ai_audit_survey.yaml

Or against PostgreSQL with Redis-backed sessions:

	go run . -t postgres -d "postgres://..." -redis redis://localhost:6379/0

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file or PostgreSQL connection string
  - ADMIN_KEY_SALT (-admin-salt): Secret for admin key HMAC
  - IP_HASH_SALT (-ip-salt): Secret for hashing respondent IPs

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - SURVEY_ID (-survey): Serve this survey instead of the newest active one
  - REDIS_URL (-redis): Keep wizard sessions in Redis
  - SESSION_TTL (-session-ttl): Idle session lifetime (default: 24h)
  - BREAKDOWN_CODE (-breakdown): Question summarized by /api/stats (default: Q7)
  - SEED_FILE (-seed): YAML survey definition loaded at startup

# Architecture

  - answers: Answer values, validation, progress and payload assembly
  - wizard: Step navigation and the submit attempt
  - sessions: Wizard session persistence (memory or Redis)
  - handlers: HTTP request handlers and the store-side submission
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, metrics, JSON helpers
  - metrics: Prometheus collectors
  - client: HTTP client for the submission endpoint
  - models: Domain, request and response types
  - auth: IDs, admin keys, invite tokens and IP hashing
  - db: Schema creation and YAML seeding
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
