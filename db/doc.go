// Copyright (c) 2026 mostafamaarof.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation and survey seeding.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The same DDL runs on PostgreSQL (lib/pq) and SQLite (modernc.org/sqlite).

# Tables

  - surveys: Survey metadata, active flag and institution field mapping
  - questions: Ordered questions per survey, unique code per survey
  - question_options: Ordered options per question
  - institutions: Institution profile attached to a submission
  - invite_tokens: Single-use tokens tied to one survey
  - respondents: One row per submission
  - answers: One row per answered question or picked option

# Relationships

	surveys 1──* questions 1──* question_options
	surveys 1──* invite_tokens
	surveys 1──* respondents 1──* answers
	institutions 1──* respondents

Foreign keys cascade on delete, except respondents.institution_id which is
set to NULL.

# Seeding

Survey definitions are YAML files:

	title: AI in IT Audit 2025
	active: true
	institution_fields: {name: Q1, country: Q2, has_ai_unit: Q6}
	questions:
	  - code: Q1
	    section: Institution
	    prompt: Name of your institution
	    type: text

SeedFile parses, validates and inserts one in a transaction:

	id, created, err := db.SeedFile(ctx, conn, "seed/ai_audit_survey.yaml")

A survey with the same title is never inserted twice.
*/
package db
