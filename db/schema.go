// Copyright (c) 2026 mostafamaarof.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// The DDL is shared by PostgreSQL and SQLite.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Surveys
CREATE TABLE IF NOT EXISTS surveys (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    is_active BOOLEAN NOT NULL DEFAULT FALSE,
    institution_fields TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_surveys_active ON surveys(is_active, created_at);

-- Questions
CREATE TABLE IF NOT EXISTS questions (
    id TEXT PRIMARY KEY,
    survey_id TEXT NOT NULL REFERENCES surveys(id) ON DELETE CASCADE,
    code TEXT NOT NULL,
    section TEXT NOT NULL,
    prompt TEXT NOT NULL,
    qtype TEXT NOT NULL CHECK (qtype IN ('text', 'number', 'single', 'multi', 'longtext')),
    order_index INTEGER NOT NULL DEFAULT 0,
    UNIQUE (survey_id, code)
);

CREATE INDEX IF NOT EXISTS idx_questions_survey_id ON questions(survey_id, order_index);

-- Options
CREATE TABLE IF NOT EXISTS question_options (
    id TEXT PRIMARY KEY,
    question_id TEXT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
    label TEXT NOT NULL,
    value TEXT NOT NULL,
    order_index INTEGER NOT NULL DEFAULT 0,
    UNIQUE (question_id, value)
);

CREATE INDEX IF NOT EXISTS idx_question_options_question_id ON question_options(question_id, order_index);

-- Institutions
CREATE TABLE IF NOT EXISTS institutions (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    country TEXT,
    employees_total INTEGER,
    employees_it INTEGER,
    employees_it_audit INTEGER,
    has_ai_unit BOOLEAN,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Invite Tokens
CREATE TABLE IF NOT EXISTS invite_tokens (
    token TEXT PRIMARY KEY,
    survey_id TEXT NOT NULL REFERENCES surveys(id) ON DELETE CASCADE,
    used_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_invite_tokens_survey_id ON invite_tokens(survey_id);

-- Respondents
CREATE TABLE IF NOT EXISTS respondents (
    id TEXT PRIMARY KEY,
    survey_id TEXT NOT NULL REFERENCES surveys(id) ON DELETE CASCADE,
    institution_id TEXT REFERENCES institutions(id) ON DELETE SET NULL,
    ip_hash TEXT,
    user_agent TEXT,
    token TEXT,
    submitted_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_respondents_survey_id ON respondents(survey_id);

-- Answers
CREATE TABLE IF NOT EXISTS answers (
    id TEXT PRIMARY KEY,
    respondent_id TEXT NOT NULL REFERENCES respondents(id) ON DELETE CASCADE,
    question_id TEXT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
    option_id TEXT REFERENCES question_options(id) ON DELETE CASCADE,
    value_text TEXT,
    value_number DOUBLE PRECISION
);

CREATE INDEX IF NOT EXISTS idx_answers_respondent_id ON answers(respondent_id);
CREATE INDEX IF NOT EXISTS idx_answers_option_id ON answers(option_id);
`
