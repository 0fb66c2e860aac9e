// Copyright (c) 2025 Ali Abbas.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// The statements are portable across SQLite and PostgreSQL; timestamps are
// always bound explicitly by the store, never defaulted by the database.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Decision sessions
CREATE TABLE IF NOT EXISTS decision (
    id TEXT PRIMARY KEY,
    topic TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft', 'collecting', 'completed')),
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_decision_status ON decision(status);

-- Clarifying questions (one batch per session)
CREATE TABLE IF NOT EXISTS question (
    id TEXT PRIMARY KEY,
    decision_id TEXT NOT NULL REFERENCES decision(id) ON DELETE CASCADE,
    text TEXT NOT NULL,
    category TEXT NOT NULL,
    position INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_question_decision_id ON question(decision_id);

-- Participants
CREATE TABLE IF NOT EXISTS participant (
    id TEXT PRIMARY KEY,
    decision_id TEXT NOT NULL REFERENCES decision(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    joined_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_participant_decision_id ON participant(decision_id);

-- Responses
CREATE TABLE IF NOT EXISTS response (
    id TEXT PRIMARY KEY,
    participant_id TEXT NOT NULL REFERENCES participant(id) ON DELETE CASCADE,
    question_id TEXT NOT NULL REFERENCES question(id) ON DELETE CASCADE,
    answer TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_response_participant_id ON response(participant_id);
CREATE INDEX IF NOT EXISTS idx_response_question_id ON response(question_id);

-- Verdicts (at most one per session)
CREATE TABLE IF NOT EXISTS verdict (
    id TEXT PRIMARY KEY,
    decision_id TEXT NOT NULL UNIQUE REFERENCES decision(id) ON DELETE CASCADE,
    verdict_title TEXT NOT NULL,
    verdict_description TEXT NOT NULL,
    budget_score INTEGER NOT NULL CHECK (budget_score >= 0 AND budget_score <= 100),
    time_score INTEGER NOT NULL CHECK (time_score >= 0 AND time_score <= 100),
    group_size_score INTEGER NOT NULL CHECK (group_size_score >= 0 AND group_size_score <= 100),
    insights TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);
`
