// Copyright (c) 2025 Ali Abbas.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The SQL is portable: the same statements run on SQLite (modernc.org/sqlite,
the default engine) and PostgreSQL (lib/pq).

# Tables

The schema includes:

  - decision: Session metadata and lifecycle state
  - question: Clarifying questions in generation order (position column)
  - participant: Respondents per session
  - response: Individual answers
  - verdict: Immutable synthesized result (insights stored as JSON text)

# Relationships

	decision 1──* question
	decision 1──* participant
	decision 1──1 verdict
	participant 1──* response
	question 1──* response

All foreign keys use ON DELETE CASCADE. The verdict table carries a UNIQUE
constraint on decision_id so a second verdict can never be written even if
every upstream guard fails.
*/
package db
