// Copyright (c) 2025 Ali Abbas.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store persists decision sessions and everything they own.

# Interface

Store is the boundary the session engine talks to. SQLStore is the only
implementation; it runs on SQLite (default) or PostgreSQL.

	st := store.NewSQLStore(conn)

# Atomic lifecycle transitions

The two write operations that advance the session lifecycle bundle the write
and the transition into one transaction guarded by a compare-and-set UPDATE:

  - SaveQuestionBatch: insert questions + draft→collecting
  - SaveVerdict: insert verdict + collecting→completed

When the CAS matches zero rows the transaction rolls back and ErrConflict is
returned; the caller then reads the batch or verdict that won the race. This
is what makes "exactly one question batch, at most one verdict" hold even
without the single-flight layer above it.

# Duplicate responses

The schema does not enforce uniqueness per (participant, question).
LatestResponses resolves duplicates to the most recently written row.
*/
package store
