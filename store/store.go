// Copyright (c) 2025 Ali Abbas.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"

	"github.com/aliabbas6622/LockItIn-Hackathon/models"
)

var (
	// ErrNotFound indicates the requested session or record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a state transition lost its compare-and-set race.
	ErrConflict = errors.New("conflicting session state")
)

// Store is the persistence boundary for decision sessions. Every method that
// both writes records and advances the session lifecycle does so in a single
// transaction, so two concurrent "first" transitions can never both succeed.
type Store interface {
	CreateSession(ctx context.Context, s models.Session) error
	GetSession(ctx context.Context, id string) (models.Session, error)

	// SaveQuestionBatch inserts the question batch and transitions the
	// session draft→collecting atomically. Returns ErrConflict if the
	// session already left draft.
	SaveQuestionBatch(ctx context.Context, sessionID string, questions []models.Question) error
	ListQuestions(ctx context.Context, sessionID string) ([]models.Question, error)

	AppendParticipant(ctx context.Context, p models.Participant, responses []models.Response) error
	ListParticipants(ctx context.Context, sessionID string) ([]models.Participant, error)

	// LatestResponses returns at most one response per (participant,
	// question) pair; duplicates resolve to the most recently written row.
	LatestResponses(ctx context.Context, sessionID string) ([]models.Response, error)

	// SaveVerdict inserts the verdict and transitions the session
	// collecting→completed atomically. Returns ErrConflict if the session
	// is not in collecting.
	SaveVerdict(ctx context.Context, v models.Verdict) error
	GetVerdict(ctx context.Context, sessionID string) (models.Verdict, error)
}
