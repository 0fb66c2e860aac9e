// Copyright (c) 2025 Ali Abbas.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aliabbas6622/LockItIn-Hackathon/models"
)

// SQLStore implements Store on top of database/sql. The same statements run
// against SQLite (modernc.org/sqlite) and PostgreSQL (lib/pq): both drivers
// accept $N placeholders, and timestamps are always bound from Go.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) CreateSession(ctx context.Context, sess models.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO decision (id, topic, status, created_at)
		VALUES ($1, $2, $3, $4)
	`, sess.ID, sess.Topic, sess.Status, sess.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func (s *SQLStore) GetSession(ctx context.Context, id string) (models.Session, error) {
	var sess models.Session
	err := s.db.QueryRowContext(ctx, `
		SELECT id, topic, status, created_at
		FROM decision
		WHERE id = $1
	`, id).Scan(&sess.ID, &sess.Topic, &sess.Status, &sess.CreatedAt)
	if err == sql.ErrNoRows {
		return models.Session{}, ErrNotFound
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to query session: %w", err)
	}
	return sess, nil
}

func (s *SQLStore) SaveQuestionBatch(ctx context.Context, sessionID string, questions []models.Question) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Compare-and-set: exactly one batch wins the draft→collecting race.
	res, err := tx.ExecContext(ctx, `
		UPDATE decision
		SET status = $1
		WHERE id = $2 AND status = $3
	`, models.StatusCollecting, sessionID, models.StatusDraft)
	if err != nil {
		return fmt.Errorf("failed to transition session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return ErrConflict
	}

	now := time.Now()
	for i, q := range questions {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO question (id, decision_id, text, category, position, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, q.ID, sessionID, q.Text, q.Category, i, now)
		if err != nil {
			return fmt.Errorf("failed to insert question: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit question batch: %w", err)
	}
	return nil
}

func (s *SQLStore) ListQuestions(ctx context.Context, sessionID string) ([]models.Question, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, decision_id, text, category
		FROM question
		WHERE decision_id = $1
		ORDER BY position
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	questions := []models.Question{}
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.SessionID, &q.Text, &q.Category); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *SQLStore) AppendParticipant(ctx context.Context, p models.Participant, responses []models.Response) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO participant (id, decision_id, name, joined_at)
		VALUES ($1, $2, $3, $4)
	`, p.ID, p.SessionID, p.Name, p.JoinedAt)
	if err != nil {
		return fmt.Errorf("failed to insert participant: %w", err)
	}

	for _, r := range responses {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO response (id, participant_id, question_id, answer, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, r.ID, r.ParticipantID, r.QuestionID, r.Answer, r.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert response: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit participant: %w", err)
	}
	return nil
}

func (s *SQLStore) ListParticipants(ctx context.Context, sessionID string) ([]models.Participant, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, decision_id, name, joined_at
		FROM participant
		WHERE decision_id = $1
		ORDER BY joined_at, id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	participants := []models.Participant{}
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.ID, &p.SessionID, &p.Name, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (s *SQLStore) LatestResponses(ctx context.Context, sessionID string) ([]models.Response, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.participant_id, r.question_id, r.answer, r.created_at
		FROM response r
		JOIN participant p ON p.id = r.participant_id
		WHERE p.decision_id = $1
		ORDER BY r.created_at, r.id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query responses: %w", err)
	}
	defer rows.Close()

	// Later rows overwrite earlier ones for the same (participant, question)
	// pair, so duplicates resolve to the latest answer.
	type key struct{ pid, qid string }
	order := []key{}
	latest := map[key]models.Response{}
	for rows.Next() {
		var r models.Response
		if err := rows.Scan(&r.ID, &r.ParticipantID, &r.QuestionID, &r.Answer, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}
		k := key{r.ParticipantID, r.QuestionID}
		if _, seen := latest[k]; !seen {
			order = append(order, k)
		}
		latest[k] = r
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	responses := make([]models.Response, 0, len(order))
	for _, k := range order {
		responses = append(responses, latest[k])
	}
	return responses, nil
}

func (s *SQLStore) SaveVerdict(ctx context.Context, v models.Verdict) error {
	insights, err := json.Marshal(v.Insights)
	if err != nil {
		return fmt.Errorf("failed to marshal insights: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Compare-and-set: exactly one verdict wins the collecting→completed race.
	res, err := tx.ExecContext(ctx, `
		UPDATE decision
		SET status = $1
		WHERE id = $2 AND status = $3
	`, models.StatusCompleted, v.SessionID, models.StatusCollecting)
	if err != nil {
		return fmt.Errorf("failed to transition session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return ErrConflict
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO verdict (id, decision_id, verdict_title, verdict_description,
			budget_score, time_score, group_size_score, insights, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, v.ID, v.SessionID, v.Title, v.Description,
		v.BudgetScore, v.TimeScore, v.GroupSizeScore, string(insights), v.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert verdict: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit verdict: %w", err)
	}
	return nil
}

func (s *SQLStore) GetVerdict(ctx context.Context, sessionID string) (models.Verdict, error) {
	var v models.Verdict
	var insights string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, decision_id, verdict_title, verdict_description,
			budget_score, time_score, group_size_score, insights, created_at
		FROM verdict
		WHERE decision_id = $1
	`, sessionID).Scan(&v.ID, &v.SessionID, &v.Title, &v.Description,
		&v.BudgetScore, &v.TimeScore, &v.GroupSizeScore, &insights, &v.CreatedAt)
	if err == sql.ErrNoRows {
		return models.Verdict{}, ErrNotFound
	}
	if err != nil {
		return models.Verdict{}, fmt.Errorf("failed to query verdict: %w", err)
	}

	if err := json.Unmarshal([]byte(insights), &v.Insights); err != nil {
		return models.Verdict{}, fmt.Errorf("failed to unmarshal insights: %w", err)
	}
	return v, nil
}
