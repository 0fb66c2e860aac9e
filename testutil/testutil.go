// Copyright (c) 2025 Ali Abbas.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/aliabbas6622/LockItIn-Hackathon/cliparse"
	"github.com/aliabbas6622/LockItIn-Hackathon/db"
	"github.com/aliabbas6622/LockItIn-Hackathon/models"
)

// SetupTestDB creates a fresh SQLite database in a per-test temp directory.
// A single connection keeps concurrent test writes serialized the same way
// the production store serializes them.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	conn.SetMaxOpenConns(1)

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:           3000,
		DatabaseURL:    ":memory:",
		DatabaseType:   "sqlite",
		OpenAIKey:      "test-key",
		OpenAIModel:    "test-model",
		OpenAIBaseURL:  "http://localhost:0",
		GatewayTimeout: 2 * time.Second,
	}
}

// FakeGateway is a scripted synthesis gateway. Unless overridden it returns a
// canned question batch and verdict; the call counters let tests assert
// single-flight behavior.
type FakeGateway struct {
	QuestionCalls atomic.Int32
	AnalyzeCalls  atomic.Int32

	// Optional overrides. Nil means canned success.
	QuestionsFn func(ctx context.Context, topic string) ([]models.QuestionInput, error)
	AnalyzeFn   func(ctx context.Context, sessionContext string) (*models.VerdictData, error)

	// Delay is applied before each call completes, to widen race windows.
	Delay time.Duration
}

func (g *FakeGateway) GenerateQuestions(ctx context.Context, topic string) ([]models.QuestionInput, error) {
	g.QuestionCalls.Add(1)
	if g.Delay > 0 {
		time.Sleep(g.Delay)
	}
	if g.QuestionsFn != nil {
		return g.QuestionsFn(ctx, topic)
	}
	return []models.QuestionInput{
		{Text: "What is the budget per person?", Category: models.CategoryBudget},
		{Text: "When does this need to happen?", Category: models.CategoryTimeframe},
		{Text: "What would you personally prefer?", Category: models.CategoryPreference},
	}, nil
}

func (g *FakeGateway) Analyze(ctx context.Context, sessionContext string) (*models.VerdictData, error) {
	g.AnalyzeCalls.Add(1)
	if g.Delay > 0 {
		time.Sleep(g.Delay)
	}
	if g.AnalyzeFn != nil {
		return g.AnalyzeFn(ctx, sessionContext)
	}
	return &models.VerdictData{
		Title:          "Book the lake house",
		Description:    "Fits the stated budget and everyone can make the dates work.",
		BudgetScore:    82,
		TimeScore:      74,
		GroupSizeScore: 90,
		Insights: []models.Insight{
			{Title: "Budget aligned", Description: "All answers landed in the same price band."},
			{Title: "Dates are tight", Description: "Only one weekend works for everyone."},
			{Title: "Strong preference overlap", Description: "Most participants chose the same option unprompted."},
		},
	}, nil
}

// CreateTestSession inserts a session in the given lifecycle state and
// returns its ID. status should be "draft", "collecting", or "completed".
func CreateTestSession(t *testing.T, conn *sql.DB, status string) string {
	t.Helper()

	sessionID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO decision (id, topic, status, created_at)
		VALUES ($1, 'Test decision', $2, $3)
	`, sessionID, status, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}

	return sessionID
}

// AddTestQuestion inserts one question and returns its ID.
func AddTestQuestion(t *testing.T, conn *sql.DB, sessionID, text, category string, position int) string {
	t.Helper()

	questionID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO question (id, decision_id, text, category, position, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, questionID, sessionID, text, category, position, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test question: %v", err)
	}

	return questionID
}

// AddTestParticipant inserts a participant with answers and returns its ID.
func AddTestParticipant(t *testing.T, conn *sql.DB, sessionID, name string, answers map[string]string) string {
	t.Helper()

	participantID := uuid.NewString()
	now := time.Now()
	_, err := conn.Exec(`
		INSERT INTO participant (id, decision_id, name, joined_at)
		VALUES ($1, $2, $3, $4)
	`, participantID, sessionID, name, now)
	if err != nil {
		t.Fatalf("Failed to create test participant: %v", err)
	}

	for questionID, answer := range answers {
		_, err := conn.Exec(`
			INSERT INTO response (id, participant_id, question_id, answer, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.NewString(), participantID, questionID, answer, now)
		if err != nil {
			t.Fatalf("Failed to create test response: %v", err)
		}
	}

	return participantID
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
