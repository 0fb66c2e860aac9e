// Copyright (c) 2025 Ali Abbas.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aliabbas6622/LockItIn-Hackathon/models"
	"github.com/aliabbas6622/LockItIn-Hackathon/room"
	"github.com/aliabbas6622/LockItIn-Hackathon/store"
	"github.com/aliabbas6622/LockItIn-Hackathon/synthesis"
	"github.com/aliabbas6622/LockItIn-Hackathon/testutil"
)

func newTestEngine(t *testing.T) (*Engine, *testutil.FakeGateway, *sql.DB) {
	t.Helper()

	conn := testutil.SetupTestDB(t)
	gw := &testutil.FakeGateway{}
	e := NewEngine(store.NewSQLStore(conn), gw, room.NewBroadcaster())
	e.retryBackoff = 10 * time.Millisecond
	t.Cleanup(e.Close)
	return e, gw, conn
}

func submitAll(t *testing.T, e *Engine, sessionID, name string, questions []models.Question) string {
	t.Helper()

	answers := make(map[string]string, len(questions))
	for _, q := range questions {
		answers[q.ID] = "Answer from " + name
	}
	participantID, err := e.SubmitResponses(context.Background(), sessionID, name, answers)
	if err != nil {
		t.Fatalf("SubmitResponses for %s failed: %v", name, err)
	}
	return participantID
}

func TestCreate(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	sess, err := e.Create(ctx, "  Where to hold the offsite  ")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if sess.Topic != "Where to hold the offsite" {
		t.Errorf("Expected trimmed topic, got %q", sess.Topic)
	}
	if sess.Status != models.StatusDraft {
		t.Errorf("Expected draft status, got %s", sess.Status)
	}

	got, err := e.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Session.ID != sess.ID || got.HasVerdict {
		t.Errorf("Unexpected session detail: %+v", got)
	}
}

func TestCreateValidation(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		topic string
	}{
		{"empty topic", ""},
		{"whitespace topic", "   "},
		{"oversized topic", strings.Repeat("x", MaxTopicLength+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Create(ctx, tt.topic)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestGetNotFound(t *testing.T) {
	e, _, _ := newTestEngine(t)

	_, err := e.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRequestQuestionsIdempotent(t *testing.T) {
	e, gw, conn := newTestEngine(t)
	ctx := context.Background()

	sess, err := e.Create(ctx, "Weekend trip destination")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	first, err := e.RequestQuestions(ctx, sess.ID)
	if err != nil {
		t.Fatalf("First RequestQuestions failed: %v", err)
	}
	if len(first) != 3 {
		t.Fatalf("Expected 3 questions, got %d", len(first))
	}

	second, err := e.RequestQuestions(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Second RequestQuestions failed: %v", err)
	}
	if len(second) != len(first) {
		t.Fatalf("Second call returned %d questions, expected %d", len(second), len(first))
	}
	for i := range first {
		if second[i].ID != first[i].ID {
			t.Errorf("Question %d changed between calls: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}

	if calls := gw.QuestionCalls.Load(); calls != 1 {
		t.Errorf("Expected 1 gateway call, got %d", calls)
	}

	var count int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM question WHERE decision_id = $1`, sess.ID).Scan(&count); err != nil {
		t.Fatalf("Failed to count questions: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected exactly one batch of 3 questions in the database, got %d rows", count)
	}
}

func TestRequestQuestionsConcurrent(t *testing.T) {
	e, gw, _ := newTestEngine(t)
	ctx := context.Background()

	sess, err := e.Create(ctx, "Team lunch venue")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// The delay holds the first generation open long enough for every caller
	// to pile onto the same flight.
	gw.Delay = 200 * time.Millisecond

	const workers = 5
	results := make([][]models.Question, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = e.RequestQuestions(ctx, sess.ID)
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("Worker %d failed: %v", i, errs[i])
		}
		if len(results[i]) != 3 {
			t.Fatalf("Worker %d got %d questions", i, len(results[i]))
		}
		if results[i][0].ID != results[0][0].ID {
			t.Errorf("Worker %d received a different batch", i)
		}
	}

	if calls := gw.QuestionCalls.Load(); calls != 1 {
		t.Errorf("Expected 1 gateway call across %d workers, got %d", workers, calls)
	}

	detail, err := e.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if detail.Session.Status != models.StatusCollecting {
		t.Errorf("Expected collecting status, got %s", detail.Session.Status)
	}
}

func TestRequestQuestionsFailureLeavesDraft(t *testing.T) {
	e, gw, _ := newTestEngine(t)
	ctx := context.Background()

	sess, err := e.Create(ctx, "Conference city")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	gw.QuestionsFn = func(ctx context.Context, topic string) ([]models.QuestionInput, error) {
		return nil, fmt.Errorf("%w: model unavailable", synthesis.ErrUpstream)
	}

	_, err = e.RequestQuestions(ctx, sess.ID)
	if !errors.Is(err, synthesis.ErrUpstream) {
		t.Fatalf("Expected upstream error, got %v", err)
	}
	// One transient retry, then give up.
	if calls := gw.QuestionCalls.Load(); calls != 2 {
		t.Errorf("Expected 2 gateway calls (original + retry), got %d", calls)
	}

	detail, err := e.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if detail.Session.Status != models.StatusDraft {
		t.Errorf("Failed generation must leave the session in draft, got %s", detail.Session.Status)
	}

	// The slot is released: a later request succeeds.
	gw.QuestionsFn = nil
	questions, err := e.RequestQuestions(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Retry after failure failed: %v", err)
	}
	if len(questions) != 3 {
		t.Errorf("Expected 3 questions on retry, got %d", len(questions))
	}
}

func TestRequestQuestionsNoRetryOnInvalid(t *testing.T) {
	e, gw, _ := newTestEngine(t)
	ctx := context.Background()

	sess, err := e.Create(ctx, "Gift for the retirement party")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	gw.QuestionsFn = func(ctx context.Context, topic string) ([]models.QuestionInput, error) {
		return nil, fmt.Errorf("%w: empty question list", synthesis.ErrInvalid)
	}

	_, err = e.RequestQuestions(ctx, sess.ID)
	if !errors.Is(err, synthesis.ErrInvalid) {
		t.Fatalf("Expected invalid error, got %v", err)
	}
	if calls := gw.QuestionCalls.Load(); calls != 1 {
		t.Errorf("Malformed output must not be retried: expected 1 call, got %d", calls)
	}
}

func TestAddQuestions(t *testing.T) {
	e, gw, _ := newTestEngine(t)
	ctx := context.Background()

	sess, err := e.Create(ctx, "Apartment or house")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	questions, err := e.AddQuestions(ctx, sess.ID, []models.QuestionInput{
		{Text: "What monthly payment works?", Category: models.CategoryBudget},
		{Text: "City center or suburbs?", Category: "neighborhood"},
	})
	if err != nil {
		t.Fatalf("AddQuestions failed: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("Expected 2 questions, got %d", len(questions))
	}
	if questions[1].Category != models.CategoryOther {
		t.Errorf("Unknown category should map to other, got %s", questions[1].Category)
	}

	// A second batch is rejected.
	_, err = e.AddQuestions(ctx, sess.ID, []models.QuestionInput{
		{Text: "One more?", Category: models.CategoryOther},
	})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("Expected ErrConflict for second batch, got %v", err)
	}

	// Generation after a manual batch returns the stored batch untouched.
	got, err := e.RequestQuestions(ctx, sess.ID)
	if err != nil {
		t.Fatalf("RequestQuestions failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != questions[0].ID {
		t.Errorf("Expected the manual batch back, got %+v", got)
	}
	if calls := gw.QuestionCalls.Load(); calls != 0 {
		t.Errorf("Expected no gateway calls, got %d", calls)
	}
}

func TestSubmitResponsesValidation(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	sess, err := e.Create(ctx, "Movie night pick")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	questions, err := e.RequestQuestions(ctx, sess.ID)
	if err != nil {
		t.Fatalf("RequestQuestions failed: %v", err)
	}

	tests := []struct {
		name    string
		pname   string
		answers map[string]string
		wantErr error
	}{
		{"empty name", "", map[string]string{questions[0].ID: "yes"}, ErrInvalidInput},
		{"no answers", "Ada", nil, ErrInvalidInput},
		{"unknown question", "Ada", map[string]string{"bogus": "yes"}, ErrNotFound},
		{"blank answer", "Ada", map[string]string{questions[0].ID: "  "}, ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.SubmitResponses(ctx, sess.ID, tt.pname, tt.answers)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	// Nothing should have been persisted by the rejected submissions.
	participants, err := e.Participants(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Participants failed: %v", err)
	}
	if len(participants) != 0 {
		t.Errorf("Expected 0 participants, got %d", len(participants))
	}
}

func TestSubmitResponsesPublishesAfterWrite(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	sess, err := e.Create(ctx, "Potluck theme")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	questions, err := e.RequestQuestions(ctx, sess.ID)
	if err != nil {
		t.Fatalf("RequestQuestions failed: %v", err)
	}

	listener, err := e.Join(ctx, sess.ID, "watcher")
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	defer e.Leave(listener)

	// First event is our own join broadcast.
	select {
	case ev := <-listener.Events():
		if ev.Kind != models.EventJoined {
			t.Fatalf("Expected joined event first, got %s", ev.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for joined event")
	}

	participantID := submitAll(t, e, sess.ID, "Ada", questions)

	select {
	case ev := <-listener.Events():
		if ev.Kind != models.EventResponse {
			t.Fatalf("Expected response event, got %s", ev.Kind)
		}
		payload, ok := ev.Payload.(models.ResponsePayload)
		if !ok {
			t.Fatalf("Unexpected payload type %T", ev.Payload)
		}
		if payload.Participant.ID != participantID {
			t.Errorf("Event names participant %s, expected %s", payload.Participant.ID, participantID)
		}

		// By the time the event is observable the write must be committed.
		participants, err := e.Participants(ctx, sess.ID)
		if err != nil {
			t.Fatalf("Participants failed: %v", err)
		}
		if len(participants) != 1 || participants[0].ID != participantID {
			t.Errorf("Participant not queryable at event delivery: %+v", participants)
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for response event")
	}
}

func TestRequestAnalysisOnDraft(t *testing.T) {
	e, gw, _ := newTestEngine(t)
	ctx := context.Background()

	sess, err := e.Create(ctx, "New office coffee machine")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err = e.RequestAnalysis(ctx, sess.ID)
	if !errors.Is(err, ErrConflict) {
		t.Errorf("Expected ErrConflict for draft session, got %v", err)
	}
	if calls := gw.AnalyzeCalls.Load(); calls != 0 {
		t.Errorf("Expected no gateway calls, got %d", calls)
	}
}

func TestRequestAnalysisConcurrent(t *testing.T) {
	e, gw, _ := newTestEngine(t)
	ctx := context.Background()

	sess, err := e.Create(ctx, "Where to hold the offsite")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	questions, err := e.RequestQuestions(ctx, sess.ID)
	if err != nil {
		t.Fatalf("RequestQuestions failed: %v", err)
	}
	submitAll(t, e, sess.ID, "Ada", questions)
	submitAll(t, e, sess.ID, "Grace", questions)

	gw.Delay = 200 * time.Millisecond

	const workers = 4
	verdicts := make([]models.Verdict, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			verdicts[i], errs[i] = e.RequestAnalysis(ctx, sess.ID)
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("Worker %d failed: %v", i, errs[i])
		}
		if verdicts[i].ID != verdicts[0].ID {
			t.Errorf("Worker %d received a different verdict: %s vs %s", i, verdicts[i].ID, verdicts[0].ID)
		}
	}

	if calls := gw.AnalyzeCalls.Load(); calls != 1 {
		t.Errorf("Expected 1 gateway call across %d workers, got %d", workers, calls)
	}

	detail, err := e.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if detail.Session.Status != models.StatusCompleted {
		t.Errorf("Expected completed status, got %s", detail.Session.Status)
	}
	if !detail.HasVerdict {
		t.Error("Expected HasVerdict true")
	}
}

func TestRequestAnalysisIdempotent(t *testing.T) {
	e, gw, _ := newTestEngine(t)
	ctx := context.Background()

	sess, err := e.Create(ctx, "Puppy name shortlist")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	questions, err := e.RequestQuestions(ctx, sess.ID)
	if err != nil {
		t.Fatalf("RequestQuestions failed: %v", err)
	}
	submitAll(t, e, sess.ID, "Ada", questions)

	first, err := e.RequestAnalysis(ctx, sess.ID)
	if err != nil {
		t.Fatalf("First RequestAnalysis failed: %v", err)
	}
	second, err := e.RequestAnalysis(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Second RequestAnalysis failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("Repeat analysis produced a new verdict: %s vs %s", second.ID, first.ID)
	}
	if calls := gw.AnalyzeCalls.Load(); calls != 1 {
		t.Errorf("Expected 1 gateway call, got %d", calls)
	}
}

func TestRequestAnalysisFailureRetryable(t *testing.T) {
	e, gw, _ := newTestEngine(t)
	ctx := context.Background()

	sess, err := e.Create(ctx, "Band name vote")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	questions, err := e.RequestQuestions(ctx, sess.ID)
	if err != nil {
		t.Fatalf("RequestQuestions failed: %v", err)
	}
	submitAll(t, e, sess.ID, "Ada", questions)

	gw.AnalyzeFn = func(ctx context.Context, sessionContext string) (*models.VerdictData, error) {
		return nil, fmt.Errorf("%w: deadline exceeded", synthesis.ErrTimeout)
	}

	_, err = e.RequestAnalysis(ctx, sess.ID)
	if !errors.Is(err, synthesis.ErrTimeout) {
		t.Fatalf("Expected timeout error, got %v", err)
	}
	if calls := gw.AnalyzeCalls.Load(); calls != 2 {
		t.Errorf("Expected 2 gateway calls (original + retry), got %d", calls)
	}

	detail, err := e.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if detail.Session.Status != models.StatusCollecting {
		t.Errorf("Failed analysis must leave the session collecting, got %s", detail.Session.Status)
	}

	gw.AnalyzeFn = nil
	verdict, err := e.RequestAnalysis(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Retry after failure failed: %v", err)
	}
	if verdict.Title == "" {
		t.Error("Expected a verdict on retry")
	}
}

func TestRequestAnalysisZeroParticipants(t *testing.T) {
	e, gw, _ := newTestEngine(t)
	ctx := context.Background()

	sess, err := e.Create(ctx, "Holiday card design")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := e.RequestQuestions(ctx, sess.ID); err != nil {
		t.Fatalf("RequestQuestions failed: %v", err)
	}

	var captured string
	gw.AnalyzeFn = func(ctx context.Context, sessionContext string) (*models.VerdictData, error) {
		captured = sessionContext
		gw.AnalyzeFn = nil
		return gw.Analyze(ctx, sessionContext)
	}

	verdict, err := e.RequestAnalysis(ctx, sess.ID)
	if err != nil {
		t.Fatalf("RequestAnalysis with no participants failed: %v", err)
	}
	if verdict.Title == "" {
		t.Error("Expected a verdict even with zero participants")
	}
	if !strings.Contains(captured, "No participants have responded yet") {
		t.Errorf("Prompt context should flag the empty session, got: %q", captured)
	}
}

func TestSubmitAfterCompleted(t *testing.T) {
	e, gw, _ := newTestEngine(t)
	ctx := context.Background()

	sess, err := e.Create(ctx, "Quarterly team outing")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	questions, err := e.RequestQuestions(ctx, sess.ID)
	if err != nil {
		t.Fatalf("RequestQuestions failed: %v", err)
	}
	submitAll(t, e, sess.ID, "Ada", questions)

	if _, err := e.RequestAnalysis(ctx, sess.ID); err != nil {
		t.Fatalf("RequestAnalysis failed: %v", err)
	}

	// A straggler's answers are still recorded, but the verdict stands.
	submitAll(t, e, sess.ID, "Grace", questions)

	detail, err := e.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if detail.Session.Status != models.StatusCompleted {
		t.Errorf("Late submission must not change completed status, got %s", detail.Session.Status)
	}
	if len(detail.Participants) != 2 {
		t.Errorf("Expected 2 participants, got %d", len(detail.Participants))
	}
	if calls := gw.AnalyzeCalls.Load(); calls != 1 {
		t.Errorf("Late submission must not re-trigger analysis, got %d calls", calls)
	}
}

func TestTyping(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	sess, err := e.Create(ctx, "Shared playlist rules")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	listener, err := e.Join(ctx, sess.ID, "Ada")
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	defer e.Leave(listener)

	<-listener.Events() // own join event

	if err := e.Typing(ctx, sess.ID, "Ada"); err != nil {
		t.Fatalf("Typing failed: %v", err)
	}

	select {
	case ev := <-listener.Events():
		if ev.Kind != models.EventTyping {
			t.Errorf("Expected typing event, got %s", ev.Kind)
		}
		payload, ok := ev.Payload.(models.TypingPayload)
		if !ok || payload.Name != "Ada" {
			t.Errorf("Unexpected typing payload: %+v", ev.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for typing event")
	}

	if err := e.Typing(ctx, "missing", "Ada"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown session, got %v", err)
	}
}
