// Copyright (c) 2025 Ali Abbas.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/aliabbas6622/LockItIn-Hackathon/models"
	"github.com/aliabbas6622/LockItIn-Hackathon/room"
	"github.com/aliabbas6622/LockItIn-Hackathon/store"
	"github.com/aliabbas6622/LockItIn-Hackathon/synthesis"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflicting session state")
)

// MaxTopicLength bounds the free-text topic.
const MaxTopicLength = 500

// Gateway is the synthesis capability the engine invokes. synthesis.Client
// implements it; tests substitute a scripted fake.
type Gateway interface {
	GenerateQuestions(ctx context.Context, topic string) ([]models.QuestionInput, error)
	Analyze(ctx context.Context, sessionContext string) (*models.VerdictData, error)
}

// Engine is the process-wide coordination state for decision sessions: it
// owns the store handle, the single-flight table for synthesis operations,
// and the room broadcaster. It drives the draft→collecting→completed
// lifecycle; session state is never mutated anywhere else.
type Engine struct {
	store   store.Store
	gateway Gateway
	rooms   *room.Broadcaster
	flight  singleflight.Group

	// retryBackoff is the pause before the single transient-failure retry
	// of a synthesis call.
	retryBackoff time.Duration
}

func NewEngine(st store.Store, gw Gateway, rooms *room.Broadcaster) *Engine {
	return &Engine{
		store:        st,
		gateway:      gw,
		rooms:        rooms,
		retryBackoff: 300 * time.Millisecond,
	}
}

// Close tears down the engine, disconnecting every live listener.
func (e *Engine) Close() {
	e.rooms.Close()
}

// Create starts a new decision session in draft state.
func (e *Engine) Create(ctx context.Context, topic string) (models.Session, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return models.Session{}, fmt.Errorf("%w: topic is required", ErrInvalidInput)
	}
	if len(topic) > MaxTopicLength {
		return models.Session{}, fmt.Errorf("%w: topic exceeds %d characters", ErrInvalidInput, MaxTopicLength)
	}

	sess := models.Session{
		ID:        uuid.NewString(),
		Topic:     topic,
		Status:    models.StatusDraft,
		CreatedAt: time.Now(),
	}
	if err := e.store.CreateSession(ctx, sess); err != nil {
		return models.Session{}, err
	}

	slog.Info("session created", "session_id", sess.ID)
	return sess, nil
}

// Get returns the session with its questions, participants, and whether a
// verdict exists.
func (e *Engine) Get(ctx context.Context, sessionID string) (models.SessionDetail, error) {
	sess, err := e.getSession(ctx, sessionID)
	if err != nil {
		return models.SessionDetail{}, err
	}

	questions, err := e.store.ListQuestions(ctx, sessionID)
	if err != nil {
		return models.SessionDetail{}, err
	}
	participants, err := e.store.ListParticipants(ctx, sessionID)
	if err != nil {
		return models.SessionDetail{}, err
	}

	hasVerdict := false
	if _, err := e.store.GetVerdict(ctx, sessionID); err == nil {
		hasVerdict = true
	} else if !errors.Is(err, store.ErrNotFound) {
		return models.SessionDetail{}, err
	}

	return models.SessionDetail{
		Session:      sess,
		Questions:    questions,
		Participants: participants,
		HasVerdict:   hasVerdict,
	}, nil
}

// Questions lists the session's question batch in generation order.
func (e *Engine) Questions(ctx context.Context, sessionID string) ([]models.Question, error) {
	if _, err := e.getSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return e.store.ListQuestions(ctx, sessionID)
}

// Participants lists the session's respondents.
func (e *Engine) Participants(ctx context.Context, sessionID string) ([]models.Participant, error) {
	if _, err := e.getSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return e.store.ListParticipants(ctx, sessionID)
}

// RequestQuestions generates the clarifying-question batch for a session.
// Idempotent: a session that already has its batch returns it unchanged.
// Concurrent callers share one generation via the single-flight table; every
// waiter receives the same batch or the same error. A failed generation
// leaves the session in draft, retryable.
func (e *Engine) RequestQuestions(ctx context.Context, sessionID string) ([]models.Question, error) {
	sess, err := e.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status != models.StatusDraft {
		return e.store.ListQuestions(ctx, sessionID)
	}

	// The execution must survive any individual caller abandoning the wait,
	// so it runs on a context detached from the caller's cancellation.
	execCtx := context.WithoutCancel(ctx)
	v, err, shared := e.flight.Do("questions:"+sessionID, func() (any, error) {
		return e.generateQuestions(execCtx, sess)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		slog.Info("question generation shared with concurrent caller", "session_id", sessionID)
	}
	return v.([]models.Question), nil
}

func (e *Engine) generateQuestions(ctx context.Context, sess models.Session) ([]models.Question, error) {
	// A previous flight may have finished between the caller's state check
	// and this execution.
	current, err := e.getSession(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	if current.Status != models.StatusDraft {
		return e.store.ListQuestions(ctx, sess.ID)
	}

	inputs, err := e.gateway.GenerateQuestions(ctx, sess.Topic)
	if transient(err) {
		slog.Warn("question generation failed, retrying once", "session_id", sess.ID, "error", err)
		time.Sleep(e.retryBackoff)
		inputs, err = e.gateway.GenerateQuestions(ctx, sess.Topic)
	}
	if err != nil {
		return nil, err
	}

	questions := make([]models.Question, len(inputs))
	for i, in := range inputs {
		questions[i] = models.Question{
			ID:        uuid.NewString(),
			SessionID: sess.ID,
			Text:      in.Text,
			Category:  in.Category,
		}
	}

	err = e.store.SaveQuestionBatch(ctx, sess.ID, questions)
	if errors.Is(err, store.ErrConflict) {
		// Lost the draft→collecting race (e.g. to a manual batch): the
		// stored batch is the batch.
		return e.store.ListQuestions(ctx, sess.ID)
	}
	if err != nil {
		return nil, err
	}

	slog.Info("question batch saved", "session_id", sess.ID, "count", len(questions))
	return questions, nil
}

// AddQuestions stores a manually entered question batch, bypassing
// generation. Allowed only while the session is in draft.
func (e *Engine) AddQuestions(ctx context.Context, sessionID string, inputs []models.QuestionInput) ([]models.Question, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: questions are required", ErrInvalidInput)
	}
	if _, err := e.getSession(ctx, sessionID); err != nil {
		return nil, err
	}

	questions := make([]models.Question, len(inputs))
	for i, in := range inputs {
		text := strings.TrimSpace(in.Text)
		if text == "" {
			return nil, fmt.Errorf("%w: questions[%d].text is required", ErrInvalidInput, i)
		}
		category := in.Category
		if !models.KnownCategory(category) {
			category = models.CategoryOther
		}
		questions[i] = models.Question{
			ID:        uuid.NewString(),
			SessionID: sessionID,
			Text:      text,
			Category:  category,
		}
	}

	err := e.store.SaveQuestionBatch(ctx, sessionID, questions)
	if errors.Is(err, store.ErrConflict) {
		return nil, fmt.Errorf("%w: session already has questions", ErrConflict)
	}
	if err != nil {
		return nil, err
	}

	slog.Info("manual question batch saved", "session_id", sessionID, "count", len(questions))
	return questions, nil
}

// SubmitResponses records a participant and their answers, then broadcasts a
// response event to the session's room. The event is published only after the
// write is committed, so no listener can observe the notification before the
// data is queryable. Responses arriving after the session completed are kept
// for the record but never re-trigger analysis.
func (e *Engine) SubmitResponses(ctx context.Context, sessionID, name string, answers map[string]string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if len(answers) == 0 {
		return "", fmt.Errorf("%w: answers are required", ErrInvalidInput)
	}

	if _, err := e.getSession(ctx, sessionID); err != nil {
		return "", err
	}

	questions, err := e.store.ListQuestions(ctx, sessionID)
	if err != nil {
		return "", err
	}
	known := make(map[string]bool, len(questions))
	for _, q := range questions {
		known[q.ID] = true
	}
	for questionID, answer := range answers {
		if !known[questionID] {
			return "", fmt.Errorf("%w: unknown question id %s", ErrNotFound, questionID)
		}
		if strings.TrimSpace(answer) == "" {
			return "", fmt.Errorf("%w: answer for question %s is empty", ErrInvalidInput, questionID)
		}
	}

	now := time.Now()
	participant := models.Participant{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Name:      name,
		JoinedAt:  now,
	}
	responses := make([]models.Response, 0, len(answers))
	for questionID, answer := range answers {
		responses = append(responses, models.Response{
			ID:            uuid.NewString(),
			ParticipantID: participant.ID,
			QuestionID:    questionID,
			Answer:        answer,
			CreatedAt:     now,
		})
	}

	if err := e.store.AppendParticipant(ctx, participant, responses); err != nil {
		return "", err
	}

	e.rooms.Publish(sessionID, models.EventResponse, models.ResponsePayload{Participant: participant})

	slog.Info("responses submitted", "session_id", sessionID,
		"participant_id", participant.ID, "answers", len(responses))
	return participant.ID, nil
}

// RequestAnalysis produces the session's verdict. Idempotent: a completed
// session returns its stored verdict. A draft session (no questions yet)
// fails with ErrConflict. Concurrent callers share one analysis via the
// single-flight table and all receive the same verdict or the same error.
func (e *Engine) RequestAnalysis(ctx context.Context, sessionID string) (models.Verdict, error) {
	sess, err := e.getSession(ctx, sessionID)
	if err != nil {
		return models.Verdict{}, err
	}

	if v, err := e.store.GetVerdict(ctx, sessionID); err == nil {
		return v, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return models.Verdict{}, err
	}

	if sess.Status == models.StatusDraft {
		return models.Verdict{}, fmt.Errorf("%w: session has no questions yet", ErrConflict)
	}

	execCtx := context.WithoutCancel(ctx)
	v, err, shared := e.flight.Do("analysis:"+sessionID, func() (any, error) {
		return e.analyze(execCtx, sess)
	})
	if err != nil {
		return models.Verdict{}, err
	}
	if shared {
		slog.Info("analysis shared with concurrent caller", "session_id", sessionID)
	}
	return v.(models.Verdict), nil
}

func (e *Engine) analyze(ctx context.Context, sess models.Session) (models.Verdict, error) {
	if v, err := e.store.GetVerdict(ctx, sess.ID); err == nil {
		return v, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return models.Verdict{}, err
	}

	prompt, err := e.buildAnalysisContext(ctx, sess)
	if err != nil {
		return models.Verdict{}, err
	}

	data, err := e.gateway.Analyze(ctx, prompt)
	if transient(err) {
		slog.Warn("analysis failed, retrying once", "session_id", sess.ID, "error", err)
		time.Sleep(e.retryBackoff)
		data, err = e.gateway.Analyze(ctx, prompt)
	}
	if err != nil {
		return models.Verdict{}, err
	}

	verdict := models.Verdict{
		ID:             uuid.NewString(),
		SessionID:      sess.ID,
		Title:          data.Title,
		Description:    data.Description,
		BudgetScore:    data.BudgetScore,
		TimeScore:      data.TimeScore,
		GroupSizeScore: data.GroupSizeScore,
		Insights:       data.Insights,
		CreatedAt:      time.Now(),
	}

	err = e.store.SaveVerdict(ctx, verdict)
	if errors.Is(err, store.ErrConflict) {
		return e.getStoredVerdict(ctx, sess.ID)
	}
	if err != nil {
		return models.Verdict{}, err
	}

	slog.Info("verdict saved", "session_id", sess.ID, "verdict_id", verdict.ID)
	return verdict, nil
}

// Analysis returns the stored verdict, if the session has one.
func (e *Engine) Analysis(ctx context.Context, sessionID string) (models.Verdict, error) {
	if _, err := e.getSession(ctx, sessionID); err != nil {
		return models.Verdict{}, err
	}
	return e.getStoredVerdict(ctx, sessionID)
}

// Join subscribes a listener to the session's room and broadcasts the join.
func (e *Engine) Join(ctx context.Context, sessionID, name string) (*room.Listener, error) {
	if _, err := e.getSession(ctx, sessionID); err != nil {
		return nil, err
	}
	l := e.rooms.Subscribe(sessionID)
	e.rooms.Publish(sessionID, models.EventJoined, models.JoinedPayload{Name: name})
	return l, nil
}

// Leave removes a live listener.
func (e *Engine) Leave(l *room.Listener) {
	e.rooms.Unsubscribe(l)
}

// Typing broadcasts a typing notification. Throttling is the client's job;
// the engine only fans out what was published.
func (e *Engine) Typing(ctx context.Context, sessionID, name string) error {
	if _, err := e.getSession(ctx, sessionID); err != nil {
		return err
	}
	e.rooms.Publish(sessionID, models.EventTyping, models.TypingPayload{Name: name})
	return nil
}

func (e *Engine) getSession(ctx context.Context, sessionID string) (models.Session, error) {
	sess, err := e.store.GetSession(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Session{}, fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
	}
	return sess, err
}

func (e *Engine) getStoredVerdict(ctx context.Context, sessionID string) (models.Verdict, error) {
	v, err := e.store.GetVerdict(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Verdict{}, fmt.Errorf("%w: no verdict for session %s", ErrNotFound, sessionID)
	}
	return v, err
}

// buildAnalysisContext renders the session's questions, participants, and
// deduplicated answers into the prompt context for the analyst.
func (e *Engine) buildAnalysisContext(ctx context.Context, sess models.Session) (string, error) {
	questions, err := e.store.ListQuestions(ctx, sess.ID)
	if err != nil {
		return "", err
	}
	participants, err := e.store.ListParticipants(ctx, sess.ID)
	if err != nil {
		return "", err
	}
	responses, err := e.store.LatestResponses(ctx, sess.ID)
	if err != nil {
		return "", err
	}

	names := make(map[string]string, len(participants))
	for _, p := range participants {
		names[p.ID] = p.Name
	}
	// participant -> question -> latest answer
	answers := make(map[string]map[string]string, len(participants))
	for _, r := range responses {
		if answers[r.ParticipantID] == nil {
			answers[r.ParticipantID] = make(map[string]string)
		}
		answers[r.ParticipantID][r.QuestionID] = r.Answer
	}

	var b strings.Builder
	fmt.Fprintf(&b, "The group is deciding: %q\n\n", sess.Topic)

	if len(participants) == 0 {
		b.WriteString("No participants have responded yet. Base the verdict on the topic alone and say so in the description.\n\n")
	} else {
		b.WriteString("Participants:\n")
		for _, p := range participants {
			fmt.Fprintf(&b, "- %s (responded %s)\n", p.Name, humanize.Time(p.JoinedAt))
		}
		b.WriteString("\n")
	}

	b.WriteString("Questions and answers:\n")
	for i, q := range questions {
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, q.Category, q.Text)
		for _, p := range participants {
			if answer, ok := answers[p.ID][q.ID]; ok {
				fmt.Fprintf(&b, "   - %s: %s\n", names[p.ID], answer)
			}
		}
	}

	return b.String(), nil
}

// transient reports whether a gateway failure is worth one retry.
func transient(err error) bool {
	return errors.Is(err, synthesis.ErrUpstream) || errors.Is(err, synthesis.ErrTimeout)
}
