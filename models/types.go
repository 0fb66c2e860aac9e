package models

import "time"

// Session status constants
const (
	StatusDraft      = "draft"
	StatusCollecting = "collecting"
	StatusCompleted  = "completed"
)

// Question category constants. The set is open: the synthesis gateway maps
// anything it does not recognize to CategoryOther.
const (
	CategoryBudget        = "Budget"
	CategoryTimeframe     = "Timeframe"
	CategoryPreference    = "Preference"
	CategoryGroupDynamic  = "GroupDynamic"
	CategoryRiskTolerance = "RiskTolerance"
	CategoryOther         = "Other"
)

// Room event kinds, matching the event names the live UI consumes.
const (
	EventJoined   = "joined"
	EventTyping   = "typing"
	EventResponse = "response"
)

// Request types

type CreateSessionRequest struct {
	Topic string `json:"topic"`
}

type AddQuestionsRequest struct {
	Questions []QuestionInput `json:"questions"`
}

type QuestionInput struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

// question_id -> answer text
type SubmitResponsesRequest struct {
	Name    string            `json:"name"`
	Answers map[string]string `json:"answers"`
}

type TypingRequest struct {
	Name string `json:"name"`
}

// Response types

type CreateSessionResponse struct {
	ID string `json:"id"`
}

type SubmitResponsesResponse struct {
	ParticipantID string `json:"participant_id"`
}

type SessionDetail struct {
	Session      Session       `json:"session"`
	Questions    []Question    `json:"questions"`
	Participants []Participant `json:"participants"`
	HasVerdict   bool          `json:"has_verdict"`
}

// Domain types

type Session struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type Question struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
	Category  string `json:"category"`
}

type Participant struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Name      string    `json:"name"`
	JoinedAt  time.Time `json:"joined_at"`
}

type Response struct {
	ID            string    `json:"id"`
	ParticipantID string    `json:"participant_id"`
	QuestionID    string    `json:"question_id"`
	Answer        string    `json:"answer"`
	CreatedAt     time.Time `json:"created_at"`
}

type Insight struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Verdict struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"session_id"`
	Title          string    `json:"verdict_title"`
	Description    string    `json:"verdict_description"`
	BudgetScore    int       `json:"budget_score"`
	TimeScore      int       `json:"time_score"`
	GroupSizeScore int       `json:"group_size_score"`
	Insights       []Insight `json:"insights"`
	CreatedAt      time.Time `json:"created_at"`
}

// VerdictData is the shape the synthesis gateway produces, before the engine
// attaches identity and persists it.
type VerdictData struct {
	Title          string    `json:"verdict_title"`
	Description    string    `json:"verdict_description"`
	BudgetScore    int       `json:"budget_score"`
	TimeScore      int       `json:"time_score"`
	GroupSizeScore int       `json:"group_size_score"`
	Insights       []Insight `json:"insights"`
}

// Room event types (ephemeral, never persisted)

type RoomEvent struct {
	SessionID string    `json:"session_id"`
	Kind      string    `json:"kind"`
	Payload   any       `json:"payload"`
	Sequence  uint64    `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`
}

type JoinedPayload struct {
	Name string `json:"name,omitempty"`
}

type TypingPayload struct {
	Name string `json:"name,omitempty"`
}

type ResponsePayload struct {
	Participant Participant `json:"participant"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// KnownCategory reports whether category is one of the defined question
// categories.
func KnownCategory(category string) bool {
	switch category {
	case CategoryBudget, CategoryTimeframe, CategoryPreference,
		CategoryGroupDynamic, CategoryRiskTolerance, CategoryOther:
		return true
	}
	return false
}
