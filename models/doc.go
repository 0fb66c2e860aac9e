/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreateSessionRequest: topic
  - AddQuestionsRequest: questions (manual entry)
  - SubmitResponsesRequest: name, answers (map[questionID]text)
  - TypingRequest: name

# Response Types

Types for JSON responses:

  - CreateSessionResponse: id
  - SubmitResponsesResponse: participant_id
  - SessionDetail: session plus questions, participants, has_verdict
  - ErrorResponse: error, message

# Domain Types

Internal data structures:

  - Session: decision session metadata and lifecycle state
  - Question: one generated or manually entered question
  - Participant: one respondent
  - Response: one answer to one question
  - Verdict: final synthesized recommendation with fitness scores
  - Insight: supporting {title, description} pair inside a verdict
  - RoomEvent: ephemeral live-activity event with a per-session sequence

# Constants

Status values:

	StatusDraft      = "draft"
	StatusCollecting = "collecting"
	StatusCompleted  = "completed"

Question categories:

	Budget, Timeframe, Preference, GroupDynamic, RiskTolerance, Other

Room event kinds:

	EventJoined   = "joined"
	EventTyping   = "typing"
	EventResponse = "response"
*/
package models
