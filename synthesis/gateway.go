// Copyright (c) 2025 Ali Abbas.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package synthesis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"

	"github.com/aliabbas6622/LockItIn-Hackathon/models"
)

// GenerateQuestions asks the model for clarifying questions about a topic.
// The result is validated before it is returned: every question needs
// non-empty text, and categories outside the known set collapse to Other.
func (c *Client) GenerateQuestions(ctx context.Context, topic string) ([]models.QuestionInput, error) {
	content, err := c.completeJSON(ctx, questionsSystemPrompt, questionsPrompt(topic))
	if err != nil {
		return nil, err
	}

	var raw struct {
		Questions []struct {
			Text     *string `json:"text"`
			Category *string `json:"category"`
		} `json:"questions"`
	}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("%w: questions payload is not valid JSON: %v", ErrInvalid, err)
	}
	if len(raw.Questions) == 0 {
		return nil, fmt.Errorf("%w: questions list is empty", ErrInvalid)
	}

	questions := make([]models.QuestionInput, 0, len(raw.Questions))
	for i, q := range raw.Questions {
		if q.Text == nil || *q.Text == "" {
			return nil, fmt.Errorf("%w: questions[%d].text missing or empty", ErrInvalid, i)
		}
		category := models.CategoryOther
		if q.Category != nil && models.KnownCategory(*q.Category) {
			category = *q.Category
		}
		questions = append(questions, models.QuestionInput{Text: *q.Text, Category: category})
	}

	slog.Info("questions generated", "count", len(questions))
	return questions, nil
}

// Analyze turns the collected session context into a verdict. Scores must be
// numeric and inside [0,100]; out-of-range values are rejected, not clamped.
// Insights may be empty but every present insight needs both fields.
func (c *Client) Analyze(ctx context.Context, sessionContext string) (*models.VerdictData, error) {
	content, err := c.completeJSON(ctx, analysisSystemPrompt, analysisPrompt(sessionContext))
	if err != nil {
		return nil, err
	}

	var raw struct {
		Title          *string  `json:"verdict_title"`
		Description    *string  `json:"verdict_description"`
		BudgetScore    *float64 `json:"budget_score"`
		TimeScore      *float64 `json:"time_score"`
		GroupSizeScore *float64 `json:"group_size_score"`
		Insights       []struct {
			Title       *string `json:"title"`
			Description *string `json:"description"`
		} `json:"insights"`
	}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("%w: verdict payload is not valid JSON: %v", ErrInvalid, err)
	}

	if raw.Title == nil || *raw.Title == "" {
		return nil, fmt.Errorf("%w: verdict_title missing or empty", ErrInvalid)
	}
	if raw.Description == nil || *raw.Description == "" {
		return nil, fmt.Errorf("%w: verdict_description missing or empty", ErrInvalid)
	}

	budget, err := scoreValue("budget_score", raw.BudgetScore)
	if err != nil {
		return nil, err
	}
	timeScore, err := scoreValue("time_score", raw.TimeScore)
	if err != nil {
		return nil, err
	}
	groupSize, err := scoreValue("group_size_score", raw.GroupSizeScore)
	if err != nil {
		return nil, err
	}

	insights := make([]models.Insight, 0, len(raw.Insights))
	for i, in := range raw.Insights {
		if in.Title == nil || *in.Title == "" {
			return nil, fmt.Errorf("%w: insights[%d].title missing or empty", ErrInvalid, i)
		}
		if in.Description == nil || *in.Description == "" {
			return nil, fmt.Errorf("%w: insights[%d].description missing or empty", ErrInvalid, i)
		}
		insights = append(insights, models.Insight{Title: *in.Title, Description: *in.Description})
	}

	slog.Info("analysis produced", "insights", len(insights))
	return &models.VerdictData{
		Title:          *raw.Title,
		Description:    *raw.Description,
		BudgetScore:    budget,
		TimeScore:      timeScore,
		GroupSizeScore: groupSize,
		Insights:       insights,
	}, nil
}

func scoreValue(field string, v *float64) (int, error) {
	if v == nil {
		return 0, fmt.Errorf("%w: %s missing", ErrInvalid, field)
	}
	if *v < 0 || *v > 100 {
		return 0, fmt.Errorf("%w: %s out of range: %v", ErrInvalid, field, *v)
	}
	return int(math.Round(*v)), nil
}
