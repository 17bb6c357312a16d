package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"event-registration-platform/internal/models"
)

// QuestionnaireValidator decides whether one attendee's submitted answers
// satisfy an event's question set.
type QuestionnaireValidator struct{}

// NewQuestionnaireValidator creates a new questionnaire validator
func NewQuestionnaireValidator() *QuestionnaireValidator {
	return &QuestionnaireValidator{}
}

// Validate checks an attendee's responses against the event's questions:
// every required question needs a non-blank answer, every answered
// question must belong to the event, and choice answers must match a
// predefined option.
func (v *QuestionnaireValidator) Validate(questions []*models.EventQuestion, responses []models.ResponseInput) error {
	byID := make(map[int]*models.EventQuestion, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	answered := make(map[int]string, len(responses))
	for _, resp := range responses {
		question, ok := byID[resp.EventQuestionID]
		if !ok {
			return &models.ValidationError{
				Message: fmt.Sprintf("question %d does not belong to this event", resp.EventQuestionID),
			}
		}
		if _, dup := answered[resp.EventQuestionID]; dup {
			return &models.ValidationError{
				Message: fmt.Sprintf("question %q answered more than once", question.Question.Label),
			}
		}
		if err := v.validateAnswer(question, resp.Answer); err != nil {
			return err
		}
		answered[resp.EventQuestionID] = resp.Answer
	}

	for _, q := range questions {
		if !q.IsRequired {
			continue
		}
		answer, ok := answered[q.ID]
		if !ok || strings.TrimSpace(answer) == "" {
			return &models.ValidationError{
				Message: fmt.Sprintf("required question %q is not answered", q.Question.Label),
			}
		}
	}

	return nil
}

func (v *QuestionnaireValidator) validateAnswer(eq *models.EventQuestion, answer string) error {
	if strings.TrimSpace(answer) == "" {
		// Blank answers to optional questions are tolerated here; the
		// required check happens after all answers are collected.
		return nil
	}

	question := eq.Question
	switch question.Type {
	case models.QuestionChoice:
		if !question.HasOption(answer) {
			return &models.ValidationError{
				Message: fmt.Sprintf("answer %q is not a valid option for question %q", answer, question.Label),
			}
		}
	case models.QuestionMultiChoice:
		var values []string
		if err := json.Unmarshal([]byte(answer), &values); err != nil {
			return &models.ValidationError{
				Message: fmt.Sprintf("answer for question %q must be a JSON array of option values", question.Label),
			}
		}
		if len(values) == 0 {
			return &models.ValidationError{
				Message: fmt.Sprintf("answer for question %q selects no options", question.Label),
			}
		}
		for _, value := range values {
			if !question.HasOption(value) {
				return &models.ValidationError{
					Message: fmt.Sprintf("answer %q is not a valid option for question %q", value, question.Label),
				}
			}
		}
	}

	return nil
}
