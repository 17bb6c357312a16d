package models

import "time"

// QuestionType represents how a question is answered
type QuestionType string

const (
	QuestionText        QuestionType = "text"
	QuestionChoice      QuestionType = "choice"
	QuestionMultiChoice QuestionType = "multi_choice"
)

// Question is a reusable question from the global catalog. Choice-type
// questions carry an ordered set of predefined options.
type Question struct {
	ID        int              `json:"id" db:"id"`
	Label     string           `json:"label" db:"label"`
	Type      QuestionType     `json:"type" db:"type"`
	Options   []QuestionOption `json:"options,omitempty"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

// QuestionOption is one predefined answer for a choice-type question
type QuestionOption struct {
	ID           int    `json:"id" db:"id"`
	QuestionID   int    `json:"question_id" db:"question_id"`
	Value        string `json:"value" db:"value"`
	DisplayOrder int    `json:"display_order" db:"display_order"`
}

// EventQuestion links a catalog question to a specific event with
// per-event required/order metadata.
type EventQuestion struct {
	ID           int       `json:"id" db:"id"`
	EventID      int       `json:"event_id" db:"event_id"`
	QuestionID   int       `json:"question_id" db:"question_id"`
	IsRequired   bool      `json:"is_required" db:"is_required"`
	DisplayOrder int       `json:"display_order" db:"display_order"`
	Question     *Question `json:"question,omitempty"`
}

// HasOption returns true if value matches one of the question's
// predefined option values
func (q *Question) HasOption(value string) bool {
	for _, opt := range q.Options {
		if opt.Value == value {
			return true
		}
	}
	return false
}

// IsChoice returns true for single- and multi-choice questions
func (q *Question) IsChoice() bool {
	return q.Type == QuestionChoice || q.Type == QuestionMultiChoice
}
