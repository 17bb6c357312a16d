package repositories

import (
	"database/sql"
	"fmt"

	"event-registration-platform/internal/models"
)

// QuestionRepository reads an event's question set. Question catalogs are
// managed elsewhere; the registration engine only consumes them.
type QuestionRepository struct {
	db *sql.DB
}

// NewQuestionRepository creates a new question repository
func NewQuestionRepository(db *sql.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// GetEventQuestions retrieves the ordered question set for an event,
// including each question's predefined options.
func (r *QuestionRepository) GetEventQuestions(eventID int) ([]*models.EventQuestion, error) {
	query := `
		SELECT eq.id, eq.event_id, eq.question_id, eq.is_required, eq.display_order,
			q.id, q.label, q.type, q.created_at
		FROM event_questions eq
		JOIN questions q ON eq.question_id = q.id
		WHERE eq.event_id = $1
		ORDER BY eq.display_order ASC, eq.id ASC`

	rows, err := r.db.Query(query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event questions: %w", err)
	}
	defer rows.Close()

	var eventQuestions []*models.EventQuestion
	byQuestionID := make(map[int]*models.Question)

	for rows.Next() {
		eq := &models.EventQuestion{Question: &models.Question{}}
		err := rows.Scan(
			&eq.ID,
			&eq.EventID,
			&eq.QuestionID,
			&eq.IsRequired,
			&eq.DisplayOrder,
			&eq.Question.ID,
			&eq.Question.Label,
			&eq.Question.Type,
			&eq.Question.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event question: %w", err)
		}
		eventQuestions = append(eventQuestions, eq)
		byQuestionID[eq.QuestionID] = eq.Question
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event questions: %w", err)
	}

	if len(eventQuestions) == 0 {
		return eventQuestions, nil
	}

	if err := r.loadOptions(eventID, byQuestionID); err != nil {
		return nil, err
	}

	return eventQuestions, nil
}

// loadOptions attaches predefined options to choice-type questions
func (r *QuestionRepository) loadOptions(eventID int, byQuestionID map[int]*models.Question) error {
	query := `
		SELECT o.id, o.question_id, o.value, o.display_order
		FROM question_options o
		JOIN event_questions eq ON o.question_id = eq.question_id
		WHERE eq.event_id = $1
		ORDER BY o.question_id ASC, o.display_order ASC`

	rows, err := r.db.Query(query, eventID)
	if err != nil {
		return fmt.Errorf("failed to get question options: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var opt models.QuestionOption
		if err := rows.Scan(&opt.ID, &opt.QuestionID, &opt.Value, &opt.DisplayOrder); err != nil {
			return fmt.Errorf("failed to scan question option: %w", err)
		}
		if question, ok := byQuestionID[opt.QuestionID]; ok {
			question.Options = append(question.Options, opt)
		}
	}

	if err = rows.Err(); err != nil {
		return fmt.Errorf("error iterating question options: %w", err)
	}

	return nil
}
