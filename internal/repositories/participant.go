package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"event-registration-platform/internal/models"
)

// ParticipantRepository resolves attendee identities. Participants are
// keyed by email (case-insensitive) and created at most once per address.
type ParticipantRepository struct {
	db *sql.DB
}

// NewParticipantRepository creates a new participant repository
func NewParticipantRepository(db *sql.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

// FindOrCreate looks up a participant by email inside the caller's
// transaction, creating one if absent. The upsert keeps the call
// idempotent: resolving the same email twice in one registration returns
// the same row. A non-nil userID links the participant to a login; an
// existing link is never overwritten with a different user.
func (r *ParticipantRepository) FindOrCreate(tx *sql.Tx, email, name string, userID *int) (*models.Participant, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	query := `
		INSERT INTO participants (email, name, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (LOWER(email)) DO UPDATE
		SET user_id = COALESCE(participants.user_id, EXCLUDED.user_id),
			updated_at = EXCLUDED.updated_at
		RETURNING id, email, name, user_id, created_at, updated_at`

	participant := &models.Participant{}
	err := tx.QueryRow(query, email, name, userID, time.Now()).Scan(
		&participant.ID,
		&participant.Email,
		&participant.Name,
		&participant.UserID,
		&participant.CreatedAt,
		&participant.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to find or create participant: %w", err)
	}

	return participant, nil
}

// GetByID retrieves a participant by ID
func (r *ParticipantRepository) GetByID(id int) (*models.Participant, error) {
	query := `
		SELECT id, email, name, user_id, created_at, updated_at
		FROM participants
		WHERE id = $1`

	participant := &models.Participant{}
	err := r.db.QueryRow(query, id).Scan(
		&participant.ID,
		&participant.Email,
		&participant.Name,
		&participant.UserID,
		&participant.CreatedAt,
		&participant.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &models.NotFoundError{Resource: "participant", ID: id}
		}
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}

	return participant, nil
}

// GetByEmail retrieves a participant by email, case-insensitively
func (r *ParticipantRepository) GetByEmail(email string) (*models.Participant, error) {
	query := `
		SELECT id, email, name, user_id, created_at, updated_at
		FROM participants
		WHERE LOWER(email) = LOWER($1)`

	participant := &models.Participant{}
	err := r.db.QueryRow(query, strings.TrimSpace(email)).Scan(
		&participant.ID,
		&participant.Email,
		&participant.Name,
		&participant.UserID,
		&participant.CreatedAt,
		&participant.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &models.NotFoundError{Resource: "participant"}
		}
		return nil, fmt.Errorf("failed to get participant by email: %w", err)
	}

	return participant, nil
}
