package repositories

import (
	"database/sql"
	"fmt"

	"event-registration-platform/internal/models"
)

// EventRepository reads the event catalog. The registration engine never
// creates or mutates events.
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// GetByID retrieves an event by ID
func (r *EventRepository) GetByID(id int) (*models.Event, error) {
	query := `
		SELECT id, organizer_id, title, description, capacity, is_free, status, start_date, end_date, created_at, updated_at
		FROM events
		WHERE id = $1`

	event := &models.Event{}
	err := r.db.QueryRow(query, id).Scan(
		&event.ID,
		&event.OrganizerID,
		&event.Title,
		&event.Description,
		&event.Capacity,
		&event.IsFree,
		&event.Status,
		&event.StartDate,
		&event.EndDate,
		&event.CreatedAt,
		&event.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &models.NotFoundError{Resource: "event", ID: id}
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return event, nil
}

// CountActiveAttendees counts attendees across all non-cancelled
// registrations for an event. Used for the advisory event-level capacity
// check; exact enforcement happens per ticket inside the registration
// transaction.
func (r *EventRepository) CountActiveAttendees(eventID int) (int, error) {
	query := `
		SELECT COUNT(a.id)
		FROM attendees a
		JOIN registrations reg ON a.registration_id = reg.id
		WHERE reg.event_id = $1 AND reg.status != $2`

	var count int
	err := r.db.QueryRow(query, eventID, models.RegistrationCancelled).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count event attendees: %w", err)
	}

	return count, nil
}
