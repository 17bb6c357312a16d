package models

import "time"

// EventStatus represents the status of an event
type EventStatus string

const (
	EventDraft     EventStatus = "draft"
	EventPublished EventStatus = "published"
	EventCancelled EventStatus = "cancelled"
	EventCompleted EventStatus = "completed"
)

// Event represents an event in the catalog. The registration engine only
// reads events; creating and editing them is handled elsewhere.
type Event struct {
	ID          int         `json:"id" db:"id"`
	OrganizerID int         `json:"organizer_id" db:"organizer_id"`
	Title       string      `json:"title" db:"title"`
	Description string      `json:"description" db:"description"`
	Capacity    int         `json:"capacity" db:"capacity"`
	IsFree      bool        `json:"is_free" db:"is_free"`
	Status      EventStatus `json:"status" db:"status"`
	StartDate   time.Time   `json:"start_date" db:"start_date"`
	EndDate     time.Time   `json:"end_date" db:"end_date"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}

// IsPublished returns true if the event accepts registrations
func (e *Event) IsPublished() bool {
	return e.Status == EventPublished
}

// HasCapacityFor returns true if the event can accommodate additional
// attendees on top of the current count. The check is advisory: exact
// enforcement happens per ticket inside the registration transaction.
func (e *Event) HasCapacityFor(current, additional int) bool {
	if e.Capacity <= 0 {
		return true
	}
	return current+additional <= e.Capacity
}
