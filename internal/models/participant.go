package models

import "time"

// Participant is a lightweight identity record keyed by email. It is
// created once per email and reused across registrations, whether or not
// the person has a login.
type Participant struct {
	ID        int       `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name" db:"name"`
	UserID    *int      `json:"user_id,omitempty" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// BelongsToUser returns true if the participant is linked to the given
// user account
func (p *Participant) BelongsToUser(userID int) bool {
	return p.UserID != nil && *p.UserID == userID
}
