package models

// UserRole represents the role of an authenticated caller
type UserRole string

const (
	RoleParticipant UserRole = "participant"
	RoleOrganizer   UserRole = "organizer"
	RoleAdmin       UserRole = "admin"
)

// Identity is the resolved caller identity attached to every request.
// A nil *Identity means the caller is a guest. Credential validation
// happens upstream; this type only carries the outcome.
type Identity struct {
	UserID int      `json:"user_id"`
	Role   UserRole `json:"role"`
}

// IsAdmin returns true for admin callers. Safe to call on nil.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// IsOrganizer returns true for organizer callers. Safe to call on nil.
func (i *Identity) IsOrganizer() bool {
	return i != nil && i.Role == RoleOrganizer
}

// IsUser returns true if the identity belongs to the given user id.
// Safe to call on nil.
func (i *Identity) IsUser(userID int) bool {
	return i != nil && userID > 0 && i.UserID == userID
}
