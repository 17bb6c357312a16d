package models

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// RegistrationStatus represents the status of a registration
type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "pending"
	RegistrationConfirmed RegistrationStatus = "confirmed"
	RegistrationCancelled RegistrationStatus = "cancelled"
)

// Registration groups one checkout: 1..N attendees and, for paid events,
// 1..N ticket-type line items. Rows hanging off a registration are
// immutable after creation; only the status moves.
type Registration struct {
	ID            int                `json:"id" db:"id"`
	Reference     string             `json:"reference" db:"reference"`
	EventID       int                `json:"event_id" db:"event_id"`
	ParticipantID int                `json:"participant_id" db:"participant_id"`
	UserID        *int               `json:"user_id,omitempty" db:"user_id"`
	Status        RegistrationStatus `json:"status" db:"status"`
	CreatedAt     time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" db:"updated_at"`

	// Eager-loaded graph
	Event       *Event       `json:"event,omitempty"`
	Participant *Participant `json:"participant,omitempty"`
	Attendees   []*Attendee  `json:"attendees,omitempty"`
	Purchase    *Purchase    `json:"purchase,omitempty"`
}

// Attendee links a registration to one individual person covered by it,
// distinct from the person who pays or initiates.
type Attendee struct {
	ID             int          `json:"id" db:"id"`
	RegistrationID int          `json:"registration_id" db:"registration_id"`
	ParticipantID  int          `json:"participant_id" db:"participant_id"`
	IsPrimary      bool         `json:"is_primary" db:"is_primary"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
	Participant    *Participant `json:"participant,omitempty"`
	Responses      []*Response  `json:"responses,omitempty"`
}

// Response is an attendee's answer to one event question. Multi-choice
// answers are stored as a JSON-encoded array of option values.
type Response struct {
	ID              int       `json:"id" db:"id"`
	AttendeeID      int       `json:"attendee_id" db:"attendee_id"`
	EventQuestionID int       `json:"event_question_id" db:"event_question_id"`
	Answer          string    `json:"answer" db:"answer"`
	QuestionLabel   string    `json:"question_label,omitempty" db:"question_label"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// Purchase is the priced-checkout record for a paid registration
type Purchase struct {
	ID               int             `json:"id" db:"id"`
	RegistrationID   int             `json:"registration_id" db:"registration_id"`
	TotalAmount      int             `json:"total_amount" db:"total_amount"` // Amount in cents
	PaymentReference string          `json:"payment_reference" db:"payment_reference"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	Items            []*PurchaseItem `json:"items,omitempty"`
}

// PurchaseItem is one line item per distinct ticket type within a
// purchase. UnitPrice is captured at purchase time and never re-derived.
type PurchaseItem struct {
	ID         int    `json:"id" db:"id"`
	PurchaseID int    `json:"purchase_id" db:"purchase_id"`
	TicketID   int    `json:"ticket_id" db:"ticket_id"`
	Quantity   int    `json:"quantity" db:"quantity"`
	UnitPrice  int    `json:"unit_price" db:"unit_price"` // Price in cents at purchase time
	TicketName string `json:"ticket_name,omitempty" db:"ticket_name"`
}

// TicketSelection is one requested (ticket, quantity) pair
type TicketSelection struct {
	TicketID int `json:"ticket_id"`
	Quantity int `json:"quantity"`
}

// ResponseInput is one submitted answer for an attendee
type ResponseInput struct {
	EventQuestionID int    `json:"event_question_id"`
	Answer          string `json:"answer"`
}

// AttendeeInput is one person covered by the registration. Exactly one
// attendee must be flagged as primary; the primary attendee becomes the
// registration's owner for authorization and contact purposes.
type AttendeeInput struct {
	Email     string          `json:"email"`
	Name      string          `json:"name"`
	IsPrimary bool            `json:"is_primary"`
	Responses []ResponseInput `json:"responses"`
}

// RegistrationCreateRequest represents the data needed to register for
// an event. Tickets must be empty for free events.
type RegistrationCreateRequest struct {
	EventID   int               `json:"event_id"`
	Tickets   []TicketSelection `json:"tickets"`
	Attendees []AttendeeInput   `json:"attendees"`
}

var registrationEmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Validate validates the registration request shape. Business rules that
// need catalog data (event status, sales windows, capacity, question
// sets) are checked by the registration service.
func (req *RegistrationCreateRequest) Validate() error {
	if req.EventID <= 0 {
		return &ValidationError{Message: "event id is required"}
	}

	if len(req.Attendees) == 0 {
		return &ValidationError{Message: "at least one attendee is required"}
	}

	if err := req.validateTickets(); err != nil {
		return err
	}

	if err := req.validateAttendees(); err != nil {
		return err
	}

	return nil
}

func (req *RegistrationCreateRequest) validateTickets() error {
	seen := make(map[int]bool)
	for _, sel := range req.Tickets {
		if sel.TicketID <= 0 {
			return &ValidationError{Message: "ticket id is required for every ticket selection"}
		}
		if sel.Quantity <= 0 {
			return &ValidationError{Message: "ticket quantity must be positive"}
		}
		if seen[sel.TicketID] {
			return &ValidationError{Message: "duplicate ticket selection"}
		}
		seen[sel.TicketID] = true
	}
	return nil
}

func (req *RegistrationCreateRequest) validateAttendees() error {
	primaryCount := 0
	for _, att := range req.Attendees {
		if strings.TrimSpace(att.Name) == "" {
			return &ValidationError{Message: "attendee name is required"}
		}
		if !registrationEmailRegex.MatchString(att.Email) {
			return &ValidationError{Message: "attendee email format is invalid"}
		}
		if att.IsPrimary {
			primaryCount++
		}
	}

	if primaryCount != 1 {
		return &ValidationError{Message: "exactly one attendee must be marked as primary"}
	}

	return nil
}

// TotalQuantity returns the sum of requested ticket quantities
func (req *RegistrationCreateRequest) TotalQuantity() int {
	total := 0
	for _, sel := range req.Tickets {
		total += sel.Quantity
	}
	return total
}

// Primary returns the attendee flagged as primary registrant
func (req *RegistrationCreateRequest) Primary() (*AttendeeInput, error) {
	for i := range req.Attendees {
		if req.Attendees[i].IsPrimary {
			return &req.Attendees[i], nil
		}
	}
	return nil, errors.New("no primary attendee designated")
}

// CanBeCancelled returns true if the registration can move to cancelled
func (r *Registration) CanBeCancelled() bool {
	return r.Status == RegistrationPending || r.Status == RegistrationConfirmed
}

// IsCancelled returns true if the registration is cancelled
func (r *Registration) IsCancelled() bool {
	return r.Status == RegistrationCancelled
}

// IsPaid returns true if the registration carries a purchase
func (r *Registration) IsPaid() bool {
	return r.Purchase != nil
}

// PrimaryAttendee returns the attendee row flagged as primary, or nil
func (r *Registration) PrimaryAttendee() *Attendee {
	for _, att := range r.Attendees {
		if att.IsPrimary {
			return att
		}
	}
	return nil
}

// CanTransitionTo reports whether moving to newStatus is a legal forward
// transition. Re-entering cancelled is allowed so cancellation stays
// idempotent; callers treat it as a no-op.
func (r *Registration) CanTransitionTo(newStatus RegistrationStatus) bool {
	switch newStatus {
	case RegistrationConfirmed:
		return r.Status == RegistrationPending
	case RegistrationCancelled:
		return r.CanBeCancelled() || r.Status == RegistrationCancelled
	default:
		return false
	}
}

// GetStatusDisplayName returns a human-readable status name
func (r *Registration) GetStatusDisplayName() string {
	switch r.Status {
	case RegistrationPending:
		return "Pending Payment"
	case RegistrationConfirmed:
		return "Confirmed"
	case RegistrationCancelled:
		return "Cancelled"
	default:
		return string(r.Status)
	}
}
