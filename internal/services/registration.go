package services

import (
	"fmt"
	"log"
	"time"

	"event-registration-platform/internal/models"
	"event-registration-platform/internal/repositories"
)

// RegistrationService is the registration engine: it validates business
// rules, reserves inventory, and persists the registration graph as one
// atomic unit of work.
type RegistrationService struct {
	registrationRepo RegistrationRepository
	eventRepo        EventRepository
	ticketRepo       TicketRepository
	questionRepo     QuestionRepository
	validator        *QuestionnaireValidator
}

// RegistrationRepository interface for registration data operations
type RegistrationRepository interface {
	CreateGraph(plan *repositories.RegistrationPlan) (*models.Registration, error)
	GetByID(id int) (*models.Registration, error)
	UpdateStatus(id int, status models.RegistrationStatus) error
	MarkPaid(id int, paymentReference string) error
	GetPurchaseItems(registrationID int) ([]*models.PurchaseItem, error)
	Search(filters repositories.RegistrationSearchFilters) ([]*models.Registration, int, error)
}

// EventRepository interface for event catalog reads
type EventRepository interface {
	GetByID(id int) (*models.Event, error)
	CountActiveAttendees(eventID int) (int, error)
}

// TicketRepository interface for ticket catalog reads and the inventory
// release used by cancellation
type TicketRepository interface {
	GetByIDs(ids []int) ([]*models.Ticket, error)
	Release(ticketID, qty int) error
}

// QuestionRepository interface for event question reads
type QuestionRepository interface {
	GetEventQuestions(eventID int) ([]*models.EventQuestion, error)
}

// NewRegistrationService creates a new registration service
func NewRegistrationService(
	registrationRepo RegistrationRepository,
	eventRepo EventRepository,
	ticketRepo TicketRepository,
	questionRepo QuestionRepository,
) *RegistrationService {
	return &RegistrationService{
		registrationRepo: registrationRepo,
		eventRepo:        eventRepo,
		ticketRepo:       ticketRepo,
		questionRepo:     questionRepo,
		validator:        NewQuestionnaireValidator(),
	}
}

// CreateResult is the outcome of a successful registration
type CreateResult struct {
	Message        string               `json:"message"`
	RegistrationID int                  `json:"registration_id"`
	Reference      string               `json:"reference"`
	Registration   *models.Registration `json:"registration"`
}

// Create registers for an event. Preconditions are checked before any
// transaction opens so bad requests fail fast; the inventory re-check
// happens race-free inside the transaction. caller may be nil for
// guests.
func (s *RegistrationService) Create(req *models.RegistrationCreateRequest, caller *models.Identity) (*CreateResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	event, err := s.eventRepo.GetByID(req.EventID)
	if err != nil {
		return nil, err
	}
	if !event.IsPublished() {
		return nil, &models.ValidationError{Message: "registrations are only accepted for published events"}
	}

	if event.IsFree {
		if len(req.Tickets) > 0 {
			return nil, &models.ValidationError{Message: "free events do not take ticket selections"}
		}
	} else {
		if req.TotalQuantity() != len(req.Attendees) {
			return nil, &models.ValidationError{
				Message: fmt.Sprintf("ticket quantities (%d) must match the number of attendees (%d)", req.TotalQuantity(), len(req.Attendees)),
			}
		}
	}

	// Advisory event-level check. The exact guard is the per-ticket
	// conditional update inside the transaction; under heavy concurrency
	// the event aggregate can drift slightly past capacity while ticket
	// inventory stays exact.
	currentAttendees, err := s.eventRepo.CountActiveAttendees(event.ID)
	if err != nil {
		return nil, err
	}
	if !event.HasCapacityFor(currentAttendees, len(req.Attendees)) {
		return nil, &models.CapacityError{
			Message: fmt.Sprintf("event %d is at capacity (%d of %d attendees)", event.ID, currentAttendees, event.Capacity),
		}
	}

	items, totalAmount, err := s.planTickets(event, req.Tickets)
	if err != nil {
		return nil, err
	}

	questions, err := s.questionRepo.GetEventQuestions(event.ID)
	if err != nil {
		return nil, err
	}
	for i := range req.Attendees {
		if err := s.validator.Validate(questions, req.Attendees[i].Responses); err != nil {
			return nil, err
		}
	}

	status := models.RegistrationPending
	if event.IsFree {
		status = models.RegistrationConfirmed
	}

	plan := &repositories.RegistrationPlan{
		EventID:     event.ID,
		Status:      status,
		TotalAmount: totalAmount,
		Items:       items,
		Attendees:   req.Attendees,
	}
	if caller != nil {
		userID := caller.UserID
		plan.UserID = &userID
	}

	registration, err := s.registrationRepo.CreateGraph(plan)
	if err != nil {
		return nil, err
	}

	message := "registration pending payment"
	if registration.Status == models.RegistrationConfirmed {
		message = "registration confirmed"
	}

	return &CreateResult{
		Message:        message,
		RegistrationID: registration.ID,
		Reference:      registration.Reference,
		Registration:   registration,
	}, nil
}

// planTickets validates each requested ticket against the authoritative
// catalog rows and captures unit prices. The total is always computed
// server side, never from client input.
func (s *RegistrationService) planTickets(event *models.Event, selections []models.TicketSelection) ([]repositories.RegistrationPlanItem, int, error) {
	if len(selections) == 0 {
		return nil, 0, nil
	}

	ids := make([]int, 0, len(selections))
	for _, sel := range selections {
		ids = append(ids, sel.TicketID)
	}

	tickets, err := s.ticketRepo.GetByIDs(ids)
	if err != nil {
		return nil, 0, err
	}

	byID := make(map[int]*models.Ticket, len(tickets))
	for _, ticket := range tickets {
		byID[ticket.ID] = ticket
	}

	now := time.Now()
	items := make([]repositories.RegistrationPlanItem, 0, len(selections))
	totalAmount := 0

	for _, sel := range selections {
		ticket, ok := byID[sel.TicketID]
		if !ok {
			return nil, 0, &models.NotFoundError{Resource: "ticket", ID: sel.TicketID}
		}
		if ticket.EventID != event.ID {
			return nil, 0, &models.ValidationError{
				Message: fmt.Sprintf("ticket %d does not belong to event %d", ticket.ID, event.ID),
			}
		}
		if !ticket.IsActive() {
			return nil, 0, &models.ValidationError{
				Message: fmt.Sprintf("ticket %q is not active", ticket.Name),
			}
		}
		if !ticket.IsOnSale(now) {
			return nil, 0, &models.ValidationError{
				Message: fmt.Sprintf("ticket %q is not on sale", ticket.Name),
			}
		}
		if sel.Quantity > ticket.Remaining() {
			return nil, 0, &models.CapacityError{
				Message: fmt.Sprintf("insufficient tickets available for ticket %d (requested: %d, available: %d)", ticket.ID, sel.Quantity, ticket.Remaining()),
			}
		}

		items = append(items, repositories.RegistrationPlanItem{
			TicketID:  ticket.ID,
			Quantity:  sel.Quantity,
			UnitPrice: ticket.Price,
		})
		totalAmount += ticket.Price * sel.Quantity
	}

	return items, totalAmount, nil
}

// Cancel moves a registration to cancelled and releases its reserved
// inventory. Cancelling an already-cancelled registration is an
// idempotent no-op. Only the registration's owner or an admin may
// cancel.
func (s *RegistrationService) Cancel(registrationID int, caller *models.Identity) (*models.Registration, error) {
	registration, err := s.registrationRepo.GetByID(registrationID)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeOwner(registration, caller); err != nil {
		return nil, err
	}

	return s.cancel(registration)
}

func (s *RegistrationService) cancel(registration *models.Registration) (*models.Registration, error) {
	if registration.IsCancelled() {
		// Already cancelled: report current state without touching
		// inventory again.
		return registration, nil
	}

	if !registration.CanBeCancelled() {
		return nil, &models.ValidationError{
			Message: fmt.Sprintf("registration cannot be cancelled in current status: %s", registration.Status),
		}
	}

	if err := s.registrationRepo.UpdateStatus(registration.ID, models.RegistrationCancelled); err != nil {
		return nil, err
	}

	s.releaseInventory(registration)

	return s.registrationRepo.GetByID(registration.ID)
}

// releaseInventory returns each purchase item's quantity to its ticket.
// Each release is attempted independently: a bookkeeping failure is
// logged but never blocks the cancellation itself.
func (s *RegistrationService) releaseInventory(registration *models.Registration) {
	items, err := s.registrationRepo.GetPurchaseItems(registration.ID)
	if err != nil {
		log.Printf("Warning: failed to load purchase items for registration %d: %v", registration.ID, err)
		return
	}

	for _, item := range items {
		if err := s.ticketRepo.Release(item.TicketID, item.Quantity); err != nil {
			log.Printf("Warning: failed to release %d units of ticket %d for registration %d: %v",
				item.Quantity, item.TicketID, registration.ID, err)
		}
	}
}

// UpdateStatus lets an admin or the event's organizer move a
// registration directly to confirmed or cancelled, applying the same
// transition rules and inventory release as cancellation.
func (s *RegistrationService) UpdateStatus(registrationID int, newStatus models.RegistrationStatus, caller *models.Identity) (*models.Registration, error) {
	if newStatus != models.RegistrationConfirmed && newStatus != models.RegistrationCancelled {
		return nil, &models.ValidationError{
			Message: fmt.Sprintf("invalid target status: %s", newStatus),
		}
	}

	registration, err := s.registrationRepo.GetByID(registrationID)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeEventManager(registration, caller); err != nil {
		return nil, err
	}

	if newStatus == models.RegistrationCancelled {
		return s.cancel(registration)
	}

	if !registration.CanTransitionTo(newStatus) {
		return nil, &models.ValidationError{
			Message: fmt.Sprintf("invalid status transition from %s to %s", registration.Status, newStatus),
		}
	}

	if err := s.registrationRepo.UpdateStatus(registration.ID, newStatus); err != nil {
		return nil, err
	}

	return s.registrationRepo.GetByID(registration.ID)
}

// ConfirmPayment flips a pending paid registration to confirmed on an
// external payment-success signal. A payment failure signal is simply
// not delivered here; the registration stays pending and retryable.
func (s *RegistrationService) ConfirmPayment(registrationID int, paymentReference string) (*models.Registration, error) {
	registration, err := s.registrationRepo.GetByID(registrationID)
	if err != nil {
		return nil, err
	}

	if !registration.IsPaid() {
		return nil, &models.ValidationError{Message: "registration has no purchase to confirm"}
	}

	if err := s.registrationRepo.MarkPaid(registration.ID, paymentReference); err != nil {
		return nil, err
	}

	return s.registrationRepo.GetByID(registration.ID)
}

// GetByID retrieves one registration with its full graph. Owners see
// their own; organizers see registrations for their events; admins see
// all.
func (s *RegistrationService) GetByID(registrationID int, caller *models.Identity) (*models.Registration, error) {
	registration, err := s.registrationRepo.GetByID(registrationID)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeRead(registration, caller); err != nil {
		return nil, err
	}

	return registration, nil
}

// List retrieves the caller's own registrations, paginated
func (s *RegistrationService) List(filters repositories.RegistrationSearchFilters, caller *models.Identity) ([]*models.Registration, int, error) {
	if caller == nil {
		return nil, 0, &models.AuthorizationError{Message: "authentication required to list registrations"}
	}

	filters.UserID = caller.UserID
	filters.OrganizerID = 0

	return s.registrationRepo.Search(filters)
}

// ListForEvent retrieves registrations for one event. Only the event's
// organizer or an admin may list them.
func (s *RegistrationService) ListForEvent(eventID int, filters repositories.RegistrationSearchFilters, caller *models.Identity) ([]*models.Registration, int, error) {
	event, err := s.eventRepo.GetByID(eventID)
	if err != nil {
		return nil, 0, err
	}

	if !caller.IsAdmin() && !(caller.IsOrganizer() && caller.IsUser(event.OrganizerID)) {
		return nil, 0, &models.AuthorizationError{Message: "insufficient permissions to view event registrations"}
	}

	filters.EventID = eventID
	filters.UserID = 0
	filters.OrganizerID = 0

	return s.registrationRepo.Search(filters)
}

// ListAll retrieves registrations across all events. Admin only.
func (s *RegistrationService) ListAll(filters repositories.RegistrationSearchFilters, caller *models.Identity) ([]*models.Registration, int, error) {
	if !caller.IsAdmin() {
		return nil, 0, &models.AuthorizationError{Message: "insufficient permissions to view all registrations"}
	}

	return s.registrationRepo.Search(filters)
}

// authorizeOwner permits the registration's owner (by linked user id or
// primary participant identity) or an admin.
func (s *RegistrationService) authorizeOwner(registration *models.Registration, caller *models.Identity) error {
	if caller.IsAdmin() {
		return nil
	}
	if registration.UserID != nil && caller.IsUser(*registration.UserID) {
		return nil
	}
	if registration.Participant != nil && registration.Participant.UserID != nil && caller.IsUser(*registration.Participant.UserID) {
		return nil
	}
	return &models.AuthorizationError{Message: "insufficient permissions for this registration"}
}

// authorizeEventManager permits the event's organizer or an admin
func (s *RegistrationService) authorizeEventManager(registration *models.Registration, caller *models.Identity) error {
	if caller.IsAdmin() {
		return nil
	}
	if registration.Event != nil && caller.IsOrganizer() && caller.IsUser(registration.Event.OrganizerID) {
		return nil
	}
	return &models.AuthorizationError{Message: "insufficient permissions to manage this registration"}
}

// authorizeRead permits owners, the event's organizer, and admins
func (s *RegistrationService) authorizeRead(registration *models.Registration, caller *models.Identity) error {
	if err := s.authorizeOwner(registration, caller); err == nil {
		return nil
	}
	return s.authorizeEventManager(registration, caller)
}
