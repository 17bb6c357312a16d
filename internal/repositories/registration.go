package repositories

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"event-registration-platform/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// RegistrationRepository persists the registration graph. All writes for
// one registration happen inside a single transaction; the ticket and
// participant repositories contribute their transactional operations.
type RegistrationRepository struct {
	db           *sql.DB
	tickets      *TicketRepository
	participants *ParticipantRepository
}

// NewRegistrationRepository creates a new registration repository
func NewRegistrationRepository(db *sql.DB, tickets *TicketRepository, participants *ParticipantRepository) *RegistrationRepository {
	return &RegistrationRepository{
		db:           db,
		tickets:      tickets,
		participants: participants,
	}
}

// RegistrationPlanItem is one reserved ticket line with the unit price
// captured by the service at planning time.
type RegistrationPlanItem struct {
	TicketID  int
	Quantity  int
	UnitPrice int
}

// RegistrationPlan is the validated write set for one registration. The
// service computes it from authoritative catalog rows; the repository
// only persists it.
type RegistrationPlan struct {
	EventID     int
	UserID      *int
	Status      models.RegistrationStatus
	TotalAmount int
	Items       []RegistrationPlanItem // empty for free events
	Attendees   []models.AttendeeInput
}

// RegistrationSearchFilters represents filters for registration search
type RegistrationSearchFilters struct {
	EventID     int                       // Filter by event
	UserID      int                       // Filter by owning user
	OrganizerID int                       // Filter by event organizer
	TicketID    int                       // Filter by purchased ticket type
	Status      models.RegistrationStatus // Filter by status
	Search      string                    // Match against reference, participant name/email
	Limit       int                       // Number of results to return
	Offset      int                       // Number of results to skip
	SortBy      string                    // "created_at", "status"
	SortDesc    bool                      // Sort in descending order
}

// CreateGraph atomically persists one registration: inventory is
// re-checked and reserved, participants resolved, and the
// registration/purchase/attendee/response rows created. Any failure
// rolls the whole transaction back, including the inventory increments.
func (r *RegistrationRepository) CreateGraph(plan *RegistrationPlan) (*models.Registration, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Reserve in ticket id order so concurrent registrations touching the
	// same tickets lock rows in a consistent order.
	items := make([]RegistrationPlanItem, len(plan.Items))
	copy(items, plan.Items)
	sort.Slice(items, func(i, j int) bool { return items[i].TicketID < items[j].TicketID })

	for _, item := range items {
		if err := r.tickets.Reserve(tx, item.TicketID, item.Quantity); err != nil {
			return nil, err
		}
	}

	primary := primaryAttendee(plan.Attendees)
	if primary == nil {
		return nil, &models.ValidationError{Message: "no primary attendee designated"}
	}

	primaryParticipant, err := r.participants.FindOrCreate(tx, primary.Email, primary.Name, plan.UserID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	registration := &models.Registration{}
	err = tx.QueryRow(`
		INSERT INTO registrations (reference, event_id, participant_id, user_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id, reference, event_id, participant_id, user_id, status, created_at, updated_at`,
		uuid.NewString(), plan.EventID, primaryParticipant.ID, plan.UserID, plan.Status, now,
	).Scan(
		&registration.ID,
		&registration.Reference,
		&registration.EventID,
		&registration.ParticipantID,
		&registration.UserID,
		&registration.Status,
		&registration.CreatedAt,
		&registration.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create registration: %w", err)
	}

	if len(items) > 0 {
		var purchaseID int
		err = tx.QueryRow(`
			INSERT INTO purchases (registration_id, total_amount, created_at)
			VALUES ($1, $2, $3)
			RETURNING id`,
			registration.ID, plan.TotalAmount, now,
		).Scan(&purchaseID)
		if err != nil {
			return nil, fmt.Errorf("failed to create purchase: %w", err)
		}

		for _, item := range items {
			_, err = tx.Exec(`
				INSERT INTO purchase_items (purchase_id, ticket_id, quantity, unit_price)
				VALUES ($1, $2, $3, $4)`,
				purchaseID, item.TicketID, item.Quantity, item.UnitPrice)
			if err != nil {
				return nil, fmt.Errorf("failed to create purchase item: %w", err)
			}
		}
	}

	for i := range plan.Attendees {
		input := &plan.Attendees[i]

		participant := primaryParticipant
		if !input.IsPrimary {
			participant, err = r.participants.FindOrCreate(tx, input.Email, input.Name, nil)
			if err != nil {
				return nil, err
			}
		}

		var attendeeID int
		err = tx.QueryRow(`
			INSERT INTO attendees (registration_id, participant_id, is_primary, created_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			registration.ID, participant.ID, input.IsPrimary, now,
		).Scan(&attendeeID)
		if err != nil {
			return nil, fmt.Errorf("failed to create attendee: %w", err)
		}

		for _, response := range input.Responses {
			_, err = tx.Exec(`
				INSERT INTO responses (attendee_id, event_question_id, answer, created_at)
				VALUES ($1, $2, $3, $4)`,
				attendeeID, response.EventQuestionID, response.Answer, now)
			if err != nil {
				return nil, fmt.Errorf("failed to create response: %w", err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit registration: %w", err)
	}

	return r.GetByID(registration.ID)
}

func primaryAttendee(attendees []models.AttendeeInput) *models.AttendeeInput {
	for i := range attendees {
		if attendees[i].IsPrimary {
			return &attendees[i]
		}
	}
	return nil
}

const registrationGraphColumns = `
	reg.id, reg.reference, reg.event_id, reg.participant_id, reg.user_id, reg.status, reg.created_at, reg.updated_at,
	e.id, e.organizer_id, e.title, e.description, e.capacity, e.is_free, e.status, e.start_date, e.end_date, e.created_at, e.updated_at,
	p.id, p.email, p.name, p.user_id, p.created_at, p.updated_at`

func scanRegistrationGraphRow(row interface{ Scan(...interface{}) error }) (*models.Registration, error) {
	registration := &models.Registration{
		Event:       &models.Event{},
		Participant: &models.Participant{},
	}
	err := row.Scan(
		&registration.ID,
		&registration.Reference,
		&registration.EventID,
		&registration.ParticipantID,
		&registration.UserID,
		&registration.Status,
		&registration.CreatedAt,
		&registration.UpdatedAt,
		&registration.Event.ID,
		&registration.Event.OrganizerID,
		&registration.Event.Title,
		&registration.Event.Description,
		&registration.Event.Capacity,
		&registration.Event.IsFree,
		&registration.Event.Status,
		&registration.Event.StartDate,
		&registration.Event.EndDate,
		&registration.Event.CreatedAt,
		&registration.Event.UpdatedAt,
		&registration.Participant.ID,
		&registration.Participant.Email,
		&registration.Participant.Name,
		&registration.Participant.UserID,
		&registration.Participant.CreatedAt,
		&registration.Participant.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return registration, nil
}

// GetByID retrieves a registration with its full graph: event, primary
// participant, attendees with participants and responses, and the
// purchase with its items.
func (r *RegistrationRepository) GetByID(id int) (*models.Registration, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM registrations reg
		JOIN events e ON reg.event_id = e.id
		JOIN participants p ON reg.participant_id = p.id
		WHERE reg.id = $1`, registrationGraphColumns)

	registration, err := scanRegistrationGraphRow(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &models.NotFoundError{Resource: "registration", ID: id}
		}
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}

	byID := map[int]*models.Registration{registration.ID: registration}
	if err := r.loadAttendees(byID); err != nil {
		return nil, err
	}
	if err := r.loadPurchases(byID); err != nil {
		return nil, err
	}

	return registration, nil
}

// loadAttendees attaches attendee rows (with participants and responses)
// to the given registrations
func (r *RegistrationRepository) loadAttendees(byID map[int]*models.Registration) error {
	ids := registrationIDs(byID)

	rows, err := r.db.Query(`
		SELECT a.id, a.registration_id, a.participant_id, a.is_primary, a.created_at,
			p.id, p.email, p.name, p.user_id, p.created_at, p.updated_at
		FROM attendees a
		JOIN participants p ON a.participant_id = p.id
		WHERE a.registration_id = ANY($1)
		ORDER BY a.id ASC`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to get attendees: %w", err)
	}
	defer rows.Close()

	attendeesByID := make(map[int]*models.Attendee)
	for rows.Next() {
		attendee := &models.Attendee{Participant: &models.Participant{}}
		err := rows.Scan(
			&attendee.ID,
			&attendee.RegistrationID,
			&attendee.ParticipantID,
			&attendee.IsPrimary,
			&attendee.CreatedAt,
			&attendee.Participant.ID,
			&attendee.Participant.Email,
			&attendee.Participant.Name,
			&attendee.Participant.UserID,
			&attendee.Participant.CreatedAt,
			&attendee.Participant.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to scan attendee: %w", err)
		}
		if registration, ok := byID[attendee.RegistrationID]; ok {
			registration.Attendees = append(registration.Attendees, attendee)
		}
		attendeesByID[attendee.ID] = attendee
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("error iterating attendees: %w", err)
	}

	if len(attendeesByID) == 0 {
		return nil
	}

	return r.loadResponses(ids, attendeesByID)
}

// loadResponses attaches answers (with question labels) to attendees
func (r *RegistrationRepository) loadResponses(registrationIDs []int, attendeesByID map[int]*models.Attendee) error {
	rows, err := r.db.Query(`
		SELECT resp.id, resp.attendee_id, resp.event_question_id, resp.answer, q.label, resp.created_at
		FROM responses resp
		JOIN attendees a ON resp.attendee_id = a.id
		JOIN event_questions eq ON resp.event_question_id = eq.id
		JOIN questions q ON eq.question_id = q.id
		WHERE a.registration_id = ANY($1)
		ORDER BY eq.display_order ASC, resp.id ASC`, pq.Array(registrationIDs))
	if err != nil {
		return fmt.Errorf("failed to get responses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		response := &models.Response{}
		err := rows.Scan(
			&response.ID,
			&response.AttendeeID,
			&response.EventQuestionID,
			&response.Answer,
			&response.QuestionLabel,
			&response.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to scan response: %w", err)
		}
		if attendee, ok := attendeesByID[response.AttendeeID]; ok {
			attendee.Responses = append(attendee.Responses, response)
		}
	}

	if err = rows.Err(); err != nil {
		return fmt.Errorf("error iterating responses: %w", err)
	}

	return nil
}

// loadPurchases attaches purchases and their line items (with ticket
// names) to the given registrations
func (r *RegistrationRepository) loadPurchases(byID map[int]*models.Registration) error {
	ids := registrationIDs(byID)

	rows, err := r.db.Query(`
		SELECT id, registration_id, total_amount, payment_reference, created_at
		FROM purchases
		WHERE registration_id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to get purchases: %w", err)
	}
	defer rows.Close()

	purchasesByID := make(map[int]*models.Purchase)
	for rows.Next() {
		purchase := &models.Purchase{}
		err := rows.Scan(
			&purchase.ID,
			&purchase.RegistrationID,
			&purchase.TotalAmount,
			&purchase.PaymentReference,
			&purchase.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to scan purchase: %w", err)
		}
		if registration, ok := byID[purchase.RegistrationID]; ok {
			registration.Purchase = purchase
		}
		purchasesByID[purchase.ID] = purchase
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("error iterating purchases: %w", err)
	}

	if len(purchasesByID) == 0 {
		return nil
	}

	purchaseIDs := make([]int, 0, len(purchasesByID))
	for id := range purchasesByID {
		purchaseIDs = append(purchaseIDs, id)
	}

	itemRows, err := r.db.Query(`
		SELECT pi.id, pi.purchase_id, pi.ticket_id, pi.quantity, pi.unit_price, t.name
		FROM purchase_items pi
		JOIN tickets t ON pi.ticket_id = t.id
		WHERE pi.purchase_id = ANY($1)
		ORDER BY pi.id ASC`, pq.Array(purchaseIDs))
	if err != nil {
		return fmt.Errorf("failed to get purchase items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		item := &models.PurchaseItem{}
		err := itemRows.Scan(
			&item.ID,
			&item.PurchaseID,
			&item.TicketID,
			&item.Quantity,
			&item.UnitPrice,
			&item.TicketName,
		)
		if err != nil {
			return fmt.Errorf("failed to scan purchase item: %w", err)
		}
		if purchase, ok := purchasesByID[item.PurchaseID]; ok {
			purchase.Items = append(purchase.Items, item)
		}
	}

	if err = itemRows.Err(); err != nil {
		return fmt.Errorf("error iterating purchase items: %w", err)
	}

	return nil
}

func registrationIDs(byID map[int]*models.Registration) []int {
	ids := make([]int, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// UpdateStatus updates only the registration status. Transition rules
// are enforced by the service layer.
func (r *RegistrationRepository) UpdateStatus(id int, status models.RegistrationStatus) error {
	query := `UPDATE registrations SET status = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.Exec(query, id, status, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update registration status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return &models.NotFoundError{Resource: "registration", ID: id}
	}

	return nil
}

// MarkPaid flips a pending registration to confirmed and records the
// payment reference on its purchase. No-op errors if the registration is
// no longer pending, which keeps the payment callback safe to retry.
func (r *RegistrationRepository) MarkPaid(id int, paymentReference string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		UPDATE registrations
		SET status = $2, updated_at = $3
		WHERE id = $1 AND status = $4`,
		id, models.RegistrationConfirmed, time.Now(), models.RegistrationPending)
	if err != nil {
		return fmt.Errorf("failed to confirm registration: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return &models.ValidationError{Message: "registration is not pending payment"}
	}

	_, err = tx.Exec(`
		UPDATE purchases
		SET payment_reference = $2
		WHERE registration_id = $1`, id, paymentReference)
	if err != nil {
		return fmt.Errorf("failed to record payment reference: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit payment confirmation: %w", err)
	}

	return nil
}

// GetPurchaseItems retrieves the purchase line items for a registration.
// Used by cancellation to release inventory per ticket type.
func (r *RegistrationRepository) GetPurchaseItems(registrationID int) ([]*models.PurchaseItem, error) {
	query := `
		SELECT pi.id, pi.purchase_id, pi.ticket_id, pi.quantity, pi.unit_price
		FROM purchase_items pi
		JOIN purchases pu ON pi.purchase_id = pu.id
		WHERE pu.registration_id = $1
		ORDER BY pi.id ASC`

	rows, err := r.db.Query(query, registrationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get purchase items: %w", err)
	}
	defer rows.Close()

	var items []*models.PurchaseItem
	for rows.Next() {
		item := &models.PurchaseItem{}
		err := rows.Scan(&item.ID, &item.PurchaseID, &item.TicketID, &item.Quantity, &item.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase item: %w", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating purchase items: %w", err)
	}

	return items, nil
}

// Search searches for registrations with filters and pagination. Each
// returned registration carries its full graph so callers can render a
// complete view without additional round-trips.
func (r *RegistrationRepository) Search(filters RegistrationSearchFilters) ([]*models.Registration, int, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	if filters.EventID > 0 {
		conditions = append(conditions, fmt.Sprintf("reg.event_id = $%d", argIndex))
		args = append(args, filters.EventID)
		argIndex++
	}

	if filters.UserID > 0 {
		conditions = append(conditions, fmt.Sprintf("(reg.user_id = $%d OR p.user_id = $%d)", argIndex, argIndex))
		args = append(args, filters.UserID)
		argIndex++
	}

	if filters.OrganizerID > 0 {
		conditions = append(conditions, fmt.Sprintf("e.organizer_id = $%d", argIndex))
		args = append(args, filters.OrganizerID)
		argIndex++
	}

	if filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("reg.status = $%d", argIndex))
		args = append(args, filters.Status)
		argIndex++
	}

	if filters.TicketID > 0 {
		conditions = append(conditions, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM purchases pu
			JOIN purchase_items pi ON pi.purchase_id = pu.id
			WHERE pu.registration_id = reg.id AND pi.ticket_id = $%d)`, argIndex))
		args = append(args, filters.TicketID)
		argIndex++
	}

	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		conditions = append(conditions, fmt.Sprintf("(reg.reference ILIKE $%d OR p.name ILIKE $%d OR p.email ILIKE $%d)", argIndex, argIndex, argIndex))
		args = append(args, pattern)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	orderBy := "ORDER BY reg.created_at DESC"
	if filters.SortBy != "" {
		direction := "ASC"
		if filters.SortDesc {
			direction = "DESC"
		}

		switch filters.SortBy {
		case "created_at", "status":
			orderBy = fmt.Sprintf("ORDER BY reg.%s %s", filters.SortBy, direction)
		}
	}

	if filters.Limit <= 0 {
		filters.Limit = 20
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	baseQuery := `
		FROM registrations reg
		JOIN events e ON reg.event_id = e.id
		JOIN participants p ON reg.participant_id = p.id`

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s %s", baseQuery, whereClause)
	var total int
	err := r.db.QueryRow(countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get registration count: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		%s
		%s
		%s
		LIMIT $%d OFFSET $%d`,
		registrationGraphColumns, baseQuery, whereClause, orderBy, argIndex, argIndex+1)

	args = append(args, filters.Limit, filters.Offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search registrations: %w", err)
	}
	defer rows.Close()

	var registrations []*models.Registration
	byID := make(map[int]*models.Registration)
	for rows.Next() {
		registration, err := scanRegistrationGraphRow(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan registration: %w", err)
		}
		registrations = append(registrations, registration)
		byID[registration.ID] = registration
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating registrations: %w", err)
	}

	if len(byID) > 0 {
		if err := r.loadAttendees(byID); err != nil {
			return nil, 0, err
		}
		if err := r.loadPurchases(byID); err != nil {
			return nil, 0, err
		}
	}

	return registrations, total, nil
}
