package repositories

import (
	"database/sql"
	"fmt"

	"event-registration-platform/internal/models"

	"github.com/lib/pq"
)

// TicketRepository handles ticket catalog reads and is the inventory
// ledger: Reserve and Release are the only mutators of quantity_sold in
// the entire system.
type TicketRepository struct {
	db *sql.DB
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(db *sql.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

const ticketColumns = "id, event_id, name, description, price, quantity_total, quantity_sold, sale_start, sale_end, status, created_at"

func scanTicket(row interface{ Scan(...interface{}) error }) (*models.Ticket, error) {
	ticket := &models.Ticket{}
	err := row.Scan(
		&ticket.ID,
		&ticket.EventID,
		&ticket.Name,
		&ticket.Description,
		&ticket.Price,
		&ticket.QuantityTotal,
		&ticket.QuantitySold,
		&ticket.SaleStart,
		&ticket.SaleEnd,
		&ticket.Status,
		&ticket.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// GetByID retrieves a ticket by ID
func (r *TicketRepository) GetByID(id int) (*models.Ticket, error) {
	query := fmt.Sprintf("SELECT %s FROM tickets WHERE id = $1", ticketColumns)

	ticket, err := scanTicket(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &models.NotFoundError{Resource: "ticket", ID: id}
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	return ticket, nil
}

// GetByIDs retrieves multiple tickets by ID. Tickets missing from the
// result were not found; callers compare lengths.
func (r *TicketRepository) GetByIDs(ids []int) ([]*models.Ticket, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT %s FROM tickets WHERE id = ANY($1) ORDER BY id ASC", ticketColumns)

	rows, err := r.db.Query(query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*models.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tickets: %w", err)
	}

	return tickets, nil
}

// GetByEvent retrieves all ticket types for an event
func (r *TicketRepository) GetByEvent(eventID int) ([]*models.Ticket, error) {
	query := fmt.Sprintf("SELECT %s FROM tickets WHERE event_id = $1 ORDER BY price ASC, created_at ASC", ticketColumns)

	rows, err := r.db.Query(query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tickets by event: %w", err)
	}
	defer rows.Close()

	var tickets []*models.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tickets: %w", err)
	}

	return tickets, nil
}

// Reserve increments quantity_sold by qty inside the caller's
// transaction. The conditional UPDATE serializes concurrent requests on
// the ticket row: if the guard fails no row is affected and a
// CapacityError is returned, aborting the surrounding transaction.
func (r *TicketRepository) Reserve(tx *sql.Tx, ticketID, qty int) error {
	query := `
		UPDATE tickets
		SET quantity_sold = quantity_sold + $2
		WHERE id = $1 AND quantity_sold + $2 <= quantity_total`

	result, err := tx.Exec(query, ticketID, qty)
	if err != nil {
		return fmt.Errorf("failed to reserve tickets: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		var remaining int
		if err := tx.QueryRow("SELECT quantity_total - quantity_sold FROM tickets WHERE id = $1", ticketID).Scan(&remaining); err != nil {
			if err == sql.ErrNoRows {
				return &models.NotFoundError{Resource: "ticket", ID: ticketID}
			}
			return fmt.Errorf("failed to check ticket availability: %w", err)
		}
		return &models.CapacityError{
			Message: fmt.Sprintf("insufficient tickets available for ticket %d (requested: %d, available: %d)", ticketID, qty, remaining),
		}
	}

	return nil
}

// Release decrements quantity_sold by qty, clamping at zero so the count
// never goes negative. Used by cancellation as the compensating step;
// callers log failures rather than aborting the cancellation.
func (r *TicketRepository) Release(ticketID, qty int) error {
	query := `
		UPDATE tickets
		SET quantity_sold = GREATEST(quantity_sold - $2, 0)
		WHERE id = $1`

	result, err := r.db.Exec(query, ticketID, qty)
	if err != nil {
		return fmt.Errorf("failed to release tickets: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return &models.NotFoundError{Resource: "ticket", ID: ticketID}
	}

	return nil
}
