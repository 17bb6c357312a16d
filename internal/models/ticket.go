package models

import "time"

// TicketStatus represents the sale status of a ticket type
type TicketStatus string

const (
	TicketActive   TicketStatus = "active"
	TicketInactive TicketStatus = "inactive"
)

// Ticket represents a purchasable ticket type for an event. QuantitySold
// is the only mutable aggregate in the system and is adjusted exclusively
// through the inventory reserve/release operations.
type Ticket struct {
	ID            int          `json:"id" db:"id"`
	EventID       int          `json:"event_id" db:"event_id"`
	Name          string       `json:"name" db:"name"`
	Description   string       `json:"description" db:"description"`
	Price         int          `json:"price" db:"price"` // Price in cents
	QuantityTotal int          `json:"quantity_total" db:"quantity_total"`
	QuantitySold  int          `json:"quantity_sold" db:"quantity_sold"`
	SaleStart     time.Time    `json:"sale_start" db:"sale_start"`
	SaleEnd       time.Time    `json:"sale_end" db:"sale_end"`
	Status        TicketStatus `json:"status" db:"status"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
}

// Remaining returns the number of unsold units
func (t *Ticket) Remaining() int {
	remaining := t.QuantityTotal - t.QuantitySold
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsActive returns true if the ticket type is open for purchase
func (t *Ticket) IsActive() bool {
	return t.Status == TicketActive
}

// IsOnSale returns true if now falls within the ticket's sales window
func (t *Ticket) IsOnSale(now time.Time) bool {
	if now.Before(t.SaleStart) {
		return false
	}
	if now.After(t.SaleEnd) {
		return false
	}
	return true
}

// PriceInCurrency returns the ticket price in the main currency unit
func (t *Ticket) PriceInCurrency() float64 {
	return float64(t.Price) / 100.0
}
