package domain

import (
	"time"

	"github.com/google/uuid"
)

// Ticket links a purchasing customer to the vendor that issued it.
// Tickets are created at purchase time and are immutable afterwards.
type Ticket struct {
	ID          string    `json:"id"`
	VendorID    string    `json:"vendor_id"`
	CustomerID  string    `json:"customer_id"`
	EventName   string    `json:"event_name"`
	CreatedAt   time.Time `json:"created_at"`
	PurchasedAt time.Time `json:"purchased_at"`
}

// NewTicket creates a purchased ticket stamped with the current time
func NewTicket(vendorID, customerID, eventName string) *Ticket {
	now := time.Now().UTC()
	return &Ticket{
		ID:          uuid.New().String(),
		VendorID:    vendorID,
		CustomerID:  customerID,
		EventName:   eventName,
		CreatedAt:   now,
		PurchasedAt: now,
	}
}
