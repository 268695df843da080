package domain

import "time"

// Customer draws tickets from the shared pool on its own cadence.
// TotalTicketsPurchased is monotonic and never exceeds TicketsToPurchase.
type Customer struct {
	Identity

	TicketsToPurchase       int           `json:"tickets_to_purchase"`
	TicketRetrievalInterval time.Duration `json:"ticket_retrieval_interval"`
	TotalTicketsPurchased   int           `json:"total_tickets_purchased"`
}

// Validate checks customer registration parameters
func (c *Customer) Validate() error {
	if err := c.Identity.Validate(); err != nil {
		return err
	}
	if c.TicketsToPurchase <= 0 {
		return ErrInvalidLimit
	}
	if c.TicketRetrievalInterval <= 0 {
		return ErrInvalidInterval
	}
	return nil
}

// RemainingToPurchase returns the customer's remaining lifetime allowance
func (c *Customer) RemainingToPurchase() int {
	remaining := c.TicketsToPurchase - c.TotalTicketsPurchased
	if remaining < 0 {
		return 0
	}
	return remaining
}

// AtLimit reports whether the customer has exhausted its allowance
func (c *Customer) AtLimit() bool {
	return c.TotalTicketsPurchased >= c.TicketsToPurchase
}
