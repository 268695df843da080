package domain

import (
	"strings"
	"time"
)

// EventConfiguration holds the active event's capacity and rate limits.
// Exactly one configuration is active at a time; replacing it resets all
// derived pool counters.
type EventConfiguration struct {
	ID                    string    `json:"id"`
	EventName             string    `json:"event_name"`
	EventDate             time.Time `json:"event_date"`
	TotalTickets          int       `json:"total_tickets"`
	MaxCapacity           int       `json:"max_capacity"`
	TicketReleaseRate     int       `json:"ticket_release_rate"`
	CustomerRetrievalRate int       `json:"customer_retrieval_rate"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// Validate checks the configuration constraints
func (c *EventConfiguration) Validate() error {
	if strings.TrimSpace(c.EventName) == "" {
		return ErrInvalidConfiguration
	}
	if c.MaxCapacity <= 0 {
		return ErrInvalidConfiguration
	}
	if c.TicketReleaseRate <= 0 {
		return ErrInvalidConfiguration
	}
	if c.CustomerRetrievalRate <= 0 {
		return ErrInvalidConfiguration
	}
	if c.TotalTickets < 0 {
		return ErrInvalidConfiguration
	}
	return nil
}
