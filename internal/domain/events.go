package domain

import "time"

// TicketEventType identifies pool lifecycle events published to Kafka
type TicketEventType string

const (
	TicketEventPurchased         TicketEventType = "tickets.purchased"
	TicketEventReleased          TicketEventType = "tickets.released"
	TicketEventVendorDeactivated TicketEventType = "vendor.deactivated"
	TicketEventEventConfigured   TicketEventType = "event.configured"
)

// TicketEvent is the envelope for pool events on the wire
type TicketEvent struct {
	EventID    string          `json:"event_id"`
	EventType  TicketEventType `json:"event_type"`
	EventName  string          `json:"event_name,omitempty"`
	VendorID   string          `json:"vendor_id,omitempty"`
	CustomerID string          `json:"customer_id,omitempty"`
	Count      int             `json:"count,omitempty"`
	Tickets    []*Ticket       `json:"tickets,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Key returns the partition key for the event. Events for the same
// participant stay ordered.
func (e *TicketEvent) Key() string {
	if e.CustomerID != "" {
		return e.CustomerID
	}
	if e.VendorID != "" {
		return e.VendorID
	}
	return e.EventName
}
