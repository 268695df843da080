package repository

import (
	"context"

	"github.com/ticketline/ticketline/internal/domain"
)

// VendorRepository defines the interface for vendor data access
type VendorRepository interface {
	// Create creates a new vendor
	Create(ctx context.Context, vendor *domain.Vendor) error
	// GetByID retrieves a vendor by ID
	GetByID(ctx context.Context, id string) (*domain.Vendor, error)
	// GetByEmail retrieves a vendor by email
	GetByEmail(ctx context.Context, email string) (*domain.Vendor, error)
	// GetActive retrieves all active vendors
	GetActive(ctx context.Context) ([]*domain.Vendor, error)
	// Update updates a vendor's counters and active flag
	Update(ctx context.Context, vendor *domain.Vendor) error
	// UpdateBatch updates multiple vendors at once
	UpdateBatch(ctx context.Context, vendors []*domain.Vendor) error
}

// CustomerRepository defines the interface for customer data access
type CustomerRepository interface {
	// Create creates a new customer
	Create(ctx context.Context, customer *domain.Customer) error
	// GetByID retrieves a customer by ID
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	// GetByEmail retrieves a customer by email
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	// GetActive retrieves all active customers
	GetActive(ctx context.Context) ([]*domain.Customer, error)
	// Update updates a customer's counters and active flag
	Update(ctx context.Context, customer *domain.Customer) error
}

// TicketRepository defines the interface for ticket data access
type TicketRepository interface {
	// SaveBatch persists multiple tickets at once
	SaveBatch(ctx context.Context, tickets []*domain.Ticket) error
	// GetByID retrieves a ticket by ID
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	// List retrieves tickets filtered by customer and/or vendor
	List(ctx context.Context, filter *TicketFilter, limit, offset int) ([]*domain.Ticket, int, error)
	// CountSoldByVendor returns the number of purchased tickets per vendor
	CountSoldByVendor(ctx context.Context) (map[string]int, error)
	// Delete removes a ticket by ID
	Delete(ctx context.Context, id string) error
}

// TicketFilter contains filter options for listing tickets
type TicketFilter struct {
	CustomerID string
	VendorID   string
	EventName  string
}

// EventConfigRepository defines the interface for event configuration data access
type EventConfigRepository interface {
	// Save inserts or replaces the active configuration
	Save(ctx context.Context, cfg *domain.EventConfiguration) error
	// GetActive retrieves the active configuration, nil if none
	GetActive(ctx context.Context) (*domain.EventConfiguration, error)
}

// StatusRepository caches pool status snapshots for read-path consumers
type StatusRepository interface {
	// SaveSnapshot stores a status snapshot
	SaveSnapshot(ctx context.Context, snapshot map[string]interface{}) error
	// GetSnapshot retrieves the last stored snapshot, nil if none
	GetSnapshot(ctx context.Context) (map[string]string, error)
}
