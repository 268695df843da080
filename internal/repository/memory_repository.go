package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/ticketline/ticketline/internal/domain"
)

// In-memory repository implementations backing tests and the storage-free
// local mode. Entities are copied in and out so callers never share state
// with the store.

// MemoryVendorRepository implements VendorRepository in memory
type MemoryVendorRepository struct {
	mu      sync.RWMutex
	vendors map[string]domain.Vendor

	// FailNext forces the next mutating call to fail, for rollback tests
	FailNext error
}

// NewMemoryVendorRepository creates an empty in-memory vendor store
func NewMemoryVendorRepository() *MemoryVendorRepository {
	return &MemoryVendorRepository{vendors: make(map[string]domain.Vendor)}
}

func (r *MemoryVendorRepository) takeFailure() error {
	err := r.FailNext
	r.FailNext = nil
	return err
}

// Create creates a new vendor
func (r *MemoryVendorRepository) Create(ctx context.Context, vendor *domain.Vendor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeFailure(); err != nil {
		return err
	}
	r.vendors[vendor.ID] = *vendor
	return nil
}

// GetByID retrieves a vendor by ID
func (r *MemoryVendorRepository) GetByID(ctx context.Context, id string) (*domain.Vendor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	vendor, ok := r.vendors[id]
	if !ok {
		return nil, domain.ErrVendorNotFound
	}
	return &vendor, nil
}

// GetByEmail retrieves a vendor by email
func (r *MemoryVendorRepository) GetByEmail(ctx context.Context, email string) (*domain.Vendor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, vendor := range r.vendors {
		if vendor.Email == email {
			v := vendor
			return &v, nil
		}
	}
	return nil, domain.ErrVendorNotFound
}

// GetActive retrieves all active vendors ordered by ID
func (r *MemoryVendorRepository) GetActive(ctx context.Context) ([]*domain.Vendor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var vendors []*domain.Vendor
	for _, vendor := range r.vendors {
		if vendor.Active {
			v := vendor
			vendors = append(vendors, &v)
		}
	}
	sort.Slice(vendors, func(i, j int) bool { return vendors[i].ID < vendors[j].ID })
	return vendors, nil
}

// Update updates a vendor
func (r *MemoryVendorRepository) Update(ctx context.Context, vendor *domain.Vendor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeFailure(); err != nil {
		return err
	}
	if _, ok := r.vendors[vendor.ID]; !ok {
		return domain.ErrVendorNotFound
	}
	r.vendors[vendor.ID] = *vendor
	return nil
}

// UpdateBatch updates multiple vendors
func (r *MemoryVendorRepository) UpdateBatch(ctx context.Context, vendors []*domain.Vendor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeFailure(); err != nil {
		return err
	}
	for _, vendor := range vendors {
		if _, ok := r.vendors[vendor.ID]; !ok {
			return domain.ErrVendorNotFound
		}
	}
	for _, vendor := range vendors {
		r.vendors[vendor.ID] = *vendor
	}
	return nil
}

// MemoryCustomerRepository implements CustomerRepository in memory
type MemoryCustomerRepository struct {
	mu        sync.RWMutex
	customers map[string]domain.Customer

	FailNext error
}

// NewMemoryCustomerRepository creates an empty in-memory customer store
func NewMemoryCustomerRepository() *MemoryCustomerRepository {
	return &MemoryCustomerRepository{customers: make(map[string]domain.Customer)}
}

func (r *MemoryCustomerRepository) takeFailure() error {
	err := r.FailNext
	r.FailNext = nil
	return err
}

// Create creates a new customer
func (r *MemoryCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeFailure(); err != nil {
		return err
	}
	r.customers[customer.ID] = *customer
	return nil
}

// GetByID retrieves a customer by ID
func (r *MemoryCustomerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	customer, ok := r.customers[id]
	if !ok {
		return nil, domain.ErrCustomerNotFound
	}
	return &customer, nil
}

// GetByEmail retrieves a customer by email
func (r *MemoryCustomerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, customer := range r.customers {
		if customer.Email == email {
			c := customer
			return &c, nil
		}
	}
	return nil, domain.ErrCustomerNotFound
}

// GetActive retrieves all active customers ordered by ID
func (r *MemoryCustomerRepository) GetActive(ctx context.Context) ([]*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var customers []*domain.Customer
	for _, customer := range r.customers {
		if customer.Active {
			c := customer
			customers = append(customers, &c)
		}
	}
	sort.Slice(customers, func(i, j int) bool { return customers[i].ID < customers[j].ID })
	return customers, nil
}

// Update updates a customer
func (r *MemoryCustomerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeFailure(); err != nil {
		return err
	}
	if _, ok := r.customers[customer.ID]; !ok {
		return domain.ErrCustomerNotFound
	}
	r.customers[customer.ID] = *customer
	return nil
}

// MemoryTicketRepository implements TicketRepository in memory
type MemoryTicketRepository struct {
	mu      sync.RWMutex
	tickets map[string]domain.Ticket

	FailNext error
}

// NewMemoryTicketRepository creates an empty in-memory ticket store
func NewMemoryTicketRepository() *MemoryTicketRepository {
	return &MemoryTicketRepository{tickets: make(map[string]domain.Ticket)}
}

func (r *MemoryTicketRepository) takeFailure() error {
	err := r.FailNext
	r.FailNext = nil
	return err
}

// SaveBatch persists multiple tickets
func (r *MemoryTicketRepository) SaveBatch(ctx context.Context, tickets []*domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeFailure(); err != nil {
		return err
	}
	for _, ticket := range tickets {
		r.tickets[ticket.ID] = *ticket
	}
	return nil
}

// GetByID retrieves a ticket by ID
func (r *MemoryTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ticket, ok := r.tickets[id]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	return &ticket, nil
}

// List retrieves tickets matching the filter, newest first
func (r *MemoryTicketRepository) List(ctx context.Context, filter *TicketFilter, limit, offset int) ([]*domain.Ticket, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*domain.Ticket
	for _, ticket := range r.tickets {
		if filter != nil {
			if filter.CustomerID != "" && ticket.CustomerID != filter.CustomerID {
				continue
			}
			if filter.VendorID != "" && ticket.VendorID != filter.VendorID {
				continue
			}
			if filter.EventName != "" && ticket.EventName != filter.EventName {
				continue
			}
		}
		t := ticket
		matched = append(matched, &t)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].PurchasedAt.Equal(matched[j].PurchasedAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].PurchasedAt.After(matched[j].PurchasedAt)
	})

	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, total, nil
}

// CountSoldByVendor returns the number of tickets per vendor
func (r *MemoryTicketRepository) CountSoldByVendor(ctx context.Context) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int)
	for _, ticket := range r.tickets {
		counts[ticket.VendorID]++
	}
	return counts, nil
}

// Delete removes a ticket by ID
func (r *MemoryTicketRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tickets[id]; !ok {
		return domain.ErrTicketNotFound
	}
	delete(r.tickets, id)
	return nil
}

// Count returns the total number of stored tickets
func (r *MemoryTicketRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tickets)
}

// MemoryConfigRepository implements EventConfigRepository in memory
type MemoryConfigRepository struct {
	mu     sync.RWMutex
	active *domain.EventConfiguration

	FailNext error
}

// NewMemoryConfigRepository creates an empty in-memory configuration store
func NewMemoryConfigRepository() *MemoryConfigRepository {
	return &MemoryConfigRepository{}
}

// Save inserts or replaces the active configuration
func (r *MemoryConfigRepository) Save(ctx context.Context, cfg *domain.EventConfiguration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.FailNext; err != nil {
		r.FailNext = nil
		return err
	}
	c := *cfg
	r.active = &c
	return nil
}

// GetActive retrieves the active configuration, nil if none
func (r *MemoryConfigRepository) GetActive(ctx context.Context) (*domain.EventConfiguration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.active == nil {
		return nil, nil
	}
	c := *r.active
	return &c, nil
}
