package pool

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ticketline/ticketline/internal/domain"
	"github.com/ticketline/ticketline/internal/repository"
	"github.com/ticketline/ticketline/pkg/logger"
	"go.uber.org/zap"
)

// Status is a point-in-time snapshot of the pool counters
type Status struct {
	Configured            bool           `json:"configured"`
	EventName             string         `json:"event_name,omitempty"`
	AvailableTickets      int            `json:"available_tickets"`
	MaxCapacity           int            `json:"max_capacity,omitempty"`
	TicketReleaseRate     int            `json:"ticket_release_rate,omitempty"`
	CustomerRetrievalRate int            `json:"customer_retrieval_rate,omitempty"`
	VendorAvailable       map[string]int `json:"vendor_available,omitempty"`
	VendorSold            map[string]int `json:"vendor_sold,omitempty"`
	CustomerRemaining     map[string]int `json:"customer_remaining,omitempty"`
}

// Purchased describes the outcome of a purchase call
type Purchased struct {
	Count   int
	Tickets []*domain.Ticket
}

// Controller is the single authority over the shared ticket pool. Every
// operation runs under one controller-wide mutex; counter updates and
// persistence happen inside the same critical section so the in-memory
// maps and the persisted records stay consistent at the boundary of a
// single call.
type Controller struct {
	mu sync.Mutex

	vendors   repository.VendorRepository
	customers repository.CustomerRepository
	tickets   repository.TicketRepository
	configs   repository.EventConfigRepository
	log       *logger.Logger

	config            *domain.EventConfiguration
	availableTickets  int
	vendorAvailable   map[string]int
	vendorSold        map[string]int
	customerRemaining map[string]int
	shuttingDown      bool
}

// NewController creates an unconfigured pool controller
func NewController(
	vendors repository.VendorRepository,
	customers repository.CustomerRepository,
	tickets repository.TicketRepository,
	configs repository.EventConfigRepository,
) *Controller {
	return &Controller{
		vendors:           vendors,
		customers:         customers,
		tickets:           tickets,
		configs:           configs,
		log:               logger.Get(),
		vendorAvailable:   make(map[string]int),
		vendorSold:        make(map[string]int),
		customerRemaining: make(map[string]int),
	}
}

func (c *Controller) guard() error {
	if c.shuttingDown {
		return domain.ErrShuttingDown
	}
	if c.config == nil {
		return domain.ErrNotConfigured
	}
	return nil
}

// Configure validates and installs a new event configuration, clearing all
// pool counters and rebuilding them from persisted active participants.
// On any failure the previous configuration stays active and untouched.
func (c *Controller) Configure(ctx context.Context, cfg *domain.EventConfiguration) (*domain.EventConfiguration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.shuttingDown {
		return nil, domain.ErrShuttingDown
	}
	if cfg == nil {
		return nil, domain.ErrInvalidConfiguration
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	next := *cfg
	if next.ID == "" {
		next.ID = uuid.New().String()
	}
	if next.CreatedAt.IsZero() {
		next.CreatedAt = time.Now().UTC()
	}

	state, err := c.rebuildState(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrResourceProcessing, err)
	}
	next.TotalTickets = state.totalReleased

	if err := c.configs.Save(ctx, &next); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrResourceProcessing, err)
	}

	c.config = &next
	c.availableTickets = state.available
	c.vendorAvailable = state.vendorAvailable
	c.vendorSold = state.vendorSold
	c.customerRemaining = state.customerRemaining

	c.log.Info("event configured",
		zap.String("event_name", next.EventName),
		zap.Int("max_capacity", next.MaxCapacity),
		zap.Int("available_tickets", c.availableTickets),
	)
	return &next, nil
}

// Release adds count tickets from a vendor into the shared pool
func (c *Controller) Release(ctx context.Context, vendorID string, count int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.guard(); err != nil {
		return err
	}
	if count <= 0 {
		return domain.ErrInvalidQuantity
	}

	vendor, err := c.vendors.GetByID(ctx, vendorID)
	if err != nil {
		return err
	}
	if !vendor.Active {
		return domain.ErrVendorInactive
	}

	c.trackVendor(vendor)

	sold := c.vendorSold[vendorID]
	available := c.vendorAvailable[vendorID]

	if sold+available+count > vendor.TicketsToSell {
		return domain.ErrReleaseLimitExceeded
	}
	if c.availableTickets+count > c.config.MaxCapacity {
		return domain.ErrCapacityExceeded
	}

	updated := *vendor
	updated.TicketsReleased += count
	if updated.SoldOut() {
		updated.Active = false
	}

	cfg := *c.config
	cfg.TotalTickets += count

	if err := c.vendors.Update(ctx, &updated); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrResourceProcessing, err)
	}
	if err := c.configs.Save(ctx, &cfg); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrResourceProcessing, err)
	}

	c.vendorAvailable[vendorID] += count
	c.availableTickets += count
	c.config = &cfg

	c.log.Debug("tickets released",
		zap.String("vendor_id", vendorID),
		zap.Int("count", count),
		zap.Int("available_tickets", c.availableTickets),
	)
	return nil
}

// Purchase draws up to requested tickets for a customer, allocating across
// active vendors largest-available-first with ties broken by vendor id.
// Returns the number actually purchased, which may be zero when the pool
// is empty.
func (c *Controller) Purchase(ctx context.Context, customerID string, requested int) (*Purchased, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.guard(); err != nil {
		return nil, err
	}
	if requested <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	customer, err := c.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	c.trackCustomer(customer)
	remaining := c.customerRemaining[customerID]
	if remaining <= 0 {
		return nil, domain.ErrPurchaseLimitReached
	}

	allowed := min(requested, remaining, c.availableTickets)
	if allowed <= 0 {
		return &Purchased{}, nil
	}

	// Candidate vendors with pool inventory, largest first, ties by id
	type candidate struct {
		id        string
		available int
	}
	var candidates []candidate
	for id, available := range c.vendorAvailable {
		if available > 0 {
			candidates = append(candidates, candidate{id: id, available: available})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].available != candidates[j].available {
			return candidates[i].available > candidates[j].available
		}
		return candidates[i].id < candidates[j].id
	})

	var (
		newTickets []*domain.Ticket
		drawn      = make(map[string]int)
		updated    []*domain.Vendor
		needed     = allowed
	)
	for _, cand := range candidates {
		if needed == 0 {
			break
		}
		vendor, err := c.vendors.GetByID(ctx, cand.id)
		if err != nil {
			return nil, err
		}
		if !vendor.Active {
			continue
		}

		take := min(needed, cand.available)
		for i := 0; i < take; i++ {
			newTickets = append(newTickets, domain.NewTicket(vendor.ID, customerID, c.config.EventName))
		}

		v := *vendor
		v.TotalTicketsSold += take
		if v.SoldOut() {
			v.Active = false
		}
		updated = append(updated, &v)
		drawn[cand.id] = take
		needed -= take
	}

	total := allowed - needed
	if total == 0 {
		return &Purchased{}, nil
	}

	buyer := *customer
	buyer.TotalTicketsPurchased += total

	cfg := *c.config

	if err := c.tickets.SaveBatch(ctx, newTickets); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrResourceProcessing, err)
	}
	if err := c.vendors.UpdateBatch(ctx, updated); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrResourceProcessing, err)
	}
	if err := c.customers.Update(ctx, &buyer); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrResourceProcessing, err)
	}
	if err := c.configs.Save(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrResourceProcessing, err)
	}

	for id, take := range drawn {
		c.vendorAvailable[id] -= take
		c.vendorSold[id] += take
	}
	c.availableTickets -= total
	c.customerRemaining[customerID] = remaining - total
	c.config = &cfg

	c.log.Debug("tickets purchased",
		zap.String("customer_id", customerID),
		zap.Int("requested", requested),
		zap.Int("purchased", total),
		zap.Int("available_tickets", c.availableTickets),
	)
	return &Purchased{Count: total, Tickets: newTickets}, nil
}

// Reload rebuilds the pool counters from persisted active participants.
// Invoked internally by Configure and exposed for recovery.
func (c *Controller) Reload(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.guard(); err != nil {
		return err
	}

	state, err := c.rebuildState(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrResourceProcessing, err)
	}

	cfg := *c.config
	cfg.TotalTickets = state.totalReleased
	if err := c.configs.Save(ctx, &cfg); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrResourceProcessing, err)
	}

	c.config = &cfg
	c.availableTickets = state.available
	c.vendorAvailable = state.vendorAvailable
	c.vendorSold = state.vendorSold
	c.customerRemaining = state.customerRemaining

	c.log.Info("pool counters reloaded", zap.Int("available_tickets", c.availableTickets))
	return nil
}

// Synchronize persists per-vendor sold counts and the configuration totals
// from the current in-memory maps
func (c *Controller) Synchronize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.guard(); err != nil {
		return err
	}
	return c.synchronizeLocked(ctx)
}

func (c *Controller) synchronizeLocked(ctx context.Context) error {
	var stale []*domain.Vendor
	for id, sold := range c.vendorSold {
		vendor, err := c.vendors.GetByID(ctx, id)
		if err != nil {
			if domain.IsNotFoundError(err) {
				continue
			}
			return fmt.Errorf("%w: %v", domain.ErrResourceProcessing, err)
		}
		if vendor.TotalTicketsSold != sold {
			v := *vendor
			v.TotalTicketsSold = sold
			if v.SoldOut() {
				v.Active = false
			}
			stale = append(stale, &v)
		}
	}

	if err := c.vendors.UpdateBatch(ctx, stale); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrResourceProcessing, err)
	}
	if err := c.configs.Save(ctx, c.config); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrResourceProcessing, err)
	}
	return nil
}

// Status returns a snapshot of the pool counters
func (c *Controller) Status() *Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	status := &Status{
		Configured:        c.config != nil && !c.shuttingDown,
		AvailableTickets:  c.availableTickets,
		VendorAvailable:   copyCounts(c.vendorAvailable),
		VendorSold:        copyCounts(c.vendorSold),
		CustomerRemaining: copyCounts(c.customerRemaining),
	}
	if c.config != nil {
		status.EventName = c.config.EventName
		status.MaxCapacity = c.config.MaxCapacity
		status.TicketReleaseRate = c.config.TicketReleaseRate
		status.CustomerRetrievalRate = c.config.CustomerRetrievalRate
	}
	return status
}

// Shutdown reconciles and persists final counters for every tracked
// participant, then refuses further operations
func (c *Controller) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.shuttingDown {
		return nil
	}
	c.shuttingDown = true

	if c.config == nil {
		return nil
	}

	if err := c.synchronizeLocked(ctx); err != nil {
		c.log.Error("failed to reconcile vendors on shutdown", zap.Error(err))
		return err
	}

	for id, remaining := range c.customerRemaining {
		customer, err := c.customers.GetByID(ctx, id)
		if err != nil {
			if domain.IsNotFoundError(err) {
				continue
			}
			return fmt.Errorf("%w: %v", domain.ErrResourceProcessing, err)
		}
		purchased := customer.TicketsToPurchase - remaining
		if purchased < 0 {
			purchased = 0
		}
		if customer.TotalTicketsPurchased != purchased {
			buyer := *customer
			buyer.TotalTicketsPurchased = purchased
			if err := c.customers.Update(ctx, &buyer); err != nil {
				return fmt.Errorf("%w: %v", domain.ErrResourceProcessing, err)
			}
		}
	}

	c.log.Info("pool controller shut down", zap.Int("available_tickets", c.availableTickets))
	return nil
}

// trackVendor seeds counters for a vendor not seen since the last reload
func (c *Controller) trackVendor(vendor *domain.Vendor) {
	if _, ok := c.vendorSold[vendor.ID]; ok {
		return
	}
	available := vendor.TicketsReleased - vendor.TotalTicketsSold
	if available < 0 {
		available = 0
	}
	c.vendorAvailable[vendor.ID] = available
	c.vendorSold[vendor.ID] = vendor.TotalTicketsSold
	c.availableTickets += available
}

// trackCustomer seeds the remaining allowance for a customer not seen
// since the last reload
func (c *Controller) trackCustomer(customer *domain.Customer) {
	if _, ok := c.customerRemaining[customer.ID]; ok {
		return
	}
	c.customerRemaining[customer.ID] = customer.RemainingToPurchase()
}

type poolState struct {
	available         int
	totalReleased     int
	vendorAvailable   map[string]int
	vendorSold        map[string]int
	customerRemaining map[string]int
}

// rebuildState derives fresh counters from persisted records. Per-vendor
// sold counts are recomputed from the ticket collection, and pool
// inventory is tickets released minus tickets sold, floored at zero.
func (c *Controller) rebuildState(ctx context.Context) (*poolState, error) {
	state := &poolState{
		vendorAvailable:   make(map[string]int),
		vendorSold:        make(map[string]int),
		customerRemaining: make(map[string]int),
	}

	soldCounts, err := c.tickets.CountSoldByVendor(ctx)
	if err != nil {
		return nil, err
	}

	activeVendors, err := c.vendors.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	for _, vendor := range activeVendors {
		sold := soldCounts[vendor.ID]
		available := vendor.TicketsReleased - sold
		if available < 0 {
			available = 0
		}
		state.vendorAvailable[vendor.ID] = available
		state.vendorSold[vendor.ID] = sold
		state.available += available
		state.totalReleased += vendor.TicketsReleased
	}

	activeCustomers, err := c.customers.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	for _, customer := range activeCustomers {
		state.customerRemaining[customer.ID] = customer.RemainingToPurchase()
	}

	return state, nil
}

func copyCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
