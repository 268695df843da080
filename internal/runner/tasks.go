package runner

import (
	"context"
	"errors"
	"time"

	"github.com/ticketline/ticketline/internal/domain"
	"github.com/ticketline/ticketline/internal/pool"
	"github.com/ticketline/ticketline/internal/repository"
)

// Pool is the subset of the pool controller the tasks depend on
type Pool interface {
	Status() *pool.Status
	Release(ctx context.Context, vendorID string, count int) error
	Purchase(ctx context.Context, customerID string, requested int) (*pool.Purchased, error)
}

// VendorTask releases tickets into the pool on the vendor's cadence
type VendorTask struct {
	vendorID string
	interval time.Duration
	pool     Pool
	vendors  repository.VendorRepository
}

// NewVendorTask creates the release task for one vendor
func NewVendorTask(vendor *domain.Vendor, p Pool, vendors repository.VendorRepository) *VendorTask {
	return &VendorTask{
		vendorID: vendor.ID,
		interval: vendor.TicketReleaseInterval,
		pool:     p,
		vendors:  vendors,
	}
}

func (t *VendorTask) ID() string { return t.vendorID }

func (t *VendorTask) Interval() time.Duration { return t.interval }

// RunCycle attempts one release. The attempt size is capped by the
// vendor's per-cycle rate, the pool headroom, and the vendor's remaining
// sellable tickets.
func (t *VendorTask) RunCycle(ctx context.Context) (bool, error) {
	status := t.pool.Status()
	if !status.Configured {
		return false, nil
	}

	vendor, err := t.vendors.GetByID(ctx, t.vendorID)
	if err != nil {
		if domain.IsNotFoundError(err) {
			return true, nil
		}
		return false, err
	}
	if !vendor.Active {
		return true, nil
	}

	remaining := vendor.RemainingToSell()
	if remaining <= 0 {
		return true, nil
	}

	attempt := min(vendor.TicketsPerRelease, status.MaxCapacity-status.AvailableTickets, remaining)
	if attempt <= 0 {
		// Pool at capacity, try again next cycle
		return false, nil
	}

	err = t.pool.Release(ctx, t.vendorID, attempt)
	if errors.Is(err, domain.ErrNotConfigured) || errors.Is(err, domain.ErrCapacityExceeded) {
		// Lost the race, recompute next cycle
		return false, nil
	}
	return false, err
}

// CustomerTask draws tickets from the pool on the customer's cadence
type CustomerTask struct {
	customerID string
	interval   time.Duration
	pool       Pool
	customers  repository.CustomerRepository
}

// NewCustomerTask creates the purchase task for one customer
func NewCustomerTask(customer *domain.Customer, p Pool, customers repository.CustomerRepository) *CustomerTask {
	return &CustomerTask{
		customerID: customer.ID,
		interval:   customer.TicketRetrievalInterval,
		pool:       p,
		customers:  customers,
	}
}

func (t *CustomerTask) ID() string { return t.customerID }

func (t *CustomerTask) Interval() time.Duration { return t.interval }

// RunCycle attempts one purchase. The attempt size is capped by the
// configured retrieval rate, the pool availability, and the customer's
// remaining allowance.
func (t *CustomerTask) RunCycle(ctx context.Context) (bool, error) {
	status := t.pool.Status()
	if !status.Configured {
		return false, nil
	}

	customer, err := t.customers.GetByID(ctx, t.customerID)
	if err != nil {
		if domain.IsNotFoundError(err) {
			return true, nil
		}
		return false, err
	}
	if !customer.Active {
		return true, nil
	}

	remaining := customer.RemainingToPurchase()
	if remaining <= 0 {
		return true, nil
	}

	attempt := min(status.CustomerRetrievalRate, status.AvailableTickets, remaining)
	if attempt <= 0 {
		// Pool empty, try again next cycle
		return false, nil
	}

	result, err := t.pool.Purchase(ctx, t.customerID, attempt)
	if errors.Is(err, domain.ErrNotConfigured) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return result.Count > 0 && remaining-result.Count <= 0, nil
}
