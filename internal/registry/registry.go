package registry

import (
	"context"
	"sync"
	"time"

	"github.com/ticketline/ticketline/internal/domain"
	"github.com/ticketline/ticketline/internal/repository"
	"github.com/ticketline/ticketline/internal/runner"
	"github.com/ticketline/ticketline/pkg/logger"
	"go.uber.org/zap"
)

// Registry tracks the loop runners of currently-active participants,
// keyed by participant id. It is a bookkeeping layer: business rules
// live in the pool controller, the registry only starts and stops loops
// and keeps the active flag persisted.
type Registry struct {
	pool      runner.Pool
	vendors   repository.VendorRepository
	customers repository.CustomerRepository
	backoff   time.Duration
	log       *logger.Logger

	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	runner *runner.Runner
	role   domain.ParticipantRole
}

// NewRegistry creates an empty registry
func NewRegistry(
	p runner.Pool,
	vendors repository.VendorRepository,
	customers repository.CustomerRepository,
	backoff time.Duration,
) *Registry {
	return &Registry{
		pool:      p,
		vendors:   vendors,
		customers: customers,
		backoff:   backoff,
		log:       logger.Get(),
		entries:   make(map[string]*entry),
	}
}

// StartVendor starts the release loop for an active vendor. Starting an
// already-tracked participant is a no-op.
func (r *Registry) StartVendor(ctx context.Context, vendor *domain.Vendor) error {
	task := runner.NewVendorTask(vendor, r.pool, r.vendors)
	return r.start(ctx, vendor.ID, domain.RoleVendor, task)
}

// StartCustomer starts the purchase loop for an active customer
func (r *Registry) StartCustomer(ctx context.Context, customer *domain.Customer) error {
	task := runner.NewCustomerTask(customer, r.pool, r.customers)
	return r.start(ctx, customer.ID, domain.RoleCustomer, task)
}

func (r *Registry) start(ctx context.Context, id string, role domain.ParticipantRole, task runner.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; ok {
		return nil
	}

	run := runner.NewRunner(task, r.backoff, func(id string) {
		r.onLoopExit(context.Background(), id, role)
	})
	if err := run.Start(ctx); err != nil {
		return err
	}

	r.entries[id] = &entry{runner: run, role: role}
	r.log.Info("participant loop started",
		zap.String("participant_id", id),
		zap.String("role", string(role)),
	)
	return nil
}

// Deactivate stops a participant's loop, marks it inactive, persists, and
// removes it from the registry
func (r *Registry) Deactivate(ctx context.Context, id string) error {
	r.mu.Lock()
	e, ok := r.entries[id]
	if ok {
		delete(r.entries, id)
	}
	r.mu.Unlock()

	if e != nil {
		e.runner.Stop()
		return r.markInactive(ctx, id, e.role)
	}

	// Not tracked: still try to flip the persisted flag so explicit
	// deactivation works for participants without a running loop
	if err := r.markInactive(ctx, id, domain.RoleVendor); err == nil {
		return nil
	}
	return r.markInactive(ctx, id, domain.RoleCustomer)
}

// onLoopExit is invoked by a runner whose loop terminated on its own
func (r *Registry) onLoopExit(ctx context.Context, id string, role domain.ParticipantRole) {
	r.mu.Lock()
	delete(r.entries, id)
	r.mu.Unlock()

	if err := r.markInactive(ctx, id, role); err != nil {
		r.log.Warn("failed to mark participant inactive after loop exit",
			zap.String("participant_id", id),
			zap.Error(err),
		)
	}
}

func (r *Registry) markInactive(ctx context.Context, id string, role domain.ParticipantRole) error {
	switch role {
	case domain.RoleVendor:
		vendor, err := r.vendors.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !vendor.Active {
			return nil
		}
		vendor.Active = false
		return r.vendors.Update(ctx, vendor)
	default:
		customer, err := r.customers.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !customer.Active {
			return nil
		}
		customer.Active = false
		return r.customers.Update(ctx, customer)
	}
}

// Tracked reports whether a participant currently has a running loop
func (r *Registry) Tracked(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[id]
	return ok
}

// Count returns the number of tracked participants
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// StopAll stops every tracked loop without flipping active flags, for
// graceful shutdown where the pool controller persists final state
func (r *Registry) StopAll() {
	r.mu.Lock()
	entries := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	r.entries = make(map[string]*entry)
	r.mu.Unlock()

	for _, e := range entries {
		e.runner.Stop()
	}
	r.log.Info("all participant loops stopped", zap.Int("count", len(entries)))
}
