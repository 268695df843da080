package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ticketline/ticketline/internal/domain"
	"github.com/ticketline/ticketline/internal/pool"
	"github.com/ticketline/ticketline/internal/repository"
)

type fixture struct {
	vendors   *repository.MemoryVendorRepository
	customers *repository.MemoryCustomerRepository
	ctrl      *pool.Controller
	reg       *Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		vendors:   repository.NewMemoryVendorRepository(),
		customers: repository.NewMemoryCustomerRepository(),
	}
	f.ctrl = pool.NewController(f.vendors, f.customers,
		repository.NewMemoryTicketRepository(), repository.NewMemoryConfigRepository())
	f.reg = NewRegistry(f.ctrl, f.vendors, f.customers, time.Millisecond)

	_, err := f.ctrl.Configure(context.Background(), &domain.EventConfiguration{
		EventName:             "registry test",
		MaxCapacity:           100,
		TicketReleaseRate:     10,
		CustomerRetrievalRate: 5,
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) vendor(t *testing.T, id string, toSell int) *domain.Vendor {
	t.Helper()
	v := &domain.Vendor{
		Identity:              domain.Identity{ID: id, Name: id, Email: id + "@v.test", Active: true},
		TicketsPerRelease:     10,
		TicketReleaseInterval: 5 * time.Millisecond,
		TicketsToSell:         toSell,
	}
	require.NoError(t, f.vendors.Create(context.Background(), v))
	return v
}

func (f *fixture) customer(t *testing.T, id string, toPurchase int) *domain.Customer {
	t.Helper()
	c := &domain.Customer{
		Identity:                domain.Identity{ID: id, Name: id, Email: id + "@c.test", Active: true},
		TicketsToPurchase:       toPurchase,
		TicketRetrievalInterval: 5 * time.Millisecond,
	}
	require.NoError(t, f.customers.Create(context.Background(), c))
	return c
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestRegistryStartAndDeactivateVendor(t *testing.T) {
	f := newFixture(t)
	v := f.vendor(t, "v1", 1000)
	ctx := context.Background()

	require.NoError(t, f.reg.StartVendor(ctx, v))
	assert.True(t, f.reg.Tracked("v1"))

	// Duplicate start is a no-op
	require.NoError(t, f.reg.StartVendor(ctx, v))
	assert.Equal(t, 1, f.reg.Count())

	waitFor(t, func() bool { return f.ctrl.Status().AvailableTickets > 0 })

	require.NoError(t, f.reg.Deactivate(ctx, "v1"))
	assert.False(t, f.reg.Tracked("v1"))

	vendor, err := f.vendors.GetByID(ctx, "v1")
	require.NoError(t, err)
	assert.False(t, vendor.Active)
}

func TestRegistryMarksParticipantInactiveAfterSelfExit(t *testing.T) {
	f := newFixture(t)
	v := f.vendor(t, "v1", 20)
	c := f.customer(t, "c1", 20)
	ctx := context.Background()

	require.NoError(t, f.reg.StartVendor(ctx, v))
	require.NoError(t, f.reg.StartCustomer(ctx, c))

	// Customer buys its full allowance, then both loops self-terminate:
	// the customer at its cap, the vendor once its 20 tickets sell out
	waitFor(t, func() bool {
		customer, err := f.customers.GetByID(ctx, "c1")
		return err == nil && customer.TotalTicketsPurchased == 20
	})
	waitFor(t, func() bool { return !f.reg.Tracked("c1") })

	customer, err := f.customers.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, customer.Active)

	f.reg.StopAll()
	assert.Equal(t, 0, f.reg.Count())
}

func TestRegistryDeactivateUntrackedParticipant(t *testing.T) {
	f := newFixture(t)
	f.customer(t, "c1", 10)
	ctx := context.Background()

	require.NoError(t, f.reg.Deactivate(ctx, "c1"))

	customer, err := f.customers.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, customer.Active)
}

func TestRegistryStopAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, id := range []string{"v1", "v2"} {
		require.NoError(t, f.reg.StartVendor(ctx, f.vendor(t, id, 1000)))
	}
	require.NoError(t, f.reg.StartCustomer(ctx, f.customer(t, "c1", 500)))
	assert.Equal(t, 3, f.reg.Count())

	f.reg.StopAll()
	assert.Equal(t, 0, f.reg.Count())

	// StopAll does not flip active flags, shutdown reconciliation owns that
	vendor, err := f.vendors.GetByID(ctx, "v1")
	require.NoError(t, err)
	assert.True(t, vendor.Active)
}
