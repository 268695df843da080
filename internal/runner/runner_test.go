package runner

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ticketline/ticketline/internal/domain"
	"github.com/ticketline/ticketline/internal/pool"
	"github.com/ticketline/ticketline/internal/repository"
)

// MockTask is a configurable Task for runner tests
type MockTask struct {
	IDFunc       func() string
	IntervalFunc func() time.Duration
	RunCycleFunc func(ctx context.Context) (bool, error)
}

func (m *MockTask) ID() string {
	if m.IDFunc != nil {
		return m.IDFunc()
	}
	return "task-1"
}

func (m *MockTask) Interval() time.Duration {
	if m.IntervalFunc != nil {
		return m.IntervalFunc()
	}
	return time.Millisecond
}

func (m *MockTask) RunCycle(ctx context.Context) (bool, error) {
	if m.RunCycleFunc != nil {
		return m.RunCycleFunc(ctx)
	}
	return false, nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestRunnerStartStop(t *testing.T) {
	var cycles atomic.Int64
	task := &MockTask{
		RunCycleFunc: func(ctx context.Context) (bool, error) {
			cycles.Add(1)
			return false, nil
		},
	}

	r := NewRunner(task, time.Millisecond, nil)
	require.NoError(t, r.Start(context.Background()))

	// Double start is rejected
	assert.Error(t, r.Start(context.Background()))

	waitFor(t, func() bool { return cycles.Load() >= 3 })
	r.Stop()
	assert.False(t, r.Running())

	after := cycles.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, cycles.Load(), "no cycles after stop")

	// Stop is idempotent
	r.Stop()
}

func TestRunnerTerminatesWhenTaskDone(t *testing.T) {
	var exited atomic.Bool
	task := &MockTask{
		RunCycleFunc: func(ctx context.Context) (bool, error) {
			return true, nil
		},
	}

	r := NewRunner(task, time.Millisecond, func(id string) {
		assert.Equal(t, "task-1", id)
		exited.Store(true)
	})
	require.NoError(t, r.Start(context.Background()))

	waitFor(t, func() bool { return exited.Load() })
	r.Stop()
}

func TestRunnerTerminatesOnLimitError(t *testing.T) {
	var exited atomic.Bool
	task := &MockTask{
		RunCycleFunc: func(ctx context.Context) (bool, error) {
			return false, domain.ErrPurchaseLimitReached
		},
	}

	r := NewRunner(task, time.Millisecond, func(string) { exited.Store(true) })
	require.NoError(t, r.Start(context.Background()))

	waitFor(t, func() bool { return exited.Load() })
	r.Stop()
}

func TestRunnerRetriesAfterTransientError(t *testing.T) {
	var cycles atomic.Int64
	task := &MockTask{
		RunCycleFunc: func(ctx context.Context) (bool, error) {
			if cycles.Add(1) == 1 {
				return false, errors.New("transient")
			}
			return false, nil
		},
	}

	r := NewRunner(task, time.Millisecond, nil)
	require.NoError(t, r.Start(context.Background()))

	waitFor(t, func() bool { return cycles.Load() >= 3 })
	r.Stop()
}

func TestRunnerObservesContextCancellation(t *testing.T) {
	var cycles atomic.Int64
	task := &MockTask{
		RunCycleFunc: func(ctx context.Context) (bool, error) {
			cycles.Add(1)
			return false, nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunner(task, time.Millisecond, nil)
	require.NoError(t, r.Start(ctx))

	waitFor(t, func() bool { return cycles.Load() >= 1 })
	cancel()

	time.Sleep(20 * time.Millisecond)
	after := cycles.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, cycles.Load())
	r.Stop()
}

type taskFixture struct {
	vendors   *repository.MemoryVendorRepository
	customers *repository.MemoryCustomerRepository
	ctrl      *pool.Controller
}

func newTaskFixture(t *testing.T, maxCapacity int) *taskFixture {
	t.Helper()
	f := &taskFixture{
		vendors:   repository.NewMemoryVendorRepository(),
		customers: repository.NewMemoryCustomerRepository(),
	}
	f.ctrl = pool.NewController(f.vendors, f.customers,
		repository.NewMemoryTicketRepository(), repository.NewMemoryConfigRepository())

	_, err := f.ctrl.Configure(context.Background(), &domain.EventConfiguration{
		EventName:             "runner test",
		MaxCapacity:           maxCapacity,
		TicketReleaseRate:     10,
		CustomerRetrievalRate: 5,
	})
	require.NoError(t, err)
	return f
}

func (f *taskFixture) vendor(t *testing.T, id string, toSell, perRelease int) *domain.Vendor {
	t.Helper()
	v := &domain.Vendor{
		Identity:              domain.Identity{ID: id, Name: id, Email: id + "@v.test", Active: true},
		TicketsPerRelease:     perRelease,
		TicketReleaseInterval: time.Millisecond,
		TicketsToSell:         toSell,
	}
	require.NoError(t, f.vendors.Create(context.Background(), v))
	return v
}

func (f *taskFixture) customer(t *testing.T, id string, toPurchase int) *domain.Customer {
	t.Helper()
	c := &domain.Customer{
		Identity:                domain.Identity{ID: id, Name: id, Email: id + "@c.test", Active: true},
		TicketsToPurchase:       toPurchase,
		TicketRetrievalInterval: time.Millisecond,
	}
	require.NoError(t, f.customers.Create(context.Background(), c))
	return c
}

func TestVendorTaskReleasesUpToHeadroom(t *testing.T) {
	f := newTaskFixture(t, 8)
	v := f.vendor(t, "v1", 50, 10)
	task := NewVendorTask(v, f.ctrl, f.vendors)

	done, err := task.RunCycle(context.Background())
	require.NoError(t, err)
	assert.False(t, done)

	// Capped by pool headroom of 8, not the per-release rate of 10
	assert.Equal(t, 8, f.ctrl.Status().AvailableTickets)

	// Pool full: next cycle is a quiet no-op
	done, err = task.RunCycle(context.Background())
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, 8, f.ctrl.Status().AvailableTickets)
}

func TestVendorTaskFinishesAtLifetimeCap(t *testing.T) {
	f := newTaskFixture(t, 100)
	v := f.vendor(t, "v1", 15, 10)
	task := NewVendorTask(v, f.ctrl, f.vendors)

	done, err := task.RunCycle(context.Background())
	require.NoError(t, err)
	assert.False(t, done)

	done, err = task.RunCycle(context.Background())
	require.NoError(t, err)
	assert.False(t, done)

	// All 15 released, next cycle reports done
	done, err = task.RunCycle(context.Background())
	require.NoError(t, err)
	assert.True(t, done)

	vendor, err := f.vendors.GetByID(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, 15, vendor.TicketsReleased)
}

func TestCustomerTaskPurchasesUpToAvailability(t *testing.T) {
	f := newTaskFixture(t, 100)
	v := f.vendor(t, "v1", 50, 10)
	c := f.customer(t, "c1", 30)
	ctx := context.Background()

	// Empty pool: quiet no-op
	task := NewCustomerTask(c, f.ctrl, f.customers)
	done, err := task.RunCycle(ctx)
	require.NoError(t, err)
	assert.False(t, done)

	_, err = NewVendorTask(v, f.ctrl, f.vendors).RunCycle(ctx)
	require.NoError(t, err)

	done, err = task.RunCycle(ctx)
	require.NoError(t, err)
	assert.False(t, done)

	customer, err := f.customers.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 5, customer.TotalTicketsPurchased)
}

func TestCustomerTaskFinishesAtLifetimeCap(t *testing.T) {
	f := newTaskFixture(t, 100)
	f.vendor(t, "v1", 50, 10)
	c := f.customer(t, "c1", 5)
	ctx := context.Background()

	require.NoError(t, f.ctrl.Release(ctx, "v1", 20))

	task := NewCustomerTask(c, f.ctrl, f.customers)
	done, err := task.RunCycle(ctx)
	require.NoError(t, err)
	assert.True(t, done, "cap hit during this cycle terminates the loop")

	customer, err := f.customers.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 5, customer.TotalTicketsPurchased)

	// A fresh task for the same customer terminates immediately
	done, err = NewCustomerTask(c, f.ctrl, f.customers).RunCycle(ctx)
	require.NoError(t, err)
	assert.True(t, done)
}
