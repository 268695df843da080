package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ticketline/ticketline/internal/domain"
	"github.com/ticketline/ticketline/internal/dto"
	"github.com/ticketline/ticketline/internal/pool"
	"github.com/ticketline/ticketline/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// MockRunners records registry calls without spawning loops
type MockRunners struct {
	StartVendorFunc   func(ctx context.Context, vendor *domain.Vendor) error
	StartCustomerFunc func(ctx context.Context, customer *domain.Customer) error
	DeactivateFunc    func(ctx context.Context, id string) error

	mu          sync.Mutex
	started     []string
	deactivated []string
}

func (m *MockRunners) StartVendor(ctx context.Context, vendor *domain.Vendor) error {
	m.mu.Lock()
	m.started = append(m.started, vendor.ID)
	m.mu.Unlock()
	if m.StartVendorFunc != nil {
		return m.StartVendorFunc(ctx, vendor)
	}
	return nil
}

func (m *MockRunners) StartCustomer(ctx context.Context, customer *domain.Customer) error {
	m.mu.Lock()
	m.started = append(m.started, customer.ID)
	m.mu.Unlock()
	if m.StartCustomerFunc != nil {
		return m.StartCustomerFunc(ctx, customer)
	}
	return nil
}

func (m *MockRunners) Deactivate(ctx context.Context, id string) error {
	m.mu.Lock()
	m.deactivated = append(m.deactivated, id)
	m.mu.Unlock()
	if m.DeactivateFunc != nil {
		return m.DeactivateFunc(ctx, id)
	}
	return nil
}

// RecordingPublisher captures published events
type RecordingPublisher struct {
	mu     sync.Mutex
	events []domain.TicketEventType
}

func (p *RecordingPublisher) record(t domain.TicketEventType) {
	p.mu.Lock()
	p.events = append(p.events, t)
	p.mu.Unlock()
}

func (p *RecordingPublisher) Events() []domain.TicketEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.TicketEventType(nil), p.events...)
}

func (p *RecordingPublisher) PublishTicketsPurchased(ctx context.Context, customerID string, tickets []*domain.Ticket) error {
	p.record(domain.TicketEventPurchased)
	return nil
}

func (p *RecordingPublisher) PublishTicketsReleased(ctx context.Context, vendorID, eventName string, count int) error {
	p.record(domain.TicketEventReleased)
	return nil
}

func (p *RecordingPublisher) PublishVendorDeactivated(ctx context.Context, vendorID string) error {
	p.record(domain.TicketEventVendorDeactivated)
	return nil
}

func (p *RecordingPublisher) PublishEventConfigured(ctx context.Context, cfg *domain.EventConfiguration) error {
	p.record(domain.TicketEventEventConfigured)
	return nil
}

func (p *RecordingPublisher) Close() error { return nil }

func vendorRequest() *dto.RegisterVendorRequest {
	return &dto.RegisterVendorRequest{
		Name:                    "Vendor One",
		Email:                   "vendor@ticketline.test",
		Password:                "correct-horse",
		TicketsPerRelease:       10,
		TicketReleaseIntervalMs: 100,
		TicketsToSell:           50,
	}
}

func customerRequest() *dto.RegisterCustomerRequest {
	return &dto.RegisterCustomerRequest{
		Name:                      "Customer One",
		Email:                     "customer@ticketline.test",
		Password:                  "correct-horse",
		TicketsToPurchase:         30,
		TicketRetrievalIntervalMs: 100,
	}
}

func TestVendorServiceRegister(t *testing.T) {
	vendors := repository.NewMemoryVendorRepository()
	runners := &MockRunners{}
	svc := NewVendorService(vendors, runners, &RecordingPublisher{})
	ctx := context.Background()

	vendor, err := svc.Register(ctx, vendorRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, vendor.ID)
	assert.True(t, vendor.Active)
	assert.Equal(t, 100*time.Millisecond, vendor.TicketReleaseInterval)
	assert.NotEqual(t, "correct-horse", vendor.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(vendor.PasswordHash), []byte("correct-horse")))
	assert.Equal(t, []string{vendor.ID}, runners.started)

	// Duplicate email is rejected
	_, err = svc.Register(ctx, vendorRequest())
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestVendorServiceRegisterValidation(t *testing.T) {
	svc := NewVendorService(repository.NewMemoryVendorRepository(), &MockRunners{}, &RecordingPublisher{})
	ctx := context.Background()

	req := vendorRequest()
	req.Password = "short"
	_, err := svc.Register(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidPassword)

	req = vendorRequest()
	req.TicketsToSell = 0
	_, err = svc.Register(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidLimit)
}

func TestVendorServiceDeactivatePublishesEvent(t *testing.T) {
	vendors := repository.NewMemoryVendorRepository()
	runners := &MockRunners{}
	publisher := &RecordingPublisher{}
	svc := NewVendorService(vendors, runners, publisher)
	ctx := context.Background()

	vendor, err := svc.Register(ctx, vendorRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(ctx, vendor.ID))
	assert.Equal(t, []string{vendor.ID}, runners.deactivated)
	assert.Contains(t, publisher.Events(), domain.TicketEventVendorDeactivated)

	err = svc.Deactivate(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrVendorNotFound)
}

func TestVendorServiceReactivate(t *testing.T) {
	vendors := repository.NewMemoryVendorRepository()
	runners := &MockRunners{}
	svc := NewVendorService(vendors, runners, &RecordingPublisher{})
	ctx := context.Background()

	vendor, err := svc.Register(ctx, vendorRequest())
	require.NoError(t, err)

	stored, err := vendors.GetByID(ctx, vendor.ID)
	require.NoError(t, err)
	stored.Active = false
	require.NoError(t, vendors.Update(ctx, stored))

	reactivated, err := svc.Reactivate(ctx, vendor.ID)
	require.NoError(t, err)
	assert.True(t, reactivated.Active)

	// A sold-out vendor cannot come back
	stored.Active = false
	stored.TotalTicketsSold = stored.TicketsToSell
	require.NoError(t, vendors.Update(ctx, stored))
	_, err = svc.Reactivate(ctx, vendor.ID)
	assert.ErrorIs(t, err, domain.ErrReleaseLimitExceeded)
}

func TestCustomerServiceRegisterAndDeactivate(t *testing.T) {
	customers := repository.NewMemoryCustomerRepository()
	runners := &MockRunners{}
	svc := NewCustomerService(customers, runners)
	ctx := context.Background()

	customer, err := svc.Register(ctx, customerRequest())
	require.NoError(t, err)
	assert.True(t, customer.Active)
	assert.Equal(t, []string{customer.ID}, runners.started)

	_, err = svc.Register(ctx, customerRequest())
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	require.NoError(t, svc.Deactivate(ctx, customer.ID))
	assert.Equal(t, []string{customer.ID}, runners.deactivated)
}

func TestAuthServiceLoginRoles(t *testing.T) {
	vendors := repository.NewMemoryVendorRepository()
	customers := repository.NewMemoryCustomerRepository()
	runners := &MockRunners{}
	ctx := context.Background()

	vendorSvc := NewVendorService(vendors, runners, &RecordingPublisher{})
	customerSvc := NewCustomerService(customers, runners)
	vendor, err := vendorSvc.Register(ctx, vendorRequest())
	require.NoError(t, err)
	customer, err := customerSvc.Register(ctx, customerRequest())
	require.NoError(t, err)

	auth := NewAuthService(vendors, customers, &AuthServiceConfig{
		JWTSecret:     "test-secret",
		AdminEmail:    "admin@ticketline.test",
		AdminPassword: "admin-password",
	})

	cases := []struct {
		name     string
		email    string
		password string
		wantRole string
		wantID   string
	}{
		{"vendor", "vendor@ticketline.test", "correct-horse", "vendor", vendor.ID},
		{"customer", "customer@ticketline.test", "correct-horse", "customer", customer.ID},
		{"admin", "admin@ticketline.test", "admin-password", "admin", "admin"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := auth.Login(ctx, &dto.LoginRequest{Email: tc.email, Password: tc.password})
			require.NoError(t, err)
			assert.Equal(t, tc.wantRole, resp.Role)
			assert.Equal(t, tc.wantID, resp.UserID)

			claims, err := auth.ValidateToken(ctx, resp.AccessToken)
			require.NoError(t, err)
			assert.Equal(t, tc.wantRole, claims.Role)
			assert.Equal(t, tc.wantID, claims.Subject)
		})
	}
}

func TestAuthServiceLoginRejectsBadCredentials(t *testing.T) {
	vendors := repository.NewMemoryVendorRepository()
	customers := repository.NewMemoryCustomerRepository()
	ctx := context.Background()

	vendorSvc := NewVendorService(vendors, &MockRunners{}, &RecordingPublisher{})
	_, err := vendorSvc.Register(ctx, vendorRequest())
	require.NoError(t, err)

	auth := NewAuthService(vendors, customers, &AuthServiceConfig{JWTSecret: "test-secret"})

	_, err = auth.Login(ctx, &dto.LoginRequest{Email: "vendor@ticketline.test", Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = auth.Login(ctx, &dto.LoginRequest{Email: "nobody@ticketline.test", Password: "whatever"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = auth.ValidateToken(ctx, "not-a-token")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestPoolServicePublishesEvents(t *testing.T) {
	vendors := repository.NewMemoryVendorRepository()
	customers := repository.NewMemoryCustomerRepository()
	tickets := repository.NewMemoryTicketRepository()
	configs := repository.NewMemoryConfigRepository()
	ctrl := pool.NewController(vendors, customers, tickets, configs)
	publisher := &RecordingPublisher{}
	svc := NewPoolService(ctrl, vendors, nil, publisher)
	ctx := context.Background()

	require.NoError(t, vendors.Create(ctx, &domain.Vendor{
		Identity:              domain.Identity{ID: "v1", Name: "v1", Email: "v1@v.test", Active: true},
		TicketsPerRelease:     10,
		TicketReleaseInterval: time.Millisecond,
		TicketsToSell:         10,
	}))
	require.NoError(t, customers.Create(ctx, &domain.Customer{
		Identity:                domain.Identity{ID: "c1", Name: "c1", Email: "c1@c.test", Active: true},
		TicketsToPurchase:       20,
		TicketRetrievalInterval: time.Millisecond,
	}))

	_, err := svc.Configure(ctx, &domain.EventConfiguration{
		EventName:             "publish test",
		MaxCapacity:           100,
		TicketReleaseRate:     10,
		CustomerRetrievalRate: 5,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Release(ctx, "v1", 10))

	result, err := svc.Purchase(ctx, "c1", 10)
	require.NoError(t, err)
	assert.Equal(t, 10, result.Count)

	events := publisher.Events()
	assert.Contains(t, events, domain.TicketEventEventConfigured)
	assert.Contains(t, events, domain.TicketEventReleased)
	assert.Contains(t, events, domain.TicketEventPurchased)

	// An empty purchase publishes nothing new
	before := len(publisher.Events())
	result, err = svc.Purchase(ctx, "c1", 5)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Count)
	assert.Len(t, publisher.Events(), before)
}
