package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ticketline/ticketline/internal/domain"
	"github.com/ticketline/ticketline/internal/dto"
	"github.com/ticketline/ticketline/internal/repository"
	"github.com/ticketline/ticketline/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/crypto/bcrypt"
)

// CustomerService defines the interface for customer lifecycle operations
type CustomerService interface {
	// Register creates a new customer and starts its purchase loop
	Register(ctx context.Context, req *dto.RegisterCustomerRequest) (*domain.Customer, error)
	// GetByID retrieves a customer by ID
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	// GetActive retrieves all active customers
	GetActive(ctx context.Context) ([]*domain.Customer, error)
	// Deactivate stops a customer's loop and marks it inactive
	Deactivate(ctx context.Context, id string) error
	// Reactivate re-enables a deactivated customer and restarts its loop
	Reactivate(ctx context.Context, id string) (*domain.Customer, error)
}

type customerService struct {
	customers  repository.CustomerRepository
	runners    Runners
	bcryptCost int
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customers repository.CustomerRepository, runners Runners) CustomerService {
	return &customerService{
		customers:  customers,
		runners:    runners,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// Register creates a new customer and starts its purchase loop
func (s *customerService) Register(ctx context.Context, req *dto.RegisterCustomerRequest) (*domain.Customer, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.customer.register")
	defer span.End()

	span.SetAttributes(attribute.String("email", req.Email))

	if len(req.Password) < 8 {
		return nil, domain.ErrInvalidPassword
	}

	if _, err := s.customers.GetByEmail(ctx, req.Email); err == nil {
		span.SetStatus(codes.Error, "email taken")
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrCustomerNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	now := time.Now().UTC()
	customer := &domain.Customer{
		Identity: domain.Identity{
			ID:           uuid.New().String(),
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: string(hash),
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		TicketsToPurchase:       req.TicketsToPurchase,
		TicketRetrievalInterval: time.Duration(req.TicketRetrievalIntervalMs) * time.Millisecond,
	}
	if err := customer.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.customers.Create(ctx, customer); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.runners.StartCustomer(ctx, customer); err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.String("customer_id", customer.ID))
	span.SetStatus(codes.Ok, "")
	return customer, nil
}

// GetByID retrieves a customer by ID
func (s *customerService) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	return s.customers.GetByID(ctx, id)
}

// GetActive retrieves all active customers
func (s *customerService) GetActive(ctx context.Context) ([]*domain.Customer, error) {
	return s.customers.GetActive(ctx)
}

// Deactivate stops a customer's loop and marks it inactive
func (s *customerService) Deactivate(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.customer.deactivate")
	defer span.End()

	span.SetAttributes(attribute.String("customer_id", id))

	if _, err := s.customers.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.runners.Deactivate(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Reactivate re-enables a deactivated customer and restarts its loop
func (s *customerService) Reactivate(ctx context.Context, id string) (*domain.Customer, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.customer.reactivate")
	defer span.End()

	span.SetAttributes(attribute.String("customer_id", id))

	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer.AtLimit() {
		return nil, domain.ErrPurchaseLimitReached
	}

	if !customer.Active {
		customer.Active = true
		if err := s.customers.Update(ctx, customer); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}

	if err := s.runners.StartCustomer(ctx, customer); err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return customer, nil
}
