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

// Runners is the registry surface the participant services depend on
type Runners interface {
	// StartVendor starts the release loop for an active vendor
	StartVendor(ctx context.Context, vendor *domain.Vendor) error
	// StartCustomer starts the purchase loop for an active customer
	StartCustomer(ctx context.Context, customer *domain.Customer) error
	// Deactivate stops a participant's loop and marks it inactive
	Deactivate(ctx context.Context, id string) error
}

// VendorService defines the interface for vendor lifecycle operations
type VendorService interface {
	// Register creates a new vendor and starts its release loop
	Register(ctx context.Context, req *dto.RegisterVendorRequest) (*domain.Vendor, error)
	// GetByID retrieves a vendor by ID
	GetByID(ctx context.Context, id string) (*domain.Vendor, error)
	// GetActive retrieves all active vendors
	GetActive(ctx context.Context) ([]*domain.Vendor, error)
	// Deactivate stops a vendor's loop and marks it inactive
	Deactivate(ctx context.Context, id string) error
	// Reactivate re-enables a deactivated vendor and restarts its loop
	Reactivate(ctx context.Context, id string) (*domain.Vendor, error)
}

type vendorService struct {
	vendors    repository.VendorRepository
	runners    Runners
	publisher  EventPublisher
	bcryptCost int
}

// NewVendorService creates a new VendorService
func NewVendorService(vendors repository.VendorRepository, runners Runners, publisher EventPublisher) VendorService {
	return &vendorService{
		vendors:    vendors,
		runners:    runners,
		publisher:  publisher,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// Register creates a new vendor and starts its release loop
func (s *vendorService) Register(ctx context.Context, req *dto.RegisterVendorRequest) (*domain.Vendor, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.vendor.register")
	defer span.End()

	span.SetAttributes(attribute.String("email", req.Email))

	if len(req.Password) < 8 {
		return nil, domain.ErrInvalidPassword
	}

	if _, err := s.vendors.GetByEmail(ctx, req.Email); err == nil {
		span.SetStatus(codes.Error, "email taken")
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrVendorNotFound) {
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
	vendor := &domain.Vendor{
		Identity: domain.Identity{
			ID:           uuid.New().String(),
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: string(hash),
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		TicketsPerRelease:     req.TicketsPerRelease,
		TicketReleaseInterval: time.Duration(req.TicketReleaseIntervalMs) * time.Millisecond,
		TicketsToSell:         req.TicketsToSell,
	}
	if err := vendor.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.vendors.Create(ctx, vendor); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.runners.StartVendor(ctx, vendor); err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.String("vendor_id", vendor.ID))
	span.SetStatus(codes.Ok, "")
	return vendor, nil
}

// GetByID retrieves a vendor by ID
func (s *vendorService) GetByID(ctx context.Context, id string) (*domain.Vendor, error) {
	return s.vendors.GetByID(ctx, id)
}

// GetActive retrieves all active vendors
func (s *vendorService) GetActive(ctx context.Context) ([]*domain.Vendor, error) {
	return s.vendors.GetActive(ctx)
}

// Deactivate stops a vendor's loop and marks it inactive
func (s *vendorService) Deactivate(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.vendor.deactivate")
	defer span.End()

	span.SetAttributes(attribute.String("vendor_id", id))

	if _, err := s.vendors.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.runners.Deactivate(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := s.publisher.PublishVendorDeactivated(ctx, id); err != nil {
		// Event delivery is best effort, the deactivation itself succeeded
		span.RecordError(err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Reactivate re-enables a deactivated vendor and restarts its loop
func (s *vendorService) Reactivate(ctx context.Context, id string) (*domain.Vendor, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.vendor.reactivate")
	defer span.End()

	span.SetAttributes(attribute.String("vendor_id", id))

	vendor, err := s.vendors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if vendor.SoldOut() {
		return nil, domain.ErrReleaseLimitExceeded
	}

	if !vendor.Active {
		vendor.Active = true
		if err := s.vendors.Update(ctx, vendor); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}

	if err := s.runners.StartVendor(ctx, vendor); err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return vendor, nil
}
