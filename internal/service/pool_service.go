package service

import (
	"context"

	"github.com/ticketline/ticketline/internal/domain"
	"github.com/ticketline/ticketline/internal/pool"
	"github.com/ticketline/ticketline/internal/repository"
	"github.com/ticketline/ticketline/pkg/logger"
	"github.com/ticketline/ticketline/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// PoolService fronts the pool controller for the HTTP layer. Event
// publishing happens here, after the controller's critical section, so
// broker latency never serializes the participant loops.
type PoolService interface {
	// Configure validates and installs a new event configuration
	Configure(ctx context.Context, cfg *domain.EventConfiguration) (*domain.EventConfiguration, error)
	// Release adds tickets from a vendor into the pool
	Release(ctx context.Context, vendorID string, count int) error
	// Purchase draws tickets for a customer from the pool
	Purchase(ctx context.Context, customerID string, requested int) (*pool.Purchased, error)
	// Status returns a live snapshot of the pool counters
	Status() *pool.Status
	// CachedStatus returns the last snapshot published to the cache,
	// falling back to the live one
	CachedStatus(ctx context.Context) (map[string]string, error)
	// Reload rebuilds the pool counters from persisted participants
	Reload(ctx context.Context) error
}

type poolService struct {
	ctrl      *pool.Controller
	vendors   repository.VendorRepository
	statuses  repository.StatusRepository
	publisher EventPublisher
	log       *logger.Logger
}

// NewPoolService creates a new PoolService
func NewPoolService(
	ctrl *pool.Controller,
	vendors repository.VendorRepository,
	statuses repository.StatusRepository,
	publisher EventPublisher,
) PoolService {
	return &poolService{
		ctrl:      ctrl,
		vendors:   vendors,
		statuses:  statuses,
		publisher: publisher,
		log:       logger.Get(),
	}
}

// Configure validates and installs a new event configuration
func (s *poolService) Configure(ctx context.Context, cfg *domain.EventConfiguration) (*domain.EventConfiguration, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.pool.configure")
	defer span.End()

	applied, err := s.ctrl.Configure(ctx, cfg)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.publisher.PublishEventConfigured(ctx, applied); err != nil {
		s.log.Warn("failed to publish configuration event", zap.Error(err))
	}

	span.SetAttributes(attribute.String("event_name", applied.EventName))
	span.SetStatus(codes.Ok, "")
	return applied, nil
}

// Release adds tickets from a vendor into the pool
func (s *poolService) Release(ctx context.Context, vendorID string, count int) error {
	ctx, span := telemetry.StartSpan(ctx, "service.pool.release")
	defer span.End()

	span.SetAttributes(attribute.String("vendor_id", vendorID), attribute.Int("count", count))

	if err := s.ctrl.Release(ctx, vendorID, count); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	status := s.ctrl.Status()
	if err := s.publisher.PublishTicketsReleased(ctx, vendorID, status.EventName, count); err != nil {
		s.log.Warn("failed to publish release event", zap.Error(err))
	}

	// The controller deactivates a vendor whose allotment sold out
	if vendor, err := s.vendors.GetByID(ctx, vendorID); err == nil && !vendor.Active {
		if err := s.publisher.PublishVendorDeactivated(ctx, vendorID); err != nil {
			s.log.Warn("failed to publish vendor deactivation event", zap.Error(err))
		}
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Purchase draws tickets for a customer from the pool
func (s *poolService) Purchase(ctx context.Context, customerID string, requested int) (*pool.Purchased, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.pool.purchase")
	defer span.End()

	span.SetAttributes(attribute.String("customer_id", customerID), attribute.Int("requested", requested))

	result, err := s.ctrl.Purchase(ctx, customerID, requested)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if result.Count > 0 {
		if err := s.publisher.PublishTicketsPurchased(ctx, customerID, result.Tickets); err != nil {
			s.log.Warn("failed to publish purchase event", zap.Error(err))
		}
	}

	span.SetAttributes(attribute.Int("purchased", result.Count))
	span.SetStatus(codes.Ok, "")
	return result, nil
}

// Status returns a live snapshot of the pool counters
func (s *poolService) Status() *pool.Status {
	return s.ctrl.Status()
}

// CachedStatus returns the last cached snapshot, nil when the cache is
// cold or disabled
func (s *poolService) CachedStatus(ctx context.Context) (map[string]string, error) {
	if s.statuses == nil {
		return nil, nil
	}
	return s.statuses.GetSnapshot(ctx)
}

// Reload rebuilds the pool counters from persisted participants
func (s *poolService) Reload(ctx context.Context) error {
	ctx, span := telemetry.StartSpan(ctx, "service.pool.reload")
	defer span.End()

	if err := s.ctrl.Reload(ctx); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}
