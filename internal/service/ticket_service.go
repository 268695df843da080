package service

import (
	"context"

	"github.com/ticketline/ticketline/internal/domain"
	"github.com/ticketline/ticketline/internal/repository"
	"github.com/ticketline/ticketline/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// TicketService defines read and administrative operations on tickets
type TicketService interface {
	// GetByID retrieves a ticket by ID
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	// List retrieves tickets filtered by customer and/or vendor
	List(ctx context.Context, filter *repository.TicketFilter, limit, offset int) ([]*domain.Ticket, int, error)
	// Delete removes a ticket, administrative only
	Delete(ctx context.Context, id string) error
}

type ticketService struct {
	tickets repository.TicketRepository
}

// NewTicketService creates a new TicketService
func NewTicketService(tickets repository.TicketRepository) TicketService {
	return &ticketService{tickets: tickets}
}

// GetByID retrieves a ticket by ID
func (s *ticketService) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	return s.tickets.GetByID(ctx, id)
}

// List retrieves tickets filtered by customer and/or vendor
func (s *ticketService) List(ctx context.Context, filter *repository.TicketFilter, limit, offset int) ([]*domain.Ticket, int, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.tickets.List(ctx, filter, limit, offset)
}

// Delete removes a ticket, administrative only
func (s *ticketService) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.ticket.delete")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_id", id))

	if err := s.tickets.Delete(ctx, id); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}
