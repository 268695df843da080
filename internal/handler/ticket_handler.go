package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ticketline/ticketline/internal/repository"
	"github.com/ticketline/ticketline/internal/service"
	"github.com/ticketline/ticketline/pkg/response"
	"github.com/ticketline/ticketline/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// TicketHandler handles ticket HTTP requests
type TicketHandler struct {
	ticketService service.TicketService
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(ticketService service.TicketService) *TicketHandler {
	return &TicketHandler{ticketService: ticketService}
}

// List handles GET /tickets with optional customer_id, vendor_id and
// event_name filters.
func (h *TicketHandler) List(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.ticket.list")
	defer span.End()

	filter := &repository.TicketFilter{
		CustomerID: c.Query("customer_id"),
		VendorID:   c.Query("vendor_id"),
		EventName:  c.Query("event_name"),
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	tickets, total, err := h.ticketService.List(ctx, filter, limit, offset)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("total", total))
	response.Success(c, gin.H{
		"tickets": tickets,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// GetByID handles GET /tickets/:id
func (h *TicketHandler) GetByID(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.ticket.get_by_id")
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("ticket_id", id))

	ticket, err := h.ticketService.GetByID(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, ticket)
}

// Delete handles DELETE /tickets/:id
func (h *TicketHandler) Delete(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.ticket.delete")
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("ticket_id", id))

	if err := h.ticketService.Delete(ctx, id); err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{"id": id, "deleted": true})
}
