package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/ticketline/ticketline/internal/dto"
	"github.com/ticketline/ticketline/internal/service"
	"github.com/ticketline/ticketline/pkg/response"
	"github.com/ticketline/ticketline/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// CustomerHandler handles customer HTTP requests
type CustomerHandler struct {
	customerService service.CustomerService
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customerService service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// GetActive handles GET /customers/active
func (h *CustomerHandler) GetActive(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.customer.get_active")
	defer span.End()

	customers, err := h.customerService.GetActive(ctx)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	out := make([]*dto.CustomerResponse, 0, len(customers))
	for _, customer := range customers {
		out = append(out, dto.NewCustomerResponse(customer))
	}
	response.Success(c, out)
}

// GetByID handles GET /customers/:id
func (h *CustomerHandler) GetByID(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.customer.get_by_id")
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("customer_id", id))

	customer, err := h.customerService.GetByID(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, dto.NewCustomerResponse(customer))
}

// Deactivate handles DELETE /customers/:id
func (h *CustomerHandler) Deactivate(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.customer.deactivate")
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("customer_id", id))

	if err := h.customerService.Deactivate(ctx, id); err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{"id": id, "active": false})
}

// Reactivate handles POST /customers/:id/reactivate
func (h *CustomerHandler) Reactivate(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.customer.reactivate")
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("customer_id", id))

	customer, err := h.customerService.Reactivate(ctx, id)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}
	response.Success(c, dto.NewCustomerResponse(customer))
}
