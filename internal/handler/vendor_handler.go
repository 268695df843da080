package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/ticketline/ticketline/internal/dto"
	"github.com/ticketline/ticketline/internal/service"
	"github.com/ticketline/ticketline/pkg/response"
	"github.com/ticketline/ticketline/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// VendorHandler handles vendor HTTP requests
type VendorHandler struct {
	vendorService service.VendorService
}

// NewVendorHandler creates a new vendor handler
func NewVendorHandler(vendorService service.VendorService) *VendorHandler {
	return &VendorHandler{vendorService: vendorService}
}

// GetActive handles GET /vendors/active
func (h *VendorHandler) GetActive(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.vendor.get_active")
	defer span.End()

	vendors, err := h.vendorService.GetActive(ctx)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	out := make([]*dto.VendorResponse, 0, len(vendors))
	for _, vendor := range vendors {
		out = append(out, dto.NewVendorResponse(vendor))
	}
	response.Success(c, out)
}

// GetByID handles GET /vendors/:id
func (h *VendorHandler) GetByID(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.vendor.get_by_id")
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("vendor_id", id))

	vendor, err := h.vendorService.GetByID(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, dto.NewVendorResponse(vendor))
}

// Deactivate handles DELETE /vendors/:id
func (h *VendorHandler) Deactivate(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.vendor.deactivate")
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("vendor_id", id))

	if err := h.vendorService.Deactivate(ctx, id); err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{"id": id, "active": false})
}

// Reactivate handles POST /vendors/:id/reactivate
func (h *VendorHandler) Reactivate(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.vendor.reactivate")
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("vendor_id", id))

	vendor, err := h.vendorService.Reactivate(ctx, id)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}
	response.Success(c, dto.NewVendorResponse(vendor))
}
