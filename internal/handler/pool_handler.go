package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ticketline/ticketline/internal/dto"
	"github.com/ticketline/ticketline/internal/service"
	"github.com/ticketline/ticketline/pkg/response"
	"github.com/ticketline/ticketline/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// PoolHandler handles ticket pool HTTP requests
type PoolHandler struct {
	poolService service.PoolService
}

// NewPoolHandler creates a new pool handler
func NewPoolHandler(poolService service.PoolService) *PoolHandler {
	return &PoolHandler{poolService: poolService}
}

// Configure handles POST /pool/configure
func (h *PoolHandler) Configure(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.pool.configure")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.ConfigureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("event_name", req.EventName),
		attribute.Int("max_capacity", req.MaxCapacity),
	)

	applied, err := h.poolService.Configure(ctx, req.ToDomain())
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	response.Success(c, applied)
}

// Status handles GET /pool/status. With ?cached=true the last snapshot
// written to the cache is served instead of a live read.
func (h *PoolHandler) Status(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.pool.status")
	defer span.End()

	if cached, _ := strconv.ParseBool(c.Query("cached")); cached {
		snapshot, err := h.poolService.CachedStatus(ctx)
		if err == nil && snapshot != nil {
			response.Success(c, snapshot)
			return
		}
		// cache miss or cache error falls through to the live status
	}

	response.Success(c, h.poolService.Status())
}

// Reload handles POST /pool/reload
func (h *PoolHandler) Reload(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.pool.reload")
	defer span.End()

	if err := h.poolService.Reload(ctx); err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}
	response.Success(c, h.poolService.Status())
}

// Release handles POST /pool/release
func (h *PoolHandler) Release(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.pool.release")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.ReleaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("vendor_id", req.VendorID),
		attribute.Int("count", req.Count),
	)

	if err := h.poolService.Release(ctx, req.VendorID, req.Count); err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	response.Success(c, h.poolService.Status())
}

// Purchase handles POST /pool/purchase
func (h *PoolHandler) Purchase(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.pool.purchase")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("customer_id", req.CustomerID),
		attribute.Int("count", req.Count),
	)

	result, err := h.poolService.Purchase(ctx, req.CustomerID, req.Count)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("purchased", result.Count))
	response.Success(c, &dto.PurchaseResponse{
		Requested: req.Count,
		Purchased: result.Count,
		Tickets:   result.Tickets,
	})
}
