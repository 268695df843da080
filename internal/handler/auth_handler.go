package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/ticketline/ticketline/internal/dto"
	"github.com/ticketline/ticketline/internal/service"
	"github.com/ticketline/ticketline/pkg/response"
	"github.com/ticketline/ticketline/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// AuthHandler handles registration and login HTTP requests
type AuthHandler struct {
	authService     service.AuthService
	vendorService   service.VendorService
	customerService service.CustomerService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	authService service.AuthService,
	vendorService service.VendorService,
	customerService service.CustomerService,
) *AuthHandler {
	return &AuthHandler{
		authService:     authService,
		vendorService:   vendorService,
		customerService: customerService,
	}
}

// RegisterVendor handles POST /auth/register/vendor
func (h *AuthHandler) RegisterVendor(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.auth.register_vendor")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.RegisterVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(attribute.String("email", req.Email))

	vendor, err := h.vendorService.Register(ctx, &req)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	response.Created(c, dto.NewVendorResponse(vendor))
}

// RegisterCustomer handles POST /auth/register/customer
func (h *AuthHandler) RegisterCustomer(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.auth.register_customer")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.RegisterCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(attribute.String("email", req.Email))

	customer, err := h.customerService.Register(ctx, &req)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	response.Created(c, dto.NewCustomerResponse(customer))
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.auth.login")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.authService.Login(ctx, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, resp)
}
