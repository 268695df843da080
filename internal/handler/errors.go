package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ticketline/ticketline/internal/domain"
	"github.com/ticketline/ticketline/pkg/response"
)

// respondError maps domain errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotConfigured), errors.Is(err, domain.ErrShuttingDown):
		response.Error(c, http.StatusConflict, "NOT_CONFIGURED", err.Error(), "")
	case domain.IsNotFoundError(err):
		response.NotFound(c, err.Error())
	case domain.IsValidationError(err), errors.Is(err, domain.ErrInvalidQuantity):
		response.BadRequest(c, err.Error())
	case domain.IsLimitError(err), domain.IsConflictError(err):
		response.Conflict(c, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrInvalidToken):
		response.Unauthorized(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
