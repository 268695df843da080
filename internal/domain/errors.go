package domain

import "errors"

// Domain errors
var (
	// Pool errors
	ErrNotConfigured        = errors.New("no event is configured")
	ErrInvalidConfiguration = errors.New("invalid event configuration")
	ErrCapacityExceeded     = errors.New("pool capacity would be exceeded")
	ErrReleaseLimitExceeded = errors.New("vendor release limit would be exceeded")
	ErrPurchaseLimitReached = errors.New("customer purchase limit reached")
	ErrShuttingDown         = errors.New("pool controller is shutting down")

	// Participant errors
	ErrVendorNotFound   = errors.New("vendor not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrVendorInactive   = errors.New("vendor is not active")
	ErrCustomerInactive = errors.New("customer is not active")
	ErrEmailTaken       = errors.New("email is already registered")

	// Ticket errors
	ErrTicketNotFound = errors.New("ticket not found")

	// Validation errors
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrInvalidName     = errors.New("name must not be blank")
	ErrInvalidEmail    = errors.New("email must not be blank")
	ErrInvalidPassword = errors.New("password must be at least 8 characters")
	ErrInvalidInterval = errors.New("interval must be greater than zero")
	ErrInvalidLimit    = errors.New("lifetime limit must be greater than zero")

	// Auth errors
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")

	// Persistence errors
	ErrResourceProcessing = errors.New("failed to process resource")
)

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrVendorNotFound) ||
		errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrTicketNotFound)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInvalidName) ||
		errors.Is(err, ErrInvalidEmail) ||
		errors.Is(err, ErrInvalidPassword) ||
		errors.Is(err, ErrInvalidInterval) ||
		errors.Is(err, ErrInvalidLimit)
}

// IsLimitError checks if the error is a cap or capacity violation.
// These are terminal for the calling participant loop.
func IsLimitError(err error) bool {
	return errors.Is(err, ErrReleaseLimitExceeded) ||
		errors.Is(err, ErrPurchaseLimitReached)
}

// IsConflictError checks if the error is a conflict error
func IsConflictError(err error) bool {
	return errors.Is(err, ErrCapacityExceeded) ||
		errors.Is(err, ErrEmailTaken) ||
		errors.Is(err, ErrVendorInactive) ||
		errors.Is(err, ErrCustomerInactive)
}
