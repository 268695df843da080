package dto

import (
	"time"

	"github.com/ticketline/ticketline/internal/domain"
)

// RegisterVendorRequest is the payload for vendor registration
type RegisterVendorRequest struct {
	Name                    string `json:"name" binding:"required"`
	Email                   string `json:"email" binding:"required,email"`
	Password                string `json:"password" binding:"required,min=8"`
	TicketsPerRelease       int    `json:"tickets_per_release" binding:"required,gt=0"`
	TicketReleaseIntervalMs int64  `json:"ticket_release_interval_ms" binding:"required,gt=0"`
	TicketsToSell           int    `json:"tickets_to_sell" binding:"required,gt=0"`
}

// RegisterCustomerRequest is the payload for customer registration
type RegisterCustomerRequest struct {
	Name                      string `json:"name" binding:"required"`
	Email                     string `json:"email" binding:"required,email"`
	Password                  string `json:"password" binding:"required,min=8"`
	TicketsToPurchase         int    `json:"tickets_to_purchase" binding:"required,gt=0"`
	TicketRetrievalIntervalMs int64  `json:"ticket_retrieval_interval_ms" binding:"required,gt=0"`
}

// LoginRequest is the payload for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse carries an issued access token
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Role        string `json:"role"`
	UserID      string `json:"user_id"`
}

// ConfigureRequest is the payload for configuring the event
type ConfigureRequest struct {
	EventName             string    `json:"event_name" binding:"required"`
	EventDate             time.Time `json:"event_date"`
	TotalTickets          int       `json:"total_tickets"`
	MaxCapacity           int       `json:"max_capacity" binding:"required,gt=0"`
	TicketReleaseRate     int       `json:"ticket_release_rate" binding:"required,gt=0"`
	CustomerRetrievalRate int       `json:"customer_retrieval_rate" binding:"required,gt=0"`
}

// ToDomain converts the request to a domain configuration
func (r *ConfigureRequest) ToDomain() *domain.EventConfiguration {
	return &domain.EventConfiguration{
		EventName:             r.EventName,
		EventDate:             r.EventDate,
		TotalTickets:          r.TotalTickets,
		MaxCapacity:           r.MaxCapacity,
		TicketReleaseRate:     r.TicketReleaseRate,
		CustomerRetrievalRate: r.CustomerRetrievalRate,
	}
}

// ReleaseRequest is the payload for a manual ticket release
type ReleaseRequest struct {
	VendorID string `json:"vendor_id" binding:"required"`
	Count    int    `json:"count" binding:"required,gt=0"`
}

// PurchaseRequest is the payload for a manual ticket purchase
type PurchaseRequest struct {
	CustomerID string `json:"customer_id" binding:"required"`
	Count      int    `json:"count" binding:"required,gt=0"`
}

// PurchaseResponse reports the outcome of a purchase
type PurchaseResponse struct {
	Requested int              `json:"requested"`
	Purchased int              `json:"purchased"`
	Tickets   []*domain.Ticket `json:"tickets"`
}

// VendorResponse is the public view of a vendor
type VendorResponse struct {
	ID                      string    `json:"id"`
	Name                    string    `json:"name"`
	Email                   string    `json:"email"`
	Active                  bool      `json:"active"`
	TicketsPerRelease       int       `json:"tickets_per_release"`
	TicketReleaseIntervalMs int64     `json:"ticket_release_interval_ms"`
	TicketsToSell           int       `json:"tickets_to_sell"`
	TicketsReleased         int       `json:"tickets_released"`
	TotalTicketsSold        int       `json:"total_tickets_sold"`
	CreatedAt               time.Time `json:"created_at"`
}

// NewVendorResponse converts a vendor to its public view
func NewVendorResponse(v *domain.Vendor) *VendorResponse {
	return &VendorResponse{
		ID:                      v.ID,
		Name:                    v.Name,
		Email:                   v.Email,
		Active:                  v.Active,
		TicketsPerRelease:       v.TicketsPerRelease,
		TicketReleaseIntervalMs: v.TicketReleaseInterval.Milliseconds(),
		TicketsToSell:           v.TicketsToSell,
		TicketsReleased:         v.TicketsReleased,
		TotalTicketsSold:        v.TotalTicketsSold,
		CreatedAt:               v.CreatedAt,
	}
}

// CustomerResponse is the public view of a customer
type CustomerResponse struct {
	ID                        string    `json:"id"`
	Name                      string    `json:"name"`
	Email                     string    `json:"email"`
	Active                    bool      `json:"active"`
	TicketsToPurchase         int       `json:"tickets_to_purchase"`
	TicketRetrievalIntervalMs int64     `json:"ticket_retrieval_interval_ms"`
	TotalTicketsPurchased     int       `json:"total_tickets_purchased"`
	CreatedAt                 time.Time `json:"created_at"`
}

// NewCustomerResponse converts a customer to its public view
func NewCustomerResponse(c *domain.Customer) *CustomerResponse {
	return &CustomerResponse{
		ID:                        c.ID,
		Name:                      c.Name,
		Email:                     c.Email,
		Active:                    c.Active,
		TicketsToPurchase:         c.TicketsToPurchase,
		TicketRetrievalIntervalMs: c.TicketRetrievalInterval.Milliseconds(),
		TotalTicketsPurchased:     c.TotalTicketsPurchased,
		CreatedAt:                 c.CreatedAt,
	}
}
