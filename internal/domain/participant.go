package domain

import (
	"strings"
	"time"
)

// ParticipantRole distinguishes the two sides of the marketplace
type ParticipantRole string

const (
	RoleVendor   ParticipantRole = "vendor"
	RoleCustomer ParticipantRole = "customer"
)

// Identity carries the fields shared by vendors and customers.
// PasswordHash is a bcrypt hash and is never serialized.
type Identity struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Validate checks the identity fields common to both roles
func (i *Identity) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return ErrInvalidName
	}
	if strings.TrimSpace(i.Email) == "" {
		return ErrInvalidEmail
	}
	return nil
}
