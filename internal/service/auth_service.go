package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ticketline/ticketline/internal/domain"
	"github.com/ticketline/ticketline/internal/dto"
	"github.com/ticketline/ticketline/internal/repository"
	"github.com/ticketline/ticketline/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/crypto/bcrypt"
)

const (
	// RoleAdmin is the role carried by the configured admin account
	RoleAdmin = "admin"
	adminID   = "admin"
)

// Claims are the JWT claims issued on login
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthServiceConfig holds configuration for AuthService
type AuthServiceConfig struct {
	JWTSecret         string
	AccessTokenExpiry time.Duration
	AdminEmail        string
	AdminPassword     string
}

// AuthService defines the interface for authentication operations
type AuthService interface {
	// Login authenticates a vendor, customer, or the admin account
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	// ValidateToken validates an access token and returns its claims
	ValidateToken(ctx context.Context, token string) (*Claims, error)
}

type authService struct {
	vendors   repository.VendorRepository
	customers repository.CustomerRepository
	config    *AuthServiceConfig
}

// NewAuthService creates a new AuthService
func NewAuthService(
	vendors repository.VendorRepository,
	customers repository.CustomerRepository,
	config *AuthServiceConfig,
) AuthService {
	if config.AccessTokenExpiry == 0 {
		config.AccessTokenExpiry = time.Hour
	}
	return &authService{
		vendors:   vendors,
		customers: customers,
		config:    config,
	}
}

// Login authenticates a vendor, customer, or the admin account
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.login")
	defer span.End()

	span.SetAttributes(attribute.String("email", req.Email))

	id, role, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		span.SetStatus(codes.Error, "invalid credentials")
		return nil, err
	}

	token, err := s.issueToken(id, role)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("user_id", id), attribute.String("role", role))
	span.SetStatus(codes.Ok, "")

	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
		Role:        role,
		UserID:      id,
	}, nil
}

func (s *authService) authenticate(ctx context.Context, email, password string) (string, string, error) {
	if s.config.AdminEmail != "" && email == s.config.AdminEmail {
		if subtle.ConstantTimeCompare([]byte(password), []byte(s.config.AdminPassword)) == 1 {
			return adminID, RoleAdmin, nil
		}
		return "", "", domain.ErrInvalidCredentials
	}

	vendor, err := s.vendors.GetByEmail(ctx, email)
	if err == nil {
		if bcrypt.CompareHashAndPassword([]byte(vendor.PasswordHash), []byte(password)) != nil {
			return "", "", domain.ErrInvalidCredentials
		}
		return vendor.ID, string(domain.RoleVendor), nil
	}
	if !errors.Is(err, domain.ErrVendorNotFound) {
		return "", "", err
	}

	customer, err := s.customers.GetByEmail(ctx, email)
	if err == nil {
		if bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte(password)) != nil {
			return "", "", domain.ErrInvalidCredentials
		}
		return customer.ID, string(domain.RoleCustomer), nil
	}
	if !errors.Is(err, domain.ErrCustomerNotFound) {
		return "", "", err
	}

	return "", "", domain.ErrInvalidCredentials
}

func (s *authService) issueToken(id, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.AccessTokenExpiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// ValidateToken validates an access token and returns its claims
func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	_, span := telemetry.StartSpan(ctx, "service.auth.validate_token")
	defer span.End()

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		span.SetStatus(codes.Error, "invalid token")
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}
