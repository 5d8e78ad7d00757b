// Package user defines the user domain model for authentication and authorization.
package user

import (
	"errors"
	"net/mail"
	"time"
)

// Role represents the authorization level of a user within a tenant.
type Role string

const (
	// RoleAdmin manages tenants, menus and staff.
	RoleAdmin Role = "admin"
	// RoleManager operates the live dashboard (orders, sales).
	RoleManager Role = "manager"
	// RoleKitchen works the kitchen display; sees incoming orders only.
	RoleKitchen Role = "kitchen"
	// RoleCustomer is an end customer; sees only its own order updates.
	RoleCustomer Role = "customer"
)

// ValidRoles is the set of all valid user roles.
var ValidRoles = map[Role]bool{
	RoleAdmin:    true,
	RoleManager:  true,
	RoleKitchen:  true,
	RoleCustomer: true,
}

// User represents a registered user within a tenant.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"` // never serialized
	Role         Role      `json:"role"`
	TenantID     string    `json:"tenant_id"`
	Enabled      bool      `json:"enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateRequest is the input for registering a new user.
type CreateRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"` //nolint:gosec // request field, not a hardcoded secret
	Role     Role   `json:"role"`
	TenantID string `json:"tenant_id"`
}

// Validate checks that the CreateRequest has all required fields.
func (r *CreateRequest) Validate() error {
	if r.Email == "" {
		return errors.New("email is required")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return errors.New("invalid email format")
	}
	if r.Name == "" {
		return errors.New("name is required")
	}
	if r.Password == "" {
		return errors.New("password is required")
	}
	if len(r.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if !ValidRoles[r.Role] {
		return errors.New("invalid role: must be admin, manager, kitchen, or customer")
	}
	return nil
}

// LoginRequest is the input for user authentication.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"` //nolint:gosec // request field, not a hardcoded secret
}

// Validate checks that the LoginRequest has all required fields.
func (r *LoginRequest) Validate() error {
	if r.Email == "" {
		return errors.New("email is required")
	}
	if r.Password == "" {
		return errors.New("password is required")
	}
	return nil
}

// LoginResponse is returned on successful authentication.
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in"` // seconds
	User         User   `json:"user"`
}

// TokenClaims are the claims embedded in an access token. The tenant id and
// role drive which realtime rooms a websocket connection joins; CustomerID is
// the user id for customer-role tokens and empty otherwise.
type TokenClaims struct {
	UserID     string `json:"sub"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       Role   `json:"role"`
	TenantID   string `json:"tenant_id"`
	CustomerID string `json:"customer_id,omitempty"`
	IssuedAt   int64  `json:"iat"`
	Expiry     int64  `json:"exp"`
	JTI        string `json:"jti"`
	Audience   string `json:"aud"`
	Issuer     string `json:"iss"`
}

// RefreshToken is a long-lived credential stored hashed in the database.
type RefreshToken struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
