// Package tenant defines the tenant domain model for multi-tenancy.
// A tenant is a single restaurant; it is the isolation boundary for
// every stored row and every realtime event.
package tenant

import (
	"errors"
	"time"
)

// Tenant represents an isolated restaurant in the system.
type Tenant struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Slug      string            `json:"slug"`
	Enabled   bool              `json:"enabled"`
	Settings  map[string]string `json:"settings,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// CreateRequest holds the fields required to create a new tenant.
type CreateRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Validate checks that the CreateRequest has all required fields.
func (r *CreateRequest) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	if r.Slug == "" {
		return errors.New("slug is required")
	}
	return nil
}

// UpdateRequest holds the fields that can be updated on a tenant.
type UpdateRequest struct {
	Name    string `json:"name,omitempty"`
	Enabled *bool  `json:"enabled,omitempty"`
}
