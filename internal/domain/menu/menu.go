// Package menu defines the menu catalog domain model.
package menu

import (
	"errors"
	"time"
)

// Item is a single menu entry for a tenant.
type Item struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Name      string    `json:"name"`
	Category  string    `json:"category,omitempty"`
	Price     float64   `json:"price"`
	Available bool      `json:"available"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateRequest is the input for adding a menu item.
type CreateRequest struct {
	Name     string  `json:"name"`
	Category string  `json:"category,omitempty"`
	Price    float64 `json:"price"`
}

// Validate checks that the CreateRequest is well-formed.
func (r *CreateRequest) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	if r.Price < 0 {
		return errors.New("price must not be negative")
	}
	return nil
}

// UpdateRequest holds the fields that can be updated on a menu item.
type UpdateRequest struct {
	Name      string   `json:"name,omitempty"`
	Category  string   `json:"category,omitempty"`
	Price     *float64 `json:"price,omitempty"`
	Available *bool    `json:"available,omitempty"`
}
