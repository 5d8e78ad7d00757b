// Package order defines the order domain model and its status machine.
package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/comandero/comandero/internal/domain"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "pending"   // received, not yet acknowledged by the kitchen
	StatusPreparing Status = "preparing" // kitchen is working on it
	StatusReady     Status = "ready"     // ready for pickup / service
	StatusDelivered Status = "delivered" // handed to the customer
	StatusCancelled Status = "cancelled"
)

// ValidStatuses is the set of all valid order statuses.
var ValidStatuses = map[Status]bool{
	StatusPending:   true,
	StatusPreparing: true,
	StatusReady:     true,
	StatusDelivered: true,
	StatusCancelled: true,
}

// transitions maps each status to the statuses it may move to.
// Cancellation is only possible before the order is ready.
var transitions = map[Status][]Status{
	StatusPending:   {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCancelled},
	StatusReady:     {StatusDelivered},
	StatusDelivered: {},
	StatusCancelled: {},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates a status change, returning domain.ErrInvalidTransition
// wrapped with both statuses when the move is not allowed.
func Transition(from, to Status) error {
	if !ValidStatuses[to] {
		return fmt.Errorf("unknown status %q: %w", to, domain.ErrInvalidTransition)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%s -> %s: %w", from, to, domain.ErrInvalidTransition)
	}
	return nil
}

// Item is a single line of an order.
type Item struct {
	MenuItemID string  `json:"menu_item_id"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	Notes      string  `json:"notes,omitempty"`
}

// Order represents a customer order within a tenant.
type Order struct {
	ID         string    `json:"id"`
	TenantID   string    `json:"tenant_id"`
	CustomerID string    `json:"customer_id,omitempty"` // empty for walk-in orders
	TableNo    string    `json:"table_no,omitempty"`
	Items      []Item    `json:"items"`
	Status     Status    `json:"status"`
	Total      float64   `json:"total"`
	Notes      string    `json:"notes,omitempty"`
	Version    int       `json:"version"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CreateRequest is the input for placing a new order.
type CreateRequest struct {
	CustomerID string `json:"customer_id,omitempty"`
	TableNo    string `json:"table_no,omitempty"`
	Items      []Item `json:"items"`
	Notes      string `json:"notes,omitempty"`
}

// Validate checks that the CreateRequest is well-formed.
func (r *CreateRequest) Validate() error {
	if len(r.Items) == 0 {
		return errors.New("order must contain at least one item")
	}
	for i, it := range r.Items {
		if it.MenuItemID == "" {
			return fmt.Errorf("item %d: menu_item_id is required", i)
		}
		if it.Quantity < 1 {
			return fmt.Errorf("item %d: quantity must be at least 1", i)
		}
	}
	return nil
}

// Subtotal returns the sum of quantity times unit price over all items.
func (o *Order) Subtotal() float64 {
	var total float64
	for _, it := range o.Items {
		total += float64(it.Quantity) * it.UnitPrice
	}
	return total
}
