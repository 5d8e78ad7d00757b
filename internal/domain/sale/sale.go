// Package sale defines the point-of-sale transaction domain model.
package sale

import (
	"errors"
	"time"
)

// PaymentMethod identifies how a sale was paid.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCard   PaymentMethod = "card"
	PaymentOnline PaymentMethod = "online"
)

// ValidPaymentMethods is the set of accepted payment methods.
var ValidPaymentMethods = map[PaymentMethod]bool{
	PaymentCash:   true,
	PaymentCard:   true,
	PaymentOnline: true,
}

// Sale represents a completed point-of-sale transaction within a tenant.
type Sale struct {
	ID            string        `json:"id"`
	TenantID      string        `json:"tenant_id"`
	OrderID       string        `json:"order_id,omitempty"` // empty for direct counter sales
	Total         float64       `json:"total"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	CashierID     string        `json:"cashier_id,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// CreateRequest is the input for recording a sale.
type CreateRequest struct {
	OrderID       string        `json:"order_id,omitempty"`
	Total         float64       `json:"total"`
	PaymentMethod PaymentMethod `json:"payment_method"`
}

// Validate checks that the CreateRequest is well-formed.
func (r *CreateRequest) Validate() error {
	if r.Total <= 0 {
		return errors.New("total must be positive")
	}
	if !ValidPaymentMethods[r.PaymentMethod] {
		return errors.New("invalid payment method: must be cash, card, or online")
	}
	return nil
}
