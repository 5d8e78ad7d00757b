// Package domain holds errors shared across domain packages.
package domain

import "errors"

var (
	// ErrNotFound is returned when a requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write lost an optimistic concurrency race.
	ErrConflict = errors.New("conflict: resource was modified by another request")

	// ErrInvalidTransition is returned when an order status change is not allowed.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrValidation wraps request validation failures so the HTTP layer can
	// map them to 400 responses.
	ErrValidation = errors.New("validation failed")
)
