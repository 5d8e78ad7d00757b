package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/comandero/comandero/internal/domain"
	"github.com/comandero/comandero/internal/domain/order"
	"github.com/comandero/comandero/internal/middleware"
)

// ListOrders returns recent orders for the tenant, optionally filtered by
// ?status= and limited by ?limit=.
func (h *Handlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	status := order.Status(r.URL.Query().Get("status"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	orders, err := h.Orders.List(r.Context(), status, limit)
	if err != nil {
		writeDomainError(w, err, "orders not found")
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// GetOrder returns a single order.
func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.Orders.Get(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "order not found")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// CreateOrder places a new order for the tenant.
func (h *Handlers) CreateOrder(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[order.CreateRequest](w, r)
	if !ok {
		return
	}

	// Customers may only order for themselves.
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil && claims.CustomerID != "" {
		req.CustomerID = claims.CustomerID
	}

	o, err := h.Orders.Create(r.Context(), middleware.TenantIDFromContext(r.Context()), req)
	if err != nil {
		// An unknown menu item is a client mistake, not a missing order.
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeDomainError(w, err, "order not found")
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

type statusUpdateRequest struct {
	Status order.Status `json:"status"`
}

// UpdateOrderStatus moves an order through its lifecycle.
func (h *Handlers) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[statusUpdateRequest](w, r)
	if !ok {
		return
	}
	if req.Status == "" {
		writeError(w, http.StatusBadRequest, "status is required")
		return
	}

	o, err := h.Orders.UpdateStatus(r.Context(), urlParam(r, "id"), req.Status)
	if err != nil {
		writeDomainError(w, err, "order not found")
		return
	}
	writeJSON(w, http.StatusOK, o)
}
