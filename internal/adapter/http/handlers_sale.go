package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/comandero/comandero/internal/domain"
	"github.com/comandero/comandero/internal/domain/sale"
	"github.com/comandero/comandero/internal/middleware"
)

// ListSales returns sales within the ?from= / ?to= RFC 3339 window.
func (h *Handlers) ListSales(w http.ResponseWriter, r *http.Request) {
	var from, to time.Time
	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from timestamp")
			return
		}
		from = t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to timestamp")
			return
		}
		to = t
	}

	sales, err := h.Sales.List(r.Context(), from, to)
	if err != nil {
		writeDomainError(w, err, "sales not found")
		return
	}
	writeJSON(w, http.StatusOK, sales)
}

// CreateSale records a point-of-sale transaction.
func (h *Handlers) CreateSale(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[sale.CreateRequest](w, r)
	if !ok {
		return
	}

	cashierID := ""
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil {
		cashierID = claims.UserID
	}

	sl, err := h.Sales.Create(r.Context(), middleware.TenantIDFromContext(r.Context()), cashierID, req)
	if err != nil {
		// A sale against a missing order is a client mistake.
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeDomainError(w, err, "sale not found")
		return
	}
	writeJSON(w, http.StatusCreated, sl)
}
