package http

import (
	"net/http"

	"github.com/comandero/comandero/internal/domain/tenant"
)

// ListTenants returns all tenants. Admin only.
func (h *Handlers) ListTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.Tenants.List(r.Context())
	if err != nil {
		writeDomainError(w, err, "tenants not found")
		return
	}
	writeJSON(w, http.StatusOK, tenants)
}

// GetTenant returns a tenant by ID.
func (h *Handlers) GetTenant(w http.ResponseWriter, r *http.Request) {
	t, err := h.Tenants.Get(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "tenant not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// CreateTenant registers a new restaurant. Admin only.
func (h *Handlers) CreateTenant(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[tenant.CreateRequest](w, r)
	if !ok {
		return
	}

	t, err := h.Tenants.Create(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, "tenant not found")
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// UpdateTenant changes a tenant's name or enabled flag. Admin only.
func (h *Handlers) UpdateTenant(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[tenant.UpdateRequest](w, r)
	if !ok {
		return
	}

	t, err := h.Tenants.Update(r.Context(), urlParam(r, "id"), req)
	if err != nil {
		writeDomainError(w, err, "tenant not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}
