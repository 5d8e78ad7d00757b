package http

import (
	"net/http"

	"github.com/comandero/comandero/internal/domain/menu"
	"github.com/comandero/comandero/internal/middleware"
)

// ListMenu returns the tenant's menu.
func (h *Handlers) ListMenu(w http.ResponseWriter, r *http.Request) {
	items, err := h.Menu.List(r.Context(), middleware.TenantIDFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err, "menu not found")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// GetMenuItem returns a single menu item.
func (h *Handlers) GetMenuItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.Menu.Get(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "menu item not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// CreateMenuItem adds an item to the tenant's menu.
func (h *Handlers) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[menu.CreateRequest](w, r)
	if !ok {
		return
	}

	item, err := h.Menu.Create(r.Context(), middleware.TenantIDFromContext(r.Context()), req)
	if err != nil {
		writeDomainError(w, err, "menu item not found")
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// UpdateMenuItem changes name, category, price or availability of an item.
func (h *Handlers) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[menu.UpdateRequest](w, r)
	if !ok {
		return
	}

	item, err := h.Menu.Update(r.Context(), middleware.TenantIDFromContext(r.Context()), urlParam(r, "id"), req)
	if err != nil {
		writeDomainError(w, err, "menu item not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// DeleteMenuItem removes an item from the tenant's menu.
func (h *Handlers) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	if err := h.Menu.Delete(r.Context(), middleware.TenantIDFromContext(r.Context()), urlParam(r, "id")); err != nil {
		writeDomainError(w, err, "menu item not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
