package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/comandero/comandero/internal/domain/user"
	"github.com/comandero/comandero/internal/middleware"
)

// MountRoutes registers all API routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Get("/health", h.Health)
	r.Get("/health/ready", h.HealthReady)

	// Realtime: one websocket per client, rooms derived from credentials.
	r.Get("/ws", h.Hub.HandleWS)

	r.Route("/api/v1", func(r chi.Router) {
		// Version
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"version":"0.1.0"}`))
		})

		// Auth
		r.Post("/auth/login", h.Login)
		r.Post("/auth/refresh", h.Refresh)
		r.Post("/auth/logout", h.Logout)
		r.Get("/auth/me", h.Me)

		// Users (admin)
		r.With(middleware.RequireRole(user.RoleAdmin)).Post("/users", h.RegisterUser)
		r.With(middleware.RequireRole(user.RoleAdmin)).Get("/users", h.ListUsers)

		// Tenants (admin)
		r.With(middleware.RequireRole(user.RoleAdmin)).Route("/tenants", func(r chi.Router) {
			r.Get("/", h.ListTenants)
			r.Post("/", h.CreateTenant)
			r.Get("/{id}", h.GetTenant)
			r.Put("/{id}", h.UpdateTenant)
		})

		// Orders
		r.Get("/orders", h.ListOrders)
		r.Post("/orders", h.CreateOrder)
		r.Get("/orders/{id}", h.GetOrder)
		r.With(middleware.RequireRole(user.RoleAdmin, user.RoleManager, user.RoleKitchen)).
			Patch("/orders/{id}/status", h.UpdateOrderStatus)

		// Tenant-wide announcements
		r.With(middleware.RequireRole(user.RoleAdmin, user.RoleManager)).Post("/broadcast", h.Broadcast)

		// Sales
		r.With(middleware.RequireRole(user.RoleAdmin, user.RoleManager)).Get("/sales", h.ListSales)
		r.With(middleware.RequireRole(user.RoleAdmin, user.RoleManager)).Post("/sales", h.CreateSale)

		// Menu
		menuWrite := middleware.RequireRole(user.RoleAdmin, user.RoleManager)
		r.Get("/menu", h.ListMenu)
		r.Get("/menu/{id}", h.GetMenuItem)
		r.With(menuWrite).Post("/menu", h.CreateMenuItem)
		r.With(menuWrite).Put("/menu/{id}", h.UpdateMenuItem)
		r.With(menuWrite).Delete("/menu/{id}", h.DeleteMenuItem)
	})
}
