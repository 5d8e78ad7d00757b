package http

import (
	"net/http"

	"github.com/comandero/comandero/internal/adapter/ws"
	"github.com/comandero/comandero/internal/port/messagequeue"
	"github.com/comandero/comandero/internal/service"
)

// Handlers bundles the services behind the HTTP surface.
type Handlers struct {
	Auth     *service.AuthService
	Tenants  *service.TenantService
	Orders   *service.OrderService
	Sales    *service.SaleService
	Menu     *service.MenuService
	Realtime *service.RealtimeService
	Hub      *ws.Hub
	Queue    messagequeue.Queue
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HealthReady reports readiness: the process is only ready when its message
// queue connection is up (or absent by configuration).
func (h *Handlers) HealthReady(w http.ResponseWriter, _ *http.Request) {
	if h.Queue != nil && !h.Queue.IsConnected() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "degraded",
			"queue":  false,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ready",
		"connections": h.Hub.ConnectionCount(),
	})
}
