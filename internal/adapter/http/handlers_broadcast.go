package http

import (
	"net/http"

	"github.com/comandero/comandero/internal/domain/event"
	"github.com/comandero/comandero/internal/middleware"
)

type broadcastRequest struct {
	Topic   string `json:"topic"`
	Payload any    `json:"payload"`
}

// Broadcast pushes an ad-hoc announcement to every connected client of the
// caller's tenant, e.g. a flash promotion or "kitchen closing in 15 minutes".
func (h *Handlers) Broadcast(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[broadcastRequest](w, r)
	if !ok {
		return
	}
	if req.Topic == "" {
		writeError(w, http.StatusBadRequest, "topic is required")
		return
	}

	h.Realtime.BroadcastToTenant(r.Context(), middleware.TenantIDFromContext(r.Context()),
		event.Envelope{Topic: req.Topic, Payload: req.Payload})
	w.WriteHeader(http.StatusAccepted)
}
