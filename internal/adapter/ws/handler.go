package ws

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"

	"github.com/comandero/comandero/internal/domain/room"
	"github.com/comandero/comandero/internal/domain/user"
	"github.com/comandero/comandero/internal/middleware"
)

// HandleWS upgrades the request to a WebSocket connection and joins it to
// the rooms its credentials grant. Every connection joins its tenant room;
// kitchen staff additionally join the kitchen room, managers and admins the
// dashboard room, and customers their own customer room.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	tenantID := middleware.TenantIDFromContext(r.Context())
	if claims != nil {
		tenantID = claims.TenantID
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // CORS handled by middleware
	})
	if err != nil {
		slog.Error("websocket accept failed", "error", err)
		return
	}

	// Detach from the request context: the HTTP handler returns after the
	// upgrade but the connection lives on.
	ctx, cancel := context.WithCancel(context.Background())
	c := &conn{
		ws:       ws,
		tenantID: tenantID,
		send:     make(chan []byte, h.sendBuffer),
		cancel:   cancel,
		rooms:    make(map[string]struct{}),
	}

	h.register(c, initialRooms(tenantID, claims))

	slog.Info("websocket connected",
		"remote", r.RemoteAddr, "tenant_id", tenantID, "rooms", len(c.rooms))

	go c.writePump(ctx, h)

	// Read loop (to detect disconnects and consume pings)
	go func() {
		defer func() {
			h.remove(c)
			_ = ws.Close(websocket.StatusNormalClosure, "")
		}()
		for {
			_, _, err := ws.Read(ctx)
			if err != nil {
				return
			}
		}
	}()
}

// initialRooms maps credentials to room memberships.
func initialRooms(tenantID string, claims *user.TokenClaims) []string {
	rooms := []string{room.Tenant(tenantID)}
	if claims == nil {
		return rooms
	}
	switch claims.Role {
	case user.RoleKitchen:
		rooms = append(rooms, room.Kitchen(tenantID))
	case user.RoleManager, user.RoleAdmin:
		rooms = append(rooms, room.Dashboard(tenantID))
	case user.RoleCustomer:
		if claims.CustomerID != "" {
			rooms = append(rooms, room.Customer(tenantID, claims.CustomerID))
		}
	}
	return rooms
}

// writePump drains the connection's send queue onto the wire. It exits when
// the queue is closed by remove or when a write fails.
func (c *conn) writePump(ctx context.Context, h *Hub) {
	for data := range c.send {
		if err := c.ws.Write(ctx, websocket.MessageText, data); err != nil {
			slog.Debug("websocket write failed", "tenant_id", c.tenantID, "error", err)
			h.remove(c)
			return
		}
	}
}
