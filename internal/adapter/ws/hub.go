// Package ws implements the WebSocket adapter for real-time client communication.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/coder/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	cmotel "github.com/comandero/comandero/internal/adapter/otel"
	"github.com/comandero/comandero/internal/domain/event"
)

// conn wraps a single WebSocket connection and its room memberships.
type conn struct {
	ws       *websocket.Conn
	tenantID string
	send     chan []byte
	cancel   context.CancelFunc
	rooms    map[string]struct{}
}

// Hub manages all active WebSocket connections and their room memberships.
// Rooms are created on first join and removed when their last member leaves.
type Hub struct {
	mu         sync.RWMutex
	conns      map[*conn]struct{}
	rooms      map[string]map[*conn]struct{}
	sendBuffer int
	metrics    *cmotel.Metrics
}

// NewHub creates a new WebSocket hub. sendBuffer is the per-connection
// outbound queue size; messages are dropped when a client's queue is full.
func NewHub(sendBuffer int) *Hub {
	if sendBuffer <= 0 {
		sendBuffer = 64
	}
	return &Hub{
		conns:      make(map[*conn]struct{}),
		rooms:      make(map[string]map[*conn]struct{}),
		sendBuffer: sendBuffer,
	}
}

// SetMetrics attaches metric instruments. Optional; nil disables recording.
func (h *Hub) SetMetrics(m *cmotel.Metrics) {
	h.metrics = m
}

// register adds a connection to the hub and joins it to its initial rooms.
func (h *Hub) register(c *conn, rooms []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.conns[c] = struct{}{}
	for _, room := range rooms {
		h.joinLocked(c, room)
	}
	if h.metrics != nil {
		h.metrics.WSConnections.Add(context.Background(), 1,
			metric.WithAttributes(attribute.String("tenant.id", c.tenantID)))
	}
}

// Join adds the connection to a room. Joining a room the connection is
// already in is a no-op.
func (h *Hub) Join(c *conn, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.joinLocked(c, room)
}

func (h *Hub) joinLocked(c *conn, room string) {
	if _, ok := c.rooms[room]; ok {
		return
	}
	c.rooms[room] = struct{}{}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*conn]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
}

// Leave removes the connection from a room. Leaving a room the connection
// is not in is a no-op. Empty rooms are deleted.
func (h *Hub) Leave(c *conn, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(c, room)
}

func (h *Hub) leaveLocked(c *conn, room string) {
	if _, ok := c.rooms[room]; !ok {
		return
	}
	delete(c.rooms, room)
	if members, ok := h.rooms[room]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Emit marshals the envelope once and queues it to every connection that is
// a member of at least one of the given rooms. A connection in several of
// the rooms receives the message exactly once. Emitting to rooms with no
// members is a no-op. Slow clients have the message dropped rather than
// blocking the publisher.
func (h *Hub) Emit(ctx context.Context, rooms []string, env event.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		slog.Error("websocket marshal failed", "topic", env.Topic, "error", err)
		return
	}

	// Sends happen under the read lock: remove closes the send channel
	// under the write lock, so a queued send can never hit a closed channel.
	h.mu.RLock()
	defer h.mu.RUnlock()

	targets := make(map[*conn]struct{})
	for _, room := range rooms {
		for c := range h.rooms[room] {
			targets[c] = struct{}{}
		}
	}

	for c := range targets {
		select {
		case c.send <- data:
		default:
			slog.Debug("websocket send queue full, dropping message",
				"tenant_id", c.tenantID, "topic", env.Topic)
		}
	}
}

// ConnectionCount returns the number of active connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// RoomSize returns the number of connections currently in the room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// remove unregisters a connection, leaves all its rooms and closes its
// send queue. Safe to call more than once.
func (h *Hub) remove(c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[c]; !ok {
		return
	}
	for room := range c.rooms {
		h.leaveLocked(c, room)
	}
	delete(h.conns, c)
	c.cancel()
	close(c.send)
	if h.metrics != nil {
		h.metrics.WSConnections.Add(context.Background(), -1,
			metric.WithAttributes(attribute.String("tenant.id", c.tenantID)))
	}
	slog.Info("websocket disconnected", "tenant_id", c.tenantID)
}
