package ws

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/comandero/comandero/internal/domain/event"
	"github.com/comandero/comandero/internal/domain/room"
	"github.com/comandero/comandero/internal/domain/user"
)

func newTestConn(tenantID string, buffer int) *conn {
	_, cancel := context.WithCancel(context.Background())
	return &conn{
		tenantID: tenantID,
		send:     make(chan []byte, buffer),
		cancel:   cancel,
		rooms:    make(map[string]struct{}),
	}
}

func recvTopic(t *testing.T, c *conn) string {
	t.Helper()
	select {
	case data := <-c.send:
		var env event.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			t.Fatalf("unmarshal envelope: %v", err)
		}
		return env.Topic
	default:
		t.Fatal("expected a queued message, got none")
		return ""
	}
}

func TestNewHub(t *testing.T) {
	hub := NewHub(0)
	if hub == nil {
		t.Fatal("expected non-nil hub")
	}
	if hub.sendBuffer != 64 {
		t.Fatalf("expected default send buffer 64, got %d", hub.sendBuffer)
	}
	if hub.ConnectionCount() != 0 {
		t.Fatalf("expected 0 connections, got %d", hub.ConnectionCount())
	}
}

func TestHubEmitNoMembers(t *testing.T) {
	hub := NewHub(8)

	// Emitting to rooms nobody joined should not panic and not create rooms.
	hub.Emit(context.Background(), []string{room.Kitchen("t1")}, event.Envelope{
		Topic:   event.TopicOrderNew,
		Payload: map[string]string{"id": "o1"},
	})
	if got := hub.RoomSize(room.Kitchen("t1")); got != 0 {
		t.Fatalf("expected empty room, got %d members", got)
	}
}

func TestHubEmitMarshalError(t *testing.T) {
	hub := NewHub(8)

	// A channel cannot be marshaled to JSON; Emit logs and returns.
	hub.Emit(context.Background(), []string{room.Tenant("t1")}, event.Envelope{
		Topic:   "bad",
		Payload: make(chan int),
	})
}

func TestHubEmitFanOut(t *testing.T) {
	hub := NewHub(8)

	kitchen := newTestConn("t1", 8)
	dashboard := newTestConn("t1", 8)
	other := newTestConn("t1", 8)
	hub.register(kitchen, []string{room.Tenant("t1"), room.Kitchen("t1")})
	hub.register(dashboard, []string{room.Tenant("t1"), room.Dashboard("t1")})
	hub.register(other, []string{room.Tenant("t1")})

	hub.Emit(context.Background(), []string{room.Kitchen("t1"), room.Dashboard("t1")}, event.Envelope{
		Topic:   event.TopicOrderNew,
		Payload: map[string]string{"id": "o1"},
	})

	if got := recvTopic(t, kitchen); got != event.TopicOrderNew {
		t.Fatalf("kitchen got topic %q", got)
	}
	if got := recvTopic(t, dashboard); got != event.TopicOrderNew {
		t.Fatalf("dashboard got topic %q", got)
	}
	select {
	case <-other.send:
		t.Fatal("tenant-room-only connection should not receive kitchen/dashboard emit")
	default:
	}
}

func TestHubEmitTenantIsolation(t *testing.T) {
	hub := NewHub(8)

	c1 := newTestConn("t1", 8)
	c2 := newTestConn("t2", 8)
	hub.register(c1, []string{room.Tenant("t1"), room.Kitchen("t1")})
	hub.register(c2, []string{room.Tenant("t2"), room.Kitchen("t2")})

	hub.Emit(context.Background(), []string{room.Kitchen("t1")}, event.Envelope{
		Topic:   event.TopicOrderNew,
		Payload: map[string]string{"id": "o1"},
	})

	if got := recvTopic(t, c1); got != event.TopicOrderNew {
		t.Fatalf("t1 connection got topic %q", got)
	}
	select {
	case <-c2.send:
		t.Fatal("t2 connection received a t1 emit")
	default:
	}
}

func TestHubEmitDeduplicates(t *testing.T) {
	hub := NewHub(8)

	// A manager watching both kitchen and dashboard rooms gets one copy.
	c := newTestConn("t1", 8)
	hub.register(c, []string{room.Tenant("t1"), room.Kitchen("t1"), room.Dashboard("t1")})

	hub.Emit(context.Background(), []string{room.Kitchen("t1"), room.Dashboard("t1")}, event.Envelope{
		Topic:   event.TopicOrderNew,
		Payload: map[string]string{"id": "o1"},
	})

	recvTopic(t, c)
	select {
	case <-c.send:
		t.Fatal("connection in two target rooms received a duplicate")
	default:
	}
}

func TestHubJoinIdempotent(t *testing.T) {
	hub := NewHub(8)

	c := newTestConn("t1", 8)
	hub.register(c, []string{room.Tenant("t1")})
	hub.Join(c, room.Kitchen("t1"))
	hub.Join(c, room.Kitchen("t1"))

	if got := hub.RoomSize(room.Kitchen("t1")); got != 1 {
		t.Fatalf("expected 1 member after double join, got %d", got)
	}

	hub.Emit(context.Background(), []string{room.Kitchen("t1")}, event.Envelope{
		Topic: event.TopicOrderNew,
	})
	recvTopic(t, c)
	select {
	case <-c.send:
		t.Fatal("double join produced a duplicate delivery")
	default:
	}
}

func TestHubLeavePrunesEmptyRoom(t *testing.T) {
	hub := NewHub(8)

	c := newTestConn("t1", 8)
	hub.register(c, []string{room.Kitchen("t1")})
	hub.Leave(c, room.Kitchen("t1"))

	hub.mu.RLock()
	_, exists := hub.rooms[room.Kitchen("t1")]
	hub.mu.RUnlock()
	if exists {
		t.Fatal("expected empty room to be deleted")
	}

	// Leaving again is a no-op.
	hub.Leave(c, room.Kitchen("t1"))
}

func TestHubRemoveCleansUp(t *testing.T) {
	hub := NewHub(8)

	c := newTestConn("t1", 8)
	hub.register(c, []string{room.Tenant("t1"), room.Kitchen("t1")})
	hub.remove(c)

	if hub.ConnectionCount() != 0 {
		t.Fatalf("expected 0 connections, got %d", hub.ConnectionCount())
	}
	if got := hub.RoomSize(room.Tenant("t1")); got != 0 {
		t.Fatalf("expected tenant room pruned, got %d members", got)
	}

	// Removing again is a no-op.
	hub.remove(c)
}

func TestHubEmitDropsWhenQueueFull(t *testing.T) {
	hub := NewHub(1)

	c := newTestConn("t1", 1)
	hub.register(c, []string{room.Tenant("t1")})

	env := event.Envelope{Topic: event.TopicSaleNew}
	hub.Emit(context.Background(), []string{room.Tenant("t1")}, env)
	hub.Emit(context.Background(), []string{room.Tenant("t1")}, env)

	if got := len(c.send); got != 1 {
		t.Fatalf("expected overflow message dropped, queue len %d", got)
	}
}

func TestInitialRoomsByRole(t *testing.T) {
	tests := []struct {
		name   string
		claims *user.TokenClaims
		want   []string
	}{
		{
			name:   "no claims joins tenant room only",
			claims: nil,
			want:   []string{"tenant:t1"},
		},
		{
			name:   "kitchen joins kitchen room",
			claims: &user.TokenClaims{Role: user.RoleKitchen, TenantID: "t1"},
			want:   []string{"tenant:t1", "tenant:t1:kitchen"},
		},
		{
			name:   "manager joins dashboard room",
			claims: &user.TokenClaims{Role: user.RoleManager, TenantID: "t1"},
			want:   []string{"tenant:t1", "tenant:t1:dashboard"},
		},
		{
			name:   "admin joins dashboard room",
			claims: &user.TokenClaims{Role: user.RoleAdmin, TenantID: "t1"},
			want:   []string{"tenant:t1", "tenant:t1:dashboard"},
		},
		{
			name:   "customer joins own room",
			claims: &user.TokenClaims{Role: user.RoleCustomer, TenantID: "t1", CustomerID: "c9"},
			want:   []string{"tenant:t1", "tenant:t1:customer:c9"},
		},
		{
			name:   "customer without id joins tenant room only",
			claims: &user.TokenClaims{Role: user.RoleCustomer, TenantID: "t1"},
			want:   []string{"tenant:t1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := initialRooms("t1", tt.claims)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}
