package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	cmotel "github.com/comandero/comandero/internal/adapter/otel"
	"github.com/comandero/comandero/internal/domain/event"
	"github.com/comandero/comandero/internal/domain/order"
	"github.com/comandero/comandero/internal/domain/room"
	"github.com/comandero/comandero/internal/domain/sale"
	"github.com/comandero/comandero/internal/port/broadcast"
	"github.com/comandero/comandero/internal/port/messagequeue"
	"github.com/comandero/comandero/internal/resilience"
)

// relayMessage is the wire shape for cross-node realtime relay over NATS.
// Origin identifies the publishing node so it can skip its own messages.
type relayMessage struct {
	Origin   string         `json:"origin"`
	Rooms    []string       `json:"rooms"`
	Envelope event.Envelope `json:"envelope"`
}

// RealtimeService publishes domain events to websocket rooms. When the relay
// is enabled, every emit is also published to NATS so connections held by
// other nodes receive it too.
type RealtimeService struct {
	hub     broadcast.Broadcaster
	queue   messagequeue.Queue
	nodeID  string
	relay   bool
	breaker *resilience.Breaker
	metrics *cmotel.Metrics
}

// NewRealtimeService creates a RealtimeService. queue may be nil when the
// relay is disabled. nodeID must be unique per process.
func NewRealtimeService(hub broadcast.Broadcaster, queue messagequeue.Queue, nodeID string, relay bool) *RealtimeService {
	return &RealtimeService{
		hub:     hub,
		queue:   queue,
		nodeID:  nodeID,
		relay:   relay && queue != nil,
		breaker: resilience.NewBreaker(5, 30*time.Second),
	}
}

// SetMetrics attaches metric instruments. Optional; nil disables recording.
func (s *RealtimeService) SetMetrics(m *cmotel.Metrics) {
	s.metrics = m
}

// NotifyNewOrder announces a freshly placed order to the kitchen and the
// dashboard of its tenant.
func (s *RealtimeService) NotifyNewOrder(ctx context.Context, o *order.Order) {
	s.emit(ctx, o.TenantID,
		[]string{room.Kitchen(o.TenantID), room.Dashboard(o.TenantID)},
		event.Envelope{Topic: event.TopicOrderNew, Payload: o})
}

// NotifyOrderStatus announces an order status change to the dashboard and,
// when the order belongs to a customer, to that customer's own room.
func (s *RealtimeService) NotifyOrderStatus(ctx context.Context, o *order.Order) {
	payload := event.OrderStatusPayload{OrderID: o.ID, Status: string(o.Status)}

	s.emit(ctx, o.TenantID,
		[]string{room.Dashboard(o.TenantID)},
		event.Envelope{Topic: event.TopicOrderUpdated, Payload: payload})

	if o.CustomerID != "" {
		s.emit(ctx, o.TenantID,
			[]string{room.Customer(o.TenantID, o.CustomerID)},
			event.Envelope{Topic: event.TopicOrderStatus, Payload: payload})
	}
}

// NotifyNewSale announces a recorded sale to the tenant's dashboard.
func (s *RealtimeService) NotifyNewSale(ctx context.Context, sl *sale.Sale) {
	s.emit(ctx, sl.TenantID,
		[]string{room.Dashboard(sl.TenantID)},
		event.Envelope{Topic: event.TopicSaleNew, Payload: sl})
}

// BroadcastToTenant sends an envelope to every connection of a tenant.
func (s *RealtimeService) BroadcastToTenant(ctx context.Context, tenantID string, env event.Envelope) {
	s.emit(ctx, tenantID, []string{room.Tenant(tenantID)}, env)
}

// emit delivers locally and, when the relay is on, publishes to NATS for the
// other nodes. Relay failures never reach the caller; order placement must
// not fail because a peer node cannot be notified.
func (s *RealtimeService) emit(ctx context.Context, tenantID string, rooms []string, env event.Envelope) {
	s.hub.Emit(ctx, rooms, env)

	if s.metrics != nil {
		s.metrics.EventsPublished.Add(ctx, 1, metric.WithAttributes(
			attribute.String("tenant.id", tenantID),
			attribute.String("topic", env.Topic),
		))
	}

	if !s.relay {
		return
	}

	data, err := json.Marshal(relayMessage{Origin: s.nodeID, Rooms: rooms, Envelope: env})
	if err != nil {
		slog.Error("relay marshal failed", "topic", env.Topic, "error", err)
		return
	}

	subject := messagequeue.SubjectRealtimePrefix + tenantID
	err = s.breaker.Execute(func() error {
		return s.queue.Publish(ctx, subject, data)
	})
	if err != nil {
		slog.Error("relay publish failed", "subject", subject, "topic", env.Topic, "error", err)
	}
}

// StartRelay subscribes to relay messages from other nodes and re-emits them
// to local connections. Messages published by this node are skipped. The
// returned function cancels the subscription.
func (s *RealtimeService) StartRelay(ctx context.Context) (func(), error) {
	if !s.relay {
		return func() {}, nil
	}

	stop, err := s.queue.Subscribe(ctx, messagequeue.SubjectRealtimeWildcard,
		func(ctx context.Context, subject string, data []byte) error {
			// The wildcard also matches parked .dlq subjects; never
			// re-emit those.
			if strings.HasSuffix(subject, ".dlq") {
				return nil
			}
			var msg relayMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				return fmt.Errorf("relay unmarshal: %w", err)
			}
			if msg.Origin == s.nodeID {
				return nil
			}
			tenantID, _ := messagequeue.TenantFromRealtimeSubject(subject)
			ctx, span := cmotel.StartRelaySpan(ctx, tenantID, msg.Origin)
			defer span.End()
			s.hub.Emit(ctx, msg.Rooms, msg.Envelope)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("relay subscribe: %w", err)
	}

	slog.Info("realtime relay started", "node_id", s.nodeID)
	return stop, nil
}
