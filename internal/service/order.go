package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	cmotel "github.com/comandero/comandero/internal/adapter/otel"
	"github.com/comandero/comandero/internal/domain"
	"github.com/comandero/comandero/internal/domain/order"
	"github.com/comandero/comandero/internal/port/database"
	"github.com/comandero/comandero/internal/port/messagequeue"
)

// OrderService handles order intake and the kitchen status workflow.
type OrderService struct {
	store    database.Store
	queue    messagequeue.Queue
	realtime *RealtimeService
	metrics  *cmotel.Metrics
}

// NewOrderService creates a new OrderService. queue may be nil; the domain
// event stream is then skipped.
func NewOrderService(store database.Store, queue messagequeue.Queue, realtime *RealtimeService) *OrderService {
	return &OrderService{store: store, queue: queue, realtime: realtime}
}

// SetMetrics attaches metric instruments. Optional; nil disables recording.
func (s *OrderService) SetMetrics(m *cmotel.Metrics) {
	s.metrics = m
}

// List returns recent orders, optionally filtered by status.
func (s *OrderService) List(ctx context.Context, status order.Status, limit int) ([]order.Order, error) {
	if status != "" && !order.ValidStatuses[status] {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}
	return s.store.ListOrders(ctx, status, limit)
}

// Get returns an order by ID.
func (s *OrderService) Get(ctx context.Context, id string) (*order.Order, error) {
	return s.store.GetOrder(ctx, id)
}

// Create validates the request against the tenant's menu, persists the
// order, notifies the kitchen and dashboard, and records the event on the
// domain stream.
func (s *OrderService) Create(ctx context.Context, tenantID string, req order.CreateRequest) (*order.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	// Price every line from the stored menu so clients cannot set their own
	// prices; unknown or unavailable items reject the order.
	for i := range req.Items {
		item, err := s.store.GetMenuItem(ctx, req.Items[i].MenuItemID)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		if !item.Available {
			return nil, fmt.Errorf("%w: item %d: %s is not available", domain.ErrValidation, i, item.Name)
		}
		req.Items[i].Name = item.Name
		req.Items[i].UnitPrice = item.Price
	}

	o := &order.Order{
		ID:         uuid.NewString(),
		TenantID:   tenantID,
		CustomerID: req.CustomerID,
		TableNo:    req.TableNo,
		Items:      req.Items,
		Status:     order.StatusPending,
		Notes:      req.Notes,
	}
	o.Total = o.Subtotal()

	ctx, span := cmotel.StartOrderSpan(ctx, o.ID, tenantID)
	defer span.End()

	if err := s.store.CreateOrder(ctx, o); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		attrs := metric.WithAttributes(attribute.String("tenant.id", tenantID))
		s.metrics.OrdersCreated.Add(ctx, 1, attrs)
		s.metrics.OrderTotal.Record(ctx, o.Total, attrs)
	}

	s.realtime.NotifyNewOrder(ctx, o)
	s.publishEvent(ctx, messagequeue.SubjectOrderCreated, o)

	return o, nil
}

// UpdateStatus moves an order through its lifecycle. Invalid transitions
// return domain.ErrInvalidTransition; a concurrent update of the same order
// returns domain.ErrConflict.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status order.Status) (*order.Order, error) {
	current, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := order.Transition(current.Status, status); err != nil {
		return nil, err
	}

	ctx, span := cmotel.StartStatusSpan(ctx, id, string(status))
	defer span.End()

	updated, err := s.store.UpdateOrderStatus(ctx, id, status, current.Version)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.StatusChanges.Add(ctx, 1, metric.WithAttributes(
			attribute.String("tenant.id", updated.TenantID),
			attribute.String("order.status", string(status)),
		))
	}

	s.realtime.NotifyOrderStatus(ctx, updated)
	s.publishEvent(ctx, messagequeue.SubjectOrderStatus, updated)

	return updated, nil
}

// publishEvent records the order on the domain event stream. Failures are
// logged, not returned; the order is already persisted.
func (s *OrderService) publishEvent(ctx context.Context, subject string, o *order.Order) {
	if s.queue == nil {
		return
	}
	data, err := json.Marshal(o)
	if err != nil {
		slog.Error("marshal order for queue", "order_id", o.ID, "error", err)
		return
	}
	if err := s.queue.Publish(ctx, subject, data); err != nil {
		slog.Error("failed to publish order event", "order_id", o.ID, "subject", subject, "error", err)
	}
}
