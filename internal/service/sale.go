package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	cmotel "github.com/comandero/comandero/internal/adapter/otel"
	"github.com/comandero/comandero/internal/domain"
	"github.com/comandero/comandero/internal/domain/sale"
	"github.com/comandero/comandero/internal/port/database"
	"github.com/comandero/comandero/internal/port/messagequeue"
)

// SaleService records point-of-sale transactions.
type SaleService struct {
	store    database.Store
	queue    messagequeue.Queue
	realtime *RealtimeService
	metrics  *cmotel.Metrics
}

// NewSaleService creates a new SaleService. queue may be nil.
func NewSaleService(store database.Store, queue messagequeue.Queue, realtime *RealtimeService) *SaleService {
	return &SaleService{store: store, queue: queue, realtime: realtime}
}

// SetMetrics attaches metric instruments. Optional; nil disables recording.
func (s *SaleService) SetMetrics(m *cmotel.Metrics) {
	s.metrics = m
}

// List returns sales within the given time window.
func (s *SaleService) List(ctx context.Context, from, to time.Time) ([]sale.Sale, error) {
	return s.store.ListSales(ctx, from, to)
}

// Create records a sale, notifies the dashboard, and publishes the event.
// When the sale settles an order, the order must exist in the same tenant.
func (s *SaleService) Create(ctx context.Context, tenantID, cashierID string, req sale.CreateRequest) (*sale.Sale, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if req.OrderID != "" {
		if _, err := s.store.GetOrder(ctx, req.OrderID); err != nil {
			return nil, err
		}
	}

	sl := &sale.Sale{
		ID:            uuid.NewString(),
		TenantID:      tenantID,
		OrderID:       req.OrderID,
		Total:         req.Total,
		PaymentMethod: req.PaymentMethod,
		CashierID:     cashierID,
	}

	if err := s.store.CreateSale(ctx, sl); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		attrs := metric.WithAttributes(
			attribute.String("tenant.id", tenantID),
			attribute.String("payment.method", string(sl.PaymentMethod)),
		)
		s.metrics.SalesRecorded.Add(ctx, 1, attrs)
		s.metrics.SaleTotal.Record(ctx, sl.Total, attrs)
	}

	s.realtime.NotifyNewSale(ctx, sl)

	if s.queue != nil {
		data, err := json.Marshal(sl)
		if err != nil {
			slog.Error("marshal sale for queue", "sale_id", sl.ID, "error", err)
			return sl, nil
		}
		if err := s.queue.Publish(ctx, messagequeue.SubjectSaleRecorded, data); err != nil {
			slog.Error("failed to publish sale event", "sale_id", sl.ID, "error", err)
		}
	}

	return sl, nil
}
