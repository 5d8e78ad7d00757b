package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "comandero"

// Metrics holds all comandero metric instruments.
type Metrics struct {
	OrdersCreated   metric.Int64Counter
	StatusChanges   metric.Int64Counter
	SalesRecorded   metric.Int64Counter
	EventsPublished metric.Int64Counter
	WSConnections   metric.Int64UpDownCounter
	OrderTotal      metric.Float64Histogram
	SaleTotal       metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.OrdersCreated, err = meter.Int64Counter("comandero.orders.created",
		metric.WithDescription("Number of orders created"))
	if err != nil {
		return nil, err
	}

	m.StatusChanges, err = meter.Int64Counter("comandero.orders.status_changes",
		metric.WithDescription("Number of order status transitions"))
	if err != nil {
		return nil, err
	}

	m.SalesRecorded, err = meter.Int64Counter("comandero.sales.recorded",
		metric.WithDescription("Number of sales recorded"))
	if err != nil {
		return nil, err
	}

	m.EventsPublished, err = meter.Int64Counter("comandero.realtime.events",
		metric.WithDescription("Number of realtime events emitted"))
	if err != nil {
		return nil, err
	}

	m.WSConnections, err = meter.Int64UpDownCounter("comandero.ws.connections",
		metric.WithDescription("Currently open websocket connections"))
	if err != nil {
		return nil, err
	}

	m.OrderTotal, err = meter.Float64Histogram("comandero.order.total",
		metric.WithDescription("Order totals in tenant currency"))
	if err != nil {
		return nil, err
	}

	m.SaleTotal, err = meter.Float64Histogram("comandero.sale.total",
		metric.WithDescription("Sale totals in tenant currency"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
