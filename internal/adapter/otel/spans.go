package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "comandero"

// StartOrderSpan starts a span for order intake.
func StartOrderSpan(ctx context.Context, orderID, tenantID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "order.create",
		trace.WithAttributes(
			attribute.String("order.id", orderID),
			attribute.String("tenant.id", tenantID),
		),
	)
}

// StartStatusSpan starts a span for an order status transition.
func StartStatusSpan(ctx context.Context, orderID, status string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "order.status",
		trace.WithAttributes(
			attribute.String("order.id", orderID),
			attribute.String("order.status", status),
		),
	)
}

// StartRelaySpan starts a span for handling a relayed realtime message.
func StartRelaySpan(ctx context.Context, tenantID, origin string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "realtime.relay",
		trace.WithAttributes(
			attribute.String("tenant.id", tenantID),
			attribute.String("relay.origin", origin),
		),
	)
}
