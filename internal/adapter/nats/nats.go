// Package nats implements the message queue port using NATS JetStream.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/comandero/comandero/internal/logger"
	"github.com/comandero/comandero/internal/port/messagequeue"
)

const (
	streamName      = "COMANDERO"
	relayStreamName = "COMANDERO_REALTIME"

	// relayMaxAge caps how long relay messages are retained. Relay traffic
	// is transient node-to-node fan-out; a node that was offline has no use
	// for stale status updates, so old messages are discarded rather than
	// letting the stream grow without bound.
	relayMaxAge = time.Minute

	headerRequestID  = "Request-ID"
	headerRetryCount = "Retry-Count"

	// maxRetries is the number of redeliveries before a message is parked
	// on its .dlq subject.
	maxRetries = 3
)

// Queue implements messagequeue.Queue using NATS JetStream.
type Queue struct {
	nc *nats.Conn
	js jetstream.JetStream
}

// Connect establishes a connection to NATS and ensures the JetStream stream exists.
func Connect(ctx context.Context, url string) (*Queue, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream init: %w", err)
	}

	// Ensure the streams exist with subjects matching our topic patterns.
	// The .dlq subjects fall under the same wildcards. Durable domain
	// events and transient relay traffic live in separate streams so the
	// relay can carry an age cap without touching event retention.
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     streamName,
		Subjects: []string{"orders.>", "sales.>"},
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream stream create: %w", err)
	}
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     relayStreamName,
		Subjects: []string{"realtime.>"},
		MaxAge:   relayMaxAge,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream relay stream create: %w", err)
	}

	slog.Info("nats connected", "url", url, "stream", streamName)
	return &Queue{nc: nc, js: js}, nil
}

// Publish sends a message to the given subject. The request ID from the
// context, if any, travels in a header so consumers log under the same ID.
func (q *Queue) Publish(ctx context.Context, subject string, data []byte) error {
	msg := &nats.Msg{Subject: subject, Data: data, Header: nats.Header{}}
	if reqID := logger.RequestID(ctx); reqID != "" {
		msg.Header.Set(headerRequestID, reqID)
	}
	if _, err := q.js.PublishMsg(ctx, msg); err != nil {
		return fmt.Errorf("nats publish %s: %w", subject, err)
	}
	return nil
}

// Subscribe registers a handler for messages on the given subject. Payloads
// that are not valid JSON, and messages whose handler keeps failing past
// maxRetries, are parked on the subject's .dlq twin instead of redelivering
// forever.
func (q *Queue) Subscribe(ctx context.Context, subject string, handler messagequeue.Handler) (func(), error) {
	consumer, err := q.js.CreateOrUpdateConsumer(ctx, streamFor(subject), jetstream.ConsumerConfig{
		FilterSubject: subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("nats consumer create: %w", err)
	}

	cons, err := consumer.Consume(func(msg jetstream.Msg) {
		msgCtx := ctx
		if reqID := msg.Headers().Get(headerRequestID); reqID != "" {
			msgCtx = logger.WithRequestID(ctx, reqID)
		}

		if !json.Valid(msg.Data()) {
			slog.Error("invalid message payload, moving to DLQ", "subject", msg.Subject())
			q.moveToDLQ(msgCtx, msg)
			return
		}

		if err := handler(msgCtx, msg.Subject(), msg.Data()); err != nil {
			slog.Error("message handler failed", "subject", msg.Subject(), "error", err)
			if q.deliveries(msg) >= maxRetries {
				q.moveToDLQ(msgCtx, msg)
				return
			}
			if nakErr := msg.Nak(); nakErr != nil {
				slog.Error("nats nak failed", "error", nakErr)
			}
			return
		}
		if ackErr := msg.Ack(); ackErr != nil {
			slog.Error("nats ack failed", "error", ackErr)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("nats consume: %w", err)
	}

	return cons.Stop, nil
}

// streamFor maps a subject to the stream that carries it.
func streamFor(subject string) string {
	if strings.HasPrefix(subject, messagequeue.SubjectRealtimePrefix) {
		return relayStreamName
	}
	return streamName
}

// deliveries returns how many times the message has been attempted, taking
// the larger of the JetStream delivery count and the Retry-Count header.
func (q *Queue) deliveries(msg jetstream.Msg) int {
	n := 0
	if meta, err := msg.Metadata(); err == nil {
		n = int(meta.NumDelivered)
	}
	if h := msg.Headers().Get(headerRetryCount); h != "" {
		if v, err := strconv.Atoi(h); err == nil && v > n {
			n = v
		}
	}
	return n
}

// moveToDLQ republishes the message on its .dlq subject and acks the
// original so it stops redelivering.
func (q *Queue) moveToDLQ(ctx context.Context, msg jetstream.Msg) {
	dlq := &nats.Msg{
		Subject: msg.Subject() + ".dlq",
		Data:    msg.Data(),
		Header:  msg.Headers(),
	}
	if _, err := q.js.PublishMsg(ctx, dlq); err != nil {
		slog.Error("nats DLQ publish failed", "subject", dlq.Subject, "error", err)
		// Leave the message unacked so it redelivers; better twice than lost.
		return
	}
	if err := msg.Ack(); err != nil {
		slog.Error("nats ack failed after DLQ move", "error", err)
	}
}

// KeyValue returns a JetStream KV bucket, creating it with the given TTL if
// it does not exist. Used for the idempotency store and the L2 cache.
func (q *Queue) KeyValue(ctx context.Context, bucket string, ttl time.Duration) (jetstream.KeyValue, error) {
	kv, err := q.js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket: bucket,
		TTL:    ttl,
	})
	if err != nil {
		return nil, fmt.Errorf("jetstream keyvalue %s: %w", bucket, err)
	}
	return kv, nil
}

// Drain gracefully drains subscriptions and pending messages before closing.
func (q *Queue) Drain() error {
	return q.nc.Drain()
}

// Close shuts down the NATS connection immediately.
func (q *Queue) Close() error {
	q.nc.Close()
	return nil
}

// IsConnected reports whether the NATS connection is currently up.
func (q *Queue) IsConnected() bool {
	return q.nc != nil && q.nc.IsConnected()
}
