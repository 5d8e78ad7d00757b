// Package event defines the envelope carried by every realtime notification.
package event

// Topic constants for realtime events. Receivers dispatch on the topic;
// the payload shape is topic-specific.
const (
	TopicOrderNew     = "order:new"     // kitchen + dashboard: a new order arrived
	TopicOrderUpdated = "order:updated" // dashboard: an order changed status
	TopicOrderStatus  = "order:status"  // customer: your order changed status
	TopicSaleNew      = "sale:new"      // dashboard: a sale was recorded
)

// Envelope is the wire shape of every realtime event:
// a topic string and an opaque, topic-specific payload.
type Envelope struct {
	Topic   string `json:"topic"`
	Payload any    `json:"payload"`
}

// OrderStatusPayload is the payload for TopicOrderUpdated and
// TopicOrderStatus. Both audiences receive the same fields; only the topic
// differs per recipient class.
type OrderStatusPayload struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}
