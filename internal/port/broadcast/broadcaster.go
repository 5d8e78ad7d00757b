// Package broadcast defines the port for room-scoped realtime event delivery.
package broadcast

import (
	"context"

	"github.com/comandero/comandero/internal/domain/event"
)

// Broadcaster is the transport-facing port for realtime fan-out.
//
// Rooms exist implicitly: they are created by the first Join and gone when
// the last member leaves. Emitting to an empty or unknown room is a no-op,
// never an error. Delivery is fire-and-forget; implementations must not
// block the caller on slow or dead connections.
type Broadcaster interface {
	// Emit delivers the envelope to every connection joined to any of the
	// given rooms. A connection joined to several of the rooms receives
	// exactly one copy.
	Emit(ctx context.Context, rooms []string, env event.Envelope)
}
