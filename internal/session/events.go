package session

import (
	"sync"

	"spotivr/pkg/logging"
)

// Route identifies a screen the GUI layer should display.
type Route string

const (
	// RouteLogin shows the login screen.
	RouteLogin Route = "login"
	// RouteHome shows the main screen.
	RouteHome Route = "home"
)

// EventKind discriminates the lifecycle events emitted by the Router.
type EventKind int

const (
	// EventError carries a human-readable error message.
	EventError EventKind = iota
	// EventTokenChanged carries the current access token.
	EventTokenChanged
	// EventRouteChanged carries the route the GUI should switch to.
	EventRouteChanged
)

// String returns the string representation of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventError:
		return "error"
	case EventTokenChanged:
		return "token_changed"
	case EventRouteChanged:
		return "route_changed"
	default:
		return "unknown"
	}
}

// Event is a single lifecycle notification. Exactly one of Message, Token,
// or Route is meaningful, selected by Kind.
type Event struct {
	Kind    EventKind
	Message string
	Token   string
	Route   Route
}

// subscriberBufferSize is the per-subscriber channel capacity. A consumer
// that falls this far behind starts losing events.
const subscriberBufferSize = 16

// Bus is a typed fire-and-forget event bus: one producer, many independent
// consumers. Delivery is non-blocking; events to a full subscriber channel
// are dropped with a warning so that no consumer can stall the producer.
type Bus struct {
	mu     sync.RWMutex
	subs   []chan Event
	closed bool
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a new consumer and returns its event channel. The
// channel is closed when the bus is closed.
func (b *Bus) Subscribe() <-chan Event {
	ch := make(chan Event, subscriberBufferSize)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(ch)
		return ch
	}

	b.subs = append(b.subs, ch)
	return ch
}

// Publish delivers an event to every subscriber without blocking.
func (b *Bus) Publish(evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	for _, ch := range b.subs {
		select {
		case ch <- evt:
		default:
			logging.Warn("Session", "Dropping %s event for slow subscriber", evt.Kind)
		}
	}
}

// Close closes all subscriber channels. Publish and Subscribe after Close
// are no-ops.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
