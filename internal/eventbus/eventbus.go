// Package eventbus delivers lifecycle and performance events to
// independent subscribers (notifier, dashboard, logs). Delivery is
// fire-and-forget: a slow subscriber loses events rather than ever
// blocking the decision pipeline.
package eventbus

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-fx/internal/logger"
	"github.com/rxtech-lab/argo-fx/internal/types"
)

// Publisher is the producing side of the bus.
type Publisher interface {
	Publish(event types.Event)
}

// Bus fans typed events out to buffered subscriber channels.
type Bus struct {
	logger *logger.Logger

	mu          sync.RWMutex
	subscribers []chan types.Event
	buffer      int
	closed      bool
}

// NewBus creates a bus whose subscriber channels hold buffer events.
func NewBus(buffer int, log *logger.Logger) *Bus {
	return &Bus{
		logger: log,
		buffer: buffer,
	}
}

// Subscribe registers a new subscriber and returns its channel. The
// channel is closed when the bus closes.
func (b *Bus) Subscribe() <-chan types.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan types.Event, b.buffer)
	if b.closed {
		close(ch)

		return ch
	}

	b.subscribers = append(b.subscribers, ch)

	return ch
}

// Publish delivers the event to every subscriber without blocking.
// Events to a full subscriber are dropped and logged.
func (b *Bus) Publish(event types.Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	for _, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			b.logger.Warn("event dropped, subscriber full",
				zap.String("type", string(event.Type)),
				zap.String("symbol", event.Symbol),
			)
		}
	}
}

// Close closes all subscriber channels. Publish becomes a no-op.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.closed = true

	for _, ch := range b.subscribers {
		close(ch)
	}

	b.subscribers = nil
}

// NopPublisher discards events, for tests and tools that do not care.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(types.Event) {}
