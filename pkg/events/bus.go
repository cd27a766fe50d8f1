// Package events is the in-process publish/subscribe layer between order
// intake and anything reacting to it in the same process. There is no
// buffering, persistence or delivery guarantee: an event emitted with no
// subscribers is gone. This is acceptable because the order record itself
// is durable; the bus only feeds the real-time convenience layer.
//
// Known limitation: the bus is scoped to one process. Running multiple
// server instances requires replacing it with a shared broker such as
// Redis pub/sub.
package events

import (
	"sync"

	"github.com/example/tableside/pkg/models"
	"go.uber.org/zap"
)

type Listener func(models.OrderEvent)

type Bus struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]Listener
	logger    *zap.Logger
}

func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		listeners: make(map[int]Listener),
		logger:    logger,
	}
}

// Subscribe registers a listener and returns a closure that removes it.
// Safe for concurrent use.
func (b *Bus) Subscribe(fn Listener) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.listeners, id)
		b.mu.Unlock()
	}
}

// Emit synchronously invokes every currently registered listener. The
// listener set is snapshotted first, so listeners may subscribe or
// unsubscribe during delivery. A panicking listener is logged and does
// not prevent siblings from receiving the event.
func (b *Bus) Emit(evt models.OrderEvent) {
	b.mu.Lock()
	snapshot := make([]Listener, 0, len(b.listeners))
	for _, fn := range b.listeners {
		snapshot = append(snapshot, fn)
	}
	b.mu.Unlock()

	for _, fn := range snapshot {
		b.deliver(fn, evt)
	}
}

func (b *Bus) deliver(fn Listener, evt models.OrderEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("order event listener panicked",
				zap.String("event_type", string(evt.Type)),
				zap.Any("panic", r))
		}
	}()
	fn(evt)
}

func (b *Bus) ListenerCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}
