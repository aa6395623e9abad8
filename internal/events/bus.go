package events

import (
	"sync"

	"go.uber.org/zap"
)

// Bus fans events out to subscribers. Publish never blocks: a subscriber
// that does not keep up loses events.
type Bus struct {
	config Config

	mu          sync.RWMutex
	subscribers map[uint64]chan Event
	nextID      uint64
	closed      bool

	logger *zap.Logger
}

func NewBus(config Config, logger *zap.Logger) *Bus {
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultBufferSize
	}

	return &Bus{
		config: config,

		subscribers: make(map[uint64]chan Event),

		logger: logger,
	}
}

// Subscribe registers a new subscriber. The returned function unsubscribes and
// closes the channel; it is safe to call more than once.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, b.config.BufferSize)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subscribers[id] = ch

	return ch, func() { b.unsubscribe(id) }
}

func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			b.logger.Warn("subscriber queue is full, event dropped",
				zap.Uint64("subscriber", id),
				zap.String("type", event.Type),
				zap.String("path", event.Path))
		}
	}
}

// Close disconnects every subscriber.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}

func (b *Bus) unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
}
