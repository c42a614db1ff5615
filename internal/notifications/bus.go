package notifications

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultCapacity = 64

// Bus buffers the notifications of one product-detail session until the UI
// drains them. When full, the oldest entry is dropped.
type Bus struct {
	mu       sync.Mutex
	items    []Notification
	capacity int
	closed   bool
	now      func() time.Time
}

func NewBus(capacity int) *Bus {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Bus{
		capacity: capacity,
		now:      time.Now,
	}
}

// Publish stamps n and buffers it. Zero notifications, and anything
// published after Close, are not buffered.
func (b *Bus) Publish(n Notification) Notification {
	if n.IsZero() {
		return n
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = b.now().UTC()
	}
	if b.closed {
		return n
	}
	if len(b.items) >= b.capacity {
		b.items = b.items[1:]
	}
	b.items = append(b.items, n)
	return n
}

// Drain returns every buffered notification in publish order and empties the buffer.
func (b *Bus) Drain() []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.items
	b.items = nil
	return out
}

// Close discards the buffer. The bus stays usable for Drain, which then
// returns nothing.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.items = nil
}
