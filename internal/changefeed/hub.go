package changefeed

import (
	"context"
	"log/slog"
	"sync"

	"portfolio-catalog/internal/metrics"
)

// Hub is an in-process broadcaster. It is the memory backend on its own and the local
// fan-out stage behind the redis and postgres backends.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uint64]chan Event
	nextID uint64
	log    *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		subs: make(map[uint64]chan Event),
		log:  log.With("component", "changefeed"),
	}
}

// Publish never blocks: a subscriber whose buffer is full misses the event.
func (h *Hub) Publish(_ context.Context, event Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, ch := range h.subs {
		select {
		case ch <- event:
		default:
			metrics.ChangefeedDropped.Inc()
			h.log.Warn("dropping change event for slow subscriber", "subscriber", id, "op", event.Op, "id", event.ID)
		}
	}
	return nil
}

func (h *Hub) Subscribe(ctx context.Context) (<-chan Event, func(), error) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	remove := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			close(ch)
			h.mu.Unlock()
		})
	}
	stop := context.AfterFunc(ctx, remove)

	return ch, func() {
		stop()
		remove()
	}, nil
}

// Len returns the number of live subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
