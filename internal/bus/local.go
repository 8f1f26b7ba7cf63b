package bus

import (
	"context"
	"sync"

	"colorspot-server/internal/domain"
)

// Local is the in-process channel: a plain observer list. Listeners are
// invoked synchronously, in subscription order.
type Local struct {
	mu     sync.Mutex
	nextID int
	order  []int
	byID   map[int]Listener
}

// NewLocal creates an empty in-process bus.
func NewLocal() *Local {
	return &Local{byID: make(map[int]Listener)}
}

// Subscribe registers fn and returns an idempotent unsubscribe function.
func (b *Local) Subscribe(fn Listener) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.order = append(b.order, id)
	b.byID[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.byID[id]; !ok {
			return
		}
		delete(b.byID, id)
		for i, v := range b.order {
			if v == id {
				b.order = append(b.order[:i], b.order[i+1:]...)
				break
			}
		}
	}
}

// Publish calls every listener with a defensive copy of the settings.
func (b *Local) Publish(_ context.Context, settings domain.AccessSettings) {
	b.mu.Lock()
	listeners := make([]Listener, 0, len(b.order))
	for _, id := range b.order {
		if fn, ok := b.byID[id]; ok {
			listeners = append(listeners, fn)
		}
	}
	b.mu.Unlock()

	for _, fn := range listeners {
		fn(settings.Clone())
	}
}

func (b *Local) Close() error { return nil }
