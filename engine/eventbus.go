package engine

import (
	"sync"
	"time"
)

// ListenerID identifies a registered listener for later removal.
type ListenerID uint64

// Listener receives dispatched events.
type Listener func(Event)

type registration struct {
	id    ListenerID
	fn    Listener
	types map[EventType]bool
}

func (r registration) wants(t EventType) bool {
	return r.types == nil || r.types[t]
}

// EventBus fans trip, tracking and receipt events out to in-process
// listeners. Dispatch is synchronous on the emitting goroutine, so a
// listener that must not block (the SSE hub) does its own buffering.
type EventBus struct {
	mu        sync.RWMutex
	listeners []registration
	lastID    ListenerID
}

// NewEventBus creates an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers a listener. With no types given it receives every
// event; otherwise only the listed types. Listeners run in registration
// order.
func (b *EventBus) Subscribe(fn Listener, types ...EventType) ListenerID {
	var filter map[EventType]bool
	if len(types) > 0 {
		filter = make(map[EventType]bool, len(types))
		for _, t := range types {
			filter[t] = true
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastID++
	b.listeners = append(b.listeners, registration{id: b.lastID, fn: fn, types: filter})
	return b.lastID
}

// Unsubscribe removes a listener. Unknown IDs are ignored.
func (b *EventBus) Unsubscribe(id ListenerID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, r := range b.listeners {
		if r.id == id {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			return
		}
	}
}

// Emit dispatches an event to every matching listener, stamping the
// timestamp when the sender left it zero.
func (b *EventBus) Emit(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}

	b.mu.RLock()
	regs := make([]registration, len(b.listeners))
	copy(regs, b.listeners)
	b.mu.RUnlock()

	for _, r := range regs {
		if r.wants(evt.Type) {
			r.fn(evt)
		}
	}
}
